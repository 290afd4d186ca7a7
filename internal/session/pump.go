package session

import (
	"context"
	"sync"
	"time"

	"github.com/TanaroSch/portal-shortcuts/internal/shortcut"
)

// EventKind tells the merged events apart.
type EventKind int

const (
	EventActivated EventKind = iota + 1
	EventDeactivated
	EventShortcutsChanged
)

func (k EventKind) String() string {
	switch k {
	case EventActivated:
		return "activated"
	case EventDeactivated:
		return "deactivated"
	case EventShortcutsChanged:
		return "shortcuts-changed"
	default:
		return "unknown"
	}
}

// Event is one notification from any of the three streams.
type Event struct {
	Kind       EventKind
	ShortcutID string
	Timestamp  uint64
	Shortcuts  []shortcut.Bound
}

// mergeEvents fans the three streams into one channel. Arrival order is kept
// per source; there is no priority between sources. The output is closed once
// every source has ended or ctx is done.
func mergeEvents(ctx context.Context, activated <-chan Activated, deactivated <-chan Deactivated, changed <-chan ShortcutsChanged) <-chan Event {
	out := make(chan Event)

	var wg sync.WaitGroup
	wg.Add(3)
	go forward(ctx, &wg, activated, out, func(a Activated) Event {
		return Event{Kind: EventActivated, ShortcutID: a.ShortcutID, Timestamp: a.Timestamp}
	})
	go forward(ctx, &wg, deactivated, out, func(d Deactivated) Event {
		return Event{Kind: EventDeactivated, ShortcutID: d.ShortcutID, Timestamp: d.Timestamp}
	})
	go forward(ctx, &wg, changed, out, func(c ShortcutsChanged) Event {
		return Event{Kind: EventShortcutsChanged, Shortcuts: c.Shortcuts}
	})

	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

func forward[T any](ctx context.Context, wg *sync.WaitGroup, in <-chan T, out chan<- Event, wrap func(T) Event) {
	defer wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case v, ok := <-in:
			if !ok {
				return
			}
			select {
			case out <- wrap(v):
			case <-ctx.Done():
				return
			}
		}
	}
}

// Backoff bounds the delay between pump restarts. Attempts are unlimited.
type Backoff struct {
	Initial time.Duration
	Max     time.Duration
}

// DefaultBackoff is used when Options leave the backoff empty.
var DefaultBackoff = Backoff{Initial: 500 * time.Millisecond, Max: 30 * time.Second}

func (b Backoff) next(prev time.Duration) time.Duration {
	if prev <= 0 {
		return b.Initial
	}
	next := prev * 2
	if next > b.Max {
		next = b.Max
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			return nil
		}
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
