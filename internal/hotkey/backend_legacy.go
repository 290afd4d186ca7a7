package hotkey

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.design/x/hotkey"

	"github.com/TanaroSch/portal-shortcuts/internal/session"
	"github.com/TanaroSch/portal-shortcuts/internal/shortcut"
)

// LegacyBackend wraps the golang.design/x/hotkey library.
// This backend supports Windows, macOS, and X11 on Linux.
// It does NOT support Wayland.
type LegacyBackend struct {
	mu            sync.Mutex
	sessions      map[session.Handle]*legacySession
	nextID        int
	displayServer DisplayServer

	// register grabs one trigger for a session. Replaced in tests, which
	// have no display to grab keys on.
	register func(s *legacySession, id string, trigger shortcut.Trigger) error
}

// NewLegacyBackend creates a new legacy backend using golang.design/x/hotkey.
func NewLegacyBackend() *LegacyBackend {
	ds := DetectDisplayServer()
	log.Printf("Legacy backend: Detected display server: %s", ds)

	return &LegacyBackend{
		sessions:      make(map[session.Handle]*legacySession),
		displayServer: ds,
		register:      (*legacySession).register,
	}
}

// Name returns the name of this backend.
func (b *LegacyBackend) Name() string {
	return "Legacy (golang.design/x/hotkey)"
}

// IsAvailable checks if this backend can be used on the current system.
func (b *LegacyBackend) IsAvailable() bool {
	switch b.displayServer {
	case DisplayServerWindows, DisplayServerX11:
		return true
	case DisplayServerWayland:
		// golang.design/x/hotkey does NOT support Wayland
		log.Println("Legacy backend: Not available on Wayland")
		return false
	default:
		log.Println("Legacy backend: Unknown display server, assuming unavailable")
		return false
	}
}

func (b *LegacyBackend) CreateSession(ctx context.Context) (session.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	h := session.Handle(fmt.Sprintf("legacy/%d", b.nextID))
	b.sessions[h] = newLegacySession(h)
	log.Printf("Legacy backend: Created session %s", h)
	return h, nil
}

// BindShortcuts registers every request whose preferred trigger this platform
// can grab. Requests without a usable trigger are left out of the result.
func (b *LegacyBackend) BindShortcuts(ctx context.Context, h session.Handle, requests []shortcut.Request, parentWindow string) ([]shortcut.Bound, error) {
	s, err := b.lookup(h)
	if err != nil {
		return nil, err
	}

	var bound []shortcut.Bound
	for _, req := range requests {
		if err := ctx.Err(); err != nil {
			s.release()
			return nil, err
		}
		if s.has(req.ID) {
			log.Printf("Legacy backend: Shortcut '%s' listed twice, keeping the first", req.ID)
			continue
		}
		if !req.HasTrigger || req.PreferredTrigger == "" {
			log.Printf("Legacy backend: Shortcut '%s' has no preferred trigger, not bound", req.ID)
			continue
		}
		trigger, err := shortcut.ParseTrigger(req.PreferredTrigger)
		if err != nil {
			log.Printf("Legacy backend: Shortcut '%s': %v", req.ID, err)
			continue
		}
		if err := b.register(s, req.ID, trigger); err != nil {
			log.Printf("Legacy backend: Shortcut '%s': %v", req.ID, err)
			continue
		}
		bound = append(bound, shortcut.Bound{
			ID:                 req.ID,
			Description:        req.Description,
			TriggerDescription: trigger.String(),
		})
	}

	if len(bound) == 0 {
		return nil, fmt.Errorf("%w: no shortcut has a trigger this system can register", session.ErrOtherResponse)
	}
	log.Printf("Legacy backend: Bound %d of %d shortcuts", len(bound), len(requests))
	return bound, nil
}

func (b *LegacyBackend) SubscribeActivated(ctx context.Context, h session.Handle) (<-chan session.Activated, error) {
	s, err := b.lookup(h)
	if err != nil {
		return nil, err
	}
	return s.activated.subscribe(ctx), nil
}

func (b *LegacyBackend) SubscribeDeactivated(ctx context.Context, h session.Handle) (<-chan session.Deactivated, error) {
	s, err := b.lookup(h)
	if err != nil {
		return nil, err
	}
	return s.deactivated.subscribe(ctx), nil
}

// SubscribeShortcutsChanged returns a stream that never delivers; grabbed
// keys do not change under this backend.
func (b *LegacyBackend) SubscribeShortcutsChanged(ctx context.Context, h session.Handle) (<-chan session.ShortcutsChanged, error) {
	s, err := b.lookup(h)
	if err != nil {
		return nil, err
	}
	return s.changed.subscribe(ctx), nil
}

func (b *LegacyBackend) CloseSession(ctx context.Context, h session.Handle) error {
	b.mu.Lock()
	s, ok := b.sessions[h]
	delete(b.sessions, h)
	b.mu.Unlock()
	if !ok {
		return fmt.Errorf("legacy session %s not found", h)
	}

	err := s.release()
	s.activated.close()
	s.deactivated.close()
	s.changed.close()
	log.Printf("Legacy backend: Closed session %s", h)
	return err
}

// Close drops every session still open.
func (b *LegacyBackend) Close() error {
	b.mu.Lock()
	handles := make([]session.Handle, 0, len(b.sessions))
	for h := range b.sessions {
		handles = append(handles, h)
	}
	b.mu.Unlock()

	for _, h := range handles {
		if err := b.CloseSession(context.Background(), h); err != nil {
			log.Printf("Legacy backend: Error closing %s: %v", h, err)
		}
	}
	return nil
}

func (b *LegacyBackend) lookup(h session.Handle) (*legacySession, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[h]
	if !ok {
		return nil, fmt.Errorf("legacy session %s not found", h)
	}
	return s, nil
}

type legacySession struct {
	handle session.Handle

	mu   sync.Mutex
	keys map[string][]*legacyHotkey

	activated   *broadcaster[session.Activated]
	deactivated *broadcaster[session.Deactivated]
	changed     *broadcaster[session.ShortcutsChanged]
}

func newLegacySession(h session.Handle) *legacySession {
	return &legacySession{
		handle:      h,
		keys:        make(map[string][]*legacyHotkey),
		activated:   newBroadcaster[session.Activated](),
		deactivated: newBroadcaster[session.Deactivated](),
		changed:     newBroadcaster[session.ShortcutsChanged](),
	}
}

func (s *legacySession) has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.keys[id]
	return ok
}

// register grabs trigger for id. On Linux the same key is also grabbed with
// the lock modifiers so it fires with NumLock or CapsLock on; only the plain
// grab has to succeed.
func (s *legacySession) register(id string, trigger shortcut.Trigger) error {
	modifiers, key, err := toHotkey(trigger)
	if err != nil {
		return err
	}

	var grabbed []*legacyHotkey
	for i, mods := range modifierVariants(modifiers) {
		hk := hotkey.New(mods, key)
		if err := hk.Register(); err != nil {
			if i == 0 {
				return fmt.Errorf("failed to register hotkey '%s': %w", trigger, err)
			}
			log.Printf("Legacy backend: Variant %d of '%s' not registered: %v", i, trigger, err)
			continue
		}
		lh := &legacyHotkey{hotkey: hk, id: id, stopCh: make(chan struct{})}
		lh.startEventConverter(s)
		grabbed = append(grabbed, lh)
	}

	s.mu.Lock()
	s.keys[id] = grabbed
	s.mu.Unlock()
	log.Printf("Legacy backend: Registered '%s' as %s", id, trigger)
	return nil
}

func (s *legacySession) release() error {
	s.mu.Lock()
	keys := s.keys
	s.keys = make(map[string][]*legacyHotkey)
	s.mu.Unlock()

	var firstErr error
	for id, hks := range keys {
		for _, lh := range hks {
			if err := lh.Close(); err != nil {
				log.Printf("Legacy backend: Error unregistering '%s': %v", id, err)
				if firstErr == nil {
					firstErr = err
				}
			}
		}
	}
	return firstErr
}

// legacyHotkey forwards one grabbed key's events to its session.
type legacyHotkey struct {
	hotkey *hotkey.Hotkey
	id     string
	stopCh chan struct{}
}

func (lh *legacyHotkey) startEventConverter(s *legacySession) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("RECOVERED FROM PANIC IN LEGACY HOTKEY CONVERTER (%s): %v", lh.id, r)
			}
		}()

		for {
			select {
			case <-lh.stopCh:
				return
			case <-lh.hotkey.Keydown():
				s.activated.publish(session.Activated{Session: s.handle, ShortcutID: lh.id, Timestamp: timestamp()})
			case <-lh.hotkey.Keyup():
				s.deactivated.publish(session.Deactivated{Session: s.handle, ShortcutID: lh.id, Timestamp: timestamp()})
			}
		}
	}()
}

// Close unregisters the hotkey and stops its converter.
func (lh *legacyHotkey) Close() error {
	if lh.hotkey == nil {
		return nil
	}
	close(lh.stopCh)
	if err := lh.hotkey.Unregister(); err != nil {
		return fmt.Errorf("failed to unregister hotkey for '%s': %w", lh.id, err)
	}
	return nil
}

func timestamp() uint64 {
	return uint64(time.Now().UnixMilli())
}

var _ session.Backend = (*LegacyBackend)(nil)
