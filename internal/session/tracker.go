package session

import (
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/TanaroSch/portal-shortcuts/internal/shortcut"
)

const (
	displaySeparator = ", "
	activeOpen       = "["
	activeClose      = "]"
)

// Tracker keeps the set of currently held shortcuts. Every id in the set is
// also in the bound list.
type Tracker struct {
	mu        sync.Mutex
	bound     []shortcut.Bound
	active    map[string]struct{}
	anomalies int
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{active: make(map[string]struct{})}
}

// Reset replaces the bound list and clears activations and anomalies.
func (t *Tracker) Reset(bound []shortcut.Bound) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bound = append([]shortcut.Bound(nil), bound...)
	t.active = make(map[string]struct{})
	t.anomalies = 0
}

// Activate marks id as held and returns the new display.
func (t *Tracker) Activate(id string) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.isBound(id) {
		t.anomalies++
		log.Printf("Warning: Tracker: activation for shortcut '%s' that is not bound, ignoring", id)
		return t.render()
	}
	t.active[id] = struct{}{}
	return t.render()
}

// Deactivate marks id as released and returns the new display. Releasing an
// id that was not held is logged and otherwise ignored.
func (t *Tracker) Deactivate(id string) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.active[id]; !ok {
		t.anomalies++
		log.Printf("Warning: Tracker: received deactivation without previous activation for shortcut '%s'", id)
		return t.render()
	}
	delete(t.active, id)
	return t.render()
}

// Display renders the bound shortcuts with held ones emphasized.
func (t *Tracker) Display() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.render()
}

// Active returns the held ids in sorted order.
func (t *Tracker) Active() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := make([]string, 0, len(t.active))
	for id := range t.active {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// IsActive reports whether id is currently held.
func (t *Tracker) IsActive(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.active[id]
	return ok
}

// Bound returns a copy of the bound list.
func (t *Tracker) Bound() []shortcut.Bound {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]shortcut.Bound(nil), t.bound...)
}

// Anomalies returns how many inconsistent events were seen since Reset.
func (t *Tracker) Anomalies() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.anomalies
}

func (t *Tracker) isBound(id string) bool {
	for _, b := range t.bound {
		if b.ID == id {
			return true
		}
	}
	return false
}

func (t *Tracker) render() string {
	entries := make([]string, 0, len(t.bound))
	for _, b := range t.bound {
		entry := b.ID + ": " + b.TriggerDescription
		if _, ok := t.active[b.ID]; ok {
			entry = activeOpen + entry + activeClose
		}
		entries = append(entries, entry)
	}
	return strings.Join(entries, displaySeparator)
}
