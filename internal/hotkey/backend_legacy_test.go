package hotkey

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/TanaroSch/portal-shortcuts/internal/session"
	"github.com/TanaroSch/portal-shortcuts/internal/shortcut"
)

// newTestLegacyBackend records grabs instead of touching the display.
// Triggers listed in refuse fail to register.
func newTestLegacyBackend(refuse ...string) (*LegacyBackend, *[]string) {
	b := NewLegacyBackend()
	var grabbed []string
	b.register = func(s *legacySession, id string, trigger shortcut.Trigger) error {
		for _, r := range refuse {
			if trigger.String() == r {
				return fmt.Errorf("key %s already grabbed", r)
			}
		}
		s.mu.Lock()
		s.keys[id] = nil
		s.mu.Unlock()
		grabbed = append(grabbed, id+"="+trigger.String())
		return nil
	}
	return b, &grabbed
}

func TestLegacyBindGrantsSubset(t *testing.T) {
	b, grabbed := newTestLegacyBackend("Ctrl+Q")
	ctx := context.Background()
	h, err := b.CreateSession(ctx)
	if err != nil {
		t.Fatal(err)
	}

	bound, err := b.BindShortcuts(ctx, h, []shortcut.Request{
		{ID: "shot", Description: "Screenshot", PreferredTrigger: "<Primary><Shift>s", HasTrigger: true},
		{ID: "none", Description: "No trigger"},
		{ID: "empty", Description: "Empty trigger", PreferredTrigger: "", HasTrigger: true},
		{ID: "bad", Description: "Unparsable", PreferredTrigger: "<Hyper>", HasTrigger: true},
		{ID: "shot", Description: "Duplicate", PreferredTrigger: "F1", HasTrigger: true},
		{ID: "quit", Description: "Refused", PreferredTrigger: "ctrl+q", HasTrigger: true},
		{ID: "mute", Description: "Mute", PreferredTrigger: "CTRL+ALT+m", HasTrigger: true},
	}, "")
	if err != nil {
		t.Fatalf("BindShortcuts: %v", err)
	}

	want := []shortcut.Bound{
		{ID: "shot", Description: "Screenshot", TriggerDescription: "Ctrl+Shift+S"},
		{ID: "mute", Description: "Mute", TriggerDescription: "Ctrl+Alt+M"},
	}
	if !reflect.DeepEqual(bound, want) {
		t.Fatalf("bound = %+v, want %+v", bound, want)
	}
	if len(*grabbed) != 2 {
		t.Fatalf("grabbed = %v", *grabbed)
	}
	if err := b.CloseSession(ctx, h); err != nil {
		t.Fatalf("CloseSession: %v", err)
	}
}

func TestLegacyBindNothingGrantable(t *testing.T) {
	b, _ := newTestLegacyBackend("F2")
	ctx := context.Background()
	h, err := b.CreateSession(ctx)
	if err != nil {
		t.Fatal(err)
	}

	_, err = b.BindShortcuts(ctx, h, []shortcut.Request{
		{ID: "a", Description: "No trigger"},
		{ID: "b", Description: "Refused", PreferredTrigger: "F2", HasTrigger: true},
	}, "")
	if !errors.Is(err, session.ErrOtherResponse) {
		t.Fatalf("BindShortcuts error = %v, want ErrOtherResponse", err)
	}
	_ = b.Close()
}

func TestLegacyUnknownSession(t *testing.T) {
	b, _ := newTestLegacyBackend()
	ctx := context.Background()
	if _, err := b.BindShortcuts(ctx, "legacy/99", nil, ""); err == nil {
		t.Fatal("bind on unknown session succeeded")
	}
	if err := b.CloseSession(ctx, "legacy/99"); err == nil {
		t.Fatal("close on unknown session succeeded")
	}
}
