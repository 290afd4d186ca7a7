package clipboard

import (
	"errors"
	"testing"

	"github.com/TanaroSch/portal-shortcuts/internal/shortcut"
)

type memClipboard struct {
	text     string
	writeErr error
}

func newTestManager(mem *memClipboard, revert *[]bool) *Manager {
	m := NewManager(func(v bool) { *revert = append(*revert, v) })
	m.readAll = func() (string, error) { return mem.text, nil }
	m.writeAll = func(s string) error {
		if mem.writeErr != nil {
			return mem.writeErr
		}
		mem.text = s
		return nil
	}
	return m
}

func TestFormatBindings(t *testing.T) {
	got := FormatBindings([]shortcut.Bound{
		{ID: "a", Description: "Alpha", TriggerDescription: "Ctrl+T"},
		{ID: "b", Description: "Beta"},
	})
	want := "a\tCtrl+T\tAlpha\nb\t(unassigned)\tBeta\n"
	if got != want {
		t.Fatalf("FormatBindings = %q, want %q", got, want)
	}
}

func TestCopyAndRestore(t *testing.T) {
	mem := &memClipboard{text: "user text"}
	var revert []bool
	m := newTestManager(mem, &revert)

	msg, err := m.CopyBindings([]shortcut.Bound{{ID: "a", TriggerDescription: "F1"}})
	if err != nil || msg == "" {
		t.Fatalf("CopyBindings = %q, %v", msg, err)
	}
	if mem.text != "a\tF1\t\n" {
		t.Fatalf("clipboard = %q", mem.text)
	}

	if !m.RestoreOriginalClipboard() {
		t.Fatal("restore failed")
	}
	if mem.text != "user text" {
		t.Fatalf("clipboard after restore = %q", mem.text)
	}
	if m.RestoreOriginalClipboard() {
		t.Fatal("second restore succeeded")
	}
	if len(revert) != 2 || !revert[0] || revert[1] {
		t.Fatalf("revert callbacks = %v", revert)
	}
}

func TestCopyBindingsErrors(t *testing.T) {
	mem := &memClipboard{}
	var revert []bool
	m := newTestManager(mem, &revert)

	if _, err := m.CopyBindings(nil); err == nil {
		t.Fatal("expected error for empty list")
	}

	mem.writeErr = errors.New("no display")
	if _, err := m.CopyBindings([]shortcut.Bound{{ID: "a"}}); err == nil {
		t.Fatal("expected write error")
	}
	if len(revert) != 0 {
		t.Fatalf("revert callbacks = %v", revert)
	}
}
