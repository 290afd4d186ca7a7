package ui

import (
	"errors"
	"strings"
	"testing"

	"github.com/TanaroSch/portal-shortcuts/internal/session"
	"github.com/TanaroSch/portal-shortcuts/internal/shortcut"
)

func TestViewFor(t *testing.T) {
	tests := []struct {
		name string
		snap session.Snapshot
		want menuView
	}{
		{
			name: "idle",
			snap: session.Snapshot{State: session.StateIdle, CanStart: true, Editable: true},
			want: menuView{
				StatusTitle:     "Status: ",
				ActivationTitle: "Shortcuts: (none bound)",
				StartEnabled:    true,
				StopTitle:       "Stop Session",
				EditEnabled:     true,
			},
		},
		{
			name: "starting",
			snap: session.Snapshot{State: session.StateStarting},
			want: menuView{
				StatusTitle:     "Status: waiting for permission...",
				StatusVisible:   true,
				ActivationTitle: "Shortcuts: (none bound)",
				StopEnabled:     true,
				StopTitle:       "Cancel Start",
			},
		},
		{
			name: "active with one held",
			snap: session.Snapshot{
				State:              session.StateActive,
				Status:             "OK",
				Requested:          []shortcut.Request{{ID: "a"}, {ID: "b"}},
				Bound:              []shortcut.Bound{{ID: "a"}, {ID: "b"}},
				Active:             []string{"b"},
				Display:            "a, [b]",
				CanStop:            true,
				ResponseVisible:    true,
				ActivationsVisible: true,
			},
			want: menuView{
				StatusTitle:        "Status: OK",
				StatusVisible:      true,
				ActivationTitle:    "Active (1): a, [b]",
				ActivationsVisible: true,
				StopEnabled:        true,
				StopTitle:          "Stop Session",
				CopyEnabled:        true,
				DiffEnabled:        true,
			},
		},
		{
			name: "rejected",
			snap: session.Snapshot{State: session.StateIdle, Status: "Cancelled", ResponseVisible: true, CanStart: true, Editable: true},
			want: menuView{
				StatusTitle:     "Status: Cancelled",
				StatusVisible:   true,
				ActivationTitle: "Shortcuts: (none bound)",
				StartEnabled:    true,
				StopTitle:       "Stop Session",
				EditEnabled:     true,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := viewFor(tt.snap); got != tt.want {
				t.Fatalf("viewFor() =\n%+v\nwant\n%+v", got, tt.want)
			}
		})
	}
}

func TestBuildBindingDiffHtml(t *testing.T) {
	page := BuildBindingDiffHtml(
		[]shortcut.Request{
			{ID: "a", PreferredTrigger: "CTRL+T", HasTrigger: true},
			{ID: "b<x>", PreferredTrigger: "F3", HasTrigger: true},
		},
		[]shortcut.Bound{{ID: "a", TriggerDescription: "Ctrl+Y"}},
		-1,
	)
	for _, want := range []string{"Binding Summary:", "diff-changed", "diff-delete", "b&lt;x&gt;", "<ins>"} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(page, "b<x>") {
		t.Error("shortcut id not escaped")
	}
}

func TestNotificationLevels(t *testing.T) {
	n := NewNotificationManager(false, "test", nil)
	var shown []string
	n.notify = func(title, message string) error {
		shown = append(shown, title)
		return nil
	}

	n.Show(LevelInfo, "info", "")
	n.Show(LevelWarn, "warn", "")
	n.Show(LevelError, "boom", "")
	if len(shown) != 1 || shown[0] != "Error: boom" {
		t.Fatalf("disabled manager showed %v", shown)
	}

	n.SetEnabled(true)
	n.notify = func(title, message string) error {
		shown = append(shown, title)
		return errors.New("no daemon")
	}
	n.Show(LevelInfo, "hello", "")
	n.Show(LevelWarn, "careful", "")
	if len(shown) != 3 || shown[1] != "hello" || shown[2] != "Warning: careful" {
		t.Fatalf("enabled manager showed %v", shown)
	}
}
