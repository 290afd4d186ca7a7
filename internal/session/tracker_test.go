package session

import (
	"reflect"
	"testing"

	"github.com/TanaroSch/portal-shortcuts/internal/shortcut"
)

func newBoundTracker() *Tracker {
	tr := NewTracker()
	tr.Reset([]shortcut.Bound{
		{ID: "a", TriggerDescription: "Ctrl+T"},
		{ID: "b", TriggerDescription: "Alt+B"},
	})
	return tr
}

func TestTrackerActivationIdempotent(t *testing.T) {
	tr := newBoundTracker()

	first := tr.Activate("a")
	second := tr.Activate("a")
	if first != second {
		t.Fatalf("display changed on repeated activation: %q vs %q", first, second)
	}
	if got := tr.Active(); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("active = %v", got)
	}
	if second != "[a: Ctrl+T], b: Alt+B" {
		t.Fatalf("display = %q", second)
	}
}

func TestTrackerDeactivationSymmetry(t *testing.T) {
	tr := newBoundTracker()
	tr.Activate("b")
	before := tr.Active()

	tr.Activate("a")
	tr.Deactivate("a")
	if got := tr.Active(); !reflect.DeepEqual(got, before) {
		t.Fatalf("active = %v, want %v", got, before)
	}
	if tr.Anomalies() != 0 {
		t.Fatalf("anomalies = %d", tr.Anomalies())
	}
}

func TestTrackerUnknownDeactivation(t *testing.T) {
	tr := newBoundTracker()
	tr.Activate("a")

	display := tr.Deactivate("y")
	if got := tr.Active(); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("active = %v", got)
	}
	if tr.Anomalies() != 1 {
		t.Fatalf("anomalies = %d, want 1", tr.Anomalies())
	}
	if display != "[a: Ctrl+T], b: Alt+B" {
		t.Fatalf("display = %q", display)
	}
}

func TestTrackerIgnoresUnboundActivation(t *testing.T) {
	tr := newBoundTracker()
	tr.Activate("zzz")
	if tr.IsActive("zzz") {
		t.Fatal("unbound id entered the activation set")
	}
	if tr.Anomalies() != 1 {
		t.Fatalf("anomalies = %d", tr.Anomalies())
	}
}

func TestTrackerResetClears(t *testing.T) {
	tr := newBoundTracker()
	tr.Activate("a")
	tr.Deactivate("nope")

	tr.Reset(nil)
	if len(tr.Active()) != 0 || len(tr.Bound()) != 0 || tr.Anomalies() != 0 || tr.Display() != "" {
		t.Fatalf("tracker not cleared: active=%v bound=%v", tr.Active(), tr.Bound())
	}
}

func TestTrackerBoundIsCopy(t *testing.T) {
	bound := []shortcut.Bound{{ID: "a", TriggerDescription: "F1"}}
	tr := NewTracker()
	tr.Reset(bound)
	bound[0].ID = "mutated"

	got := tr.Bound()
	got[0].TriggerDescription = "also mutated"
	if tr.Display() != "a: F1" {
		t.Fatalf("display = %q", tr.Display())
	}
}
