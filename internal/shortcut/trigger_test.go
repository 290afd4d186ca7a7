package shortcut

import (
	"reflect"
	"testing"
)

func TestParseTrigger(t *testing.T) {
	tests := []struct {
		in       string
		wantMods []Modifier
		wantKey  string
		wantStr  string
	}{
		{"<Primary>t", []Modifier{ModCtrl}, "t", "Ctrl+T"},
		{"<Control><Alt>Delete", []Modifier{ModCtrl, ModAlt}, "delete", "Ctrl+Alt+Delete"},
		{"CTRL+ALT+v", []Modifier{ModCtrl, ModAlt}, "v", "Ctrl+Alt+V"},
		{"ctrl+shift+f5", []Modifier{ModCtrl, ModShift}, "f5", "Ctrl+Shift+F5"},
		{"<Super>space", []Modifier{ModSuper}, "space", "Super+Space"},
		{"LOGO+a", []Modifier{ModSuper}, "a", "Super+A"},
		{"q", nil, "q", "Q"},
		{"<Primary><Control>k", []Modifier{ModCtrl}, "k", "Ctrl+K"},
	}

	for _, tt := range tests {
		got, err := ParseTrigger(tt.in)
		if err != nil {
			t.Fatalf("ParseTrigger(%q) error: %v", tt.in, err)
		}
		if !reflect.DeepEqual(got.Modifiers, tt.wantMods) {
			t.Fatalf("ParseTrigger(%q) modifiers = %v, want %v", tt.in, got.Modifiers, tt.wantMods)
		}
		if got.Key != tt.wantKey {
			t.Fatalf("ParseTrigger(%q) key = %q, want %q", tt.in, got.Key, tt.wantKey)
		}
		if got.String() != tt.wantStr {
			t.Fatalf("ParseTrigger(%q).String() = %q, want %q", tt.in, got.String(), tt.wantStr)
		}
	}
}

func TestParseTriggerErrors(t *testing.T) {
	for _, in := range []string{"", "   ", "<Primary", "<Hyper>x", "ctrl+", "bogus+x"} {
		if _, err := ParseTrigger(in); err == nil {
			t.Fatalf("ParseTrigger(%q) expected error", in)
		}
	}
}

func TestTriggerHas(t *testing.T) {
	tr := Trigger{Modifiers: []Modifier{ModCtrl, ModAlt}, Key: "v"}
	if !tr.Has(ModAlt) || tr.Has(ModShift) {
		t.Fatalf("Has mismatch for %v", tr)
	}
}
