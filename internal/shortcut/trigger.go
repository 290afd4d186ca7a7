package shortcut

import (
	"fmt"
	"strings"
)

// Modifier is a keyboard modifier in a trigger.
type Modifier int

const (
	ModCtrl Modifier = iota + 1
	ModAlt
	ModShift
	ModSuper
)

func (m Modifier) String() string {
	switch m {
	case ModCtrl:
		return "Ctrl"
	case ModAlt:
		return "Alt"
	case ModShift:
		return "Shift"
	case ModSuper:
		return "Super"
	default:
		return "Unknown"
	}
}

// Trigger is a parsed key combination.
type Trigger struct {
	Modifiers []Modifier
	Key       string // lower case, e.g. "t", "f5", "space"
}

// modifierNames covers GTK accelerator names, the portal's "CTRL+a"
// notation and the plain "ctrl+alt+v" form used in config files.
var modifierNames = map[string]Modifier{
	"primary": ModCtrl,
	"control": ModCtrl,
	"ctrl":    ModCtrl,
	"alt":     ModAlt,
	"mod1":    ModAlt,
	"shift":   ModShift,
	"super":   ModSuper,
	"logo":    ModSuper,
	"meta":    ModSuper,
	"mod4":    ModSuper,
	"win":     ModSuper,
	"cmd":     ModSuper,
}

// ParseTrigger understands "<Primary>t", "<Control><Alt>Delete",
// "CTRL+ALT+v" and "ctrl+alt+v".
func ParseTrigger(s string) (Trigger, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Trigger{}, fmt.Errorf("empty trigger")
	}

	var t Trigger
	seen := make(map[Modifier]bool)
	addModifier := func(name string) error {
		mod, ok := modifierNames[strings.ToLower(name)]
		if !ok {
			return fmt.Errorf("unsupported modifier: %s", name)
		}
		if !seen[mod] {
			seen[mod] = true
			t.Modifiers = append(t.Modifiers, mod)
		}
		return nil
	}

	if strings.HasPrefix(s, "<") {
		rest := s
		for strings.HasPrefix(rest, "<") {
			end := strings.Index(rest, ">")
			if end < 0 {
				return Trigger{}, fmt.Errorf("unterminated modifier in %q", s)
			}
			if err := addModifier(rest[1:end]); err != nil {
				return Trigger{}, err
			}
			rest = rest[end+1:]
		}
		t.Key = strings.ToLower(strings.TrimSpace(rest))
	} else {
		parts := strings.Split(s, "+")
		for _, part := range parts[:len(parts)-1] {
			if err := addModifier(strings.TrimSpace(part)); err != nil {
				return Trigger{}, err
			}
		}
		t.Key = strings.ToLower(strings.TrimSpace(parts[len(parts)-1]))
	}

	if t.Key == "" {
		return Trigger{}, fmt.Errorf("trigger %q has no key", s)
	}
	return t, nil
}

// String renders the trigger for people, e.g. "Ctrl+Alt+T".
func (t Trigger) String() string {
	parts := make([]string, 0, len(t.Modifiers)+1)
	for _, m := range t.Modifiers {
		parts = append(parts, m.String())
	}
	key := t.Key
	if len(key) == 1 {
		key = strings.ToUpper(key)
	} else if key != "" {
		key = strings.ToUpper(key[:1]) + key[1:]
	}
	parts = append(parts, key)
	return strings.Join(parts, "+")
}

// Has reports whether the trigger uses the modifier.
func (t Trigger) Has(m Modifier) bool {
	for _, mod := range t.Modifiers {
		if mod == m {
			return true
		}
	}
	return false
}
