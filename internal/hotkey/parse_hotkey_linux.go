//go:build linux

package hotkey

import (
	"fmt"

	"golang.design/x/hotkey"

	"github.com/TanaroSch/portal-shortcuts/internal/shortcut"
)

// toHotkey converts a parsed trigger into golang.design/x/hotkey modifiers
// and key.
//
// Linux implementation notes (X11):
// - Alt is typically Mod1
// - Super/Win is typically Mod4
func toHotkey(t shortcut.Trigger) ([]hotkey.Modifier, hotkey.Key, error) {
	key, exists := KeyMap[t.Key]
	if !exists {
		return nil, 0, fmt.Errorf("unsupported key: %s", t.Key)
	}

	var modifiers []hotkey.Modifier
	for _, m := range t.Modifiers {
		switch m {
		case shortcut.ModCtrl:
			modifiers = append(modifiers, hotkey.ModCtrl)
		case shortcut.ModAlt:
			modifiers = append(modifiers, hotkey.Mod1)
		case shortcut.ModShift:
			modifiers = append(modifiers, hotkey.ModShift)
		case shortcut.ModSuper:
			modifiers = append(modifiers, hotkey.Mod4)
		default:
			return nil, 0, fmt.Errorf("unsupported modifier: %s", m)
		}
	}

	return modifiers, key, nil
}
