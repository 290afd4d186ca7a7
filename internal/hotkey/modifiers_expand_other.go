//go:build !linux

package hotkey

import "golang.design/x/hotkey"

func modifierVariants(modifiers []hotkey.Modifier) [][]hotkey.Modifier {
	return [][]hotkey.Modifier{modifiers}
}
