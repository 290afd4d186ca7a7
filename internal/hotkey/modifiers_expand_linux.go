//go:build linux

package hotkey

import "golang.design/x/hotkey"

// X11 lock masks that commonly interfere with XGrabKey.
// CapsLock is LockMask (1<<1) and NumLock is often Mod2.
const (
	linuxCapsLockMask hotkey.Modifier = 1 << 1
)

// modifierVariants returns the plain grab first, then the same grab with
// NumLock, CapsLock and both held.
func modifierVariants(modifiers []hotkey.Modifier) [][]hotkey.Modifier {
	with := func(extra ...hotkey.Modifier) []hotkey.Modifier {
		return append(append([]hotkey.Modifier(nil), modifiers...), extra...)
	}
	return [][]hotkey.Modifier{
		with(),
		with(hotkey.Mod2),
		with(linuxCapsLockMask),
		with(hotkey.Mod2, linuxCapsLockMask),
	}
}
