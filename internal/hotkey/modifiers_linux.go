//go:build linux

package hotkey

import (
	"golang.design/x/hotkey"

	"github.com/petems/keyregisters/internal/settings"
)

// X11: opt is Alt (Mod1), cmd is Super (Mod4)
func modifiers(m settings.Modifiers) []hotkey.Modifier {
	var mods []hotkey.Modifier
	if m.Has(settings.Ctrl) {
		mods = append(mods, hotkey.ModCtrl)
	}
	if m.Has(settings.Opt) {
		mods = append(mods, hotkey.Mod1)
	}
	if m.Has(settings.Shift) {
		mods = append(mods, hotkey.ModShift)
	}
	if m.Has(settings.Cmd) {
		mods = append(mods, hotkey.Mod4)
	}
	return mods
}
