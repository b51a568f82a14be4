//go:build darwin

package hotkey

import (
	"golang.design/x/hotkey"

	"github.com/petems/keyregisters/internal/settings"
)

func modifiers(m settings.Modifiers) []hotkey.Modifier {
	var mods []hotkey.Modifier
	if m.Has(settings.Ctrl) {
		mods = append(mods, hotkey.ModCtrl)
	}
	if m.Has(settings.Opt) {
		mods = append(mods, hotkey.ModOption)
	}
	if m.Has(settings.Shift) {
		mods = append(mods, hotkey.ModShift)
	}
	if m.Has(settings.Cmd) {
		mods = append(mods, hotkey.ModCmd)
	}
	return mods
}
