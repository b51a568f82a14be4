package hotkey

import (
	"testing"

	"github.com/petems/keyregisters/internal/settings"
	"github.com/rs/zerolog"
)

func TestBindingString(t *testing.T) {
	b := Binding{ID: 11, Digit: 1, Modifiers: settings.Cmd | settings.Opt}
	if got := b.String(); got != "opt+cmd+1" {
		t.Errorf("unexpected binding string %q", got)
	}
}

func TestModifiersMapping(t *testing.T) {
	tests := []struct {
		mods settings.Modifiers
		want int
	}{
		{0, 0},
		{settings.Cmd, 1},
		{settings.Cmd | settings.Opt | settings.Shift, 3},
		{settings.Cmd | settings.Opt | settings.Shift | settings.Ctrl, 4},
	}
	for _, tt := range tests {
		if got := len(modifiers(tt.mods)); got != tt.want {
			t.Errorf("%s: expected %d native modifiers, got %d", tt.mods, tt.want, got)
		}
	}
}

func TestRegisterRejectsBadDigit(t *testing.T) {
	s := New(zerolog.Nop())
	if err := s.Register(Binding{ID: 1, Digit: 10, Modifiers: settings.Cmd}); err == nil {
		t.Error("expected error for digit 10")
	}
}
