//go:build linux

package inject

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/go-vgo/robotgo"
)

type backend int

const (
	backendNone backend = iota
	backendX11
	backendWayland
)

// pickBackend chooses between XTest (robotgo) and wtype from the session
// environment.
func pickBackend(getenv func(string) string) backend {
	switch strings.ToLower(getenv("XDG_SESSION_TYPE")) {
	case "x11":
		return backendX11
	case "wayland":
		return backendWayland
	}
	if getenv("WAYLAND_DISPLAY") != "" {
		return backendWayland
	}
	if getenv("DISPLAY") != "" {
		return backendX11
	}
	return backendNone
}

func comboKey(c Combo) string {
	if c == ComboCopy {
		return "c"
	}
	return "v"
}

// sendCombo sends Ctrl+C / Ctrl+V through XTest on X11 or wtype on Wayland
func sendCombo(c Combo) error {
	key := comboKey(c)

	switch pickBackend(os.Getenv) {
	case backendX11:
		if err := robotgo.KeyTap(key, "ctrl"); err != nil {
			return fmt.Errorf("xtest %s: %w", c, err)
		}
		return nil
	case backendWayland:
		return sendWayland(key)
	default:
		return fmt.Errorf("no display session: %w", ErrUnavailable)
	}
}

// sendWayland starts wtype and reaps it in the background so the event
// loop never waits on the child.
func sendWayland(key string) error {
	if _, err := exec.LookPath("wtype"); err != nil {
		return fmt.Errorf("wtype not installed: %w", ErrUnavailable)
	}
	cmd := exec.Command("wtype", "-M", "ctrl", key, "-m", "ctrl")
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start wtype: %w", err)
	}
	go cmd.Wait()
	return nil
}
