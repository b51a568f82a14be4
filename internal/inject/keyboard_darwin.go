//go:build darwin

package inject

/*
#cgo LDFLAGS: -framework ApplicationServices -framework Carbon
#include <ApplicationServices/ApplicationServices.h>
#include <Carbon/Carbon.h>

// Send Cmd+<key>
static void sendCommandCombo(CGKeyCode key) {
    CGEventSourceRef source = CGEventSourceCreate(kCGEventSourceStateHIDSystemState);

    CGEventRef keyDown = CGEventCreateKeyboardEvent(source, key, true);
    CGEventSetFlags(keyDown, kCGEventFlagMaskCommand);
    CGEventRef keyUp = CGEventCreateKeyboardEvent(source, key, false);
    CGEventSetFlags(keyUp, kCGEventFlagMaskCommand);

    CGEventPost(kCGHIDEventTap, keyDown);
    CGEventPost(kCGHIDEventTap, keyUp);

    CFRelease(keyDown);
    CFRelease(keyUp);
    if (source != NULL) {
        CFRelease(source);
    }
}
*/
import "C"

import (
	"fmt"

	"github.com/petems/keyregisters/internal/permissions"
)

const (
	keyC = 8 // kVK_ANSI_C
	keyV = 9 // kVK_ANSI_V
)

// sendCombo posts Cmd+C or Cmd+V; requires Accessibility permission
func sendCombo(c Combo) error {
	if !permissions.CheckAccessibility(false) {
		return fmt.Errorf("accessibility permission not granted: %w", ErrUnavailable)
	}

	key := keyV
	if c == ComboCopy {
		key = keyC
	}
	C.sendCommandCombo(C.CGKeyCode(key))
	return nil
}
