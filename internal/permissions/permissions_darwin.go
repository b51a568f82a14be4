//go:build darwin

package permissions

/*
#cgo LDFLAGS: -framework ApplicationServices -framework Cocoa
#import <ApplicationServices/ApplicationServices.h>
#import <Cocoa/Cocoa.h>

int checkAccessibilityPermission(int prompt) {
    NSDictionary *options = @{(__bridge id)kAXTrustedCheckOptionPrompt: prompt ? @YES : @NO};
    return AXIsProcessTrustedWithOptions((__bridge CFDictionaryRef)options) ? 1 : 0;
}
*/
import "C"

import "fmt"

// CheckAccessibility reports whether the app may post synthetic key events.
// With prompt set, macOS shows its permission dialog when not yet trusted.
func CheckAccessibility(prompt bool) bool {
	p := C.int(0)
	if prompt {
		p = 1
	}
	return C.checkAccessibilityPermission(p) == 1
}

// EnsurePermissions prompts for Accessibility once at startup. Without it
// copy and paste synthesis become no-ops; hotkeys still register.
func EnsurePermissions() error {
	if !CheckAccessibility(true) {
		return fmt.Errorf("accessibility permission not granted (System Settings → Privacy & Security → Accessibility)")
	}
	return nil
}
