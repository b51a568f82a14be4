// Package notify shows transient messages as desktop notifications.
package notify

import (
	"github.com/gen2brain/beeep"
	"github.com/rs/zerolog"
)

const appName = "Key Registers"

// maxMessage caps the notification body.
const maxMessage = 100

// Notifier sends desktop notifications.
type Notifier struct {
	enabled bool
	send    func(title, message, icon string) error
	log     zerolog.Logger
}

func New(enabled bool, log zerolog.Logger) *Notifier {
	return &Notifier{
		enabled: enabled,
		send:    func(title, message, icon string) error { return beeep.Notify(title, message, icon) },
		log:     log.With().Str("component", "notify").Logger(),
	}
}

// ShowMessage displays text briefly. It returns before the notification
// is delivered; failures are logged and ignored.
func (n *Notifier) ShowMessage(text string) {
	if !n.enabled || text == "" {
		return
	}
	if r := []rune(text); len(r) > maxMessage {
		text = string(r[:maxMessage]) + "..."
	}
	// beeep shells out to notify-send/osascript/toast
	go func() {
		if err := n.send(appName, text, ""); err != nil {
			n.log.Debug().Err(err).Msg("Notification failed")
		}
	}()
}
