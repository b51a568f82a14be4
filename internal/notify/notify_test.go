package notify

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type sent struct {
	title, message string
}

func newTestNotifier(enabled bool, err error) (*Notifier, chan sent) {
	out := make(chan sent, 4)
	n := New(enabled, zerolog.Nop())
	n.send = func(title, message, icon string) error {
		out <- sent{title, message}
		return err
	}
	return n, out
}

func waitSent(t *testing.T, out chan sent) sent {
	t.Helper()
	select {
	case s := <-out:
		return s
	case <-time.After(time.Second):
		t.Fatal("notification was not sent")
		return sent{}
	}
}

func TestShowMessage(t *testing.T) {
	n, out := newTestNotifier(true, nil)

	n.ShowMessage("Pasted → reg 3")

	got := waitSent(t, out)
	if got.title != appName || got.message != "Pasted → reg 3" {
		t.Errorf("unexpected notification %+v", got)
	}
}

func TestShowMessageDoesNotBlock(t *testing.T) {
	release := make(chan struct{})
	done := make(chan struct{})
	n := New(true, zerolog.Nop())
	n.send = func(title, message, icon string) error {
		<-release
		close(done)
		return nil
	}

	returned := make(chan struct{})
	go func() {
		n.ShowMessage("Saved → reg 1")
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("ShowMessage waited for a slow notification")
	}
	close(release)
	<-done
}

func TestShowMessageDisabled(t *testing.T) {
	n, out := newTestNotifier(false, nil)
	n.ShowMessage("Ready")

	select {
	case s := <-out:
		t.Errorf("disabled notifier should not send, got %+v", s)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestShowMessageEmpty(t *testing.T) {
	n, out := newTestNotifier(true, nil)
	n.ShowMessage("")

	select {
	case s := <-out:
		t.Errorf("empty text should not send, got %+v", s)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestShowMessageTruncates(t *testing.T) {
	n, out := newTestNotifier(true, nil)
	n.ShowMessage(strings.Repeat("é", 150))

	got := waitSent(t, out).message
	if !strings.HasSuffix(got, "...") || len([]rune(got)) != maxMessage+3 {
		t.Errorf("unexpected truncation: %d runes", len([]rune(got)))
	}
}

func TestShowMessageIgnoresErrors(t *testing.T) {
	n, out := newTestNotifier(true, errors.New("no notification daemon"))
	n.ShowMessage("Ready")
	waitSent(t, out)
}
