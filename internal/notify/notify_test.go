package notify

import (
	"context"
	"errors"
	"testing"

	"lookout/pkg/logging"
)

func TestDesktopNotifierLinux(t *testing.T) {
	var gotName string
	var gotArgs []string
	n := NewDesktopNotifier(logging.NewLogger())
	n.goos = "linux"
	n.runCmd = func(_ context.Context, name string, args ...string) error {
		gotName = name
		gotArgs = args
		return nil
	}
	n.Notify(context.Background(), "lookout", "3 items queued")
	if gotName != "notify-send" {
		t.Fatalf("command = %q, want notify-send", gotName)
	}
	if len(gotArgs) != 2 || gotArgs[0] != "lookout" || gotArgs[1] != "3 items queued" {
		t.Fatalf("args = %v", gotArgs)
	}
}

func TestDesktopNotifierDarwinEscapes(t *testing.T) {
	var gotArgs []string
	n := NewDesktopNotifier(logging.NewLogger())
	n.goos = "darwin"
	n.runCmd = func(_ context.Context, name string, args ...string) error {
		gotArgs = args
		return nil
	}
	n.Notify(context.Background(), "lookout", `said "hi"`)
	if len(gotArgs) != 2 || gotArgs[0] != "-e" {
		t.Fatalf("args = %v", gotArgs)
	}
	if want := `display notification "said \"hi\"" with title "lookout"`; gotArgs[1] != want {
		t.Fatalf("script = %q, want %q", gotArgs[1], want)
	}
}

func TestDesktopNotifierSwallowsFailure(t *testing.T) {
	n := NewDesktopNotifier(logging.NewLogger())
	n.goos = "linux"
	n.runCmd = func(context.Context, string, ...string) error {
		return errors.New("no display")
	}
	// Must not panic or propagate.
	n.Notify(context.Background(), "lookout", "message")
}

type recordingNotifier struct {
	titles []string
}

func (r *recordingNotifier) Notify(_ context.Context, title, _ string) {
	r.titles = append(r.titles, title)
}

func TestMultiFansOut(t *testing.T) {
	a := &recordingNotifier{}
	b := &recordingNotifier{}
	m := Multi{a, b}
	m.Notify(context.Background(), "run complete", "2 items queued")
	if len(a.titles) != 1 || len(b.titles) != 1 {
		t.Fatalf("fan-out = %v / %v", a.titles, b.titles)
	}
}

func TestSanitizeHeader(t *testing.T) {
	got := sanitizeHeader("subject\r\nBcc: attacker@example.com")
	if got != "subject  Bcc: attacker@example.com" {
		t.Fatalf("sanitizeHeader = %q", got)
	}
}
