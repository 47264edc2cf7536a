package notify

import (
	"context"
	"os/exec"
	"runtime"

	"lookout/pkg/logging"
)

// DesktopNotifier pops a desktop notification via notify-send (Linux) or
// osascript (macOS). Always best-effort: a missing binary or a headless
// session only produces a debug log line.
type DesktopNotifier struct {
	logger logging.Logger
	goos   string
	runCmd func(ctx context.Context, name string, args ...string) error
}

func NewDesktopNotifier(logger logging.Logger) *DesktopNotifier {
	return &DesktopNotifier{
		logger: logger,
		goos:   runtime.GOOS,
		runCmd: func(ctx context.Context, name string, args ...string) error {
			return exec.CommandContext(ctx, name, args...).Run()
		},
	}
}

// Notify shows title/message on the desktop. Errors are swallowed after
// logging — notification must never fail a pipeline run.
func (n *DesktopNotifier) Notify(ctx context.Context, title, message string) {
	var err error
	switch n.goos {
	case "darwin":
		script := `display notification "` + escapeAppleScript(message) + `" with title "` + escapeAppleScript(title) + `"`
		err = n.runCmd(ctx, "osascript", "-e", script)
	default:
		err = n.runCmd(ctx, "notify-send", title, message)
	}
	if err != nil {
		n.logger.WithError(err).Debug("Desktop notification failed")
	}
}

func escapeAppleScript(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '"' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
