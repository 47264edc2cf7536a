package notify

import (
	"context"
	"fmt"
	"html"

	"lookout/pkg/logging"
)

// Notifier is the best-effort notification contract: implementations log
// failures and never return them.
type Notifier interface {
	Notify(ctx context.Context, title, message string)
}

// EmailNotifier sends title/message as a short HTML mail. Best-effort, same
// contract as the desktop notifier.
type EmailNotifier struct {
	sender *EmailSender
	to     string
	logger logging.Logger
}

func NewEmailNotifier(sender *EmailSender, to string, logger logging.Logger) *EmailNotifier {
	return &EmailNotifier{sender: sender, to: to, logger: logger}
}

func (n *EmailNotifier) Notify(ctx context.Context, title, message string) {
	body := fmt.Sprintf("<h3>%s</h3><p>%s</p>", html.EscapeString(title), html.EscapeString(message))
	if err := n.sender.SendMail(ctx, n.to, title, body); err != nil {
		n.logger.WithError(err).Debug("Email notification failed")
	}
}

// Multi fans a notification out to every configured channel.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, title, message string) {
	for _, n := range m {
		n.Notify(ctx, title, message)
	}
}
