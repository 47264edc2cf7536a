package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"lookout/internal/notify"
	"lookout/internal/router"
	"lookout/pkg/logging"
)

// Publisher sends one approved item to a destination.
type Publisher interface {
	Publish(ctx context.Context, item router.ApprovedItem) error
}

// EmailPublisherConfig wires the email-draft publisher.
type EmailPublisherConfig struct {
	Sender *notify.EmailSender
	SMTP   notify.SMTPConfig
	To     string
	Logger logging.Logger
}

// EmailPublisher mails each approved draft to the operator, who posts it by
// hand. Missing SMTP configuration downgrades to a warning instead of an
// error so the rest of the batch still goes out.
type EmailPublisher struct {
	sender *notify.EmailSender
	smtp   notify.SMTPConfig
	to     string
	logger logging.Logger
}

func NewEmailPublisher(cfg EmailPublisherConfig) *EmailPublisher {
	return &EmailPublisher{
		sender: cfg.Sender,
		smtp:   cfg.SMTP,
		to:     cfg.To,
		logger: cfg.Logger,
	}
}

func (p *EmailPublisher) Publish(ctx context.Context, item router.ApprovedItem) error {
	if p.smtp.Host == "" || p.smtp.From == "" {
		p.logger.Warn("Publisher: SMTP not configured, skipping email")
		return nil
	}
	if p.to == "" {
		p.logger.Warn("Publisher: no recipient configured, skipping email")
		return nil
	}

	subject := draftEmailSubject(item)
	if err := p.sender.SendMail(ctx, p.to, subject, renderDraftEmail(item)); err != nil {
		return fmt.Errorf("send draft email: %w", err)
	}
	p.logger.WithField("file", item.File).Info("Draft email sent")
	return nil
}

func draftEmailSubject(item router.ApprovedItem) string {
	preview := item.Title
	if len(preview) > 60 {
		preview = preview[:57] + "..."
	}
	return fmt.Sprintf("[lookout] Ready to post: %s", preview)
}

func renderDraftEmail(item router.ApprovedItem) string {
	return fmt.Sprintf(
		`<h2>%s</h2><p><a href="%s">%s</a></p><pre style="white-space:pre-wrap">%s</pre><p>Platforms: %s</p>`,
		item.Title, item.URL, item.URL, item.Content, joinPlatforms(item.Platforms))
}

func joinPlatforms(platforms []string) string {
	if len(platforms) == 0 {
		return "twitter"
	}
	out := platforms[0]
	for _, p := range platforms[1:] {
		out += ", " + p
	}
	return out
}

// OutboxPublisher drops each approved item into an outbox directory as JSON,
// for external posting tools to pick up.
type OutboxPublisher struct {
	dir    string
	logger logging.Logger
	now    func() time.Time
}

func NewOutboxPublisher(dir string, logger logging.Logger) *OutboxPublisher {
	return &OutboxPublisher{dir: dir, logger: logger, now: time.Now}
}

func (p *OutboxPublisher) Publish(_ context.Context, item router.ApprovedItem) error {
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return fmt.Errorf("create outbox dir: %w", err)
	}
	data, err := json.MarshalIndent(item, "", "  ")
	if err != nil {
		return fmt.Errorf("encode outbox item: %w", err)
	}
	name := p.now().Format("20060102-150405") + "-" + item.File + ".json"
	path := filepath.Join(p.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write outbox item: %w", err)
	}
	p.logger.WithField("file", name).Info("Item written to outbox")
	return nil
}
