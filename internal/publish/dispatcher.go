package publish

import (
	"context"

	"lookout/internal/router"
	"lookout/internal/stats"
	"lookout/pkg/logging"
)

// DispatcherConfig wires the publish path.
type DispatcherConfig struct {
	Publisher        Publisher
	Humanizer        *Humanizer // optional
	Stats            *stats.Store
	MaxPostsPerDay   int
	MaxRepliesPerDay int
	Logger           logging.Logger
}

// Dispatcher runs approved items through the sanitizer gate, the optional
// humanizer, and the daily rate limits before handing them to the publisher.
// Posts and replies are budgeted separately.
type Dispatcher struct {
	publisher        Publisher
	humanizer        *Humanizer
	stats            *stats.Store
	maxPostsPerDay   int
	maxRepliesPerDay int
	logger           logging.Logger
}

func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	maxPosts := cfg.MaxPostsPerDay
	if maxPosts <= 0 {
		maxPosts = 5
	}
	maxReplies := cfg.MaxRepliesPerDay
	if maxReplies <= 0 {
		maxReplies = 10
	}
	return &Dispatcher{
		publisher:        cfg.Publisher,
		humanizer:        cfg.Humanizer,
		stats:            cfg.Stats,
		maxPostsPerDay:   maxPosts,
		maxRepliesPerDay: maxReplies,
		logger:           cfg.Logger,
	}
}

// DispatchResult summarizes one PublishAll pass.
type DispatchResult struct {
	Published   int
	Blocked     int // sanitizer violations
	RateLimited int

	// PublishedFiles lists the queue file names that went out, so the
	// caller can flip their status.
	PublishedFiles []string
}

// PublishAll publishes items in order, charging replies against the reply
// cap and everything else against the post cap. An item over its cap is
// deferred without blocking items under the other cap. A sanitizer violation
// blocks that item and moves on; a publisher error aborts, since the same
// failure would hit every remaining item.
func (d *Dispatcher) PublishAll(ctx context.Context, items []router.ApprovedItem) (DispatchResult, error) {
	var result DispatchResult
	for _, item := range items {
		isReply := item.Interaction == "reply"
		if isReply && !d.stats.CanReply(d.maxRepliesPerDay) {
			result.RateLimited++
			d.logger.WithFields(logging.Fields{
				"file":        item.File,
				"max_per_day": d.maxRepliesPerDay,
			}).Warn("Daily reply cap reached, deferring item")
			continue
		}
		if !isReply && !d.stats.CanPost(d.maxPostsPerDay) {
			result.RateLimited++
			d.logger.WithFields(logging.Fields{
				"file":        item.File,
				"max_per_day": d.maxPostsPerDay,
			}).Warn("Daily post cap reached, deferring item")
			continue
		}

		content, ok := SanitizeContent(item.Content)
		if !ok {
			result.Blocked++
			d.logger.WithFields(logging.Fields{
				"file":    item.File,
				"excerpt": excerpt(content),
			}).Warn("Content failed safety gate, blocked from publishing")
			continue
		}

		if d.humanizer != nil {
			content = d.humanizer.Humanize(ctx, content)
		}
		item.Content = content

		if err := d.publisher.Publish(ctx, item); err != nil {
			return result, err
		}
		if isReply {
			if err := d.stats.RecordReply(); err != nil {
				return result, err
			}
		} else {
			if err := d.stats.RecordPost(); err != nil {
				return result, err
			}
		}
		result.Published++
		result.PublishedFiles = append(result.PublishedFiles, item.File)
	}
	return result, nil
}

func excerpt(s string) string {
	const max = 120
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
