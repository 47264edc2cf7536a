package adapters

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"lookout/internal/config"
	"lookout/internal/feed"
	"lookout/pkg/logging"
)

const defaultRSSMaxItems = 20

// RSSAdapterConfig wires the RSS adapter's collaborators.
type RSSAdapterConfig struct {
	Settings config.AdapterSettings
	Cache    SeenCache
	Client   *http.Client
	Enricher *ArticleEnricher // optional; fills in missing summaries
	Logger   logging.Logger
}

// RSSAdapter pulls articles from the configured RSS/Atom feeds, scores them
// against the keyword tiers, drops already-seen URLs, and returns the
// top-ranked slice.
type RSSAdapter struct {
	settings config.AdapterSettings
	cache    SeenCache
	parser   *gofeed.Parser
	enricher *ArticleEnricher
	logger   logging.Logger
	maxItems int
}

func NewRSSAdapter(cfg RSSAdapterConfig) *RSSAdapter {
	parser := gofeed.NewParser()
	parser.UserAgent = enricherUserAgent
	if cfg.Client != nil {
		parser.Client = cfg.Client
	}
	maxItems := cfg.Settings.MaxItems
	if maxItems <= 0 {
		maxItems = defaultRSSMaxItems
	}
	return &RSSAdapter{
		settings: cfg.Settings,
		cache:    cfg.Cache,
		parser:   parser,
		enricher: cfg.Enricher,
		logger:   cfg.Logger,
		maxItems: maxItems,
	}
}

func (a *RSSAdapter) Name() string  { return "rss" }
func (a *RSSAdapter) Enabled() bool { return a.settings.Enabled }

// Fetch walks every configured feed. A single dead feed is logged and
// contributes zero items; having no feeds configured at all is a
// misconfiguration and returns an error.
func (a *RSSAdapter) Fetch(ctx context.Context) ([]feed.ContentItem, error) {
	if !a.settings.Enabled {
		return nil, nil
	}
	if len(a.settings.Feeds) == 0 {
		return nil, fmt.Errorf("rss adapter enabled but no feeds configured")
	}

	var items []feed.ContentItem
	for _, src := range a.settings.Feeds {
		parsed, err := a.parser.ParseURLWithContext(src.URL, ctx)
		if err != nil {
			a.logger.WithFields(logging.Fields{
				"feed": src.Name,
				"url":  src.URL,
			}).WithError(err).Warn("RSS feed fetch failed, skipping")
			continue
		}
		for _, entry := range parsed.Items {
			item, ok := a.buildItem(ctx, src, entry)
			if !ok {
				continue
			}
			items = append(items, item)
		}
	}

	items = dropSeen(items, a.cache)
	return feed.RankByKeywordScore(items, a.maxItems), nil
}

func (a *RSSAdapter) buildItem(ctx context.Context, src config.FeedSource, entry *gofeed.Item) (feed.ContentItem, bool) {
	link := strings.TrimSpace(entry.Link)
	if link == "" || strings.TrimSpace(entry.Title) == "" {
		return feed.ContentItem{}, false
	}

	summary := entrySummary(entry)
	if summary == "" && a.enricher != nil {
		enriched, err := a.enricher.Summarize(ctx, link)
		if err != nil {
			a.logger.WithField("url", link).WithError(err).Debug("Article enrichment failed, keeping empty summary")
		} else {
			summary = enriched
		}
	}

	published := time.Now()
	if entry.PublishedParsed != nil {
		published = *entry.PublishedParsed
	} else if entry.UpdatedParsed != nil {
		published = *entry.UpdatedParsed
	}

	return feed.ContentItem{
		ID:           feed.ItemID(link),
		Title:        strings.TrimSpace(entry.Title),
		URL:          link,
		Summary:      summary,
		Source:       src.Name,
		SourceType:   feed.SourceRSS,
		Published:    published,
		KeywordScore: feed.KeywordScore(entry.Title+" "+summary, a.settings.Keywords, src.HighPriority),
		FetchedAt:    time.Now(),
		AdapterID:    a.Name(),
	}, true
}

func entrySummary(entry *gofeed.Item) string {
	if s := collapseBlank(stripTags(entry.Description)); s != "" {
		return truncateRunes(s, maxSummaryRunes)
	}
	if s := collapseBlank(stripTags(entry.Content)); s != "" {
		return truncateRunes(s, maxSummaryRunes)
	}
	return ""
}

// stripTags removes HTML markup that many feeds embed in descriptions.
func stripTags(s string) string {
	if !strings.Contains(s, "<") {
		return strings.TrimSpace(s)
	}
	var sb strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			sb.WriteRune(' ')
		case !inTag:
			sb.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}
