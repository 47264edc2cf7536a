package adapters

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"lookout/internal/config"
	"lookout/internal/feed"
	"lookout/pkg/logging"
)

const defaultAnimeMaxItems = 5

// Titles in anime news headlines are usually quoted or bracketed.
var animeTitlePattern = regexp.MustCompile(`["“「『]([^"”」』]{2,80})["”」』]`)

var sciFiMarkers = []string{
	"sci-fi", "science fiction", "mecha", "space", "cyberpunk",
	"robot", "android", "dystopia", "time travel", "gundam",
}

// AnimeAdapterConfig wires the anime news adapter.
type AnimeAdapterConfig struct {
	Settings config.AdapterSettings
	Cache    SeenCache
	Client   *http.Client
	Logger   logging.Logger
}

// AnimeAdapter pulls anime industry news feeds, tags each entry with the
// series titles it mentions and a sci-fi flag, and keeps only the top few
// keyword-ranked entries.
type AnimeAdapter struct {
	settings config.AdapterSettings
	cache    SeenCache
	parser   *gofeed.Parser
	logger   logging.Logger
	maxItems int
}

func NewAnimeAdapter(cfg AnimeAdapterConfig) *AnimeAdapter {
	parser := gofeed.NewParser()
	parser.UserAgent = enricherUserAgent
	if cfg.Client != nil {
		parser.Client = cfg.Client
	}
	maxItems := cfg.Settings.MaxItems
	if maxItems <= 0 {
		maxItems = defaultAnimeMaxItems
	}
	return &AnimeAdapter{
		settings: cfg.Settings,
		cache:    cfg.Cache,
		parser:   parser,
		logger:   cfg.Logger,
		maxItems: maxItems,
	}
}

func (a *AnimeAdapter) Name() string  { return "anime" }
func (a *AnimeAdapter) Enabled() bool { return a.settings.Enabled }

func (a *AnimeAdapter) Fetch(ctx context.Context) ([]feed.ContentItem, error) {
	if !a.settings.Enabled {
		return nil, nil
	}
	if len(a.settings.Feeds) == 0 {
		return nil, fmt.Errorf("anime adapter enabled but no feeds configured")
	}

	var items []feed.ContentItem
	for _, src := range a.settings.Feeds {
		parsed, err := a.parser.ParseURLWithContext(src.URL, ctx)
		if err != nil {
			a.logger.WithFields(logging.Fields{
				"feed": src.Name,
				"url":  src.URL,
			}).WithError(err).Warn("Anime feed fetch failed, skipping")
			continue
		}
		for _, entry := range parsed.Items {
			link := strings.TrimSpace(entry.Link)
			title := strings.TrimSpace(entry.Title)
			if link == "" || title == "" {
				continue
			}
			summary := entrySummary(entry)
			text := title + " " + summary

			published := time.Now()
			if entry.PublishedParsed != nil {
				published = *entry.PublishedParsed
			}

			items = append(items, feed.ContentItem{
				ID:           feed.ItemID(link),
				Title:        title,
				URL:          link,
				Summary:      summary,
				Source:       src.Name,
				SourceType:   feed.SourceAnime,
				Published:    published,
				KeywordScore: feed.KeywordScore(text, a.settings.Keywords, src.HighPriority),
				AnimeMeta: &feed.AnimeMeta{
					Titles:  ExtractAnimeTitles(text),
					IsSciFi: IsSciFi(text),
				},
				FetchedAt: time.Now(),
				AdapterID: a.Name(),
			})
		}
	}

	items = dropSeen(items, a.cache)
	return feed.RankByKeywordScore(items, a.maxItems), nil
}

// ExtractAnimeTitles pulls quoted series names out of headline text.
// Duplicates are collapsed, first occurrence order preserved.
func ExtractAnimeTitles(text string) []string {
	matches := animeTitlePattern.FindAllStringSubmatch(text, -1)
	seen := make(map[string]bool)
	var titles []string
	for _, m := range matches {
		title := strings.TrimSpace(m[1])
		if title == "" || seen[strings.ToLower(title)] {
			continue
		}
		seen[strings.ToLower(title)] = true
		titles = append(titles, title)
	}
	return titles
}

// IsSciFi reports whether the text mentions science-fiction themes.
func IsSciFi(text string) bool {
	lowered := strings.ToLower(text)
	for _, marker := range sciFiMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}
