package adapters

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"lookout/internal/config"
	"lookout/internal/feed"
	"lookout/pkg/logging"
)

const defaultFundingMaxItems = 20

var (
	amountPattern = regexp.MustCompile(`(?i)(?:US)?\$\s?(\d+(?:[.,]\d+)?)\s*(million|billion|mn|bn|m|b)\b`)
	roundPattern  = regexp.MustCompile(`(?i)\b(pre-seed|seed|angel|bridge|series\s+[a-f])\b`)
)

var taiwanMarkers = []string{"taiwan", "taipei", "hsinchu", "kaohsiung", "tsmc"}

var asiaMarkers = []string{
	"asia", "japan", "tokyo", "korea", "seoul", "china", "beijing",
	"shanghai", "shenzhen", "hong kong", "singapore", "india", "bangalore",
	"vietnam", "indonesia", "jakarta", "thailand", "malaysia",
}

// FundingAdapterConfig wires the VC funding-news adapter.
type FundingAdapterConfig struct {
	Settings config.AdapterSettings
	Cache    SeenCache
	Client   *http.Client
	Logger   logging.Logger
}

// FundingAdapter pulls venture-funding news feeds and annotates each entry
// with the raised amount, the round, and regional flags extracted from the
// headline and summary text.
type FundingAdapter struct {
	settings config.AdapterSettings
	cache    SeenCache
	parser   *gofeed.Parser
	logger   logging.Logger
	maxItems int
}

func NewFundingAdapter(cfg FundingAdapterConfig) *FundingAdapter {
	parser := gofeed.NewParser()
	parser.UserAgent = enricherUserAgent
	if cfg.Client != nil {
		parser.Client = cfg.Client
	}
	maxItems := cfg.Settings.MaxItems
	if maxItems <= 0 {
		maxItems = defaultFundingMaxItems
	}
	return &FundingAdapter{
		settings: cfg.Settings,
		cache:    cfg.Cache,
		parser:   parser,
		logger:   cfg.Logger,
		maxItems: maxItems,
	}
}

func (a *FundingAdapter) Name() string  { return "vc" }
func (a *FundingAdapter) Enabled() bool { return a.settings.Enabled }

func (a *FundingAdapter) Fetch(ctx context.Context) ([]feed.ContentItem, error) {
	if !a.settings.Enabled {
		return nil, nil
	}
	if len(a.settings.Feeds) == 0 {
		return nil, fmt.Errorf("vc adapter enabled but no feeds configured")
	}

	var items []feed.ContentItem
	for _, src := range a.settings.Feeds {
		parsed, err := a.parser.ParseURLWithContext(src.URL, ctx)
		if err != nil {
			a.logger.WithFields(logging.Fields{
				"feed": src.Name,
				"url":  src.URL,
			}).WithError(err).Warn("Funding feed fetch failed, skipping")
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

			meta := ExtractFundingMeta(text)
			items = append(items, feed.ContentItem{
				ID:           feed.ItemID(link),
				Title:        title,
				URL:          link,
				Summary:      summary,
				Source:       src.Name,
				SourceType:   feed.SourceVC,
				Published:    published,
				KeywordScore: feed.KeywordScore(text, a.settings.Keywords, src.HighPriority),
				FundingMeta:  &meta,
				FetchedAt:    time.Now(),
				AdapterID:    a.Name(),
			})
		}
	}

	items = dropSeen(items, a.cache)
	return feed.RankByKeywordScore(items, a.maxItems), nil
}

// ExtractFundingMeta parses funding amount, round, and regional markers out
// of free text. Zero values mean "not found" — no news text is rejected for
// parsing failures.
func ExtractFundingMeta(text string) feed.FundingMeta {
	meta := feed.FundingMeta{}

	if m := amountPattern.FindStringSubmatch(text); m != nil {
		raw := strings.ReplaceAll(m[1], ",", ".")
		amount, err := strconv.ParseFloat(raw, 64)
		if err == nil {
			switch strings.ToLower(m[2]) {
			case "billion", "bn", "b":
				amount *= 1000
			}
			meta.AmountMillions = amount
		}
	}

	if m := roundPattern.FindStringSubmatch(text); m != nil {
		round := strings.ToLower(m[1])
		meta.Round = strings.Join(strings.Fields(round), " ")
	}

	lowered := strings.ToLower(text)
	for _, marker := range taiwanMarkers {
		if strings.Contains(lowered, marker) {
			meta.IsTaiwan = true
			meta.IsAsia = true
			break
		}
	}
	if !meta.IsAsia {
		for _, marker := range asiaMarkers {
			if strings.Contains(lowered, marker) {
				meta.IsAsia = true
				break
			}
		}
	}
	return meta
}
