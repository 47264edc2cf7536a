package adapters

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"

	"lookout/internal/config"
	"lookout/internal/feed"
	"lookout/pkg/logging"
)

const (
	defaultTwitterMaxItems = 10
	defaultBrowserTimeout  = 90 * time.Second
	tweetStableDur         = 500 * time.Millisecond
)

// TwitterAdapterConfig wires the Twitter search adapter.
type TwitterAdapterConfig struct {
	Settings config.AdapterSettings
	Cache    SeenCache
	Logger   logging.Logger
	Timeout  time.Duration // hard cap for the whole browser session
}

// TwitterAdapter scrapes Twitter's live search for the configured queries
// using a headless Chromium driven by Rod with stealth pages. The whole
// fetch is bounded by a fixed timeout; a search UI that hangs or changes
// shape costs one run, never a stuck process.
type TwitterAdapter struct {
	settings config.AdapterSettings
	cache    SeenCache
	logger   logging.Logger
	timeout  time.Duration
	maxItems int
}

func NewTwitterAdapter(cfg TwitterAdapterConfig) *TwitterAdapter {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultBrowserTimeout
	}
	maxItems := cfg.Settings.MaxItems
	if maxItems <= 0 {
		maxItems = defaultTwitterMaxItems
	}
	return &TwitterAdapter{
		settings: cfg.Settings,
		cache:    cfg.Cache,
		logger:   cfg.Logger,
		timeout:  timeout,
		maxItems: maxItems,
	}
}

func (a *TwitterAdapter) Name() string  { return "twitter" }
func (a *TwitterAdapter) Enabled() bool { return a.settings.Enabled }

func (a *TwitterAdapter) Fetch(ctx context.Context) ([]feed.ContentItem, error) {
	if !a.settings.Enabled {
		return nil, nil
	}
	if len(a.settings.Queries) == 0 {
		return nil, fmt.Errorf("twitter adapter enabled but no search queries configured")
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	browser, err := a.launchBrowser()
	if err != nil {
		return nil, err
	}
	defer browser.Close()

	var items []feed.ContentItem
	for _, query := range a.settings.Queries {
		tweets, err := a.searchQuery(ctx, browser, query)
		if err != nil {
			a.logger.WithField("query", query).WithError(err).Warn("Twitter search failed, skipping query")
			continue
		}
		items = append(items, tweets...)
	}

	items = dropSeen(items, a.cache)
	return feed.RankByKeywordScore(items, a.maxItems), nil
}

func (a *TwitterAdapter) launchBrowser() (*rod.Browser, error) {
	u, err := launcher.New().
		Headless(true).
		Set("disable-gpu").
		Set("no-sandbox").
		Set("disable-dev-shm-usage").
		Launch()
	if err != nil {
		return nil, fmt.Errorf("launch headless browser: %w", err)
	}
	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect to headless browser: %w", err)
	}
	return browser, nil
}

func (a *TwitterAdapter) searchQuery(ctx context.Context, browser *rod.Browser, query string) ([]feed.ContentItem, error) {
	page, err := stealth.Page(browser)
	if err != nil {
		return nil, fmt.Errorf("create tab: %w", err)
	}
	defer page.Close()
	page = page.Context(ctx)

	searchURL := "https://x.com/search?q=" + url.QueryEscape(query) + "&f=live"
	if err := page.Navigate(searchURL); err != nil {
		return nil, fmt.Errorf("navigate to search: %w", err)
	}
	_ = page.WaitStable(tweetStableDur)

	articles, err := page.Elements(`article[data-testid="tweet"]`)
	if err != nil {
		return nil, fmt.Errorf("locate tweets: %w", err)
	}

	var items []feed.ContentItem
	for _, article := range articles {
		item, ok := a.parseTweet(article, query)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// parseTweet extracts text, author, permalink, and engagement counts from
// one tweet card. Cards missing a permalink or text are skipped.
func (a *TwitterAdapter) parseTweet(article *rod.Element, query string) (feed.ContentItem, bool) {
	textEl, err := article.Element(`[data-testid="tweetText"]`)
	if err != nil {
		return feed.ContentItem{}, false
	}
	text, err := textEl.Text()
	if err != nil || strings.TrimSpace(text) == "" {
		return feed.ContentItem{}, false
	}
	text = strings.TrimSpace(text)

	linkEl, err := article.Element(`a[href*="/status/"]`)
	if err != nil {
		return feed.ContentItem{}, false
	}
	href, err := linkEl.Attribute("href")
	if err != nil || href == nil || *href == "" {
		return feed.ContentItem{}, false
	}
	tweetURL := *href
	if strings.HasPrefix(tweetURL, "/") {
		tweetURL = "https://x.com" + tweetURL
	}

	author := ""
	if authorEl, err := article.Element(`[data-testid="User-Name"]`); err == nil {
		if raw, err := authorEl.Text(); err == nil {
			author = firstHandle(raw)
		}
	}

	likes := elementCount(article, `[data-testid="like"]`)
	retweets := elementCount(article, `[data-testid="retweet"]`)

	return feed.ContentItem{
		ID:           feed.ItemID(tweetURL),
		Title:        truncateRunes(text, 120),
		URL:          tweetURL,
		Summary:      text,
		Source:       "twitter:" + query,
		SourceType:   feed.SourceTwitter,
		Published:    time.Now(),
		KeywordScore: feed.KeywordScore(text, a.settings.Keywords, false),
		TwitterMeta: &feed.TwitterMeta{
			Author:          author,
			Likes:           likes,
			Retweets:        retweets,
			InteractionType: DetermineInteractionType(text, likes),
		},
		FetchedAt: time.Now(),
		AdapterID: a.Name(),
	}, true
}

func elementCount(article *rod.Element, selector string) int {
	el, err := article.Element(selector)
	if err != nil {
		return 0
	}
	raw, err := el.Text()
	if err != nil {
		return 0
	}
	return ParseEngagementCount(raw)
}

func firstHandle(raw string) string {
	for _, field := range strings.Fields(raw) {
		if strings.HasPrefix(field, "@") {
			return field
		}
	}
	return strings.TrimSpace(strings.SplitN(raw, "\n", 2)[0])
}

// ParseEngagementCount converts Twitter's abbreviated counters ("1,234",
// "1.2K", "3.4M") to an integer. Unparseable input yields zero.
func ParseEngagementCount(raw string) int {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if s == "" {
		return 0
	}
	multiplier := 1.0
	switch {
	case strings.HasSuffix(s, "K"), strings.HasSuffix(s, "k"):
		multiplier = 1_000
		s = s[:len(s)-1]
	case strings.HasSuffix(s, "M"), strings.HasSuffix(s, "m"):
		multiplier = 1_000_000
		s = s[:len(s)-1]
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int(n * multiplier)
}

var discussionCues = []string{
	"what do you think", "thoughts?", "agree or disagree", "change my mind",
	"am i wrong", "discuss",
}

var resourceCues = []string{
	"list of", "resources for", "here are", "tools for", "roundup",
	"curated", "cheat sheet", "cheatsheet",
}

// DetermineInteractionType picks how to engage with a tweet based on its
// text and engagement. High-traction takes or explicit threads get quoted;
// questions and discussion prompts get replies; resource dumps get
// bookmarked for later.
func DetermineInteractionType(text string, likes int) feed.InteractionType {
	lowered := strings.ToLower(text)

	if likes > 500 || strings.Contains(lowered, "thread") || strings.Contains(lowered, "unpopular opinion") {
		return feed.InteractQuote
	}

	if strings.Contains(text, "?") {
		return feed.InteractReply
	}
	for _, cue := range discussionCues {
		if strings.Contains(lowered, cue) {
			return feed.InteractReply
		}
	}

	for _, cue := range resourceCues {
		if strings.Contains(lowered, cue) {
			return feed.InteractBookmark
		}
	}

	if likes > 200 {
		return feed.InteractQuote
	}
	return feed.InteractReply
}
