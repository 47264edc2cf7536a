package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"lookout/internal/adapters"
	"lookout/internal/feed"
	"lookout/internal/router"
	"lookout/internal/scoring"
	"lookout/internal/seencache"
	"lookout/pkg/llm"
	"lookout/pkg/logging"
)

type stubAdapter struct {
	name    string
	enabled bool
	items   []feed.ContentItem
	err     error
}

func (a *stubAdapter) Name() string  { return a.name }
func (a *stubAdapter) Enabled() bool { return a.enabled }
func (a *stubAdapter) Fetch(context.Context) ([]feed.ContentItem, error) {
	return a.items, a.err
}

type queueProvider struct {
	model     string
	responses []string
}

func (p *queueProvider) Model() string { return p.model }

func (p *queueProvider) Complete(_ context.Context, _ []llm.Message, _ llm.Options) (string, error) {
	if len(p.responses) == 0 {
		return "", errors.New("no responses left")
	}
	r := p.responses[0]
	p.responses = p.responses[1:]
	return r, nil
}

type stubNotifier struct {
	titles   []string
	messages []string
}

func (n *stubNotifier) Notify(_ context.Context, title, message string) {
	n.titles = append(n.titles, title)
	n.messages = append(n.messages, message)
}

func contentItem(id string, score int) feed.ContentItem {
	return feed.ContentItem{
		ID:           feed.ItemID("https://example.com/" + id),
		Title:        "story " + id,
		URL:          "https://example.com/" + id,
		Source:       "test",
		SourceType:   feed.SourceRSS,
		KeywordScore: score,
	}
}

func verdictJSON(score int) string {
	return fmt.Sprintf(`{"score": %d, "reason": "r", "suggested_angle": "a", "draft_tweet": "d"}`, score)
}

func newTestPipeline(t *testing.T, adapterList []adapters.SourceAdapter, responses []string, notifier Notifier) (*Pipeline, string) {
	t.Helper()
	dir := t.TempDir()
	cache, err := seencache.Open(filepath.Join(dir, "seen-cache.json"))
	if err != nil {
		t.Fatalf("seencache.Open: %v", err)
	}
	scorer := scoring.NewScorer(scoring.ScorerConfig{
		Chain:              llm.NewChain([]llm.Provider{&queueProvider{model: "test-model", responses: responses}}),
		Logger:             logging.NewLogger(),
		HighlightThreshold: 8,
		ScoreDelay:         time.Millisecond,
	})
	rtr := router.NewRouter(router.RouterConfig{
		QueueDir:           filepath.Join(dir, "queue"),
		ArchiveDir:         filepath.Join(dir, "archive"),
		ApprovedFile:       filepath.Join(dir, "approved-for-publish.json"),
		MinScoreForQueue:   6,
		HighlightThreshold: 8,
		Logger:             logging.NewLogger(),
	})
	p := NewPipeline(PipelineConfig{
		Adapters:    adapterList,
		Scorer:      scorer,
		Router:      rtr,
		Cache:       cache,
		PendingFile: filepath.Join(dir, "pending-articles.json"),
		ScoredFile:  filepath.Join(dir, "scored-articles.json"),
		Notifier:    notifier,
		Logger:      logging.NewLogger(),
	})
	return p, dir
}

func TestPipelineEndToEnd(t *testing.T) {
	longForm := `{"twitter_thread": ["t1", "t2", "t3"], "linkedin_post": "li", "key_angle": "k"}`
	notifier := &stubNotifier{}
	p, dir := newTestPipeline(t,
		[]adapters.SourceAdapter{&stubAdapter{name: "stub", enabled: true, items: []feed.ContentItem{
			contentItem("a", 1), contentItem("b", 2), contentItem("c", 3),
		}}},
		[]string{verdictJSON(7), verdictJSON(2), verdictJSON(9), longForm},
		notifier,
	)

	summary, err := p.Run(context.Background(), Options{Fetch: true, Score: true, Route: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Fetched != 3 || summary.Scored != 3 {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.Queued != 2 || summary.Archived != 1 {
		t.Fatalf("expected 2 queued + 1 archived, got %+v", summary)
	}

	date := time.Now().Format("2006-01-02")
	queueDir := filepath.Join(dir, "queue")

	// The score-9 item carries long-form content in its queue file.
	highlight, err := os.ReadFile(filepath.Join(queueDir, date+"-story-c.md"))
	if err != nil {
		t.Fatalf("highlight queue file missing: %v", err)
	}
	for _, want := range []string{"highlight: true", "### LinkedIn Draft", "1. t1"} {
		if !strings.Contains(string(highlight), want) {
			t.Errorf("highlight file missing %q", want)
		}
	}

	if _, err := os.Stat(filepath.Join(queueDir, date+"-story-a.md")); err != nil {
		t.Fatal("score-7 item should be queued")
	}
	if _, err := os.Stat(filepath.Join(dir, "archive", date+"-story-b.json")); err != nil {
		t.Fatal("score-2 item should be archived")
	}

	if len(notifier.messages) != 1 || !strings.Contains(notifier.messages[0], "2 items queued") {
		t.Fatalf("expected success notification, got %v", notifier.messages)
	}
}

func TestPipelineFetchMarksSeen(t *testing.T) {
	p, dir := newTestPipeline(t,
		[]adapters.SourceAdapter{&stubAdapter{name: "stub", enabled: true, items: []feed.ContentItem{
			contentItem("a", 1),
		}}},
		nil, nil,
	)
	if _, err := p.Run(context.Background(), Options{Fetch: true}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	cache, err := seencache.Open(filepath.Join(dir, "seen-cache.json"))
	if err != nil {
		t.Fatalf("reopen cache: %v", err)
	}
	if !cache.Has("https://example.com/a") {
		t.Fatal("fetched URL should be recorded as seen")
	}
}

func TestPipelineMissingInputIsZeroRun(t *testing.T) {
	p, _ := newTestPipeline(t, nil, nil, nil)
	summary, err := p.Run(context.Background(), Options{Score: true, Route: true})
	if err != nil {
		t.Fatalf("missing handoff files must not error: %v", err)
	}
	if summary.Scored != 0 || summary.Queued != 0 {
		t.Fatalf("expected zero-result run, got %+v", summary)
	}
}

func TestPipelineAdapterFailureIsIsolated(t *testing.T) {
	p, _ := newTestPipeline(t,
		[]adapters.SourceAdapter{
			&stubAdapter{name: "broken", enabled: true, err: errors.New("boom")},
			&stubAdapter{name: "healthy", enabled: true, items: []feed.ContentItem{contentItem("a", 1)}},
		},
		nil, nil,
	)
	summary, err := p.Run(context.Background(), Options{Fetch: true})
	if err != nil {
		t.Fatalf("one broken adapter must not fail the run: %v", err)
	}
	if summary.Fetched != 1 {
		t.Fatalf("expected the healthy adapter's item, got %+v", summary)
	}
}

func TestPipelineDisabledAdapterSkipped(t *testing.T) {
	adapter := &stubAdapter{name: "off", enabled: false, err: errors.New("must not be called")}
	p, _ := newTestPipeline(t, []adapters.SourceAdapter{adapter}, nil, nil)
	summary, err := p.Run(context.Background(), Options{Fetch: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Fetched != 0 {
		t.Fatalf("disabled adapter should contribute nothing, got %+v", summary)
	}
}
