package publish

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"lookout/internal/router"
	"lookout/internal/stats"
	"lookout/pkg/logging"
)

type recordingPublisher struct {
	published []router.ApprovedItem
	fail      bool
}

func (p *recordingPublisher) Publish(_ context.Context, item router.ApprovedItem) error {
	if p.fail {
		return errors.New("destination down")
	}
	p.published = append(p.published, item)
	return nil
}

func newTestDispatcher(t *testing.T, pub Publisher, maxPosts int) *Dispatcher {
	t.Helper()
	st, err := stats.Open(filepath.Join(t.TempDir(), "daily-stats.json"))
	if err != nil {
		t.Fatalf("stats.Open: %v", err)
	}
	return NewDispatcher(DispatcherConfig{
		Publisher:      pub,
		Stats:          st,
		MaxPostsPerDay: maxPosts,
		Logger:         logging.NewLogger(),
	})
}

func approvedItem(file, content string) router.ApprovedItem {
	return router.ApprovedItem{
		File:      file,
		Title:     file,
		URL:       "https://example.com/" + file,
		Content:   content,
		Platforms: []string{"twitter"},
	}
}

func TestPublishAllHappyPath(t *testing.T) {
	pub := &recordingPublisher{}
	d := newTestDispatcher(t, pub, 5)

	result, err := d.PublishAll(context.Background(), []router.ApprovedItem{
		approvedItem("a.md", "We shipped on-device inference today."),
		approvedItem("b.md", "Benchmarks for three NPUs, results inside."),
	})
	if err != nil {
		t.Fatalf("PublishAll: %v", err)
	}
	if result.Published != 2 || result.Blocked != 0 || result.RateLimited != 0 {
		t.Fatalf("result = %+v", result)
	}
	if len(pub.published) != 2 {
		t.Fatalf("publisher saw %d items", len(pub.published))
	}
}

func TestPublishAllBlocksUnsafeContent(t *testing.T) {
	pub := &recordingPublisher{}
	d := newTestDispatcher(t, pub, 5)

	result, err := d.PublishAll(context.Background(), []router.ApprovedItem{
		approvedItem("bad.md", "Here's the corrected LinkedIn post, edited without emojis:\n\nActual content here"),
		approvedItem("good.md", "Real content about edge AI."),
	})
	if err != nil {
		t.Fatalf("PublishAll: %v", err)
	}
	if result.Blocked != 1 || result.Published != 1 {
		t.Fatalf("result = %+v", result)
	}
	if len(pub.published) != 1 || pub.published[0].File != "good.md" {
		t.Fatalf("only the safe item should publish: %+v", pub.published)
	}
}

func TestPublishAllHonorsDailyCap(t *testing.T) {
	pub := &recordingPublisher{}
	d := newTestDispatcher(t, pub, 1)

	result, err := d.PublishAll(context.Background(), []router.ApprovedItem{
		approvedItem("a.md", "first post"),
		approvedItem("b.md", "second post"),
		approvedItem("c.md", "third post"),
	})
	if err != nil {
		t.Fatalf("PublishAll: %v", err)
	}
	if result.Published != 1 || result.RateLimited != 2 {
		t.Fatalf("result = %+v", result)
	}
}

func TestPublishAllBudgetsRepliesSeparately(t *testing.T) {
	pub := &recordingPublisher{}
	st, err := stats.Open(filepath.Join(t.TempDir(), "daily-stats.json"))
	if err != nil {
		t.Fatalf("stats.Open: %v", err)
	}
	d := NewDispatcher(DispatcherConfig{
		Publisher:        pub,
		Stats:            st,
		MaxPostsPerDay:   5,
		MaxRepliesPerDay: 1,
		Logger:           logging.NewLogger(),
	})

	reply1 := approvedItem("r1.md", "first reply")
	reply1.Interaction = "reply"
	reply2 := approvedItem("r2.md", "second reply")
	reply2.Interaction = "reply"

	result, err := d.PublishAll(context.Background(), []router.ApprovedItem{
		reply1,
		reply2,
		approvedItem("post.md", "a regular post, not a reply"),
	})
	if err != nil {
		t.Fatalf("PublishAll: %v", err)
	}
	if result.Published != 2 || result.RateLimited != 1 {
		t.Fatalf("result = %+v", result)
	}
	// The post goes out even though the reply budget is spent.
	if len(pub.published) != 2 || pub.published[1].File != "post.md" {
		t.Fatalf("published = %+v", pub.published)
	}
	today := st.Today()
	if today.Posts != 1 || today.Replies != 1 {
		t.Fatalf("today = %+v", today)
	}
}

func TestPublishAllAbortsOnPublisherError(t *testing.T) {
	d := newTestDispatcher(t, &recordingPublisher{fail: true}, 5)
	_, err := d.PublishAll(context.Background(), []router.ApprovedItem{
		approvedItem("a.md", "content"),
	})
	if err == nil {
		t.Fatal("publisher failure should propagate")
	}
}

func TestOutboxPublisherWritesJSON(t *testing.T) {
	dir := t.TempDir()
	p := NewOutboxPublisher(dir, logging.NewLogger())
	item := approvedItem("a.md", "outbox content")
	if err := p.Publish(context.Background(), item); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one outbox file, got %v (%v)", entries, err)
	}
	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatalf("read outbox file: %v", err)
	}
	var got router.ApprovedItem
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("outbox file not valid JSON: %v", err)
	}
	if got.Content != "outbox content" {
		t.Fatalf("content = %q", got.Content)
	}
}
