// Package pipeline orchestrates the fetch, score, and route stages. Stages
// are independently skippable and hand off through JSON files, so any stage
// can be rerun by itself while debugging.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"lookout/internal/adapters"
	"lookout/internal/feed"
	"lookout/internal/router"
	"lookout/internal/scoring"
	"lookout/internal/seencache"
	"lookout/pkg/logging"
)

// Notifier announces run results. Implementations are best-effort.
type Notifier interface {
	Notify(ctx context.Context, title, message string)
}

// Options selects which stages a run executes.
type Options struct {
	Fetch bool
	Score bool
	Route bool
}

// RunSummary aggregates what one pipeline run did.
type RunSummary struct {
	RunID    string
	Fetched  int
	Scored   int
	Dropped  int
	Queued   int
	Archived int
	Skipped  int // queue files that already existed
}

// PipelineConfig wires the orchestrator.
type PipelineConfig struct {
	Adapters    []adapters.SourceAdapter
	Scorer      *scoring.Scorer
	Router      *router.Router
	Cache       *seencache.Store
	PendingFile string
	ScoredFile  string
	Notifier    Notifier // optional
	Logger      logging.Logger
}

type Pipeline struct {
	adapters    []adapters.SourceAdapter
	scorer      *scoring.Scorer
	router      *router.Router
	cache       *seencache.Store
	pendingFile string
	scoredFile  string
	notifier    Notifier
	logger      logging.Logger
}

func NewPipeline(cfg PipelineConfig) *Pipeline {
	return &Pipeline{
		adapters:    cfg.Adapters,
		scorer:      cfg.Scorer,
		router:      cfg.Router,
		cache:       cfg.Cache,
		pendingFile: cfg.PendingFile,
		scoredFile:  cfg.ScoredFile,
		notifier:    cfg.Notifier,
		logger:      cfg.Logger,
	}
}

// Run executes the selected stages in fetch, score, route order. A stage
// whose input file is missing logs and contributes zero results; any other
// stage error aborts the run. A successful run that queued something sends
// a best-effort notification.
func (p *Pipeline) Run(ctx context.Context, opts Options) (RunSummary, error) {
	summary := RunSummary{RunID: uuid.NewString()}
	log := p.logger.WithField("run_id", summary.RunID)

	if opts.Fetch {
		if err := p.runFetch(ctx, log, &summary); err != nil {
			p.notifyFailure(ctx, "fetch", err)
			return summary, err
		}
	}
	if opts.Score {
		if err := p.runScore(ctx, log, &summary); err != nil {
			p.notifyFailure(ctx, "score", err)
			return summary, err
		}
	}
	if opts.Route {
		if err := p.runRoute(ctx, log, &summary); err != nil {
			p.notifyFailure(ctx, "route", err)
			return summary, err
		}
	}

	if summary.Queued > 0 && p.notifier != nil {
		p.notifier.Notify(ctx, "lookout",
			fmt.Sprintf("%d items queued for review (%d archived)", summary.Queued, summary.Archived))
	}
	return summary, nil
}

func (p *Pipeline) runFetch(ctx context.Context, log *logrus.Entry, summary *RunSummary) error {
	start := time.Now()
	var items []feed.ContentItem
	for _, adapter := range p.adapters {
		if !adapter.Enabled() {
			log.WithField("adapter", adapter.Name()).Debug("Adapter disabled, skipping")
			continue
		}
		fetched, err := adapter.Fetch(ctx)
		if err != nil {
			// A broken adapter costs its own items, not the run.
			itemsProcessedTotal.WithLabelValues("fetch", "adapter_error").Inc()
			log.WithField("adapter", adapter.Name()).WithError(err).Error("Adapter fetch failed")
			continue
		}
		itemsProcessedTotal.WithLabelValues("fetch", "fetched").Add(float64(len(fetched)))
		log.WithFields(logging.Fields{
			"adapter": adapter.Name(),
			"items":   len(fetched),
		}).Info("Adapter fetch complete")
		items = append(items, fetched...)
	}

	if err := writeJSONFile(p.pendingFile, items); err != nil {
		stageRunsTotal.WithLabelValues("fetch", "error").Inc()
		return fmt.Errorf("fetch stage: %w", err)
	}

	if p.cache != nil && len(items) > 0 {
		urls := make([]string, 0, len(items))
		for _, it := range items {
			urls = append(urls, it.URL)
		}
		if err := p.cache.AddAll(urls); err != nil {
			log.WithError(err).Warn("Seen cache update failed")
		}
	}

	summary.Fetched = len(items)
	stageRunsTotal.WithLabelValues("fetch", "ok").Inc()
	stageDuration.WithLabelValues("fetch").Observe(time.Since(start).Seconds())
	log.WithField("total", len(items)).Info("Fetch stage complete")
	return nil
}

func (p *Pipeline) runScore(ctx context.Context, log *logrus.Entry, summary *RunSummary) error {
	start := time.Now()
	var items []feed.ContentItem
	ok, err := readJSONFile(p.pendingFile, &items)
	if err != nil {
		stageRunsTotal.WithLabelValues("score", "error").Inc()
		return fmt.Errorf("score stage: %w", err)
	}
	if !ok {
		log.WithField("file", p.pendingFile).Warn("No pending items file, nothing to score")
		stageRunsTotal.WithLabelValues("score", "skipped").Inc()
		return nil
	}

	scored, err := p.scorer.ScoreBatch(ctx, items)
	if err != nil {
		stageRunsTotal.WithLabelValues("score", "error").Inc()
		return fmt.Errorf("score stage: %w", err)
	}
	if err := writeJSONFile(p.scoredFile, scored); err != nil {
		stageRunsTotal.WithLabelValues("score", "error").Inc()
		return fmt.Errorf("score stage: %w", err)
	}

	summary.Scored = len(scored)
	summary.Dropped = len(items) - len(scored)
	itemsProcessedTotal.WithLabelValues("score", "scored").Add(float64(len(scored)))
	itemsProcessedTotal.WithLabelValues("score", "dropped").Add(float64(summary.Dropped))
	stageRunsTotal.WithLabelValues("score", "ok").Inc()
	stageDuration.WithLabelValues("score").Observe(time.Since(start).Seconds())
	log.WithFields(logging.Fields{
		"scored":  len(scored),
		"dropped": summary.Dropped,
	}).Info("Score stage complete")
	return nil
}

func (p *Pipeline) runRoute(ctx context.Context, log *logrus.Entry, summary *RunSummary) error {
	start := time.Now()
	var scored []feed.ScoredItem
	ok, err := readJSONFile(p.scoredFile, &scored)
	if err != nil {
		stageRunsTotal.WithLabelValues("route", "error").Inc()
		return fmt.Errorf("route stage: %w", err)
	}
	if !ok {
		log.WithField("file", p.scoredFile).Warn("No scored items file, nothing to route")
		stageRunsTotal.WithLabelValues("route", "skipped").Inc()
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	result, err := p.router.WriteQueue(scored)
	if err != nil {
		stageRunsTotal.WithLabelValues("route", "error").Inc()
		return fmt.Errorf("route stage: %w", err)
	}

	summary.Queued = result.Queued
	summary.Archived = result.Archived
	summary.Skipped = result.Skipped
	itemsProcessedTotal.WithLabelValues("route", "queued").Add(float64(result.Queued))
	itemsProcessedTotal.WithLabelValues("route", "archived").Add(float64(result.Archived))
	stageRunsTotal.WithLabelValues("route", "ok").Inc()
	stageDuration.WithLabelValues("route").Observe(time.Since(start).Seconds())
	log.WithFields(logging.Fields{
		"queued":   result.Queued,
		"archived": result.Archived,
		"skipped":  result.Skipped,
	}).Info("Route stage complete")
	return nil
}

func (p *Pipeline) notifyFailure(ctx context.Context, stage string, err error) {
	if p.notifier == nil {
		return
	}
	p.notifier.Notify(ctx, "lookout: pipeline failed",
		fmt.Sprintf("%s stage: %v", stage, err))
}

// writeJSONFile writes v as indented JSON, creating parent directories.
func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// readJSONFile loads path into v. A missing file returns (false, nil) so
// stages can treat it as "nothing to do".
func readJSONFile(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", path, err)
	}
	return true, nil
}
