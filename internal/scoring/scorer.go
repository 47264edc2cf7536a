// Package scoring runs fetched items through the LLM fallback chain and
// turns raw model text into structured verdicts. A scoring failure drops
// the item, never the batch.
package scoring

import (
	"context"
	"fmt"
	"time"

	"lookout/internal/feed"
	"lookout/pkg/llm"
	"lookout/pkg/logging"
)

const (
	defaultScoreDelay      = time.Second
	defaultScoreTimeout    = 120 * time.Second
	defaultLongFormTimeout = 300 * time.Second

	shortFormMaxTokens = 1024
	longFormMaxTokens  = 4096

	maxThreadTweets = 5

	rawExcerptLen = 200
)

// verdict is the JSON contract every scoring prompt pins the model to.
type verdict struct {
	Score           int    `json:"score"`
	Reason          string `json:"reason"`
	SuggestedAngle  string `json:"suggested_angle"`
	DraftTweet      string `json:"draft_tweet"`
	InteractionType string `json:"interaction_type"`
}

type longFormVerdict struct {
	TwitterThread []string `json:"twitter_thread"`
	LinkedInPost  string   `json:"linkedin_post"`
	KeyAngle      string   `json:"key_angle"`
}

// ScorerConfig wires the scorer's collaborators and thresholds.
type ScorerConfig struct {
	Chain              *llm.Chain
	Logger             logging.Logger
	HighlightThreshold int
	ScoreDelay         time.Duration // pause between consecutive model calls
	ScoreTimeout       time.Duration
	LongFormTimeout    time.Duration
}

// Scorer scores items one at a time through the model fallback chain.
// Calls are serialized with a fixed delay between them to stay friendly
// to rate limits.
type Scorer struct {
	chain              *llm.Chain
	logger             logging.Logger
	highlightThreshold int
	scoreDelay         time.Duration
	scoreTimeout       time.Duration
	longFormTimeout    time.Duration

	sleep func(time.Duration)
	now   func() time.Time
}

func NewScorer(cfg ScorerConfig) *Scorer {
	s := &Scorer{
		chain:              cfg.Chain,
		logger:             cfg.Logger,
		highlightThreshold: cfg.HighlightThreshold,
		scoreDelay:         cfg.ScoreDelay,
		scoreTimeout:       cfg.ScoreTimeout,
		longFormTimeout:    cfg.LongFormTimeout,
		sleep:              time.Sleep,
		now:                time.Now,
	}
	if s.highlightThreshold <= 0 {
		s.highlightThreshold = 8
	}
	if s.scoreDelay <= 0 {
		s.scoreDelay = defaultScoreDelay
	}
	if s.scoreTimeout <= 0 {
		s.scoreTimeout = defaultScoreTimeout
	}
	if s.longFormTimeout <= 0 {
		s.longFormTimeout = defaultLongFormTimeout
	}
	return s
}

// Score runs one item through the fallback chain. A (nil, nil) return means
// the item is dropped: every model failed or none produced a decodable
// verdict. The batch caller carries on either way.
func (s *Scorer) Score(ctx context.Context, item feed.ContentItem) (*feed.ScoredItem, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.scoreTimeout)
	defer cancel()

	messages := []llm.Message{
		{Role: "system", Content: systemPromptFor(item.SourceType)},
		{Role: "user", Content: userPromptFor(item)},
	}
	// An undecodable response counts as that model failing: the identical
	// prompt moves down the chain until one model parses or all are spent.
	var v verdict
	_, model, err := s.chain.CompleteChecked(callCtx, messages, llm.Options{MaxTokens: shortFormMaxTokens},
		func(raw string) error {
			var candidate verdict
			if err := llm.DecodeJSON(raw, &candidate); err != nil {
				return fmt.Errorf("no decodable verdict in %q: %w", excerpt(raw), err)
			}
			v = candidate
			return nil
		})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.WithFields(logging.Fields{
			"item": item.ID,
			"url":  item.URL,
		}).WithError(err).Warn("No model produced a decodable verdict, dropping item")
		return nil, nil
	}

	if v.Score < 0 {
		v.Score = 0
	}
	if v.Score > 10 {
		v.Score = 10
	}

	scored := &feed.ScoredItem{
		ContentItem:    item,
		AIScore:        v.Score,
		AIReason:       v.Reason,
		SuggestedAngle: v.SuggestedAngle,
		DraftTweet:     v.DraftTweet,
		ScoredAt:       s.now(),
		ScoredBy:       model,
	}
	scored.InteractionType = resolveInteraction(item, v.InteractionType)
	return scored, nil
}

// ScoreBatch scores every item serially with the configured delay between
// calls, sorts the survivors by AIScore descending (stable), and runs the
// long-form pass for items at or above the highlight threshold.
func (s *Scorer) ScoreBatch(ctx context.Context, items []feed.ContentItem) ([]feed.ScoredItem, error) {
	var scored []feed.ScoredItem
	for i, item := range items {
		if i > 0 {
			s.sleep(s.scoreDelay)
		}
		result, err := s.Score(ctx, item)
		if err != nil {
			return scored, err
		}
		if result == nil {
			continue
		}
		scored = append(scored, *result)
	}

	// Stable sort, highest score first; ties keep scoring order.
	for i := 1; i < len(scored); i++ {
		for j := i; j > 0 && scored[j].AIScore > scored[j-1].AIScore; j-- {
			scored[j], scored[j-1] = scored[j-1], scored[j]
		}
	}

	for i := range scored {
		if scored[i].AIScore < s.highlightThreshold {
			break
		}
		s.sleep(s.scoreDelay)
		s.generateLongForm(ctx, &scored[i])
	}
	return scored, nil
}

// generateLongForm runs the second, larger-budget pass for a highlight item.
// Failure keeps the short-form draft and moves on.
func (s *Scorer) generateLongForm(ctx context.Context, item *feed.ScoredItem) {
	callCtx, cancel := context.WithTimeout(ctx, s.longFormTimeout)
	defer cancel()

	messages := []llm.Message{
		{Role: "system", Content: longFormSystemPrompt},
		{Role: "user", Content: longFormUserPrompt(*item)},
	}
	var v longFormVerdict
	_, model, err := s.chain.CompleteChecked(callCtx, messages, llm.Options{MaxTokens: longFormMaxTokens},
		func(raw string) error {
			var candidate longFormVerdict
			if err := llm.DecodeJSON(raw, &candidate); err != nil {
				return fmt.Errorf("no decodable long-form content in %q: %w", excerpt(raw), err)
			}
			if len(candidate.TwitterThread) == 0 {
				return fmt.Errorf("long-form content has an empty thread")
			}
			v = candidate
			return nil
		})
	if err != nil {
		s.logger.WithField("item", item.ID).WithError(err).Warn("Long-form generation failed, keeping short draft")
		return
	}
	if len(v.TwitterThread) > maxThreadTweets {
		v.TwitterThread = v.TwitterThread[:maxThreadTweets]
	}

	item.LongForm = &feed.LongFormContent{
		TwitterThread: v.TwitterThread,
		LinkedInPost:  v.LinkedInPost,
		KeyAngle:      v.KeyAngle,
		GeneratedBy:   model,
		GeneratedAt:   s.now(),
	}
}

// resolveInteraction prefers the adapter's heuristic when the model stays
// silent, and sanity-checks what the model returned.
func resolveInteraction(item feed.ContentItem, fromModel string) feed.InteractionType {
	switch feed.InteractionType(fromModel) {
	case feed.InteractQuote, feed.InteractReply, feed.InteractBookmark:
		return feed.InteractionType(fromModel)
	}
	if item.TwitterMeta != nil {
		return item.TwitterMeta.InteractionType
	}
	return ""
}

func excerpt(raw string) string {
	runes := []rune(raw)
	if len(runes) <= rawExcerptLen {
		return raw
	}
	return string(runes[:rawExcerptLen]) + "..."
}
