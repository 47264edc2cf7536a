// Package router turns scored items into review-queue markdown files and
// archives the rest. Queue files are the human touchpoint: once written
// they are never clobbered by the pipeline.
package router

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lookout/internal/feed"
	"lookout/pkg/logging"
)

const slugMaxLen = 50

// RouterConfig wires directories and thresholds.
type RouterConfig struct {
	QueueDir           string
	ArchiveDir         string
	ApprovedFile       string
	MinScoreForQueue   int
	HighlightThreshold int
	Logger             logging.Logger
}

// Router partitions scored items between the review queue and the archive.
// Every item lands in exactly one of the two.
type Router struct {
	queueDir           string
	archiveDir         string
	approvedFile       string
	minScoreForQueue   int
	highlightThreshold int
	logger             logging.Logger
	now                func() time.Time
}

func NewRouter(cfg RouterConfig) *Router {
	minScore := cfg.MinScoreForQueue
	if minScore <= 0 {
		minScore = 6
	}
	highlight := cfg.HighlightThreshold
	if highlight <= 0 {
		highlight = 8
	}
	return &Router{
		queueDir:           cfg.QueueDir,
		archiveDir:         cfg.ArchiveDir,
		approvedFile:       cfg.ApprovedFile,
		minScoreForQueue:   minScore,
		highlightThreshold: highlight,
		logger:             cfg.Logger,
		now:                time.Now,
	}
}

// RouteResult summarizes one WriteQueue pass.
type RouteResult struct {
	Queued   int
	Skipped  int // queue file already existed
	Archived int
}

// WriteQueue routes each item: at or above the queue threshold it becomes a
// markdown review file, below it goes to the archive as verbatim JSON.
// Existing queue files are skipped, never overwritten — a human may have
// edited them.
func (r *Router) WriteQueue(items []feed.ScoredItem) (RouteResult, error) {
	if err := os.MkdirAll(r.queueDir, 0o755); err != nil {
		return RouteResult{}, fmt.Errorf("create queue dir: %w", err)
	}
	if err := os.MkdirAll(r.archiveDir, 0o755); err != nil {
		return RouteResult{}, fmt.Errorf("create archive dir: %w", err)
	}

	var result RouteResult
	date := r.now().Format("2006-01-02")
	for _, item := range items {
		name := date + "-" + Slugify(item.Title)
		if item.AIScore >= r.minScoreForQueue {
			path := filepath.Join(r.queueDir, name+".md")
			if _, err := os.Stat(path); err == nil {
				result.Skipped++
				r.logger.WithField("file", name+".md").Debug("Queue file exists, skipping")
				continue
			}
			if err := os.WriteFile(path, []byte(r.renderQueueFile(item)), 0o644); err != nil {
				return result, fmt.Errorf("write queue file %s: %w", path, err)
			}
			result.Queued++
		} else {
			path := filepath.Join(r.archiveDir, name+".json")
			data, err := json.MarshalIndent(item, "", "  ")
			if err != nil {
				return result, fmt.Errorf("encode archive item %s: %w", item.ID, err)
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return result, fmt.Errorf("write archive file %s: %w", path, err)
			}
			result.Archived++
		}
	}
	return result, nil
}

// Slugify lowercases the title, maps every non-alphanumeric run to a single
// hyphen, and truncates to a filesystem-friendly length.
func Slugify(title string) string {
	var sb strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				sb.WriteRune('-')
				lastHyphen = true
			}
		}
	}
	slug := strings.TrimRight(sb.String(), "-")
	if len(slug) > slugMaxLen {
		slug = strings.TrimRight(slug[:slugMaxLen], "-")
	}
	if slug == "" {
		slug = "untitled"
	}
	return slug
}

func (r *Router) renderQueueFile(item feed.ScoredItem) string {
	platforms := []string{"twitter"}
	if item.LongForm != nil {
		platforms = append(platforms, "linkedin")
	}

	var sb strings.Builder
	sb.WriteString("---\n")
	fmt.Fprintf(&sb, "title: %s\n", yamlString(item.Title))
	fmt.Fprintf(&sb, "source: %s\n", yamlString(item.Source))
	fmt.Fprintf(&sb, "url: %s\n", yamlString(item.URL))
	fmt.Fprintf(&sb, "score: %d\n", item.AIScore)
	fmt.Fprintf(&sb, "highlight: %t\n", item.AIScore >= r.highlightThreshold)
	fmt.Fprintf(&sb, "content_type: %s\n", string(item.SourceType))
	if item.InteractionType != "" {
		fmt.Fprintf(&sb, "interaction: %s\n", string(item.InteractionType))
	}
	fmt.Fprintf(&sb, "reason: %s\n", yamlString(item.AIReason))
	fmt.Fprintf(&sb, "suggested_angle: %s\n", yamlString(item.SuggestedAngle))
	fmt.Fprintf(&sb, "created: %s\n", r.now().Format(time.RFC3339))
	fmt.Fprintf(&sb, "platforms: [%s]\n", strings.Join(platforms, ", "))
	sb.WriteString("status: pending\n")
	sb.WriteString("publish_at: \"\"\n")
	sb.WriteString("---\n\n")

	fmt.Fprintf(&sb, "# %s\n\n", item.Title)
	if item.AIReason != "" {
		fmt.Fprintf(&sb, "> %s\n\n", item.AIReason)
	}

	sb.WriteString("### Twitter Draft\n\n")
	if item.LongForm != nil && len(item.LongForm.TwitterThread) > 0 {
		for i, tweet := range item.LongForm.TwitterThread {
			fmt.Fprintf(&sb, "%d. %s\n\n", i+1, tweet)
		}
	} else {
		sb.WriteString(item.DraftTweet + "\n\n")
	}

	if item.LongForm != nil && item.LongForm.LinkedInPost != "" {
		sb.WriteString("### LinkedIn Draft\n\n")
		sb.WriteString(item.LongForm.LinkedInPost + "\n\n")
	}

	sb.WriteString("### Your Edit (replaces the draft if filled in)\n\n")
	return sb.String()
}

// yamlString quotes a value for the frontmatter when it contains characters
// YAML would misread.
func yamlString(s string) string {
	if s == "" {
		return `""`
	}
	if strings.ContainsAny(s, ":#\"'\n[]{}&*?|>%@`") {
		return fmt.Sprintf("%q", strings.ReplaceAll(s, "\n", " "))
	}
	return s
}
