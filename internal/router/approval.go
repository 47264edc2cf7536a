package router

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	frontmatterPattern  = regexp.MustCompile(`(?s)\A---\n(.*?)\n---\n?`)
	statusLinePattern   = regexp.MustCompile(`(?m)^status:\s*\S+\s*$`)
	yourEditPattern     = regexp.MustCompile(`(?ms)^### Your Edit[^\n]*\n(.*?)(?:^### |\z)`)
	twitterDraftPattern = regexp.MustCompile(`(?ms)^### Twitter Draft\s*\n(.*?)(?:^### |\z)`)
)

// Frontmatter is the YAML header of a queue file.
type Frontmatter struct {
	Title          string   `yaml:"title"`
	Source         string   `yaml:"source"`
	URL            string   `yaml:"url"`
	Score          int      `yaml:"score"`
	Highlight      bool     `yaml:"highlight"`
	ContentType    string   `yaml:"content_type"`
	Interaction    string   `yaml:"interaction"`
	Reason         string   `yaml:"reason"`
	SuggestedAngle string   `yaml:"suggested_angle"`
	Created        string   `yaml:"created"`
	Platforms      []string `yaml:"platforms"`
	Status         string   `yaml:"status"`
	PublishAt      string   `yaml:"publish_at"`
}

// ApprovedItem is one entry in approved-for-publish.json.
type ApprovedItem struct {
	File      string   `json:"file"`
	Filepath  string   `json:"filepath"`
	Title     string   `json:"title"`
	URL       string   `json:"url"`
	Content   string   `json:"content"`
	Platforms []string `json:"platforms"`

	// Interaction is set for twitter items ("quote", "reply", "bookmark")
	// so the publisher can apply the right daily cap.
	Interaction string `json:"interaction,omitempty"`
}

// ParseQueueFile splits a queue file into its frontmatter and body. The
// frontmatter is the first ---…--- block; anything before it fails the parse.
func ParseQueueFile(data []byte) (Frontmatter, string, error) {
	m := frontmatterPattern.FindSubmatch(data)
	if m == nil {
		return Frontmatter{}, "", fmt.Errorf("no frontmatter block found")
	}
	var fm Frontmatter
	if err := yaml.Unmarshal(m[1], &fm); err != nil {
		return Frontmatter{}, "", fmt.Errorf("parse frontmatter: %w", err)
	}
	return fm, string(data[len(m[0]):]), nil
}

// QueueEntry summarizes one queue file for listings.
type QueueEntry struct {
	File    string `json:"file"`
	Title   string `json:"title"`
	Score   int    `json:"score"`
	Status  string `json:"status"`
	Created string `json:"created"`
}

// ListQueue enumerates queue files with their parsed frontmatter, sorted by
// filename (which sorts by date). Malformed files are skipped with a warning.
func (r *Router) ListQueue() ([]QueueEntry, error) {
	entries, err := os.ReadDir(r.queueDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read queue dir: %w", err)
	}
	var out []QueueEntry
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(r.queueDir, entry.Name()))
		if err != nil {
			continue
		}
		fm, _, err := ParseQueueFile(data)
		if err != nil {
			r.logger.WithField("file", entry.Name()).WithError(err).Warn("Malformed queue file, skipping")
			continue
		}
		out = append(out, QueueEntry{
			File:    entry.Name(),
			Title:   fm.Title,
			Score:   fm.Score,
			Status:  fm.Status,
			Created: fm.Created,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].File < out[j].File })
	return out, nil
}

// ReadQueueFile returns one queue file's parsed frontmatter and body.
func (r *Router) ReadQueueFile(name string) (Frontmatter, string, error) {
	data, err := os.ReadFile(filepath.Join(r.queueDir, name))
	if err != nil {
		return Frontmatter{}, "", fmt.Errorf("read queue file: %w", err)
	}
	return ParseQueueFile(data)
}

// ScanApproved walks the queue directory, collects every file with
// status: approved, and writes the approved-for-publish manifest. The queue
// files themselves are not touched. Content prefers a filled-in "Your Edit"
// section over the AI draft.
func (r *Router) ScanApproved() ([]ApprovedItem, error) {
	entries, err := os.ReadDir(r.queueDir)
	if err != nil {
		return nil, fmt.Errorf("read queue dir: %w", err)
	}

	var approved []ApprovedItem
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		path := filepath.Join(r.queueDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			r.logger.WithField("file", entry.Name()).WithError(err).Warn("Cannot read queue file, skipping")
			continue
		}
		fm, body, err := ParseQueueFile(data)
		if err != nil {
			r.logger.WithField("file", entry.Name()).WithError(err).Warn("Malformed queue file, skipping")
			continue
		}
		if fm.Status != "approved" {
			continue
		}

		approved = append(approved, ApprovedItem{
			File:        entry.Name(),
			Filepath:    path,
			Title:       fm.Title,
			URL:         fm.URL,
			Content:     selectContent(body),
			Platforms:   fm.Platforms,
			Interaction: fm.Interaction,
		})
	}

	sort.Slice(approved, func(i, j int) bool { return approved[i].File < approved[j].File })

	data, err := json.MarshalIndent(approved, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode approved manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.approvedFile), 0o755); err != nil {
		return nil, fmt.Errorf("create manifest dir: %w", err)
	}
	if err := os.WriteFile(r.approvedFile, data, 0o644); err != nil {
		return nil, fmt.Errorf("write approved manifest: %w", err)
	}
	return approved, nil
}

// selectContent returns the human edit when one was written, otherwise the
// AI's Twitter draft section, otherwise the whole body.
func selectContent(body string) string {
	if m := yourEditPattern.FindStringSubmatch(body); m != nil {
		if edit := strings.TrimSpace(m[1]); edit != "" {
			return edit
		}
	}
	if m := twitterDraftPattern.FindStringSubmatch(body); m != nil {
		if draft := strings.TrimSpace(m[1]); draft != "" {
			return draft
		}
	}
	return strings.TrimSpace(body)
}

// MarkPublished flips a queue file's status to published so the next
// approval scan ignores it.
func (r *Router) MarkPublished(name string) error {
	return r.SetStatus(name, "published")
}

// SetStatus rewrites only the status line of a queue file. The rest of the
// file, including human edits, stays byte-identical.
func (r *Router) SetStatus(name, status string) error {
	switch status {
	case "pending", "approved", "rejected", "published":
	default:
		return fmt.Errorf("invalid status %q", status)
	}
	path := filepath.Join(r.queueDir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read queue file: %w", err)
	}
	if _, _, err := ParseQueueFile(data); err != nil {
		return fmt.Errorf("queue file %s: %w", name, err)
	}
	loc := statusLinePattern.FindIndex(data)
	if loc == nil {
		return fmt.Errorf("queue file %s has no status line", name)
	}
	updated := append([]byte{}, data[:loc[0]]...)
	updated = append(updated, []byte("status: "+status)...)
	updated = append(updated, data[loc[1]:]...)
	if err := os.WriteFile(path, updated, 0o644); err != nil {
		return fmt.Errorf("update queue file: %w", err)
	}
	return nil
}
