// Package stats tracks how many posts and replies went out per day, backing
// the publishing rate limits. Counts live in a flat JSON file with a rolling
// 30-day window.
package stats

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Window is how long per-day counters are retained.
const Window = 30 * 24 * time.Hour

const dateLayout = "2006-01-02"

// DayStats is one day's publishing activity.
type DayStats struct {
	Date    string `json:"date"`
	Posts   int    `json:"posts"`
	Replies int    `json:"replies"`
}

// Store persists daily counters as a JSON array, single-writer within the
// process. Counts only ever increase for a given day.
type Store struct {
	mu   sync.Mutex
	path string
	days map[string]*DayStats
	now  func() time.Time
}

// Open loads the stats file. Missing file yields an empty store.
func Open(path string) (*Store, error) {
	s := &Store{
		path: path,
		days: make(map[string]*DayStats),
		now:  time.Now,
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read daily stats: %w", err)
	}
	var raw []DayStats
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse daily stats: %w", err)
	}
	for i := range raw {
		d := raw[i]
		s.days[d.Date] = &d
	}
	return s, nil
}

// Today returns today's counters (zero values if nothing recorded yet).
func (s *Store) Today() DayStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := s.now().Format(dateLayout)
	if d, ok := s.days[key]; ok {
		return *d
	}
	return DayStats{Date: key}
}

// CanPost reports whether another post fits under the daily cap.
func (s *Store) CanPost(maxPerDay int) bool {
	return s.Today().Posts < maxPerDay
}

// CanReply reports whether another reply fits under the daily cap.
func (s *Store) CanReply(maxPerDay int) bool {
	return s.Today().Replies < maxPerDay
}

// RecordPost increments today's post count and persists.
func (s *Store) RecordPost() error {
	return s.record(func(d *DayStats) { d.Posts++ })
}

// RecordReply increments today's reply count and persists.
func (s *Store) RecordReply() error {
	return s.record(func(d *DayStats) { d.Replies++ })
}

// History returns retained days sorted by date ascending.
func (s *Store) History() []DayStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]DayStats, 0, len(s.days))
	for _, d := range s.days {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func (s *Store) record(bump func(*DayStats)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	key := now.Format(dateLayout)
	d, ok := s.days[key]
	if !ok {
		d = &DayStats{Date: key}
		s.days[key] = d
	}
	bump(d)
	s.prune(now)
	return s.save()
}

func (s *Store) prune(now time.Time) {
	cutoff := now.Add(-Window).Format(dateLayout)
	for key := range s.days {
		if key < cutoff {
			delete(s.days, key)
		}
	}
}

func (s *Store) save() error {
	out := make([]DayStats, 0, len(s.days))
	for _, d := range s.days {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode daily stats: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create stats dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write daily stats: %w", err)
	}
	return nil
}
