// Package seencache tracks which item URLs the pipeline has already
// processed, so reruns and overlapping feeds don't re-score the same
// article. The cache is a derived index: losing it only costs duplicate
// reprocessing, never data.
package seencache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// TTL after which an entry is evicted, regardless of whether it was
// ever consulted.
const TTL = 7 * 24 * time.Hour

// Entry pairs a seen key with the time it was first recorded.
type Entry struct {
	URL       string    `json:"url"`
	Timestamp time.Time `json:"timestamp"`
}

// Store is a single-writer seen-item set persisted as a flat JSON array.
// All mutation goes through the store's mutex; concurrent processes racing
// on the same file degrade to last-write-wins, which is accepted for a
// single-operator tool.
type Store struct {
	mu      sync.Mutex
	path    string
	entries map[string]time.Time
	now     func() time.Time
}

// Open loads the cache file. A missing file yields an empty cache; a corrupt
// file is treated the same way, since the cache is rebuildable.
func Open(path string) (*Store, error) {
	s := &Store{
		path:    path,
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seen cache: %w", err)
	}
	var raw []Entry
	if err := json.Unmarshal(data, &raw); err != nil {
		// Rebuildable index: start fresh rather than fail the run.
		return s, nil
	}
	for _, e := range raw {
		s.entries[e.URL] = e.Timestamp
	}
	return s, nil
}

// Has reports whether key was recorded within the TTL window.
func (s *Store) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts, ok := s.entries[key]
	if !ok {
		return false
	}
	return s.now().Sub(ts) <= TTL
}

// AddAll records the keys and persists the cache. Entries past the TTL are
// pruned lazily on every write.
func (s *Store) AddAll(keys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, exists := s.entries[k]; !exists {
			s.entries[k] = now
		}
	}
	s.prune(now)
	return s.save()
}

// Len returns the number of live entries (including any not yet pruned).
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) prune(now time.Time) {
	for k, ts := range s.entries {
		if now.Sub(ts) > TTL {
			delete(s.entries, k)
		}
	}
}

func (s *Store) save() error {
	out := make([]Entry, 0, len(s.entries))
	for k, ts := range s.entries {
		out = append(out, Entry{URL: k, Timestamp: ts})
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode seen cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write seen cache: %w", err)
	}
	return nil
}
