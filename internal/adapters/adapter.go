// Package adapters fetches candidate content from the configured sources
// (RSS feeds, Twitter search, anime news, VC funding news) and normalizes
// everything into feed.ContentItem records for the scoring stage.
package adapters

import (
	"context"

	"lookout/internal/feed"
)

// SourceAdapter is one content source. Fetch returns normalized, deduplicated,
// keyword-ranked items; a disabled adapter returns (nil, nil) without doing
// any work. Per-feed failures inside Fetch are logged and skipped — only
// adapter-level misconfiguration comes back as an error.
type SourceAdapter interface {
	Name() string
	Enabled() bool
	Fetch(ctx context.Context) ([]feed.ContentItem, error)
}

// SeenCache answers whether an item URL was already processed recently.
type SeenCache interface {
	Has(key string) bool
}

// dropSeen filters out items already present in the cache. A nil cache
// passes everything through.
func dropSeen(items []feed.ContentItem, cache SeenCache) []feed.ContentItem {
	if cache == nil {
		return items
	}
	fresh := items[:0]
	for _, it := range items {
		if !cache.Has(it.URL) {
			fresh = append(fresh, it)
		}
	}
	return fresh
}
