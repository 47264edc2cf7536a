package feed

import "strings"

// KeywordTiers holds the weighted keyword lists an adapter matches
// against article text. Matching is case-insensitive substring search.
type KeywordTiers struct {
	High   []string `json:"high"`
	Medium []string `json:"medium"`
	Low    []string `json:"low"`
}

// Tier weights. A high-priority feed adds a flat bonus on top.
const (
	highWeight        = 3
	mediumWeight      = 2
	lowWeight         = 1
	highPriorityBonus = 1
)

// KeywordScore computes the pre-AI relevance heuristic for a piece of text:
// +3 per high-tier match, +2 per medium, +1 per low, +1 flat if the source
// feed is marked high-priority. Pure function of text and configuration,
// so repeated calls always return the same integer.
func KeywordScore(text string, tiers KeywordTiers, highPriorityFeed bool) int {
	lowered := strings.ToLower(text)
	score := 0
	for _, kw := range tiers.High {
		if kw != "" && strings.Contains(lowered, strings.ToLower(kw)) {
			score += highWeight
		}
	}
	for _, kw := range tiers.Medium {
		if kw != "" && strings.Contains(lowered, strings.ToLower(kw)) {
			score += mediumWeight
		}
	}
	for _, kw := range tiers.Low {
		if kw != "" && strings.Contains(lowered, strings.ToLower(kw)) {
			score += lowWeight
		}
	}
	if highPriorityFeed {
		score += highPriorityBonus
	}
	return score
}

// RankByKeywordScore sorts items by KeywordScore descending and truncates to
// topN. The sort is stable: ties keep their original fetch order.
func RankByKeywordScore(items []ContentItem, topN int) []ContentItem {
	ranked := make([]ContentItem, len(items))
	copy(ranked, items)
	// Insertion sort keeps equal scores in fetch order.
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && ranked[j].KeywordScore > ranked[j-1].KeywordScore; j-- {
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
		}
	}
	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}
