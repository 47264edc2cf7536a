package feed

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// SourceType identifies which adapter family produced an item.
type SourceType string

const (
	SourceRSS     SourceType = "rss"
	SourceTwitter SourceType = "twitter"
	SourceAnime   SourceType = "anime"
	SourceVC      SourceType = "vc"
)

// InteractionType is how the toolkit intends to engage with a tweet.
type InteractionType string

const (
	InteractQuote    InteractionType = "quote"
	InteractReply    InteractionType = "reply"
	InteractBookmark InteractionType = "bookmark"
)

// ContentItem is the unified record for one fetched candidate. Adapters
// create it at fetch time; after that only scoring annotates a copy
// (see ScoredItem) — the item itself is never mutated.
type ContentItem struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	URL          string     `json:"url"`
	Summary      string     `json:"summary"`
	Source       string     `json:"source"`
	SourceType   SourceType `json:"sourceType"`
	Published    time.Time  `json:"published"`
	KeywordScore int        `json:"keywordScore"`

	TwitterMeta *TwitterMeta `json:"twitterMeta,omitempty"`
	AnimeMeta   *AnimeMeta   `json:"animeMeta,omitempty"`
	FundingMeta *FundingMeta `json:"fundingMeta,omitempty"`

	FetchedAt time.Time `json:"fetchedAt"`
	AdapterID string    `json:"adapterId"`
}

type TwitterMeta struct {
	Author          string          `json:"author"`
	Likes           int             `json:"likes"`
	Retweets        int             `json:"retweets"`
	InteractionType InteractionType `json:"interactionType"`
}

type AnimeMeta struct {
	Titles  []string `json:"titles"`
	IsSciFi bool     `json:"isSciFi"`
}

type FundingMeta struct {
	AmountMillions float64 `json:"amountMillions"`
	Round          string  `json:"round"`
	IsTaiwan       bool    `json:"isTaiwan"`
	IsAsia         bool    `json:"isAsia"`
}

// LongFormContent is the expanded output generated for highlight items.
type LongFormContent struct {
	TwitterThread []string  `json:"twitterThread"`
	LinkedInPost  string    `json:"linkedinPost"`
	KeyAngle      string    `json:"keyAngle"`
	GeneratedBy   string    `json:"generatedBy"`
	GeneratedAt   time.Time `json:"generatedAt"`
}

// ScoredItem is a ContentItem annotated by exactly one scoring pass.
// LongFormContent is present only when AIScore reached the highlight
// threshold and the long-form pass succeeded.
type ScoredItem struct {
	ContentItem

	AIScore         int              `json:"aiScore"`
	AIReason        string           `json:"aiReason"`
	SuggestedAngle  string           `json:"suggestedAngle"`
	DraftTweet      string           `json:"draftTweet"`
	ScoredAt        time.Time        `json:"scoredAt"`
	ScoredBy        string           `json:"scoredBy"`
	InteractionType InteractionType  `json:"interactionType,omitempty"`
	LongForm        *LongFormContent `json:"longFormContent,omitempty"`
}

// ItemID derives a stable short identifier from a source URL. Collisions are
// tolerated — the ID keys a dedupe cache, nothing security-relevant.
func ItemID(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:6])
}
