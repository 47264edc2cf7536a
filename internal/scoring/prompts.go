package scoring

import (
	"fmt"
	"strings"

	"lookout/internal/feed"
)

// Role prompts per source family. Each one pins the model to the same JSON
// verdict contract so decoding stays uniform across sources.
const verdictContract = `Respond with a single JSON object and nothing else:
{"score": <integer 0-10>, "reason": "<one sentence>", "suggested_angle": "<how I could comment on this>", "draft_tweet": "<a tweet draft under 280 characters>"}`

const rssSystemPrompt = `You are a tech news analyst helping an engineer build a social media presence around edge AI, on-device inference, and developer tooling. Score how worth commenting on a news item is for that audience. 0 means ignore, 10 means drop everything and post.
` + verdictContract

const twitterSystemPrompt = `You are a social media strategist. Given a tweet, score how valuable engaging with it would be for an engineer building an audience around edge AI and developer tooling. Consider traction, relevance, and whether a reply or quote could add something.
Respond with a single JSON object and nothing else:
{"score": <integer 0-10>, "reason": "<one sentence>", "suggested_angle": "<what to say>", "draft_tweet": "<the reply or quote text>", "interaction_type": "<quote|reply|bookmark>"}`

const animeSystemPrompt = `You are a culture writer who covers anime for a tech audience. Score how well this anime news item could anchor a post connecting anime and technology themes. Sci-fi and production-technology stories score higher.
` + verdictContract

const fundingSystemPrompt = `You are a venture analyst tracking AI and hardware funding, with special attention to Taiwan and the wider Asian ecosystem. Score how newsworthy this funding event is for a founder-focused audience.
` + verdictContract

const longFormSystemPrompt = `You expand a short news verdict into long-form social content. Write a Twitter thread of 3 to 5 tweets (each under 280 characters) and one LinkedIn post (150-300 words, professional but personal voice).
Respond with a single JSON object and nothing else:
{"twitter_thread": ["tweet 1", "tweet 2", "tweet 3"], "linkedin_post": "<the post>", "key_angle": "<the angle the content takes>"}`

func systemPromptFor(sourceType feed.SourceType) string {
	switch sourceType {
	case feed.SourceTwitter:
		return twitterSystemPrompt
	case feed.SourceAnime:
		return animeSystemPrompt
	case feed.SourceVC:
		return fundingSystemPrompt
	default:
		return rssSystemPrompt
	}
}

func userPromptFor(item feed.ContentItem) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Title: %s\nSource: %s\nURL: %s\n", item.Title, item.Source, item.URL)
	if item.Summary != "" {
		fmt.Fprintf(&sb, "Content:\n%s\n", item.Summary)
	}
	if item.TwitterMeta != nil {
		fmt.Fprintf(&sb, "Author: %s\nLikes: %d\nRetweets: %d\n",
			item.TwitterMeta.Author, item.TwitterMeta.Likes, item.TwitterMeta.Retweets)
	}
	if item.AnimeMeta != nil && len(item.AnimeMeta.Titles) > 0 {
		fmt.Fprintf(&sb, "Series: %s\n", strings.Join(item.AnimeMeta.Titles, ", "))
	}
	if item.FundingMeta != nil && item.FundingMeta.AmountMillions > 0 {
		fmt.Fprintf(&sb, "Amount: $%.1fM", item.FundingMeta.AmountMillions)
		if item.FundingMeta.Round != "" {
			fmt.Fprintf(&sb, " (%s)", item.FundingMeta.Round)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func longFormUserPrompt(item feed.ScoredItem) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Title: %s\nURL: %s\nWhy it matters: %s\nAngle: %s\n",
		item.Title, item.URL, item.AIReason, item.SuggestedAngle)
	if item.Summary != "" {
		fmt.Fprintf(&sb, "Content:\n%s\n", item.Summary)
	}
	return sb.String()
}
