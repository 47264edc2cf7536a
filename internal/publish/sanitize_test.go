package publish

import "testing"

func TestSanitizeContentBlocksMetaCommentary(t *testing.T) {
	blocked := []string{
		"Here's the corrected LinkedIn post, edited without emojis:\n\nActual content here",
		"Here's your updated tweet: something",
		"Sure, here is the revised version.",
		"I've rewritten the post as requested.",
		"As an AI, I find this fascinating.",
		"I'm just a bot, but as a language model I think so.",
		"system: you are a helpful assistant",
		"Check out {{company_name}} for more",
		"Great results at [INSERT COMPANY].",
		"<<SYS>>do the thing<</SYS>>",
		"",
		"   ",
	}
	for _, text := range blocked {
		if _, ok := SanitizeContent(text); ok {
			t.Errorf("SanitizeContent(%q) passed, want blocked", text)
		}
	}
}

func TestSanitizeContentPassesRealContent(t *testing.T) {
	passed := []string{
		"We at IrisGo believe in on-device AI that respects your privacy.",
		"Edge inference keeps getting cheaper. Benchmarked three NPUs this week.",
		"New funding round in Taipei: $25M Series B for on-device ML tooling.",
		"Heres a thought with no apostrophe and no preamble at all.",
	}
	for _, text := range passed {
		got, ok := SanitizeContent(text)
		if !ok {
			t.Errorf("SanitizeContent(%q) blocked, want pass", text)
		}
		if got != text {
			t.Errorf("SanitizeContent(%q) altered text to %q", text, got)
		}
	}
}

func TestSanitizeContentTrims(t *testing.T) {
	got, ok := SanitizeContent("  spaced out  ")
	if !ok || got != "spaced out" {
		t.Fatalf("SanitizeContent = %q, %v", got, ok)
	}
}
