package adapters

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	readability "codeberg.org/readeck/go-readability/v2"
	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"

	"lookout/pkg/logging"
)

const (
	enricherUserAgent = "LookoutBot/1.0"
	maxArticleBytes   = 2 << 20 // 2 MB cap on fetched article bodies
	maxSummaryRunes   = 1500
	enrichMinWords    = 30
)

// ArticleEnricher fetches an article page and extracts readable body text,
// used when a feed entry ships without a usable summary. Extraction runs
// Mozilla's Readability algorithm and converts the cleaned subtree to
// markdown; a plain DOM text walk is the fallback.
type ArticleEnricher struct {
	client *http.Client
	logger logging.Logger
}

func NewArticleEnricher(client *http.Client, logger logging.Logger) *ArticleEnricher {
	if client == nil {
		client = http.DefaultClient
	}
	return &ArticleEnricher{client: client, logger: logger}
}

// Summarize fetches pageURL and returns extracted body text, truncated for
// prompt use. Errors are returned so the caller can log and keep the item
// with its original (empty) summary.
func (e *ArticleEnricher) Summarize(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build article request: %w", err)
	}
	req.Header.Set("User-Agent", enricherUserAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch article %s: %w", pageURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch article %s: unexpected status %s", pageURL, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxArticleBytes))
	if err != nil {
		return "", fmt.Errorf("read article %s: %w", pageURL, err)
	}

	text := extractArticleText(data, pageURL)
	if len(strings.Fields(text)) < enrichMinWords {
		return "", fmt.Errorf("article %s: extracted text too short", pageURL)
	}
	return truncateRunes(text, maxSummaryRunes), nil
}

func extractArticleText(data []byte, pageURL string) string {
	parsedURL, _ := url.Parse(pageURL)
	article, err := readability.FromReader(bytes.NewReader(data), parsedURL)
	if err == nil && article.Node != nil {
		if md, mdErr := htmltomarkdown.ConvertNode(article.Node); mdErr == nil {
			if text := collapseBlank(string(md)); text != "" {
				return text
			}
		}
		var buf bytes.Buffer
		_ = article.RenderText(&buf)
		if text := collapseBlank(buf.String()); text != "" {
			return text
		}
	}

	node, parseErr := html.Parse(bytes.NewReader(data))
	if parseErr != nil {
		return ""
	}
	var sb strings.Builder
	walkText(node, &sb)
	return collapseBlank(sb.String())
}

// walkText collects visible text nodes, skipping script/style/nav chrome.
func walkText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript", "nav", "header", "footer":
			return
		}
	}
	if n.Type == html.TextNode {
		trimmed := strings.TrimSpace(n.Data)
		if trimmed != "" {
			sb.WriteString(trimmed)
			sb.WriteString(" ")
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkText(c, sb)
	}
}

func collapseBlank(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		trimmed := strings.TrimRight(line, " \t")
		if strings.TrimSpace(trimmed) == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, trimmed)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit])) + "..."
}
