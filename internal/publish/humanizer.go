package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"lookout/pkg/clients"
	"lookout/pkg/logging"
)

const defaultHumanizerTimeout = 30 * time.Second

// Humanizer calls an external rewrite service that makes drafts sound less
// generated. The service is a black box; every failure, from a missing URL
// to a bad response, falls back to the original text so publishing never
// blocks on it.
type Humanizer struct {
	url    string
	client *http.Client
	logger logging.Logger
}

func NewHumanizer(url string, timeout time.Duration, logger logging.Logger) *Humanizer {
	if timeout <= 0 {
		timeout = defaultHumanizerTimeout
	}
	return &Humanizer{
		url:    url,
		client: clients.NewRetryingClient(timeout, clients.DefaultHTTPExecutorConfig()),
		logger: logger,
	}
}

type humanizeRequest struct {
	Text string `json:"text"`
}

type humanizeResponse struct {
	Text string `json:"text"`
}

// Humanize returns the rewritten text, or the original on any failure.
func (h *Humanizer) Humanize(ctx context.Context, text string) string {
	if h == nil || h.url == "" {
		return text
	}
	rewritten, err := h.call(ctx, text)
	if err != nil {
		h.logger.WithError(err).Warn("Humanizer unavailable, using original text")
		return text
	}
	if rewritten == "" {
		return text
	}
	return rewritten
}

func (h *Humanizer) call(ctx context.Context, text string) (string, error) {
	payload, err := json.Marshal(humanizeRequest{Text: text})
	if err != nil {
		return "", fmt.Errorf("encode humanize request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build humanize request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("humanize request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("humanizer: unexpected status %s: %s", resp.Status, string(body))
	}

	var out humanizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode humanize response: %w", err)
	}
	return out.Text, nil
}
