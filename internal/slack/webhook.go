// Package slack posts messages to a Slack incoming webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"basegraph.app/dropbox2slack/common/logger"
	"basegraph.app/dropbox2slack/internal/model"
)

// ErrChannelNotFound is returned when the webhook rejects the message's channel.
var ErrChannelNotFound = errors.New("slack channel not found")

// UpstreamError is any other non-2xx webhook response or transport failure.
type UpstreamError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("slack webhook: %v", e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("slack webhook: status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("slack webhook: status %d: %s", e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

type Config struct {
	WebhookURL string
	Timeout    time.Duration
	HTTPClient *http.Client
}

type Webhook struct {
	url        string
	httpClient *http.Client
}

func NewWebhook(cfg Config) *Webhook {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Webhook{url: cfg.WebhookURL, httpClient: httpClient}
}

// Send posts msg once. A rejected channel is reported as an *UpstreamError
// wrapping ErrChannelNotFound; the caller decides whether to fall back.
func (w *Webhook) Send(ctx context.Context, msg model.OutboundMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return &UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	text := strings.TrimSpace(string(respBody))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	upErr := &UpstreamError{StatusCode: resp.StatusCode, Body: logger.Truncate(text, 512)}
	if resp.StatusCode == http.StatusNotFound || text == "channel_not_found" {
		upErr.Err = ErrChannelNotFound
	}
	return upErr
}
