// Package analytics emits best-effort usage events to a PostHog-style
// capture endpoint. Emission never blocks the response path and failures are
// logged, never propagated.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/CelebrityPunks/date-genie/internal/httpclient"
)

const (
	defaultEndpoint = "https://us.i.posthog.com/capture/"

	// emitTimeout bounds a single capture call so stuck goroutines cannot
	// accumulate.
	emitTimeout = 5 * time.Second
)

// Client sends capture events. A nil Client or one constructed without an API
// key is a no-op, so callers never need to guard emission.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
}

// New creates an analytics client. Returns a no-op client when apiKey is empty.
func New(apiKey string) *Client {
	return &Client{
		httpClient: httpclient.NewDefaultHTTPClient(),
		endpoint:   defaultEndpoint,
		apiKey:     apiKey,
	}
}

// SetEndpoint allows pointing the client at a non-production endpoint.
func (c *Client) SetEndpoint(url string) {
	c.endpoint = url
}

// Enabled reports whether events will actually be sent.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

type captureEvent struct {
	APIKey     string                 `json:"api_key"`
	Event      string                 `json:"event"`
	UUID       string                 `json:"uuid"`
	Properties map[string]interface{} `json:"properties"`
}

// Track dispatches an event without blocking the caller. The event carries a
// fresh UUID so downstream ingestion can deduplicate replays.
func (c *Client) Track(event string, properties map[string]interface{}) {
	if !c.Enabled() {
		return
	}

	payload := captureEvent{
		APIKey:     c.apiKey,
		Event:      event,
		UUID:       uuid.NewString(),
		Properties: properties,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), emitTimeout)
		defer cancel()

		if err := c.send(ctx, payload); err != nil {
			slog.Warn("analytics event failed", "event", event, "error", err)
		}
	}()
}

func (c *Client) send(ctx context.Context, payload captureEvent) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	return nil
}
