// Package delivery posts terminal job results to the downstream collector.
package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Collector store paths per job kind.
const (
	PathLinkStore     = "/link/store"
	PathFastLinkStore = "/link/fast_store"
	PathArchiveStore  = "/archive/store"
)

const apiKeyHeader = "PRIVATE_API_KEY"

// Collector delivers result payloads to the downstream collector over
// authenticated POSTs. Deliveries are self-contained, so concurrent use from
// multiple workers is safe.
type Collector struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
}

// NewCollector builds a collector client for the given base URL and key.
func NewCollector(baseURL, apiKey string, logger *slog.Logger) *Collector {
	return &Collector{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger.With("component", "collector"),
	}
}

// Deliver posts one result to the given store path. The caller decides what a
// failure means; for completed jobs delivery is best-effort and never
// re-queues the job.
func (c *Collector) Deliver(ctx context.Context, path string, result *Result) error {
	body, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)

	c.logger.Info("delivering result", "url", url, "status", result.Status)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("delivery to %s failed: %w", url, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("collector rejected delivery to %s: status %d", url, resp.StatusCode)
	}

	return nil
}
