// Package monitor fetches dashboard snapshots and usage history from the
// metrics backend.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"hwdash/internal/metrics"
)

// maxBody caps how much of a response is read.
const maxBody = 4 << 20

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	URL  string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned %d", e.URL, e.Code)
	}
	return fmt.Sprintf("%s returned %d: %s", e.URL, e.Code, e.Body)
}

// FailureKind names why a fetch failed.
type FailureKind string

const (
	KindTransport FailureKind = "transport"
	KindStatus    FailureKind = "status"
	KindMalformed FailureKind = "malformed"
	KindCanceled  FailureKind = "canceled"
)

// Classify reports the kind of a fetch error.
func Classify(err error) FailureKind {
	var statusErr *StatusError
	switch {
	case errors.As(err, &statusErr):
		return KindStatus
	case errors.Is(err, metrics.ErrMalformedPayload):
		return KindMalformed
	case errors.Is(err, context.Canceled):
		return KindCanceled
	}
	return KindTransport
}

type Client struct {
	dashboardURL string
	historyURL   string
	http         *http.Client
}

func NewClient(dashboardURL, historyURL string, timeout time.Duration) *Client {
	return &Client{
		dashboardURL: dashboardURL,
		historyURL:   historyURL,
		http:         &http.Client{Timeout: timeout},
	}
}

// FetchDashboard reads the current snapshot and anomaly flags.
func (c *Client) FetchDashboard(ctx context.Context) (metrics.DashboardPayload, error) {
	body, err := c.get(ctx, c.dashboardURL)
	if err != nil {
		return metrics.DashboardPayload{}, err
	}
	p, err := metrics.ParseDashboard(body)
	if err != nil {
		return metrics.DashboardPayload{}, fmt.Errorf("decoding %s: %w", c.dashboardURL, err)
	}
	return p, nil
}

// FetchHistory reads the CPU and memory series.
func (c *Client) FetchHistory(ctx context.Context) (metrics.History, error) {
	body, err := c.get(ctx, c.historyURL)
	if err != nil {
		return metrics.History{}, err
	}
	h, err := metrics.ParseHistory(body)
	if err != nil {
		return metrics.History{}, fmt.Errorf("decoding %s: %w", c.historyURL, err)
	}
	return h, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			URL:  url,
			Code: resp.StatusCode,
			Body: truncate(strings.TrimSpace(string(body)), 200),
		}
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
