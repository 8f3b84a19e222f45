// Package analytics records page views. Recording is fire-and-forget:
// failures never reach the visitor.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Sink receives page views.
type Sink interface {
	RecordPageView(ctx context.Context, path string) error
}

// LogSink writes page views to the structured log.
type LogSink struct{}

func (LogSink) RecordPageView(ctx context.Context, path string) error {
	slog.InfoContext(ctx, "page_view", "path", path)
	return nil
}

// HTTPSink posts page views as JSON to a collector endpoint.
type HTTPSink struct {
	endpoint string
	client   *http.Client
	now      func() time.Time
}

// NewHTTPSink creates an HTTPSink posting page views to endpoint.
func NewHTTPSink(endpoint string) *HTTPSink {
	return &HTTPSink{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 3 * time.Second},
		now:      time.Now,
	}
}

type pageView struct {
	Path       string    `json:"path"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (s *HTTPSink) RecordPageView(ctx context.Context, path string) error {
	body, err := json.Marshal(pageView{Path: path, OccurredAt: s.now().UTC()})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("analytics endpoint returned %d", resp.StatusCode)
	}
	return nil
}

// Track records a page view for every GET request that reaches next. The
// sink runs on its own goroutine and its error is discarded.
func Track(sink Sink) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sink != nil && r.Method == http.MethodGet {
				ctx := context.WithoutCancel(r.Context())
				path := r.URL.Path
				go func() {
					if err := sink.RecordPageView(ctx, path); err != nil {
						slog.DebugContext(ctx, "page view not recorded", "path", path, "error", err)
					}
				}()
			}
			next.ServeHTTP(w, r)
		})
	}
}
