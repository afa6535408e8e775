package ical

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	ics "github.com/arran4/golang-ical"
)

const (
	defaultTimeout     = 30 * time.Second
	maxRetries         = 3
	initialRetryDelay  = 1 * time.Second
	maxRetryDelay      = 30 * time.Second
	retryBackoffFactor = 2
	maxFeedSize        = 10 << 20
)

// Fetcher downloads and parses iCalendar feeds.
type Fetcher struct {
	httpClient   *http.Client
	initialDelay time.Duration
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		initialDelay: initialRetryDelay,
	}
}

// Fetch retrieves the calendar at url, retrying on rate limits and server
// errors with exponential backoff.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*ics.Calendar, error) {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(f.retryDelay(attempt)):
			}
		}

		var cal *ics.Calendar
		cal, lastErr = f.fetchOnce(ctx, url)
		if lastErr == nil {
			return cal, nil
		}
		if !isRetryableError(lastErr) {
			return nil, lastErr
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) (*ics.Calendar, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/calendar")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, ErrFeedNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode >= 500:
		return nil, &ServerError{StatusCode: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	cal, err := ics.ParseCalendar(io.LimitReader(resp.Body, maxFeedSize))
	if err != nil {
		return nil, fmt.Errorf("failed to parse calendar: %w", err)
	}
	return cal, nil
}

func (f *Fetcher) retryDelay(attempt int) time.Duration {
	delay := f.initialDelay
	for i := 0; i < attempt; i++ {
		delay *= time.Duration(retryBackoffFactor)
	}
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}

func isRetryableError(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var serverErr *ServerError
	return errors.As(err, &serverErr)
}
