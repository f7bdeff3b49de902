package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// FetchPage GETs an HTML page and returns it as text.
func FetchPage(ctx context.Context, f Fetcher, pageURL string) (string, error) {
	ctx, cancel := withFetchTimeout(ctx)
	defer cancel()

	body, err := f.Fetch(ctx, Request{
		Method: http.MethodGet,
		URL:    pageURL,
		Headers: map[string]string{
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
		},
	})
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// PostJSON marshals payload, POSTs it and returns the raw response body.
// The response is not decoded; callers own its interpretation.
func PostJSON(ctx context.Context, f Fetcher, endpoint string, headers map[string]string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	ctx, cancel := withFetchTimeout(ctx)
	defer cancel()

	h := map[string]string{"Content-Type": "application/json"}
	for k, v := range headers {
		h[k] = v
	}
	return f.Fetch(ctx, Request{
		Method:  http.MethodPost,
		URL:     endpoint,
		Headers: h,
		Body:    body,
	})
}

// withFetchTimeout bounds one request by cfg.FetchTimeout. A non-positive
// timeout leaves the caller's deadline alone.
func withFetchTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if cfg.FetchTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, cfg.FetchTimeout)
}
