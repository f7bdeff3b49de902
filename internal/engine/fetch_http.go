package engine

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/net/publicsuffix"
)

// maxBodyBytes caps any single response body.
const maxBodyBytes = 8 * 1024 * 1024

// Request is one outgoing HTTP call.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

// Fetcher issues requests and returns the response body of 2xx responses.
// Non-2xx responses are reported as *StatusError.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) ([]byte, error)
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string // truncated snippet
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("status %d", e.StatusCode)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Body)
}

// NewSessionFetcher returns a Fetcher for one harvest session. Cookies set by
// earlier responses are replayed on later requests of the same session and
// never leak into another session.
// A configured BrowserSession takes precedence over net/http.
func NewSessionFetcher() (Fetcher, error) {
	if cfg.BrowserSession != nil {
		do, err := cfg.BrowserSession()
		if err != nil {
			return nil, fmt.Errorf("browser session: %w", err)
		}
		return NewBrowserFetcher(do, cfg.FetchMaxTries), nil
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	return &HTTPFetcher{client: newFetchClient(jar), maxTries: cfg.FetchMaxTries}, nil
}

// NewHTTPFetcher wraps an existing client. maxTries < 1 is treated as 1.
func NewHTTPFetcher(client *http.Client, maxTries int) *HTTPFetcher {
	return &HTTPFetcher{client: client, maxTries: maxTries}
}

// newFetchClient creates an HTTP client with proper settings for web scraping.
func newFetchClient(jar http.CookieJar) *http.Client {
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	var transport http.RoundTripper = &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     30 * time.Second,
		DisableCompression:  false,
		TLSHandshakeTimeout: 15 * time.Second,
	}
	if cfg.HTTPClient != nil && cfg.HTTPClient.Transport != nil {
		transport = cfg.HTTPClient.Transport
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
		Jar:       jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return errors.New("stopped after 10 redirects")
			}
			return nil
		},
	}
}

// HTTPFetcher is a net/http Fetcher with optional exponential backoff on
// retryable statuses (429, 5xx).
type HTTPFetcher struct {
	client   *http.Client
	maxTries int
}

// Fetch performs the request. Transport errors and non-retryable statuses
// are returned immediately.
func (f *HTTPFetcher) Fetch(ctx context.Context, r Request) (data []byte, err error) {
	metrics.FetchRequests.Add(1)
	defer func() {
		if err != nil {
			metrics.FetchErrors.Add(1)
		}
	}()

	operation := func() ([]byte, error) {
		var body io.Reader
		if r.Body != nil {
			body = bytes.NewReader(r.Body)
		}
		req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, body)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		for k, v := range r.Headers {
			req.Header.Set(k, v)
		}
		if req.Header.Get("User-Agent") == "" {
			req.Header.Set("User-Agent", RandomUserAgent())
		}
		req.Header.Set("Accept-Encoding", "gzip")

		resp, err := f.client.Do(req)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		defer resp.Body.Close()

		if IsRetryableStatus(resp.StatusCode) {
			return nil, statusError(resp)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, backoff.Permanent(statusError(resp))
		}

		payload, err := readResponseBody(resp)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("read body: %w", err))
		}
		return payload, nil
	}

	return retryFetch(ctx, f.maxTries, operation)
}

// retryFetch runs op up to maxTries times with exponential backoff. Errors
// wrapped in backoff.Permanent are returned immediately.
func retryFetch(ctx context.Context, maxTries int, op backoff.Operation[[]byte]) ([]byte, error) {
	if maxTries < 1 {
		maxTries = 1
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 1 * time.Second
	bo.MaxInterval = 10 * time.Second

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(maxTries)),
		backoff.WithMaxElapsedTime(60*time.Second),
	)
}

// BrowserFetcher sends requests through a stealth client (Chrome TLS
// fingerprint). Retry policy matches HTTPFetcher.
type BrowserFetcher struct {
	do       BrowserDo
	maxTries int
}

// NewBrowserFetcher wraps one stealth session. maxTries < 1 is treated as 1.
func NewBrowserFetcher(do BrowserDo, maxTries int) *BrowserFetcher {
	return &BrowserFetcher{do: do, maxTries: maxTries}
}

func (f *BrowserFetcher) Fetch(ctx context.Context, r Request) (data []byte, err error) {
	metrics.FetchRequests.Add(1)
	defer func() {
		if err != nil {
			metrics.FetchErrors.Add(1)
		}
	}()

	headers := ChromeHeaders()
	for k, v := range r.Headers {
		headers[strings.ToLower(k)] = v
	}

	operation := func() ([]byte, error) {
		payload, status, err := f.doContext(ctx, r, headers)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		if IsRetryableStatus(status) {
			return nil, &StatusError{StatusCode: status, Body: snippet(payload)}
		}
		if status < 200 || status > 299 {
			return nil, backoff.Permanent(&StatusError{StatusCode: status, Body: snippet(payload)})
		}
		return payload, nil
	}
	return retryFetch(ctx, f.maxTries, operation)
}

// doContext runs one stealth request and gives up as soon as ctx is done.
// The stealth client has no context support; an abandoned request finishes
// in the background and its result is dropped.
func (f *BrowserFetcher) doContext(ctx context.Context, r Request, headers map[string]string) ([]byte, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	type result struct {
		data   []byte
		status int
		err    error
	}
	done := make(chan result, 1)
	go func() {
		var body io.Reader
		if r.Body != nil {
			body = bytes.NewReader(r.Body)
		}
		data, status, err := f.do(r.Method, r.URL, headers, body)
		done <- result{data: data, status: status, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return nil, 0, fmt.Errorf("browser request: %w", res.err)
		}
		return res.data, res.status, nil
	}
}

func statusError(resp *http.Response) *StatusError {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return &StatusError{StatusCode: resp.StatusCode, Body: snippet(b)}
}

func snippet(b []byte) string {
	return TruncateRunes(strings.TrimSpace(string(b)), 256, "...")
}

// readResponseBody reads the response body, handling gzip decompression if needed.
func readResponseBody(resp *http.Response) ([]byte, error) {
	body := io.Reader(resp.Body)
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		body = gz
	}
	return io.ReadAll(io.LimitReader(body, maxBodyBytes))
}
