package engine

import (
	"io"

	stealth "github.com/anatolykoptev/go-stealth"
)

// Re-export stealth helpers for engine consumers.
func ChromeHeaders() map[string]string { return stealth.ChromeHeaders() }

func RandomUserAgent() string { return stealth.RandomUserAgent() }

func IsRetryableStatus(code int) bool { return stealth.IsRetryableStatus(code) }

// BrowserDo performs one request through a stealth client and returns the
// body and status code.
type BrowserDo func(method, url string, headers map[string]string, body io.Reader) ([]byte, int, error)

// BrowserSessions returns a constructor of independent stealth clients, one
// per harvest session. Each client owns its cookie jar; opts (timeout,
// proxy pool) are shared.
func BrowserSessions(opts ...stealth.ClientOption) func() (BrowserDo, error) {
	return func() (BrowserDo, error) {
		bc, err := stealth.NewClient(opts...)
		if err != nil {
			return nil, err
		}
		return func(method, url string, headers map[string]string, body io.Reader) ([]byte, int, error) {
			data, _, status, err := bc.Do(method, url, headers, body)
			return data, status, err
		}, nil
	}
}
