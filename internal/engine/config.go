package engine

import (
	"net/http"
	"time"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	FetchTimeout         time.Duration // per-request timeout
	FetchMaxTries        int           // 1 = no retry; >1 retries 429/5xx with backoff
	HarvestTimeout       time.Duration // deadline for a whole playlist harvest
	MaxPages             int           // continuation page cap per harvest
	ContinuationInterval time.Duration // minimum gap between continuation requests
	YouTubeOrigin        string        // scheme+host continuation endpoints are relative to
	YaMusicToken         string
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration
	HTTPClient           *http.Client              // template for per-session clients; nil = defaults
	BrowserSession       func() (BrowserDo, error) // per-session stealth client; nil = plain net/http fetches
}

// DefaultConfig returns the configuration used when main does not override it.
func DefaultConfig() Config {
	return Config{
		FetchTimeout:         15 * time.Second,
		FetchMaxTries:        1,
		HarvestTimeout:       2 * time.Minute,
		MaxPages:             500,
		YouTubeOrigin:        "https://www.youtube.com",
		CacheMaxEntries:      1000,
		CacheCleanupInterval: 5 * time.Minute,
	}
}

var cfg = DefaultConfig()

// Cfg exposes the engine configuration for sub-packages (sources, journal).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	cfg = c
	Cfg = &cfg
}
