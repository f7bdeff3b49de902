package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	PlaylistRequests    atomic.Int64
	PlaylistErrors      atomic.Int64
	FetchRequests       atomic.Int64
	FetchErrors         atomic.Int64
	BootstrapFetches    atomic.Int64
	ContinuationFetches atomic.Int64
	FragmentsParsed     atomic.Int64
	FragmentsSkipped    atomic.Int64
}

// metricKeys fixes the rendering order of FormatMetrics.
var metricKeys = []string{
	"playlist_requests", "playlist_errors",
	"fetch_requests", "fetch_errors",
	"bootstrap_fetches", "continuation_fetches",
	"fragments_parsed", "fragments_skipped",
	"cache_hits", "cache_misses",
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"playlist_requests":    metrics.PlaylistRequests.Load(),
		"playlist_errors":      metrics.PlaylistErrors.Load(),
		"fetch_requests":       metrics.FetchRequests.Load(),
		"fetch_errors":         metrics.FetchErrors.Load(),
		"bootstrap_fetches":    metrics.BootstrapFetches.Load(),
		"continuation_fetches": metrics.ContinuationFetches.Load(),
		"fragments_parsed":     metrics.FragmentsParsed.Load(),
		"fragments_skipped":    metrics.FragmentsSkipped.Load(),
		"cache_hits":           hits,
		"cache_misses":         misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for sources/ sub-package.
func IncrPlaylistRequests() { metrics.PlaylistRequests.Add(1) }

func IncrPlaylistErrors() { metrics.PlaylistErrors.Add(1) }

func IncrBootstrapFetches() { metrics.BootstrapFetches.Add(1) }

func IncrContinuationFetches() { metrics.ContinuationFetches.Add(1) }

// AddFragments records the outcome of one extraction pass.
func AddFragments(parsed, skipped int) {
	metrics.FragmentsParsed.Add(int64(parsed))
	metrics.FragmentsSkipped.Add(int64(skipped))
}

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
