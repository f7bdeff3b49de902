// Package toolutil provides shared helper functions for go_playlist MCP tools.
package toolutil

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/anatolykoptev/go_playlist/internal/engine"
)

// NormURL trims whitespace around a user-supplied locator.
func NormURL(u string) string {
	return strings.TrimSpace(u)
}

// CacheLoadJSON tries to load a cached value of type T from the engine cache.
// Returns the decoded value and true on hit; zero value and false on miss or decode error.
func CacheLoadJSON[T any](ctx context.Context, key string) (T, bool) {
	var zero T
	cached, ok := engine.CacheGet(ctx, key)
	if !ok {
		return zero, false
	}
	var out T
	if err := json.Unmarshal(cached, &out); err != nil {
		slog.Debug("cache: decode failed", slog.String("key", key), slog.Any("error", err))
		return zero, false
	}
	return out, true
}

// CacheStoreJSON marshals v and stores it in the engine cache.
func CacheStoreJSON[T any](ctx context.Context, key string, v T) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	engine.CacheSet(ctx, key, data)
}
