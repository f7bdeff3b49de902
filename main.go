// go_playlist: playlist expansion MCP server.
//
// Exposes three MCP tools: playlist_expand, playlist_supported, playlist_harvest_log.
// Runs as HTTP MCP server or stdio transport.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/proxypool"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/multierr"

	"github.com/anatolykoptev/go_playlist/internal/engine"
	"github.com/anatolykoptev/go_playlist/internal/engine/journal"
	"github.com/anatolykoptev/go_playlist/internal/engine/sources"
	"github.com/anatolykoptev/go_playlist/internal/playlistserver"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8893")
)

func main() {
	initEngine()

	slog.Info("starting go_playlist",
		slog.String("port", mcpPort),
	)

	j, err := journal.Open(context.Background(), env.Str("DATABASE_URL", ""), env.Str("JOURNAL_PATH", ""))
	if err != nil {
		slog.Warn("journal init failed, runs will not be recorded", slog.Any("error", err))
		j = journal.Nop{}
	}
	defer func() {
		if err := multierr.Combine(j.Close(), engine.CloseCache()); err != nil {
			slog.Warn("shutdown", slog.Any("error", err))
		}
	}()

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_playlist",
		Version: version,
	}, nil)

	reg := sources.DefaultRegistry()
	playlistserver.RegisterTools(server, playlistserver.NewService(reg, j))
	slog.Info("tools registered", slog.Int("count", 3), slog.Any("parsers", reg.Names()))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_playlist",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initEngine() {
	d := engine.DefaultConfig()
	c := engine.Config{
		FetchTimeout:         env.Duration("FETCH_TIMEOUT", d.FetchTimeout),
		FetchMaxTries:        env.Int("FETCH_MAX_TRIES", d.FetchMaxTries),
		HarvestTimeout:       env.Duration("HARVEST_TIMEOUT", d.HarvestTimeout),
		MaxPages:             env.Int("MAX_PAGES", d.MaxPages),
		ContinuationInterval: env.Duration("CONTINUATION_INTERVAL", d.ContinuationInterval),
		YouTubeOrigin:        env.Str("YOUTUBE_ORIGIN", d.YouTubeOrigin),
		YaMusicToken:         env.Str("YA_MUSIC_TOKEN", ""),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", d.CacheMaxEntries),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", d.CacheCleanupInterval),
		HTTPClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}

	if useBrowserClient() {
		var opts []stealth.ClientOption
		opts = append(opts, stealth.WithTimeout(15))

		if apiKey := env.Str("WEBSHARE_API_KEY", ""); apiKey != "" {
			pool, err := proxypool.NewWebshare(apiKey)
			if err != nil {
				slog.Warn("proxy pool init failed, running without proxy", slog.Any("error", err))
			} else {
				opts = append(opts, stealth.WithProxyPool(pool))
				slog.Info("proxy pool initialized", slog.Int("proxies", pool.Len()))
			}
		}

		// One stealth client per harvest session; the proxy pool is shared.
		sessions := engine.BrowserSessions(opts...)
		if _, err := sessions(); err != nil {
			slog.Error("stealth client init failed", slog.Any("error", err))
		} else {
			c.BrowserSession = sessions
			slog.Info("stealth browser sessions enabled")
		}
	}

	engine.Init(c)

	cacheTTL := env.Duration("CACHE_TTL", 15*time.Minute)
	engine.InitCache(env.Str("REDIS_URL", ""), cacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)
}

func useBrowserClient() bool {
	switch strings.ToLower(env.Str("USE_BROWSER_CLIENT", "")) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
