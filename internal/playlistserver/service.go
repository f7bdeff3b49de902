package playlistserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anatolykoptev/go_playlist/internal/engine"
	"github.com/anatolykoptev/go_playlist/internal/engine/journal"
	"github.com/anatolykoptev/go_playlist/internal/engine/sources"
	"github.com/anatolykoptev/go_playlist/internal/toolutil"
)

// playlistHarvester is implemented by parsers that can report more than URLs.
type playlistHarvester interface {
	HarvestPlaylist(ctx context.Context, url string) (sources.Playlist, error)
}

// HarvestLogOutput lists recent expansion runs.
type HarvestLogOutput struct {
	Entries []journal.Entry `json:"entries"`
	Total   int             `json:"total"`
}

// Service backs the MCP tools. It is safe for concurrent use.
type Service struct {
	registry *sources.Registry
	journal  journal.Journal
}

// NewService creates a Service. A nil journal disables recording.
func NewService(reg *sources.Registry, j journal.Journal) *Service {
	if j == nil {
		j = journal.Nop{}
	}
	return &Service{registry: reg, journal: j}
}

// Expand dispatches in.URL to the first suitable parser and records the run.
// Non-empty results are cached unless in.NoCache is set.
func (s *Service) Expand(ctx context.Context, in engine.PlaylistExpandInput) (engine.PlaylistExpandOutput, error) {
	url := toolutil.NormURL(in.URL)
	if url == "" {
		return engine.PlaylistExpandOutput{}, errors.New("url is required")
	}

	p := s.registry.Find(url)
	if p == nil {
		err := fmt.Errorf("%w: %q", sources.ErrUnsupportedLocator, url)
		s.record(ctx, journal.NewEntry(url, "", 0, err, 0))
		return engine.PlaylistExpandOutput{}, err
	}

	cacheKey := engine.CacheKey("playlist_expand", p.Name(), url)
	if !in.NoCache {
		if out, ok := toolutil.CacheLoadJSON[engine.PlaylistExpandOutput](ctx, cacheKey); ok {
			out.Cached = true
			return out, nil
		}
	}

	out := engine.PlaylistExpandOutput{URL: url, Parser: p.Name()}
	start := time.Now()
	err := engine.TrackOperation(ctx, "expand:"+p.Name(), func(ctx context.Context) error {
		if h, ok := p.(playlistHarvester); ok {
			pl, err := h.HarvestPlaylist(ctx, url)
			if err != nil {
				return err
			}
			out.Title, out.URLs, out.Pages = pl.Title, pl.URLs, pl.Pages
			return nil
		}
		urls, err := s.registry.Expand(ctx, url)
		if err != nil {
			return err
		}
		out.URLs = urls
		return nil
	})
	if out.URLs == nil {
		out.URLs = []string{}
	}
	out.Count = len(out.URLs)
	s.record(ctx, journal.NewEntry(url, p.Name(), out.Count, err, time.Since(start)))
	if err != nil {
		return engine.PlaylistExpandOutput{}, err
	}

	if out.Count > 0 {
		toolutil.CacheStoreJSON(ctx, cacheKey, out)
	}
	return out, nil
}

// Supported reports which parser, if any, accepts in.URL.
func (s *Service) Supported(in engine.PlaylistSupportedInput) engine.PlaylistSupportedOutput {
	url := toolutil.NormURL(in.URL)
	out := engine.PlaylistSupportedOutput{URL: url, Parsers: s.registry.Names()}
	if p := s.registry.Find(url); p != nil {
		out.Supported = true
		out.Parser = p.Name()
	}
	return out
}

// HarvestLog returns the most recent journal entries.
func (s *Service) HarvestLog(ctx context.Context, in engine.HarvestLogInput) (HarvestLogOutput, error) {
	entries, err := s.journal.Recent(ctx, in.Limit)
	if err != nil {
		return HarvestLogOutput{}, err
	}
	return HarvestLogOutput{Entries: entries, Total: len(entries)}, nil
}

func (s *Service) record(ctx context.Context, e journal.Entry) {
	// A cancelled request still gets its journal entry.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.journal.Record(ctx, e); err != nil {
		slog.Warn("journal record failed", slog.String("locator", e.Locator), slog.Any("error", err))
	}
}
