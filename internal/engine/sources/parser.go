package sources

import (
	"context"
	"fmt"
	"sync"
)

// MediaParser turns a user-supplied locator into playable media URLs.
type MediaParser interface {
	// Name identifies the parser in logs, journal entries and tool output.
	Name() string
	// IsSuitable reports whether the parser accepts url. It must not touch the network.
	IsSuitable(url string) bool
	// ParseMedia expands url into the media URLs it refers to.
	ParseMedia(ctx context.Context, url string) ([]string, error)
}

// Registry holds media parsers in registration order.
// The first suitable parser wins.
type Registry struct {
	mu      sync.RWMutex
	parsers []MediaParser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// DefaultRegistry returns a registry with the YouTube playlist parser and the
// Yandex Music parser, configured from engine.Cfg.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewYouTubePlaylistClient())
	r.Register(NewYandexMusicParser(""))
	return r
}

// Register appends p to the registry.
func (r *Registry) Register(p MediaParser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parsers = append(r.parsers, p)
}

// Find returns the first parser suitable for url, or nil.
func (r *Registry) Find(url string) MediaParser {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.parsers {
		if p.IsSuitable(url) {
			return p
		}
	}
	return nil
}

// Expand dispatches url to the first suitable parser.
func (r *Registry) Expand(ctx context.Context, url string) ([]string, error) {
	p := r.Find(url)
	if p == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLocator, url)
	}
	return p.ParseMedia(ctx, url)
}

// Names lists registered parser names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.parsers))
	for i, p := range r.parsers {
		names[i] = p.Name()
	}
	return names
}
