package sources

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/anatolykoptev/go_playlist/internal/engine"
)

var playlistURLRe = regexp.MustCompile(`youtube\.com/playlist\?list=(?P<playlist_id>.*)$`)

const ytWatchURL = "https://www.youtube.com/watch?v="

// MatchPlaylist reports whether rawURL is a YouTube playlist locator and
// returns its list id.
func MatchPlaylist(rawURL string) (listID string, ok bool) {
	m := playlistURLRe.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	return m[playlistURLRe.SubexpIndex("playlist_id")], true
}

// CanonicalVideoURL returns the watch URL for a video id.
func CanonicalVideoURL(id string) string {
	return ytWatchURL + url.QueryEscape(id)
}

// Playlist is the result of one harvest.
type Playlist struct {
	ID    string   `json:"id"`
	Title string   `json:"title,omitempty"`
	URLs  []string `json:"urls"`
	Pages int      `json:"pages"`
}

// YouTubePlaylistClient expands YouTube playlists by scraping the playlist
// page and replaying innertube browse continuations.
type YouTubePlaylistClient struct {
	newFetcher func() (engine.Fetcher, error)
	origin     string
	maxPages   int
	interval   time.Duration
	timeout    time.Duration
}

// PlaylistOption customizes a YouTubePlaylistClient.
type PlaylistOption func(*YouTubePlaylistClient)

// WithFetcherFactory sets the constructor of the per-harvest Fetcher.
func WithFetcherFactory(fn func() (engine.Fetcher, error)) PlaylistOption {
	return func(c *YouTubePlaylistClient) { c.newFetcher = fn }
}

// WithOrigin sets the scheme+host continuation endpoints are resolved against.
func WithOrigin(origin string) PlaylistOption {
	return func(c *YouTubePlaylistClient) { c.origin = strings.TrimRight(origin, "/") }
}

// WithMaxPages caps continuation requests per harvest. Zero disables the cap.
func WithMaxPages(n int) PlaylistOption {
	return func(c *YouTubePlaylistClient) { c.maxPages = n }
}

// WithContinuationInterval sets the minimum gap between continuation requests.
func WithContinuationInterval(d time.Duration) PlaylistOption {
	return func(c *YouTubePlaylistClient) { c.interval = d }
}

// WithHarvestTimeout bounds one harvest. Zero leaves the caller's deadline alone.
func WithHarvestTimeout(d time.Duration) PlaylistOption {
	return func(c *YouTubePlaylistClient) { c.timeout = d }
}

// NewYouTubePlaylistClient creates a client configured from engine.Cfg.
func NewYouTubePlaylistClient(opts ...PlaylistOption) *YouTubePlaylistClient {
	c := &YouTubePlaylistClient{
		newFetcher: engine.NewSessionFetcher,
		origin:     strings.TrimRight(engine.Cfg.YouTubeOrigin, "/"),
		maxPages:   engine.Cfg.MaxPages,
		interval:   engine.Cfg.ContinuationInterval,
		timeout:    engine.Cfg.HarvestTimeout,
	}
	if c.origin == "" {
		c.origin = "https://www.youtube.com"
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *YouTubePlaylistClient) Name() string { return "youtube_playlist" }

func (c *YouTubePlaylistClient) IsSuitable(rawURL string) bool {
	_, ok := MatchPlaylist(rawURL)
	return ok
}

// ParseMedia returns the canonical watch URLs of every video in the playlist.
func (c *YouTubePlaylistClient) ParseMedia(ctx context.Context, rawURL string) ([]string, error) {
	p, err := c.HarvestPlaylist(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return p.URLs, nil
}

// HarvestPlaylist fetches the playlist page, follows every continuation and
// returns the playlist with its videos in discovery order.
func (c *YouTubePlaylistClient) HarvestPlaylist(ctx context.Context, rawURL string) (Playlist, error) {
	engine.IncrPlaylistRequests()

	listID, ok := MatchPlaylist(rawURL)
	if !ok {
		engine.IncrPlaylistErrors()
		return Playlist{}, fmt.Errorf("%w: %q", ErrNotPlaylist, rawURL)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	res, err := c.harvest(ctx, rawURL)
	if err != nil {
		engine.IncrPlaylistErrors()
		return Playlist{}, err
	}

	urls := make([]string, len(res.ids))
	for i, id := range res.ids {
		urls[i] = CanonicalVideoURL(id)
	}
	return Playlist{
		ID:    listID,
		Title: res.title,
		URLs:  urls,
		Pages: res.pages,
	}, nil
}

// pageTitle reads the playlist title from the bootstrap HTML.
func pageTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		slog.Debug("youtube playlist: title parse failed", slog.Any("error", err))
		return ""
	}
	if t, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(t) != "" {
		return strings.TrimSpace(t)
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(doc.Find("title").First().Text()), "- YouTube"))
}
