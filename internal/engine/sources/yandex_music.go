package sources

import (
	"context"
	"errors"
	"regexp"

	"github.com/anatolykoptev/go_playlist/internal/engine"
)

var (
	yaMusicHostRe     = regexp.MustCompile(`music\.yandex\.ru`)
	yaMusicPlaylistRe = regexp.MustCompile(`/users/.*/playlists/[0-9]+`)
	yaMusicTrackRe    = regexp.MustCompile(`/album/[0-9]+/track/[0-9]+`)
	yaMusicAlbumRe    = regexp.MustCompile(`/album/[0-9]+`)
	yaMusicTokenRe    = regexp.MustCompile(`\?access_token=.+`)
)

var errNoYaMusicToken = errors.New("yandex music: YA_MUSIC_TOKEN is not configured")

// YandexMusicParser signs Yandex Music playlist, album and track URLs with
// the configured access token. The player resolves the signed URL itself.
type YandexMusicParser struct {
	token string
}

// NewYandexMusicParser creates a parser. An empty token falls back to engine.Cfg.YaMusicToken.
func NewYandexMusicParser(token string) *YandexMusicParser {
	if token == "" {
		token = engine.Cfg.YaMusicToken
	}
	return &YandexMusicParser{token: token}
}

func (p *YandexMusicParser) Name() string { return "yandex_music" }

func (p *YandexMusicParser) IsSuitable(rawURL string) bool {
	if !yaMusicHostRe.MatchString(rawURL) || yaMusicTokenRe.MatchString(rawURL) {
		return false
	}
	return yaMusicPlaylistRe.MatchString(rawURL) ||
		yaMusicTrackRe.MatchString(rawURL) ||
		yaMusicAlbumRe.MatchString(rawURL)
}

func (p *YandexMusicParser) ParseMedia(_ context.Context, rawURL string) ([]string, error) {
	if p.token == "" {
		return nil, errNoYaMusicToken
	}
	return []string{rawURL + "?access_token=" + p.token}, nil
}
