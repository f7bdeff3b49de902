package sources

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubParser struct {
	name   string
	accept func(string) bool
	urls   []string
}

func (s stubParser) Name() string { return s.name }

func (s stubParser) IsSuitable(url string) bool { return s.accept(url) }

func (s stubParser) ParseMedia(context.Context, string) ([]string, error) { return s.urls, nil }

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(stubParser{name: "first", accept: func(u string) bool { return u == "a" }, urls: []string{"1"}})
	r.Register(stubParser{name: "catch_all", accept: func(string) bool { return true }, urls: []string{"2"}})

	assert.Equal(t, []string{"first", "catch_all"}, r.Names())
	assert.Equal(t, "first", r.Find("a").Name())
	assert.Equal(t, "catch_all", r.Find("b").Name())

	urls, err := r.Expand(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, urls)
}

func TestRegistry_Unsupported(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Find("x"))
	_, err := r.Expand(context.Background(), "x")
	require.ErrorIs(t, err, ErrUnsupportedLocator)
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{"youtube_playlist", "yandex_music"}, r.Names())
	assert.Equal(t, "youtube_playlist", r.Find(testLocator).Name())
	assert.Equal(t, "yandex_music", r.Find("https://music.yandex.ru/album/123").Name())
	assert.Nil(t, r.Find("https://example.com/"))
}

func TestYandexMusicParser_IsSuitable(t *testing.T) {
	p := NewYandexMusicParser("tok")
	tests := []struct {
		url  string
		want bool
	}{
		{"https://music.yandex.ru/users/someone/playlists/1001", true},
		{"https://music.yandex.ru/album/123/track/456", true},
		{"https://music.yandex.ru/album/123", true},
		{"https://music.yandex.ru/album/123?access_token=abc", false},
		{"https://music.yandex.ru/artist/42", false},
		{"https://example.com/album/123", false},
		{testLocator, false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, p.IsSuitable(tt.url))
		})
	}
}

func TestYandexMusicParser_ParseMedia(t *testing.T) {
	urls, err := NewYandexMusicParser("tok").ParseMedia(context.Background(), "https://music.yandex.ru/album/1")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://music.yandex.ru/album/1?access_token=tok"}, urls)

	_, err = (&YandexMusicParser{}).ParseMedia(context.Background(), "https://music.yandex.ru/album/1")
	assert.ErrorIs(t, err, errNoYaMusicToken)
}

func TestContinuationRequestBody(t *testing.T) {
	a, err := json.Marshal(newContinuationReq("https://www.youtube.com/playlist?list=A", "tokA"))
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(a, &doc))
	assert.Equal(t, "tokA", doc["continuation"])

	ctx := doc["context"].(map[string]any)
	client := ctx["client"].(map[string]any)
	assert.Equal(t, "WEB", client["clientName"])
	assert.Equal(t, "https://www.youtube.com/playlist?list=A", client["originalUrl"])
	assert.Equal(t, "https://www.youtube.com/playlist?list=A", client["mainAppWebInfo"].(map[string]any)["graftUrl"])
	assert.Equal(t, "Europe/Moscow", client["timeZone"])
	assert.Equal(t, []any{}, ctx["request"].(map[string]any)["internalExperimentFlags"])
	assert.Equal(t, []any{}, ctx["adSignalsInfo"].(map[string]any)["params"])

	// Only the locator and the token vary between requests.
	b, err := json.Marshal(newContinuationReq("L", "T"))
	require.NoError(t, err)
	again, err := json.Marshal(newContinuationReq("L", "T"))
	require.NoError(t, err)
	assert.JSONEq(t, string(b), string(again))

	var other map[string]any
	require.NoError(t, json.Unmarshal(b, &other))
	otherClient := other["context"].(map[string]any)["client"].(map[string]any)
	delete(client, "originalUrl")
	delete(client, "mainAppWebInfo")
	delete(otherClient, "originalUrl")
	delete(otherClient, "mainAppWebInfo")
	assert.Equal(t, client, otherClient)
}
