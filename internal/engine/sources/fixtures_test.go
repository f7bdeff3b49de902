package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/anatolykoptev/go_playlist/internal/engine"
)

const (
	testLocator  = "https://www.youtube.com/playlist?list=PLtest"
	testOrigin   = "https://yt.test"
	testEndpoint = "/youtubei/v1/browse"
)

type obj = map[string]any

func videoItem(id string) obj {
	return obj{"playlistVideoRenderer": obj{
		"videoId": id,
		"title":   obj{"runs": []any{obj{"text": "track {" + id + "]"}}},
	}}
}

func continuationItem(token, endpoint string) obj {
	ep := obj{"continuationCommand": obj{"token": token}}
	if endpoint != "" {
		ep["commandMetadata"] = obj{"webCommandMetadata": obj{"apiUrl": endpoint}}
	}
	return obj{"continuationItemRenderer": obj{"continuationEndpoint": ep}}
}

// pageItems builds an item list of videos followed by an optional continuation.
func pageItems(ids []string, token, endpoint string) []any {
	items := make([]any, 0, len(ids)+1)
	for _, id := range ids {
		items = append(items, videoItem(id))
	}
	if token != "" {
		items = append(items, continuationItem(token, endpoint))
	}
	return items
}

func initialData(items []any) obj {
	return obj{"contents": obj{"twoColumnBrowseResultsRenderer": obj{"tabs": []any{
		obj{"tabRenderer": obj{"content": obj{"sectionListRenderer": obj{"contents": []any{
			obj{"itemSectionRenderer": obj{"contents": []any{
				obj{"playlistVideoListRenderer": obj{"contents": items}},
			}}},
		}}}}},
	}}}}
}

func continuationData(items []any) obj {
	return obj{"onResponseReceivedActions": []any{
		obj{"appendContinuationItemsAction": obj{"continuationItems": items}},
	}}
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}

// bootstrapPage renders a playlist page the way YouTube embeds its state:
// the browse data in one script and the client config in another.
func bootstrapPage(key string, ids []string, token, endpoint string) string {
	cfg := obj{"INNERTUBE_CONTEXT_CLIENT_NAME": 1}
	if key != "" {
		cfg["INNERTUBE_API_KEY"] = key
	}
	return fmt.Sprintf(`<!DOCTYPE html><html><head>
<title>Road Trip - YouTube</title>
<meta property="og:title" content="Road Trip">
<style>body { margin: 0 }</style>
</head><body>
<script>window.ytplayer = {}; if (a[0]) { b(); }</script>
<script nonce="x">var ytInitialData = %s;</script>
<script>ytcfg.set(%s); window.ytcfg.done = true;</script>
</body></html>`, mustJSON(initialData(pageItems(ids, token, endpoint))), mustJSON(cfg))
}

func continuationPage(ids []string, token, endpoint string) string {
	return mustJSON(continuationData(pageItems(ids, token, endpoint)))
}

// fakeFetcher serves one bootstrap page for GET and scripted bodies for POST.
type fakeFetcher struct {
	mu       sync.Mutex
	page     string
	pageErr  error
	pages    []string
	postErrs map[int]error // by 0-based POST index
	requests []engine.Request
	posts    int
}

func (f *fakeFetcher) Fetch(ctx context.Context, r engine.Request) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.requests = append(f.requests, r)
	if r.Method == http.MethodGet {
		if f.pageErr != nil {
			return nil, f.pageErr
		}
		return []byte(f.page), nil
	}
	i := f.posts
	f.posts++
	if err := f.postErrs[i]; err != nil {
		return nil, err
	}
	if i >= len(f.pages) {
		return nil, &engine.StatusError{StatusCode: http.StatusInternalServerError}
	}
	return []byte(f.pages[i]), nil
}

func (f *fakeFetcher) postRequests() []engine.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []engine.Request
	for _, r := range f.requests {
		if r.Method == http.MethodPost {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeFetcher) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func newTestClient(f engine.Fetcher, opts ...PlaylistOption) *YouTubePlaylistClient {
	base := []PlaylistOption{
		WithFetcherFactory(func() (engine.Fetcher, error) { return f, nil }),
		WithOrigin(testOrigin),
		WithMaxPages(50),
		WithContinuationInterval(0),
		WithHarvestTimeout(0),
	}
	return NewYouTubePlaylistClient(append(base, opts...)...)
}

func watchURLs(ids ...string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = CanonicalVideoURL(id)
	}
	return out
}
