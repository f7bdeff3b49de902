package sources

import (
	"github.com/anatolykoptev/go_playlist/internal/engine/fragment"
)

// Item list locations, in priority order.
var (
	// Browse page embedded in the playlist HTML (ytInitialData).
	initialItemsPath = fragment.Path{
		"contents", "twoColumnBrowseResultsRenderer", "tabs", "tabRenderer",
		"content", "sectionListRenderer", "contents", "itemSectionRenderer",
		"contents", "playlistVideoListRenderer", "contents",
	}
	// Response of the innertube browse continuation.
	continuationItemsPath = fragment.Path{
		"onResponseReceivedActions", "appendContinuationItemsAction", "continuationItems",
	}
)

// Fields read from each item.
var (
	videoIDPath  = []string{"playlistVideoRenderer", "videoId"}
	tokenPath    = []string{"continuationItemRenderer", "continuationEndpoint", "continuationCommand", "token"}
	endpointPath = []string{"continuationItemRenderer", "continuationEndpoint", "commandMetadata", "webCommandMetadata", "apiUrl"}
)

const apiKeyField = "INNERTUBE_API_KEY"

// pageResult is what one fragment contributes to a harvest.
type pageResult struct {
	IDs      []string // unique, in discovery order
	Token    string   // empty when the page carries no continuation
	Endpoint string   // origin-relative continuation path, empty when absent
}

// interpretPage extracts video ids and the continuation cursor from n.
// ok is false when n matches none of the item list locations.
func interpretPage(n fragment.Node) (res pageResult, ok bool) {
	items, idx := fragment.ResolveFirst(n, initialItemsPath, continuationItemsPath)
	if idx < 0 {
		return pageResult{}, false
	}
	for items.IsArray() && items.Len() == 1 {
		items = items.Index(0)
	}

	var entries []fragment.Node
	switch items.Kind() {
	case fragment.KindArray:
		entries = items.Items()
	case fragment.KindObject:
		entries = []fragment.Node{items}
	}

	var ids idSet
	for _, e := range entries {
		if id, ok := e.Lookup(videoIDPath...).Str(); ok && id != "" {
			ids.add(id)
		}
		if tok, ok := e.Lookup(tokenPath...).Str(); ok && tok != "" {
			res.Token = tok
		}
		if ep, ok := e.Lookup(endpointPath...).Str(); ok && ep != "" {
			res.Endpoint = ep
		}
	}
	res.IDs = ids.items()
	return res, true
}

// accessKey returns the top-level innertube API key of n, if any.
func accessKey(n fragment.Node) (string, bool) {
	key, ok := n.Field(apiKeyField).Str()
	if !ok || key == "" {
		return "", false
	}
	return key, true
}

// idSet is an insertion-ordered string set. The zero value is ready to use.
type idSet struct {
	seen  map[string]struct{}
	order []string
}

// add reports whether id was new.
func (s *idSet) add(id string) bool {
	if _, dup := s.seen[id]; dup {
		return false
	}
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	s.seen[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

// addAll adds ids and returns how many were new.
func (s *idSet) addAll(ids []string) int {
	added := 0
	for _, id := range ids {
		if s.add(id) {
			added++
		}
	}
	return added
}

func (s *idSet) len() int { return len(s.order) }

// items returns a copy of the members in insertion order.
func (s *idSet) items() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
