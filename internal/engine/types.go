package engine

// --- Tool inputs ---

type PlaylistExpandInput struct {
	URL     string `json:"url" jsonschema:"Playlist or album URL (YouTube playlist, Yandex Music album/track/user playlist)"`
	NoCache bool   `json:"no_cache,omitempty" jsonschema:"Skip the result cache and harvest again"`
}

type PlaylistSupportedInput struct {
	URL string `json:"url" jsonschema:"URL to check against the registered parsers"`
}

type HarvestLogInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Max entries to return, newest first (default: 20, max: 100)"`
}

// --- Output types (JSON responses) ---

// PlaylistExpandOutput is the expansion of one locator.
type PlaylistExpandOutput struct {
	URL    string   `json:"url" yaml:"url"`
	Parser string   `json:"parser" yaml:"parser"`
	Title  string   `json:"title,omitempty" yaml:"title,omitempty"`
	Count  int      `json:"count" yaml:"count"`
	URLs   []string `json:"urls" yaml:"urls"`
	Pages  int      `json:"pages,omitempty" yaml:"pages,omitempty"`
	Cached bool     `json:"cached,omitempty" yaml:"cached,omitempty"`
}

type PlaylistSupportedOutput struct {
	URL       string   `json:"url"`
	Supported bool     `json:"supported"`
	Parser    string   `json:"parser,omitempty"`
	Parsers   []string `json:"parsers"`
}
