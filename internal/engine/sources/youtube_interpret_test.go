package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_playlist/internal/engine/fragment"
)

func parseNode(t *testing.T, doc string) fragment.Node {
	t.Helper()
	n, err := fragment.Parse([]byte(doc))
	require.NoError(t, err)
	return n
}

func TestInterpretPage(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		wantOK   bool
		wantIDs  []string
		token    string
		endpoint string
	}{
		{
			name:     "initial page",
			doc:      mustJSON(initialData(pageItems([]string{"a", "b"}, "T1", "/browse"))),
			wantOK:   true,
			wantIDs:  []string{"a", "b"},
			token:    "T1",
			endpoint: "/browse",
		},
		{
			name:    "continuation page without token",
			doc:     continuationPage([]string{"c", "d", "c"}, "", ""),
			wantOK:  true,
			wantIDs: []string{"c", "d"},
		},
		{
			name:    "single entry unwraps to object",
			doc:     continuationPage([]string{"solo"}, "", ""),
			wantOK:  true,
			wantIDs: []string{"solo"},
		},
		{
			name:     "token only",
			doc:      continuationPage(nil, "T9", "/next"),
			wantOK:   true,
			token:    "T9",
			endpoint: "/next",
		},
		{
			name:     "last continuation wins",
			doc:      mustJSON(continuationData([]any{continuationItem("T1", "/one"), videoItem("x"), continuationItem("T2", "/two")})),
			wantOK:   true,
			wantIDs:  []string{"x"},
			token:    "T2",
			endpoint: "/two",
		},
		{
			name:    "initial template preferred",
			doc:     mergeJSON(initialData(pageItems([]string{"i"}, "", "")), continuationData(pageItems([]string{"c"}, "", ""))),
			wantOK:  true,
			wantIDs: []string{"i"},
		},
		{
			name:   "scalar at template yields no entries",
			doc:    `{"onResponseReceivedActions":[{"appendContinuationItemsAction":{"continuationItems":"nope"}}]}`,
			wantOK: true,
		},
		{
			name:    "non-string video id skipped",
			doc:     `{"onResponseReceivedActions":[{"appendContinuationItemsAction":{"continuationItems":[{"playlistVideoRenderer":{"videoId":42}},{"playlistVideoRenderer":{"videoId":"ok"}}]}}]}`,
			wantOK:  true,
			wantIDs: []string{"ok"},
		},
		{
			name:   "empty item list yields nothing",
			doc:    mustJSON(continuationData([]any{})),
			wantOK: true,
		},
		{
			name:   "unrelated fragment",
			doc:    `{"responseContext":{"visitorData":"x"}}`,
			wantOK: false,
		},
		{
			name:   "scalar fragment",
			doc:    `"text"`,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, ok := interpretPage(parseNode(t, tt.doc))
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			if len(tt.wantIDs) == 0 {
				assert.Empty(t, res.IDs)
			} else {
				assert.Equal(t, tt.wantIDs, res.IDs)
			}
			assert.Equal(t, tt.token, res.Token)
			assert.Equal(t, tt.endpoint, res.Endpoint)
		})
	}
}

func TestInterpretPage_Idempotent(t *testing.T) {
	n := parseNode(t, mustJSON(initialData(pageItems([]string{"a", "b", "c"}, "T", "/e"))))
	first, ok1 := interpretPage(n)
	second, ok2 := interpretPage(n)
	assert.Equal(t, ok1, ok2)
	assert.Equal(t, first, second)
}

func TestAccessKey(t *testing.T) {
	tests := []struct {
		doc    string
		want   string
		wantOK bool
	}{
		{`{"INNERTUBE_API_KEY":"AIza"}`, "AIza", true},
		{`{"INNERTUBE_API_KEY":""}`, "", false},
		{`{"INNERTUBE_API_KEY":7}`, "", false},
		{`{"nested":{"INNERTUBE_API_KEY":"AIza"}}`, "", false},
		{`[{"INNERTUBE_API_KEY":"AIza"}]`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.doc, func(t *testing.T) {
			key, ok := accessKey(parseNode(t, tt.doc))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, key)
		})
	}
}

func TestReadBootstrap(t *testing.T) {
	page := bootstrapPage("KEY", []string{"a", "b"}, "T1", "/browse") +
		`<script>var late = ` + mustJSON(continuationData(pageItems([]string{"b", "c"}, "T2", ""))) + `;</script>` +
		`<script>ytcfg.set({"INNERTUBE_API_KEY":"KEY2"});</script>`

	st := readBootstrap(page)
	assert.Equal(t, []string{"a", "b", "c"}, st.ids.items())
	assert.Equal(t, "T2", st.cur.token)
	assert.Equal(t, "/browse", st.cur.endpoint, "endpoint kept when a later fragment omits it")
	assert.Equal(t, "KEY2", st.key)
}

func TestIDSet(t *testing.T) {
	var s idSet
	assert.True(t, s.add("x"))
	assert.False(t, s.add("x"))
	assert.Equal(t, 2, s.addAll([]string{"y", "x", "z"}))
	assert.Equal(t, 3, s.len())

	items := s.items()
	assert.Equal(t, []string{"x", "y", "z"}, items)
	items[0] = "mutated"
	assert.Equal(t, "x", s.items()[0])
}

// mergeJSON renders the union of top-level keys of docs.
func mergeJSON(docs ...obj) string {
	out := obj{}
	for _, d := range docs {
		for k, v := range d {
			out[k] = v
		}
	}
	return mustJSON(out)
}
