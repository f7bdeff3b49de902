package playlistserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_playlist/internal/engine"
)

func connect(t *testing.T, svc *Service) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	server := mcp.NewServer(&mcp.Implementation{Name: "go_playlist", Version: "test"}, nil)
	RegisterTools(server, svc)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func callTool[T any](t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) (T, *mcp.CallToolResult) {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)

	var out T
	if !res.IsError {
		data, err := json.Marshal(res.StructuredContent)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, &out))
	}
	return out, res
}

func TestRegisterTools_List(t *testing.T) {
	cs := connect(t, newFixture(t).svc)

	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"playlist_expand", "playlist_supported", "playlist_harvest_log"}, names)
}

func TestRegisterTools_Expand(t *testing.T) {
	cs := connect(t, newFixture(t).svc)

	out, res := callTool[engine.PlaylistExpandOutput](t, cs, "playlist_expand", map[string]any{"url": ytLocator})
	require.False(t, res.IsError)
	assert.Equal(t, "Road Trip", out.Title)
	assert.Equal(t, 2, out.Count)
	assert.Len(t, out.URLs, 2)

	_, res = callTool[engine.PlaylistExpandOutput](t, cs, "playlist_expand", map[string]any{"url": "https://example.com/"})
	assert.True(t, res.IsError)
}

func TestRegisterTools_SupportedAndLog(t *testing.T) {
	cs := connect(t, newFixture(t).svc)

	sup, res := callTool[engine.PlaylistSupportedOutput](t, cs, "playlist_supported", map[string]any{"url": yaLocator})
	require.False(t, res.IsError)
	assert.True(t, sup.Supported)
	assert.Equal(t, "yandex_music", sup.Parser)

	_, res = callTool[engine.PlaylistExpandOutput](t, cs, "playlist_expand", map[string]any{"url": yaLocator})
	require.False(t, res.IsError)

	log, res := callTool[HarvestLogOutput](t, cs, "playlist_harvest_log", map[string]any{"limit": 5})
	require.False(t, res.IsError)
	require.Equal(t, 1, log.Total)
	assert.Equal(t, yaLocator, log.Entries[0].Locator)
}
