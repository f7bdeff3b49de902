package playlistserver

import (
	"context"

	"github.com/anatolykoptev/go_playlist/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterTools registers the playlist tools on the given MCP server:
// playlist_expand, playlist_supported, playlist_harvest_log.
func RegisterTools(server *mcp.Server, svc *Service) {
	registerPlaylistExpand(server, svc)
	registerPlaylistSupported(server, svc)
	registerHarvestLog(server, svc)
}

func registerPlaylistExpand(server *mcp.Server, svc *Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "playlist_expand",
		Description: "Expand a playlist or album URL into the URLs of its individual media items. YouTube playlists are paged through completely and return canonical watch URLs in playlist order with duplicates removed. Yandex Music URLs are returned with an access token attached. Results are cached; set no_cache to harvest again.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true, OpenWorldHint: ptr(true)},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.PlaylistExpandInput) (*mcp.CallToolResult, engine.PlaylistExpandOutput, error) {
		out, err := svc.Expand(ctx, input)
		if err != nil {
			return nil, engine.PlaylistExpandOutput{}, err
		}
		return nil, out, nil
	})
}

func registerPlaylistSupported(server *mcp.Server, svc *Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "playlist_supported",
		Description: "Check whether a URL can be expanded and which parser would handle it. Does not touch the network. Also lists every registered parser.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(_ context.Context, _ *mcp.CallToolRequest, input engine.PlaylistSupportedInput) (*mcp.CallToolResult, engine.PlaylistSupportedOutput, error) {
		return nil, svc.Supported(input), nil
	})
}

func registerHarvestLog(server *mcp.Server, svc *Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "playlist_harvest_log",
		Description: "List recent playlist_expand runs, newest first: locator, parser, item count, status (ok, empty, unsupported, error) and duration.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.HarvestLogInput) (*mcp.CallToolResult, HarvestLogOutput, error) {
		out, err := svc.HarvestLog(ctx, input)
		if err != nil {
			return nil, HarvestLogOutput{}, err
		}
		return nil, out, nil
	})
}

func ptr[T any](v T) *T { return &v }
