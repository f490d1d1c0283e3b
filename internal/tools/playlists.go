package tools

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gxravel/youtube-data-mcp/internal/fields"
)

const playlistLimit = 50

type playlistDetailsInput struct {
	PlaylistID string `json:"playlist_id" jsonschema:"The ID of the YouTube playlist"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"Maximum number of playlist items to return (default 10, max 50)"`
}

func (in *playlistDetailsInput) setDefaults() { in.MaxResults = 10 }

func playlistDetailsTool(ts *toolset) (Tool, error) {
	return newTool(ts, Tool{
		Name:        "get_playlist_details",
		Title:       "Playlist details",
		Description: "Get information about a YouTube playlist and the videos it contains.",
		ReadOnly:    true,
	}, ts.playlistDetails)
}

func (ts *toolset) playlistDetails(ctx context.Context, in playlistDetailsInput) Result {
	params := url.Values{}
	params.Set("part", "snippet,contentDetails")
	params.Set("id", in.PlaylistID)

	data, err := ts.yt.Get(ctx, "playlists", params)
	if err != nil {
		return failErr(err)
	}
	playlist := fields.Map(data, "items", 0)
	if len(playlist) == 0 {
		return Fail("Playlist not found or error fetching playlist information.")
	}

	params = url.Values{}
	params.Set("part", "snippet")
	params.Set("playlistId", in.PlaylistID)
	params.Set("maxResults", strconv.Itoa(clamp(in.MaxResults, playlistLimit)))

	itemsData, err := ts.yt.Get(ctx, "playlistItems", params)
	if err != nil {
		return failErr(err)
	}

	snippet := fields.Map(playlist, "snippet")
	header := fmt.Sprintf("Playlist: %s\nChannel: %s\nDescription: %s\nVideo Count: %s\n",
		fields.Text(snippet, "Unknown", "title"),
		fields.Text(snippet, "Unknown", "channelTitle"),
		fields.Text(snippet, "No description available", "description"),
		fields.Text(playlist, "Unknown", "contentDetails", "itemCount"),
	)

	if !fields.Has(itemsData, "items") {
		return OK(header + "\nPlaylist found but no videos could be retrieved.")
	}

	items := fields.Slice(itemsData, "items")
	entries := make([]string, 0, len(items))
	for i, item := range items {
		s := fields.Map(item, "snippet")
		position := fields.Int(s, int64(i), "position") + 1
		entries = append(entries, fmt.Sprintf(
			"%d. %s\n   Channel: %s\n   Video ID: %s\n",
			position,
			fields.Text(s, "Unknown", "title"),
			fields.Text(s, "Unknown", "videoOwnerChannelTitle"),
			fields.Text(s, "Unknown", "resourceId", "videoId"),
		))
	}
	return OK(header + "\nVideos:\n" + strings.Join(entries, "\n"))
}
