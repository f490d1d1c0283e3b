package tools

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gxravel/youtube-data-mcp/internal/fields"
)

const (
	videosLimit        = 50
	subscriptionsLimit = 50
)

type channelInfoInput struct {
	ChannelInput string `json:"channel_input" jsonschema:"Channel ID (UC...), handle (@name) or legacy username"`
}

func channelInfoTool(ts *toolset) (Tool, error) {
	return newTool(ts, Tool{
		Name:        "get_channel_info",
		Title:       "Channel info",
		Description: "Get information about a YouTube channel by ID or handle.",
		ReadOnly:    true,
	}, ts.channelInfo)
}

func (ts *toolset) channelInfo(ctx context.Context, in channelInfoInput) Result {
	channelID, res, ok := ts.resolve(ctx, in.ChannelInput)
	if !ok {
		return res
	}

	params := url.Values{}
	params.Set("part", "snippet,statistics,contentDetails")
	params.Set("id", channelID)

	data, err := ts.yt.Get(ctx, "channels", params)
	if err != nil {
		return Failf("API error: %v", err)
	}
	channel := fields.Map(data, "items", 0)
	if len(channel) == 0 {
		return Failf("Channel not found for ID: %s", channelID)
	}

	snippet := fields.Map(channel, "snippet")
	stats := fields.Map(channel, "statistics")

	var b strings.Builder
	b.WriteString("\n")
	fmt.Fprintf(&b, "Channel: %s\n", fields.Text(snippet, "Unknown", "title"))
	fmt.Fprintf(&b, "Description: %s\n", fields.Text(snippet, "No description available", "description"))
	fmt.Fprintf(&b, "Published: %s\n", fields.Text(snippet, "Unknown", "publishedAt"))
	fmt.Fprintf(&b, "Subscriber Count: %s\n", fields.Text(stats, "Unknown", "subscriberCount"))
	fmt.Fprintf(&b, "Video Count: %s\n", fields.Text(stats, "Unknown", "videoCount"))
	fmt.Fprintf(&b, "View Count: %s\n", fields.Text(stats, "Unknown", "viewCount"))
	return OK(b.String())
}

type lookupChannelInput struct {
	Handle string `json:"handle" jsonschema:"Channel handle with or without the leading @, a username or a channel ID"`
}

func lookupChannelTool(ts *toolset) (Tool, error) {
	return newTool(ts, Tool{
		Name:        "lookup_channel",
		Title:       "Look up channel",
		Description: "Resolve a channel handle or username to its channel ID and basic details.",
		ReadOnly:    true,
	}, ts.lookupChannel)
}

func (ts *toolset) lookupChannel(ctx context.Context, in lookupChannelInput) Result {
	channelID, ok := ts.yt.ResolveChannel(ctx, in.Handle)
	if !ok {
		return Failf("Could not resolve handle: %s. Try a different identifier.", in.Handle)
	}

	params := url.Values{}
	params.Set("part", "snippet,statistics")
	params.Set("id", channelID)

	data, err := ts.yt.Get(ctx, "channels", params)
	if err != nil {
		return failErr(err)
	}
	channel := fields.Map(data, "items", 0)
	if len(channel) == 0 {
		return Fail("Channel found but no details available.")
	}

	snippet := fields.Map(channel, "snippet")
	stats := fields.Map(channel, "statistics")

	var b strings.Builder
	fmt.Fprintf(&b, "\nChannel Information for \"%s\":\n\n", in.Handle)
	fmt.Fprintf(&b, "Channel ID: %s\n", channelID)
	fmt.Fprintf(&b, "Title: %s\n", fields.Text(snippet, "Unknown", "title"))
	fmt.Fprintf(&b, "Custom URL: %s\n", fields.Text(snippet, "None", "customUrl"))
	fmt.Fprintf(&b, "Description: %s\n", clip(fields.String(snippet, "", "description"), descriptionLimit))
	fmt.Fprintf(&b, "Published: %s\n", fields.Text(snippet, "Unknown", "publishedAt"))
	fmt.Fprintf(&b, "Country: %s\n\n", fields.Text(snippet, "Unknown", "country"))
	fmt.Fprintf(&b, "Subscriber Count: %s\n", fields.Text(stats, "Hidden", "subscriberCount"))
	fmt.Fprintf(&b, "Video Count: %s\n", fields.Text(stats, "Unknown", "videoCount"))
	fmt.Fprintf(&b, "View Count: %s\n\n", fields.Text(stats, "Unknown", "viewCount"))
	fmt.Fprintf(&b, "Thumbnail URL: %s\n", fields.Text(snippet, "None", "thumbnails", "high", "url"))
	return OK(b.String())
}

// clip keeps the first n runes of text and marks the cut with "...".
func clip(text string, n int) string {
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	return string(r[:n]) + "..."
}

type channelVideosInput struct {
	ChannelID  string `json:"channel_id" jsonschema:"Channel ID, handle or username"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"Maximum number of videos to return (default 10, max 50)"`
}

func (in *channelVideosInput) setDefaults() { in.MaxResults = 10 }

func channelVideosTool(ts *toolset) (Tool, error) {
	return newTool(ts, Tool{
		Name:        "list_channel_videos",
		Title:       "List channel videos",
		Description: "List the most recent uploads of a YouTube channel.",
		ReadOnly:    true,
	}, ts.channelVideos)
}

func (ts *toolset) channelVideos(ctx context.Context, in channelVideosInput) Result {
	channelID, res, ok := ts.resolve(ctx, in.ChannelID)
	if !ok {
		return res
	}

	params := url.Values{}
	params.Set("part", "contentDetails")
	params.Set("id", channelID)

	data, err := ts.yt.Get(ctx, "channels", params)
	if err != nil {
		return failErr(err)
	}
	channel := fields.Map(data, "items", 0)
	if len(channel) == 0 {
		return Fail("Channel not found or error fetching channel information.")
	}

	uploads := fields.String(channel, "", "contentDetails", "relatedPlaylists", "uploads")
	if uploads == "" {
		return Fail("Could not find uploads playlist for this channel.")
	}

	params = url.Values{}
	params.Set("part", "snippet")
	params.Set("playlistId", uploads)
	params.Set("maxResults", strconv.Itoa(clamp(in.MaxResults, videosLimit)))

	data, err = ts.yt.Get(ctx, "playlistItems", params)
	if err != nil {
		return failErr(err)
	}
	items := fields.Slice(data, "items")
	if len(items) == 0 {
		return Fail("No videos found or error fetching videos.")
	}

	entries := make([]string, 0, len(items))
	for i, item := range items {
		snippet := fields.Map(item, "snippet")
		entries = append(entries, fmt.Sprintf(
			"%d. %s\n   Published: %s\n   Video ID: %s\n   Description: %s\n",
			i+1,
			fields.Text(snippet, "Unknown", "title"),
			fields.Text(snippet, "Unknown", "publishedAt"),
			fields.Text(snippet, "Unknown", "resourceId", "videoId"),
			fields.Truncate(fields.Text(snippet, "No description available", "description"), descriptionLimit),
		))
	}
	return OK(strings.Join(entries, "\n"))
}

type channelSubscriptionsInput struct {
	ChannelID  string `json:"channel_id" jsonschema:"Channel ID, handle or username"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"Maximum number of subscriptions to return (default 10, max 50)"`
}

func (in *channelSubscriptionsInput) setDefaults() { in.MaxResults = 10 }

func channelSubscriptionsTool(ts *toolset) (Tool, error) {
	return newTool(ts, Tool{
		Name:        "get_channel_subscriptions",
		Title:       "Channel subscriptions",
		Description: "List the channels a YouTube channel subscribes to. Works only for channels with public subscriptions or the authorised user's channel.",
		ReadOnly:    true,
	}, ts.channelSubscriptions)
}

func (ts *toolset) channelSubscriptions(ctx context.Context, in channelSubscriptionsInput) Result {
	channelID, res, ok := ts.resolve(ctx, in.ChannelID)
	if !ok {
		return res
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("channelId", channelID)
	params.Set("maxResults", strconv.Itoa(clamp(in.MaxResults, subscriptionsLimit)))
	params.Set("order", "alphabetical")

	data, err := ts.yt.Get(ctx, "subscriptions", params)
	if err != nil {
		return Failf("API Error: %v\n\nNote: This function requires OAuth authentication and only works with the authenticated user's channel.", err)
	}
	items := fields.Slice(data, "items")
	if len(items) == 0 {
		return Fail("No subscriptions found or this channel's subscriptions are private.")
	}

	lines := []string{fmt.Sprintf("Subscriptions for channel %s:", in.ChannelID)}
	for i, item := range items {
		snippet := fields.Map(item, "snippet")
		lines = append(lines, fmt.Sprintf(
			"%d. %s (ID: %s)\n   %s",
			i+1,
			fields.Text(snippet, "Unknown", "title"),
			fields.Text(snippet, "Unknown", "resourceId", "channelId"),
			fields.Truncate(fields.Text(snippet, "No description", "description"), descriptionLimit),
		))
	}
	return OK(strings.Join(lines, "\n"))
}
