package tools

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gxravel/youtube-data-mcp/internal/fields"
)

const commentsLimit = 100

type videoInput struct {
	VideoID string `json:"video_id" jsonschema:"The ID of the YouTube video"`
}

func videoDetailsTool(ts *toolset) (Tool, error) {
	return newTool(ts, Tool{
		Name:        "get_video_details",
		Title:       "Video details",
		Description: "Get detailed information about a YouTube video: channel, publish date, duration, statistics and description.",
		ReadOnly:    true,
	}, ts.videoDetails)
}

func (ts *toolset) videoDetails(ctx context.Context, in videoInput) Result {
	video, res, ok := ts.fetchVideo(ctx, in.VideoID, "snippet,statistics,contentDetails")
	if !ok {
		return res
	}

	snippet := fields.Map(video, "snippet")
	stats := fields.Map(video, "statistics")

	var b strings.Builder
	b.WriteString("\n")
	fmt.Fprintf(&b, "Video: %s\n", fields.Text(snippet, "Unknown", "title"))
	fmt.Fprintf(&b, "Channel: %s\n", fields.Text(snippet, "Unknown", "channelTitle"))
	fmt.Fprintf(&b, "Published: %s\n", fields.Text(snippet, "Unknown", "publishedAt"))
	fmt.Fprintf(&b, "Duration: %s\n", fields.Text(video, "Unknown", "contentDetails", "duration"))
	fmt.Fprintf(&b, "View Count: %s\n", fields.Text(stats, "Unknown", "viewCount"))
	fmt.Fprintf(&b, "Like Count: %s\n", fields.Text(stats, "Unknown", "likeCount"))
	fmt.Fprintf(&b, "Comment Count: %s\n", fields.Text(stats, "Unknown", "commentCount"))
	b.WriteString("\nDescription:\n")
	fmt.Fprintf(&b, "%s\n", fields.Text(snippet, "No description available", "description"))
	return OK(b.String())
}

// fetchVideo loads a single video with the given parts.
func (ts *toolset) fetchVideo(ctx context.Context, videoID, parts string) (map[string]any, Result, bool) {
	params := url.Values{}
	params.Set("part", parts)
	params.Set("id", videoID)

	data, err := ts.yt.Get(ctx, "videos", params)
	if err != nil {
		return nil, failErr(err), false
	}
	video := fields.Map(data, "items", 0)
	if len(video) == 0 {
		return nil, Fail("Video not found or error fetching video information."), false
	}
	return video, Result{}, true
}

type videoCommentsInput struct {
	VideoID    string `json:"video_id" jsonschema:"The ID of the YouTube video"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"Maximum number of comments to return (default 10, max 100)"`
}

func (in *videoCommentsInput) setDefaults() { in.MaxResults = 10 }

func videoCommentsTool(ts *toolset) (Tool, error) {
	return newTool(ts, Tool{
		Name:        "get_video_comments",
		Title:       "Video comments",
		Description: "Get top-level comment threads for a YouTube video.",
		ReadOnly:    true,
	}, ts.videoComments)
}

func (ts *toolset) videoComments(ctx context.Context, in videoCommentsInput) Result {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("videoId", in.VideoID)
	params.Set("maxResults", strconv.Itoa(clamp(in.MaxResults, commentsLimit)))
	params.Set("textFormat", "plainText")

	data, err := ts.yt.Get(ctx, "commentThreads", params)
	if err != nil {
		return failErr(err)
	}
	items := fields.Slice(data, "items")
	if len(items) == 0 {
		return Fail("No comments found or error fetching comments.")
	}

	lines := []string{fmt.Sprintf("Comments for video %s:\n", in.VideoID)}
	for i, item := range items {
		comment := fields.Map(item, "snippet", "topLevelComment", "snippet")

		replies := ""
		if n := fields.Int(item, 0, "snippet", "totalReplyCount"); n > 0 {
			replies = fmt.Sprintf(" [%d replies]", n)
		}

		lines = append(lines, fmt.Sprintf(
			"%d. %s - %s%s\n   Likes: %s\n   %s\n",
			i+1,
			fields.Text(comment, "Anonymous", "authorDisplayName"),
			fields.Text(comment, "Unknown", "publishedAt"),
			replies,
			fields.Text(comment, "0", "likeCount"),
			fields.Text(comment, "[No comment text]", "textDisplay"),
		))
	}
	if token, ok := nextPageToken(data); ok {
		lines = append(lines, "\nNext page token: "+token)
	}
	return OK(strings.Join(lines, "\n"))
}

func nextPageToken(data map[string]any) (string, bool) {
	if !fields.Has(data, "nextPageToken") {
		return "", false
	}
	return fields.Text(data, "", "nextPageToken"), true
}
