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
	searchLimit      = 50
	descriptionLimit = 100
)

type searchVideosInput struct {
	Query      string `json:"query" jsonschema:"Search query string"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"Maximum number of results to return (default 10, max 50)"`
}

func (in *searchVideosInput) setDefaults() { in.MaxResults = 10 }

func searchVideosTool(ts *toolset) (Tool, error) {
	return newTool(ts, Tool{
		Name:        "search_videos",
		Title:       "Search videos",
		Description: "Search for YouTube videos matching a query.",
		ReadOnly:    true,
	}, ts.searchVideos)
}

func (ts *toolset) searchVideos(ctx context.Context, in searchVideosInput) Result {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", in.Query)
	params.Set("maxResults", strconv.Itoa(clamp(in.MaxResults, searchLimit)))
	params.Set("type", "video")

	data, err := ts.yt.Get(ctx, "search", params)
	if err != nil {
		return failErr(err)
	}
	items := fields.Slice(data, "items")
	if len(items) == 0 {
		return Fail("No videos found or error fetching search results.")
	}

	entries := make([]string, 0, len(items))
	for i, item := range items {
		snippet := fields.Map(item, "snippet")
		entries = append(entries, fmt.Sprintf(
			"%d. %s\n   Channel: %s\n   Published: %s\n   Video ID: %s\n   Description: %s\n",
			i+1,
			fields.Text(snippet, "Unknown", "title"),
			fields.Text(snippet, "Unknown", "channelTitle"),
			fields.Text(snippet, "Unknown", "publishedAt"),
			fields.Text(item, "Unknown", "id", "videoId"),
			fields.Truncate(fields.Text(snippet, "No description available", "description"), descriptionLimit),
		))
	}
	return OK(strings.Join(entries, "\n"))
}

type topicSearchInput struct {
	TopicID    string `json:"topic_id" jsonschema:"Freebase topic ID, either the bare ID or a full topic URL"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"Maximum number of results to return (default 10, max 50)"`
}

func (in *topicSearchInput) setDefaults() { in.MaxResults = 10 }

func topicSearchTool(ts *toolset) (Tool, error) {
	return newTool(ts, Tool{
		Name:        "search_by_topic",
		Title:       "Search by topic",
		Description: "Search for YouTube videos related to a Freebase topic.",
		ReadOnly:    true,
	}, ts.searchByTopic)
}

// normalizeTopic keeps the last path segment of a topic URL and ensures the
// leading slash the API expects.
func normalizeTopic(topic string) string {
	if strings.HasPrefix(topic, "http") {
		topic = topic[strings.LastIndex(topic, "/")+1:]
	}
	if !strings.HasPrefix(topic, "/") {
		topic = "/" + topic
	}
	return topic
}

func (ts *toolset) searchByTopic(ctx context.Context, in topicSearchInput) Result {
	topic := normalizeTopic(in.TopicID)

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("topicId", topic)
	params.Set("maxResults", strconv.Itoa(clamp(in.MaxResults, searchLimit)))
	params.Set("type", "video")

	data, err := ts.yt.Get(ctx, "search", params)
	if err != nil {
		return failErr(err)
	}
	items := fields.Slice(data, "items")
	if len(items) == 0 {
		return Failf("No videos found for topic %s or error fetching results.", topic)
	}

	lines := []string{fmt.Sprintf("Videos related to topic %s:", topic)}
	for i, item := range items {
		snippet := fields.Map(item, "snippet")
		lines = append(lines, fmt.Sprintf(
			"%d. %s\n   Channel: %s\n   Video ID: %s\n   Description: %s\n",
			i+1,
			fields.Text(snippet, "Unknown", "title"),
			fields.Text(snippet, "Unknown", "channelTitle"),
			fields.Text(item, "Unknown", "id", "videoId"),
			fields.Truncate(fields.Text(snippet, "No description available", "description"), descriptionLimit),
		))
	}
	return OK(strings.Join(lines, "\n"))
}
