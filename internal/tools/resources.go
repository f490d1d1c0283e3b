package tools

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/gxravel/youtube-data-mcp/internal/fields"
)

const (
	statusURI          = "youtube://status"
	trendingURI        = "youtube://trending"
	categoriesURI      = "youtube://categories"
	recommendationsURI = "youtube://recommendations/{video_id}"

	recommendationsPrefix = "youtube://recommendations/"
	listingSize           = "10"
)

func (ts *toolset) resources() []Resource {
	return []Resource{
		{
			URI:         statusURI,
			Name:        "api_status",
			Description: "Whether the YouTube API key is configured.",
			Read:        ts.apiStatus,
		},
		{
			URI:         trendingURI,
			Name:        "trending_videos",
			Description: "The ten most popular videos right now.",
			Read:        ts.trendingVideos,
		},
		{
			URI:         categoriesURI,
			Name:        "video_categories",
			Description: "YouTube video categories for the US region.",
			Read:        ts.videoCategories,
		},
		{
			URI:         recommendationsURI,
			Template:    true,
			Name:        "video_recommendations",
			Description: "Videos related to the given video, or trending videos when no ID is given.",
			Read:        ts.recommendations,
		},
	}
}

func (ts *toolset) apiStatus(_ context.Context, _ string) Result {
	ts.logger.Debug("reading resource", "uri", statusURI)
	if !ts.yt.HasAPIKey() {
		return Fail("YouTube API key not configured. Please set the YOUTUBE_API_KEY environment variable.")
	}
	return OK("YouTube API is configured with an API key.")
}

func (ts *toolset) trendingVideos(ctx context.Context, _ string) Result {
	ts.logger.Debug("reading resource", "uri", trendingURI)

	params := url.Values{}
	params.Set("part", "snippet,statistics")
	params.Set("chart", "mostPopular")
	params.Set("maxResults", listingSize)

	data, err := ts.yt.Get(ctx, "videos", params)
	if err != nil {
		return failErr(err)
	}
	items := fields.Slice(data, "items")
	if len(items) == 0 {
		return Fail("Error fetching trending videos.")
	}

	lines := []string{"Current Trending Videos:"}
	for i, item := range items {
		lines = append(lines, fmt.Sprintf("%d. %s | %s | %s views",
			i+1,
			fields.Text(item, "Unknown", "snippet", "title"),
			fields.Text(item, "Unknown", "snippet", "channelTitle"),
			fields.Text(item, "Unknown", "statistics", "viewCount"),
		))
	}
	return OK(strings.Join(lines, "\n"))
}

func (ts *toolset) videoCategories(ctx context.Context, _ string) Result {
	ts.logger.Debug("reading resource", "uri", categoriesURI)

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("regionCode", "US")

	data, err := ts.yt.Get(ctx, "videoCategories", params)
	if err != nil {
		return failErr(err)
	}
	items := fields.Slice(data, "items")
	if len(items) == 0 {
		return Fail("Error fetching video categories.")
	}

	lines := []string{"YouTube Video Categories:"}
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("%s: %s",
			fields.Text(item, "Unknown", "id"),
			fields.Text(item, "Unknown", "snippet", "title"),
		))
	}
	return OK(strings.Join(lines, "\n"))
}

// recommendations serves youtube://recommendations/{video_id}. An empty ID
// falls back to the trending chart.
func (ts *toolset) recommendations(ctx context.Context, uri string) Result {
	videoID := strings.TrimPrefix(uri, recommendationsPrefix)
	if videoID == uri {
		videoID = ""
	}
	if unescaped, err := url.PathUnescape(videoID); err == nil {
		videoID = unescaped
	}
	ts.logger.Debug("reading resource", "uri", uri, "video_id", videoID)

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("maxResults", listingSize)

	endpoint, header := "videos", "Recommended trending videos:"
	if videoID != "" {
		endpoint, header = "search", fmt.Sprintf("Recommendations based on video %s:", videoID)
		params.Set("relatedToVideoId", videoID)
		params.Set("type", "video")
	} else {
		params.Set("chart", "mostPopular")
	}

	data, err := ts.yt.Get(ctx, endpoint, params)
	if err != nil {
		return failErr(err)
	}
	items := fields.Slice(data, "items")
	if len(items) == 0 {
		return Fail("Error fetching video recommendations.")
	}

	lines := []string{header}
	for i, item := range items {
		id := fields.Text(item, "Unknown", "id")
		if endpoint == "search" {
			id = fields.Text(item, "Unknown", "id", "videoId")
		}
		lines = append(lines, fmt.Sprintf("%d. %s | %s | ID: %s",
			i+1,
			fields.Text(item, "Unknown", "snippet", "title"),
			fields.Text(item, "Unknown", "snippet", "channelTitle"),
			id,
		))
	}
	return OK(strings.Join(lines, "\n"))
}
