package tools

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gxravel/youtube-data-mcp/internal/youtube"
)

func readResource(t *testing.T, reg *Registry, pattern, uri string) Result {
	t.Helper()
	for _, r := range reg.Resources() {
		if r.URI == pattern {
			return r.Read(context.Background(), uri)
		}
	}
	t.Fatalf("resource %s not registered", pattern)
	return Result{}
}

func TestStatusResource(t *testing.T) {
	reg := newTestRegistry(t, newTestDeps(t, jsonHandler(`{}`)))
	res := readResource(t, reg, statusURI, statusURI)
	assert.Equal(t, "YouTube API is configured with an API key.", res.Text)

	deps := newTestDeps(t, jsonHandler(`{}`))
	deps.Client = youtube.NewClient(youtube.Options{})
	reg = newTestRegistry(t, deps)
	res = readResource(t, reg, statusURI, statusURI)
	assert.Equal(t, "YouTube API key not configured. Please set the YOUTUBE_API_KEY environment variable.", res.Error)
}

func TestTrendingResource(t *testing.T) {
	deps := newTestDeps(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/videos", r.URL.Path)
		assert.Equal(t, "mostPopular", r.URL.Query().Get("chart"))
		assert.Equal(t, "10", r.URL.Query().Get("maxResults"))
		_, _ = io.WriteString(w, `{"items": [
			{"snippet": {"title": "Hit", "channelTitle": "Star"}, "statistics": {"viewCount": "5000000"}},
			{"snippet": {"title": "Quiet"}}
		]}`)
	})
	reg := newTestRegistry(t, deps)

	res := readResource(t, reg, trendingURI, trendingURI)
	require.False(t, res.IsError(), res.Error)
	assert.Equal(t, "Current Trending Videos:\n1. Hit | Star | 5000000 views\n2. Quiet | Unknown | Unknown views", res.Text)
}

func TestTrendingResourceEmpty(t *testing.T) {
	reg := newTestRegistry(t, newTestDeps(t, jsonHandler(`{"items": []}`)))
	res := readResource(t, reg, trendingURI, trendingURI)
	assert.Equal(t, "Error fetching trending videos.", res.Error)
}

func TestCategoriesResource(t *testing.T) {
	deps := newTestDeps(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/videoCategories", r.URL.Path)
		assert.Equal(t, "US", r.URL.Query().Get("regionCode"))
		_, _ = io.WriteString(w, `{"items": [{"id": "10", "snippet": {"title": "Music"}}, {"id": "28", "snippet": {"title": "Science & Technology"}}]}`)
	})
	reg := newTestRegistry(t, deps)

	res := readResource(t, reg, categoriesURI, categoriesURI)
	assert.Equal(t, "YouTube Video Categories:\n10: Music\n28: Science & Technology", res.Text)
}

func TestRecommendationsResource(t *testing.T) {
	deps := newTestDeps(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch r.URL.Path {
		case "/search":
			assert.Equal(t, "abc", q.Get("relatedToVideoId"))
			assert.Equal(t, "video", q.Get("type"))
			_, _ = io.WriteString(w, `{"items": [{"id": {"videoId": "r1"}, "snippet": {"title": "Related", "channelTitle": "Chan"}}]}`)
		case "/videos":
			assert.Equal(t, "mostPopular", q.Get("chart"))
			_, _ = io.WriteString(w, `{"items": [{"id": "t1", "snippet": {"title": "Trending", "channelTitle": "Big"}}]}`)
		}
	})
	reg := newTestRegistry(t, deps)

	res := readResource(t, reg, recommendationsURI, "youtube://recommendations/abc")
	assert.Equal(t, "Recommendations based on video abc:\n1. Related | Chan | ID: r1", res.Text)

	res = readResource(t, reg, recommendationsURI, "youtube://recommendations/")
	assert.Equal(t, "Recommended trending videos:\n1. Trending | Big | ID: t1", res.Text)
}

func TestRecommendationsResourceError(t *testing.T) {
	deps := newTestDeps(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error": {"message": "Invalid video id"}}`)
	})
	reg := newTestRegistry(t, deps)

	res := readResource(t, reg, recommendationsURI, "youtube://recommendations/zzz")
	assert.Equal(t, "Invalid video id", res.Error)
}
