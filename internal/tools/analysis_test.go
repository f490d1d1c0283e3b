package tools

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const performanceVideo = `{"items": [{
	"snippet": {"title": "Concurrency", "channelTitle": "Gophers", "publishedAt": "%s"},
	"statistics": {"viewCount": "1000", "likeCount": "100", "commentCount": "10"}
}]}`

func videoWithPublished(published string) string {
	return strings.Replace(performanceVideo, "%s", published, 1)
}

func TestVideoPerformanceValidation(t *testing.T) {
	calls := 0
	deps := newTestDeps(t, func(http.ResponseWriter, *http.Request) { calls++ })
	reg := newTestRegistry(t, deps)

	res := call(t, reg, "analyze_video_performance", map[string]any{"video_id": "v1", "time_period": 0})
	assert.Equal(t, "Time period must be a positive integer.", res.Error)

	res = call(t, reg, "analyze_video_performance", map[string]any{"video_id": "v1", "unit": "weeks"})
	assert.Equal(t, "Unit must be either 'days' or 'hours'.", res.Error)
	assert.Zero(t, calls)
}

func TestVideoPerformanceDays(t *testing.T) {
	reg := newTestRegistry(t, newTestDeps(t, jsonHandler(videoWithPublished("2024-06-05T12:00:00Z"))))

	res := call(t, reg, "analyze_video_performance", map[string]any{"video_id": "v1"})
	require.False(t, res.IsError(), res.Error)

	text := res.Text
	assert.True(t, strings.HasPrefix(text, "Performance Analysis for 'Concurrency' by Gophers\n\nCurrent Statistics:\nViews: 1,000\nLikes: 100\nComments: 10\nEngagement Rate: 11.00%\n\n"))
	assert.Contains(t, text, "Growth over the past 7 days:\n")
	assert.Contains(t, text, "Days Breakdown:\n2024-06-08: ")
	assert.Contains(t, text, "2024-06-15: 1,000 views, 100 likes, 10 comments\n")
	assert.True(t, strings.HasSuffix(text, simulatedNote))

	breakdown := text[strings.Index(text, "Days Breakdown:\n"):strings.Index(text, simulatedNote)]
	assert.Len(t, strings.Split(strings.TrimSpace(breakdown), "\n"), 9, "header plus 7 estimates plus today")
}

func TestVideoPerformanceLimitedByAge(t *testing.T) {
	reg := newTestRegistry(t, newTestDeps(t, jsonHandler(videoWithPublished("2024-06-12T12:00:00Z"))))

	res := call(t, reg, "analyze_video_performance", map[string]any{"video_id": "v1", "time_period": 30})
	require.False(t, res.IsError(), res.Error)
	assert.Contains(t, res.Text, "Growth over the past 3 days:\n")
}

func TestVideoPerformanceHours(t *testing.T) {
	reg := newTestRegistry(t, newTestDeps(t, jsonHandler(videoWithPublished("2024-06-05T12:00:00Z"))))

	res := call(t, reg, "analyze_video_performance", map[string]any{"video_id": "v1", "time_period": 2, "unit": "hours"})
	require.False(t, res.IsError(), res.Error)
	assert.Contains(t, res.Text, "Growth over the past 2 hours:\n")
	assert.Contains(t, res.Text, "Hours Breakdown:\n2024-06-15 10:00: ")
	assert.Contains(t, res.Text, "2024-06-15 12:00: 1,000 views")
}

func TestVideoPerformanceTooNew(t *testing.T) {
	reg := newTestRegistry(t, newTestDeps(t, jsonHandler(videoWithPublished("2024-06-15T11:30:00Z"))))

	res := call(t, reg, "analyze_video_performance", map[string]any{"video_id": "v1"})
	require.False(t, res.IsError(), res.Error)
	assert.Equal(t, "Video 'Concurrency' by Gophers is too new for historical analysis.\n\nCurrent Statistics:\nViews: 1,000\nLikes: 100\nComments: 10\n", res.Text)
}

func TestThumbnailAnalysis(t *testing.T) {
	deps := newTestDeps(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case r.URL.Path == "/videos" && q.Get("id") == "v1":
			_, _ = io.WriteString(w, `{"items": [{
				"snippet": {"title": "Go channels explained", "channelId": "UCme", "channelTitle": "Me", "categoryId": "28",
					"publishedAt": "2024-06-05T12:00:00Z", "tags": ["golang", "channels"],
					"thumbnails": {"high": {"url": "https://img/high.jpg"}}},
				"statistics": {"viewCount": "1000", "likeCount": "50", "commentCount": "5"},
				"contentDetails": {"duration": "PT8M"}
			}]}`)
		case r.URL.Path == "/channels":
			_, _ = io.WriteString(w, `{"items": [{"statistics": {"subscriberCount": "500"}}]}`)
		case r.URL.Path == "/search":
			assert.Equal(t, "28", q.Get("videoCategoryId"))
			assert.Equal(t, "viewCount", q.Get("order"))
			assert.Equal(t, "10", q.Get("maxResults"))
			_, _ = io.WriteString(w, `{"items": [
				{"id": {"videoId": "v1"}, "snippet": {"channelId": "UCme"}},
				{"id": {"videoId": "c1"}, "snippet": {"channelId": "UCme"}},
				{"id": {"videoId": "c2"}, "snippet": {"channelId": "UCother"}},
				{"id": {"videoId": "c3"}, "snippet": {"channelId": "UCthird"}}
			]}`)
		case r.URL.Path == "/videos":
			assert.Equal(t, "c2,c3", q.Get("id"))
			_, _ = io.WriteString(w, `{"items": [
				{"id": "c3", "snippet": {"title": "Slow", "channelTitle": "Third", "publishedAt": "2024-05-16T12:00:00Z"},
				 "statistics": {"viewCount": "3000", "likeCount": "30"}, "contentDetails": {"definition": "sd"}},
				{"id": "c2", "snippet": {"title": "Fast", "channelTitle": "Other", "publishedAt": "2024-06-13T12:00:00Z",
				 "thumbnails": {"maxres": {"url": "https://img/max.jpg"}}},
				 "statistics": {"viewCount": "4000", "likeCount": "400"}, "contentDetails": {"definition": "hd"}}
			]}`)
		default:
			t.Errorf("unexpected request %s", r.URL)
		}
	})
	reg := newTestRegistry(t, deps)

	res := call(t, reg, "analyze_thumbnail_effectiveness", map[string]any{"video_id": "v1"})
	require.False(t, res.IsError(), res.Error)

	text := res.Text
	assert.Contains(t, text, "Thumbnail Effectiveness Analysis for 'Go channels explained' by Me\n\nYOUR VIDEO:\n")
	assert.Contains(t, text, "Thumbnail URL: https://img/high.jpg\n")
	assert.Contains(t, text, "Days Online: 10\nViews Per Day: 100.0\n")
	assert.Contains(t, text, "Channel Subscribers: 500\n")
	assert.Contains(t, text, "Engagement Rate: 5.00%\n\n")
	assert.Contains(t, text, "TOP 2 COMPARISON VIDEOS (by Views/Day):\n1. \"Fast\" by Other\n")
	assert.Contains(t, text, "   Definition: HD\n   Thumbnail URL: https://img/max.jpg\n")
	assert.Contains(t, text, "   Views Per Day: 2,000.0\n")
	assert.Contains(t, text, "2. \"Slow\" by Third\n")
	assert.Contains(t, text, "- Your thumbnail may be underperforming compared to similar videos.\n  Your views/day: 100.0 vs. Average: 1050.0\n")
	assert.Less(t, strings.Index(text, "\"Fast\""), strings.Index(text, "\"Slow\""))
}

func TestThumbnailAnalysisNoComparisons(t *testing.T) {
	deps := newTestDeps(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/videos":
			_, _ = io.WriteString(w, `{"items": [{"snippet": {"title": "Solo", "channelId": "UCme"}}]}`)
		case "/search":
			_, _ = io.WriteString(w, `{"items": [{"id": {"videoId": "x"}, "snippet": {"channelId": "UCme"}}]}`)
		default:
			_, _ = io.WriteString(w, `{}`)
		}
	})
	reg := newTestRegistry(t, deps)

	res := call(t, reg, "analyze_thumbnail_effectiveness", map[string]any{"video_id": "v1"})
	assert.Equal(t, "Could not find suitable comparison videos.", res.Error)
}

func TestThumbnailURL(t *testing.T) {
	assert.Equal(t, "m", thumbnailURL(map[string]any{"thumbnails": map[string]any{"maxres": map[string]any{"url": "m"}, "high": map[string]any{"url": "h"}}}))
	assert.Equal(t, "d", thumbnailURL(map[string]any{"thumbnails": map[string]any{"default": map[string]any{"url": "d"}}}))
	assert.Equal(t, "None", thumbnailURL(map[string]any{}))
}

const captionTracks = `{"items": [
	{"id": "cap1", "snippet": {"language": "en", "name": "English", "trackType": "standard"}},
	{"id": "cap2", "snippet": {"language": "es", "name": "", "trackType": "ASR"}}
]}`

const sampleSRT = "1\n00:00:01,000 --> 00:00:02,000\nHello there\n\n2\n00:00:03,000 --> 00:00:04,000\nGeneral Kenobi\n"

func captionServer(t *testing.T, download http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/captions":
			assert.Equal(t, "v1", r.URL.Query().Get("videoId"))
			_, _ = io.WriteString(w, captionTracks)
		case "/youtube/v3/captions/cap1":
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			download(w, r)
		default:
			t.Errorf("unexpected request %s", r.URL)
		}
	}
}

func TestCaptionsListTracks(t *testing.T) {
	reg := newTestRegistry(t, newTestDeps(t, captionServer(t, nil)))

	res := call(t, reg, "get_captions", map[string]any{"video_id": "v1"})
	require.False(t, res.IsError(), res.Error)
	assert.Equal(t, "Available caption tracks for video v1:\nen (English) - ID: cap1\nes (auto-generated) - ID: cap2", res.Text)
}

func TestCaptionsDownload(t *testing.T) {
	var gotFormat string
	deps := newTestDeps(t, captionServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotFormat = r.URL.Query().Get("tfmt")
		_, _ = io.WriteString(w, sampleSRT)
	}))
	deps.Tokens = fakeTokens{token: "tok"}
	reg := newTestRegistry(t, deps)

	res := call(t, reg, "get_captions", map[string]any{"video_id": "v1", "language_code": "en"})
	require.False(t, res.IsError(), res.Error)
	assert.Empty(t, gotFormat)
	assert.Equal(t, "Captions for video v1 in en:\n\nHello there\nGeneral Kenobi", res.Text)

	res = call(t, reg, "get_captions", map[string]any{"video_id": "v1", "language_code": "en", "format_type": "SRT"})
	require.False(t, res.IsError(), res.Error)
	assert.Equal(t, "srt", gotFormat)
	assert.Equal(t, "Captions for video v1 in en:\n\n"+sampleSRT, res.Text)
}

func TestCaptionsErrors(t *testing.T) {
	t.Run("unknown language", func(t *testing.T) {
		reg := newTestRegistry(t, newTestDeps(t, captionServer(t, nil)))
		res := call(t, reg, "get_captions", map[string]any{"video_id": "v1", "language_code": "fr"})
		assert.Equal(t, "No caption track found for language 'fr'", res.Error)
	})

	t.Run("no token", func(t *testing.T) {
		reg := newTestRegistry(t, newTestDeps(t, captionServer(t, nil)))
		res := call(t, reg, "get_captions", map[string]any{"video_id": "v1", "language_code": "en"})
		assert.Equal(t, captionTokenRequired, res.Error)
	})

	t.Run("forbidden", func(t *testing.T) {
		deps := newTestDeps(t, captionServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		deps.Tokens = fakeTokens{token: "tok"}
		reg := newTestRegistry(t, deps)
		res := call(t, reg, "get_captions", map[string]any{"video_id": "v1", "language_code": "en"})
		assert.Equal(t, "Access denied. You may not have permission to access this caption track.", res.Error)
	})

	t.Run("no tracks", func(t *testing.T) {
		reg := newTestRegistry(t, newTestDeps(t, jsonHandler(`{"items": []}`)))
		res := call(t, reg, "get_captions", map[string]any{"video_id": "v1"})
		assert.Equal(t, "No captions found for this video.", res.Error)
	})
}

func TestAnalyzeCaptions(t *testing.T) {
	deps := newTestDeps(t, captionServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "srt", r.URL.Query().Get("tfmt"))
		_, _ = io.WriteString(w, sampleSRT)
	}))
	deps.Tokens = fakeTokens{token: "tok"}
	reg := newTestRegistry(t, deps)

	res := call(t, reg, "analyze_captions", map[string]any{"video_id": "v1"})
	require.False(t, res.IsError(), res.Error)
	assert.True(t, strings.HasPrefix(res.Text, "Caption Analysis (Keywords) for video v1:\n\nLanguage: en\nDuration: 0 minutes 4 seconds\nTotal Words: 4\n"))
	assert.Contains(t, res.Text, "Top Keywords:\n")

	res = call(t, reg, "analyze_captions", map[string]any{"video_id": "v1", "analysis_type": "timeline"})
	require.False(t, res.IsError(), res.Error)
	assert.True(t, strings.HasPrefix(res.Text, "Caption Timeline for video v1:\n\nLanguage: en\nTotal Duration: 0 minutes 4 seconds\n\n00:00 - 00:04: "))

	res = call(t, reg, "analyze_captions", map[string]any{"video_id": "v1", "analysis_type": "phrases"})
	require.False(t, res.IsError(), res.Error)
	assert.Contains(t, res.Text, "Frequent 2-Word Phrases:\n")
	assert.Contains(t, res.Text, "\nFrequent 4-Word Phrases:\n")

	res = call(t, reg, "analyze_captions", map[string]any{"video_id": "v1", "analysis_type": "sentiment"})
	assert.Equal(t, "Unknown analysis type: sentiment. Use 'keywords', 'timeline', or 'phrases'.", res.Error)
}

func TestAnalyzeCaptionsUnparseable(t *testing.T) {
	deps := newTestDeps(t, captionServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "not a subtitle file")
	}))
	deps.Tokens = fakeTokens{token: "tok"}
	reg := newTestRegistry(t, deps)

	res := call(t, reg, "analyze_captions", map[string]any{"video_id": "v1"})
	assert.Equal(t, "Failed to parse caption content.", res.Error)
}
