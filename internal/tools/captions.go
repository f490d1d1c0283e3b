package tools

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/gxravel/youtube-data-mcp/internal/captions"
	"github.com/gxravel/youtube-data-mcp/internal/fields"
	"github.com/gxravel/youtube-data-mcp/internal/youtube"
)

const captionTokenRequired = "OAuth token required to access caption content. Set YOUTUBE_OAUTH_TOKEN environment variable."

type captionsInput struct {
	VideoID      string `json:"video_id" jsonschema:"The ID of the YouTube video"`
	LanguageCode string `json:"language_code,omitempty" jsonschema:"ISO 639-1 language code of the track to download. When omitted the available tracks are listed"`
	FormatType   string `json:"format_type,omitempty" jsonschema:"text, srt or vtt (default text)"`
}

func (in *captionsInput) setDefaults() { in.FormatType = "text" }

func captionsTool(ts *toolset) (Tool, error) {
	return newTool(ts, Tool{
		Name:        "get_captions",
		Title:       "Captions",
		Description: "List the caption tracks of a video, or download one track as plain text, SRT or WebVTT. Downloading requires OAuth.",
		ReadOnly:    true,
	}, ts.captions)
}

// captionTracks lists the caption tracks of a video.
func (ts *toolset) captionTracks(ctx context.Context, videoID string) ([]any, Result, bool) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("videoId", videoID)

	data, err := ts.yt.Get(ctx, "captions", params)
	if err != nil {
		return nil, failErr(err), false
	}
	items := fields.Slice(data, "items")
	if len(items) == 0 {
		return nil, Fail("No captions found for this video."), false
	}
	return items, Result{}, true
}

// trackID returns the ID of the first track in language.
func trackID(tracks []any, language string) (string, bool) {
	for _, item := range tracks {
		if fields.String(item, "", "snippet", "language") == language {
			id := fields.String(item, "", "id")
			return id, id != ""
		}
	}
	return "", false
}

func (ts *toolset) captions(ctx context.Context, in captionsInput) Result {
	tracks, res, ok := ts.captionTracks(ctx, in.VideoID)
	if !ok {
		return res
	}

	if in.LanguageCode == "" {
		lines := make([]string, 0, len(tracks))
		for _, item := range tracks {
			snippet := fields.Map(item, "snippet")
			info := fields.Text(snippet, "Unknown", "language")
			if name := fields.String(snippet, "", "name"); name != "" {
				info += " (" + name + ")"
			}
			if fields.String(snippet, "", "trackType") == "ASR" {
				info += " (auto-generated)"
			}
			lines = append(lines, fmt.Sprintf("%s - ID: %s", info, fields.Text(item, "Unknown", "id")))
		}
		return OK(fmt.Sprintf("Available caption tracks for video %s:\n", in.VideoID) + strings.Join(lines, "\n"))
	}

	id, ok := trackID(tracks, in.LanguageCode)
	if !ok {
		return Failf("No caption track found for language '%s'", in.LanguageCode)
	}

	format := strings.ToLower(in.FormatType)
	if format != "srt" && format != "vtt" {
		format = "text"
	}

	token, ok := ts.accessToken(ctx)
	if !ok {
		return Fail(captionTokenRequired)
	}

	content, err := ts.yt.Caption(ctx, id, format, token)
	if err != nil {
		return captionFailure("Error retrieving caption content", err)
	}
	if format == "text" {
		content = plainCaptionText(content)
	}

	return OK(fmt.Sprintf("Captions for video %s in %s:\n\n", in.VideoID, in.LanguageCode) + content)
}

// plainCaptionText drops cue numbers and timing lines.
func plainCaptionText(content string) string {
	var kept []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.Contains(line, "-->") {
			continue
		}
		if unicode.IsDigit([]rune(trimmed)[0]) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func captionFailure(prefix string, err error) Result {
	if errors.Is(err, youtube.ErrCaptionForbidden) || isAPIError(err) {
		return failErr(err)
	}
	return Failf("%s: %v", prefix, err)
}

type captionAnalysisInput struct {
	VideoID      string `json:"video_id" jsonschema:"The ID of the YouTube video"`
	LanguageCode string `json:"language_code,omitempty" jsonschema:"ISO 639-1 language code of the track (default en)"`
	AnalysisType string `json:"analysis_type,omitempty" jsonschema:"keywords, timeline or phrases (default keywords)"`
}

func (in *captionAnalysisInput) setDefaults() {
	in.LanguageCode = "en"
	in.AnalysisType = "keywords"
}

func captionAnalysisTool(ts *toolset) (Tool, error) {
	return newTool(ts, Tool{
		Name:        "analyze_captions",
		Title:       "Analyze captions",
		Description: "Analyze a caption track: top keywords and speaking rate, a per-minute timeline, or frequent phrases. Requires OAuth.",
		ReadOnly:    true,
	}, ts.analyzeCaptions)
}

func (ts *toolset) analyzeCaptions(ctx context.Context, in captionAnalysisInput) Result {
	tracks, res, ok := ts.captionTracks(ctx, in.VideoID)
	if !ok {
		return res
	}
	id, ok := trackID(tracks, in.LanguageCode)
	if !ok {
		return Failf("No caption track found for language '%s'", in.LanguageCode)
	}

	token, ok := ts.accessToken(ctx)
	if !ok {
		return Fail(captionTokenRequired)
	}

	content, err := ts.yt.Caption(ctx, id, "srt", token)
	if err != nil {
		return captionFailure("Error analyzing caption content", err)
	}

	entries := captions.Parse(content)
	if len(entries) == 0 {
		return Fail("Failed to parse caption content.")
	}

	switch strings.ToLower(in.AnalysisType) {
	case "keywords":
		return OK(keywordReport(entries, in.VideoID, in.LanguageCode))
	case "timeline":
		return OK(timelineReport(entries, in.VideoID, in.LanguageCode))
	case "phrases":
		return OK(phraseReport(entries, in.VideoID, in.LanguageCode))
	default:
		return Failf("Unknown analysis type: %s. Use 'keywords', 'timeline', or 'phrases'.", in.AnalysisType)
	}
}

func minutesSeconds(total float64) string {
	s := int(total)
	return fmt.Sprintf("%d minutes %d seconds", s/60, s%60)
}

func keywordReport(entries []captions.Entry, videoID, language string) string {
	report := captions.Keywords(entries)

	var b strings.Builder
	fmt.Fprintf(&b, "Caption Analysis (Keywords) for video %s:\n\n", videoID)
	fmt.Fprintf(&b, "Language: %s\n", language)
	fmt.Fprintf(&b, "Duration: %s\n", minutesSeconds(report.Duration))
	fmt.Fprintf(&b, "Total Words: %d\n", report.TotalWords)
	fmt.Fprintf(&b, "Words Per Minute: %d\n\n", report.WordsPerMinute)
	b.WriteString("Top Keywords:\n")
	for i, c := range report.Top {
		fmt.Fprintf(&b, "%d. %s: %d occurrences\n", i+1, c.Term, c.Count)
	}
	return b.String()
}

func timelineReport(entries []captions.Entry, videoID, language string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Caption Timeline for video %s:\n\n", videoID)
	fmt.Fprintf(&b, "Language: %s\n", language)
	fmt.Fprintf(&b, "Total Duration: %s\n\n", minutesSeconds(captions.TotalDuration(entries)))
	for _, seg := range captions.Timeline(entries) {
		fmt.Fprintf(&b, "%s: %s\n\n", seg.Label(), seg.Text)
	}
	return b.String()
}

func phraseReport(entries []captions.Entry, videoID, language string) string {
	report := captions.Phrases(entries)

	var b strings.Builder
	fmt.Fprintf(&b, "Caption Analysis (Phrases) for video %s:\n\n", videoID)
	fmt.Fprintf(&b, "Language: %s\n\n", language)

	sections := []struct {
		n      int
		counts []captions.Count
	}{
		{2, report.Bigrams},
		{3, report.Trigrams},
		{4, report.Quadgrams},
	}
	for i, sec := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Frequent %d-Word Phrases:\n", sec.n)
		for j, c := range sec.counts {
			fmt.Fprintf(&b, "%d. \"%s\" - %d occurrences\n", j+1, c.Term, c.Count)
		}
	}
	return b.String()
}
