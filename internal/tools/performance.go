package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gxravel/youtube-data-mcp/internal/fields"
)

const simulatedNote = "\nNote: Historical data is simulated for demonstration purposes. In a production environment, actual historical data would be used."

type videoPerformanceInput struct {
	VideoID    string `json:"video_id" jsonschema:"The ID of the YouTube video"`
	TimePeriod int    `json:"time_period,omitempty" jsonschema:"Number of time units to analyze (default 7)"`
	Unit       string `json:"unit,omitempty" jsonschema:"days or hours (default days)"`
}

func (in *videoPerformanceInput) setDefaults() {
	in.TimePeriod = 7
	in.Unit = "days"
}

func videoPerformanceTool(ts *toolset) (Tool, error) {
	return newTool(ts, Tool{
		Name:        "analyze_video_performance",
		Title:       "Analyze video performance",
		Description: "Estimate the growth of a video's views, likes and comments over recent days or hours. The history is simulated from current totals.",
		ReadOnly:    true,
	}, ts.videoPerformance)
}

type performancePoint struct {
	label    string
	views    int64
	likes    int64
	comments int64
}

// unitSpec describes how a time unit is stepped, labelled and jittered.
type unitSpec struct {
	step     time.Duration
	layout   string
	rateMul  float64
	jitterLo float64
	jitterHi float64
}

var performanceUnits = map[string]unitSpec{
	"days":  {step: 24 * time.Hour, layout: "2006-01-02", rateMul: 1, jitterLo: 0.85, jitterHi: 1.15},
	"hours": {step: time.Hour, layout: "2006-01-02 15:04", rateMul: 0.8, jitterLo: 0.75, jitterHi: 1.25},
}

func (ts *toolset) videoPerformance(ctx context.Context, in videoPerformanceInput) Result {
	if in.TimePeriod <= 0 {
		return Fail("Time period must be a positive integer.")
	}
	unit, ok := performanceUnits[in.Unit]
	if !ok {
		return Fail("Unit must be either 'days' or 'hours'.")
	}

	video, res, ok := ts.fetchVideo(ctx, in.VideoID, "snippet,statistics,contentDetails")
	if !ok {
		return res
	}

	title := fields.Text(video, "Unknown", "snippet", "title")
	channel := fields.Text(video, "Unknown", "snippet", "channelTitle")
	views := fields.Int(video, 0, "statistics", "viewCount")
	likes := fields.Int(video, 0, "statistics", "likeCount")
	comments := fields.Int(video, 0, "statistics", "commentCount")

	now := ts.now()
	published, err := parsePublished(fields.String(video, "", "snippet", "publishedAt"))
	if err != nil {
		published = now.Add(-30 * 24 * time.Hour)
	}

	age := int(now.Sub(published) / unit.step)
	points := min(in.TimePeriod, age)
	if points <= 0 {
		return OK(fmt.Sprintf("Video '%s' by %s is too new for historical analysis.\n\nCurrent Statistics:\nViews: %s\nLikes: %s\nComments: %s\n",
			title, channel, fields.Number(views), fields.Number(likes), fields.Number(comments)))
	}

	divisor := float64(max(age, 1))
	viewRate := float64(views) / divisor * unit.rateMul
	likeRate := float64(likes) / divisor * unit.rateMul
	commentRate := float64(comments) / divisor * unit.rateMul

	jitter := func() float64 {
		return unit.jitterLo + (unit.jitterHi-unit.jitterLo)*ts.rand()
	}
	estimate := func(current int64, rate float64, ago int) int64 {
		return int64(max(0, float64(current)-rate*float64(ago)*jitter()))
	}

	history := make([]performancePoint, 0, points+1)
	for i := range points {
		ago := points - i
		history = append(history, performancePoint{
			label:    now.Add(-time.Duration(ago) * unit.step).Format(unit.layout),
			views:    estimate(views, viewRate, ago),
			likes:    estimate(likes, likeRate, ago),
			comments: estimate(comments, commentRate, ago),
		})
	}
	history = append(history, performancePoint{
		label:    now.Format(unit.layout),
		views:    views,
		likes:    likes,
		comments: comments,
	})

	first, last := history[0], history[len(history)-1]
	growth := func(a, b int64) (int64, float64) {
		g := b - a
		return g, float64(g) / float64(max(a, 1)) * 100
	}
	viewGrowth, viewPct := growth(first.views, last.views)
	likeGrowth, likePct := growth(first.likes, last.likes)
	commentGrowth, commentPct := growth(first.comments, last.comments)
	engagement := float64(likes+comments) / float64(max(views, 1)) * 100

	var b strings.Builder
	fmt.Fprintf(&b, "Performance Analysis for '%s' by %s\n\n", title, channel)
	b.WriteString("Current Statistics:\n")
	fmt.Fprintf(&b, "Views: %s\n", fields.Number(views))
	fmt.Fprintf(&b, "Likes: %s\n", fields.Number(likes))
	fmt.Fprintf(&b, "Comments: %s\n", fields.Number(comments))
	fmt.Fprintf(&b, "Engagement Rate: %.2f%%\n\n", engagement)

	fmt.Fprintf(&b, "Growth over the past %d %s:\n", points, in.Unit)
	fmt.Fprintf(&b, "Views: +%s (%.2f%%)\n", fields.Number(viewGrowth), viewPct)
	fmt.Fprintf(&b, "Likes: +%s (%.2f%%)\n", fields.Number(likeGrowth), likePct)
	fmt.Fprintf(&b, "Comments: +%s (%.2f%%)\n\n", fields.Number(commentGrowth), commentPct)

	fmt.Fprintf(&b, "%s Breakdown:\n", strings.ToUpper(in.Unit[:1])+in.Unit[1:])
	for _, p := range history {
		fmt.Fprintf(&b, "%s: %s views, %s likes, %s comments\n",
			p.label, fields.Number(p.views), fields.Number(p.likes), fields.Number(p.comments))
	}
	b.WriteString(simulatedNote)
	return OK(b.String())
}

// parsePublished parses an RFC 3339 publish timestamp.
func parsePublished(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
