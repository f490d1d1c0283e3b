package tools

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"google.golang.org/api/youtubeanalytics/v2"

	"github.com/gxravel/youtube-data-mcp/internal/fields"
	"github.com/gxravel/youtube-data-mcp/internal/youtube"
)

const (
	dateLayout    = "2006-01-02"
	oauthRequired = "OAuth credentials not available. Set YOUTUBE_CLIENT_ID, YOUTUBE_CLIENT_SECRET, and YOUTUBE_OAUTH_TOKEN environment variables"
)

var (
	defaultMetrics    = []string{"views", "likes", "subscribersGained", "subscribersLost", "estimatedMinutesWatched", "averageViewDuration"}
	defaultDimensions = []string{"day"}
	countMetrics      = []string{"views", "likes", "subscribersGained", "subscribersLost", "comments"}
	trendMetrics      = []string{"views", "subscribersGained", "likes"}
)

// oauthToken returns an access token only when the OAuth client is fully
// configured.
func (ts *toolset) oauthToken(ctx context.Context) (string, bool) {
	if !ts.oauthClient {
		return "", false
	}
	return ts.accessToken(ctx)
}

// channelTitle fetches a channel and returns its title.
func (ts *toolset) channelTitle(ctx context.Context, channelID, parts string) (string, Result, bool) {
	params := url.Values{}
	params.Set("part", parts)
	params.Set("id", channelID)

	data, err := ts.yt.Get(ctx, "channels", params)
	if err != nil {
		return "", failErr(err), false
	}
	channel := fields.Map(data, "items", 0)
	if len(channel) == 0 {
		return "", Fail("Channel not found or error fetching channel information."), false
	}
	return fields.Text(channel, "Unknown Channel", "snippet", "title"), Result{}, true
}

// report is a decoded Analytics API result table.
type report struct {
	headers []string
	rows    [][]any
}

func parseReport(resp *youtubeanalytics.QueryResponse) report {
	var r report
	if resp == nil {
		return r
	}
	for _, h := range resp.ColumnHeaders {
		if h != nil {
			r.headers = append(r.headers, h.Name)
		}
	}
	r.rows = resp.Rows
	return r
}

// column returns the index of the named column, or fallback when the
// response carries no such header.
func (r report) column(name string, fallback int) int {
	if i := slices.Index(r.headers, name); i >= 0 {
		return i
	}
	return fallback
}

func (r report) sum(col int) float64 {
	var total float64
	for _, row := range r.rows {
		total += cell(row, col)
	}
	return total
}

// cell returns the numeric value at row[i], or 0.
func cell(row []any, i int) float64 {
	return fields.Float(row, 0, i)
}

func label(row []any, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return fields.Text(row, "", i)
}

// grouped formats a number with comma grouping, without decimals when it is
// integral.
func grouped(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return fields.Number(int64(f))
	}
	return fields.Decimal(f, -1)
}

func plain(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	r := []rune(strings.ToLower(s))
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

type channelAnalyticsInput struct {
	ChannelID  string   `json:"channel_id" jsonschema:"Channel ID, handle or username"`
	Metrics    []string `json:"metrics,omitempty" jsonschema:"Metrics to retrieve (default views, likes, subscribersGained, subscribersLost, estimatedMinutesWatched, averageViewDuration)"`
	Dimensions []string `json:"dimensions,omitempty" jsonschema:"Dimensions to group by (default day)"`
	StartDate  string   `json:"start_date,omitempty" jsonschema:"Start date YYYY-MM-DD (default 30 days ago)"`
	EndDate    string   `json:"end_date,omitempty" jsonschema:"End date YYYY-MM-DD (default today)"`
	SortBy     string   `json:"sort_by,omitempty" jsonschema:"Sort order, for example -views"`
}

func channelAnalyticsTool(ts *toolset) (Tool, error) {
	return newTool(ts, Tool{
		Name:        "get_channel_analytics",
		Title:       "Channel analytics",
		Description: "Retrieve YouTube Analytics reports for a channel with totals, a per-row breakdown and trend insights. Requires OAuth for the channel owner.",
		ReadOnly:    true,
	}, ts.channelAnalytics)
}

func (ts *toolset) channelAnalytics(ctx context.Context, in channelAnalyticsInput) Result {
	metrics := in.Metrics
	if len(metrics) == 0 {
		metrics = defaultMetrics
	}
	dimensions := in.Dimensions
	if len(dimensions) == 0 {
		dimensions = defaultDimensions
	}
	now := ts.now()
	start := in.StartDate
	if start == "" {
		start = now.AddDate(0, 0, -30).Format(dateLayout)
	}
	end := in.EndDate
	if end == "" {
		end = now.Format(dateLayout)
	}

	token, ok := ts.oauthToken(ctx)
	if !ok {
		return Fail(oauthRequired)
	}

	channelID, res, ok := ts.resolve(ctx, in.ChannelID)
	if !ok {
		return res
	}
	title, res, ok := ts.channelTitle(ctx, channelID, "snippet,contentDetails")
	if !ok {
		return res
	}

	data, err := ts.yt.Analytics(ctx, youtube.ReportQuery{
		IDs:        "channel==" + channelID,
		StartDate:  start,
		EndDate:    end,
		Metrics:    strings.Join(metrics, ","),
		Dimensions: strings.Join(dimensions, ","),
		Sort:       in.SortBy,
	}, token)
	if err != nil {
		if isAPIError(err) {
			return Failf("Failed to retrieve analytics: %v", err)
		}
		return Failf("Unexpected error retrieving analytics: %v", err)
	}
	rep := parseReport(data)
	if len(rep.rows) == 0 {
		return Fail("No analytics data available for this channel or time period.")
	}

	byDay := slices.Contains(dimensions, "day")
	metricCol := func(metric string) int {
		return rep.column(metric, slices.Index(metrics, metric)+len(dimensions))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analytics for %s (ID: %s)\n", title, channelID)
	fmt.Fprintf(&b, "Period: %s to %s\n\n", start, end)

	if byDay {
		b.WriteString("Channel Totals:\n")
		for _, metric := range metrics {
			total := rep.sum(metricCol(metric))
			switch {
			case slices.Contains(countMetrics, metric):
				fmt.Fprintf(&b, "%s: %s\n", metric, grouped(total))
			case metric == "estimatedMinutesWatched":
				fmt.Fprintf(&b, "%s: %s minutes (%s hours)\n", metric, grouped(total), fields.Decimal(total/60, 1))
			case metric == "averageViewDuration":
				fmt.Fprintf(&b, "%s: %s seconds\n", metric, fields.Decimal(total/float64(len(rep.rows)), 1))
			default:
				fmt.Fprintf(&b, "%s: %s\n", metric, plain(total))
			}
		}
	} else {
		fmt.Fprintf(&b, "Breakdown by %s:\n", dimensions[0])
	}

	b.WriteString("\nDetailed Breakdown:\n")
	header := strings.Join(rep.headers, "\t")
	b.WriteString(header + "\n")
	b.WriteString(strings.Repeat("-", len(header)) + "\n")
	for _, row := range rep.rows {
		cells := make([]string, len(row))
		for i, v := range row {
			f, isNum := v.(float64)
			switch {
			case i < len(dimensions) && dimensions[i] == "day":
				cells[i] = label(row, i)
			case isNum && f > 1000:
				cells[i] = grouped(f)
			default:
				cells[i] = label(row, i)
			}
		}
		b.WriteString(strings.Join(cells, "\t") + "\n")
	}

	b.WriteString("\nInsights:\n")
	if byDay && len(rep.rows) > 1 {
		for _, metric := range metrics {
			if !slices.Contains(trendMetrics, metric) {
				continue
			}
			col := metricCol(metric)
			total := rep.sum(col)
			if total <= 0 {
				continue
			}
			first := cell(rep.rows[0], col)
			last := cell(rep.rows[len(rep.rows)-1], col)
			if first <= 0 {
				continue
			}
			avg := total / float64(len(rep.rows))
			growth := (last - first) / first * 100
			trend := "stable"
			if growth > 5 {
				trend = "increasing"
			} else if growth < -5 {
				trend = "decreasing"
			}
			sign := ""
			if growth > 0 {
				sign = "+"
			}
			fmt.Fprintf(&b, "- %s: Daily average of %s, trend is %s (%s%s%%)\n",
				capitalize(metric), fields.Decimal(avg, 1), trend, sign, fields.Decimal(growth, 1))
		}
	}

	has := func(names ...string) bool {
		for _, n := range names {
			if !slices.Contains(metrics, n) {
				return false
			}
		}
		return true
	}
	if has("likes", "views") {
		if views := rep.sum(metricCol("views")); views > 0 {
			fmt.Fprintf(&b, "- Like rate: %.2f%% of viewers like your videos\n", rep.sum(metricCol("likes"))/views*100)
		}
	}
	if has("estimatedMinutesWatched", "views") {
		if views := rep.sum(metricCol("views")); views > 0 {
			fmt.Fprintf(&b, "- Average watch time: %.2f minutes per view\n", rep.sum(metricCol("estimatedMinutesWatched"))/views)
		}
	}
	if has("subscribersGained", "subscribersLost") {
		gained := rep.sum(metricCol("subscribersGained"))
		lost := rep.sum(metricCol("subscribersLost"))
		net := gained - lost
		sign := "+"
		if net < 0 {
			sign = ""
		}
		fmt.Fprintf(&b, "- Subscriber change: %s%s (%s gained, %s lost)\n", sign, grouped(net), grouped(gained), grouped(lost))
		if gained > 0 {
			fmt.Fprintf(&b, "- Subscriber retention rate: %.1f%%\n", (1-lost/gained)*100)
		}
	}

	b.WriteString("\nNote: For more detailed analytics, visit YouTube Studio.\n")
	return OK(b.String())
}
