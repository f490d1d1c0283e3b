package tools

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gxravel/youtube-data-mcp/internal/fields"
)

const comparisonLimit = 10

var (
	titleWordRe = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	nonWordRe   = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
)

// queryStopWords are skipped when building the comparison search query.
var queryStopWords = func() map[string]bool {
	set := map[string]bool{}
	for _, w := range strings.Fields(`a an the and or but is are was were be been being
		have has had do does did to from by for with about against between into
		during before after above below at in on of this that these those i you he
		she it we they how what why when where`) {
		set[w] = true
	}
	return set
}()

type thumbnailInput struct {
	VideoID        string `json:"video_id" jsonschema:"The ID of the YouTube video to analyze"`
	NumComparisons int    `json:"num_comparisons,omitempty" jsonschema:"Number of similar videos to compare against (default 5, max 10)"`
	CategoryID     string `json:"category_id,omitempty" jsonschema:"Category to draw comparison videos from (default: the video's own category)"`
}

func (in *thumbnailInput) setDefaults() { in.NumComparisons = 5 }

func thumbnailAnalysisTool(ts *toolset) (Tool, error) {
	return newTool(ts, Tool{
		Name:        "analyze_thumbnail_effectiveness",
		Title:       "Analyze thumbnail effectiveness",
		Description: "Compare a video's views per day and engagement against similar high-performing videos from other channels, with thumbnail recommendations.",
		ReadOnly:    true,
	}, ts.thumbnailAnalysis)
}

type comparison struct {
	id          string
	title       string
	channel     string
	thumbnail   string
	duration    string
	definition  string
	description string
	categoryID  string
	views       int64
	likes       int64
	comments    int64
	engagement  float64
	daysOnline  int
	viewsPerDay float64
}

func thumbnailURL(snippet map[string]any) string {
	for _, size := range []string{"maxres", "high", "default"} {
		if u := fields.String(snippet, "", "thumbnails", size, "url"); u != "" {
			return u
		}
	}
	return "None"
}

// searchKeywords builds the comparison query from the title's significant
// words plus the first word of up to two tags.
func searchKeywords(title string, tags []string) string {
	var keywords []string
	for _, w := range titleWordRe.FindAllString(strings.ToLower(title), -1) {
		if !queryStopWords[w] && len([]rune(w)) > 2 {
			keywords = append(keywords, w)
		}
	}
	keywords = keywords[:min(3, len(keywords))]

	for _, tag := range tags[:min(2, len(tags))] {
		words := titleWordRe.FindAllString(strings.ToLower(tag), -1)
		if len(words) == 0 {
			continue
		}
		if w := words[0]; !slices.Contains(keywords, w) && !queryStopWords[w] {
			keywords = append(keywords, w)
		}
	}

	query := strings.Join(keywords, " ")
	if query == "" && title != "" {
		r := []rune(nonWordRe.ReplaceAllString(title, ""))
		query = string(r[:min(30, len(r))])
	}
	return query
}

func (ts *toolset) thumbnailAnalysis(ctx context.Context, in thumbnailInput) Result {
	n := clamp(in.NumComparisons, comparisonLimit)

	video, res, ok := ts.fetchVideo(ctx, in.VideoID, "snippet,statistics,contentDetails")
	if !ok {
		return res
	}

	snippet := fields.Map(video, "snippet")
	title := fields.Text(snippet, "Unknown", "title")
	channelID := fields.String(snippet, "", "channelId")
	channelTitle := fields.Text(snippet, "Unknown", "channelTitle")
	views := fields.Int(video, 0, "statistics", "viewCount")
	likes := fields.Int(video, 0, "statistics", "likeCount")
	comments := fields.Int(video, 0, "statistics", "commentCount")
	duration := fields.Text(video, "Unknown", "contentDetails", "duration")
	category := in.CategoryID
	if category == "" {
		category = fields.String(snippet, "", "categoryId")
	}

	var subscribers int64
	channelParams := url.Values{}
	channelParams.Set("part", "statistics")
	channelParams.Set("id", channelID)
	if data, err := ts.yt.Get(ctx, "channels", channelParams); err == nil {
		subscribers = fields.Int(data, 0, "items", 0, "statistics", "subscriberCount")
	}

	var engagement float64
	if views > 0 {
		engagement = float64(likes) / float64(views) * 100
	}

	searchParams := url.Values{}
	searchParams.Set("part", "snippet")
	searchParams.Set("q", searchKeywords(fields.String(snippet, "", "title"), fields.Strings(snippet, "tags")))
	searchParams.Set("type", "video")
	searchParams.Set("maxResults", strconv.Itoa(n+5))
	if category != "" {
		searchParams.Set("videoCategoryId", category)
	}
	searchParams.Set("videoCaption", "any")
	searchParams.Set("order", "viewCount")

	found, err := ts.yt.Get(ctx, "search", searchParams)
	if err != nil {
		return Failf("Error finding similar videos: %v", err)
	}
	items := fields.Slice(found, "items")
	if len(items) == 0 {
		return Fail("No similar videos found for comparison.")
	}

	var ids []string
	for _, item := range items {
		id := fields.String(item, "", "id", "videoId")
		if id == in.VideoID || fields.String(item, "", "snippet", "channelId") == channelID {
			continue
		}
		ids = append(ids, id)
		if len(ids) >= n {
			break
		}
	}
	if len(ids) == 0 {
		return Fail("Could not find suitable comparison videos.")
	}

	detailParams := url.Values{}
	detailParams.Set("part", "snippet,statistics,contentDetails")
	detailParams.Set("id", strings.Join(ids, ","))
	details, err := ts.yt.Get(ctx, "videos", detailParams)
	if err != nil {
		return Failf("Error fetching comparison video details: %v", err)
	}
	detailItems := fields.Slice(details, "items")
	if len(detailItems) == 0 {
		return Fail("Error retrieving detailed information for comparison videos.")
	}

	now := ts.now()
	comps := make([]comparison, 0, len(detailItems))
	for _, item := range detailItems {
		comps = append(comps, newComparison(item, now))
	}
	slices.SortStableFunc(comps, func(a, b comparison) int {
		switch {
		case a.viewsPerDay > b.viewsPerDay:
			return -1
		case a.viewsPerDay < b.viewsPerDay:
			return 1
		}
		return 0
	})

	days := 1
	viewsPerDay := float64(views)
	if published, err := parsePublished(fields.String(snippet, "", "publishedAt")); err == nil {
		days = max(1, int(now.Sub(published)/(24*time.Hour)))
		viewsPerDay = float64(views) / float64(days)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Thumbnail Effectiveness Analysis for '%s' by %s\n\n", title, channelTitle)
	b.WriteString("YOUR VIDEO:\n")
	fmt.Fprintf(&b, "Title: %s\n", title)
	fmt.Fprintf(&b, "Thumbnail URL: %s\n", thumbnailURL(snippet))
	fmt.Fprintf(&b, "Duration: %s\n", duration)
	fmt.Fprintf(&b, "Views: %s\n", fields.Number(views))
	fmt.Fprintf(&b, "Days Online: %d\n", days)
	fmt.Fprintf(&b, "Views Per Day: %s\n", fields.Decimal(viewsPerDay, 1))
	fmt.Fprintf(&b, "Likes: %s\n", fields.Number(likes))
	fmt.Fprintf(&b, "Comments: %s\n", fields.Number(comments))
	if subscribers > 0 {
		fmt.Fprintf(&b, "Channel Subscribers: %s\n", fields.Number(subscribers))
	}
	fmt.Fprintf(&b, "Engagement Rate: %.2f%%\n\n", engagement)

	fmt.Fprintf(&b, "TOP %d COMPARISON VIDEOS (by Views/Day):\n", len(comps))
	var sumVPD, sumEngagement float64
	for i, c := range comps {
		sumVPD += c.viewsPerDay
		sumEngagement += c.engagement

		fmt.Fprintf(&b, "%d. \"%s\" by %s\n", i+1, c.title, c.channel)
		fmt.Fprintf(&b, "   Category ID: %s\n", c.categoryID)
		fmt.Fprintf(&b, "   Duration: %s\n", c.duration)
		fmt.Fprintf(&b, "   Definition: %s\n", c.definition)
		fmt.Fprintf(&b, "   Thumbnail URL: %s\n", c.thumbnail)
		fmt.Fprintf(&b, "   Views: %s\n", fields.Number(c.views))
		fmt.Fprintf(&b, "   Days Online: %d\n", c.daysOnline)
		fmt.Fprintf(&b, "   Views Per Day: %s\n", fields.Decimal(c.viewsPerDay, 1))
		fmt.Fprintf(&b, "   Likes: %s\n", fields.Number(c.likes))
		fmt.Fprintf(&b, "   Comments: %s\n", fields.Number(c.comments))
		fmt.Fprintf(&b, "   Engagement Rate: %.2f%%\n", c.engagement)
		fmt.Fprintf(&b, "   Description: %s\n", c.description)
		fmt.Fprintf(&b, "   Video URL: https://www.youtube.com/watch?v=%s\n\n", c.id)
	}

	avgVPD := sumVPD / float64(len(comps))
	avgEngagement := sumEngagement / float64(len(comps))

	b.WriteString("THUMBNAIL ANALYSIS & RECOMMENDATIONS:\n")
	switch {
	case viewsPerDay < avgVPD*0.7:
		b.WriteString("- Your thumbnail may be underperforming compared to similar videos.\n")
	case viewsPerDay > avgVPD*1.3:
		b.WriteString("- Your thumbnail appears to be outperforming similar videos!\n")
	default:
		b.WriteString("- Your thumbnail performs similarly to others in this category.\n")
	}
	fmt.Fprintf(&b, "  Your views/day: %.1f vs. Average: %.1f\n", viewsPerDay, avgVPD)

	switch {
	case engagement < avgEngagement*0.7:
		b.WriteString("- Your engagement rate is lower than similar videos.\n")
	case engagement > avgEngagement*1.3:
		b.WriteString("- Your engagement rate is higher than similar videos.\n")
	}

	b.WriteString("- Suggested thumbnail improvements based on your comparisons:\n")
	b.WriteString("  * Use high contrast colors to stand out in search results\n")
	b.WriteString("  * Include clear, readable text (but not too much)\n")
	b.WriteString("  * Show emotional facial expressions if appropriate\n")
	b.WriteString("  * Ensure your thumbnail accurately represents your content\n")
	b.WriteString("  * Use the rule of thirds for balanced composition\n\n")
	b.WriteString("NOTE: For a complete analysis, visually compare your thumbnail with the\n")
	b.WriteString("comparison thumbnails by visiting the URLs provided. A/B testing different\n")
	b.WriteString("thumbnail styles is recommended for optimal results.\n")
	return OK(b.String())
}

func newComparison(item any, now time.Time) comparison {
	snippet := fields.Map(item, "snippet")
	c := comparison{
		id:          fields.Text(item, "", "id"),
		title:       fields.Text(snippet, "Unknown", "title"),
		channel:     fields.Text(snippet, "Unknown", "channelTitle"),
		thumbnail:   thumbnailURL(snippet),
		duration:    fields.Text(item, "Unknown", "contentDetails", "duration"),
		definition:  strings.ToUpper(fields.Text(item, "Unknown", "contentDetails", "definition")),
		description: clip(fields.String(snippet, "", "description"), descriptionLimit),
		categoryID:  fields.String(snippet, "", "categoryId"),
		views:       fields.Int(item, 0, "statistics", "viewCount"),
		likes:       fields.Int(item, 0, "statistics", "likeCount"),
		comments:    fields.Int(item, 0, "statistics", "commentCount"),
	}
	if c.views > 0 {
		c.engagement = float64(c.likes) / float64(c.views) * 100
	}

	published, err := parsePublished(fields.String(snippet, "", "publishedAt"))
	if err != nil {
		return c
	}
	if days := int(now.Sub(published) / (24 * time.Hour)); days > 0 {
		c.daysOnline = days
		c.viewsPerDay = float64(c.views) / float64(days)
	} else {
		c.daysOnline = 1
		c.viewsPerDay = float64(c.views)
	}
	return c
}
