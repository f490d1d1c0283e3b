package tools

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/gxravel/youtube-data-mcp/internal/youtube"
)

const demographicsDays = 90

var ageGroupOrder = []string{"AGE_13_17", "AGE_18_24", "AGE_25_34", "AGE_35_44", "AGE_45_54", "AGE_55_64", "AGE_65_"}

var ageGroupNames = map[string]string{
	"AGE_13_17": "13-17",
	"AGE_18_24": "18-24",
	"AGE_25_34": "25-34",
	"AGE_35_44": "35-44",
	"AGE_45_54": "45-54",
	"AGE_55_64": "55-64",
	"AGE_65_":   "65+",
}

var countryNames = map[string]string{
	"US": "United States", "GB": "United Kingdom", "CA": "Canada",
	"AU": "Australia", "DE": "Germany", "FR": "France", "IN": "India",
	"JP": "Japan", "BR": "Brazil", "MX": "Mexico", "ES": "Spain",
	"IT": "Italy", "NL": "Netherlands", "SE": "Sweden", "KR": "South Korea",
	"RU": "Russia", "CN": "China",
}

var deviceNames = map[string]string{
	"MOBILE":           "Mobile Phone",
	"TABLET":           "Tablet",
	"DESKTOP":          "Desktop",
	"GAME_CONSOLE":     "Game Console",
	"CONNECTED_TV":     "Smart TV",
	"UNKNOWN_PLATFORM": "Other Devices",
}

var trafficSourceNames = map[string]string{
	"ADVERTISING":      "Paid Advertising",
	"ANNOTATION":       "Annotations",
	"EXTERNAL":         "External Websites",
	"PLAYLIST":         "Playlists",
	"PROMOTED":         "Promoted Content",
	"NOTIFICATION":     "Notifications",
	"RELATED_VIDEO":    "Related Videos",
	"SUBSCRIBER":       "Subscriber Feed",
	"SOCIAL":           "Social Media",
	"CHANNEL":          "Channel Page",
	"YOUTUBE_SEARCH":   "YouTube Search",
	"GOOGLE_SEARCH":    "Google Search",
	"SUGGESTED_VIDEO":  "Suggested Videos",
	"OTHER":            "Other Sources",
	"NO_LINK_EMBEDDED": "Embedded (No Link)",
	"YT_SEARCH":        "YouTube Search",
}

func ageName(group string) string {
	if name, ok := ageGroupNames[group]; ok {
		return name
	}
	return strings.ReplaceAll(strings.TrimPrefix(group, "AGE_"), "_", "-")
}

func genderName(gender string) string {
	return capitalize(strings.TrimPrefix(gender, "GENDER_"))
}

func countryName(code string) string {
	if name, ok := countryNames[code]; ok {
		return name
	}
	return code
}

func deviceName(device string) string {
	if name, ok := deviceNames[device]; ok {
		return name
	}
	return device
}

func trafficSourceName(source string) string {
	if name, ok := trafficSourceNames[source]; ok {
		return name
	}
	words := strings.Fields(strings.ReplaceAll(source, "_", " "))
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

func pct(part, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return part / total * 100
}

// share is a named slice of a total, kept in first-seen order.
type share struct {
	name  string
	value float64
}

type shares []share

func (s *shares) add(name string, v float64) {
	for i := range *s {
		if (*s)[i].name == name {
			(*s)[i].value += v
			return
		}
	}
	*s = append(*s, share{name: name, value: v})
}

func (s shares) get(name string) float64 {
	for _, sh := range s {
		if sh.name == name {
			return sh.value
		}
	}
	return 0
}

// top returns the largest share, the first one on ties.
func (s shares) top() (share, bool) {
	if len(s) == 0 {
		return share{}, false
	}
	best := s[0]
	for _, sh := range s[1:] {
		if sh.value > best.value {
			best = sh
		}
	}
	return best, true
}

type channelInput struct {
	ChannelID string `json:"channel_id" jsonschema:"Channel ID, handle or username"`
}

func audienceDemographicsTool(ts *toolset) (Tool, error) {
	return newTool(ts, Tool{
		Name:        "get_audience_demographics",
		Title:       "Audience demographics",
		Description: "Summarise a channel's audience over the last 90 days: age and gender, top countries, devices and traffic sources. Requires OAuth for the channel owner.",
		ReadOnly:    true,
	}, ts.audienceDemographics)
}

func (ts *toolset) audienceDemographics(ctx context.Context, in channelInput) Result {
	token, ok := ts.oauthToken(ctx)
	if !ok {
		return Fail(oauthRequired)
	}

	channelID, res, ok := ts.resolve(ctx, in.ChannelID)
	if !ok {
		return res
	}
	title, res, ok := ts.channelTitle(ctx, channelID, "snippet")
	if !ok {
		return res
	}

	now := ts.now()
	start := now.AddDate(0, 0, -demographicsDays).Format(dateLayout)
	end := now.Format(dateLayout)

	queries := []youtube.ReportQuery{
		{Metrics: "viewerPercentage", Dimensions: "ageGroup,gender", Sort: "gender,ageGroup"},
		{Metrics: "views,estimatedMinutesWatched,averageViewDuration,averageViewPercentage", Dimensions: "country", Sort: "-views", MaxResults: 25},
		{Metrics: "views,estimatedMinutesWatched", Dimensions: "deviceType", Sort: "-views"},
		{Metrics: "views,estimatedMinutesWatched", Dimensions: "insightTrafficSourceType", Sort: "-views"},
	}
	reports := make([]report, len(queries))
	for i, q := range queries {
		q.IDs = "channel==" + channelID
		q.StartDate = start
		q.EndDate = end

		data, err := ts.yt.Analytics(ctx, q, token)
		if err != nil {
			if isAPIError(err) {
				return Failf("Failed to retrieve audience demographics: %v", err)
			}
			return Failf("Unexpected error retrieving audience demographics: %v", err)
		}
		reports[i] = parseReport(data)
	}
	demo, geo, devices, traffic := reports[0], reports[1], reports[2], reports[3]

	var b strings.Builder
	var insights []string
	fmt.Fprintf(&b, "Audience Demographics for %s (ID: %s)\n", title, channelID)
	fmt.Fprintf(&b, "Period: %s to %s\n\n", start, end)

	insights = append(insights, writeAgeGender(&b, demo)...)
	insights = append(insights, writeGeography(&b, geo)...)
	insights = append(insights, writeDevices(&b, devices)...)
	insights = append(insights, writeTraffic(&b, traffic)...)

	b.WriteString("\nAudience Insights:\n")
	b.WriteString("----------------\n")
	for _, line := range insights {
		b.WriteString(line + "\n")
	}
	b.WriteString("\nNote: For more detailed demographic data, visit YouTube Studio.\n")
	return OK(b.String())
}

// writeAgeGender renders the age/gender section. Viewers of unknown gender
// are redistributed over the known genders in proportion.
func writeAgeGender(b *strings.Builder, r report) []string {
	if len(r.rows) == 0 {
		b.WriteString("Age & Gender Data: Not available\n")
		return nil
	}

	type agePct struct {
		age string
		pct float64
	}
	var genders []string
	byGender := map[string][]agePct{}
	var totals, ageTotals shares
	for _, row := range r.rows {
		age, gender, p := label(row, 0), label(row, 1), cell(row, 2)
		if _, ok := byGender[gender]; !ok {
			genders = append(genders, gender)
		}
		byGender[gender] = append(byGender[gender], agePct{age, p})
		totals.add(gender, p)
		ageTotals.add(age, p)
	}

	if unknown := totals.get("GENDER_UNKNOWN"); slices.Contains(genders, "GENDER_UNKNOWN") {
		var known float64
		for _, t := range totals {
			if t.name != "GENDER_UNKNOWN" {
				known += t.value
			}
		}
		var kept shares
		for _, t := range totals {
			if t.name == "GENDER_UNKNOWN" {
				continue
			}
			if known > 0 {
				t.value += unknown * t.value / known
			}
			kept = append(kept, t)
		}
		totals = kept
		genders = slices.DeleteFunc(genders, func(g string) bool { return g == "GENDER_UNKNOWN" })
	}

	b.WriteString("Age & Gender Distribution:\n")
	b.WriteString("-------------------------\n")
	b.WriteString("Gender Distribution:\n")
	for _, t := range totals {
		fmt.Fprintf(b, "  %s: %.1f%%\n", genderName(t.name), t.value)
	}

	var ages []string
	for _, g := range genders {
		for _, ap := range byGender[g] {
			if !slices.Contains(ages, ap.age) {
				ages = append(ages, ap.age)
			}
		}
	}
	rank := func(age string) int {
		if i := slices.Index(ageGroupOrder, age); i >= 0 {
			return i
		}
		return len(ageGroupOrder)
	}
	slices.SortStableFunc(ages, func(a, c string) int {
		if d := rank(a) - rank(c); d != 0 {
			return d
		}
		return strings.Compare(a, c)
	})

	b.WriteString("\nAge Distribution:\n")
	for _, age := range ages {
		var total float64
		var parts []string
		for _, g := range genders {
			for _, ap := range byGender[g] {
				if ap.age == age {
					total += ap.pct
					parts = append(parts, fmt.Sprintf("%s: %.1f%%", genderName(g), ap.pct))
				}
			}
		}
		fmt.Fprintf(b, "  %s: %.1f%% total ", ageName(age), total)
		if len(parts) > 0 {
			fmt.Fprintf(b, "(%s)", strings.Join(parts, ", "))
		}
		b.WriteString("\n")
	}

	var insights []string
	if top, ok := ageTotals.top(); ok {
		insights = append(insights, fmt.Sprintf("- Primary age demographic: %s (%.1f%% of viewers)", ageName(top.name), top.value))
	}
	if top, ok := totals.top(); ok {
		insights = append(insights, fmt.Sprintf("- Gender breakdown: %s viewers represent %.1f%% of your audience", genderName(top.name), top.value))
	}
	return insights
}

func writeGeography(b *strings.Builder, r report) []string {
	if len(r.rows) == 0 {
		b.WriteString("\nGeographic Data: Not available\n")
		return nil
	}

	viewCol := r.column("views", 1)
	minutesCol := r.column("estimatedMinutesWatched", 2)
	total := r.sum(viewCol)

	b.WriteString("\nGeographic Distribution (Top 10 Countries):\n")
	b.WriteString("---------------------------------------\n")
	for i, row := range r.rows[:min(10, len(r.rows))] {
		code := label(row, 0)
		views := cell(row, viewCol)
		fmt.Fprintf(b, "%d. %s (%s): %s views (%.1f%%), %s minutes watched\n",
			i+1, countryName(code), code, grouped(views), pct(views, total), grouped(cell(row, minutesCol)))
	}

	top := r.rows[0]
	insights := []string{fmt.Sprintf("- Geographic concentration: %s is your top audience location (%.1f%% of views)",
		countryName(label(top, 0)), pct(cell(top, viewCol), total))}

	var top3 float64
	for _, row := range r.rows[:min(3, len(r.rows))] {
		top3 += pct(cell(row, viewCol), total)
	}
	switch n := len(r.rows); {
	case n > 10 && top3 < 60:
		insights = append(insights, fmt.Sprintf("- Your audience is geographically diverse (spread across %d countries)", n))
	case n > 1 && top3 > 80:
		insights = append(insights, fmt.Sprintf("- Your audience is concentrated in a few key regions (top 3 countries represent %.1f%% of views)", top3))
	}
	return insights
}

func writeDevices(b *strings.Builder, r report) []string {
	if len(r.rows) == 0 {
		b.WriteString("\nDevice Distribution: Not available\n")
		return nil
	}

	viewCol := r.column("views", 1)
	minutesCol := r.column("estimatedMinutesWatched", 2)
	totalViews := r.sum(viewCol)
	totalMinutes := r.sum(minutesCol)

	b.WriteString("\nDevice Distribution:\n")
	b.WriteString("-------------------\n")
	var breakdown shares
	for _, row := range r.rows {
		name := deviceName(label(row, 0))
		views, minutes := cell(row, viewCol), cell(row, minutesCol)
		fmt.Fprintf(b, "%s: %s views (%.1f%%), %s minutes watched (%.1f%%)\n",
			name, grouped(views), pct(views, totalViews), grouped(minutes), pct(minutes, totalMinutes))
		breakdown.add(name, pct(views, totalViews))
	}

	mobile := breakdown.get("Mobile Phone") + breakdown.get("Tablet")
	switch {
	case mobile > 60:
		return []string{fmt.Sprintf("- Your audience primarily watches on mobile devices (%.1f%% of views)", mobile)}
	case breakdown.get("Smart TV") > 40:
		return []string{fmt.Sprintf("- Your audience has high TV viewership (%.1f%% of views)", breakdown.get("Smart TV"))}
	}
	return nil
}

func writeTraffic(b *strings.Builder, r report) []string {
	if len(r.rows) == 0 {
		b.WriteString("\nTraffic Sources: Not available\n")
		return nil
	}

	viewCol := r.column("views", 1)
	minutesCol := r.column("estimatedMinutesWatched", 2)
	total := r.sum(viewCol)

	b.WriteString("\nTraffic Sources:\n")
	b.WriteString("--------------\n")
	var breakdown shares
	for _, row := range r.rows {
		name := trafficSourceName(label(row, 0))
		views := cell(row, viewCol)
		fmt.Fprintf(b, "%s: %s views (%.1f%%), %s minutes watched\n",
			name, grouped(views), pct(views, total), grouped(cell(row, minutesCol)))
		breakdown.add(name, pct(views, total))
	}

	var insights []string
	if top, ok := breakdown.top(); ok {
		insights = append(insights, fmt.Sprintf("- Traffic pattern: %s is your primary traffic source (%.1f%% of views)", top.name, top.value))
	}
	if search := breakdown.get("YouTube Search") + breakdown.get("Google Search"); search > 30 {
		insights = append(insights, fmt.Sprintf("- Your channel relies heavily on search traffic (%.1f%% of views)", search))
	}
	feed := breakdown.get("Subscriber Feed")
	subscribers := feed + breakdown.get("Notifications")
	switch {
	case subscribers < 15 && feed > 0:
		insights = append(insights, fmt.Sprintf("- Your subscribers account for only %.1f%% of your views - consider encouraging more engagement", subscribers))
	case subscribers > 50:
		insights = append(insights, fmt.Sprintf("- Your channel has strong subscriber engagement (%.1f%% of views)", subscribers))
	}
	return insights
}
