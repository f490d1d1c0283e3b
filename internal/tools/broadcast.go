package tools

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/gxravel/youtube-data-mcp/internal/fields"
	"github.com/gxravel/youtube-data-mcp/internal/youtube"
)

var privacyStatuses = []string{"private", "public", "unlisted"}

const invalidPrivacy = "Privacy status must be 'private', 'public', or 'unlisted'."

func validPrivacy(status string) bool {
	return slices.Contains(privacyStatuses, status)
}

// scheduleLayouts are the ISO 8601 forms accepted for a scheduled start.
var scheduleLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// normalizeSchedule validates an ISO 8601 timestamp and rewrites a trailing
// Z as an explicit +00:00 offset.
func normalizeSchedule(ts string) (string, bool) {
	if strings.HasSuffix(ts, "Z") {
		ts = strings.TrimSuffix(ts, "Z") + "+00:00"
	}
	for _, layout := range scheduleLayouts {
		if _, err := time.Parse(layout, ts); err == nil {
			return ts, true
		}
	}
	return "", false
}

type liveBroadcastInput struct {
	Title              string `json:"title" jsonschema:"Title of the live broadcast"`
	Description        string `json:"description" jsonschema:"Description of the live broadcast"`
	ScheduledStartTime string `json:"scheduled_start_time" jsonschema:"Scheduled start as ISO 8601 (YYYY-MM-DDThh:mm:ss.sssZ)"`
	PrivacyStatus      string `json:"privacy_status,omitempty" jsonschema:"private, public or unlisted (default private)"`
	EnableDVR          bool   `json:"enable_dvr,omitempty" jsonschema:"Whether viewers can rewind the stream (default true)"`
	EnableAutoStart    bool   `json:"enable_auto_start,omitempty" jsonschema:"Start the broadcast automatically when streaming begins (default true)"`
	EnableAutoStop     bool   `json:"enable_auto_stop,omitempty" jsonschema:"End the broadcast automatically when streaming stops (default true)"`
}

func (in *liveBroadcastInput) setDefaults() {
	in.PrivacyStatus = "private"
	in.EnableDVR = true
	in.EnableAutoStart = true
	in.EnableAutoStop = true
}

func liveBroadcastTool(ts *toolset) (Tool, error) {
	return newTool(ts, Tool{
		Name:        "create_live_broadcast",
		Title:       "Create live broadcast",
		Description: "Schedule a live broadcast, create an RTMP stream for it and bind the two. Requires OAuth.",
	}, ts.createLiveBroadcast)
}

func (ts *toolset) createLiveBroadcast(ctx context.Context, in liveBroadcastInput) Result {
	if in.Title == "" || in.Description == "" || in.ScheduledStartTime == "" {
		return Fail("Title, description, and scheduled_start_time are required.")
	}
	if !validPrivacy(in.PrivacyStatus) {
		return Fail(invalidPrivacy)
	}
	start, ok := normalizeSchedule(in.ScheduledStartTime)
	if !ok {
		return Fail("Invalid scheduled_start_time format. Use ISO 8601 format (YYYY-MM-DDThh:mm:ss.sssZ)")
	}

	if !ts.yt.HasAPIKey() {
		return failErr(youtube.ErrNoAPIKey)
	}
	token, ok := ts.accessToken(ctx)
	if !ok {
		return Fail(tokenRequired)
	}

	broadcastParams := url.Values{}
	broadcastParams.Set("part", "snippet,status,contentDetails")
	broadcast, err := ts.yt.Post(ctx, "liveBroadcasts", map[string]any{
		"snippet": map[string]any{
			"title":              in.Title,
			"description":        in.Description,
			"scheduledStartTime": start,
		},
		"status": map[string]any{
			"privacyStatus":           in.PrivacyStatus,
			"selfDeclaredMadeForKids": false,
		},
		"contentDetails": map[string]any{
			"enableDvr":       in.EnableDVR,
			"enableAutoStart": in.EnableAutoStart,
			"enableAutoStop":  in.EnableAutoStop,
		},
	}, broadcastParams, token)
	if err != nil {
		return broadcastFailure(err)
	}
	broadcastID := fields.String(broadcast, "", "id")
	if broadcastID == "" {
		return Fail("Failed to create broadcast. API did not return a broadcast ID.")
	}

	streamParams := url.Values{}
	streamParams.Set("part", "snippet,cdn,contentDetails")
	stream, err := ts.yt.Post(ctx, "liveStreams", map[string]any{
		"snippet": map[string]any{
			"title": in.Title,
		},
		"cdn": map[string]any{
			"frameRate":     "variable",
			"ingestionType": "rtmp",
			"resolution":    "variable",
		},
		"contentDetails": map[string]any{
			"isReusable": true,
		},
	}, streamParams, token)
	if err != nil {
		return broadcastFailure(err)
	}
	streamID := fields.String(stream, "", "id")
	if streamID == "" {
		return Fail("Failed to create stream. API did not return a stream ID.")
	}

	bindParams := url.Values{}
	bindParams.Set("part", "id,contentDetails")
	bindParams.Set("id", broadcastID)
	bindParams.Set("streamId", streamID)
	if _, err := ts.yt.Post(ctx, "liveBroadcasts/bind", nil, bindParams, token); err != nil {
		return broadcastFailure(err)
	}

	ts.logger.Info("live broadcast created", "broadcast_id", broadcastID, "stream_id", streamID)

	var b strings.Builder
	b.WriteString("Successfully created live broadcast!\n\n")
	b.WriteString("Broadcast Details:\n")
	fmt.Fprintf(&b, "Title: %s\n", in.Title)
	fmt.Fprintf(&b, "Description: %s\n", in.Description)
	fmt.Fprintf(&b, "Scheduled Start: %s\n", start)
	fmt.Fprintf(&b, "Privacy Status: %s\n\n", in.PrivacyStatus)
	b.WriteString("Stream Information:\n")
	fmt.Fprintf(&b, "Broadcast ID: %s\n", broadcastID)
	fmt.Fprintf(&b, "Stream ID: %s\n", streamID)
	fmt.Fprintf(&b, "Stream Key: %s\n", fields.Text(stream, "Unknown", "cdn", "ingestionInfo", "streamName"))
	fmt.Fprintf(&b, "Ingestion Address: %s\n\n", fields.Text(stream, "Unknown", "cdn", "ingestionInfo", "ingestionAddress"))
	fmt.Fprintf(&b, "Playback URL: https://www.youtube.com/watch?v=%s\n\n", broadcastID)
	b.WriteString("Instructions:\n")
	b.WriteString("1. Configure your streaming software (OBS, Streamlabs, etc.) with the above ingestion address and stream key\n")
	b.WriteString("2. Start streaming to this endpoint at the scheduled time\n")
	b.WriteString("3. The broadcast will automatically start when your stream begins (if auto-start is enabled)\n\n")
	b.WriteString("Note: Keep your stream key private. Anyone with this key can stream to your channel.\n")
	return OK(b.String())
}

func broadcastFailure(err error) Result {
	if isAPIError(err) {
		return Failf("Failed to create live broadcast: %v", err)
	}
	return Failf("Unexpected error creating live broadcast: %v", err)
}
