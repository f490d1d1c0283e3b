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
	liveChatLimit = 200

	tokenRequired = "OAuth credentials not available. Set YOUTUBE_OAUTH_TOKEN environment variable"
)

func liveChatIDTool(ts *toolset) (Tool, error) {
	return newTool(ts, Tool{
		Name:        "get_active_live_chat_id",
		Title:       "Active live chat ID",
		Description: "Get the active live chat ID of a livestream, needed to read or post chat messages.",
		ReadOnly:    true,
	}, ts.liveChatID)
}

func (ts *toolset) liveChatID(ctx context.Context, in videoInput) Result {
	video, res, ok := ts.fetchVideo(ctx, in.VideoID, "liveStreamingDetails")
	if !ok {
		return res
	}

	chatID := fields.String(video, "", "liveStreamingDetails", "activeLiveChatId")
	if chatID == "" {
		return Fail("No active live chat found for this video. It may not be a livestream or the livestream may have ended.")
	}
	return OK(fmt.Sprintf("Active Live Chat ID: %s\n\nUse this ID with get_live_chat_messages or send_live_chat_message functions.", chatID))
}

type liveChatMessagesInput struct {
	LiveChatID string `json:"live_chat_id" jsonschema:"The live chat ID, see get_active_live_chat_id"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"Maximum number of messages to return (default 20, max 200)"`
}

func (in *liveChatMessagesInput) setDefaults() { in.MaxResults = 20 }

func liveChatMessagesTool(ts *toolset) (Tool, error) {
	return newTool(ts, Tool{
		Name:        "get_live_chat_messages",
		Title:       "Live chat messages",
		Description: "Read recent messages from a livestream chat.",
		ReadOnly:    true,
	}, ts.liveChatMessages)
}

var chatBadges = []struct {
	field string
	label string
}{
	{"isChatOwner", "OWNER"},
	{"isChatModerator", "MOD"},
	{"isChatSponsor", "SPONSOR"},
	{"isVerified", "VERIFIED"},
}

func (ts *toolset) liveChatMessages(ctx context.Context, in liveChatMessagesInput) Result {
	params := url.Values{}
	params.Set("part", "snippet,authorDetails")
	params.Set("liveChatId", in.LiveChatID)
	params.Set("maxResults", strconv.Itoa(clamp(in.MaxResults, liveChatLimit)))

	data, err := ts.yt.Get(ctx, "liveChat/messages", params)
	if err != nil {
		return failErr(err)
	}
	items := fields.Slice(data, "items")
	if len(items) == 0 {
		return Fail("No chat messages found or error fetching messages.")
	}

	lines := []string{fmt.Sprintf("Live Chat Messages (ID: %s):", in.LiveChatID)}
	for _, item := range items {
		author := fields.Map(item, "authorDetails")

		var badges []string
		for _, badge := range chatBadges {
			if fields.Bool(author, false, badge.field) {
				badges = append(badges, badge.label)
			}
		}
		badgeText := ""
		if len(badges) > 0 {
			badgeText = " [" + strings.Join(badges, ", ") + "]"
		}

		lines = append(lines, fmt.Sprintf("%s%s (%s): %s",
			fields.Text(author, "Anonymous", "displayName"),
			badgeText,
			fields.Text(item, "Unknown", "snippet", "publishedAt"),
			fields.Text(item, "[No message content]", "snippet", "displayMessage"),
		))
	}
	if token, ok := nextPageToken(data); ok {
		lines = append(lines, "\nNext page token: "+token)
	}
	return OK(strings.Join(lines, "\n"))
}

type sendLiveChatInput struct {
	LiveChatID  string `json:"live_chat_id" jsonschema:"The live chat ID to post to"`
	MessageText string `json:"message_text" jsonschema:"Text of the message"`
}

func sendLiveChatTool(ts *toolset) (Tool, error) {
	return newTool(ts, Tool{
		Name:        "send_live_chat_message",
		Title:       "Send live chat message",
		Description: "Post a message to a livestream chat as the authorised user. Requires OAuth.",
	}, ts.sendLiveChat)
}

func (ts *toolset) sendLiveChat(ctx context.Context, in sendLiveChatInput) Result {
	if in.LiveChatID == "" {
		return Fail("Live chat ID is required.")
	}
	if strings.TrimSpace(in.MessageText) == "" {
		return Fail("Message text cannot be empty.")
	}

	token, ok := ts.accessToken(ctx)
	if !ok {
		return Fail(tokenRequired)
	}

	body := map[string]any{
		"snippet": map[string]any{
			"liveChatId": in.LiveChatID,
			"type":       "textMessageEvent",
			"textMessageDetails": map[string]any{
				"messageText": in.MessageText,
			},
		},
	}
	params := url.Values{}
	params.Set("part", "snippet")

	data, err := ts.yt.Post(ctx, "liveChat/messages", body, params, token)
	if err != nil {
		return Failf("Failed to send message: %v", err)
	}
	if !fields.Has(data, "id") {
		return Fail("Failed to send message. API did not return a message ID.")
	}

	return OK(fmt.Sprintf("Message successfully sent to live chat!\n\nMessage ID: %s\nAuthor: %s\nContent: %s",
		fields.Text(data, "", "id"),
		fields.Text(data, "You", "snippet", "authorDisplayName"),
		fields.Text(data, in.MessageText, "snippet", "displayMessage"),
	))
}
