package youtube

import (
	"context"
	"net/url"
	"strings"

	"github.com/gxravel/youtube-data-mcp/internal/fields"
)

// ResolveChannel maps a channel ID, @handle or legacy username to a canonical
// channel ID. IDs starting with "UC" are returned without any request.
// Otherwise handle lookup, username lookup and channel search are tried in
// that order and the first hit wins.
func (c *Client) ResolveChannel(ctx context.Context, identifier string) (string, bool) {
	if strings.HasPrefix(identifier, "UC") {
		return identifier, true
	}

	handle := identifier
	if !strings.HasPrefix(handle, "@") {
		handle = "@" + handle
	}

	byHandle := url.Values{}
	byHandle.Set("part", "id")
	byHandle.Set("forHandle", handle)
	if id := c.firstItem(ctx, "channels", byHandle, "id"); id != "" {
		c.logger.Debug("resolved channel", "identifier", identifier, "strategy", "handle", "channel_id", id)
		return id, true
	}

	byUsername := url.Values{}
	byUsername.Set("part", "id")
	byUsername.Set("forUsername", strings.TrimLeft(handle, "@"))
	if id := c.firstItem(ctx, "channels", byUsername, "id"); id != "" {
		c.logger.Debug("resolved channel", "identifier", identifier, "strategy", "username", "channel_id", id)
		return id, true
	}

	search := url.Values{}
	search.Set("part", "snippet")
	search.Set("q", handle)
	search.Set("type", "channel")
	search.Set("maxResults", "1")
	if id := c.firstItem(ctx, "search", search, "snippet", "channelId"); id != "" {
		c.logger.Debug("resolved channel", "identifier", identifier, "strategy", "search", "channel_id", id)
		return id, true
	}

	c.logger.Info("could not resolve channel", "identifier", identifier)
	return "", false
}

// firstItem returns the string at path inside items[0], or "" when the call
// failed or returned no items.
func (c *Client) firstItem(ctx context.Context, endpoint string, params url.Values, path ...any) string {
	data, err := c.Get(ctx, endpoint, params)
	if err != nil {
		return ""
	}
	return fields.String(data, "", append([]any{"items", 0}, path...)...)
}
