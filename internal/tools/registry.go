// Package tools implements the YouTube operations exposed over MCP. Each tool
// takes a JSON argument object and returns a Result holding either the
// rendered report or a user-facing error message.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/gxravel/youtube-data-mcp/internal/auth"
	"github.com/gxravel/youtube-data-mcp/internal/youtube"
)

// Tokens hands out OAuth access tokens for calls that act on behalf of the
// authorised channel.
type Tokens interface {
	AccessToken(ctx context.Context) (string, error)
}

// Uploader sends a local video file to YouTube and returns the new video ID.
type Uploader interface {
	Upload(ctx context.Context, u youtube.Upload) (string, error)
}

// Deps are the collaborators shared by every tool.
type Deps struct {
	Client *youtube.Client
	// Tokens may be nil when no OAuth credentials are configured.
	Tokens Tokens
	// OAuthClient is true when both the OAuth client ID and secret are set.
	OAuthClient bool
	// Uploader may be nil when uploads are not authorised.
	Uploader Uploader
	Logger   *slog.Logger

	// Now and Rand are injectable for tests.
	Now  func() time.Time
	Rand func() float64
}

// Tool is one callable operation.
type Tool struct {
	Name        string
	Title       string
	Description string
	ReadOnly    bool
	Schema      *jsonschema.Schema
	Invoke      func(ctx context.Context, args json.RawMessage) Result
}

// Resource is a readable URI. Template resources carry a {placeholder} in URI
// and receive the concrete URI on Read.
type Resource struct {
	URI         string
	Template    bool
	Name        string
	Description string
	Read        func(ctx context.Context, uri string) Result
}

// Registry is the ordered set of tools and resources built at startup.
type Registry struct {
	tools     []Tool
	resources []Resource
}

// Tools returns the tools in registration order.
func (r *Registry) Tools() []Tool { return r.tools }

// Resources returns the resources in registration order.
func (r *Registry) Resources() []Resource { return r.resources }

// Tool looks a tool up by name.
func (r *Registry) Tool(name string) (Tool, bool) {
	for _, t := range r.tools {
		if t.Name == name {
			return t, true
		}
	}
	return Tool{}, false
}

type toolset struct {
	yt          *youtube.Client
	tokens      Tokens
	oauthClient bool
	uploader    Uploader
	logger      *slog.Logger
	now         func() time.Time
	rand        func() float64
}

// NewRegistry builds every tool and resource against deps.
func NewRegistry(deps Deps) (*Registry, error) {
	if deps.Client == nil {
		return nil, errors.New("youtube client is required")
	}

	ts := &toolset{
		yt:          deps.Client,
		tokens:      deps.Tokens,
		oauthClient: deps.OAuthClient,
		uploader:    deps.Uploader,
		logger:      deps.Logger,
		now:         deps.Now,
		rand:        deps.Rand,
	}
	if ts.logger == nil {
		ts.logger = slog.New(slog.DiscardHandler)
	}
	if ts.now == nil {
		ts.now = time.Now
	}
	if ts.rand == nil {
		ts.rand = rand.Float64
	}

	builders := []func(*toolset) (Tool, error){
		searchVideosTool,
		videoDetailsTool,
		channelInfoTool,
		lookupChannelTool,
		channelVideosTool,
		playlistDetailsTool,
		videoCommentsTool,
		topicSearchTool,
		channelSubscriptionsTool,
		videoPerformanceTool,
		thumbnailAnalysisTool,
		liveBroadcastTool,
		captionsTool,
		captionAnalysisTool,
		liveChatIDTool,
		liveChatMessagesTool,
		sendLiveChatTool,
		channelAnalyticsTool,
		audienceDemographicsTool,
		uploadVideoTool,
	}

	reg := &Registry{}
	seen := make(map[string]bool, len(builders))
	for _, build := range builders {
		t, err := build(ts)
		if err != nil {
			return nil, err
		}
		if seen[t.Name] {
			return nil, fmt.Errorf("duplicate tool name %q", t.Name)
		}
		seen[t.Name] = true
		reg.tools = append(reg.tools, t)
	}
	reg.resources = ts.resources()

	return reg, nil
}

// defaulter is implemented by inputs whose optional fields have non-zero
// defaults. Defaults are applied before the arguments are decoded.
type defaulter interface {
	setDefaults()
}

// newTool derives the input schema from In, validates arguments against it
// and decodes them into In before calling fn.
func newTool[In any](ts *toolset, t Tool, fn func(context.Context, In) Result) (Tool, error) {
	schema, err := jsonschema.For[In](nil)
	if err != nil {
		return Tool{}, fmt.Errorf("failed to build schema for %s: %w", t.Name, err)
	}
	resolved, err := schema.Resolve(nil)
	if err != nil {
		return Tool{}, fmt.Errorf("failed to resolve schema for %s: %w", t.Name, err)
	}
	t.Schema = schema

	name := t.Name
	t.Invoke = func(ctx context.Context, args json.RawMessage) Result {
		if len(args) == 0 || string(args) == "null" {
			args = json.RawMessage("{}")
		}

		var raw map[string]any
		if err := json.Unmarshal(args, &raw); err != nil {
			return Failf("Invalid arguments for %s: %v", name, err)
		}
		if err := resolved.Validate(raw); err != nil {
			return Failf("Invalid arguments for %s: %v", name, err)
		}

		var in In
		if d, ok := any(&in).(defaulter); ok {
			d.setDefaults()
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return Failf("Invalid arguments for %s: %v", name, err)
		}

		res := fn(ctx, in)
		if res.IsError() {
			ts.logger.Warn("tool failed", "tool", name, "error", res.Error)
		}
		return res
	}
	return t, nil
}

// accessToken returns the current OAuth access token, or false when none is
// available.
func (ts *toolset) accessToken(ctx context.Context) (string, bool) {
	if ts.tokens == nil {
		return "", false
	}
	token, err := ts.tokens.AccessToken(ctx)
	if err != nil {
		if !errors.Is(err, auth.ErrNoCredentials) {
			ts.logger.Warn("failed to obtain access token", "error", err)
		}
		return "", false
	}
	return token, token != ""
}

// resolve maps a channel ID, handle or username to a canonical channel ID.
func (ts *toolset) resolve(ctx context.Context, identifier string) (string, Result, bool) {
	id, ok := ts.yt.ResolveChannel(ctx, identifier)
	if !ok {
		return "", Failf("Could not resolve channel identifier: %s. Please provide a valid channel ID or handle.", identifier), false
	}
	return id, Result{}, true
}

// clamp bounds a requested page size to [1, limit].
func clamp(n, limit int) int {
	return max(1, min(n, limit))
}
