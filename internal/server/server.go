package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	mcpauth "github.com/modelcontextprotocol/go-sdk/auth"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gxravel/youtube-data-mcp/internal/tools"
)

const (
	serverName    = "youtube-data-mcp"
	serverVersion = "1.0.0"

	// bearerTTL is the expiry reported for the static MCP_AUTH_TOKEN. The token
	// itself never expires; each request is verified again.
	bearerTTL = time.Hour
)

// Options configures the transport.
type Options struct {
	// Transport is "stdio" (default) or "http".
	Transport string
	// Port is the HTTP listen port.
	Port int
	// AuthToken, when set, gates /mcp behind this bearer token.
	AuthToken string
}

// Server wraps the MCP server with the tool registry
type Server struct {
	mcpServer *mcp.Server
	logger    *slog.Logger
	opts      Options
}

// New creates an MCP server exposing every tool and resource in reg.
func New(reg *tools.Registry, logger *slog.Logger, opts Options) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, nil)

	s := &Server{
		mcpServer: mcpServer,
		logger:    logger,
		opts:      opts,
	}
	s.registerTools(reg.Tools())
	s.registerResources(reg.Resources())

	return s
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *mcp.Server {
	return s.mcpServer
}

func (s *Server) registerTools(list []tools.Tool) {
	for _, t := range list {
		s.mcpServer.AddTool(&mcp.Tool{
			Name:        t.Name,
			Title:       t.Title,
			Description: t.Description,
			InputSchema: t.Schema,
			Annotations: annotations(t),
		}, s.toolHandler(t))
	}
	s.logger.Debug("registered tools", "count", len(list))
}

func annotations(t tools.Tool) *mcp.ToolAnnotations {
	openWorld := true
	a := &mcp.ToolAnnotations{
		Title:         t.Title,
		ReadOnlyHint:  t.ReadOnly,
		OpenWorldHint: &openWorld,
	}
	if t.ReadOnly {
		destructive := false
		a.DestructiveHint = &destructive
		a.IdempotentHint = true
	}
	return a
}

// toolHandler never returns a protocol error: failures come back as an
// error result so the client sees the message.
func (s *Server) toolHandler(t tools.Tool) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		res := t.Invoke(ctx, req.Params.Arguments)
		s.logger.Debug("tool called", "tool", t.Name, "error", res.IsError(), "duration", time.Since(start))

		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: res.Message()}},
			IsError: res.IsError(),
		}, nil
	}
}

func (s *Server) registerResources(list []tools.Resource) {
	for _, r := range list {
		h := s.resourceHandler(r)
		if r.Template {
			s.mcpServer.AddResourceTemplate(&mcp.ResourceTemplate{
				URITemplate: r.URI,
				Name:        r.Name,
				Description: r.Description,
				MIMEType:    "text/plain",
			}, h)
			continue
		}
		s.mcpServer.AddResource(&mcp.Resource{
			URI:         r.URI,
			Name:        r.Name,
			Description: r.Description,
			MIMEType:    "text/plain",
		}, h)
	}
}

// resourceHandler returns error results as the resource text, the same way
// tool failures are reported.
func (s *Server) resourceHandler(r tools.Resource) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		uri := req.Params.URI
		res := r.Read(ctx, uri)
		if res.IsError() {
			s.logger.Warn("resource read failed", "uri", uri, "error", res.Error)
		}

		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      uri,
				MIMEType: "text/plain",
				Text:     res.Message(),
			}},
		}, nil
	}
}

// Run starts the MCP server with the configured transport.
// Use TRANSPORT=stdio (default) for local MCP clients or TRANSPORT=http for hosted deployments.
func (s *Server) Run(ctx context.Context) error {
	switch s.opts.Transport {
	case "http":
		return s.runHTTP(ctx)
	default:
		return s.runStdio(ctx)
	}
}

// runStdio runs the MCP server on the stdio transport (for local MCP clients).
func (s *Server) runStdio(ctx context.Context) error {
	s.logger.Info("starting MCP server", "transport", "stdio")
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the HTTP routes: GET /health and the streamable MCP
// endpoint at /mcp.
func (s *Server) Handler() http.Handler {
	var mcpHandler http.Handler = mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, &mcp.StreamableHTTPOptions{
		Logger: s.logger,
	})

	if s.opts.AuthToken != "" {
		mcpHandler = mcpauth.RequireBearerToken(s.verifyToken, &mcpauth.RequireBearerTokenOptions{})(mcpHandler)
	} else {
		s.logger.Warn("MCP_AUTH_TOKEN not set, /mcp is unauthenticated")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})
	mux.Handle("/mcp", mcpHandler)

	return mux
}

func (s *Server) verifyToken(_ context.Context, token string, _ *http.Request) (*mcpauth.TokenInfo, error) {
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.opts.AuthToken)) != 1 {
		return nil, fmt.Errorf("unknown token: %w", mcpauth.ErrInvalidToken)
	}
	return &mcpauth.TokenInfo{Expiration: time.Now().Add(bearerTTL)}, nil
}

// runHTTP serves the streamable HTTP transport until ctx is done.
func (s *Server) runHTTP(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.opts.Port)
	s.logger.Info("starting MCP server", "transport", "streamable-http", "addr", addr)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server failed: %w", err)
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("failed to shut down HTTP server", "error", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}
