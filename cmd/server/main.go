package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gxravel/youtube-data-mcp/internal/auth"
	"github.com/gxravel/youtube-data-mcp/internal/config"
	"github.com/gxravel/youtube-data-mcp/internal/server"
	"github.com/gxravel/youtube-data-mcp/internal/tools"
	"github.com/gxravel/youtube-data-mcp/internal/youtube"
)

const usage = `usage: youtube-data-mcp [serve|auth]

  serve  run the MCP server (default)
  auth   authorize a YouTube channel in the browser and save the token
`

func main() {
	// CRITICAL: stdout carries the stdio transport, so standard log output goes to stderr
	log.SetOutput(os.Stderr)

	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Create structured logger (JSON format to stderr)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	// Create context with signal handling for clean shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "serve":
		err = serve(ctx, cfg, logger)
	case "auth":
		err = authorize(ctx, cfg, logger)
	case "help", "-h", "--help":
		fmt.Fprint(os.Stderr, usage)
		return
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil && ctx.Err() == nil {
		logger.Error("command failed", "command", cmd, "error", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	httpClient := &http.Client{Timeout: cfg.RequestTimeout}

	ytClient := youtube.NewClient(youtube.Options{
		APIKey:       cfg.APIKey,
		BaseURL:      cfg.APIBaseURL,
		AnalyticsURL: cfg.AnalyticsURL,
		CaptionsURL:  cfg.CaptionsURL,
		HTTPClient:   httpClient,
		Logger:       logger,
	})
	if !ytClient.HasAPIKey() {
		logger.Warn("YOUTUBE_API_KEY not set, read-only tools will report it")
	}

	creds := newCredentials(ctx, cfg, logger)
	logger.Info("oauth credentials", "source", creds.Kind())

	deps := tools.Deps{
		Client:      ytClient,
		Tokens:      creds,
		OAuthClient: cfg.HasOAuthClient(),
		Logger:      logger,
	}

	// Uploads go through the generated client and need an authorised HTTP client.
	if creds.Available() {
		authClient, err := creds.HTTPClient(ctx)
		if err != nil {
			return fmt.Errorf("failed to create authorised http client: %w", err)
		}
		publisher, err := youtube.NewPublisher(ctx, authClient, cfg.UploadEndpoint, logger)
		if err != nil {
			return err
		}
		deps.Uploader = publisher
	}

	registry, err := tools.NewRegistry(deps)
	if err != nil {
		return fmt.Errorf("failed to build tool registry: %w", err)
	}

	srv := server.New(registry, logger, server.Options{
		Transport: cfg.Transport,
		Port:      cfg.Port,
		AuthToken: cfg.MCPAuthToken,
	})
	return srv.Run(ctx)
}

func newCredentials(ctx context.Context, cfg *config.Config, logger *slog.Logger) *auth.Credentials {
	opts := auth.CredentialsOptions{
		Storage:     auth.NewFileTokenStorage(cfg.TokenPath()),
		StaticToken: cfg.OAuthToken,
		Logger:      logger,
	}
	if cfg.HasOAuthClient() {
		opts.Config = auth.NewOAuth2Config(cfg.ClientID, cfg.ClientSecret, cfg.OAuthRedirectURL)
	}
	return auth.NewCredentials(ctx, opts)
}

// authorize runs the consent flow, saves the token and prints the authorised channel.
func authorize(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if !cfg.HasOAuthClient() {
		return errors.New("YOUTUBE_CLIENT_ID and YOUTUBE_CLIENT_SECRET are required for auth")
	}

	oauthCfg := auth.NewOAuth2Config(cfg.ClientID, cfg.ClientSecret, cfg.OAuthRedirectURL)
	storage := auth.NewFileTokenStorage(cfg.TokenPath())

	ln, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", cfg.OAuthPort))
	if err != nil {
		return fmt.Errorf("failed to listen for oauth callback: %w", err)
	}

	token, err := auth.Authorize(ctx, oauthCfg, storage, ln, os.Stderr, logger)
	if err != nil {
		return err
	}

	publisher, err := youtube.NewPublisher(ctx, oauthCfg.Client(ctx, token), cfg.UploadEndpoint, logger)
	if err != nil {
		return err
	}

	// Validate authentication by fetching channel info
	channelName, err := publisher.ValidateAuth(ctx)
	if err != nil {
		return err
	}

	logger.Info("authenticated with youtube", "channel", channelName, "token_file", storage.Path())
	fmt.Fprintf(os.Stderr, "Authorized channel: %s\nToken saved to %s\n", channelName, storage.Path())
	return nil
}
