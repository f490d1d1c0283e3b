package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/gxravel/youtube-data-mcp/internal/auth"
)

// Transport names accepted by TRANSPORT.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config holds the application configuration loaded from environment variables.
// Nothing is required at startup: tools that need a missing credential report
// it when they are called.
type Config struct {
	// APIKey authorises read-only Data API calls.
	APIKey string `env:"YOUTUBE_API_KEY"`

	// ClientID and ClientSecret identify the OAuth client used by the auth
	// subcommand and for refreshing a saved token.
	ClientID     string `env:"YOUTUBE_CLIENT_ID"`
	ClientSecret string `env:"YOUTUBE_CLIENT_SECRET"`

	// OAuthToken is a bare access token, used when no refreshable token file exists.
	OAuthToken string `env:"YOUTUBE_OAUTH_TOKEN"`

	// TokenFile is where the auth subcommand saves the token (default: user config dir).
	TokenFile string `env:"YOUTUBE_TOKEN_FILE"`

	// OAuthRedirectURL is the OAuth callback URL (default: http://localhost:8080/callback).
	OAuthRedirectURL string `env:"OAUTH_REDIRECT_URL" envDefault:"http://localhost:8080/callback"`

	// OAuthPort is the port for the local OAuth callback server (default: 8080).
	OAuthPort int `env:"OAUTH_PORT" envDefault:"8080"`

	// Transport is stdio (default) or http.
	Transport string `env:"TRANSPORT" envDefault:"stdio"`

	// Port is the listen port of the HTTP transport.
	Port int `env:"PORT" envDefault:"8080"`

	// MCPAuthToken, when set, is required as a bearer token on /mcp.
	MCPAuthToken string `env:"MCP_AUTH_TOKEN"`

	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`

	// Endpoint overrides, mostly for tests and proxies.
	APIBaseURL     string `env:"YOUTUBE_API_BASE_URL"`
	AnalyticsURL   string `env:"YOUTUBE_ANALYTICS_URL"`
	CaptionsURL    string `env:"YOUTUBE_CAPTIONS_URL"`
	UploadEndpoint string `env:"YOUTUBE_UPLOAD_ENDPOINT"`
}

// Load loads the configuration from environment variables.
// It first attempts to load a .env file (if present), then parses environment variables.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	c.Transport = strings.ToLower(strings.TrimSpace(c.Transport))
	switch c.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("unsupported TRANSPORT %q (want %s or %s)", c.Transport, TransportStdio, TransportHTTP)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	return nil
}

// HasOAuthClient reports whether both the OAuth client ID and secret are set.
func (c *Config) HasOAuthClient() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// TokenPath returns the token file location, falling back to the per-user default.
func (c *Config) TokenPath() string {
	if c.TokenFile != "" {
		return c.TokenFile
	}
	return auth.DefaultTokenPath()
}

// SlogLevel maps LOG_LEVEL to a slog level. Unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
