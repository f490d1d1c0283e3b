package config

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp keeps a developer's .env out of the test.
func chdirTemp(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)
	for _, key := range []string{
		"YOUTUBE_API_KEY", "YOUTUBE_CLIENT_ID", "YOUTUBE_CLIENT_SECRET", "YOUTUBE_OAUTH_TOKEN",
		"YOUTUBE_TOKEN_FILE", "OAUTH_REDIRECT_URL", "OAUTH_PORT", "TRANSPORT", "PORT",
		"MCP_AUTH_TOKEN", "REQUEST_TIMEOUT", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Empty(t, cfg.APIKey)
	assert.Equal(t, "http://localhost:8080/callback", cfg.OAuthRedirectURL)
	assert.Equal(t, 8080, cfg.OAuthPort)
	assert.Equal(t, TransportStdio, cfg.Transport)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
	assert.False(t, cfg.HasOAuthClient())
	assert.NotEmpty(t, cfg.TokenPath())
}

func TestLoadFromEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("YOUTUBE_API_KEY", "key")
	t.Setenv("YOUTUBE_CLIENT_ID", "id")
	t.Setenv("YOUTUBE_CLIENT_SECRET", "secret")
	t.Setenv("YOUTUBE_TOKEN_FILE", "/tmp/yt/token.json")
	t.Setenv("TRANSPORT", " HTTP ")
	t.Setenv("PORT", "9090")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("YOUTUBE_API_BASE_URL", "http://127.0.0.1:1/youtube/v3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "key", cfg.APIKey)
	assert.True(t, cfg.HasOAuthClient())
	assert.Equal(t, "/tmp/yt/token.json", cfg.TokenPath())
	assert.Equal(t, TransportHTTP, cfg.Transport)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, "http://127.0.0.1:1/youtube/v3", cfg.APIBaseURL)
}

func TestLoadDotEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("YOUTUBE_API_KEY", "")
	require.NoError(t, os.Unsetenv("YOUTUBE_API_KEY"))
	require.NoError(t, os.WriteFile(".env", []byte("YOUTUBE_API_KEY=from-dotenv\n"), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.APIKey)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{"unknown transport", "TRANSPORT", "sse", `unsupported TRANSPORT "sse"`},
		{"bad port", "PORT", "eighty", `"eighty"`},
		{"bad timeout", "REQUEST_TIMEOUT", "soon", `"soon"`},
		{"zero timeout", "REQUEST_TIMEOUT", "0s", "REQUEST_TIMEOUT must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdirTemp(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		cfg := &Config{LogLevel: in}
		assert.Equal(t, want, cfg.SlogLevel(), in)
	}
}
