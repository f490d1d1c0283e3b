package auth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newTokenServer(t *testing.T, handler http.HandlerFunc) *oauth2.Config {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := NewOAuth2Config("client-id", "client-secret", "http://localhost:8085/callback")
	cfg.Endpoint = oauth2.Endpoint{
		AuthURL:   srv.URL + "/auth",
		TokenURL:  srv.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
	return cfg
}

func TestCredentialsNone(t *testing.T) {
	creds := NewCredentials(context.Background(), CredentialsOptions{})
	assert.False(t, creds.Available())
	assert.Equal(t, "none", creds.Kind())

	_, err := creds.AccessToken(context.Background())
	require.ErrorIs(t, err, ErrNoCredentials)

	_, err = creds.HTTPClient(context.Background())
	require.ErrorIs(t, err, ErrNoCredentials)
}

func TestCredentialsStaticToken(t *testing.T) {
	creds := NewCredentials(context.Background(), CredentialsOptions{StaticToken: "ya29.static"})
	require.True(t, creds.Available())
	assert.Equal(t, "static token", creds.Kind())

	token, err := creds.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ya29.static", token)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer ya29.static", r.Header.Get("Authorization"))
	}))
	defer srv.Close()

	client, err := creds.HTTPClient(context.Background())
	require.NoError(t, err)
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()
}

func TestCredentialsRefreshesStoredToken(t *testing.T) {
	refreshes := 0
	cfg := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "rt", r.PostForm.Get("refresh_token"))
		assert.Equal(t, "client-id", r.PostForm.Get("client_id"))
		refreshes++
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token": "fresh", "token_type": "Bearer", "expires_in": 3600}`)
	})

	storage := NewFileTokenStorage(filepath.Join(t.TempDir(), "token.json"))
	require.NoError(t, storage.Save(&oauth2.Token{
		AccessToken:  "stale",
		RefreshToken: "rt",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(-time.Hour),
	}))

	creds := NewCredentials(context.Background(), CredentialsOptions{
		Config:      cfg,
		Storage:     storage,
		StaticToken: "ignored",
		Logger:      discardLogger(),
	})
	assert.Equal(t, "token file", creds.Kind())

	token, err := creds.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", token)

	token, err = creds.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", token)
	assert.Equal(t, 1, refreshes)

	saved, err := storage.Load()
	require.NoError(t, err)
	assert.Equal(t, "fresh", saved.AccessToken)
	assert.Equal(t, "rt", saved.RefreshToken)
}

func TestCredentialsFallsBackToStaticToken(t *testing.T) {
	cfg := newTokenServer(t, func(http.ResponseWriter, *http.Request) {
		t.Error("token endpoint must not be called")
	})

	t.Run("stored token without refresh token", func(t *testing.T) {
		storage := NewFileTokenStorage(filepath.Join(t.TempDir(), "token.json"))
		require.NoError(t, storage.Save(&oauth2.Token{AccessToken: "old"}))

		creds := NewCredentials(context.Background(), CredentialsOptions{Config: cfg, Storage: storage, StaticToken: "static"})
		assert.Equal(t, "static token", creds.Kind())
	})

	t.Run("missing token file", func(t *testing.T) {
		storage := NewFileTokenStorage(filepath.Join(t.TempDir(), "absent.json"))

		creds := NewCredentials(context.Background(), CredentialsOptions{Config: cfg, Storage: storage, StaticToken: "static"})
		token, err := creds.AccessToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "static", token)
	})

	t.Run("no client credentials", func(t *testing.T) {
		storage := NewFileTokenStorage(filepath.Join(t.TempDir(), "token.json"))
		require.NoError(t, storage.Save(&oauth2.Token{AccessToken: "old", RefreshToken: "rt"}))

		creds := NewCredentials(context.Background(), CredentialsOptions{Storage: storage})
		assert.False(t, creds.Available())
	})
}

func TestCredentialsCanceledContext(t *testing.T) {
	creds := NewCredentials(context.Background(), CredentialsOptions{StaticToken: "static"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := creds.AccessToken(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
