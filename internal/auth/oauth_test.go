package auth

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// urlWriter forwards the first URL written to it.
type urlWriter struct {
	urls chan string
}

func (w *urlWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(string(p), "\n") {
		if strings.HasPrefix(line, "http") {
			select {
			case w.urls <- line:
			default:
			}
		}
	}
	return len(p), nil
}

func listen(t *testing.T) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	return ln
}

func get(t *testing.T, target string) int {
	t.Helper()
	resp, err := http.Get(target)
	if !assert.NoError(t, err) {
		return 0
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	return resp.StatusCode
}

func TestNewOAuth2Config(t *testing.T) {
	cfg := NewOAuth2Config("id", "secret", "http://localhost:8085/callback")
	assert.Equal(t, "id", cfg.ClientID)
	assert.Equal(t, "secret", cfg.ClientSecret)
	assert.Equal(t, "http://localhost:8085/callback", cfg.RedirectURL)
	assert.Contains(t, cfg.Scopes, "https://www.googleapis.com/auth/youtube.force-ssl")
	assert.Contains(t, cfg.Scopes, AnalyticsScope)
	assert.Contains(t, cfg.Endpoint.TokenURL, "google")
}

func TestAuthorize(t *testing.T) {
	cfg := newTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token": "at", "refresh_token": "rt", "token_type": "Bearer", "expires_in": 3600}`)
	})
	ln := listen(t)
	cfg.RedirectURL = "http://" + ln.Addr().String() + "/oauth/callback"
	storage := NewFileTokenStorage(filepath.Join(t.TempDir(), "token.json"))
	out := &urlWriter{urls: make(chan string, 1)}

	var authURL *url.URL
	done := make(chan struct{})
	go func() {
		defer close(done)
		raw := <-out.urls
		u, err := url.Parse(raw)
		if !assert.NoError(t, err) {
			return
		}
		authURL = u
		state := u.Query().Get("state")

		assert.Equal(t, http.StatusBadRequest, get(t, cfg.RedirectURL+"?code=forged&state=wrong"))
		assert.Equal(t, http.StatusOK, get(t, cfg.RedirectURL+"?code=the-code&state="+url.QueryEscape(state)))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	token, err := Authorize(ctx, cfg, storage, ln, out, discardLogger())
	<-done
	require.NoError(t, err)
	assert.Equal(t, "at", token.AccessToken)
	assert.Equal(t, "rt", token.RefreshToken)

	require.NotNil(t, authURL)
	q := authURL.Query()
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.NotEmpty(t, q.Get("state"))
	assert.Contains(t, q.Get("scope"), AnalyticsScope)

	saved, err := storage.Load()
	require.NoError(t, err)
	assert.Equal(t, "rt", saved.RefreshToken)
}

func TestAuthorizeDenied(t *testing.T) {
	cfg := newTokenServer(t, func(http.ResponseWriter, *http.Request) {
		t.Error("token endpoint must not be called")
	})
	ln := listen(t)
	cfg.RedirectURL = "http://" + ln.Addr().String() + "/callback"
	out := &urlWriter{urls: make(chan string, 1)}

	go func() {
		<-out.urls
		get(t, cfg.RedirectURL+"?error=access_denied")
	}()

	_, err := Authorize(context.Background(), cfg, NewFileTokenStorage(filepath.Join(t.TempDir(), "token.json")), ln, out, discardLogger())
	require.EqualError(t, err, "authorization denied: access_denied")
}

func TestAuthorizeCanceled(t *testing.T) {
	cfg := NewOAuth2Config("id", "secret", "http://localhost/callback")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Authorize(ctx, cfg, NewFileTokenStorage(filepath.Join(t.TempDir(), "token.json")), listen(t), io.Discard, discardLogger())
	require.ErrorIs(t, err, context.Canceled)
}

func TestCallbackPath(t *testing.T) {
	assert.Equal(t, "/callback", callbackPath("http://localhost:8085/callback"))
	assert.Equal(t, "/oauth2/return", callbackPath("http://localhost:8085/oauth2/return"))
	assert.Equal(t, "/callback", callbackPath("http://localhost:8085"))
	assert.Equal(t, "/callback", callbackPath("http://localhost:8085/"))
	assert.Equal(t, "/callback", callbackPath("::not a url"))
}
