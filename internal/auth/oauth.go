package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/youtube/v3"
)

// AnalyticsScope grants read access to YouTube Analytics reports.
const AnalyticsScope = "https://www.googleapis.com/auth/yt-analytics.readonly"

// Scopes cover the Data API write operations (live chat, broadcasts,
// captions, uploads) and Analytics reports.
var Scopes = []string{youtube.YoutubeForceSslScope, AnalyticsScope}

// NewOAuth2Config creates an OAuth2 configuration for the YouTube APIs.
func NewOAuth2Config(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     google.Endpoint,
		Scopes:       Scopes,
	}
}

// Authorize runs the browser consent flow. The consent URL is written to out,
// the authorization code is received on ln and exchanged for a token, which
// is saved to storage before it is returned.
func Authorize(ctx context.Context, cfg *oauth2.Config, storage TokenStorage, ln net.Listener, out io.Writer, logger *slog.Logger) (*oauth2.Token, error) {
	state, err := newState()
	if err != nil {
		return nil, err
	}

	authURL := cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"), // force a refresh token on re-auth
	)
	fmt.Fprintf(out, "\nVisit this URL to authorize:\n%s\n\n", authURL)

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.Handle(callbackPath(cfg.RedirectURL), callbackHandler(state, codeCh, errCh))

	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("callback server failed: %w", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shut down callback server", "error", err)
		}
	}()

	logger.Info("callback server started", "addr", ln.Addr().String())

	var code string
	select {
	case code = <-codeCh:
		logger.Info("received authorization code")
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}
	if token.RefreshToken == "" {
		logger.Warn("no refresh token returned; revoke the app's access and authorize again to obtain one")
	}

	if err := storage.Save(token); err != nil {
		return nil, fmt.Errorf("failed to save token: %w", err)
	}
	logger.Info("token saved")

	return token, nil
}

func callbackHandler(state string, codeCh chan<- string, errCh chan<- error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if msg := q.Get("error"); msg != "" {
			send(errCh, fmt.Errorf("authorization denied: %s", msg))
			http.Error(w, "Authorization failed: "+msg, http.StatusBadRequest)
			return
		}
		if q.Get("state") != state {
			http.Error(w, "Authorization failed: state mismatch", http.StatusBadRequest)
			return
		}
		code := q.Get("code")
		if code == "" {
			send(errCh, errors.New("no authorization code in callback"))
			http.Error(w, "Authorization failed: no code", http.StatusBadRequest)
			return
		}
		send(codeCh, code)
		fmt.Fprint(w, "Authorization successful! You can close this window.")
	})
}

// send delivers v unless the buffered channel already holds a value.
func send[T any](ch chan<- T, v T) {
	select {
	case ch <- v:
	default:
	}
}

// callbackPath is the path component of the redirect URL, "/callback" when
// it has none.
func callbackPath(redirectURL string) string {
	u, err := url.Parse(redirectURL)
	if err != nil || u.Path == "" || u.Path == "/" {
		return "/callback"
	}
	return u.Path
}

func newState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate oauth state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
