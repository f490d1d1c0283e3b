package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"
)

// ErrNoCredentials is returned when neither a refreshable token file nor a
// static access token is configured.
var ErrNoCredentials = errors.New("OAuth credentials not available")

// CredentialsOptions lists the places an access token can come from.
type CredentialsOptions struct {
	// Config is nil when the OAuth client ID or secret is not set.
	Config *oauth2.Config
	// Storage holds the token saved by the consent flow. May be nil.
	Storage TokenStorage
	// StaticToken is a bare access token, used as is and never refreshed.
	StaticToken string
	Logger      *slog.Logger
}

// Credentials hands out OAuth access tokens for the authorised channel.
type Credentials struct {
	source oauth2.TokenSource
	kind   string
}

// NewCredentials picks a token source. A stored token carrying a refresh
// token wins over the static token because it keeps working after the
// access token expires.
func NewCredentials(ctx context.Context, opts CredentialsOptions) *Credentials {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if opts.Config != nil && opts.Storage != nil {
		token, err := opts.Storage.Load()
		switch {
		case err != nil:
			logger.Debug("no stored oauth token", "error", err)
		case token.RefreshToken == "":
			logger.Warn("stored oauth token has no refresh token, ignoring it")
		default:
			base := opts.Config.TokenSource(ctx, token)
			return &Credentials{
				source: NewPersistingTokenSource(base, opts.Storage, logger),
				kind:   "token file",
			}
		}
	}

	if opts.StaticToken != "" {
		return &Credentials{
			source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.StaticToken, TokenType: "Bearer"}),
			kind:   "static token",
		}
	}

	return &Credentials{kind: "none"}
}

// Available reports whether any token source is configured.
func (c *Credentials) Available() bool {
	return c.source != nil
}

// Kind names the token source for logging.
func (c *Credentials) Kind() string {
	return c.kind
}

// AccessToken returns a current access token, refreshing it when needed.
func (c *Credentials) AccessToken(ctx context.Context) (string, error) {
	if c.source == nil {
		return "", ErrNoCredentials
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	token, err := c.source.Token()
	if err != nil {
		return "", err
	}
	return token.AccessToken, nil
}

// HTTPClient returns a client that authorises every request with the
// current access token.
func (c *Credentials) HTTPClient(ctx context.Context) (*http.Client, error) {
	if c.source == nil {
		return nil, ErrNoCredentials
	}
	return oauth2.NewClient(ctx, c.source), nil
}
