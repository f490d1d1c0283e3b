package auth

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
)

// TokenStorage persists OAuth2 tokens between runs.
type TokenStorage interface {
	Load() (*oauth2.Token, error)
	Save(token *oauth2.Token) error
}

// FileTokenStorage keeps the token as JSON in a single file.
type FileTokenStorage struct {
	path string
}

// NewFileTokenStorage creates a token storage backed by the file at path.
func NewFileTokenStorage(path string) *FileTokenStorage {
	return &FileTokenStorage{path: path}
}

// Path returns the token file location.
func (f *FileTokenStorage) Path() string {
	return f.path
}

// DefaultTokenPath returns ~/.config/youtube-data-mcp/token.json, or the
// platform equivalent.
func DefaultTokenPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "token.json"
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "youtube-data-mcp", "token.json")
}

// Load reads the token from the file.
func (f *FileTokenStorage) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token: %w", err)
	}

	return &token, nil
}

// Save writes the token through a temporary file and a rename so a crash
// never leaves a truncated token behind.
func (f *FileTokenStorage) Save(token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	tmpPath := f.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write temporary token file: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		return fmt.Errorf("failed to rename token file: %w", err)
	}

	return nil
}

// PersistingTokenSource saves every token the base source hands out for the
// first time, so refreshed access tokens survive restarts.
type PersistingTokenSource struct {
	base      oauth2.TokenSource
	storage   TokenStorage
	logger    *slog.Logger
	mu        sync.Mutex
	lastToken *oauth2.Token
}

// NewPersistingTokenSource wraps base so new tokens are saved to storage.
func NewPersistingTokenSource(base oauth2.TokenSource, storage TokenStorage, logger *slog.Logger) *PersistingTokenSource {
	return &PersistingTokenSource{
		base:    base,
		storage: storage,
		logger:  logger,
	}
}

// Token returns a valid token, refreshing it if necessary.
func (p *PersistingTokenSource) Token() (*oauth2.Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	token, err := p.base.Token()
	if err != nil {
		return nil, err
	}

	if p.lastToken == nil || p.lastToken.AccessToken != token.AccessToken {
		// A failed save still leaves a usable token for this process.
		if err := p.storage.Save(token); err != nil {
			p.logger.Error("failed to persist refreshed token", "error", err)
		} else {
			p.logger.Debug("persisted refreshed token")
		}
		p.lastToken = token
	}

	return token, nil
}

var (
	_ TokenStorage       = (*FileTokenStorage)(nil)
	_ oauth2.TokenSource = (*PersistingTokenSource)(nil)
)
