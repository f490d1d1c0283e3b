package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL      = "https://youtube.googleapis.com/youtube/v3"
	// DefaultAnalyticsURL and DefaultCaptionsURL are the service roots of the
	// generated Analytics and Data API clients.
	DefaultAnalyticsURL = "https://youtubeanalytics.googleapis.com/"
	DefaultCaptionsURL  = "https://youtube.googleapis.com/"

	userAgent      = "youtube-mcp-server/1.0"
	defaultTimeout = 30 * time.Second
)

// Object is a decoded JSON object as returned by the REST API.
type Object = map[string]any

// ErrNoAPIKey is returned before any network call when no API key is configured.
var ErrNoAPIKey = errors.New("YouTube API key not available")

// APIError is a non-2xx response. Message holds the upstream error.message
// when the body carried one.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP error %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// RequestError is a failure before any response was received.
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string { return "Request error: " + e.Err.Error() }
func (e *RequestError) Unwrap() error { return e.Err }

// DecodeError is a response body that is not valid JSON.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("Error parsing JSON from %s: %v", e.URL, e.Err)
}
func (e *DecodeError) Unwrap() error { return e.Err }

// Options configures a Client. Zero values fall back to the public endpoints
// and a 30 second timeout.
type Options struct {
	APIKey       string
	BaseURL      string
	AnalyticsURL string
	CaptionsURL  string
	Timeout      time.Duration
	HTTPClient   *http.Client
	Logger       *slog.Logger
}

// Client issues single-attempt requests against the YouTube REST endpoints.
type Client struct {
	httpClient   *http.Client
	apiKey       string
	baseURL      string
	analyticsURL string
	captionsURL  string
	logger       *slog.Logger
}

// NewClient creates a new REST client.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		httpClient:   httpClient,
		apiKey:       opts.APIKey,
		baseURL:      strings.TrimRight(orDefault(opts.BaseURL, DefaultBaseURL), "/"),
		analyticsURL: serviceRoot(opts.AnalyticsURL, DefaultAnalyticsURL),
		captionsURL:  serviceRoot(opts.CaptionsURL, DefaultCaptionsURL),
		logger:       logger,
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// serviceRoot returns a generated-client endpoint ending in a slash, which
// relative method paths resolve against.
func serviceRoot(v, def string) string {
	return strings.TrimRight(orDefault(v, def), "/") + "/"
}

// HasAPIKey reports whether an API key is configured.
func (c *Client) HasAPIKey() bool {
	return c.apiKey != ""
}

// Get calls GET <base>/<endpoint> with params plus the API key.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values) (Object, error) {
	if c.apiKey == "" {
		c.logger.Warn("youtube request without api key", "endpoint", endpoint)
		return nil, ErrNoAPIKey
	}

	target := c.baseURL + "/" + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, withParams(target, params, c.apiKey), nil)
	if err != nil {
		return nil, &RequestError{Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	return c.doJSON(req, target, endpoint)
}

// Post calls POST <base>/<endpoint> with a JSON body. A non-empty token is
// sent as a bearer Authorization header.
func (c *Client) Post(ctx context.Context, endpoint string, body any, params url.Values, token string) (Object, error) {
	if c.apiKey == "" {
		c.logger.Warn("youtube request without api key", "endpoint", endpoint)
		return nil, ErrNoAPIKey
	}

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, &RequestError{Err: err}
		}
		payload = bytes.NewReader(data)
	}

	target := c.baseURL + "/" + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, withParams(target, params, c.apiKey), payload)
	if err != nil {
		return nil, &RequestError{Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.doJSON(req, target, endpoint)
}

func (c *Client) doJSON(req *http.Request, displayURL, endpoint string) (Object, error) {
	c.logger.Debug("youtube request", "method", req.Method, "endpoint", endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("youtube request failed", "endpoint", endpoint, "error", err)
		return nil, &RequestError{Err: unwrapURLError(err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{Err: err}
	}

	c.logger.Debug("youtube response", "endpoint", endpoint, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var envelope struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(data, &envelope) == nil {
			apiErr.Message = envelope.Error.Message
		}
		return nil, apiErr
	}

	var obj Object
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, &DecodeError{URL: displayURL, Err: err}
	}
	if obj == nil {
		obj = Object{}
	}
	return obj, nil
}

// withParams encodes params onto target, adding the key when non-empty.
// The caller's values are not modified.
func withParams(target string, params url.Values, key string) string {
	q := url.Values{}
	for k, v := range params {
		q[k] = append([]string(nil), v...)
	}
	if key != "" {
		q.Set("key", key)
	}
	if len(q) == 0 {
		return target
	}
	return target + "?" + q.Encode()
}

// unwrapURLError strips the request URL from transport errors so the API key
// never leaks into user-facing messages.
func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}
