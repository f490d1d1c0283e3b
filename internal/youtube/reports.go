package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
	"google.golang.org/api/youtubeanalytics/v2"
)

// ErrCaptionForbidden is returned by Caption on HTTP 403.
var ErrCaptionForbidden = errors.New("Access denied. You may not have permission to access this caption track.")

// ReportQuery selects one YouTube Analytics report.
type ReportQuery struct {
	IDs        string
	StartDate  string
	EndDate    string
	Metrics    string
	Dimensions string
	Sort       string
	MaxResults int64
}

// authorised returns an HTTP client that sends token as a bearer credential
// and keeps the client's timeout and transport.
func (c *Client) authorised(token string) *http.Client {
	return &http.Client{
		Timeout: c.httpClient.Timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   c.httpClient.Transport,
		},
	}
}

// Analytics runs a YouTube Analytics report query. It is authorised by the
// bearer token alone.
func (c *Client) Analytics(ctx context.Context, q ReportQuery, token string) (*youtubeanalytics.QueryResponse, error) {
	service, err := youtubeanalytics.NewService(ctx,
		option.WithHTTPClient(c.authorised(token)),
		option.WithEndpoint(c.analyticsURL),
	)
	if err != nil {
		return nil, &RequestError{Err: fmt.Errorf("failed to create analytics service: %w", err)}
	}

	call := service.Reports.Query().
		Ids(q.IDs).
		StartDate(q.StartDate).
		EndDate(q.EndDate).
		Metrics(q.Metrics)
	if q.Dimensions != "" {
		call = call.Dimensions(q.Dimensions)
	}
	if q.Sort != "" {
		call = call.Sort(q.Sort)
	}
	if q.MaxResults > 0 {
		call = call.MaxResults(q.MaxResults)
	}

	c.logger.Debug("youtube request", "method", http.MethodGet, "endpoint", "reports")
	resp, err := call.Context(ctx).Do()
	if err != nil {
		c.logger.Warn("youtube request failed", "endpoint", "reports", "error", err)
		return nil, apiError(c.analyticsURL, err)
	}
	return resp, nil
}

// Caption downloads the body of a caption track. srt and vtt are requested
// as such; any other format returns the track in its stored format.
func (c *Client) Caption(ctx context.Context, captionID, format, token string) (string, error) {
	service, err := youtube.NewService(ctx,
		option.WithHTTPClient(c.authorised(token)),
		option.WithEndpoint(c.captionsURL),
	)
	if err != nil {
		return "", &RequestError{Err: fmt.Errorf("failed to create youtube service: %w", err)}
	}

	call := service.Captions.Download(captionID)
	if format == "srt" || format == "vtt" {
		call = call.Tfmt(format)
	}

	resp, err := call.Context(ctx).Download()
	if err != nil {
		var gErr *googleapi.Error
		if errors.As(err, &gErr) && gErr.Code == http.StatusForbidden {
			return "", ErrCaptionForbidden
		}
		return "", apiError(c.captionsURL, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("youtube response", "endpoint", "captions", "status", resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &RequestError{Err: err}
	}
	return string(data), nil
}

// apiError maps generated-client errors onto the request helper's error
// types so callers see the same messages either way.
func apiError(displayURL string, err error) error {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return &APIError{StatusCode: gErr.Code, Message: gErr.Message}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &RequestError{Err: urlErr.Err}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return &DecodeError{URL: displayURL, Err: err}
	}
	return &RequestError{Err: err}
}
