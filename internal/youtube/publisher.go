package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const uploadChunkSize = 1024 * 1024

// Publisher performs the authorised write operations that go through the
// generated YouTube client: resumable uploads and the authorised-channel check.
type Publisher struct {
	service *youtube.Service
	logger  *slog.Logger
}

// NewPublisher creates a Publisher on top of an authorised HTTP client.
// A non-empty endpoint overrides the API base URL.
func NewPublisher(ctx context.Context, httpClient *http.Client, endpoint string, logger *slog.Logger) (*Publisher, error) {
	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}

	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube service: %w", err)
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Publisher{service: service, logger: logger}, nil
}

// ValidateAuth fetches the authorised user's channel and returns its title.
func (p *Publisher) ValidateAuth(ctx context.Context) (string, error) {
	resp, err := p.service.Channels.List([]string{"snippet"}).Mine(true).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("auth validation failed: %w", describe(err))
	}

	if len(resp.Items) == 0 || resp.Items[0].Snippet == nil {
		return "", errors.New("no channel found for authenticated user")
	}

	return resp.Items[0].Snippet.Title, nil
}

// Upload describes a video file and its metadata.
type Upload struct {
	Path              string
	MimeType          string
	Title             string
	Description       string
	PrivacyStatus     string
	Tags              []string
	CategoryID        string
	Language          string
	NotifySubscribers bool
	MadeForKids       bool
	Latitude          *float64
	Longitude         *float64
}

// Upload sends the file in 1 MiB chunks and returns the new video ID.
func (p *Publisher) Upload(ctx context.Context, u Upload) (string, error) {
	file, err := os.Open(u.Path)
	if err != nil {
		return "", fmt.Errorf("failed to open video file: %w", err)
	}
	defer file.Close()

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:           u.Title,
			Description:     u.Description,
			Tags:            u.Tags,
			CategoryId:      u.CategoryID,
			DefaultLanguage: u.Language,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           u.PrivacyStatus,
			SelfDeclaredMadeForKids: u.MadeForKids,
			Embeddable:              true,
			PublicStatsViewable:     true,
			ForceSendFields:         []string{"SelfDeclaredMadeForKids"},
		},
	}
	parts := []string{"snippet", "status"}

	if u.Latitude != nil && u.Longitude != nil {
		video.RecordingDetails = &youtube.VideoRecordingDetails{
			Location: &youtube.GeoPoint{
				Latitude:        *u.Latitude,
				Longitude:       *u.Longitude,
				ForceSendFields: []string{"Latitude", "Longitude"},
			},
		}
		parts = append(parts, "recordingDetails")
	}

	mediaOpts := []googleapi.MediaOption{googleapi.ChunkSize(uploadChunkSize)}
	if u.MimeType != "" {
		mediaOpts = append(mediaOpts, googleapi.ContentType(u.MimeType))
	}

	p.logger.Info("starting upload", "path", u.Path, "title", u.Title)

	call := p.service.Videos.Insert(parts, video).
		NotifySubscribers(u.NotifySubscribers).
		Media(file, mediaOpts...).
		ProgressUpdater(func(current, total int64) {
			if total > 0 {
				p.logger.Debug("upload progress", "percent", current*100/total)
			}
		}).
		Context(ctx)

	resp, err := call.Do()
	if err != nil {
		return "", describe(err)
	}
	if resp.Id == "" {
		return "", errors.New("Video upload failed. No video ID in the response.")
	}

	p.logger.Info("upload complete", "video_id", resp.Id)
	return resp.Id, nil
}

// describe replaces a googleapi error with its upstream message.
func describe(err error) error {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		msg := gErr.Message
		if msg == "" {
			msg = http.StatusText(gErr.Code)
		}
		return &APIError{StatusCode: gErr.Code, Message: msg}
	}
	return err
}
