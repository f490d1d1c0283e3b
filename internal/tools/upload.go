package tools

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gxravel/youtube-data-mcp/internal/youtube"
)

const maxUploadSize = 128 << 30

var uploadMimeTypes = []string{"video/mp4", "video/x-m4v", "video/quicktime", "video/mpeg", "video/webm", "video/x-flv", "video/3gpp"}

var videoExtensions = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".mov":  "video/quicktime",
	".qt":   "video/quicktime",
	".mpeg": "video/mpeg",
	".mpg":  "video/mpeg",
	".mpe":  "video/mpeg",
	".webm": "video/webm",
	".flv":  "video/x-flv",
	".3gp":  "video/3gpp",
	".avi":  "video/x-msvideo",
	".wmv":  "video/x-ms-wmv",
}

// videoMimeType guesses the media type from the file extension. Unknown
// extensions are sent as MP4.
func videoMimeType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := videoExtensions[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		t, _, _ = strings.Cut(t, ";")
		return strings.TrimSpace(t)
	}
	return "video/mp4"
}

type uploadVideoInput struct {
	FilePath          string   `json:"file_path" jsonschema:"Local path to the video file"`
	Title             string   `json:"title" jsonschema:"Title of the video"`
	Description       string   `json:"description" jsonschema:"Description of the video"`
	PrivacyStatus     string   `json:"privacy_status,omitempty" jsonschema:"private, public or unlisted (default private)"`
	Tags              []string `json:"tags,omitempty" jsonschema:"Tags for the video"`
	CategoryID        string   `json:"category_id,omitempty" jsonschema:"YouTube category ID (default 22, People & Blogs)"`
	NotifySubscribers bool     `json:"notify_subscribers,omitempty" jsonschema:"Notify subscribers about the upload (default true)"`
	Language          string   `json:"language,omitempty" jsonschema:"ISO 639-1 language code (default en)"`
	LocationLatitude  *float64 `json:"location_latitude,omitempty" jsonschema:"Latitude for geo-tagging"`
	LocationLongitude *float64 `json:"location_longitude,omitempty" jsonschema:"Longitude for geo-tagging"`
	MadeForKids       bool     `json:"made_for_kids,omitempty" jsonschema:"Whether the video is made for children"`
}

func (in *uploadVideoInput) setDefaults() {
	in.PrivacyStatus = "private"
	in.CategoryID = "22"
	in.NotifySubscribers = true
	in.Language = "en"
}

func uploadVideoTool(ts *toolset) (Tool, error) {
	return newTool(ts, Tool{
		Name:        "upload_video",
		Title:       "Upload video",
		Description: "Upload a local video file to the authorised channel with its metadata. Requires OAuth.",
	}, ts.uploadVideo)
}

func (ts *toolset) uploadVideo(ctx context.Context, in uploadVideoInput) Result {
	if in.FilePath == "" || in.Title == "" || in.Description == "" {
		return Fail("File path, title, and description are required.")
	}
	if !validPrivacy(in.PrivacyStatus) {
		return Fail(invalidPrivacy)
	}

	info, err := os.Stat(in.FilePath)
	if err != nil {
		return Failf("File not found: %s", in.FilePath)
	}
	if info.Size() > maxUploadSize {
		return Failf("File is too large. YouTube's maximum is 128GB, file is %.2fGB", float64(info.Size())/(1<<30))
	}

	mimeType := videoMimeType(in.FilePath)
	if !slices.Contains(uploadMimeTypes, mimeType) {
		return Failf("File type %s is not supported by YouTube. Supported types: %s", mimeType, strings.Join(uploadMimeTypes, ", "))
	}

	if !ts.yt.HasAPIKey() {
		return failErr(youtube.ErrNoAPIKey)
	}
	if _, ok := ts.oauthToken(ctx); !ok || ts.uploader == nil {
		return Fail(oauthRequired)
	}

	ts.logger.Info("uploading video", "path", in.FilePath, "size_mb", float64(info.Size())/(1<<20))

	videoID, err := ts.uploader.Upload(ctx, youtube.Upload{
		Path:              in.FilePath,
		MimeType:          mimeType,
		Title:             in.Title,
		Description:       in.Description,
		PrivacyStatus:     in.PrivacyStatus,
		Tags:              in.Tags,
		CategoryID:        in.CategoryID,
		Language:          in.Language,
		NotifySubscribers: in.NotifySubscribers,
		MadeForKids:       in.MadeForKids,
		Latitude:          in.LocationLatitude,
		Longitude:         in.LocationLongitude,
	})
	if err != nil {
		return Failf("Error during video upload: %v", err)
	}

	var b strings.Builder
	b.WriteString("Successfully uploaded video to YouTube!\n\n")
	b.WriteString("Video Details:\n")
	fmt.Fprintf(&b, "Title: %s\n", in.Title)
	fmt.Fprintf(&b, "Privacy Status: %s\n", in.PrivacyStatus)
	fmt.Fprintf(&b, "Video ID: %s\n\n", videoID)
	b.WriteString("Links:\n")
	fmt.Fprintf(&b, "Video URL: https://www.youtube.com/watch?v=%s\n", videoID)
	fmt.Fprintf(&b, "Edit in YouTube Studio: https://studio.youtube.com/video/%s/edit\n\n", videoID)
	b.WriteString("Important Notes:\n")
	b.WriteString("- YouTube may still be processing your video in different resolutions\n")
	b.WriteString("- Thumbnail generation and indexing might take some time\n")
	b.WriteString("- If set to 'public', the video is already visible to everyone\n")
	return OK(b.String())
}
