// YouTube stream resolver implementation of [MediaDownloader]
package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/desertthunder/sptdl/internal/library"
	"github.com/desertthunder/sptdl/internal/models"
	"github.com/desertthunder/sptdl/internal/shared"
	"github.com/kkdai/youtube/v2"
)

// MediaService resolves and downloads audio streams with kkdai/youtube.
//
// Resolved videos are kept in memory for the lifetime of the service so Download can reuse the
// metadata fetched by AudioStreams.
type MediaService struct {
	client *youtube.Client

	mu     sync.Mutex
	videos map[string]*youtube.Video
}

// NewMediaService creates a media service. A nil client uses [http.DefaultClient].
func NewMediaService(client *http.Client) *MediaService {
	if client == nil {
		client = http.DefaultClient
	}
	return &MediaService{
		client: &youtube.Client{HTTPClient: client},
		videos: make(map[string]*youtube.Video),
	}
}

// Name returns the service name.
func (m *MediaService) Name() string {
	return "YouTube Media"
}

// AudioStreams resolves locator and returns its audio-only formats in provider order.
func (m *MediaService) AudioStreams(ctx context.Context, locator string) ([]models.StreamVariant, error) {
	video, err := m.client.GetVideoContext(ctx, locator)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %s: %v", shared.ErrAPIRequest, locator, err)
	}

	m.mu.Lock()
	m.videos[video.ID] = video
	m.mu.Unlock()

	return audioVariants(video), nil
}

// Download streams variant into dir as "<stem>.<ext>".
func (m *MediaService) Download(ctx context.Context, variant models.StreamVariant, dir, stem string) (string, error) {
	video, err := m.video(ctx, variant.VideoID)
	if err != nil {
		return "", err
	}

	formats := video.Formats.Itag(variant.Itag)
	if len(formats) == 0 {
		return "", fmt.Errorf("%w: itag %d not found for %s", shared.ErrNoAudioStream, variant.Itag, variant.VideoID)
	}

	stream, _, err := m.client.GetStreamContext(ctx, video, &formats[0])
	if err != nil {
		return "", fmt.Errorf("%w: open stream: %v", shared.ErrAPIRequest, err)
	}
	defer stream.Close()

	return library.WriteTrack(dir, stem, variant.Extension(), stream)
}

func (m *MediaService) video(ctx context.Context, id string) (*youtube.Video, error) {
	m.mu.Lock()
	video, ok := m.videos[id]
	m.mu.Unlock()
	if ok {
		return video, nil
	}

	video, err := m.client.GetVideoContext(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %s: %v", shared.ErrAPIRequest, id, err)
	}

	m.mu.Lock()
	m.videos[id] = video
	m.mu.Unlock()
	return video, nil
}

func audioVariants(video *youtube.Video) []models.StreamVariant {
	variants := make([]models.StreamVariant, 0, len(video.Formats))
	for _, f := range video.Formats {
		if !strings.HasPrefix(f.MimeType, "audio/") {
			continue
		}
		variants = append(variants, models.StreamVariant{
			VideoID:       video.ID,
			Itag:          f.ItagNo,
			MimeType:      f.MimeType,
			Bitrate:       f.Bitrate,
			ContentLength: f.ContentLength,
		})
	}
	return variants
}
