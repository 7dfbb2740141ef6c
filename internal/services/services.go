// package services defines the provider interfaces consumed by the download pipeline
//
// Spotify (track metadata), YouTube (search, audio streams)
package services

import (
	"context"

	"github.com/desertthunder/sptdl/internal/models"
)

// Service is implemented by every provider client.
type Service interface {
	// Name returns the name of the service (e.g., "Spotify", "YouTube")
	Name() string
}

// TrackLister retrieves the ordered track list of a playlist or album.
type TrackLister interface {
	Service

	// ListTracks returns every track of the source in provider order.
	ListTracks(ctx context.Context, source models.Source) ([]models.Track, error)
}

// Searcher finds media candidates for a free-text query.
type Searcher interface {
	Service

	// Search returns at most limit ranked results. No results is not an error.
	Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error)
}

// MediaDownloader resolves a locator to audio-only streams and writes a chosen stream to disk.
type MediaDownloader interface {
	Service

	// AudioStreams lists the audio-only variants of the media at locator, in provider order.
	AudioStreams(ctx context.Context, locator string) ([]models.StreamVariant, error)

	// Download writes the variant to dir as "<stem>.<ext>" and returns the written path.
	Download(ctx context.Context, variant models.StreamVariant, dir, stem string) (string, error)
}
