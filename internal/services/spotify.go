// Spotify Web API implementation of [TrackLister]
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sptdl/internal/models"
	"github.com/desertthunder/sptdl/internal/shared"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	spotifyBaseURL = "https://api.spotify.com/v1/"
	albumPageLimit = 50
)

var spotifyID = regexp.MustCompile(`^[0-9A-Za-z]+$`)

// SpotifyService lists playlist and album tracks with an app-only client-credentials token.
type SpotifyService struct {
	clientID     string
	clientSecret string
	tokenURL     string
	apiURL       string
	httpClient   *http.Client
	client       *spotify.Client
	logger       *log.Logger
}

// NewSpotifyService creates a new Spotify service from a credential map holding client_id and client_secret.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id in credentials", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret in credentials", shared.ErrMissingCredentials)
	}

	return &SpotifyService{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     spotifyauth.TokenURL,
		apiURL:       spotifyBaseURL,
		httpClient:   http.DefaultClient,
		logger:       shared.NewLogger(nil),
	}, nil
}

// SetLogger replaces the service logger.
func (s *SpotifyService) SetLogger(l *log.Logger) {
	if l != nil {
		s.logger = l
	}
}

// Name returns "Spotify".
func (s *SpotifyService) Name() string {
	return "Spotify"
}

// Authenticate exchanges the client credentials for an access token and builds the API client.
//
// The token is refreshed transparently for the lifetime of ctx.
func (s *SpotifyService) Authenticate(ctx context.Context) error {
	cfg := &clientcredentials.Config{
		ClientID:     s.clientID,
		ClientSecret: s.clientSecret,
		TokenURL:     s.tokenURL,
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	token, err := cfg.Token(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	httpClient := oauth2.NewClient(ctx, oauth2.ReuseTokenSource(token, cfg.TokenSource(ctx)))
	s.client = spotify.New(httpClient, spotify.WithBaseURL(s.apiURL))
	s.logger.Debug("authenticated with client credentials", "expires", token.Expiry)
	return nil
}

// ListTracks returns every track of the source in provider order.
func (s *SpotifyService) ListTracks(ctx context.Context, source models.Source) ([]models.Track, error) {
	if s.client == nil {
		return nil, fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	switch source.Kind {
	case models.Playlist:
		return s.playlistTracks(ctx, spotify.ID(source.ID))
	default:
		return s.albumTracks(ctx, spotify.ID(source.ID))
	}
}

func (s *SpotifyService) playlistTracks(ctx context.Context, id spotify.ID) ([]models.Track, error) {
	page, err := s.client.GetPlaylistItems(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get playlist %s: %v", shared.ErrAPIRequest, id, err)
	}

	tracks := make([]models.Track, 0, page.Total)
	for pages := 1; ; pages++ {
		for _, item := range page.Items {
			if item.Track.Track == nil {
				continue
			}
			tracks = append(tracks, newTrack(item.Track.Track.SimpleTrack))
		}

		err := s.client.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			s.logger.Debug("listed playlist", "id", id, "pages", pages, "tracks", len(tracks))
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: failed to get playlist %s page %d: %v", shared.ErrAPIRequest, id, pages+1, err)
		}
	}

	return tracks, nil
}

// albumTracks reads a single page. Longer albums are truncated.
func (s *SpotifyService) albumTracks(ctx context.Context, id spotify.ID) ([]models.Track, error) {
	page, err := s.client.GetAlbumTracks(ctx, id, spotify.Limit(albumPageLimit))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get album %s: %v", shared.ErrAPIRequest, id, err)
	}

	if page.Next != "" {
		s.logger.Warn("album has more tracks than a single page, list truncated",
			"id", id, "total", page.Total, "listed", len(page.Tracks))
	}

	tracks := make([]models.Track, 0, len(page.Tracks))
	for _, t := range page.Tracks {
		tracks = append(tracks, newTrack(t))
	}
	return tracks, nil
}

func newTrack(t spotify.SimpleTrack) models.Track {
	artists := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		artists = append(artists, a.Name)
	}
	return models.Track{Title: t.Name, Artists: artists}
}

// ParseSource classifies a Spotify URL, URI or bare ID.
//
// Anything containing "playlist" is a playlist, everything else an album.
func ParseSource(raw string) (models.Source, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.Source{}, fmt.Errorf("%w: empty spotify url", shared.ErrInvalidInput)
	}

	kind := models.Album
	if strings.Contains(raw, "playlist") {
		kind = models.Playlist
	}

	if !strings.Contains(raw, "://") && strings.HasPrefix(raw, "open.spotify.com/") {
		raw = "https://" + raw
	}

	id := raw
	switch {
	case strings.HasPrefix(raw, "spotify:"):
		parts := strings.Split(raw, ":")
		id = parts[len(parts)-1]
	case strings.Contains(raw, "://"):
		u, err := url.Parse(raw)
		if err != nil {
			return models.Source{}, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		}
		segments := strings.Split(strings.Trim(u.Path, "/"), "/")
		id = ""
		if len(segments) >= 2 {
			id = segments[len(segments)-1]
		}
	}

	if !spotifyID.MatchString(id) {
		return models.Source{}, fmt.Errorf("%w: no %s id in %q", shared.ErrInvalidInput, kind, raw)
	}

	return models.Source{Kind: kind, ID: id, Raw: raw}, nil
}
