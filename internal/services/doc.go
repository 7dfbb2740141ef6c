// Package services defines the provider interfaces used by the download pipeline and implements them for Spotify and
// YouTube.
//
// # Track Lister
//
// [SpotifyService] implements [TrackLister] on top of github.com/zmb3/spotify/v2. It authenticates with the OAuth2
// client-credentials grant, eagerly, so bad credentials fail before any work starts. Playlists are paged through the
// "next" cursor until exhausted; albums are fetched with a single request.
//
// # Search
//
// [YouTubeService] implements [Searcher] by requesting the YouTube results page and decoding the embedded
// ytInitialData document with gjson. Requests are throttled with a token bucket.
//
// # Media
//
// [MediaService] implements [MediaDownloader] with github.com/kkdai/youtube/v2. Only formats whose MIME type is
// audio/* are offered. Downloads go through [library.WriteTrack], which stages a temporary file in the destination
// and renames it into place.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrAuthFailed] : client-credentials exchange failed
//   - [shared.ErrNotAuthenticated] : ListTracks called before Authenticate
//   - [shared.ErrAPIRequest] : HTTP request failed or returned a non-2xx status
//   - [shared.ErrInvalidInput] : unparseable Spotify URL
//   - [shared.ErrNoAudioStream] : requested stream no longer present
//   - [shared.ErrFilesystem] : destination could not be written
package services
