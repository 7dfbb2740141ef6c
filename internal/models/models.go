// package models defines the data model for the download pipeline
package models

import (
	"fmt"
	"strings"
)

// YouTubeURL is the origin search result locators are resolved against.
const YouTubeURL = "https://www.youtube.com"

// Track is one song entry from a playlist or album.
type Track struct {
	Title   string
	Artists []string // provider order
}

// Query is the canonical search text for a [Track] and the file stem derived from it.
type Query struct {
	Text string
	Stem string
}

// SearchResult is a ranked hit returned by the search provider.
type SearchResult struct {
	VideoID   string
	Title     string
	Channel   string
	Duration  string
	URLSuffix string // e.g. /watch?v=dQw4w9WgXcQ
}

// Locator returns the absolute URL of the result.
func (r SearchResult) Locator() string {
	if r.URLSuffix != "" {
		return YouTubeURL + "/" + strings.TrimPrefix(r.URLSuffix, "/")
	}
	return fmt.Sprintf("%s/watch?v=%s", YouTubeURL, r.VideoID)
}

// StreamVariant is an audio-only stream of a video.
type StreamVariant struct {
	VideoID       string
	Itag          int
	MimeType      string // e.g. audio/mp4; codecs="mp4a.40.2"
	Bitrate       int
	ContentLength int64
}

// Extension maps the MIME subtype to a file extension without the leading dot.
func (v StreamVariant) Extension() string {
	mime := v.MimeType
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	mime = strings.TrimSpace(mime)

	_, subtype, ok := strings.Cut(mime, "/")
	if !ok || subtype == "" {
		return "audio"
	}

	switch subtype {
	case "mp4":
		return "m4a"
	case "mpeg":
		return "mp3"
	default:
		return subtype
	}
}

// SourceKind distinguishes playlists from albums.
type SourceKind int

const (
	Album SourceKind = iota
	Playlist
)

func (k SourceKind) String() string {
	switch k {
	case Playlist:
		return "playlist"
	case Album:
		return "album"
	default:
		return ""
	}
}

// Source identifies the collection to list.
type Source struct {
	Kind SourceKind
	ID   string
	Raw  string
}
