// Package models defines the typed records exchanged between the track lister, the filter and the fetch loop.
//
// Provider payloads are decoded into these types once, at the service boundary:
//   - [Track] : title and ordered artist names from Spotify
//   - [Query] : the "<title> By <artists>" search text and its sanitized file stem
//   - [SearchResult] : one ranked YouTube search hit
//   - [StreamVariant] : one audio-only stream of a resolved video
//   - [Source] : a parsed playlist or album identifier
//   - [Outcome] : the per-track result of the fetch loop
package models
