// Package tasks turns a Spotify source into audio files with real-time progress reporting.
//
// # Core Operations
//
// The [Engine] interface defines three operations:
//
//  1. [Engine.Pending] : List and filter
//     - Lists every track of the playlist or album
//     - Builds the "<title> By <artist> And <artist>" query and its sanitized file stem
//     - Drops tracks whose stem matches a file already in the destination
//
//  2. [Engine.DownloadAll] : Fetch loop
//     - Searches each query (first result only)
//     - Resolves the audio-only streams and downloads the last one
//     - Retries failed tracks up to the attempt bound, then skips them
//     - Returns a [FetchReport] with one [models.Outcome] per query
//
//  3. [Engine.Run] : Pending followed by DownloadAll
//
// # Progress Reporting
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Concurrency
//
// Tracks are fetched one at a time unless [EngineOpts.Workers] is above one, in which case an errgroup bounds the
// number of in-flight tracks. Each track keeps its own retry sequence and outcomes keep input order.
package tasks
