// Package library turns tracks into search queries and filters out tracks already present in the destination folder.
//
// A track is considered downloaded when a regular file in the destination has a name whose final extension segment,
// once removed, equals the track's sanitized stem. Only the last "." is treated as the extension separator, so
// "Song.feat. X By Y.webm" and "Song By Y.opus" both compare correctly regardless of extension length.
package library
