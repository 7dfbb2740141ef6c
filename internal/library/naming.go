package library

import (
	"fmt"
	"strings"

	"github.com/desertthunder/sptdl/internal/models"
)

// illegalChars are removed from search text to form a file stem.
const illegalChars = `\/*?:"<>|`

var stemReplacer = func() *strings.Replacer {
	pairs := make([]string, 0, 2*len(illegalChars))
	for _, c := range illegalChars {
		pairs = append(pairs, string(c), "")
	}
	return strings.NewReplacer(pairs...)
}()

// BuildQuery formats a track as "<title> By <artist1> And <artist2> ...".
func BuildQuery(track models.Track) string {
	return fmt.Sprintf("%s By %s", track.Title, strings.Join(track.Artists, " And "))
}

// Sanitize removes the characters that are illegal in file names and nothing else.
func Sanitize(s string) string {
	return stemReplacer.Replace(s)
}

// NewQuery builds the search text and file stem for a track.
func NewQuery(track models.Track) models.Query {
	text := BuildQuery(track)
	return models.Query{Text: text, Stem: Sanitize(text)}
}

// StripExtension removes the last "." and everything after it.
func StripExtension(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[:i]
	}
	return name
}
