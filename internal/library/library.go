package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/sptdl/internal/models"
)

// ExistingStems lists the files in dir, following symlinks, and returns their names with the extension stripped.
//
// A missing directory yields an empty set.
func ExistingStems(dir string) (map[string]struct{}, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]struct{}{}, nil
		}
		return nil, fmt.Errorf("failed to read destination directory: %w", err)
	}

	stems := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if !isFile(dir, entry) {
			continue
		}
		stems[StripExtension(entry.Name())] = struct{}{}
	}

	return stems, nil
}

func isFile(dir string, entry os.DirEntry) bool {
	if entry.Type()&os.ModeSymlink == 0 {
		return entry.Type().IsRegular()
	}
	info, err := os.Stat(filepath.Join(dir, entry.Name()))
	return err == nil && info.Mode().IsRegular()
}

// FilterPending builds a query for every track and drops those whose stem already exists in dir.
//
// Input order is preserved.
func FilterPending(tracks []models.Track, dir string) ([]models.Query, error) {
	stems, err := ExistingStems(dir)
	if err != nil {
		return nil, err
	}

	return Pending(tracks, stems), nil
}

// Pending is the pure half of [FilterPending].
func Pending(tracks []models.Track, existing map[string]struct{}) []models.Query {
	pending := make([]models.Query, 0, len(tracks))
	for _, track := range tracks {
		query := NewQuery(track)
		if _, found := existing[query.Stem]; found {
			continue
		}
		pending = append(pending, query)
	}
	return pending
}
