package library

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/desertthunder/sptdl/internal/shared"
)

// WriteTrack copies r into dir/<stem>.<ext>, creating dir when needed.
//
// Data is staged in a hidden temporary file in dir and renamed into place once fully written.
// A failed or cancelled copy leaves nothing behind.
func WriteTrack(dir, stem, ext string, r io.Reader) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create destination: %v", shared.ErrFilesystem, err)
	}

	tmp, err := os.CreateTemp(dir, ".sptdl-*.part")
	if err != nil {
		return "", fmt.Errorf("%w: create temp file: %v", shared.ErrFilesystem, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("copy stream: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("%w: close temp file: %v", shared.ErrFilesystem, err)
	}

	name := stem
	if ext != "" {
		name += "." + ext
	}
	path := filepath.Join(dir, name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("%w: rename temp file: %v", shared.ErrFilesystem, err)
	}

	return path, nil
}
