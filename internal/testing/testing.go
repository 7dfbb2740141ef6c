// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/sptdl/internal/library"
	"github.com/desertthunder/sptdl/internal/models"
)

// MockLister is a test double for [services.TrackLister]
type MockLister struct {
	Tracks []models.Track
	Err    error

	mu      sync.Mutex
	Sources []models.Source
}

func (m *MockLister) Name() string { return "mock lister" }

func (m *MockLister) ListTracks(ctx context.Context, source models.Source) ([]models.Track, error) {
	m.mu.Lock()
	m.Sources = append(m.Sources, source)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	return m.Tracks, nil
}

// MockSearcher is a test double for [services.Searcher].
//
// Queries without an entry in Results return a single result whose VideoID is the query itself.
type MockSearcher struct {
	Results map[string][]models.SearchResult
	Err     error

	mu      sync.Mutex
	Queries []string
}

func (m *MockSearcher) Name() string { return "mock searcher" }

func (m *MockSearcher) Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error) {
	m.mu.Lock()
	m.Queries = append(m.Queries, query)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	if results, ok := m.Results[query]; ok {
		if len(results) > limit {
			results = results[:limit]
		}
		return results, nil
	}
	return []models.SearchResult{{VideoID: query, Title: query, URLSuffix: "/watch?v=" + query}}, nil
}

// Count returns how many times query was searched.
func (m *MockSearcher) Count(query string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, q := range m.Queries {
		if q == query {
			n++
		}
	}
	return n
}

// MockMedia is a test double for [services.MediaDownloader] that writes real files.
//
// Every locator resolves to an mp4 and a webm audio variant unless Streams overrides it.
// FailFirst makes the first N downloads of each stem fail with DownloadErr.
type MockMedia struct {
	Streams     map[string][]models.StreamVariant
	StreamErr   error
	DownloadErr error
	FailFirst   int
	Content     string

	mu        sync.Mutex
	Locators  []string
	Downloads map[string]int
	Variants  []models.StreamVariant
}

func (m *MockMedia) Name() string { return "mock media" }

func (m *MockMedia) AudioStreams(ctx context.Context, locator string) ([]models.StreamVariant, error) {
	m.mu.Lock()
	m.Locators = append(m.Locators, locator)
	m.mu.Unlock()

	if m.StreamErr != nil {
		return nil, m.StreamErr
	}
	if streams, ok := m.Streams[locator]; ok {
		return streams, nil
	}

	id := locator[strings.LastIndex(locator, "=")+1:]
	return []models.StreamVariant{
		{VideoID: id, Itag: 140, MimeType: "audio/mp4"},
		{VideoID: id, Itag: 251, MimeType: "audio/webm"},
	}, nil
}

func (m *MockMedia) Download(ctx context.Context, variant models.StreamVariant, dir, stem string) (string, error) {
	m.mu.Lock()
	if m.Downloads == nil {
		m.Downloads = make(map[string]int)
	}
	m.Downloads[stem]++
	attempt := m.Downloads[stem]
	m.Variants = append(m.Variants, variant)
	m.mu.Unlock()

	if m.DownloadErr != nil && (m.FailFirst == 0 || attempt <= m.FailFirst) {
		return "", m.DownloadErr
	}

	content := m.Content
	if content == "" {
		content = "audio"
	}
	return library.WriteTrack(dir, stem, variant.Extension(), strings.NewReader(content))
}

// DownloadCount returns how many downloads were attempted for stem.
func (m *MockMedia) DownloadCount(stem string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Downloads[stem]
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertNoFile(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("File should not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// MustWriteFile creates path with the given contents.
func MustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}
