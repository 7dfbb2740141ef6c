package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/sptdl/internal/models"
	"github.com/desertthunder/sptdl/internal/shared"
	tu "github.com/desertthunder/sptdl/internal/testing"
)

func testTracks() []models.Track {
	return []models.Track{
		{Title: "Song A", Artists: []string{"Artist X"}},
		{Title: "Song B", Artists: []string{"Artist Y"}},
	}
}

type fixture struct {
	runner   *Runner
	output   *bytes.Buffer
	lister   *tu.MockLister
	searcher *tu.MockSearcher
	media    *tu.MockMedia
	prompts  []string
	answers  []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		output:   &bytes.Buffer{},
		lister:   &tu.MockLister{Tracks: testTracks()},
		searcher: &tu.MockSearcher{},
		media:    &tu.MockMedia{},
	}
	f.runner = NewRunner(RunnerOpts{
		Config:   shared.DefaultConfig(),
		Lister:   f.lister,
		Searcher: f.searcher,
		Media:    f.media,
		Logger:   shared.NewLogger(&bytes.Buffer{}),
		Output:   f.output,
		Prompt: func(ctx context.Context, label, placeholder string) (string, error) {
			f.prompts = append(f.prompts, label)
			if len(f.answers) == 0 {
				return "", shared.ErrCancelled
			}
			answer := f.answers[0]
			f.answers = f.answers[1:]
			return answer, nil
		},
	})
	return f
}

func (f *fixture) run(args ...string) error {
	return f.runner.app().Run(context.Background(), append([]string{"sptdl"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			lister := &tu.MockLister{}
			searcher := &tu.MockSearcher{}
			media := &tu.MockMedia{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Lister:     lister,
				Searcher:   searcher,
				Media:      media,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.lister != lister || runner.searcher != searcher || runner.media != media {
				t.Error("expected services to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			if runner := NewRunner(RunnerOpts{}); runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			if runner := NewRunner(RunnerOpts{}); runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			if runner := NewRunner(RunnerOpts{}); runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})

		t.Run("with nil prompt uses terminal prompt", func(t *testing.T) {
			if runner := NewRunner(RunnerOpts{}); runner.prompt == nil {
				t.Error("expected default prompt to be set")
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{ConfigPath: "/test/path/config.toml"})
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if result := output.String(); result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result := output.String(); result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		commands := NewRunner(RunnerOpts{}).register()

		if len(commands) != 4 {
			t.Errorf("expected 4 commands, got %d", len(commands))
		}
		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
			}
		}
	})

	t.Run("loadConfig", func(t *testing.T) {
		t.Run("missing file", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				ConfigPath: filepath.Join(t.TempDir(), "missing.toml"),
				Logger:     shared.NewLogger(&bytes.Buffer{}),
			})

			if _, err := runner.loadConfig(); !errors.Is(err, shared.ErrMissingConfig) {
				t.Errorf("expected ErrMissingConfig, got %v", err)
			}
		})

		t.Run("reads and caches file", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := shared.CreateConfigFile(path); err != nil {
				t.Fatalf("failed to create config: %v", err)
			}
			runner := NewRunner(RunnerOpts{ConfigPath: path, Logger: shared.NewLogger(&bytes.Buffer{})})

			config, err := runner.loadConfig()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if runner.config != config {
				t.Error("expected config to be cached")
			}
		})
	})
}

func TestDownload(t *testing.T) {
	t.Run("downloads only missing tracks", func(t *testing.T) {
		f := newFixture(t)
		dir := t.TempDir()
		tu.MustWriteFile(t, filepath.Join(dir, "Song A By Artist X.m4a"), "x")

		if err := f.run("download", "--dest", dir, "--url", "https://open.spotify.com/playlist/pl1?si=x"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(f.lister.Sources) != 1 || f.lister.Sources[0].Kind != models.Playlist || f.lister.Sources[0].ID != "pl1" {
			t.Errorf("unexpected sources %+v", f.lister.Sources)
		}
		if f.searcher.Count("Song A By Artist X") != 0 {
			t.Error("expected existing track not to be searched")
		}
		tu.AssertFileExists(t, filepath.Join(dir, "Song B By Artist Y.webm"))

		out := f.output.String()
		for _, want := range []string{"Downloading Song B By Artist Y | Track 1/1", "Download finished.", "Downloaded: 1", "Already present: 1"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, out)
			}
		}
		if len(f.prompts) != 0 {
			t.Errorf("expected no prompts, got %v", f.prompts)
		}
	})

	t.Run("writes report", func(t *testing.T) {
		f := newFixture(t)
		dir := t.TempDir()
		report := filepath.Join(t.TempDir(), "report.csv")

		if err := f.run("download", "--dest", dir, "--url", "spotify:album:al1", "--report", report); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if content := tu.MustReadFile(t, report); !strings.Contains(content, "Song B By Artist Y,Song B By Artist Y,downloaded,1") {
			t.Errorf("unexpected report:\n%s", content)
		}
	})

	t.Run("root command defaults to download", func(t *testing.T) {
		f := newFixture(t)
		dir := t.TempDir()

		if err := f.run("--dest", dir, "--url", "spotify:album:al1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tu.AssertFileExists(t, filepath.Join(dir, "Song A By Artist X.webm"))
		tu.AssertFileExists(t, filepath.Join(dir, "Song B By Artist Y.webm"))
	})

	t.Run("prompts for missing destination and url", func(t *testing.T) {
		f := newFixture(t)
		dir := t.TempDir()
		f.answers = []string{dir, "spotify:album:al1"}

		if err := f.run("download"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(f.prompts) != 2 {
			t.Fatalf("expected 2 prompts, got %v", f.prompts)
		}
		if f.lister.Sources[0].Kind != models.Album {
			t.Errorf("expected album source, got %v", f.lister.Sources[0].Kind)
		}
	})

	t.Run("destination from config", func(t *testing.T) {
		f := newFixture(t)
		dir := t.TempDir()
		f.runner.config.Download.Directory = dir

		if err := f.run("download", "--url", "spotify:album:al1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(f.prompts) != 0 {
			t.Errorf("expected no prompts, got %v", f.prompts)
		}
		tu.AssertFileExists(t, filepath.Join(dir, "Song A By Artist X.webm"))
	})

	t.Run("cancelled prompt", func(t *testing.T) {
		f := newFixture(t)

		if err := f.run("download"); !errors.Is(err, shared.ErrCancelled) {
			t.Errorf("expected ErrCancelled, got %v", err)
		}
	})

	t.Run("failing track is retried and skipped", func(t *testing.T) {
		f := newFixture(t)
		f.media.DownloadErr = errors.New("stream reset")
		dir := t.TempDir()

		if err := f.run("download", "--dest", dir, "--url", "spotify:album:al1", "--attempts", "2"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if got := f.media.DownloadCount("Song A By Artist X"); got != 2 {
			t.Errorf("expected 2 attempts, got %d", got)
		}

		out := f.output.String()
		for _, want := range []string{"stream reset", "Trying again... 2/2", "Skipped: 2", "Song B By Artist Y (download)"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, out)
			}
		}
		tu.AssertNoFile(t, filepath.Join(dir, "Song A By Artist X.webm"))
	})

	t.Run("invalid url", func(t *testing.T) {
		f := newFixture(t)

		err := f.run("download", "--dest", t.TempDir(), "--url", "not a url!")
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("metadata error aborts", func(t *testing.T) {
		f := newFixture(t)
		f.lister.Err = shared.ErrAPIRequest

		err := f.run("download", "--dest", t.TempDir(), "--url", "spotify:album:al1")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})
}

func TestTracks(t *testing.T) {
	t.Run("plain output", func(t *testing.T) {
		f := newFixture(t)

		if err := f.run("tracks", "--url", "spotify:playlist:pl1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		out := f.output.String()
		if !strings.Contains(out, "1. Song A By Artist X") || !strings.Contains(out, "2. Song B By Artist Y") {
			t.Errorf("unexpected output:\n%s", out)
		}
		if !strings.Contains(out, "2 of 2 tracks") {
			t.Errorf("expected count line, got:\n%s", out)
		}
	})

	t.Run("pending json output", func(t *testing.T) {
		f := newFixture(t)
		dir := t.TempDir()
		tu.MustWriteFile(t, filepath.Join(dir, "Song A By Artist X.mp3"), "x")

		if err := f.run("tracks", "--url", "spotify:playlist:pl1", "--pending", "--dest", dir, "--json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var out []trackOutput
		if err := json.Unmarshal(f.output.Bytes(), &out); err != nil {
			t.Fatalf("expected JSON output, got %v", err)
		}
		if len(out) != 1 || out[0].Query != "Song B By Artist Y" {
			t.Errorf("expected only Song B, got %+v", out)
		}
	})
}

func TestSearch(t *testing.T) {
	t.Run("plain output", func(t *testing.T) {
		f := newFixture(t)
		f.searcher.Results = map[string][]models.SearchResult{
			"lofi": {{VideoID: "abc", Title: "Lofi Mix", Channel: "Chill", Duration: "1:00:00", URLSuffix: "/watch?v=abc"}},
		}

		if err := f.run("search", "lofi"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		out := f.output.String()
		if !strings.Contains(out, "Lofi Mix") || !strings.Contains(out, "https://www.youtube.com/watch?v=abc") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("json output", func(t *testing.T) {
		f := newFixture(t)

		if err := f.run("search", "--json", "anything"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var out []searchOutput
		if err := json.Unmarshal(f.output.Bytes(), &out); err != nil {
			t.Fatalf("expected JSON output, got %v", err)
		}
		if len(out) != 1 || out[0].VideoID != "anything" {
			t.Errorf("unexpected results %+v", out)
		}
	})

	t.Run("no results", func(t *testing.T) {
		f := newFixture(t)
		f.searcher.Results = map[string][]models.SearchResult{"nothing": {}}

		if err := f.run("search", "nothing"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(f.output.String(), "No results") {
			t.Errorf("unexpected output %q", f.output.String())
		}
	})

	t.Run("missing query", func(t *testing.T) {
		f := newFixture(t)

		if err := f.run("search"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestConfig(t *testing.T) {
	t.Run("init then validate", func(t *testing.T) {
		f := newFixture(t)
		path := filepath.Join(t.TempDir(), "sptdl.toml")

		if err := f.run("--config", path, "config", "init"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tu.AssertFileExists(t, path)
		if !strings.Contains(tu.MustReadFile(t, path), "[spotify]") {
			t.Error("expected example config contents")
		}

		if err := f.run("--config", path, "config", "validate"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(f.output.String(), "Configuration is valid") {
			t.Errorf("unexpected output:\n%s", f.output.String())
		}
	})

	t.Run("init refuses to overwrite", func(t *testing.T) {
		f := newFixture(t)
		path := filepath.Join(t.TempDir(), "sptdl.toml")
		tu.MustWriteFile(t, path, "[spotify]\n")

		if err := f.run("--config", path, "config", "init"); err == nil {
			t.Error("expected error for existing file")
		}
	})

	t.Run("validate reports invalid file", func(t *testing.T) {
		f := newFixture(t)
		path := filepath.Join(t.TempDir(), "sptdl.toml")
		tu.MustWriteFile(t, path, "[download]\nattempts = 0\n")

		if err := f.run("--config", path, "config", "validate"); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		in   string
		want string
	}{
		{"music", "music"},
		{"/abs/path", "/abs/path"},
		{"~", home},
		{"~/Music", filepath.Join(home, "Music")},
		{"~other", "~other"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := expandHome(tt.in)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
