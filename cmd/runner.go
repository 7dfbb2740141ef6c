package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sptdl/internal/services"
	"github.com/desertthunder/sptdl/internal/shared"
	"github.com/desertthunder/sptdl/internal/tasks"
	"github.com/desertthunder/sptdl/internal/ui"
	"github.com/urfave/cli/v3"
)

// PromptFunc asks the user for a single line of input.
type PromptFunc func(ctx context.Context, label, placeholder string) (string, error)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Services left nil are built from the configuration file the first time a command needs them.
type Runner struct {
	config     *shared.Config
	configPath string
	lister     services.TrackLister
	searcher   services.Searcher
	media      services.MediaDownloader
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	prompt     PromptFunc
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Lister     services.TrackLister
	Searcher   services.Searcher
	Media      services.MediaDownloader
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Prompt     PromptFunc
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Prompt == nil {
		opts.Prompt = func(ctx context.Context, label, placeholder string) (string, error) {
			return ui.Ask(ctx, os.Stdin, os.Stdout, label, placeholder)
		}
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		lister:     opts.Lister,
		searcher:   opts.Searcher,
		media:      opts.Media,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		prompt:     opts.Prompt,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		downloadCommand, tracksCommand, searchCommand, configCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetVerbose(r.logger, true)
	}
	if path := cmd.String("config"); path != "" && r.configPath == "" {
		r.configPath = path
	}
	return ctx, nil
}

// loadConfig returns the injected configuration or reads it from the configured path.
func (r *Runner) loadConfig() (*shared.Config, error) {
	if r.config != nil {
		return r.config, nil
	}

	path := r.configPath
	if path == "" {
		path = "config.toml"
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("loaded config", "path", path)
	r.config = config
	return config, nil
}

// trackLister returns the Spotify lister, authenticating it on first use.
func (r *Runner) trackLister(ctx context.Context) (services.TrackLister, error) {
	if r.lister != nil {
		return r.lister, nil
	}

	config, err := r.loadConfig()
	if err != nil {
		return nil, err
	}

	spotify, err := services.NewSpotifyService(config.Spotify.Map())
	if err != nil {
		return nil, err
	}
	spotify.SetLogger(r.logger)

	if err := spotify.Authenticate(ctx); err != nil {
		return nil, err
	}

	r.lister = spotify
	return spotify, nil
}

func (r *Runner) searchService() (services.Searcher, error) {
	if r.searcher != nil {
		return r.searcher, nil
	}

	config, err := r.loadConfig()
	if err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: config.YouTube.Timeout, Transport: r.httpClient.Transport}
	r.searcher = services.NewYouTubeService(config.YouTube.BaseURL, config.YouTube.SearchRate, client)
	return r.searcher, nil
}

func (r *Runner) mediaService() services.MediaDownloader {
	if r.media == nil {
		r.media = services.NewMediaService(r.httpClient)
	}
	return r.media
}

// engine builds a fetch engine, flags taking precedence over the configuration file.
func (r *Runner) engine(cmd *cli.Command, logger *log.Logger) *tasks.FetchEngine {
	opts := tasks.EngineOpts{
		Lister:   r.lister,
		Searcher: r.searcher,
		Media:    r.media,
		Logger:   logger,
	}
	if r.config != nil {
		opts.Attempts = r.config.Download.Attempts
		opts.Workers = r.config.Download.Workers
	}
	if n := cmd.Int("attempts"); n > 0 {
		opts.Attempts = n
	}
	if n := cmd.Int("jobs"); n > 0 {
		opts.Workers = n
	}
	return tasks.NewFetchEngine(opts)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
