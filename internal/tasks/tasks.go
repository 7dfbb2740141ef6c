// package tasks implements the list, filter and fetch pipeline.
//
// The core abstraction is Engine, which turns a Spotify source into downloaded files in a destination directory.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sptdl/internal/library"
	"github.com/desertthunder/sptdl/internal/models"
	"github.com/desertthunder/sptdl/internal/services"
	"github.com/desertthunder/sptdl/internal/shared"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultAttempts = 3
	DefaultWorkers  = 1
	searchLimit     = 1
)

// ListResult contains the tracks of a source and the queries still missing from the destination.
type ListResult struct {
	Source  models.Source
	Tracks  []models.Track // every track, provider order
	Pending []models.Query // tracks without a matching file, same order
}

// Existing returns the number of tracks already present in the destination.
func (r *ListResult) Existing() int {
	return len(r.Tracks) - len(r.Pending)
}

// FetchReport contains the outcome of every query passed to DownloadAll, in input order.
type FetchReport struct {
	Outcomes   []models.Outcome
	Total      int
	Downloaded int
	Failed     int
	Cancelled  int
}

// RunResult contains all data from a full list, filter and fetch run.
type RunResult struct {
	List   *ListResult
	Report *FetchReport
}

// Engine defines the download pipeline operations.
type Engine interface {
	// Pending lists the tracks of source and filters out those already present in dir.
	Pending(ctx context.Context, progress chan<- ProgressUpdate, source models.Source, dir string) (*ListResult, error)

	// DownloadAll fetches every query into dir with retry-then-skip. Per-track failures never fail the run.
	DownloadAll(ctx context.Context, progress chan<- ProgressUpdate, queries []models.Query, dir string) *FetchReport

	// Run performs Pending followed by DownloadAll.
	Run(ctx context.Context, progress chan<- ProgressUpdate, source models.Source, dir string) (*RunResult, error)
}

// EngineOpts configures a [FetchEngine]. Zero attempts and workers fall back to the defaults.
type EngineOpts struct {
	Lister   services.TrackLister
	Searcher services.Searcher
	Media    services.MediaDownloader
	Logger   *log.Logger
	Attempts int
	Workers  int
}

// FetchEngine implements Engine.
type FetchEngine struct {
	lister   services.TrackLister
	searcher services.Searcher
	media    services.MediaDownloader
	logger   *log.Logger
	attempts int
	workers  int
}

// attemptResult is the result of a single search, resolve and download attempt.
type attemptResult struct {
	path   string
	reason models.FailureReason
	err    error
}

// NewFetchEngine creates a new FetchEngine with the provided services.
func NewFetchEngine(opts EngineOpts) *FetchEngine {
	e := &FetchEngine{
		lister:   opts.Lister,
		searcher: opts.Searcher,
		media:    opts.Media,
		logger:   opts.Logger,
		attempts: opts.Attempts,
		workers:  opts.Workers,
	}
	if e.logger == nil {
		e.logger = shared.NewLogger(nil)
	}
	if e.attempts < 1 {
		e.attempts = DefaultAttempts
	}
	if e.workers < 1 {
		e.workers = DefaultWorkers
	}
	return e
}

// sendProgress sends a progress update through the channel without blocking.
func (e *FetchEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Pending lists the tracks of source and filters out those already present in dir.
func (e *FetchEngine) Pending(ctx context.Context, progress chan<- ProgressUpdate, source models.Source, dir string) (*ListResult, error) {
	if e.lister == nil {
		return nil, fmt.Errorf("%w: track lister not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, listTracksUpdate(source, e.lister.Name()))

	tracks, err := e.lister.ListTracks(ctx, source)
	if err != nil {
		return nil, err
	}
	e.sendProgress(progress, foundTracksUpdate(source, len(tracks)))

	stems, err := library.ExistingStems(destination(dir))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrFilesystem, err)
	}

	result := &ListResult{Source: source, Tracks: tracks, Pending: library.Pending(tracks, stems)}
	e.sendProgress(progress, filterTracksUpdate(len(result.Pending), len(tracks)))
	e.logger.Debug("filtered tracks", "source", source.ID, "tracks", len(tracks), "pending", len(result.Pending))
	return result, nil
}

// DownloadAll fetches every query into dir.
//
// Each query gets up to the configured number of attempts and is skipped after the last one fails.
// Cancelling ctx stops the loop; unprocessed queries are reported as cancelled.
func (e *FetchEngine) DownloadAll(ctx context.Context, progress chan<- ProgressUpdate, queries []models.Query, dir string) *FetchReport {
	dir = destination(dir)
	total := len(queries)
	report := &FetchReport{Total: total, Outcomes: make([]models.Outcome, total)}

	if e.searcher == nil || e.media == nil {
		err := fmt.Errorf("%w: search or media service not initialized", shared.ErrServiceUnavailable)
		for i, q := range queries {
			report.Outcomes[i] = models.Outcome{Query: q, Reason: models.ReasonSearch, Err: err}
		}
		report.tally()
		return report
	}

	if e.workers == 1 {
		for i, q := range queries {
			report.Outcomes[i] = e.fetch(ctx, progress, i+1, total, q, dir)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(e.workers)
		for i, q := range queries {
			g.Go(func() error {
				report.Outcomes[i] = e.fetch(ctx, progress, i+1, total, q, dir)
				return nil
			})
		}
		_ = g.Wait()
	}

	report.tally()
	e.sendProgress(progress, completeUpdate(report))
	return report
}

// Run performs the full list, filter and fetch pipeline.
func (e *FetchEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, source models.Source, dir string) (*RunResult, error) {
	list, err := e.Pending(ctx, progress, source, dir)
	if err != nil {
		return nil, err
	}

	return &RunResult{List: list, Report: e.DownloadAll(ctx, progress, list.Pending, dir)}, nil
}

// fetch runs the retry-then-skip loop for one query.
func (e *FetchEngine) fetch(ctx context.Context, progress chan<- ProgressUpdate, step, total int, q models.Query, dir string) models.Outcome {
	logger := shared.WithLogger(e.logger, "track", q.Text)
	outcome := models.Outcome{Query: q}

	for attempt := 1; attempt <= e.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			outcome.Reason, outcome.Err = models.ReasonCancelled, err
			return outcome
		}

		outcome.Attempts = attempt
		e.sendProgress(progress, downloadUpdate(step, total, q, attempt))

		res := e.attempt(ctx, q, dir)
		if res.err == nil {
			outcome.Path, outcome.Reason, outcome.Err = res.path, models.ReasonNone, nil
			logger.Debug("downloaded", "path", res.path, "attempt", attempt)
			return outcome
		}

		outcome.Reason, outcome.Err = res.reason, res.err
		if res.reason == models.ReasonCancelled {
			return outcome
		}

		logger.Warn("attempt failed", "attempt", attempt, "of", e.attempts, "reason", res.reason, "err", res.err)
		if attempt < e.attempts {
			e.sendProgress(progress, retryUpdate(step, total, attempt+1, e.attempts, res.err))
		}
	}

	logger.Error("skipping track", "attempts", outcome.Attempts, "reason", outcome.Reason)
	e.sendProgress(progress, skipUpdate(step, total, outcome))
	return outcome
}

// attempt performs one search, resolve and download cycle.
func (e *FetchEngine) attempt(ctx context.Context, q models.Query, dir string) attemptResult {
	results, err := e.searcher.Search(ctx, q.Text, searchLimit)
	if err != nil {
		return failed(ctx, models.ReasonSearch, err)
	}
	if len(results) == 0 {
		return attemptResult{reason: models.ReasonNoResults, err: fmt.Errorf("%w for %q", shared.ErrNoSearchResults, q.Text)}
	}

	streams, err := e.media.AudioStreams(ctx, results[0].Locator())
	if err != nil {
		return failed(ctx, models.ReasonResolve, err)
	}
	if len(streams) == 0 {
		return attemptResult{reason: models.ReasonNoAudioStream, err: fmt.Errorf("%w: %s", shared.ErrNoAudioStream, results[0].Locator())}
	}

	path, err := e.media.Download(ctx, streams[len(streams)-1], dir, q.Stem)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrFilesystem):
			return failed(ctx, models.ReasonFilesystem, err)
		case errors.Is(err, shared.ErrNoAudioStream):
			return failed(ctx, models.ReasonNoAudioStream, err)
		default:
			return failed(ctx, models.ReasonDownload, err)
		}
	}

	return attemptResult{path: path}
}

func failed(ctx context.Context, reason models.FailureReason, err error) attemptResult {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return attemptResult{reason: models.ReasonCancelled, err: fmt.Errorf("%w: %v", shared.ErrCancelled, err)}
	}
	return attemptResult{reason: reason, err: err}
}

func (r *FetchReport) tally() {
	r.Downloaded, r.Failed, r.Cancelled = 0, 0, 0
	for _, o := range r.Outcomes {
		switch {
		case o.OK():
			r.Downloaded++
		case o.Reason == models.ReasonCancelled:
			r.Cancelled++
		default:
			r.Failed++
		}
	}
}

func destination(dir string) string {
	if dir == "" {
		return "."
	}
	return dir
}
