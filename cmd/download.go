package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/sptdl/internal/formatter"
	"github.com/desertthunder/sptdl/internal/models"
	"github.com/desertthunder/sptdl/internal/services"
	"github.com/desertthunder/sptdl/internal/shared"
	"github.com/desertthunder/sptdl/internal/tasks"
	"github.com/desertthunder/sptdl/internal/ui"
	"github.com/urfave/cli/v3"
)

// Download lists a playlist or album, skips tracks already in the destination and downloads the rest.
func (r *Runner) Download(ctx context.Context, cmd *cli.Command) error {
	logger, _ := shared.RunLogger(r.logger)

	if _, err := r.trackLister(ctx); err != nil {
		return err
	}
	if _, err := r.searchService(); err != nil {
		return err
	}
	r.mediaService()

	dest, err := r.destination(ctx, cmd.String("dest"))
	if err != nil {
		return err
	}

	rawURL := cmd.String("url")
	if rawURL == "" {
		if rawURL, err = r.prompt(ctx, "Spotify playlist or album URL", "https://open.spotify.com/playlist/..."); err != nil {
			return err
		}
	}

	source, err := services.ParseSource(rawURL)
	if err != nil {
		return err
	}

	logger.Info("starting download", "kind", source.Kind, "id", source.ID, "dest", dest)

	progressCh := make(chan tasks.ProgressUpdate, 256)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			r.printProgress(update)
		}
	}()

	result, err := r.engine(cmd, logger).Run(ctx, progressCh, source, dest)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.printSummary(result)

	if path := cmd.String("report"); path != "" {
		if err := formatter.WriteReport(result, path); err != nil {
			logger.Error("failed to write report", "path", path, "error", err)
		} else {
			r.writePlain("\nReport written to %s\n", path)
		}
	}

	if result.Report.Cancelled > 0 {
		return fmt.Errorf("%w: %d tracks not processed", shared.ErrCancelled, result.Report.Cancelled)
	}
	return nil
}

// destination resolves the download folder from the flag, the config file or a prompt.
func (r *Runner) destination(ctx context.Context, flag string) (string, error) {
	dest := flag
	if dest == "" && r.config != nil {
		dest = r.config.Download.Directory
	}
	if dest == "" {
		var err error
		if dest, err = r.prompt(ctx, "Destination folder", "~/Music"); err != nil {
			return "", err
		}
	}
	return expandHome(dest)
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

func (r *Runner) printProgress(update tasks.ProgressUpdate) {
	switch update.Phase {
	case tasks.ListTracks:
		r.writePlain("📥 %s\n", update.Message)
	case tasks.FilterTracks:
		r.writePlain("🔍 %s\n\n", update.Message)
	case tasks.Download:
		r.writePlain("%s\n", update.Message)
	case tasks.Retry:
		if err, ok := update.Data.(error); ok {
			r.writePlain("%s\n", ui.Styles.Err(err.Error()))
		}
		r.writePlain("%s\n", ui.Styles.Warn(update.Message))
	case tasks.Skip:
		r.writePlain("%s\n", ui.Styles.Err("✗ "+update.Message))
	}
}

func (r *Runner) printSummary(result *tasks.RunResult) {
	report := result.Report

	r.writePlain("\nDownload finished.\n\n")
	r.writePlainHeader(fmt.Sprintf("%s %s", result.List.Source.Kind, result.List.Source.ID))
	r.writePlain("Tracks: %d\n", len(result.List.Tracks))
	r.writePlain("Already present: %d\n", result.List.Existing())
	r.writePlain("%s\n", ui.Styles.OK(fmt.Sprintf("Downloaded: %d", report.Downloaded)))
	if report.Failed > 0 {
		r.writePlain("%s\n", ui.Styles.Err(fmt.Sprintf("Skipped: %d", report.Failed)))
	}
	if report.Cancelled > 0 {
		r.writePlain("%s\n", ui.Styles.Warn(fmt.Sprintf("Cancelled: %d", report.Cancelled)))
	}

	failed := make([]models.Outcome, 0, report.Failed)
	for _, o := range report.Outcomes {
		if !o.OK() && o.Reason != models.ReasonCancelled {
			failed = append(failed, o)
		}
	}
	if len(failed) > 0 {
		r.writePlain("\nSkipped tracks:\n")
		for _, o := range failed {
			r.writePlain("  - %s (%s)\n", o.Query.Text, o.Reason)
		}
	}
}
