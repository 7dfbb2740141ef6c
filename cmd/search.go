package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/sptdl/internal/shared"
	"github.com/desertthunder/sptdl/internal/ui"
	"github.com/urfave/cli/v3"
)

type searchOutput struct {
	VideoID  string `json:"video_id"`
	Title    string `json:"title"`
	Channel  string `json:"channel"`
	Duration string `json:"duration"`
	URL      string `json:"url"`
}

// Search prints the YouTube results for a free-text query.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}

	searcher, err := r.searchService()
	if err != nil {
		return err
	}

	results, err := searcher.Search(ctx, query, cmd.Int("limit"))
	if err != nil {
		return err
	}

	out := make([]searchOutput, 0, len(results))
	for _, res := range results {
		out = append(out, searchOutput{
			VideoID:  res.VideoID,
			Title:    res.Title,
			Channel:  res.Channel,
			Duration: res.Duration,
			URL:      res.Locator(),
		})
	}

	if cmd.Bool("json") {
		return r.writeJSON(out, true)
	}

	if len(out) == 0 {
		return r.writePlain("%s\n", ui.Styles.Warn(fmt.Sprintf("No results for %q", query)))
	}

	for i, res := range out {
		r.writePlain("%d. %s\n", i+1, ui.Styles.Title(res.Title))
		r.writePlain("   %s | %s\n", res.Channel, res.Duration)
		if err := r.writePlain("   %s\n", ui.Styles.Help(res.URL)); err != nil {
			return err
		}
	}
	return nil
}
