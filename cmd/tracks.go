package main

import (
	"context"

	"github.com/desertthunder/sptdl/internal/library"
	"github.com/desertthunder/sptdl/internal/models"
	"github.com/desertthunder/sptdl/internal/services"
	"github.com/urfave/cli/v3"
)

type trackOutput struct {
	Query   string   `json:"query"`
	Stem    string   `json:"stem"`
	Title   string   `json:"title,omitempty"`
	Artists []string `json:"artists,omitempty"`
}

// Tracks prints the search query of every track, or only of those missing from --dest with --pending.
func (r *Runner) Tracks(ctx context.Context, cmd *cli.Command) error {
	source, err := services.ParseSource(cmd.String("url"))
	if err != nil {
		return err
	}

	lister, err := r.trackLister(ctx)
	if err != nil {
		return err
	}

	tracks, err := lister.ListTracks(ctx, source)
	if err != nil {
		return err
	}

	existing := map[string]struct{}{}
	if cmd.Bool("pending") {
		dest := cmd.String("dest")
		if dest == "" && r.config != nil {
			dest = r.config.Download.Directory
		}
		if dest, err = expandHome(dest); err != nil {
			return err
		}
		if dest == "" {
			dest = "."
		}
		if existing, err = library.ExistingStems(dest); err != nil {
			return err
		}
	}

	out := make([]trackOutput, 0, len(tracks))
	for _, track := range tracks {
		if _, found := existing[library.NewQuery(track).Stem]; found {
			continue
		}
		out = append(out, newTrackOutput(track))
	}

	if cmd.Bool("json") {
		return r.writeJSON(out, true)
	}

	r.writePlainHeader(source.Kind.String() + " " + source.ID)
	for i, t := range out {
		if err := r.writePlain("%3d. %s\n", i+1, t.Query); err != nil {
			return err
		}
	}
	return r.writePlain("\n%d of %d tracks\n", len(out), len(tracks))
}

func newTrackOutput(track models.Track) trackOutput {
	q := library.NewQuery(track)
	return trackOutput{Query: q.Text, Stem: q.Stem, Title: track.Title, Artists: track.Artists}
}
