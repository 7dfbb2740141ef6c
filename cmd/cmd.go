// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/sptdl/internal/shared"
	"github.com/urfave/cli/v3"
)

const version = "0.1.0"

// app builds the root command. Without a subcommand it behaves like "download".
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "sptdl",
		Usage:   "Download the tracks of a Spotify playlist or album as audio from YouTube",
		Version: version,
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
				Sources: cli.EnvVars(shared.EnvConfigPath),
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		}, downloadFlags()...),
		Before:   r.before,
		Action:   r.Download,
		Commands: r.register(),
	}
}

func downloadFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "dest",
			Aliases: []string{"d"},
			Usage:   "Destination folder (prompted when empty)",
		},
		&cli.StringFlag{
			Name:    "url",
			Aliases: []string{"u"},
			Usage:   "Spotify playlist or album URL (prompted when empty)",
		},
		&cli.IntFlag{
			Name:    "jobs",
			Aliases: []string{"j"},
			Usage:   "Number of tracks downloaded concurrently",
		},
		&cli.IntFlag{
			Name:  "attempts",
			Usage: "Attempts per track before it is skipped",
		},
		&cli.StringFlag{
			Name:  "report",
			Usage: "Write a per-track report (.csv, .md or plain text)",
		},
	}
}

// downloadCommand fetches every missing track of a playlist or album
func downloadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "download",
		Aliases: []string{"dl"},
		Usage:   "Download missing tracks of a playlist or album",
		Flags:   downloadFlags(),
		Action:  r.Download,
	}
}

// tracksCommand prints the search queries of a playlist or album
func tracksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tracks",
		Usage: "List the search queries built from a playlist or album",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "url",
				Aliases:  []string{"u"},
				Usage:    "Spotify playlist or album URL",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "pending",
				Usage: "Only list tracks missing from the destination folder",
			},
			&cli.StringFlag{
				Name:    "dest",
				Aliases: []string{"d"},
				Usage:   "Destination folder checked by --pending",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Tracks,
	}
}

// searchCommand queries YouTube directly
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search YouTube and print the ranked results",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "query",
			},
		},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of results",
				Value: 5,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Search,
	}
}

// configCommand manages the configuration file
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage the configuration file",
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Write an example configuration file",
				Action: r.ConfigInit,
			},
			{
				Name:   "validate",
				Usage:  "Load and validate the configuration file",
				Action: r.ConfigValidate,
			},
		},
	}
}
