package main

import (
	"context"

	"github.com/desertthunder/sptdl/internal/shared"
	"github.com/desertthunder/sptdl/internal/ui"
	"github.com/urfave/cli/v3"
)

// ConfigInit writes the example configuration to the --config path.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	return r.writePlain("%s\nSet client_id and client_secret under [spotify] before downloading.\n",
		ui.Styles.OK("Created "+path))
}

// ConfigValidate loads the --config file and reports whether it is usable.
func (r *Runner) ConfigValidate(ctx context.Context, cmd *cli.Command) error {
	config, err := shared.LoadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	r.writePlain("%s\n", ui.Styles.OK("Configuration is valid"))
	r.writePlain("YouTube: %s (%.1f req/s, timeout %s)\n", config.YouTube.BaseURL, config.YouTube.SearchRate, config.YouTube.Timeout)
	return r.writePlain("Download: attempts=%d workers=%d directory=%q\n",
		config.Download.Attempts, config.Download.Workers, config.Download.Directory)
}
