package main

import (
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/allisson/tokenvault/internal/app"
	"github.com/allisson/tokenvault/internal/config"
)

func getCommands(version string) []*cli.Command {
	cmds := []*cli.Command{}
	cmds = append(cmds, getSystemCommands(version)...)
	cmds = append(cmds, getKeyCommands()...)
	cmds = append(cmds, getAuthCommands()...)
	return cmds
}

// newContainer loads and validates the configuration and builds the container.
func newContainer() (*app.Container, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return app.NewContainer(cfg), nil
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}

func batchSizeFlag() cli.Flag {
	return &cli.IntFlag{
		Name:    "batch-size",
		Aliases: []string{"b"},
		Usage:   "Rows per transaction (default: ROTATION_BATCH_SIZE)",
	}
}

func dryRunFlag(usage string) cli.Flag {
	return &cli.BoolFlag{
		Name:    "dry-run",
		Aliases: []string{"n"},
		Value:   false,
		Usage:   usage,
	}
}

// batchSize returns the --batch-size flag, falling back to the configured size.
func batchSize(cmd *cli.Command, container *app.Container) int {
	if cmd.IsSet("batch-size") {
		return int(cmd.Int("batch-size"))
	}
	return container.Config().RotationBatchSize
}
