// Package cli implements the netclient command line.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/forkwallet/netclient/client"
	"github.com/forkwallet/netclient/internal/cli/config"
)

// Version is set at build time.
var Version = "dev"

// env carries what every command needs once Before has run.
type env struct {
	logger *slog.Logger
	client *client.Client
	cfg    config.Client
}

// Run runs the CLI application. Command output goes to stdout, logs to stderr.
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var loggerCfg config.Logger
	var e env

	flags := append(loggerCfg.Flags(), e.cfg.Flags()...)

	app := &cli.Command{
		Name:      "netclient",
		Usage:     "Wallet backend request and download client",
		Version:   Version,
		Flags:     flags,
		Writer:    stdout,
		ErrWriter: stderr,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger, err := loggerCfg.Configure(stderr)
			if err != nil {
				return nil, err
			}
			e.logger = logger

			cl, err := e.cfg.Build(logger)
			if err != nil {
				return nil, err
			}
			e.client = cl

			return ctx, nil
		},
		Commands: []*cli.Command{
			cmdRequest(&e),
			cmdDownload(&e),
			cmdAddress(&e),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		logger := e.logger
		if logger == nil {
			logger = slog.New(slog.NewTextHandler(stderr, nil))
		}
		logger.Error("CLI execution failed", slog.Any("error", err))
		return err
	}

	return nil
}
