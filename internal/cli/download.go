package cli

import (
	"context"
	"crypto/sha256"
	"log/slog"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/forkwallet/netclient/client"
)

func cmdDownload(e *env) *cli.Command {
	var (
		name     string
		checksum string
		quiet    bool
	)

	return &cli.Command{
		Name:      "download",
		Aliases:   []string{"d"},
		Usage:     "Download a file into the download directory",
		ArgsUsage: "<url>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "name",
				Usage:       "Base name of the stored file",
				Destination: &name,
			},
			&cli.StringFlag{
				Name:        "sha256",
				Usage:       "Expected hex SHA-256 of the file",
				Destination: &checksum,
			},
			&cli.BoolFlag{
				Name:        "quiet",
				Aliases:     []string{"q"},
				Usage:       "Do not log progress",
				Destination: &quiet,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return goerr.New("exactly one url is required")
			}
			target := c.Args().First()

			var opts []client.DownloadOption
			if name != "" {
				opts = append(opts, client.WithFileName(name))
			}
			if checksum != "" {
				opts = append(opts, client.WithChecksum(sha256.New(), checksum))
			}
			if !quiet {
				opts = append(opts, client.WithProgressLogging())
			}

			e.logger.Debug("starting download", slog.String("url", target))

			path, err := e.client.Download(ctx, target, nil, opts...)
			if err != nil {
				return goerr.Wrap(err, "download failed", goerr.V("url", target))
			}

			if _, err := color.New(color.FgGreen).Fprintln(c.Root().Writer, path); err != nil {
				return goerr.Wrap(err, "failed to write path")
			}
			return nil
		},
	}
}
