package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/forkwallet/netclient/client"
	"github.com/forkwallet/netclient/client/device"
)

// Client holds the settings of the HTTP client shared by all commands.
type Client struct {
	APIRoot           string
	Token             string `masq:"secret"`
	AppVersion        string
	UserAgent         string
	DownloadDir       string
	Timeout           time.Duration
	RPS               int
	Burst             int
	NoFollowRedirects bool
}

// Flags returns CLI flags for client configuration
func (c *Client) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "api-root",
			Usage:       "Backend API root",
			Value:       client.DefaultAPIRoot,
			Destination: &c.APIRoot,
			Sources:     cli.EnvVars("NETCLIENT_API_ROOT"),
		},
		&cli.StringFlag{
			Name:        "token",
			Usage:       "Bearer token sent with requests",
			Destination: &c.Token,
			Sources:     cli.EnvVars("NETCLIENT_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "app-version",
			Usage:       "Value of the x-app-version header",
			Value:       "dev",
			Destination: &c.AppVersion,
			Sources:     cli.EnvVars("NETCLIENT_APP_VERSION"),
		},
		&cli.StringFlag{
			Name:        "user-agent",
			Usage:       "User-Agent header",
			Value:       "netclient",
			Destination: &c.UserAgent,
			Sources:     cli.EnvVars("NETCLIENT_USER_AGENT"),
		},
		&cli.StringFlag{
			Name:        "download-dir",
			Usage:       "Directory finished downloads are moved into",
			Destination: &c.DownloadDir,
			Sources:     cli.EnvVars("NETCLIENT_DOWNLOAD_DIR"),
		},
		&cli.DurationFlag{
			Name:        "timeout",
			Usage:       "Overall request timeout, 0 for none",
			Destination: &c.Timeout,
			Sources:     cli.EnvVars("NETCLIENT_TIMEOUT"),
		},
		&cli.IntFlag{
			Name:        "rps",
			Usage:       "Requests per second, 0 disables throttling",
			Destination: &c.RPS,
			Sources:     cli.EnvVars("NETCLIENT_RPS"),
		},
		&cli.IntFlag{
			Name:        "burst",
			Usage:       "Throttle burst size",
			Value:       1,
			Destination: &c.Burst,
			Sources:     cli.EnvVars("NETCLIENT_BURST"),
		},
		&cli.BoolFlag{
			Name:        "no-follow-redirects",
			Usage:       "Treat 3xx responses as final",
			Destination: &c.NoFollowRedirects,
			Sources:     cli.EnvVars("NETCLIENT_NO_FOLLOW_REDIRECTS"),
		},
	}
}

// Options translates the configuration into client options.
func (c *Client) Options(logger *slog.Logger) []client.Option {
	opts := []client.Option{
		client.WithLogger(logger),
		client.WithAPIRoot(c.APIRoot),
		client.WithDevice(device.Detect(c.AppVersion)),
		client.WithTimeout(c.Timeout),
	}
	if c.UserAgent != "" {
		opts = append(opts, client.WithUserAgent(c.UserAgent))
	}
	if c.DownloadDir != "" {
		opts = append(opts, client.WithDownloadDir(c.DownloadDir))
	}
	if c.RPS > 0 {
		opts = append(opts, client.WithThrottle(c.RPS, c.Burst))
	}
	if c.NoFollowRedirects {
		opts = append(opts, client.WithNoFollowRedirects())
	}

	return opts
}

// Build creates the client.
func (c *Client) Build(logger *slog.Logger) (*client.Client, error) {
	logger.Debug("building client", slog.Any("config", c))

	cl, err := client.Build(c.Options(logger)...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build client", goerr.V("api_root", c.APIRoot))
	}

	return cl, nil
}
