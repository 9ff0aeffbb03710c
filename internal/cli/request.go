package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/forkwallet/netclient/client"
)

func cmdRequest(e *env) *cli.Command {
	var (
		method   string
		encoding string
		params   []string
		headers  []string
	)

	return &cli.Command{
		Name:      "request",
		Aliases:   []string{"r"},
		Usage:     "Send a request and print the response body",
		ArgsUsage: "<path or url>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "method",
				Aliases:     []string{"X"},
				Usage:       "GET, POST or DELETE",
				Value:       "GET",
				Destination: &method,
			},
			&cli.StringFlag{
				Name:        "encoding",
				Usage:       "Parameter encoding (json, url)",
				Value:       "json",
				Destination: &encoding,
			},
			&cli.StringSliceFlag{
				Name:        "param",
				Aliases:     []string{"p"},
				Usage:       "Parameter as key=value, repeatable",
				Destination: &params,
			},
			&cli.StringSliceFlag{
				Name:        "header",
				Aliases:     []string{"H"},
				Usage:       "Header as key=value, repeatable",
				Destination: &headers,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return goerr.New("exactly one path or url is required")
			}

			target, err := resolve(e.client, c.Args().First())
			if err != nil {
				return err
			}

			opts, err := requestOptions(e.cfg.Token, encoding, params, headers)
			if err != nil {
				return err
			}

			d, err := client.NewDescriptor(client.Method(strings.ToUpper(method)), target, opts...)
			if err != nil {
				return goerr.Wrap(err, "invalid request", goerr.V("url", target))
			}

			e.logger.Debug("sending request", slog.String("method", method), slog.String("url", target))

			body, err := client.Execute(ctx, e.client, d, client.Bytes)
			if err != nil {
				return goerr.Wrap(err, "request failed", goerr.V("url", target))
			}

			if _, err := fmt.Fprintln(c.Root().Writer, string(body)); err != nil {
				return goerr.Wrap(err, "failed to write response")
			}
			return nil
		},
	}
}

// resolve treats absolute URLs as is and anything else as a path below the
// API root.
func resolve(cl *client.Client, arg string) (string, error) {
	if u, err := url.Parse(arg); err == nil && u.IsAbs() {
		return arg, nil
	}

	target, err := cl.Endpoint(strings.TrimPrefix(arg, "/"))
	if err != nil {
		return "", goerr.Wrap(err, "invalid path", goerr.V("path", arg))
	}
	return target, nil
}

func requestOptions(token, encoding string, params, headers []string) ([]client.RequestOption, error) {
	var opts []client.RequestOption

	switch encoding {
	case "json":
	case "url":
		opts = append(opts, client.WithEncoding(client.EncodingURL))
	default:
		return nil, goerr.New("unknown encoding", goerr.V("encoding", encoding))
	}

	if token != "" {
		opts = append(opts, client.WithAuthToken(token))
	}

	if len(params) > 0 {
		m, err := pairs(params)
		if err != nil {
			return nil, err
		}
		p := make(map[string]any, len(m))
		for k, v := range m {
			p[k] = v
		}
		opts = append(opts, client.WithParameters(p))
	}

	if len(headers) > 0 {
		m, err := pairs(headers)
		if err != nil {
			return nil, err
		}
		opts = append(opts, client.WithHeaders(m))
	}

	return opts, nil
}

func pairs(kvs []string) (map[string]string, error) {
	m := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, goerr.New("expected key=value", goerr.V("value", kv))
		}
		m[k] = v
	}
	return m, nil
}
