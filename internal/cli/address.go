package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/forkwallet/netclient/wallet"
)

func cmdAddress(e *env) *cli.Command {
	return &cli.Command{
		Name:      "address",
		Aliases:   []string{"a"},
		Usage:     "Resolve the wallet address of a user",
		ArgsUsage: "<user-id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return goerr.New("exactly one user id is required")
			}

			userID, err := strconv.ParseInt(c.Args().First(), 10, 64)
			if err != nil {
				return goerr.Wrap(err, "invalid user id", goerr.V("user_id", c.Args().First()))
			}

			var opts []wallet.Option
			opts = append(opts, wallet.WithLogger(e.logger))
			if e.cfg.Token != "" {
				opts = append(opts, wallet.WithAuthToken(e.cfg.Token))
			}

			n, err := wallet.New(e.client, opts...)
			if err != nil {
				return goerr.Wrap(err, "failed to create wallet network")
			}

			addr, err := n.Address(ctx, userID)
			if err != nil {
				return goerr.Wrap(err, "failed to resolve address", goerr.V("user_id", userID))
			}

			if _, err := fmt.Fprintln(c.Root().Writer, addr); err != nil {
				return goerr.Wrap(err, "failed to write address")
			}
			return nil
		},
	}
}
