package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/forkwallet/netclient/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Run(ctx, os.Args); err != nil {
		stop()
		os.Exit(1)
	}
}
