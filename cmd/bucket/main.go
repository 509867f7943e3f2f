// Package main implements the bucket CLI for the bucket list server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Dias221467/bucket-list/internal/cli"
	"github.com/Dias221467/bucket-list/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, config.LoadClientConfig())
	stop()
	os.Exit(code)
}
