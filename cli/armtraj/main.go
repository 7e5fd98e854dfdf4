// Package main is the armtraj command itself.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	armcli "go.viam.com/armtraj/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := armcli.NewApp(os.Stdout, os.Stderr)
	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
