package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/x-research-team/dtx-graphrepo/internal/cli"
	"github.com/x-research-team/dtx-graphrepo/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(config.NewLoader()).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "graphrepo:", err)
		stop()
		os.Exit(1)
	}
}
