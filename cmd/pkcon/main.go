package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"packagekit/internal/pkerr"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand()
	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled):
		case errors.Is(err, pkerr.ErrTransportUnavailable):
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		default:
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
