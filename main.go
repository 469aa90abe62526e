// Package main provides the minute CLI entry point.
// minute turns meeting transcripts into structured meeting notes.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/otherjamesbrown/minute-cli/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root := cmd.NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		// Rendered errors carry an empty message; everything else gets
		// printed once here.
		if msg := err.Error(); msg != "" && !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
		}
		os.Exit(1)
	}
}
