// Command samplefeed lists completed eDNA analysis samples and serves them
// over a small read-only HTTP API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := newApp(os.Stdout, os.Stderr)
	if err := a.run(ctx, os.Args[1:]); err != nil {
		log.Error().Err(err).Msg("samplefeed failed")
		stop()
		if a.usageError() {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
