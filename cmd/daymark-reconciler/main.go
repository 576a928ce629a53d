package main

import (
	"flag"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/daymark/daymark/reconcilerworker"
)

func main() {
	once := flag.Bool("once", false, "Run a single reconcile pass, print stats and exit")
	flag.Parse()

	if err := reconcilerworker.Run(*once); err != nil {
		log.Error().Err(err).Msg("daymark-reconciler exited with error")
		os.Exit(1)
	}
}
