package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/daymark/daymark/daymarkservice"
)

func main() {
	if err := daymarkservice.Run(); err != nil {
		log.Error().Err(err).Msg("daymark-service exited with error")
		os.Exit(1)
	}
}
