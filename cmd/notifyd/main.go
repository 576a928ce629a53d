package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/daymark/daymark/notifydservice"
)

func main() {
	if err := notifydservice.Run(); err != nil {
		log.Error().Err(err).Msg("notifyd exited with error")
		os.Exit(1)
	}
}
