package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/daymark/daymark/notifytool"
)

func main() {
	var (
		notifydURL string
		action     string
		handle     string
		corrType   string
	)

	flag.StringVar(&notifydURL, "notifyd-url", "http://localhost:8081", "notifyd base URL")
	flag.StringVar(&action, "action", "list", "Operation: list|cancel|purge")
	flag.StringVar(&handle, "handle", "", "Notification handle (required for cancel)")
	flag.StringVar(&corrType, "type", "", "Filter by correlation type: milestone|reminder (list, purge)")
	flag.Parse()

	switch action {
	case "list":
		out, err := notifytool.List(notifydURL, corrType)
		if err != nil {
			log.Fatal().Err(err).Msg("list failed")
		}
		fmt.Println(string(out))
	case "cancel":
		if handle == "" {
			fmt.Println("-handle is required for cancel")
			os.Exit(1)
		}
		if err := notifytool.Cancel(notifydURL, handle); err != nil {
			log.Fatal().Err(err).Msg("cancel failed")
		}
		fmt.Printf("cancelled %s\n", handle)
	case "purge":
		n, err := notifytool.Purge(notifydURL, corrType)
		if err != nil {
			log.Fatal().Err(err).Int("cancelled", n).Msg("purge incomplete")
		}
		fmt.Printf("purged %d notification(s)\n", n)
	default:
		fmt.Printf("unknown action %q (want list|cancel|purge)\n", action)
		os.Exit(1)
	}
}
