package notifytool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/daymark/daymark/internal/notify"
)

// List fetches every live notification from the daemon and returns the
// raw JSON response bytes, indented for terminal use. If corrType is
// provided, results are filtered to that correlation type
// ("milestone" or "reminder").
func List(baseURL, corrType string) ([]byte, error) {
	client := notify.NewClient(baseURL)
	recs, err := client.ListScheduled(context.Background())
	if err != nil {
		return nil, fmt.Errorf("list failed: %w", err)
	}
	if corrType != "" {
		filtered := recs[:0]
		for _, rec := range recs {
			if rec.Correlation.Type == corrType {
				filtered = append(filtered, rec)
			}
		}
		recs = filtered
	}

	out, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		log.Warn().Err(err).Msg("marshal response indent failed; falling back to compact")
		return json.Marshal(recs)
	}
	return out, nil
}

// Cancel removes a single notification by handle. The daemon treats an
// unknown handle as already gone, so cancelling twice is safe.
func Cancel(baseURL, handle string) error {
	if handle == "" {
		return fmt.Errorf("handle is required")
	}
	client := notify.NewClient(baseURL)
	if err := client.Cancel(context.Background(), handle); err != nil {
		return fmt.Errorf("cancel failed: %w", err)
	}
	return nil
}

// Purge cancels every live notification, optionally restricted to one
// correlation type. It keeps going past individual failures and reports
// how many entries were actually removed.
func Purge(baseURL, corrType string) (int, error) {
	client := notify.NewClient(baseURL)
	recs, err := client.ListScheduled(context.Background())
	if err != nil {
		return 0, fmt.Errorf("list failed: %w", err)
	}

	cancelled := 0
	failed := 0
	for _, rec := range recs {
		if corrType != "" && rec.Correlation.Type != corrType {
			continue
		}
		if err := client.Cancel(context.Background(), rec.Handle); err != nil {
			log.Warn().Err(err).Str("handle", rec.Handle).Msg("cancel failed during purge")
			failed++
			continue
		}
		cancelled++
	}
	if failed > 0 {
		return cancelled, fmt.Errorf("%d cancellation(s) failed", failed)
	}
	return cancelled, nil
}
