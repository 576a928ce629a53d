//go:build e2e
// +build e2e

package e2e

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"
)

// serviceURL returns the daymark service base URL for e2e runs, skipping
// the test when the dev stack is not configured.
func serviceURL(t *testing.T) string {
	t.Helper()
	v := os.Getenv("DAYMARK_E2E_SERVICE_URL")
	if v == "" {
		t.Skip("DAYMARK_E2E_SERVICE_URL not set; skipping dev-env e2e test")
	}
	return v
}

// notifydURL returns the notifyd base URL for e2e runs, skipping the
// test when the dev stack is not configured.
func notifydURL(t *testing.T) string {
	t.Helper()
	v := os.Getenv("DAYMARK_E2E_NOTIFYD_URL")
	if v == "" {
		t.Skip("DAYMARK_E2E_NOTIFYD_URL not set; skipping dev-env e2e test")
	}
	return v
}

// ping checks that a GET request to the given URL returns HTTP 200.
// It is used to quickly skip tests when the dev stack is not running.
func ping(url string) error {
	r, err := http.Get(url)
	if err != nil {
		return err
	}
	r.Body.Close()
	if r.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", r.StatusCode)
	}
	return nil
}

// mustJSON decodes the HTTP response body into v or fails the test with context.
func mustJSON(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	if resp == nil {
		t.Fatalf("nil response")
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("http %d: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode json: %v", err)
	}
}

// waitForHealthy polls /api/health until the daymark service reports
// {"status":"healthy"} or the timeout elapses. It is intentionally
// strict to surface regressions fast.
func waitForHealthy(t *testing.T, baseURL string, timeout time.Duration) {
	t.Helper()
	t.Logf("Checking daymark service health at %s/api/health (timeout %s)", baseURL, timeout)
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL + "/api/health")
		if err == nil && resp.StatusCode == http.StatusOK {
			var data struct {
				Status string `json:"status"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&data); err == nil && data.Status == "healthy" {
				_ = resp.Body.Close()
				return // healthy
			}
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("daymark service not healthy within %s", timeout)
}

// scheduledEntry mirrors the daemon's /v1/notifications list payload.
type scheduledEntry struct {
	Handle      string `json:"handle"`
	Correlation struct {
		Type        string `json:"type"`
		EventID     string `json:"eventId"`
		MilestoneID string `json:"milestoneId"`
		ReminderID  string `json:"reminderId"`
	} `json:"correlation"`
	Content struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	} `json:"content"`
	NextFireAt time.Time `json:"nextFireAt"`
}

// listNotifications fetches every live entry from notifyd.
func listNotifications(t *testing.T, baseURL string) []scheduledEntry {
	t.Helper()
	resp, err := http.Get(baseURL + "/v1/notifications")
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	var out struct {
		Notifications []scheduledEntry `json:"notifications"`
	}
	mustJSON(t, resp, &out)
	return out.Notifications
}

// entriesForEvent filters a daemon listing down to one event's entries.
func entriesForEvent(entries []scheduledEntry, eventID string) []scheduledEntry {
	var out []scheduledEntry
	for _, e := range entries {
		if e.Correlation.EventID == eventID {
			out = append(out, e)
		}
	}
	return out
}

// waitForEventEntries polls notifyd until the event has at least min
// live entries or the timeout elapses. The service schedules the
// milestone burst on a detached task, so listings right after an event
// create can lag.
func waitForEventEntries(t *testing.T, baseURL, eventID string, min int, timeout time.Duration) []scheduledEntry {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		got := entriesForEvent(listNotifications(t, baseURL), eventID)
		if len(got) >= min || time.Now().After(deadline) {
			return got
		}
		time.Sleep(100 * time.Millisecond)
	}
}
