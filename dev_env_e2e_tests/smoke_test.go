//go:build e2e
// +build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"
)

// -----------------------------------------------------------------------------
//
//	Test 1: Event lifecycle + notification flow (service + notifyd)
//
// -----------------------------------------------------------------------------
// Creates an event via the public REST API and walks the full notification
// lifecycle against a live notifyd: the milestone burst, reminder scheduling,
// rename re-baking the reminder body, and the pre-delete cancel sweep.
func TestDevEnv_EventNotificationLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping in short mode")
	}

	svc := serviceURL(t)
	nfy := notifydURL(t)

	// quick connectivity checks – skip if the stack isn't up
	for _, url := range []string{svc + "/api/health", nfy + "/v1/healthz"} {
		if err := ping(url); err != nil {
			t.Skipf("service %s unreachable: %v", url, err)
		}
	}
	waitForHealthy(t, svc, 10*time.Second)

	// 1. Create an event that started 101 days ago so the early milestones
	// are already reached and the later ones still schedule.
	start := time.Now().UTC().AddDate(0, 0, -101).Truncate(time.Second)
	title := fmt.Sprintf("E2E Move-in %d", time.Now().UnixNano())
	var ev struct {
		EventID string `json:"eventId"`
		Title   string `json:"title"`
		Elapsed string `json:"elapsed"`
	}
	resp := postJSON(t, svc+"/api/events", map[string]interface{}{
		"title":       title,
		"startTime":   start.Format(time.RFC3339),
		"displayUnit": "days",
	})
	mustJSON(t, resp, &ev)
	if ev.EventID == "" {
		t.Fatalf("create event returned no eventId")
	}
	if ev.Elapsed != "101 days" {
		t.Fatalf("expected elapsed \"101 days\", got %q", ev.Elapsed)
	}
	// Cleanup event at end (idempotent with step 7)
	defer func() {
		req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/api/events/%s", svc, ev.EventID), nil)
		_, _ = http.DefaultClient.Do(req)
	}()
	t.Logf("created event %s", ev.EventID)

	// 2. Milestones are generated, complete, and sorted by calendar target.
	var msResp struct {
		Milestones []struct {
			MilestoneID string    `json:"milestoneId"`
			Label       string    `json:"label"`
			TargetDate  time.Time `json:"targetDate"`
			Reached     bool      `json:"reached"`
		} `json:"milestones"`
		Count int `json:"count"`
	}
	getResp, err := http.Get(fmt.Sprintf("%s/api/events/%s/milestones", svc, ev.EventID))
	if err != nil {
		t.Fatalf("list milestones: %v", err)
	}
	mustJSON(t, getResp, &msResp)
	if msResp.Count != 13 || len(msResp.Milestones) != 13 {
		t.Fatalf("expected 13 milestones, got %d", msResp.Count)
	}
	reached := map[string]bool{}
	for i, m := range msResp.Milestones {
		reached[m.Label] = m.Reached
		if i > 0 && m.TargetDate.Before(msResp.Milestones[i-1].TargetDate) {
			t.Fatalf("milestones not sorted by target date: %s after %s",
				msResp.Milestones[i-1].Label, m.Label)
		}
	}
	if msResp.Milestones[0].Label != "1 Week" {
		t.Fatalf("expected \"1 Week\" first, got %q", msResp.Milestones[0].Label)
	}
	if !reached["100 Days"] || reached["6 Months"] {
		t.Fatalf("unexpected reach states at 101 days: %+v", reached)
	}

	// 3. Add a one-off reminder an hour out.
	fireAt := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
	var remResp struct {
		Reminder struct {
			ReminderID string `json:"reminderId"`
		} `json:"reminder"`
		Scheduling struct {
			Outcome string `json:"outcome"`
			Handle  string `json:"handle"`
		} `json:"scheduling"`
	}
	resp = postJSON(t, fmt.Sprintf("%s/api/events/%s/reminders", svc, ev.EventID), map[string]interface{}{
		"kind":          "one_off",
		"scheduledTime": fireAt.Format(time.RFC3339),
	})
	mustJSON(t, resp, &remResp)
	if remResp.Scheduling.Outcome == "permission_denied" {
		t.Skipf("notifyd denies permission; start it with NOTIFYD_GRANT_PERMISSION=true to run this test")
	}
	if remResp.Scheduling.Outcome != "scheduled" || remResp.Scheduling.Handle == "" {
		t.Fatalf("unexpected scheduling result: %+v", remResp.Scheduling)
	}
	rid := remResp.Reminder.ReminderID

	// 4. notifyd holds the 9 future milestone entries plus the reminder.
	// The milestone burst runs on a detached task, so poll briefly.
	entries := waitForEventEntries(t, nfy, ev.EventID, 10, 15*time.Second)
	var milestoneEntries int
	var reminderEntry *scheduledEntry
	for i, e := range entries {
		switch e.Correlation.Type {
		case "milestone":
			milestoneEntries++
		case "reminder":
			if e.Correlation.ReminderID == rid {
				reminderEntry = &entries[i]
			}
		}
	}
	if milestoneEntries != 9 {
		t.Fatalf("expected 9 milestone notifications, got %d (total %d)", milestoneEntries, len(entries))
	}
	if reminderEntry == nil {
		t.Fatalf("no notification correlated to reminder %s", rid)
	}
	if !strings.Contains(reminderEntry.Content.Body, title) {
		t.Fatalf("reminder body %q does not mention event title %q", reminderEntry.Content.Body, title)
	}
	oldHandle := reminderEntry.Handle

	// 5. Rename the event; the reminder entry is re-created with the new
	// title baked into the body. The PUT is synchronous, no polling needed.
	newTitle := title + " (renamed)"
	resp = putJSON(t, fmt.Sprintf("%s/api/events/%s", svc, ev.EventID), map[string]interface{}{
		"title":       newTitle,
		"startTime":   start.Format(time.RFC3339),
		"displayUnit": "days",
	})
	var updated struct {
		Title string `json:"title"`
	}
	mustJSON(t, resp, &updated)
	if updated.Title != newTitle {
		t.Fatalf("rename not applied: %q", updated.Title)
	}

	// 6. Same correlation, fresh handle, new title in the body.
	entries = entriesForEvent(listNotifications(t, nfy), ev.EventID)
	reminderEntry = nil
	for i, e := range entries {
		if e.Correlation.Type == "reminder" && e.Correlation.ReminderID == rid {
			reminderEntry = &entries[i]
		}
	}
	if reminderEntry == nil {
		t.Fatalf("reminder notification missing after rename")
	}
	if reminderEntry.Handle == oldHandle {
		t.Fatalf("reminder entry was not re-created (handle unchanged)")
	}
	if !strings.Contains(reminderEntry.Content.Body, newTitle) {
		t.Fatalf("reminder body %q does not mention new title %q", reminderEntry.Content.Body, newTitle)
	}
	if len(entries) != 10 {
		t.Fatalf("rename should leave 10 live entries, got %d", len(entries))
	}

	// 7. Delete the event; the cancel sweep empties the daemon.
	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/api/events/%s", svc, ev.EventID), nil)
	if err != nil {
		t.Fatalf("delete request: %v", err)
	}
	delResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete event: %v", err)
	}
	_ = delResp.Body.Close()
	if delResp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status %d", delResp.StatusCode)
	}
	if left := entriesForEvent(listNotifications(t, nfy), ev.EventID); len(left) != 0 {
		t.Fatalf("%d notifications survived event deletion", len(left))
	}
}

// -----------------------------------------------------------------------------
//
//	Test 2: Elapsed formatter probe
//
// -----------------------------------------------------------------------------
// Hits /api/elapsed with a pinned reference instant so the assertion is
// deterministic regardless of when the suite runs.
func TestDevEnv_ElapsedProbe(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping in short mode")
	}

	svc := serviceURL(t)
	if err := ping(svc + "/api/health"); err != nil {
		t.Skipf("service %s unreachable: %v", svc, err)
	}

	url := fmt.Sprintf("%s/api/elapsed?start=%s&unit=weeks&now=%s",
		svc, "2025-01-01T00:00:00Z", "2025-01-11T00:00:00Z")
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("elapsed probe: %v", err)
	}
	var out struct {
		Elapsed   string  `json:"elapsed"`
		TotalDays float64 `json:"totalDays"`
	}
	mustJSON(t, resp, &out)
	if out.Elapsed != "1 week and 3 days" {
		t.Fatalf("expected \"1 week and 3 days\", got %q", out.Elapsed)
	}
	if out.TotalDays != 10 {
		t.Fatalf("expected 10 total days, got %v", out.TotalDays)
	}
}

func postJSON(t *testing.T, url string, payload interface{}) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func putJSON(t *testing.T, url string, payload interface{}) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("PUT request %s: %v", url, err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT %s: %v", url, err)
	}
	return resp
}
