package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daymark/daymark/internal/notify"
	"github.com/daymark/daymark/internal/scheduling"
	"github.com/daymark/daymark/internal/services"
	"github.com/daymark/daymark/internal/store/sqlite"
	"github.com/daymark/daymark/internal/tasks"
)

// testServer bundles an HTTP server over a real sqlite store with the mock
// notification provider behind it.
type testServer struct {
	*httptest.Server
	mock   *notify.Mock
	runner *tasks.Runner
}

func newTestServer(t *testing.T) *testServer {
	st, err := sqlite.Open(filepath.Join(t.TempDir(), "daymark.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	log := zerolog.Nop()
	mock := notify.NewMock()
	sched := scheduling.NewScheduler(mock, log)
	coord := scheduling.NewCoordinator(sched, st, log)
	runner := tasks.NewRunner(context.Background(), log)

	eventSvc := services.NewEventService(st, coord, runner, log)
	reminderSvc := services.NewReminderService(st, sched)

	srv := httptest.NewServer(NewRouter(eventSvc, reminderSvc))
	t.Cleanup(srv.Close)

	return &testServer{Server: srv, mock: mock, runner: runner}
}

// drain waits for background scheduling tasks spawned by handlers.
func (ts *testServer) drain(t *testing.T) {
	if !ts.runner.Drain(2 * time.Second) {
		t.Fatal("background tasks did not finish")
	}
}

// Test helper functions
func makeRequest(t *testing.T, ts *testServer, method, path string, body interface{}) *http.Response {
	var bodyReader *bytes.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		require.NoError(t, err)
		bodyReader = bytes.NewReader(bodyBytes)
	} else {
		bodyReader = bytes.NewReader([]byte{})
	}

	req, err := http.NewRequest(method, ts.URL+path, bodyReader)
	require.NoError(t, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	return resp
}

func parseResponse(t *testing.T, resp *http.Response, v interface{}) {
	defer resp.Body.Close()
	err := json.NewDecoder(resp.Body).Decode(v)
	require.NoError(t, err)
}

func TestAPI_EventOperations(t *testing.T) {
	ts := newTestServer(t)

	var createdEvent eventResponse

	t.Run("Create Event", func(t *testing.T) {
		createReq := map[string]interface{}{
			"title":       "Moved to Lisbon",
			"description": "left the old flat",
			"startTime":   "2024-03-10T09:30:00Z",
			"displayUnit": "days",
			"pinned":      true,
		}

		resp := makeRequest(t, ts, "POST", "/api/events", createReq)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		parseResponse(t, resp, &createdEvent)
		assert.NotEmpty(t, createdEvent.EventID)
		assert.Equal(t, "Moved to Lisbon", createdEvent.Title)
		assert.Equal(t, "left the old flat", *createdEvent.Description)
		assert.True(t, createdEvent.Pinned)
		assert.NotEmpty(t, createdEvent.Elapsed)
		assert.NotEmpty(t, createdEvent.ElapsedApprox)
		assert.False(t, createdEvent.CreationTime.IsZero())

		// Milestone notifications are placed in the background.
		ts.drain(t)
		assert.NotEmpty(t, ts.mock.ScheduleCalls)
	})

	t.Run("Get Event", func(t *testing.T) {
		resp := makeRequest(t, ts, "GET", "/api/events/"+createdEvent.EventID, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var ev eventResponse
		parseResponse(t, resp, &ev)
		assert.Equal(t, createdEvent.EventID, ev.EventID)
		assert.Equal(t, createdEvent.Title, ev.Title)
	})

	t.Run("List Events", func(t *testing.T) {
		createReq := map[string]interface{}{
			"title":       "Quit smoking",
			"startTime":   "2025-01-01T00:00:00Z",
			"displayUnit": "weeks",
		}
		resp := makeRequest(t, ts, "POST", "/api/events", createReq)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()

		resp = makeRequest(t, ts, "GET", "/api/events", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result map[string]interface{}
		parseResponse(t, resp, &result)

		events := result["events"].([]interface{})
		count := result["count"].(float64)

		assert.Equal(t, float64(2), count)
		assert.Len(t, events, 2)

		// Pinned events sort first.
		first := events[0].(map[string]interface{})
		assert.Equal(t, "Moved to Lisbon", first["title"])
	})

	t.Run("Update Event", func(t *testing.T) {
		updateReq := map[string]interface{}{
			"title":       "Moved to Porto",
			"startTime":   "2024-03-10T09:30:00Z",
			"displayUnit": "months",
			"pinned":      true,
		}

		resp := makeRequest(t, ts, "PUT", "/api/events/"+createdEvent.EventID, updateReq)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var ev eventResponse
		parseResponse(t, resp, &ev)
		assert.Equal(t, "Moved to Porto", ev.Title)
		assert.Equal(t, "months", string(ev.DisplayUnit))
	})

	t.Run("Delete Event", func(t *testing.T) {
		resp := makeRequest(t, ts, "DELETE", "/api/events/"+createdEvent.EventID, nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp = makeRequest(t, ts, "GET", "/api/events/"+createdEvent.EventID, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Create Event - Invalid JSON", func(t *testing.T) {
		req, _ := http.NewRequest("POST", ts.URL+"/api/events", strings.NewReader("invalid json"))
		req.Header.Set("Content-Type", "application/json")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Create Event - Missing Title", func(t *testing.T) {
		createReq := map[string]interface{}{
			"startTime":   "2024-03-10T09:30:00Z",
			"displayUnit": "days",
		}

		resp := makeRequest(t, ts, "POST", "/api/events", createReq)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Create Event - Bad Display Unit", func(t *testing.T) {
		createReq := map[string]interface{}{
			"title":       "Bad unit",
			"startTime":   "2024-03-10T09:30:00Z",
			"displayUnit": "fortnights",
		}

		resp := makeRequest(t, ts, "POST", "/api/events", createReq)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Get Event - Not Found", func(t *testing.T) {
		resp := makeRequest(t, ts, "GET", "/api/events/nonexistent", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestAPI_MilestoneListing(t *testing.T) {
	ts := newTestServer(t)

	start := time.Now().UTC().AddDate(0, 0, -101)
	createReq := map[string]interface{}{
		"title":       "Started running",
		"startTime":   start.Format(time.RFC3339),
		"displayUnit": "days",
	}

	resp := makeRequest(t, ts, "POST", "/api/events", createReq)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var ev eventResponse
	parseResponse(t, resp, &ev)
	ts.drain(t)

	resp = makeRequest(t, ts, "GET", "/api/events/"+ev.EventID+"/milestones", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Milestones []services.MilestoneStatus `json:"milestones"`
		Count      int                        `json:"count"`
	}
	parseResponse(t, resp, &result)

	assert.Equal(t, 13, result.Count)
	require.Len(t, result.Milestones, 13)
	assert.Equal(t, "1 Week", result.Milestones[0].Label)
	assert.Equal(t, "10 Years", result.Milestones[12].Label)

	// 101 days in: the first four targets are behind us.
	reached := 0
	for _, ms := range result.Milestones {
		if ms.Reached {
			reached++
			assert.NotNil(t, ms.ReachedTime)
		}
	}
	assert.Equal(t, 4, reached)

	t.Run("Unknown Event", func(t *testing.T) {
		resp := makeRequest(t, ts, "GET", "/api/events/nonexistent/milestones", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestAPI_ReminderOperations(t *testing.T) {
	ts := newTestServer(t)

	createEventReq := map[string]interface{}{
		"title":       "Sober since",
		"startTime":   "2024-01-01T00:00:00Z",
		"displayUnit": "days",
	}
	resp := makeRequest(t, ts, "POST", "/api/events", createEventReq)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var ev eventResponse
	parseResponse(t, resp, &ev)
	ts.drain(t)

	basePath := "/api/events/" + ev.EventID + "/reminders"
	future := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)

	var created reminderResponse

	t.Run("Create Reminder", func(t *testing.T) {
		createReq := map[string]interface{}{
			"kind":          "one_off",
			"scheduledTime": future.Format(time.RFC3339),
		}

		resp := makeRequest(t, ts, "POST", basePath, createReq)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		parseResponse(t, resp, &created)
		require.NotNil(t, created.Reminder)
		assert.NotEmpty(t, created.Reminder.ReminderID)
		assert.Equal(t, ev.EventID, created.Reminder.EventID)
		assert.Equal(t, scheduling.OutcomeScheduled, created.Scheduling.Outcome)
		assert.NotEmpty(t, created.Scheduling.Handle)
	})

	t.Run("Create Reminder - Past One-Off", func(t *testing.T) {
		createReq := map[string]interface{}{
			"kind":          "one_off",
			"scheduledTime": "2020-01-01T08:00:00Z",
		}

		resp := makeRequest(t, ts, "POST", basePath, createReq)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var out reminderResponse
		parseResponse(t, resp, &out)
		assert.Equal(t, scheduling.OutcomePastTrigger, out.Scheduling.Outcome)
		assert.Empty(t, out.Scheduling.Handle)
	})

	t.Run("Create Reminder - Recurring", func(t *testing.T) {
		createReq := map[string]interface{}{
			"kind":           "recurring",
			"scheduledTime":  future.Format(time.RFC3339),
			"recurrenceRule": "weekly",
		}

		resp := makeRequest(t, ts, "POST", basePath, createReq)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var out reminderResponse
		parseResponse(t, resp, &out)
		assert.Equal(t, scheduling.OutcomeScheduled, out.Scheduling.Outcome)
	})

	t.Run("List Reminders", func(t *testing.T) {
		resp := makeRequest(t, ts, "GET", basePath, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result map[string]interface{}
		parseResponse(t, resp, &result)
		// The past one-off drops out of the default listing.
		assert.Equal(t, float64(2), result["count"])

		resp = makeRequest(t, ts, "GET", basePath+"?includePast=true", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		parseResponse(t, resp, &result)
		assert.Equal(t, float64(3), result["count"])
	})

	t.Run("Update Reminder", func(t *testing.T) {
		updateReq := map[string]interface{}{
			"kind":          "one_off",
			"scheduledTime": future.Add(24 * time.Hour).Format(time.RFC3339),
		}

		resp := makeRequest(t, ts, "PUT", basePath+"/"+created.Reminder.ReminderID, updateReq)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var out reminderResponse
		parseResponse(t, resp, &out)
		assert.Equal(t, scheduling.OutcomeScheduled, out.Scheduling.Outcome)
		assert.NotEqual(t, created.Scheduling.Handle, out.Scheduling.Handle)
	})

	t.Run("Delete Reminder", func(t *testing.T) {
		resp := makeRequest(t, ts, "DELETE", basePath+"/"+created.Reminder.ReminderID, nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp = makeRequest(t, ts, "GET", basePath+"/"+created.Reminder.ReminderID, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Create Reminder - Invalid Kind", func(t *testing.T) {
		createReq := map[string]interface{}{
			"kind":          "sometime",
			"scheduledTime": future.Format(time.RFC3339),
		}

		resp := makeRequest(t, ts, "POST", basePath, createReq)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Create Reminder - Recurring Without Rule", func(t *testing.T) {
		createReq := map[string]interface{}{
			"kind":          "recurring",
			"scheduledTime": future.Format(time.RFC3339),
		}

		resp := makeRequest(t, ts, "POST", basePath, createReq)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Create Reminder - Unknown Event", func(t *testing.T) {
		createReq := map[string]interface{}{
			"kind":          "one_off",
			"scheduledTime": future.Format(time.RFC3339),
		}

		resp := makeRequest(t, ts, "POST", "/api/events/nonexistent/reminders", createReq)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestAPI_ElapsedEndpoint(t *testing.T) {
	ts := newTestServer(t)

	t.Run("Pinned Now", func(t *testing.T) {
		resp := makeRequest(t, ts, "GET", "/api/elapsed?start=2024-03-10T09:30:00Z&unit=weeks&now=2024-03-31T09:30:00Z", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result map[string]interface{}
		parseResponse(t, resp, &result)
		assert.Equal(t, "3 weeks", result["elapsed"])
		assert.Equal(t, float64(21), result["totalDays"])
	})

	t.Run("Default Unit", func(t *testing.T) {
		resp := makeRequest(t, ts, "GET", "/api/elapsed?start=2024-03-10T09:30:00Z&now=2024-03-13T09:30:00Z", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result map[string]interface{}
		parseResponse(t, resp, &result)
		assert.Equal(t, "3 days", result["elapsed"])
	})

	t.Run("Missing Start", func(t *testing.T) {
		resp := makeRequest(t, ts, "GET", "/api/elapsed?unit=days", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Bad Unit", func(t *testing.T) {
		resp := makeRequest(t, ts, "GET", "/api/elapsed?start=2024-03-10T09:30:00Z&unit=fortnights", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestAPI_ErrorCases(t *testing.T) {
	ts := newTestServer(t)

	t.Run("Nonexistent Endpoint", func(t *testing.T) {
		resp := makeRequest(t, ts, "GET", "/api/nonexistent", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Trailing Slash", func(t *testing.T) {
		resp := makeRequest(t, ts, "GET", "/api/events/", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("Wrong Method", func(t *testing.T) {
		resp := makeRequest(t, ts, "PATCH", "/api/events", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}
