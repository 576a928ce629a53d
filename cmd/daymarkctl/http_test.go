package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDoGet_ReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	data, err := doGet(srv.URL + "/api/events")
	if err != nil {
		t.Fatalf("doGet: %v", err)
	}
	if string(data) != `{"ok":true}` {
		t.Fatalf("unexpected body: %s", data)
	}
}

func TestDoPostJSON_SendsPayload(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected json content type, got %q", ct)
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"eventId":"ev-1"}`))
	}))
	defer srv.Close()

	data, err := doPostJSON(srv.URL+"/api/events", map[string]interface{}{
		"title":       "Quit smoking",
		"startTime":   "2025-01-01T00:00:00Z",
		"displayUnit": "days",
	})
	if err != nil {
		t.Fatalf("doPostJSON: %v", err)
	}
	if got["title"] != "Quit smoking" {
		t.Fatalf("payload not forwarded: %+v", got)
	}
	if !strings.Contains(string(data), "ev-1") {
		t.Fatalf("unexpected response: %s", data)
	}
}

func TestDoPutJSON_UsesPutMethod(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	if _, err := doPutJSON(srv.URL+"/api/events/ev-1", map[string]interface{}{"title": "x"}); err != nil {
		t.Fatalf("doPutJSON: %v", err)
	}
}

func TestDoDelete_AcceptsNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("expected DELETE, got %s", r.Method)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	if err := doDelete(srv.URL + "/api/events/ev-1"); err != nil {
		t.Fatalf("doDelete: %v", err)
	}
}

func TestReadOK_SurfacesErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Not Found","code":404,"message":"event not found"}`))
	}))
	defer srv.Close()

	_, err := doGet(srv.URL + "/api/events/missing")
	if err == nil {
		t.Fatalf("expected error for 404")
	}
	if !strings.Contains(err.Error(), "http 404") || !strings.Contains(err.Error(), "event not found") {
		t.Fatalf("error should carry status and body: %v", err)
	}
}
