package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client is the Provider implementation backed by the notifyd daemon's
// HTTP API.
type Client struct {
	http *resty.Client
}

// NewClient creates a Client against the daemon base URL, e.g.
// http://localhost:8081.
func NewClient(baseURL string) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second)
	return &Client{http: c}
}

var _ Provider = (*Client)(nil)

func (c *Client) RequestPermission(ctx context.Context) (bool, error) {
	resp, err := c.http.R().SetContext(ctx).Post("/v1/permission/request")
	if err != nil {
		return false, fmt.Errorf("permission request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return false, fmt.Errorf("permission request: status %d: %s", resp.StatusCode(), resp.String())
	}
	var out struct {
		Granted bool `json:"granted"`
	}
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return false, fmt.Errorf("decode permission response: %w", err)
	}
	return out.Granted, nil
}

func (c *Client) Schedule(ctx context.Context, req ScheduleRequest) (string, error) {
	resp, err := c.http.R().SetContext(ctx).SetBody(&req).Post("/v1/notifications")
	if err != nil {
		return "", fmt.Errorf("schedule: %w", err)
	}
	if resp.StatusCode() != http.StatusCreated {
		return "", fmt.Errorf("schedule: status %d: %s", resp.StatusCode(), resp.String())
	}
	var out struct {
		Handle string `json:"handle"`
	}
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("decode schedule response: %w", err)
	}
	if out.Handle == "" {
		return "", fmt.Errorf("schedule: empty handle in response")
	}
	return out.Handle, nil
}

func (c *Client) Cancel(ctx context.Context, handle string) error {
	resp, err := c.http.R().SetContext(ctx).Delete("/v1/notifications/" + url.PathEscape(handle))
	if err != nil {
		return fmt.Errorf("cancel: %w", err)
	}
	if resp.StatusCode() != http.StatusNoContent {
		return fmt.Errorf("cancel: status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

func (c *Client) ListScheduled(ctx context.Context) ([]Scheduled, error) {
	resp, err := c.http.R().SetContext(ctx).Get("/v1/notifications")
	if err != nil {
		return nil, fmt.Errorf("list scheduled: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("list scheduled: status %d: %s", resp.StatusCode(), resp.String())
	}
	var out struct {
		Notifications []Scheduled `json:"notifications"`
	}
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("decode list response: %w", err)
	}
	return out.Notifications, nil
}

// Healthz probes the daemon liveness endpoint.
func (c *Client) Healthz(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get("/v1/healthz")
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("notifyd unhealthy: status %d", resp.StatusCode())
	}
	return nil
}

// HealthPing implements health.HealthPinger for the daemon-backed provider.
func (c *Client) HealthPing(ctx context.Context) error { return c.Healthz(ctx) }
