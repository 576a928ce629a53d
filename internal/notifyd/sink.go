package notifyd

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/daymark/daymark/internal/notify"
)

// Sink receives fired notifications. Delivery is best-effort; a sink
// error never stops the other sinks or the scan.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, rec Record) error
}

// LogSink writes fired notifications to the structured log. It is the
// stand-in for the OS banner and is always installed.
type LogSink struct {
	logger zerolog.Logger
}

func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Deliver(_ context.Context, rec Record) error {
	s.logger.Info().
		Str("handle", rec.Handle).
		Str("type", rec.Correlation.Type).
		Str("event_id", rec.Correlation.EventID).
		Str("title", rec.Content.Title).
		Str("body", rec.Content.Body).
		Msg("notification fired")
	return nil
}

// WebhookSink forwards fired notifications to an external HTTP endpoint.
type WebhookSink struct {
	http *resty.Client
}

func NewWebhookSink(url string) *WebhookSink {
	c := resty.New().
		SetBaseURL(url).
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second)
	return &WebhookSink{http: c}
}

func (s *WebhookSink) Name() string { return "webhook" }

func (s *WebhookSink) Deliver(ctx context.Context, rec Record) error {
	payload := struct {
		Handle      string             `json:"handle"`
		Content     notify.Content     `json:"content"`
		Correlation notify.Correlation `json:"correlation"`
		FiredAt     time.Time          `json:"firedAt"`
	}{
		Handle:      rec.Handle,
		Content:     rec.Content,
		Correlation: rec.Correlation,
		FiredAt:     time.Now().UTC(),
	}
	resp, err := s.http.R().SetContext(ctx).SetBody(&payload).Post("")
	if err != nil {
		return fmt.Errorf("webhook post: %w", err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return fmt.Errorf("webhook post: status %d", resp.StatusCode())
	}
	return nil
}
