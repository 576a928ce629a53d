package notify

import (
	"context"
	"fmt"
)

// Noop is the provider wired in when notifications are disabled.
// Permission is always denied, so every schedule attempt degrades to a
// skip before reaching Schedule.
type Noop struct{}

// NewNoop creates a Noop provider.
func NewNoop() *Noop { return &Noop{} }

var _ Provider = (*Noop)(nil)

func (*Noop) RequestPermission(context.Context) (bool, error) { return false, nil }

func (*Noop) Schedule(context.Context, ScheduleRequest) (string, error) {
	return "", fmt.Errorf("notifications disabled")
}

func (*Noop) Cancel(context.Context, string) error { return nil }

func (*Noop) ListScheduled(context.Context) ([]Scheduled, error) { return nil, nil }
