package notify

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Mock is an in-memory Provider for tests and local development. It
// records every call and never fires anything.
type Mock struct {
	mu sync.Mutex

	// Granted is the canned permission answer; errors, when set, are
	// returned ahead of any other behavior.
	Granted     bool
	PermErr     error
	ScheduleErr error
	CancelErr   error
	ListErr     error

	PermissionCalls int
	ScheduleCalls   []ScheduleRequest
	CancelCalls     []string

	entries map[string]Scheduled
}

// NewMock creates a Mock with permission granted and an empty store.
func NewMock() *Mock {
	return &Mock{Granted: true, entries: make(map[string]Scheduled)}
}

var _ Provider = (*Mock)(nil)

func (m *Mock) RequestPermission(context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PermissionCalls++
	if m.PermErr != nil {
		return false, m.PermErr
	}
	return m.Granted, nil
}

func (m *Mock) Schedule(_ context.Context, req ScheduleRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ScheduleCalls = append(m.ScheduleCalls, req)
	if m.ScheduleErr != nil {
		return "", m.ScheduleErr
	}
	if err := req.Trigger.Validate(); err != nil {
		return "", err
	}
	if err := req.Correlation.Validate(); err != nil {
		return "", err
	}
	handle := uuid.New().String()
	var next time.Time
	if req.Trigger.At != nil {
		next = *req.Trigger.At
	}
	m.entries[handle] = Scheduled{Handle: handle, Correlation: req.Correlation, Content: req.Content, NextFireAt: next}
	return handle, nil
}

func (m *Mock) Cancel(_ context.Context, handle string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CancelCalls = append(m.CancelCalls, handle)
	if m.CancelErr != nil {
		return m.CancelErr
	}
	delete(m.entries, handle)
	return nil
}

func (m *Mock) ListScheduled(context.Context) ([]Scheduled, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.live(), nil
}

// Live returns a deterministic snapshot of the store for assertions.
func (m *Mock) Live() []Scheduled {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.live()
}

func (m *Mock) live() []Scheduled {
	out := make([]Scheduled, 0, len(m.entries))
	for _, s := range m.entries {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out
}
