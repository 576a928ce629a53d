package store

import (
	"context"
	"time"

	"github.com/daymark/daymark/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (sqlite, postgres).
type Store interface {
	Events() Events
	Milestones() Milestones
	Reminders() Reminders

	// Ping verifies backend connectivity.
	Ping(ctx context.Context) error
	// Close releases the underlying connection pool.
	Close() error
}

type Events interface {
	Create(ctx context.Context, ev *model.Event) (*model.Event, error)
	Get(ctx context.Context, eventID string) (*model.Event, error)
	List(ctx context.Context) ([]*model.Event, error)
	Update(ctx context.Context, ev *model.Event) (*model.Event, error)
	// Delete removes the event and cascades to its milestones and reminders.
	Delete(ctx context.Context, eventID string) error
}

type Milestones interface {
	// CreateBatch inserts one milestone row per definition, preserving
	// the definitions' order in the returned slice.
	CreateBatch(ctx context.Context, eventID string, defs []model.MilestoneDefinition) ([]*model.Milestone, error)
	List(ctx context.Context, eventID string) ([]*model.Milestone, error)
	// StampReached records the reached instant once; a milestone already
	// stamped keeps its original stamp.
	StampReached(ctx context.Context, milestoneID string, reachedAt time.Time) error
}

type Reminders interface {
	Create(ctx context.Context, rem *model.Reminder) (*model.Reminder, error)
	Get(ctx context.Context, reminderID string) (*model.Reminder, error)
	// List returns the event's reminders. With includePast false, one-off
	// reminders whose scheduled instant has passed are filtered out;
	// recurring reminders are always returned.
	List(ctx context.Context, eventID string, includePast bool) ([]*model.Reminder, error)
	Update(ctx context.Context, rem *model.Reminder) (*model.Reminder, error)
	Delete(ctx context.Context, reminderID string) error
}
