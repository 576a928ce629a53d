package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/daymark/daymark/internal/milestone"
	"github.com/daymark/daymark/internal/model"
	"github.com/daymark/daymark/internal/scheduling"
	"github.com/daymark/daymark/internal/store"
	"github.com/daymark/daymark/internal/tasks"
)

// MilestoneStatus is a milestone with its reached state and
// calendar-correct target date resolved against the event start.
type MilestoneStatus struct {
	model.Milestone
	TargetDate time.Time `json:"targetDate"`
	Reached    bool      `json:"reached"`
}

// EventService orchestrates event use cases: persistence, the default
// milestone burst at creation, and keeping external notification
// schedules in sync with renames and deletion.
type EventService struct {
	store  store.Store
	coord  *scheduling.Coordinator
	runner *tasks.Runner
	logger zerolog.Logger
}

func NewEventService(st store.Store, coord *scheduling.Coordinator, runner *tasks.Runner, logger zerolog.Logger) *EventService {
	return &EventService{store: st, coord: coord, runner: runner, logger: logger}
}

// CreateEvent persists the event, instantiates the default milestone
// set, and hands milestone notification scheduling to a detached task.
// Scheduling failures are logged by the coordinator and never surface
// here; a storage failure is the only thing that fails the operation.
func (s *EventService) CreateEvent(ctx context.Context, ev *model.Event) (*model.Event, error) {
	created, err := s.store.Events().Create(ctx, ev)
	if err != nil {
		return nil, err
	}
	milestones, err := s.store.Milestones().CreateBatch(ctx, created.EventID, milestone.Defaults())
	if err != nil {
		return nil, fmt.Errorf("create milestones for event %s: %w", created.EventID, err)
	}

	evCopy := *created
	s.runner.Go("schedule-milestones", func(taskCtx context.Context) {
		s.coord.ScheduleMilestonesForNewEvent(taskCtx, evCopy, milestones)
	})
	return created, nil
}

func (s *EventService) GetEvent(ctx context.Context, eventID string) (*model.Event, error) {
	return s.store.Events().Get(ctx, eventID)
}

func (s *EventService) ListEvents(ctx context.Context) ([]*model.Event, error) {
	return s.store.Events().List(ctx)
}

// UpdateEvent applies upd to the stored event. A title change triggers a
// synchronous reschedule of every reminder so notification bodies pick
// up the new name; milestone notifications are left alone. Storage
// errors from the reschedule pass propagate, scheduling outcomes do not.
func (s *EventService) UpdateEvent(ctx context.Context, upd *model.Event) (*model.Event, error) {
	existing, err := s.store.Events().Get(ctx, upd.EventID)
	if err != nil {
		return nil, err
	}
	renamed := existing.Title != upd.Title

	saved, err := s.store.Events().Update(ctx, upd)
	if err != nil {
		return nil, err
	}
	if renamed {
		if err := s.coord.RescheduleRemindersForRenamedEvent(ctx, *saved); err != nil {
			return nil, err
		}
	}
	return saved, nil
}

// DeleteEvent cancels the event's notifications best-effort, then
// deletes the row; milestones and reminders go with it. A cancel
// failure never blocks deletion.
func (s *EventService) DeleteEvent(ctx context.Context, eventID string) error {
	if _, err := s.store.Events().Get(ctx, eventID); err != nil {
		return err
	}
	s.coord.CancelAllNotificationsForEvent(ctx, eventID)
	return s.store.Events().Delete(ctx, eventID)
}

// ListMilestones returns the event's milestones ordered by approximate
// target days, with reached state resolved against now. A milestone
// observed reached for the first time is stamped in storage with its
// calendar-correct target date, so the recorded instant does not depend
// on when the reach was first noticed. Stamp failures are logged and
// the row is still returned as reached.
func (s *EventService) ListMilestones(ctx context.Context, eventID string) ([]*MilestoneStatus, error) {
	ev, err := s.store.Events().Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.Milestones().List(ctx, eventID)
	if err != nil {
		return nil, err
	}
	milestone.Sort(rows)

	now := time.Now().UTC()
	out := make([]*MilestoneStatus, 0, len(rows))
	for _, ms := range rows {
		target := milestone.TargetDate(ev.StartTime, ms.TargetAmount, ms.TargetUnit)
		def := model.MilestoneDefinition{Label: ms.Label, Amount: ms.TargetAmount, Unit: ms.TargetUnit}
		reached := ms.ReachedTime != nil || milestone.IsReached(def, ev.StartTime, now)

		if reached && ms.ReachedTime == nil {
			if err := s.store.Milestones().StampReached(ctx, ms.MilestoneID, target); err != nil {
				s.logger.Warn().
					Err(err).
					Str("milestone_id", ms.MilestoneID).
					Msg("milestone reach stamp failed")
			} else {
				t := target
				ms.ReachedTime = &t
			}
		}
		out = append(out, &MilestoneStatus{Milestone: *ms, TargetDate: target, Reached: reached})
	}
	return out, nil
}
