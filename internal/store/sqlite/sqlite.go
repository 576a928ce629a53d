// Package sqlite implements store.Store on an embedded SQLite database.
// It is the default backend: a single file, no server, schema applied
// on open.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/daymark/daymark/internal/model"
	"github.com/daymark/daymark/internal/store"
)

// Open opens (creating if necessary) the SQLite database at path and
// ensures the schema exists. WAL mode and foreign keys are enabled via
// DSN pragmas so every pooled connection gets them.
func Open(path string) (store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure sqlite schema: %w", err)
	}
	return New(db), nil
}

// New wraps an existing database handle. The schema must already exist.
func New(db *sql.DB) store.Store {
	return &sqliteStore{db: db}
}

type sqliteStore struct {
	db *sql.DB
}

func (s *sqliteStore) Events() store.Events         { return &events{db: s.db} }
func (s *sqliteStore) Milestones() store.Milestones { return &milestones{db: s.db} }
func (s *sqliteStore) Reminders() store.Reminders   { return &reminders{db: s.db} }

func (s *sqliteStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }
func (s *sqliteStore) Close() error                   { return s.db.Close() }

// mapErr converts driver-level constraint failures into the sentinel
// errors callers switch on. Anything else passes through untouched.
func mapErr(err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return model.ErrConflict
		}
	}
	return err
}

// events implements store.Events.
type events struct {
	db *sql.DB
}

func (e *events) Create(ctx context.Context, ev *model.Event) (*model.Event, error) {
	id := ev.EventID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()

	_, err := e.db.ExecContext(ctx,
		`INSERT INTO events (event_id, title, description, start_time, display_unit, pinned, creation_time, update_time)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, ev.Title, ev.Description, ev.StartTime.UTC(), string(ev.DisplayUnit), ev.Pinned, now, now)
	if err != nil {
		return nil, mapErr(err)
	}

	out := *ev
	out.EventID = id
	out.CreationTime = now
	out.UpdateTime = now
	return &out, nil
}

func (e *events) Get(ctx context.Context, eventID string) (*model.Event, error) {
	row := e.db.QueryRowContext(ctx,
		`SELECT event_id, title, description, start_time, display_unit, pinned, creation_time, update_time
         FROM events WHERE event_id = ?`, eventID)
	return scanEvent(row)
}

func (e *events) List(ctx context.Context) ([]*model.Event, error) {
	rows, err := e.db.QueryContext(ctx,
		`SELECT event_id, title, description, start_time, display_unit, pinned, creation_time, update_time
         FROM events ORDER BY pinned DESC, creation_time DESC, event_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Event
	for rows.Next() {
		var ev model.Event
		var unit string
		if err := rows.Scan(&ev.EventID, &ev.Title, &ev.Description, &ev.StartTime, &unit, &ev.Pinned, &ev.CreationTime, &ev.UpdateTime); err != nil {
			return nil, err
		}
		ev.DisplayUnit = model.Unit(unit)
		out = append(out, &ev)
	}
	return out, rows.Err()
}

func (e *events) Update(ctx context.Context, ev *model.Event) (*model.Event, error) {
	now := time.Now().UTC()
	res, err := e.db.ExecContext(ctx,
		`UPDATE events SET title = ?, description = ?, start_time = ?, display_unit = ?, pinned = ?, update_time = ?
         WHERE event_id = ?`,
		ev.Title, ev.Description, ev.StartTime.UTC(), string(ev.DisplayUnit), ev.Pinned, now, ev.EventID)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, model.ErrNotFound
	}
	return e.Get(ctx, ev.EventID)
}

func (e *events) Delete(ctx context.Context, eventID string) error {
	tx, err := e.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// Children go first so the delete works even on handles opened
	// without the foreign_keys pragma.
	if _, err := tx.ExecContext(ctx, `DELETE FROM reminders WHERE event_id = ?`, eventID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM milestones WHERE event_id = ?`, eventID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM events WHERE event_id = ?`, eventID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return tx.Commit()
}

func scanEvent(row *sql.Row) (*model.Event, error) {
	var ev model.Event
	var unit string
	if err := row.Scan(&ev.EventID, &ev.Title, &ev.Description, &ev.StartTime, &unit, &ev.Pinned, &ev.CreationTime, &ev.UpdateTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	ev.DisplayUnit = model.Unit(unit)
	return &ev, nil
}

// milestones implements store.Milestones.
type milestones struct {
	db *sql.DB
}

func (m *milestones) CreateBatch(ctx context.Context, eventID string, defs []model.MilestoneDefinition) ([]*model.Milestone, error) {
	tx, err := m.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	out := make([]*model.Milestone, 0, len(defs))
	for i, def := range defs {
		id := uuid.New().String()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO milestones (milestone_id, event_id, label, target_amount, target_unit, position, creation_time)
             VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, eventID, def.Label, def.Amount, string(def.Unit), i, now); err != nil {
			return nil, mapErr(err)
		}
		out = append(out, &model.Milestone{
			MilestoneID:  id,
			EventID:      eventID,
			Label:        def.Label,
			TargetAmount: def.Amount,
			TargetUnit:   def.Unit,
			CreationTime: now,
		})
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *milestones) List(ctx context.Context, eventID string) ([]*model.Milestone, error) {
	rows, err := m.db.QueryContext(ctx,
		`SELECT milestone_id, event_id, label, target_amount, target_unit, reached_time, creation_time
         FROM milestones WHERE event_id = ? ORDER BY position ASC, milestone_id ASC`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Milestone
	for rows.Next() {
		var ms model.Milestone
		var unit string
		if err := rows.Scan(&ms.MilestoneID, &ms.EventID, &ms.Label, &ms.TargetAmount, &unit, &ms.ReachedTime, &ms.CreationTime); err != nil {
			return nil, err
		}
		ms.TargetUnit = model.Unit(unit)
		out = append(out, &ms)
	}
	return out, rows.Err()
}

func (m *milestones) StampReached(ctx context.Context, milestoneID string, reachedAt time.Time) error {
	res, err := m.db.ExecContext(ctx,
		`UPDATE milestones SET reached_time = ? WHERE milestone_id = ? AND reached_time IS NULL`,
		reachedAt.UTC(), milestoneID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	// Zero rows means either the stamp already exists (keep it) or the
	// milestone is unknown.
	var exists int
	row := m.db.QueryRowContext(ctx, `SELECT 1 FROM milestones WHERE milestone_id = ?`, milestoneID)
	if err := row.Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ErrNotFound
		}
		return err
	}
	return nil
}

// reminders implements store.Reminders.
type reminders struct {
	db *sql.DB
}

func (r *reminders) Create(ctx context.Context, rem *model.Reminder) (*model.Reminder, error) {
	id := rem.ReminderID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO reminders (reminder_id, event_id, kind, scheduled_time, recurrence_rule, creation_time, update_time)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, rem.EventID, string(rem.Kind), rem.ScheduledTime.UTC(), string(rem.Rule), now, now)
	if err != nil {
		return nil, mapErr(err)
	}

	out := *rem
	out.ReminderID = id
	out.CreationTime = now
	out.UpdateTime = now
	return &out, nil
}

func (r *reminders) Get(ctx context.Context, reminderID string) (*model.Reminder, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT reminder_id, event_id, kind, scheduled_time, recurrence_rule, creation_time, update_time
         FROM reminders WHERE reminder_id = ?`, reminderID)

	rem, err := scanReminder(row)
	if err != nil {
		return nil, err
	}
	return rem, nil
}

func (r *reminders) List(ctx context.Context, eventID string, includePast bool) ([]*model.Reminder, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT reminder_id, event_id, kind, scheduled_time, recurrence_rule, creation_time, update_time
         FROM reminders WHERE event_id = ? ORDER BY scheduled_time ASC, reminder_id ASC`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	now := time.Now().UTC()
	var out []*model.Reminder
	for rows.Next() {
		var rem model.Reminder
		var kind, rule string
		if err := rows.Scan(&rem.ReminderID, &rem.EventID, &kind, &rem.ScheduledTime, &rule, &rem.CreationTime, &rem.UpdateTime); err != nil {
			return nil, err
		}
		rem.Kind = model.ReminderKind(kind)
		rem.Rule = model.RecurrenceRule(rule)
		if !includePast && rem.Kind == model.ReminderOneOff && !rem.ScheduledTime.After(now) {
			continue
		}
		out = append(out, &rem)
	}
	return out, rows.Err()
}

func (r *reminders) Update(ctx context.Context, rem *model.Reminder) (*model.Reminder, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE reminders SET kind = ?, scheduled_time = ?, recurrence_rule = ?, update_time = ?
         WHERE reminder_id = ?`,
		string(rem.Kind), rem.ScheduledTime.UTC(), string(rem.Rule), now, rem.ReminderID)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, model.ErrNotFound
	}
	return r.Get(ctx, rem.ReminderID)
}

func (r *reminders) Delete(ctx context.Context, reminderID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reminders WHERE reminder_id = ?`, reminderID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func scanReminder(row *sql.Row) (*model.Reminder, error) {
	var rem model.Reminder
	var kind, rule string
	if err := row.Scan(&rem.ReminderID, &rem.EventID, &kind, &rem.ScheduledTime, &rule, &rem.CreationTime, &rem.UpdateTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	rem.Kind = model.ReminderKind(kind)
	rem.Rule = model.RecurrenceRule(rule)
	return &rem, nil
}
