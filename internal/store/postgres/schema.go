package postgres

import "database/sql"

// EnsureSchema creates the core tables if they do not exist. Deployments
// that manage schema through migrations can skip this and wrap an
// existing handle with New.
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS events (
            event_id      TEXT PRIMARY KEY,
            title         TEXT NOT NULL,
            description   TEXT,
            start_time    TIMESTAMPTZ NOT NULL,
            display_unit  TEXT NOT NULL,
            pinned        BOOLEAN NOT NULL DEFAULT FALSE,
            creation_time TIMESTAMPTZ NOT NULL DEFAULT now(),
            update_time   TIMESTAMPTZ NOT NULL DEFAULT now()
        );`,
		`CREATE TABLE IF NOT EXISTS milestones (
            milestone_id  TEXT PRIMARY KEY,
            event_id      TEXT NOT NULL REFERENCES events(event_id) ON DELETE CASCADE,
            label         TEXT NOT NULL,
            target_amount DOUBLE PRECISION NOT NULL,
            target_unit   TEXT NOT NULL,
            position      INTEGER NOT NULL DEFAULT 0,
            reached_time  TIMESTAMPTZ,
            creation_time TIMESTAMPTZ NOT NULL DEFAULT now()
        );`,
		`CREATE INDEX IF NOT EXISTS milestones_event_id_idx ON milestones(event_id);`,
		`CREATE TABLE IF NOT EXISTS reminders (
            reminder_id     TEXT PRIMARY KEY,
            event_id        TEXT NOT NULL REFERENCES events(event_id) ON DELETE CASCADE,
            kind            TEXT NOT NULL,
            scheduled_time  TIMESTAMPTZ NOT NULL,
            recurrence_rule TEXT NOT NULL DEFAULT '',
            creation_time   TIMESTAMPTZ NOT NULL DEFAULT now(),
            update_time     TIMESTAMPTZ NOT NULL DEFAULT now()
        );`,
		`CREATE INDEX IF NOT EXISTS reminders_event_id_idx ON reminders(event_id);`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
