package sqlite

import "database/sql"

// EnsureSchema creates the core tables if they do not exist. SQLite is
// the zero-configuration default backend, so the schema is applied on
// every open instead of through migrations.
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS events (
            event_id      TEXT PRIMARY KEY,
            title         TEXT NOT NULL,
            description   TEXT,
            start_time    TIMESTAMP NOT NULL,
            display_unit  TEXT NOT NULL,
            pinned        BOOLEAN NOT NULL DEFAULT 0,
            creation_time TIMESTAMP NOT NULL,
            update_time   TIMESTAMP NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS milestones (
            milestone_id  TEXT PRIMARY KEY,
            event_id      TEXT NOT NULL REFERENCES events(event_id) ON DELETE CASCADE,
            label         TEXT NOT NULL,
            target_amount REAL NOT NULL,
            target_unit   TEXT NOT NULL,
            position      INTEGER NOT NULL DEFAULT 0,
            reached_time  TIMESTAMP,
            creation_time TIMESTAMP NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS milestones_event_id_idx ON milestones(event_id);`,
		`CREATE TABLE IF NOT EXISTS reminders (
            reminder_id     TEXT PRIMARY KEY,
            event_id        TEXT NOT NULL REFERENCES events(event_id) ON DELETE CASCADE,
            kind            TEXT NOT NULL,
            scheduled_time  TIMESTAMP NOT NULL,
            recurrence_rule TEXT NOT NULL DEFAULT '',
            creation_time   TIMESTAMP NOT NULL,
            update_time     TIMESTAMP NOT NULL
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
