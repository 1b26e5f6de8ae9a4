package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// migrations run in order on every Open. Each statement is idempotent.
var migrations = []string{
	migrationJourneys,
	migrationJourneyEvents,
	migrationLLMRequestEvents,
	migrationSettings,
	migrationJourneyEventsIndex,
	migrationLLMPurposeIndex,
}

func migrate(db *sqlx.DB) error {
	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

// Timestamps are stored as Unix nanoseconds so they round-trip exactly.

const migrationJourneys = `
CREATE TABLE IF NOT EXISTS journeys (
    learner_id TEXT NOT NULL,
    subject_id TEXT NOT NULL,
    level TEXT NOT NULL,
    saved_at INTEGER NOT NULL,
    version INTEGER NOT NULL DEFAULT 1,
    PRIMARY KEY (learner_id, subject_id)
);
`

const migrationJourneyEvents = `
CREATE TABLE IF NOT EXISTS journey_events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    sequence INTEGER NOT NULL,
    learner_id TEXT NOT NULL,
    subject_id TEXT NOT NULL,
    action TEXT NOT NULL,
    stage TEXT NOT NULL,
    level TEXT NOT NULL DEFAULT '',
    confidence REAL NOT NULL DEFAULT 0,
    turn INTEGER NOT NULL DEFAULT 0,
    timestamp INTEGER NOT NULL
);
`

const migrationLLMRequestEvents = `
CREATE TABLE IF NOT EXISTS llm_request_events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    sequence INTEGER NOT NULL,
    timestamp INTEGER NOT NULL,
    provider TEXT NOT NULL,
    model TEXT NOT NULL,
    purpose TEXT NOT NULL,
    input_tokens INTEGER NOT NULL DEFAULT 0,
    output_tokens INTEGER NOT NULL DEFAULT 0,
    latency_ms INTEGER NOT NULL DEFAULT 0,
    success INTEGER NOT NULL DEFAULT 0,
    error_message TEXT NOT NULL DEFAULT '',
    request_body TEXT NOT NULL DEFAULT '',
    response_body TEXT NOT NULL DEFAULT ''
);
`

const migrationSettings = `
CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

const migrationJourneyEventsIndex = `
CREATE INDEX IF NOT EXISTS idx_journey_events_key ON journey_events(learner_id, subject_id, sequence);
`

const migrationLLMPurposeIndex = `
CREATE INDEX IF NOT EXISTS idx_llm_request_events_purpose ON llm_request_events(purpose);
`
