package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const localLearnerKey = "local_learner_id"

// LocalLearnerID returns the learner id of this installation, generating
// and saving one on first use.
func (s *Store) LocalLearnerID(ctx context.Context) (string, error) {
	var id string
	err := s.db.GetContext(ctx, &id, `SELECT value FROM settings WHERE key = ?`, localLearnerKey)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("read learner id: %w", err)
	}

	id = uuid.NewString()
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`, localLearnerKey, id); err != nil {
		return "", fmt.Errorf("save learner id: %w", err)
	}
	// Another process may have won the insert.
	if err := s.db.GetContext(ctx, &id, `SELECT value FROM settings WHERE key = ?`, localLearnerKey); err != nil {
		return "", fmt.Errorf("read learner id: %w", err)
	}
	return id, nil
}
