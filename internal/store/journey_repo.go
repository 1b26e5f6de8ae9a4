package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/abhisek/luminary/internal/journey"
)

// JourneyRepo persists assessed levels and the journey transition log.
type JourneyRepo struct {
	db  *sqlx.DB
	seq *sequenceCounter
}

var (
	_ journey.Store         = (*JourneyRepo)(nil)
	_ journey.EventRecorder = (*JourneyRepo)(nil)
	_ journey.Lister        = (*JourneyRepo)(nil)
)

type journeyRow struct {
	LearnerID string `db:"learner_id"`
	SubjectID string `db:"subject_id"`
	Level     string `db:"level"`
	SavedAt   int64  `db:"saved_at"`
	Version   int    `db:"version"`
}

func (r journeyRow) saved() journey.SavedJourney {
	return journey.SavedJourney{
		Key: journey.Key{LearnerID: r.LearnerID, SubjectID: r.SubjectID},
		Record: journey.Record{
			Level:   journey.Level(r.Level),
			SavedAt: time.Unix(0, r.SavedAt).UTC(),
			Version: r.Version,
		},
	}
}

func (r *JourneyRepo) LoadJourney(ctx context.Context, key journey.Key) (*journey.Record, error) {
	var row journeyRow
	err := r.db.GetContext(ctx, &row,
		`SELECT * FROM journeys WHERE learner_id = ? AND subject_id = ?`,
		key.LearnerID, key.SubjectID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load journey %s: %w", key, err)
	}
	rec := row.saved().Record
	return &rec, nil
}

func (r *JourneyRepo) SaveJourney(ctx context.Context, key journey.Key, rec journey.Record) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO journeys (learner_id, subject_id, level, saved_at, version)
		VALUES (:learner_id, :subject_id, :level, :saved_at, :version)
		ON CONFLICT (learner_id, subject_id) DO UPDATE SET
			level = excluded.level,
			saved_at = excluded.saved_at,
			version = excluded.version`,
		journeyRow{
			LearnerID: key.LearnerID,
			SubjectID: key.SubjectID,
			Level:     string(rec.Level),
			SavedAt:   rec.SavedAt.UnixNano(),
			Version:   rec.Version,
		})
	if err != nil {
		return fmt.Errorf("save journey %s: %w", key, err)
	}
	return nil
}

func (r *JourneyRepo) DeleteJourney(ctx context.Context, key journey.Key) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM journeys WHERE learner_id = ? AND subject_id = ?`,
		key.LearnerID, key.SubjectID)
	if err != nil {
		return fmt.Errorf("delete journey %s: %w", key, err)
	}
	return nil
}

func (r *JourneyRepo) ListJourneys(ctx context.Context, learnerID string) ([]journey.SavedJourney, error) {
	var rows []journeyRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM journeys WHERE learner_id = ? ORDER BY subject_id`, learnerID)
	if err != nil {
		return nil, fmt.Errorf("list journeys: %w", err)
	}
	out := make([]journey.SavedJourney, len(rows))
	for i, row := range rows {
		out[i] = row.saved()
	}
	return out, nil
}

type journeyEventRow struct {
	ID         int     `db:"id"`
	Sequence   int64   `db:"sequence"`
	LearnerID  string  `db:"learner_id"`
	SubjectID  string  `db:"subject_id"`
	Action     string  `db:"action"`
	Stage      string  `db:"stage"`
	Level      string  `db:"level"`
	Confidence float64 `db:"confidence"`
	Turn       int     `db:"turn"`
	Timestamp  int64   `db:"timestamp"`
}

// JourneyEventRecord is a stored journey transition.
type JourneyEventRecord struct {
	ID       int
	Sequence int64
	journey.Event
}

func (r *JourneyRepo) AppendJourneyEvent(ctx context.Context, ev journey.Event) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.db.NamedExecContext(ctx, `
		INSERT INTO journey_events (
			sequence, learner_id, subject_id, action, stage, level, confidence, turn, timestamp
		) VALUES (
			:sequence, :learner_id, :subject_id, :action, :stage, :level, :confidence, :turn, :timestamp
		)`,
		journeyEventRow{
			Sequence:   seqNum,
			LearnerID:  ev.Key.LearnerID,
			SubjectID:  ev.Key.SubjectID,
			Action:     string(ev.Action),
			Stage:      string(ev.Stage),
			Level:      string(ev.Level),
			Confidence: ev.Confidence,
			Turn:       ev.Turn,
			Timestamp:  ev.Timestamp.UnixNano(),
		})
	if err != nil {
		return fmt.Errorf("save journey event: %w", err)
	}
	return nil
}

// History returns the transitions recorded for key, oldest first.
func (r *JourneyRepo) History(ctx context.Context, key journey.Key, opts QueryOpts) ([]JourneyEventRecord, error) {
	conds, args := whereOpts(opts)
	conds = append([]string{"learner_id = ?", "subject_id = ?"}, conds...)
	args = append([]any{key.LearnerID, key.SubjectID}, args...)

	query := `SELECT * FROM journey_events WHERE ` + strings.Join(conds, " AND ") + ` ORDER BY sequence`
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	var rows []journeyEventRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query journey events: %w", err)
	}

	out := make([]JourneyEventRecord, len(rows))
	for i, row := range rows {
		out[i] = JourneyEventRecord{
			ID:       row.ID,
			Sequence: row.Sequence,
			Event: journey.Event{
				Key:        journey.Key{LearnerID: row.LearnerID, SubjectID: row.SubjectID},
				Action:     journey.EventAction(row.Action),
				Stage:      journey.Stage(row.Stage),
				Level:      journey.Level(row.Level),
				Confidence: row.Confidence,
				Turn:       row.Turn,
				Timestamp:  time.Unix(0, row.Timestamp).UTC(),
			},
		}
	}
	return out, nil
}
