// Package runlog keeps a journal of finished synchronization runs.
package runlog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/investsync/internal/syncer"
)

// ErrNotFound is returned for an unknown run id.
var ErrNotFound = errors.New("run not found")

// Summary is the indexed part of a journal entry.
type Summary struct {
	RunID      string        `json:"run_id"`
	Kind       syncer.Kind   `json:"kind"`
	Table      string        `json:"table"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Appended   int           `json:"appended"`
	Failed     int           `json:"failed"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
}

// Journal stores run reports in the sync_runs table. Full reports are
// kept as msgpack blobs.
type Journal struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewJournal creates a journal on a migrated journal database
func NewJournal(db *sql.DB, log zerolog.Logger) *Journal {
	return &Journal{
		db:  db,
		log: log.With().Str("repo", "runlog").Logger(),
	}
}

// RunFinished records report; it makes Journal a syncer.RunObserver.
func (j *Journal) RunFinished(ctx context.Context, report *syncer.Report) error {
	return j.Save(ctx, report)
}

// Save inserts or replaces the entry for report.RunID.
func (j *Journal) Save(ctx context.Context, report *syncer.Report) error {
	blob, err := msgpack.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode run %s: %w", report.RunID, err)
	}

	var runErr sql.NullString
	if report.Error != "" {
		runErr = sql.NullString{String: report.Error, Valid: true}
	}

	_, err = j.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO sync_runs
		(id, kind, target_table, started_at, finished_at, appended, failed, error, report)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.RunID,
		string(report.Kind),
		report.Table,
		report.StartedAt.UnixMilli(),
		report.FinishedAt.UnixMilli(),
		report.Appended,
		report.Failed(),
		runErr,
		blob,
	)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", report.RunID, err)
	}

	j.log.Debug().Str("run_id", report.RunID).Msg("Run recorded")
	return nil
}

// List returns the most recent runs first. An empty kind lists every kind.
func (j *Journal) List(ctx context.Context, kind syncer.Kind, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, kind, target_table, started_at, finished_at, appended, failed, error
		FROM sync_runs`
	args := []any{}
	if kind != "" {
		query += " WHERE kind = ?"
		args = append(args, string(kind))
	}
	query += " ORDER BY started_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			s                 Summary
			kindStr           string
			started, finished int64
			runErr            sql.NullString
		)
		if err := rows.Scan(&s.RunID, &kindStr, &s.Table, &started, &finished, &s.Appended, &s.Failed, &runErr); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		s.Kind = syncer.Kind(kindStr)
		s.StartedAt = time.UnixMilli(started).UTC()
		s.FinishedAt = time.UnixMilli(finished).UTC()
		s.Duration = s.FinishedAt.Sub(s.StartedAt)
		s.Error = runErr.String
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return out, nil
}

// Get returns the full report of a run.
func (j *Journal) Get(ctx context.Context, runID string) (*syncer.Report, error) {
	var blob []byte
	err := j.db.QueryRowContext(ctx, "SELECT report FROM sync_runs WHERE id = ?", runID).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", runID, err)
	}

	var report syncer.Report
	if err := msgpack.Unmarshal(blob, &report); err != nil {
		return nil, fmt.Errorf("failed to decode run %s: %w", runID, err)
	}
	return &report, nil
}

// Prune deletes runs started before cutoff and returns how many were removed.
func (j *Journal) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := j.db.ExecContext(ctx, "DELETE FROM sync_runs WHERE started_at < ?", cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	return res.RowsAffected()
}
