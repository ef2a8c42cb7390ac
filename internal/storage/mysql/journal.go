package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"listing_seeder/internal/domain"
)

// Journal records every finished seeding run in MySQL.
type Journal struct{ db *sql.DB }

func New(db *sql.DB) *Journal { return &Journal{db: db} }

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}

// Publish implements domain.ReportSink. Republishing a run replaces its rows.
func (j *Journal) Publish(ctx context.Context, r domain.RunReport) (err error) {
	summary, err := json.Marshal(r.Summary())
	if err != nil {
		return fmt.Errorf("marshal run summary: %w", err)
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, insertRunSQL,
		r.RunID, r.DatabaseID, r.State.String(), r.StartedAt.UTC(), nullTime(r.FinishedAt), string(summary),
	); err != nil {
		return fmt.Errorf("insert run %s: %w", r.RunID, err)
	}
	if _, err = tx.ExecContext(ctx, deleteFailuresSQL, r.RunID); err != nil {
		return err
	}

	for _, c := range r.Cleared {
		if c.Err == nil {
			continue
		}
		if _, err = tx.ExecContext(ctx, insertFailureSQL, r.RunID, c.Collection, "clear", 0, c.Err.Error()); err != nil {
			return err
		}
	}
	for _, s := range r.Stages {
		if _, err = tx.ExecContext(ctx, insertStageSQL,
			r.RunID, s.Collection, s.Planned, s.Created(), s.Failed(), s.Duration.Milliseconds(),
		); err != nil {
			return fmt.Errorf("insert stage %s: %w", s.Collection, err)
		}
		for _, it := range s.Items {
			if it.Err == nil {
				continue
			}
			if _, err = tx.ExecContext(ctx, insertFailureSQL, r.RunID, s.Collection, "create", it.Index, it.Err.Error()); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// RunRecord is one journaled run with its per-stage counts and failures.
type RunRecord struct {
	RunID      string
	DatabaseID string
	State      string
	StartedAt  time.Time
	FinishedAt *time.Time
	Summary    domain.RunSummary
	Stages     []StageRecord
	Failures   []FailureRecord
}

type StageRecord struct {
	Collection string
	Planned    int
	Created    int
	Failed     int
	DurationMS int64
}

type FailureRecord struct {
	Collection string
	Phase      string
	Index      int
	Error      string
}

// RecentRuns returns the newest runs for databaseID, stages and failures included.
func (j *Journal) RecentRuns(ctx context.Context, databaseID string, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := j.db.QueryContext(ctx, recentRunsSQL, databaseID, limit)
	if err != nil {
		return nil, err
	}
	var out []RunRecord
	for rows.Next() {
		var rr RunRecord
		var finished sql.NullTime
		var summary []byte
		if err := rows.Scan(&rr.RunID, &rr.DatabaseID, &rr.State, &rr.StartedAt, &finished, &summary); err != nil {
			rows.Close()
			return nil, err
		}
		if err := json.Unmarshal(summary, &rr.Summary); err != nil {
			rows.Close()
			return nil, fmt.Errorf("decode summary of run %s: %w", rr.RunID, err)
		}
		if finished.Valid {
			ft := finished.Time
			rr.FinishedAt = &ft
		}
		out = append(out, rr)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if out[i].Stages, err = j.stages(ctx, out[i].RunID); err != nil {
			return nil, err
		}
		if out[i].Failures, err = j.failures(ctx, out[i].RunID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (j *Journal) stages(ctx context.Context, runID string) ([]StageRecord, error) {
	rows, err := j.db.QueryContext(ctx, stageResultsSQL, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []StageRecord
	for rows.Next() {
		var s StageRecord
		if err := rows.Scan(&s.Collection, &s.Planned, &s.Created, &s.Failed, &s.DurationMS); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (j *Journal) failures(ctx context.Context, runID string) ([]FailureRecord, error) {
	rows, err := j.db.QueryContext(ctx, failuresSQL, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []FailureRecord
	for rows.Next() {
		var f FailureRecord
		if err := rows.Scan(&f.Collection, &f.Phase, &f.Index, &f.Error); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// History serves published summaries when MySQL is the only report store.
func (j *Journal) History(ctx context.Context, databaseID string, limit int) ([]domain.RunSummary, error) {
	runs, err := j.RecentRuns(ctx, databaseID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]domain.RunSummary, 0, len(runs))
	for _, rr := range runs {
		out = append(out, rr.Summary)
	}
	return out, nil
}

func (j *Journal) LastReport(ctx context.Context, databaseID string) (domain.RunSummary, bool, error) {
	runs, err := j.History(ctx, databaseID, 1)
	if err != nil || len(runs) == 0 {
		return domain.RunSummary{}, false, err
	}
	return runs[0], true, nil
}
