package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const (
	RunOK     = "ok"
	RunFailed = "failed"
)

// fixed width so started_at sorts as text
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type Run struct {
	ID          string
	Query       string
	Pages       int
	Rows        int
	NewListings int
	OutputPath  string
	Format      string
	Status      string
	Error       string
	StartedAt   time.Time
	FinishedAt  time.Time
}

func (r Run) Duration() time.Duration { return r.FinishedAt.Sub(r.StartedAt) }

func RecordRun(ctx context.Context, db *sql.DB, r Run) error {
	_, err := db.ExecContext(ctx, `
INSERT INTO runs (id, query, pages, row_count, new_listings, output_path, format, status, error, started_at, finished_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		r.ID, r.Query, r.Pages, r.Rows, r.NewListings, r.OutputPath, r.Format, r.Status, r.Error,
		r.StartedAt.UTC().Format(timeLayout), r.FinishedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs first.
func ListRuns(ctx context.Context, db *sql.DB, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.QueryContext(ctx, `
SELECT id, query, pages, row_count, new_listings, output_path, format, status, error, started_at, finished_at
FROM runs
ORDER BY started_at DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var started, finished string
		if err := rows.Scan(
			&r.ID,
			&r.Query,
			&r.Pages,
			&r.Rows,
			&r.NewListings,
			&r.OutputPath,
			&r.Format,
			&r.Status,
			&r.Error,
			&started,
			&finished,
		); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse(timeLayout, started)
		r.FinishedAt, _ = time.Parse(timeLayout, finished)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func CleanupOldRuns(ctx context.Context, db *sql.DB, olderThan time.Duration) (deleted int64, err error) {
	cutoff := time.Now().Add(-olderThan).UTC().Format(timeLayout)
	res, err := db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?;`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup old runs: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
