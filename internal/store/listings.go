package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type ListingInsert struct {
	SourceID string
	Title    string
	Employer string
	PostedAt string
	ApplyURL string
}

// RememberListings stores listings not seen before and reports how many
// were new. Listings without a SourceID are skipped.
func RememberListings(ctx context.Context, db *sql.DB, runID string, ls []ListingInsert) (added int, err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT OR IGNORE INTO listings (source_id, title, employer, posted_at, apply_url, first_run_id, first_seen_at)
VALUES (?, ?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, l := range ls {
		if l.SourceID == "" {
			continue
		}
		res, err := stmt.ExecContext(ctx, l.SourceID, l.Title, l.Employer, l.PostedAt, l.ApplyURL, runID, now)
		if err != nil {
			return 0, fmt.Errorf("insert listing: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return added, nil
}

func CountListings(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM listings;`).Scan(&n)
	return n, err
}
