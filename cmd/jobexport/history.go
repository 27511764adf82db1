package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"jobexport/internal/common"
	"jobexport/internal/store"
)

// history serves -history-prune and -history against an existing database.
func history(ctx context.Context, w io.Writer, path string, opts *options) error {
	if _, err := os.Stat(path); err != nil {
		return common.IOError("history database "+path, err)
	}
	db, err := store.Open(ctx, path)
	if err != nil {
		return common.IOError("open history "+path, err)
	}
	defer db.Close()

	if opts.historyPrune > 0 {
		n, err := store.CleanupOldRuns(ctx, db.Pool, opts.historyPrune)
		if err != nil {
			return common.IOError("prune runs", err)
		}
		fmt.Fprintf(w, "pruned %d runs older than %s\n", n, opts.historyPrune)
	}
	if !opts.history {
		return nil
	}
	return printHistory(ctx, w, db, opts.historyN)
}

func printHistory(ctx context.Context, w io.Writer, db *store.DB, limit int) error {
	runs, err := store.ListRuns(ctx, db.Pool, limit)
	if err != nil {
		return common.IOError("list runs", err)
	}
	seen, err := store.CountListings(ctx, db.Pool)
	if err != nil {
		return common.IOError("count listings", err)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tSTATUS\tROWS\tNEW\tQUERY\tOUTPUT\tERROR")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
			r.StartedAt.Local().Format(time.DateTime), r.Status, r.Rows, r.NewListings, r.Query, r.OutputPath, r.Error)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "%d distinct listings seen\n", seen)
	return nil
}
