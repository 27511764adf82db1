// Package export writes a JobTable to disk.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"jobexport/internal/common"
	"jobexport/internal/domain"

	"github.com/gofrs/flock"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	ModeOverwrite = "overwrite"
	ModeAppend    = "append"
)

type Options struct {
	Format      string
	Mode        string
	LockTimeout time.Duration

	// SplitRows > 0 also writes chunk_<i>.csv files of at most SplitRows
	// rows into SplitDir.
	SplitRows int
	SplitDir  string
}

type Result struct {
	Path     string
	Rows     int
	Appended bool
	Chunks   []string
}

type Exporter struct {
	opts   Options
	logger *slog.Logger
}

func New(opts Options, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Format == "" {
		opts.Format = FormatCSV
	}
	if opts.Mode == "" {
		opts.Mode = ModeOverwrite
	}
	return &Exporter{opts: opts, logger: logger}
}

// Write serializes table to path while holding <path>.lock. Every failure
// is an IO error; in overwrite mode a failure leaves path untouched.
// Split chunks are written before path itself.
func (e *Exporter) Write(ctx context.Context, table *domain.JobTable, path string) (Result, error) {
	start := time.Now()
	res := Result{Path: path, Rows: table.Len()}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return res, common.IOError("create output dir", err)
		}
	}

	unlock, err := e.lock(ctx, path)
	if err != nil {
		return res, err
	}
	defer unlock()

	switch {
	case e.opts.Format != FormatCSV && e.opts.Format != FormatXLSX:
		return res, common.IOError("write output", fmt.Errorf("unknown format %q", e.opts.Format))
	case e.opts.Format == FormatXLSX && e.opts.Mode == ModeAppend:
		return res, common.IOError("xlsx output", errors.New("append mode is only supported for csv"))
	}

	// chunks go first so a split failure leaves path untouched
	if e.opts.SplitRows > 0 {
		chunks, err := SplitCSV(table, e.opts.SplitDir, e.opts.SplitRows)
		if err != nil {
			return res, common.IOError("split into "+e.opts.SplitDir, err)
		}
		res.Chunks = chunks
	}

	switch {
	case e.opts.Format == FormatXLSX:
		err = writeXLSXAtomic(path, table)
	case e.opts.Mode == ModeAppend:
		res.Appended, err = appendCSV(path, table)
	default:
		err = writeCSVAtomic(path, table.Columns, table.Records())
	}
	if err != nil {
		return res, common.IOError("write "+path, err)
	}

	e.logger.Info("export."+e.opts.Format+".ok",
		"path", path,
		"rows", res.Rows,
		"appended", res.Appended,
		"chunks", len(res.Chunks),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

func (e *Exporter) lock(ctx context.Context, path string) (func(), error) {
	fl := flock.New(path + ".lock")

	lctx := ctx
	if e.opts.LockTimeout > 0 {
		var cancel context.CancelFunc
		lctx, cancel = context.WithTimeout(ctx, e.opts.LockTimeout)
		defer cancel()
	}

	locked, err := fl.TryLockContext(lctx, 50*time.Millisecond)
	if err != nil {
		return nil, common.IOError("lock "+path, err)
	}
	if !locked {
		return nil, common.IOError("lock "+path, errors.New("output is locked by another run"))
	}
	return func() {
		if err := fl.Unlock(); err != nil {
			e.logger.Warn("export.unlock_error", "path", path, "error", err)
		}
	}, nil
}
