// Package scrape runs one fetch → extract → export pass.
package scrape

import (
	"context"
	"log/slog"
	"time"

	"jobexport/internal/common"
	"jobexport/internal/config"
	"jobexport/internal/domain"
	"jobexport/internal/export"
	"jobexport/internal/extract"
	"jobexport/internal/scrape/jsearch"
	"jobexport/internal/scrape/util"
	"jobexport/internal/store"

	"github.com/google/uuid"
)

// Fetcher returns listings in API response order.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.Listing, error)
}

type Deps struct {
	// Fetcher defaults to a JSearch client built from the config.
	Fetcher Fetcher
	// DB receives the run record; nil disables history.
	DB     *store.DB
	Logger *slog.Logger
}

type Result struct {
	RunID       string
	Source      string
	Listings    int
	NewListings int
	Export      export.Result
	Elapsed     time.Duration
}

// NewFetcher builds the JSearch client for cfg.
func NewFetcher(cfg config.Config, logger *slog.Logger) Fetcher {
	limiter := util.NewHostLimiter(cfg.API.RequestsPerSecond, cfg.API.Burst)
	return jsearch.New(jsearch.Config{
		BaseURL:         cfg.API.BaseURL,
		Host:            cfg.API.Host,
		Key:             cfg.API.Key,
		Timeout:         cfg.Timeout(),
		Query:           cfg.Search.Query,
		Page:            cfg.Search.Page,
		Pages:           cfg.Search.Pages,
		NumPages:        cfg.Search.NumPages,
		DatePosted:      cfg.Search.DatePosted,
		Country:         cfg.Search.Country,
		EmploymentTypes: cfg.Search.EmploymentTypes,
		RemoteOnly:      cfg.Search.RemoteOnly,
		MaxParallel:     cfg.Search.MaxParallel,
	}, limiter, logger)
}

// RunExportOnce fetches all configured pages, flattens them and writes the
// table to cfg.Output.Path. Any step's error ends the run; the run is
// recorded in history either way.
func RunExportOnce(ctx context.Context, deps Deps, cfg config.Config) (res Result, err error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	f := deps.Fetcher
	if f == nil {
		f = NewFetcher(cfg, logger)
	}

	start := time.Now()
	res.RunID = uuid.NewString()
	res.Source = f.Name()
	res.Export.Path = cfg.Output.Path
	logger = logger.With("run_id", res.RunID)

	defer func() {
		res.Elapsed = time.Since(start)
		if deps.DB != nil {
			recordRun(ctx, deps.DB, logger, cfg, res, start, err)
		}
		if err != nil {
			logger.Error("run.failed", "error", err, "elapsed_ms", res.Elapsed.Milliseconds())
			return
		}
		logger.Info("run.ok",
			"listings", res.Listings,
			"rows", res.Export.Rows,
			"new_listings", res.NewListings,
			"path", res.Export.Path,
			"elapsed_ms", res.Elapsed.Milliseconds(),
		)
	}()

	cols, err := domain.ColumnSet(cfg.Output.Columns)
	if err != nil {
		return res, common.ConfigError("output.columns", err)
	}

	logger.Info("run.start", "source", res.Source, "query", cfg.Search.Query, "pages", cfg.Search.Pages)
	listings, err := f.Fetch(ctx)
	if err != nil {
		return res, err
	}
	res.Listings = len(listings)

	table := extract.Table(listings, cols, extract.Options{CleanText: cfg.Output.CleanText})

	ex := export.New(export.Options{
		Format:      cfg.Output.Format,
		Mode:        cfg.Output.Mode,
		LockTimeout: cfg.LockTimeout(),
		SplitRows:   cfg.Output.SplitRows,
		SplitDir:    cfg.Output.SplitDir,
	}, logger)
	res.Export, err = ex.Write(ctx, table, cfg.Output.Path)
	if err != nil {
		return res, err
	}

	if deps.DB != nil {
		n, rerr := store.RememberListings(ctx, deps.DB.Pool, res.RunID, listingInserts(listings, table))
		if rerr != nil {
			logger.Warn("history.listings_error", "error", rerr)
		}
		res.NewListings = n
	}
	return res, nil
}

func listingInserts(listings []domain.Listing, table *domain.JobTable) []store.ListingInsert {
	out := make([]store.ListingInsert, 0, len(listings))
	for i, l := range listings {
		row := table.Rows[i]
		apply := row.ApplyURL
		if apply == domain.Placeholder {
			apply = ""
		}
		out = append(out, store.ListingInsert{
			SourceID: extract.SourceID(l),
			Title:    row.Title,
			Employer: row.Employer,
			PostedAt: row.PostedAt,
			ApplyURL: apply,
		})
	}
	return out
}

func recordRun(ctx context.Context, db *store.DB, logger *slog.Logger, cfg config.Config, res Result, start time.Time, runErr error) {
	r := store.Run{
		ID:          res.RunID,
		Query:       cfg.Search.Query,
		Pages:       cfg.Search.Pages,
		Rows:        res.Export.Rows,
		NewListings: res.NewListings,
		OutputPath:  cfg.Output.Path,
		Format:      cfg.Output.Format,
		Status:      store.RunOK,
		StartedAt:   start,
		FinishedAt:  start.Add(res.Elapsed),
	}
	if runErr != nil {
		r.Status = store.RunFailed
		r.Error = runErr.Error()
	}

	// a cancelled run is still recorded
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := store.RecordRun(rctx, db.Pool, r); err != nil {
		logger.Warn("history.record_error", "error", err)
	}
}
