package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"jobexport/internal/common"
	"jobexport/internal/config"
	"jobexport/internal/domain"
	"jobexport/internal/export"
	"jobexport/internal/extract"
	"jobexport/internal/store"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T, baseURL string) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.API.BaseURL = baseURL
	cfg.API.Key = "test-key"
	cfg.Search.Query = "cybersecurity analyst"
	cfg.Output.Path = filepath.Join(t.TempDir(), "jobs.csv")
	return cfg
}

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("query"); got != "cybersecurity analyst" {
			t.Errorf("query = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRunExportOnceScenario(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"status":"OK","data":[{
		"job_title": "SOC Analyst",
		"employer_name": "Acme",
		"job_posted_at_datetime_utc": "2024-01-01T00:00:00.000Z",
		"job_employment_type": "FULLTIME",
		"job_is_remote": true
	}]}`)
	cfg := testConfig(t, srv.URL)

	res, err := RunExportOnce(context.Background(), Deps{Logger: quietLogger()}, cfg)
	if err != nil {
		t.Fatalf("RunExportOnce: %v", err)
	}
	if res.Listings != 1 || res.Export.Rows != 1 || res.Source != "jsearch" {
		t.Errorf("result = %+v", res)
	}

	b, err := os.ReadFile(cfg.Output.Path)
	if err != nil {
		t.Fatal(err)
	}
	want := "title,employer,description,posted_at,employment_type,is_remote\n" +
		"SOC Analyst,Acme,N/A,2024-01-01,FULLTIME,true\n"
	if string(b) != want {
		t.Errorf("output =\n%s\nwant\n%s", b, want)
	}
}

func TestRunExportOnceEmptyData(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"status":"OK","data":[]}`)
	cfg := testConfig(t, srv.URL)

	if _, err := RunExportOnce(context.Background(), Deps{Logger: quietLogger()}, cfg); err != nil {
		t.Fatalf("RunExportOnce: %v", err)
	}
	header, rows, err := export.ReadAll(cfg.Output.Path)
	if err != nil {
		t.Fatal(err)
	}
	if !domain.CoreColumns.Equal(header) || len(rows) != 0 {
		t.Errorf("header = %v rows = %v", header, rows)
	}
}

func TestRunExportOnceErrorLeavesOutput(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		kind   error
	}{
		{"server error", http.StatusInternalServerError, `{"message":"boom"}`, common.ErrNetwork},
		{"unauthorized", http.StatusUnauthorized, `{"message":"bad key"}`, common.ErrAuth},
		{"rate limited", http.StatusTooManyRequests, `{"message":"slow down"}`, common.ErrNetwork},
		{"no data", http.StatusOK, `{"status":"OK"}`, common.ErrMalformedResponse},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := serve(t, tc.status, tc.body)

			fresh := testConfig(t, srv.URL)
			_, err := RunExportOnce(context.Background(), Deps{Logger: quietLogger()}, fresh)
			if !errors.Is(err, tc.kind) {
				t.Fatalf("err = %v, want %v", err, tc.kind)
			}
			if _, statErr := os.Stat(fresh.Output.Path); !os.IsNotExist(statErr) {
				t.Errorf("output created, stat err = %v", statErr)
			}

			existing := testConfig(t, srv.URL)
			orig := "title\nold\n"
			if err := os.WriteFile(existing.Output.Path, []byte(orig), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := RunExportOnce(context.Background(), Deps{Logger: quietLogger()}, existing); !errors.Is(err, tc.kind) {
				t.Fatalf("err = %v, want %v", err, tc.kind)
			}
			if b, _ := os.ReadFile(existing.Output.Path); string(b) != orig {
				t.Errorf("output modified: %q", b)
			}
		})
	}
}

type fakeFetcher struct {
	listings []domain.Listing
	err      error
}

func (f fakeFetcher) Name() string { return "fake" }

func (f fakeFetcher) Fetch(ctx context.Context) ([]domain.Listing, error) {
	return f.listings, f.err
}

func TestRunExportOnceKeepsOrder(t *testing.T) {
	var ls []domain.Listing
	for i := 0; i < 25; i++ {
		ls = append(ls, domain.Listing{"job_title": fmt.Sprintf("job-%02d", i)})
	}
	cfg := testConfig(t, "http://unused.invalid")
	cfg.Output.Columns = "extended"

	res, err := RunExportOnce(context.Background(), Deps{Fetcher: fakeFetcher{listings: ls}, Logger: quietLogger()}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if res.Export.Rows != 25 {
		t.Errorf("rows = %d", res.Export.Rows)
	}

	header, rows, err := export.ReadAll(cfg.Output.Path)
	if err != nil {
		t.Fatal(err)
	}
	if !domain.ExtendedColumns.Equal(header) {
		t.Errorf("header = %v", header)
	}
	for i, r := range rows {
		if want := fmt.Sprintf("job-%02d", i); r[0] != want {
			t.Errorf("row %d = %q, want %q", i, r[0], want)
		}
	}
}

func TestRunExportOnceBadColumnSet(t *testing.T) {
	cfg := testConfig(t, "http://unused.invalid")
	cfg.Output.Columns = "everything"
	_, err := RunExportOnce(context.Background(), Deps{Fetcher: fakeFetcher{}, Logger: quietLogger()}, cfg)
	if !errors.Is(err, common.ErrConfig) {
		t.Fatalf("err = %v, want ErrConfig", err)
	}
}

func TestRunExportOnceRecordsHistory(t *testing.T) {
	ctx := context.Background()
	db, err := store.Open(ctx, filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	cfg := testConfig(t, "http://unused.invalid")
	ls := []domain.Listing{
		{"job_id": "a", "job_title": "SOC Analyst"},
		{"job_id": "b", "job_title": "Pentester"},
	}

	first, err := RunExportOnce(ctx, Deps{Fetcher: fakeFetcher{listings: ls}, DB: db, Logger: quietLogger()}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if first.NewListings != 2 {
		t.Errorf("first new listings = %d", first.NewListings)
	}

	ls = append(ls, domain.Listing{"job_id": "c", "job_title": "Blue Team"})
	second, err := RunExportOnce(ctx, Deps{Fetcher: fakeFetcher{listings: ls}, DB: db, Logger: quietLogger()}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if second.NewListings != 1 {
		t.Errorf("second new listings = %d", second.NewListings)
	}

	failErr := common.NetworkError("page 1: get", errors.New("connection refused"))
	if _, err := RunExportOnce(ctx, Deps{Fetcher: fakeFetcher{err: failErr}, DB: db, Logger: quietLogger()}, cfg); !errors.Is(err, common.ErrNetwork) {
		t.Fatalf("err = %v", err)
	}

	runs, err := store.ListRuns(ctx, db.Pool, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 3 {
		t.Fatalf("runs = %d, want 3", len(runs))
	}
	byID := map[string]store.Run{}
	for _, r := range runs {
		byID[r.ID] = r
	}
	if r := byID[first.RunID]; r.Status != store.RunOK || r.Rows != 2 || r.Query != cfg.Search.Query {
		t.Errorf("first run = %+v", r)
	}
	if r := byID[second.RunID]; r.Status != store.RunOK || r.Rows != 3 {
		t.Errorf("second run = %+v", r)
	}
	var failed int
	for _, r := range runs {
		if r.Status == store.RunFailed {
			failed++
			if r.Error == "" {
				t.Error("failed run has no error text")
			}
		}
	}
	if failed != 1 {
		t.Errorf("failed runs = %d", failed)
	}
}

func TestRunExportOnceRoundTripsLineEndings(t *testing.T) {
	ls := []domain.Listing{
		{"job_title": "SOC Analyst", "job_description": "Line one\r\nLine two\rLine three"},
		{"job_title": "Pentester", "job_description": "Single line"},
	}
	cfg := testConfig(t, "http://unused.invalid")
	if _, err := RunExportOnce(context.Background(), Deps{Fetcher: fakeFetcher{listings: ls}, Logger: quietLogger()}, cfg); err != nil {
		t.Fatal(err)
	}

	_, rows, err := export.ReadAll(cfg.Output.Path)
	if err != nil {
		t.Fatal(err)
	}
	table := extract.Table(ls, domain.CoreColumns, extract.Options{})
	want := table.Records()
	if len(rows) != len(want) {
		t.Fatalf("rows = %d, want %d", len(rows), len(want))
	}
	for i := range rows {
		for j := range rows[i] {
			if rows[i][j] != want[i][j] {
				t.Errorf("row %d col %d = %q, want %q", i, j, rows[i][j], want[i][j])
			}
		}
	}
}
