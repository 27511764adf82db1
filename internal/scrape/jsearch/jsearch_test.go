package jsearch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"jobexport/internal/common"
	"jobexport/internal/domain"
	"jobexport/internal/scrape/util"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func str(l domain.Listing, key string) string {
	s, _ := l.String(key)
	return s
}

func newTestClient(srvURL string, mutate func(*Config)) *Client {
	cfg := Config{
		BaseURL:    srvURL,
		Host:       "jsearch.p.rapidapi.com",
		Key:        "test-key",
		Timeout:    2 * time.Second,
		Query:      "cybersecurity analyst",
		DatePosted: "all",
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return New(cfg, util.NewHostLimiter(1000, 10), quietLogger())
}

func TestFetchSendsHeadersAndQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("X-RapidAPI-Key"); got != "test-key" {
			t.Errorf("key header = %q", got)
		}
		if got := r.Header.Get("X-RapidAPI-Host"); got != "jsearch.p.rapidapi.com" {
			t.Errorf("host header = %q", got)
		}
		q := r.URL.Query()
		if q.Get("query") != "cybersecurity analyst" || q.Get("page") != "1" || q.Get("num_pages") != "1" || q.Get("date_posted") != "all" {
			t.Errorf("query = %v", q)
		}
		if q.Get("remote_jobs_only") != "true" || q.Get("employment_types") != "FULLTIME,CONTRACTOR" {
			t.Errorf("optional params = %v", q)
		}
		fmt.Fprint(w, `{"status":"OK","request_id":"r1","data":[
			{"job_title":"SOC Analyst","employer_name":"Acme","job_is_remote":true},
			{"job_title":"Threat Hunter","employer_name":"Initech"}
		]}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, func(cfg *Config) {
		cfg.RemoteOnly = true
		cfg.EmploymentTypes = []string{"FULLTIME", "CONTRACTOR"}
	})
	listings, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("got %d listings, want 2", len(listings))
	}
	if got := str(listings[0], "job_title"); got != "SOC Analyst" {
		t.Errorf("first title = %q", got)
	}
	if got := str(listings[1], "employer_name"); got != "Initech" {
		t.Errorf("second employer = %q", got)
	}
}

func TestFetchErrorKinds(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		kind   error
	}{
		{"unauthorized", http.StatusUnauthorized, `{"message":"Invalid API key"}`, common.ErrAuth},
		{"forbidden", http.StatusForbidden, `{"message":"You are not subscribed"}`, common.ErrAuth},
		{"rate limited", http.StatusTooManyRequests, `{"message":"quota"}`, common.ErrNetwork},
		{"server error", http.StatusBadGateway, ``, common.ErrNetwork},
		{"not json", http.StatusOK, `<html>oops</html>`, common.ErrMalformedResponse},
		{"missing data", http.StatusOK, `{"status":"OK","parameters":{}}`, common.ErrMalformedResponse},
		{"data not array", http.StatusOK, `{"status":"OK","data":{"job_title":"x"}}`, common.ErrMalformedResponse},
		{"data items not objects", http.StatusOK, `{"data":["a","b"]}`, common.ErrMalformedResponse},
		{"api error", http.StatusOK, `{"status":"ERROR","error":{"message":"bad query"}}`, common.ErrMalformedResponse},
		{"top level array", http.StatusOK, `[{"job_title":"x"}]`, common.ErrMalformedResponse},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				fmt.Fprint(w, tc.body)
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL, nil).Fetch(context.Background())
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tc.kind) {
				t.Errorf("error %v is not %v", err, tc.kind)
			}
		})
	}
}

func TestFetchTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url, nil).Fetch(context.Background())
	if !errors.Is(err, common.ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, func(cfg *Config) { cfg.Timeout = 50 * time.Millisecond })
	_, err := c.Fetch(context.Background())
	if !errors.Is(err, common.ErrNetwork) {
		t.Fatalf("expected network error on timeout, got %v", err)
	}
}

func TestFetchPagesKeepsOrder(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		// later pages answer first
		time.Sleep(time.Duration(5-page) * 10 * time.Millisecond)
		fmt.Fprintf(w, `{"status":"OK","data":[{"job_title":"p%d-a"},{"job_title":"p%d-b"}]}`, page, page)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, func(cfg *Config) {
		cfg.Page = 2
		cfg.Pages = 3
		cfg.MaxParallel = 3
	})
	listings, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
	want := []string{"p2-a", "p2-b", "p3-a", "p3-b", "p4-a", "p4-b"}
	if len(listings) != len(want) {
		t.Fatalf("got %d listings, want %d", len(listings), len(want))
	}
	for i, w := range want {
		if got := str(listings[i], "job_title"); got != w {
			t.Errorf("listing %d = %q, want %q", i, got, w)
		}
	}
}

func TestFetchPagesFailsOnAnyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		fmt.Fprint(w, `{"data":[{"job_title":"ok"}]}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, func(cfg *Config) { cfg.Pages = 3 })
	listings, err := c.Fetch(context.Background())
	if !errors.Is(err, common.ErrAuth) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if listings != nil {
		t.Errorf("expected no partial results, got %d", len(listings))
	}
}

func TestSearchURL(t *testing.T) {
	c := New(Config{BaseURL: "https://jsearch.p.rapidapi.com/", Query: "soc analyst", Country: "us"}, nil, nil)
	got := c.SearchURL(3)
	want := "https://jsearch.p.rapidapi.com/search?country=us&num_pages=1&page=3&query=soc+analyst"
	if got != want {
		t.Errorf("SearchURL = %q, want %q", got, want)
	}
}

func TestSnippetKeepsRunesWhole(t *testing.T) {
	body := []byte(`{"message":"x` + strings.Repeat("é", 200) + `"}`)
	got := snippet(body)
	if !utf8.ValidString(got) {
		t.Fatalf("snippet is not valid UTF-8: %q", got)
	}
	if !strings.HasSuffix(got, "…") || len(got) > 256+len("…") {
		t.Errorf("snippet = %q (%d bytes)", got, len(got))
	}

	if got := snippet([]byte("  \n")); got != "(empty body)" {
		t.Errorf("blank snippet = %q", got)
	}
	if got := snippet([]byte("short")); got != "short" {
		t.Errorf("short snippet = %q", got)
	}
}
