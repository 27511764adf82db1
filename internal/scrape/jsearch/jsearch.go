package jsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"jobexport/internal/common"
	"jobexport/internal/domain"
	"jobexport/internal/scrape/util"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const maxBodyBytes = 32 << 20

type Config struct {
	BaseURL string // https://jsearch.p.rapidapi.com
	Host    string // X-RapidAPI-Host
	Key     string // X-RapidAPI-Key
	Timeout time.Duration

	Query           string
	Page            int // first page, 1-based
	Pages           int // how many pages to request
	NumPages        int // forwarded as num_pages
	DatePosted      string
	Country         string
	EmploymentTypes []string
	RemoteOnly      bool

	// MaxParallel bounds concurrent page requests. 1 fetches pages in order.
	MaxParallel int
}

type Client struct {
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter
	logger  *slog.Logger
}

func New(cfg Config, limiter *util.HostLimiter, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Page < 1 {
		cfg.Page = 1
	}
	if cfg.Pages < 1 {
		cfg.Pages = 1
	}
	if cfg.NumPages < 1 {
		cfg.NumPages = 1
	}
	if cfg.MaxParallel < 1 {
		cfg.MaxParallel = 1
	}
	return &Client{
		cfg:     cfg,
		hc:      &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
		logger:  logger,
	}
}

func (c *Client) Name() string { return "jsearch" }

// Fetch requests every configured page and returns the listings in page
// order. Any page failure fails the whole fetch.
func (c *Client) Fetch(ctx context.Context) ([]domain.Listing, error) {
	if c.cfg.Pages == 1 {
		return c.fetchPage(ctx, c.cfg.Page)
	}

	pages := make([][]domain.Listing, c.cfg.Pages)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.MaxParallel)
	for i := range pages {
		i := i
		page := c.cfg.Page + i
		g.Go(func() error {
			listings, err := c.fetchPage(gctx, page)
			if err != nil {
				return err
			}
			pages[i] = listings
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []domain.Listing
	for _, p := range pages {
		out = append(out, p...)
	}
	c.logger.Info("jsearch.fetch.ok", "pages", c.cfg.Pages, "listings", len(out))
	return out, nil
}

// SearchURL builds the request URL for one page.
func (c *Client) SearchURL(page int) string {
	q := url.Values{}
	q.Set("query", c.cfg.Query)
	q.Set("page", strconv.Itoa(page))
	q.Set("num_pages", strconv.Itoa(c.cfg.NumPages))
	if c.cfg.DatePosted != "" {
		q.Set("date_posted", c.cfg.DatePosted)
	}
	if c.cfg.Country != "" {
		q.Set("country", c.cfg.Country)
	}
	if len(c.cfg.EmploymentTypes) > 0 {
		q.Set("employment_types", strings.Join(c.cfg.EmploymentTypes, ","))
	}
	if c.cfg.RemoteOnly {
		q.Set("remote_jobs_only", "true")
	}
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/search?" + q.Encode()
}

func (c *Client) fetchPage(ctx context.Context, page int) ([]domain.Listing, error) {
	apiURL := c.SearchURL(page)
	reqID := uuid.NewString()
	start := time.Now()

	if err := c.limiter.WaitURL(ctx, apiURL); err != nil {
		return nil, common.NetworkError(fmt.Sprintf("page %d: rate limiter", page), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, common.NetworkError(fmt.Sprintf("page %d: build request", page), err)
	}
	req.Header.Set("X-RapidAPI-Key", c.cfg.Key)
	req.Header.Set("X-RapidAPI-Host", c.cfg.Host)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "jobexport/1.0")

	c.logger.Debug("jsearch.http.request", "req_id", reqID, "page", page, "query", c.cfg.Query)

	res, err := c.hc.Do(req)
	if err != nil {
		c.logger.Error("jsearch.http.send_error", "req_id", reqID, "page", page, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, common.NetworkError(fmt.Sprintf("page %d: get", page), err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, common.NetworkError(fmt.Sprintf("page %d: read body", page), err)
	}

	c.logger.Info("jsearch.http.response",
		"req_id", reqID,
		"page", page,
		"status", res.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	switch {
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return nil, common.AuthError(fmt.Sprintf("page %d: status %d: %s", page, res.StatusCode, snippet(raw)), nil)
	case res.StatusCode < 200 || res.StatusCode > 299:
		return nil, common.NetworkError(fmt.Sprintf("page %d: status %d: %s", page, res.StatusCode, snippet(raw)), nil)
	}

	listings, err := decodeListings(raw)
	if err != nil {
		return nil, common.MalformedResponseError(fmt.Sprintf("page %d", page), err)
	}
	return listings, nil
}

// decodeListings parses a search response body into listings.
func decodeListings(raw []byte) ([]domain.Listing, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if dec.More() {
		return nil, errors.New("decode json: trailing data after top-level value")
	}

	// an explicit API error can come with a 200 and no data field
	if obj, ok := doc.(map[string]any); ok {
		if st, _ := obj["status"].(string); strings.EqualFold(st, "ERROR") {
			msg := "api reported status ERROR"
			if e, ok := obj["error"].(map[string]any); ok {
				if m, ok := e["message"].(string); ok && m != "" {
					msg += ": " + m
				}
			}
			return nil, errors.New(msg)
		}
	}

	if err := validateEnvelope(doc); err != nil {
		return nil, err
	}

	items := doc.(map[string]any)["data"].([]any)
	out := make([]domain.Listing, 0, len(items))
	for _, it := range items {
		out = append(out, domain.Listing(it.(map[string]any)))
	}
	return out, nil
}

func snippet(b []byte) string {
	const max = 256
	s := strings.TrimSpace(string(b))
	if len(s) > max {
		cut := max
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut] + "…"
	}
	if s == "" {
		return "(empty body)"
	}
	return s
}
