package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"jobexport/internal/domain"

	"gopkg.in/yaml.v3"
)

func Validate(cfg Config) error {
	var errs []string

	if strings.TrimSpace(cfg.Search.Query) == "" {
		errs = append(errs, "search.query is required")
	}
	if u, err := url.Parse(cfg.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, "api.base_url must be an absolute URL")
	}
	if strings.TrimSpace(cfg.API.Host) == "" {
		errs = append(errs, "api.host is required")
	}
	if cfg.API.TimeoutSeconds <= 0 {
		errs = append(errs, "api.timeout_seconds must be > 0")
	}
	if cfg.API.RequestsPerSecond <= 0 {
		errs = append(errs, "api.requests_per_second must be > 0")
	}
	if cfg.API.Burst < 1 {
		errs = append(errs, "api.burst must be >= 1")
	}
	if cfg.Search.Page < 1 {
		errs = append(errs, "search.page must be >= 1")
	}
	if cfg.Search.Pages < 1 {
		errs = append(errs, "search.pages must be >= 1")
	}
	if cfg.Search.NumPages < 1 {
		errs = append(errs, "search.num_pages must be >= 1")
	}
	if cfg.Search.MaxParallel < 1 {
		errs = append(errs, "search.max_parallel must be >= 1")
	}
	switch cfg.Search.DatePosted {
	case "all", "today", "3days", "week", "month":
	default:
		errs = append(errs, "search.date_posted must be one of all|today|3days|week|month")
	}

	if strings.TrimSpace(cfg.Output.Path) == "" {
		errs = append(errs, "output.path is required")
	}
	switch cfg.Output.Format {
	case "csv", "xlsx":
	default:
		errs = append(errs, "output.format must be csv or xlsx")
	}
	switch cfg.Output.Mode {
	case "overwrite", "append":
	default:
		errs = append(errs, "output.mode must be overwrite or append")
	}
	if cfg.Output.Format == "xlsx" && cfg.Output.Mode == "append" {
		errs = append(errs, "output.mode=append is only supported for csv")
	}
	if _, err := domain.ColumnSet(cfg.Output.Columns); err != nil {
		errs = append(errs, "output.columns must be core or extended")
	}
	if cfg.Output.SplitRows < 0 {
		errs = append(errs, "output.split_rows must be >= 0")
	}
	if cfg.Output.SplitRows > 0 && strings.TrimSpace(cfg.Output.SplitDir) == "" {
		errs = append(errs, "output.split_dir is required when output.split_rows > 0")
	}
	if cfg.Output.LockTimeoutSeconds < 0 {
		errs = append(errs, "output.lock_timeout_seconds must be >= 0")
	}

	if cfg.History.Enabled && strings.TrimSpace(cfg.History.Path) == "" {
		errs = append(errs, "history.path is required when history.enabled=true")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n- " + joinLines(errs))
	}
	return nil
}

// SaveAtomic writes cfg as YAML. The API key is never persisted.
func SaveAtomic(path string, cfg Config) error {
	cfg.API.Key = ""

	b, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	bak := path + ".bak"

	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}

	_ = os.Remove(bak)
	_ = os.Rename(path, bak)

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n- ")
}
