// internal/config/config.go
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	API struct {
		BaseURL           string  `yaml:"base_url"`
		Host              string  `yaml:"host"`
		Key               string  `yaml:"key,omitempty"`
		TimeoutSeconds    int     `yaml:"timeout_seconds"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
	} `yaml:"api"`

	Search struct {
		Query           string   `yaml:"query"`
		Page            int      `yaml:"page"`
		Pages           int      `yaml:"pages"`
		NumPages        int      `yaml:"num_pages"`
		DatePosted      string   `yaml:"date_posted"`
		Country         string   `yaml:"country,omitempty"`
		EmploymentTypes []string `yaml:"employment_types,omitempty"`
		RemoteOnly      bool     `yaml:"remote_only"`
		MaxParallel     int      `yaml:"max_parallel"`
	} `yaml:"search"`

	Output struct {
		Path               string `yaml:"path"`
		Format             string `yaml:"format"`  // csv | xlsx
		Mode               string `yaml:"mode"`    // overwrite | append
		Columns            string `yaml:"columns"` // core | extended
		CleanText          bool   `yaml:"clean_text"`
		SplitRows          int    `yaml:"split_rows"`
		SplitDir           string `yaml:"split_dir"`
		LockTimeoutSeconds int    `yaml:"lock_timeout_seconds"`
	} `yaml:"output"`

	History struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"history"`
}

// Default returns the built-in configuration. Query and key are left empty.
func Default() Config {
	var cfg Config
	cfg.API.BaseURL = "https://jsearch.p.rapidapi.com"
	cfg.API.Host = "jsearch.p.rapidapi.com"
	cfg.API.TimeoutSeconds = 30
	cfg.API.RequestsPerSecond = 1
	cfg.API.Burst = 2

	cfg.Search.Page = 1
	cfg.Search.Pages = 1
	cfg.Search.NumPages = 1
	cfg.Search.DatePosted = "all"
	cfg.Search.MaxParallel = 1

	cfg.Output.Path = "jobs.csv"
	cfg.Output.Format = "csv"
	cfg.Output.Mode = "overwrite"
	cfg.Output.Columns = "core"
	cfg.Output.SplitDir = "chunks"
	cfg.Output.LockTimeoutSeconds = 10

	cfg.History.Path = "jobexport.db"
	return cfg
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default value.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

func (c Config) LockTimeout() time.Duration {
	return time.Duration(c.Output.LockTimeoutSeconds) * time.Second
}
