// config/overlay.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variables read by ApplyEnv.
const (
	EnvBaseURL = "JSEARCH_BASE_URL"
	EnvHost    = "JSEARCH_API_HOST"
	EnvKey     = "JSEARCH_API_KEY"
	EnvTimeout = "JSEARCH_TIMEOUT_SECONDS"
	EnvQuery   = "JSEARCH_QUERY"
	EnvOutput  = "JOBEXPORT_OUTPUT"
	EnvDB      = "JOBEXPORT_DB"
)

// ApplyEnv overlays non-empty environment variables onto cfg.
// lookup is usually os.LookupEnv.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvBaseURL); ok {
		cfg.API.BaseURL = v
	}
	if v, ok := get(EnvHost); ok {
		cfg.API.Host = v
	}
	if v, ok := get(EnvKey); ok {
		cfg.API.Key = v
	}
	if v, ok := get(EnvTimeout); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		cfg.API.TimeoutSeconds = n
	}
	if v, ok := get(EnvQuery); ok {
		cfg.Search.Query = v
	}
	if v, ok := get(EnvOutput); ok {
		cfg.Output.Path = v
	}
	if v, ok := get(EnvDB); ok {
		cfg.History.Path = v
		cfg.History.Enabled = true
	}
	return nil
}
