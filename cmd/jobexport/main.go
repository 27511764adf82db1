// Command jobexport queries the JSearch job listings API and writes the
// results to a CSV (or XLSX) file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"jobexport/internal/common"
	"jobexport/internal/config"
	"jobexport/internal/scrape"
	"jobexport/internal/secrets"
	"jobexport/internal/store"

	"github.com/joho/godotenv"
)

const defaultConfigPath = "jobexport.yml"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.LookupEnv)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, lookup func(string) (string, bool)) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		return 1
	}

	logger := newLogger(stderr, opts.verbose, opts.logJSON)
	slog.SetDefault(logger)

	if err := execute(ctx, opts, stdout, lookup, logger); err != nil {
		logger.Debug("jobexport.failed", "error", err)
		fmt.Fprintf(stderr, "jobexport: %v\n", err)
		return common.ExitCode(err)
	}
	return 0
}

func execute(ctx context.Context, opts *options, stdout io.Writer, lookup func(string) (string, bool), logger *slog.Logger) error {
	if opts.initPath != "" {
		created, err := config.EnsureFile(opts.initPath)
		if err != nil {
			return common.IOError("write config "+opts.initPath, err)
		}
		if created {
			fmt.Fprintf(stdout, "wrote %s\n", opts.initPath)
		} else {
			fmt.Fprintf(stdout, "%s already exists\n", opts.initPath)
		}
		return nil
	}

	lookup, err := withDotEnv(opts.envFile, lookup)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if err := config.ApplyEnv(&cfg, lookup); err != nil {
		return common.ConfigError("environment", err)
	}
	opts.apply(&cfg)

	switch {
	case opts.setKey:
		if err := secrets.SetAPIKey(cfg.API.Host, cfg.API.Key); err != nil {
			return common.ConfigError("store api key", err)
		}
		fmt.Fprintf(stdout, "stored API key for %s\n", cfg.API.Host)
		return nil
	case opts.deleteKey:
		if err := secrets.DeleteAPIKey(cfg.API.Host); err != nil {
			return common.ConfigError("delete api key", err)
		}
		fmt.Fprintf(stdout, "deleted API key for %s\n", cfg.API.Host)
		return nil
	case opts.history || opts.historyPrune > 0:
		return history(ctx, stdout, cfg.History.Path, opts)
	}

	cfg, v := config.NormalizeAndValidate(cfg)
	for _, w := range v.Warnings {
		logger.Warn("config.warning", "msg", w)
	}
	if !v.OK() {
		return common.ConfigError("invalid configuration", config.Validate(cfg))
	}

	key, err := secrets.ResolveAPIKey(cfg.API.Key, cfg.API.Host)
	if err != nil {
		return common.ConfigError("api key", err)
	}
	cfg.API.Key = key

	deps := scrape.Deps{Logger: logger}
	if cfg.History.Enabled {
		db, err := store.Open(ctx, cfg.History.Path)
		if err != nil {
			return common.IOError("open history "+cfg.History.Path, err)
		}
		defer db.Close()
		deps.DB = db
	}

	res, err := scrape.RunExportOnce(ctx, deps, cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "wrote %d rows to %s\n", res.Export.Rows, res.Export.Path)
	for _, c := range res.Export.Chunks {
		fmt.Fprintf(stdout, "  chunk %s\n", c)
	}
	return nil
}

// withDotEnv layers the variables of a .env file under lookup: a variable
// set in the real environment wins. A missing file adds nothing.
func withDotEnv(path string, lookup func(string) (string, bool)) (func(string) (string, bool), error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	vals, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return lookup, nil
	}
	if err != nil {
		return nil, common.ConfigError("load "+path, err)
	}
	return func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := vals[key]
		return v, ok
	}, nil
}

// loadConfig reads path, or jobexport.yml when no path is given and that
// file exists, or falls back to the defaults.
func loadConfig(path string) (config.Config, error) {
	if path == "" {
		if _, err := os.Stat(defaultConfigPath); err != nil {
			return config.Default(), nil
		}
		path = defaultConfigPath
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, common.ConfigError("load "+path, err)
	}
	return cfg, nil
}

func newLogger(w io.Writer, verbose, asJSON bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	hopts := &slog.HandlerOptions{Level: level}
	if asJSON {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}
