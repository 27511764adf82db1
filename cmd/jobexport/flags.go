package main

import (
	"flag"
	"io"
	"strings"
	"time"

	"jobexport/internal/config"
)

type options struct {
	configPath   string
	envFile      string
	initPath     string
	history      bool
	historyN     int
	historyPrune time.Duration
	setKey       bool
	deleteKey    bool
	verbose      bool
	logJSON      bool

	key        string
	host       string
	timeout    int
	query      string
	page       int
	pages      int
	datePosted string
	out        string
	format     string
	mode       string
	columns    string
	historyDB  string

	// names of the flags present on the command line
	set map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	o := &options{set: map[string]bool{}}
	fs := flag.NewFlagSet("jobexport", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&o.configPath, "config", "", "YAML config file (default jobexport.yml if present)")
	fs.StringVar(&o.envFile, "env", ".env", ".env file to load before reading the environment")
	fs.StringVar(&o.initPath, "init", "", "write a default config file to this path and exit")
	fs.BoolVar(&o.history, "history", false, "print recent runs from the history database and exit")
	fs.IntVar(&o.historyN, "history-limit", 20, "number of runs printed by -history")
	fs.DurationVar(&o.historyPrune, "history-prune", 0, "delete recorded runs older than this (e.g. 720h) and exit")
	fs.BoolVar(&o.setKey, "set-key", false, "store the API key (from -key or "+config.EnvKey+") in the OS keychain and exit")
	fs.BoolVar(&o.deleteKey, "delete-key", false, "remove the API key from the OS keychain and exit")
	fs.BoolVar(&o.verbose, "v", false, "debug logging")
	fs.BoolVar(&o.logJSON, "log-json", false, "log as JSON")

	fs.StringVar(&o.key, "key", "", "RapidAPI key")
	fs.StringVar(&o.host, "host", "", "RapidAPI host header")
	fs.IntVar(&o.timeout, "timeout", 0, "request timeout in seconds")
	fs.StringVar(&o.query, "query", "", "search query")
	fs.IntVar(&o.page, "page", 0, "first page to request")
	fs.IntVar(&o.pages, "pages", 0, "number of pages to request")
	fs.StringVar(&o.datePosted, "date-posted", "", "all | today | 3days | week | month")
	fs.StringVar(&o.out, "out", "", "output file")
	fs.StringVar(&o.format, "format", "", "csv | xlsx")
	fs.StringVar(&o.mode, "mode", "", "overwrite | append")
	fs.StringVar(&o.columns, "columns", "", "core | extended")
	fs.StringVar(&o.historyDB, "history-db", "", "record runs in this SQLite file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })

	// a bare trailing argument is taken as the query
	if !o.set["query"] && fs.NArg() > 0 {
		o.query = strings.Join(fs.Args(), " ")
		o.set["query"] = true
	}
	return o, nil
}

// apply overlays the flags given on the command line onto cfg.
func (o *options) apply(cfg *config.Config) {
	if o.set["key"] {
		cfg.API.Key = o.key
	}
	if o.set["host"] {
		cfg.API.Host = o.host
	}
	if o.set["timeout"] {
		cfg.API.TimeoutSeconds = o.timeout
	}
	if o.set["query"] {
		cfg.Search.Query = o.query
	}
	if o.set["page"] {
		cfg.Search.Page = o.page
	}
	if o.set["pages"] {
		cfg.Search.Pages = o.pages
	}
	if o.set["date-posted"] {
		cfg.Search.DatePosted = o.datePosted
	}
	if o.set["out"] {
		cfg.Output.Path = o.out
	}
	if o.set["format"] {
		cfg.Output.Format = o.format
	}
	if o.set["mode"] {
		cfg.Output.Mode = o.mode
	}
	if o.set["columns"] {
		cfg.Output.Columns = o.columns
	}
	if o.set["history-db"] {
		cfg.History.Path = o.historyDB
		cfg.History.Enabled = true
	}
}
