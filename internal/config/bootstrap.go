package config

import (
	"errors"
	"os"
)

// EnsureFile writes the default configuration to path unless a file is
// already there. created reports whether a new file was written.
func EnsureFile(path string) (created bool, err error) {
	_, err = os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return false, err
	}

	cfg := Default()
	cfg.Search.Query = "cybersecurity analyst"
	if err := SaveAtomic(path, cfg); err != nil {
		return false, err
	}
	return true, nil
}
