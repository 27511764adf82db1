package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"jobexport/internal/domain"
)

// writeCSVAtomic writes header and rows to a temp file next to path and
// renames it into place once everything is flushed.
func writeCSVAtomic(path string, header []string, rows [][]string) error {
	return replaceAtomic(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(header); err != nil {
			return err
		}
		if err := cw.WriteAll(rows); err != nil {
			return err
		}
		return cw.Error()
	})
}

// appendCSV adds rows to an existing file whose header matches the table.
// A missing or empty file is written from scratch.
func appendCSV(path string, table *domain.JobTable) (appended bool, err error) {
	header, err := ReadHeader(path)
	if errors.Is(err, os.ErrNotExist) || errors.Is(err, io.EOF) {
		return false, writeCSVAtomic(path, table.Columns, table.Records())
	}
	if err != nil {
		return false, err
	}
	if !table.Columns.Equal(header) {
		return false, fmt.Errorf("existing header %v does not match columns %v", header, []string(table.Columns))
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return false, err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	cw := csv.NewWriter(f)
	if err := cw.WriteAll(table.Records()); err != nil {
		return false, err
	}
	return true, f.Sync()
}

// ReadHeader returns the first record of a CSV file.
func ReadHeader(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return r.Read()
}

// ReadAll loads a CSV file written by this package.
func ReadAll(path string) (header []string, rows [][]string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, io.EOF
	}
	return records[0], records[1:], nil
}

func replaceAtomic(path string, write func(io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if err = write(tmp); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmpPath, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
