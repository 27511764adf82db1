package export

import (
	"fmt"
	"os"
	"path/filepath"

	"jobexport/internal/domain"
)

// SplitCSV writes the table as chunk_0.csv, chunk_1.csv, ... in dir, each
// with the header and at most size rows. It returns the written paths.
func SplitCSV(table *domain.JobTable, dir string, size int) ([]string, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be > 0, got %d", size)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	records := table.Records()
	var paths []string
	for i := 0; i*size < len(records); i++ {
		end := min((i+1)*size, len(records))
		p := filepath.Join(dir, fmt.Sprintf("chunk_%d.csv", i))
		if err := writeCSVAtomic(p, table.Columns, records[i*size:end]); err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}
