package export

import (
	"io"

	"jobexport/internal/domain"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Jobs"

// column widths by name; anything else gets the default
var xlsxWidths = map[string]float64{
	domain.ColTitle:            36,
	domain.ColEmployer:         24,
	domain.ColDescription:      80,
	domain.ColPostedAt:         12,
	domain.ColEmploymentType:   16,
	domain.ColSkills:           48,
	domain.ColResponsibilities: 60,
	domain.ColExperience:       40,
	domain.ColApplyURL:         48,
}

func writeXLSXAtomic(path string, table *domain.JobTable) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	header := make([]any, len(table.Columns))
	for i, c := range table.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}

	for i, rec := range table.Records() {
		cells := make([]any, len(rec))
		for j, v := range rec {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
			return err
		}
	}

	for i, c := range table.Columns {
		w, ok := xlsxWidths[c]
		if !ok {
			continue
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheetName, col, col, w); err != nil {
			return err
		}
	}

	return replaceAtomic(path, func(w io.Writer) error {
		_, err := f.WriteTo(w)
		return err
	})
}
