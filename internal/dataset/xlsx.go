package dataset

import (
	"asthma-pipeline/internal/grid"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Sheet1"

// WriteXLSX saves g as a single sheet workbook, header on the first row.
func WriteXLSX(path string, g grid.Grid) error {
	f := excelize.NewFile()
	defer f.Close()

	for c, name := range g.Header() {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(xlsxSheet, cell, name); err != nil {
			return err
		}
	}

	for r, n := 0, g.Len(); r < n; r++ {
		for c, value := range g.Row(r) {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(xlsxSheet, cell, value); err != nil {
				return err
			}
		}
	}

	return f.SaveAs(path)
}
