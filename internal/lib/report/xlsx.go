package report

import (
	"github.com/panjilaras/Dashboard-PI/internal/model/dashboard"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

var sheetNames = []string{"Summary", "Categories", "Priority Distribution"}

// XLSX writes one sheet per table; the summary sheet also carries the title.
func XLSX(r *dashboard.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, errors.Wrap(err, "creating header style")
	}

	for i, t := range tables(r) {
		sheet := sheetNames[i]
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return nil, errors.Wrap(err, "renaming default sheet")
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return nil, errors.Wrapf(err, "creating sheet %s", sheet)
		}

		var rows [][]string
		if i == 0 {
			rows = append(rows, []string{Title}, generatedLine(r), rangeLine(r), nil)
		}
		headerRow := len(rows) + 1
		rows = append(rows, t.header)
		rows = append(rows, t.rows...)

		for n, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, n+1)
			if err != nil {
				return nil, err
			}
			values := make([]any, len(row))
			for k, v := range row {
				values[k] = v
			}
			if err := f.SetSheetRow(sheet, cell, &values); err != nil {
				return nil, errors.Wrapf(err, "writing row %d of %s", n+1, sheet)
			}
		}

		lastCol, err := excelize.ColumnNumberToName(len(t.header))
		if err != nil {
			return nil, err
		}
		start, _ := excelize.CoordinatesToCellName(1, headerRow)
		end, _ := excelize.CoordinatesToCellName(len(t.header), headerRow)
		if err := f.SetCellStyle(sheet, start, end, bold); err != nil {
			return nil, errors.Wrap(err, "styling header")
		}
		if err := f.SetColWidth(sheet, "A", lastCol, 20); err != nil {
			return nil, errors.Wrap(err, "sizing columns")
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "writing workbook")
	}
	return buf.Bytes(), nil
}
