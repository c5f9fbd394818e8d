package report

import (
	"bytes"
	"encoding/csv"

	"github.com/panjilaras/Dashboard-PI/internal/model/dashboard"
)

func CSV(r *dashboard.Report) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	records := [][]string{
		{Title},
		generatedLine(r),
		rangeLine(r),
	}
	for _, t := range tables(r) {
		records = append(records, []string{""}, []string{t.title}, t.header)
		records = append(records, t.rows...)
	}

	if err := w.WriteAll(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
