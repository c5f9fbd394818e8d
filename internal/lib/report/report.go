// Package report renders the productivity report as CSV, XLSX or PDF.
//
// All three formats share the same three tables: key metrics, category
// breakdown and priority distribution.
package report

import (
	"fmt"
	"strconv"
	"time"

	"github.com/panjilaras/Dashboard-PI/internal/model/dashboard"
)

const Title = "Productivity Management System Report"

// Format is a supported export format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

var contentTypes = map[Format]string{
	FormatCSV:  "text/csv",
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FormatPDF:  "application/pdf",
}

func (f Format) ContentType() string {
	return contentTypes[f]
}

// Filename returns e.g. "productivity-report-1718000000000.pdf".
func Filename(f Format, generatedAt time.Time) string {
	return fmt.Sprintf("productivity-report-%d.%s", generatedAt.UnixMilli(), f)
}

// Render dispatches to the renderer for f.
func Render(f Format, r *dashboard.Report) ([]byte, error) {
	switch f {
	case FormatCSV:
		return CSV(r)
	case FormatXLSX:
		return XLSX(r)
	case FormatPDF:
		return PDF(r)
	default:
		return nil, fmt.Errorf("unsupported report format %q", f)
	}
}

type table struct {
	title  string
	header []string
	rows   [][]string
}

func metricsTable(m dashboard.Metrics) table {
	return table{
		title:  "Key Metrics",
		header: []string{"Metric", "Value"},
		rows: [][]string{
			{"Total Tasks", strconv.Itoa(m.TotalTasks)},
			{"Completed Tasks", strconv.Itoa(m.CompletedTasks)},
			{"Completion Rate", strconv.Itoa(m.CompletionRate) + "%"},
			{"Total Points", strconv.Itoa(m.TotalPoints)},
			{"Active Users", strconv.Itoa(m.ActiveUsers)},
			{"Avg Time/Task", m.AvgTimePerTask},
		},
	}
}

func categoryTable(categories []dashboard.CategoryBreakdown) table {
	t := table{
		title:  "Category Breakdown",
		header: []string{"Category", "Tasks", "Total Points", "Avg Points", "Completion Rate"},
	}
	for _, c := range categories {
		t.rows = append(t.rows, []string{
			c.Name,
			strconv.Itoa(c.TaskCount),
			strconv.Itoa(c.TotalPoints),
			strconv.FormatFloat(c.AvgPoints, 'f', 1, 64),
			strconv.Itoa(c.CompletionRate) + "%",
		})
	}
	return t
}

func priorityTable(p dashboard.PriorityDistribution) table {
	return table{
		title:  "Priority Distribution",
		header: []string{"Priority", "Task Count"},
		rows: [][]string{
			{"Low", strconv.Itoa(p.Low)},
			{"Medium", strconv.Itoa(p.Medium)},
			{"High", strconv.Itoa(p.High)},
			{"Urgent", strconv.Itoa(p.Urgent)},
		},
	}
}

func tables(r *dashboard.Report) []table {
	return []table{
		metricsTable(r.Metrics),
		categoryTable(r.Analytics.CategoryBreakdown),
		priorityTable(r.Analytics.PriorityDistribution),
	}
}

func generatedLine(r *dashboard.Report) []string {
	return []string{"Generated:", r.GeneratedAt.Format(time.RFC1123)}
}

func rangeLine(r *dashboard.Report) []string {
	return []string{"Date Range:", string(r.Range)}
}
