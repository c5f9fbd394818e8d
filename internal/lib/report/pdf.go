package report

import (
	"bytes"

	"github.com/go-pdf/fpdf"
	"github.com/panjilaras/Dashboard-PI/internal/model/dashboard"
	"github.com/pkg/errors"
)

const (
	pdfMargin    = 14.0
	pdfRowHeight = 8.0
	pdfWidth     = 210.0 - 2*pdfMargin
)

// PDF renders r with the core Helvetica font. Text is translated to
// cp1252 since core fonts cannot take UTF-8.
func PDF(r *dashboard.Report) ([]byte, error) {
	return renderPDF(r, true)
}

func renderPDF(r *dashboard.Report, compress bool) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetCompression(compress)
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	doc.SetAutoPageBreak(true, pdfMargin)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 18)
	doc.CellFormat(0, 10, "Productivity Management System", "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 11)
	doc.CellFormat(0, 6, tr("Report Generated: "+generatedLine(r)[1]), "", 1, "L", false, 0, "")
	doc.CellFormat(0, 6, tr("Date Range: "+string(r.Range)), "", 1, "L", false, 0, "")

	for _, t := range tables(r) {
		doc.Ln(6)
		doc.SetFont("Helvetica", "B", 14)
		doc.CellFormat(0, 8, tr(t.title), "", 1, "L", false, 0, "")
		writePDFTable(doc, t, tr)
	}

	if err := doc.Error(); err != nil {
		return nil, errors.Wrap(err, "rendering pdf")
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "writing pdf")
	}
	return buf.Bytes(), nil
}

func writePDFTable(doc *fpdf.Fpdf, t table, tr func(string) string) {
	colWidth := pdfWidth / float64(len(t.header))

	doc.SetFont("Helvetica", "B", 10)
	doc.SetFillColor(168, 135, 255)
	doc.SetTextColor(255, 255, 255)
	for _, h := range t.header {
		doc.CellFormat(colWidth, pdfRowHeight, tr(h), "1", 0, "C", true, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Helvetica", "", 10)
	doc.SetTextColor(0, 0, 0)
	for i, row := range t.rows {
		fill := i%2 == 1
		doc.SetFillColor(245, 243, 255)
		for _, v := range row {
			doc.CellFormat(colWidth, pdfRowHeight, tr(v), "1", 0, "L", fill, 0, "")
		}
		doc.Ln(-1)
	}
}
