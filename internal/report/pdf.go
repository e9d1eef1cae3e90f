// Package report renders the monthly canteen summary as a PDF.
package report

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"canteen/internal/scan"
)

// Monthly renders an A4 summary of per-subject order/collection counts.
// label is the YYYY-MM month the rows cover.
func Monthly(label string, rows []scan.SubjectSummary) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Canteen Report %s", label), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, fmt.Sprintf("Canteen Report - %s", label), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(70, 7, "Subject", "B", 0, "L", false, 0, "")
	pdf.CellFormat(50, 7, "ID", "B", 0, "L", false, 0, "")
	pdf.CellFormat(25, 7, "Orders", "B", 0, "R", false, 0, "")
	pdf.CellFormat(25, 7, "Taken", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	totalOrders, totalTaken := 0, 0
	for _, row := range rows {
		name := row.SubjectName
		if name == "" {
			name = "-"
		}
		pdf.CellFormat(70, 6, name, "", 0, "L", false, 0, "")
		pdf.CellFormat(50, 6, row.SubjectID, "", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%d", row.Orders), "", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%d", row.Taken), "", 1, "R", false, 0, "")
		totalOrders += row.Orders
		totalTaken += row.Taken
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 7, fmt.Sprintf("Total Orders: %d    Total Taken: %d", totalOrders, totalTaken), "T", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render monthly report: %w", err)
	}
	return buf.Bytes(), nil
}
