package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/rvworks/servicedesk/internal/service"
)

// Generator renders work order estimates as printable PDFs.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Render(doc service.EstimateDocument) ([]byte, error) {
	wo := doc.WorkOrder
	cur := doc.CurrencySymbol
	if cur == "" {
		cur = "$"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, doc.DealershipName, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, "Service Estimate", "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Date: %s", time.Now().Format("January 2, 2006")), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Customer", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, doc.CustomerName, "", 1, "L", false, 0, "")
	if doc.RVLabel != "" {
		pdf.CellFormat(0, 6, doc.RVLabel, "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)

	if wo.IssueDescription != "" {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, "Reported Issue", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, wo.IssueDescription, "", "L", false)
		pdf.Ln(2)
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Parts", "", 1, "L", false, 0, "")

	headers := []string{"Part", "Unit Price", "Qty", "Line Total"}
	colWidths := []float64{90, 30, 20, 40}
	drawRow(pdf, headers, colWidths, true)

	var partsTotal float64
	for _, line := range wo.Parts {
		lineTotal := line.UnitPrice * float64(line.Quantity)
		partsTotal += lineTotal
		drawRow(pdf, []string{
			line.Name,
			fmt.Sprintf("%s%.2f", cur, line.UnitPrice),
			fmt.Sprintf("%d", line.Quantity),
			fmt.Sprintf("%s%.2f", cur, lineTotal),
		}, colWidths, false)
	}
	if len(wo.Parts) == 0 {
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, "No parts on this estimate.", "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Parts subtotal: %s%.2f", cur, partsTotal), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Labor: %.2f h x %s%.2f = %s%.2f",
		wo.LaborHours, cur, wo.LaborRate, cur, wo.LaborHours*wo.LaborRate), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, fmt.Sprintf("Total estimate: %s%.2f", cur, wo.TotalEstimate), "", 1, "R", false, 0, "")

	if wo.ApprovalTokenExpiresAt != nil {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(100, 100, 100)
		pdf.MultiCell(0, 5, fmt.Sprintf("This estimate is valid until %s. Prices for listed parts are locked in; additional work will be quoted separately.",
			wo.ApprovalTokenExpiresAt.Format("January 2, 2006")), "", "L", false)
		pdf.SetTextColor(0, 0, 0)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawRow(pdf *gofpdf.Fpdf, cells []string, widths []float64, header bool) {
	if header {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(235, 235, 235)
	} else {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetFillColor(255, 255, 255)
	}
	for i, cell := range cells {
		align := "L"
		if i > 0 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 7, cell, "1", 0, align, header, 0, "")
	}
	pdf.Ln(-1)
}
