package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/redlitmus-in/MeterSquare-sub008/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() (*Generator, error) {
	return &Generator{fontName: "Helvetica"}, nil
}

// Generate renders the approval document for a change request: header,
// material table, budget impact and sign-off lines.
func (g *Generator) Generate(cr model.ChangeRequest) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, "Material Change Request", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Request %s dated %s", cr.ID, formatDate(cr.CreatedAt)), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Type: %s    Status: %s", cr.RequestType, cr.Status), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Requested materials", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)

	headers := []string{"Material", "Catalog ref", "Qty", "Unit cost", "Amount"}
	colWidths := []float64{70, 30, 25, 30, 30}
	drawTableRow(pdf, g.fontName, headers, colWidths, true)

	for _, line := range cr.Lines {
		row := []string{
			line.MaterialName,
			catalogRef(line),
			formatAmount(line.Quantity, 3),
			formatAmount(line.UnitCost, 2),
			formatAmount(line.Amount(), 2),
		}
		drawTableRow(pdf, g.fontName, row, colWidths, false)
	}

	pdf.Ln(2)
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Materials total: %s", formatAmount(cr.TotalCost(), 2)), "", 1, "R", false, 0, "")

	if cr.BudgetImpact != nil {
		impact := cr.BudgetImpact
		pdf.Ln(2)
		pdf.SetFont(g.fontName, "B", 12)
		pdf.CellFormat(0, 8, "Budget impact", "", 1, "L", false, 0, "")
		pdf.SetFont(g.fontName, "", 11)
		pdf.CellFormat(0, 6, fmt.Sprintf("Original budget: %s", formatAmount(impact.OriginalTotal, 2)), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 6, fmt.Sprintf("Budget if approved: %s", formatAmount(impact.NewTotalIfApproved, 2)), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 6, fmt.Sprintf("Increase: %s%%", formatAmount(impact.IncreasePercentage, 2)), "", 1, "L", false, 0, "")

		if impact.RequiresClientApproval {
			pdf.SetTextColor(200, 0, 0)
			pdf.MultiCell(0, 6, "Attention: the increase exceeds the client approval threshold.", "", "L", false)
			pdf.SetTextColor(0, 0, 0)
		}
	}

	pdf.Ln(6)
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Approvals", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)

	signatureBlock(pdf, g.fontName, "Project manager")
	signatureBlock(pdf, g.fontName, "Buyer")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func catalogRef(line model.MaterialLine) string {
	if line.MasterMaterialID == nil {
		return "new"
	}
	return fmt.Sprintf("#%d", *line.MasterMaterialID)
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		border := "1"
		align := "L"
		if i > 1 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, col, border, 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func signatureBlock(pdf *gofpdf.Fpdf, fontName, label string) {
	pdf.SetFont(fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("%s: ______________________ /__________/", label), "", 1, "L", false, 0, "")
}

func formatAmount(value float64, precision int) string {
	format := fmt.Sprintf("%%.%df", precision)
	return fmt.Sprintf(format, value)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02.01.2006")
}
