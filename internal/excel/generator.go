package excel

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/redlitmus-in/MeterSquare-sub008/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate renders a comparison report: a summary sheet with item totals and
// one sheet per BOQ item with the material rows.
func (g *Generator) Generate(report model.ComparisonReport) ([]byte, error) {
	file := excelize.NewFile()

	summarySheet := "Summary"
	file.SetSheetName("Sheet1", summarySheet)
	if err := g.writeSummary(file, summarySheet, report); err != nil {
		return nil, err
	}

	usedNames := map[string]struct{}{summarySheet: {}}
	for _, item := range report.Items {
		sheetName := buildSheetName(item.ItemName, usedNames)
		usedNames[sheetName] = struct{}{}

		file.NewSheet(sheetName)
		if err := g.writeItem(file, sheetName, item); err != nil {
			return nil, err
		}
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, report model.ComparisonReport) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Planned total")
	set("B1", formatAmount(report.PlannedTotal))
	set("A2", "Actual total (incl. VAT)")
	set("B2", formatAmount(report.ActualTotal))
	set("A3", "Variance")
	set("B3", formatAmount(report.TotalVariance))

	tableRow := 5
	headers := []string{"BOQ item", "Planned", "Actual", "Variance", "Status"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, tableRow)
		set(cell, header)
	}

	for i, item := range report.Items {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), item.ItemName)
		set(fmt.Sprintf("B%d", row), formatAmount(item.PlannedAmount))
		set(fmt.Sprintf("C%d", row), formatAmount(item.ActualAmount))
		set(fmt.Sprintf("D%d", row), formatAmount(item.Variance))
		set(fmt.Sprintf("E%d", row), string(item.Status))
	}

	_ = file.SetColWidth(sheet, "A", "A", 45)
	_ = file.SetColWidth(sheet, "B", "D", 16)
	_ = file.SetColWidth(sheet, "E", "E", 18)
	return nil
}

func (g *Generator) writeItem(file *excelize.File, sheet string, item model.ItemComparison) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "BOQ item")
	set("B1", item.ItemName)
	set("A2", "Planned amount")
	set("B2", formatAmount(item.PlannedAmount))
	set("A3", "Actual amount")
	set("B3", formatAmount(item.ActualAmount))
	set("A4", "Variance")
	set("B4", formatAmount(item.Variance))
	set("A5", "Status")
	set("B5", string(item.Status))

	tableRow := 7
	headers := []string{
		"Material",
		"Planned qty",
		"Planned rate",
		"Planned amount",
		"Purchased qty",
		"Used qty",
		"Remaining qty",
		"Unit price",
		"Actual amount",
		"Variance",
		"Status",
		"New material",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, tableRow)
		set(cell, header)
	}

	for i, material := range item.Materials {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), material.MaterialName)
		set(fmt.Sprintf("B%d", row), formatQty(material.Planned.Quantity))
		set(fmt.Sprintf("C%d", row), formatAmount(material.Planned.Rate))
		set(fmt.Sprintf("D%d", row), formatAmount(material.Planned.Amount))
		set(fmt.Sprintf("E%d", row), formatQty(material.Actual.QuantityPurchased))
		set(fmt.Sprintf("F%d", row), formatQty(material.Actual.QuantityUsed))
		set(fmt.Sprintf("G%d", row), formatQty(material.Actual.RemainingQuantity))
		set(fmt.Sprintf("H%d", row), formatAmount(material.Actual.UnitPrice))
		set(fmt.Sprintf("I%d", row), formatAmount(material.Actual.Amount))
		set(fmt.Sprintf("J%d", row), formatAmount(material.Variance.Amount))
		set(fmt.Sprintf("K%d", row), string(material.Status))
		set(fmt.Sprintf("L%d", row), formatBool(material.IsNewMaterial))
	}

	_ = file.SetColWidth(sheet, "A", "A", 36)
	_ = file.SetColWidth(sheet, "B", "J", 14)
	_ = file.SetColWidth(sheet, "K", "L", 16)
	return nil
}

func buildSheetName(name string, used map[string]struct{}) string {
	base := sanitizeSheetName(name)
	if len(base) > 31 {
		base = base[:31]
	}

	nameCandidate := base
	counter := 2
	for {
		if _, exists := used[nameCandidate]; !exists {
			return nameCandidate
		}
		suffix := fmt.Sprintf("-%d", counter)
		trimmed := base
		if len(trimmed)+len(suffix) > 31 {
			trimmed = trimmed[:31-len(suffix)]
		}
		nameCandidate = trimmed + suffix
		counter++
	}
}

func sanitizeSheetName(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "Item"
	}

	replacer := strings.NewReplacer(
		"[", "-",
		"]", "-",
		":", "-",
		"*", "-",
		"?", "-",
		"/", "-",
		"\\", "-",
	)
	value = replacer.Replace(value)
	value = strings.TrimSpace(value)
	if value == "" {
		return "Item"
	}
	return value
}

func formatAmount(value float64) string {
	return fmt.Sprintf("%.2f", value)
}

func formatQty(value float64) string {
	return fmt.Sprintf("%.3f", value)
}

func formatBool(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
