package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/rvworks/servicedesk/internal/model"
)

// Generator renders revenue reports as xlsx workbooks.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) WriteRevenue(report model.RevenueReport) ([]byte, error) {
	file := excelize.NewFile()

	sheet := "Revenue"
	file.SetSheetName("Sheet1", sheet)

	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Dealership")
	set("B1", report.DealershipName)
	set("A2", "Period start")
	set("B2", report.PeriodStart.Format("2006-01-02"))
	set("A3", "Period end")
	set("B3", report.PeriodEnd.Format("2006-01-02"))

	headerRow := 5
	set(fmt.Sprintf("A%d", headerRow), "Date")
	set(fmt.Sprintf("B%d", headerRow), "Orders")
	set(fmt.Sprintf("C%d", headerRow), "Parts revenue")
	set(fmt.Sprintf("D%d", headerRow), "Labor revenue")
	set(fmt.Sprintf("E%d", headerRow), "Total revenue")

	var totalOrders int
	var totalParts, totalLabor, totalRevenue float64
	for i, m := range report.Metrics {
		row := headerRow + 1 + i
		set(fmt.Sprintf("A%d", row), m.Date)
		set(fmt.Sprintf("B%d", row), m.OrderCount)
		set(fmt.Sprintf("C%d", row), m.PartsRevenue)
		set(fmt.Sprintf("D%d", row), m.LaborRevenue)
		set(fmt.Sprintf("E%d", row), m.TotalRevenue)
		totalOrders += m.OrderCount
		totalParts += m.PartsRevenue
		totalLabor += m.LaborRevenue
		totalRevenue += m.TotalRevenue
	}

	totalRow := headerRow + 1 + len(report.Metrics)
	set(fmt.Sprintf("A%d", totalRow), "Total")
	set(fmt.Sprintf("B%d", totalRow), totalOrders)
	set(fmt.Sprintf("C%d", totalRow), totalParts)
	set(fmt.Sprintf("D%d", totalRow), totalLabor)
	set(fmt.Sprintf("E%d", totalRow), totalRevenue)

	_ = file.SetColWidth(sheet, "A", "A", 16)
	_ = file.SetColWidth(sheet, "B", "E", 15)

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
