// Package export renders reports as XLSX workbooks and reads stock sheets.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/GTDGit/gtd_pos/internal/service"
)

// ContentType is the MIME type of the workbooks produced here.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const dateLayout = "2006-01-02"

// sheet writes a header row followed by rows into name, creating the sheet
// when it does not exist yet.
func sheet(f *excelize.File, name string, headers []string, rows [][]any) error {
	if idx, _ := f.GetSheetIndex(name); idx < 0 {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(name, cell, h); err != nil {
			return err
		}
	}
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(name, cell, v); err != nil {
				return err
			}
		}
	}
	last, _ := excelize.ColumnNumberToName(len(headers))
	return f.SetColWidth(name, "A", last, 18)
}

// finish drops the default sheet once named sheets exist and writes the workbook.
func finish(f *excelize.File, first string, w io.Writer) error {
	if first != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return err
		}
	}
	if idx, _ := f.GetSheetIndex(first); idx >= 0 {
		f.SetActiveSheet(idx)
	}
	return f.Write(w)
}

// Sales writes a sales summary workbook: totals, daily series, payment
// methods and top products.
func Sales(w io.Writer, r *service.SalesReport, daily []service.DailySales) error {
	f := excelize.NewFile()
	defer f.Close()

	period := fmt.Sprintf("%s to %s", r.Period.From.Format(dateLayout), r.Period.To.Format(dateLayout))
	if err := sheet(f, "Summary", []string{"Metric", "Value"}, [][]any{
		{"Period", period},
		{"Orders", r.Summary.Orders},
		{"Revenue", r.Summary.Revenue},
		{"Paid", r.Summary.Paid},
		{"Discount", r.Summary.Discount},
		{"Tax", r.Summary.Tax},
		{"Average order", r.AverageOrder},
		{"Collection rate", r.CollectionRate},
	}); err != nil {
		return err
	}

	rows := make([][]any, 0, len(daily))
	for _, d := range daily {
		rows = append(rows, []any{d.Date.Format(dateLayout), d.Orders, d.Revenue, d.Paid})
	}
	if err := sheet(f, "Daily", []string{"Date", "Orders", "Revenue", "Paid"}, rows); err != nil {
		return err
	}

	rows = rows[:0]
	for _, m := range r.ByMethod {
		rows = append(rows, []any{string(m.PaymentMethod), m.Orders, m.Revenue})
	}
	if err := sheet(f, "Payment methods", []string{"Method", "Orders", "Revenue"}, rows); err != nil {
		return err
	}

	rows = rows[:0]
	for _, p := range r.TopProducts {
		rows = append(rows, []any{p.ProductID, p.Name, p.Quantity, p.Revenue})
	}
	if err := sheet(f, "Top products", []string{"Product ID", "Name", "Quantity", "Revenue"}, rows); err != nil {
		return err
	}
	return finish(f, "Summary", w)
}

// LowStock writes the reorder list.
func LowStock(w io.Writer, r *service.StockReport) error {
	f := excelize.NewFile()
	defer f.Close()

	rows := make([][]any, 0, len(r.Products))
	for _, p := range r.Products {
		rows = append(rows, []any{p.ProductID, p.Name, p.Brand, p.Model, p.CategoryName, p.AvailableCount, p.Urgency, p.StockValue})
	}
	headers := []string{"Product ID", "Name", "Brand", "Model", "Category", "Available", "Urgency", "Stock value"}
	if err := sheet(f, "Low stock", headers, rows); err != nil {
		return err
	}
	return finish(f, "Low stock", w)
}

// ProfitLoss writes ledger totals and the per-reference breakdown.
func ProfitLoss(w io.Writer, r *service.ProfitLoss) error {
	f := excelize.NewFile()
	defer f.Close()

	period := fmt.Sprintf("%s to %s", r.Period.From.Format(dateLayout), r.Period.To.Format(dateLayout))
	if err := sheet(f, "Profit and loss", []string{"Metric", "Value"}, [][]any{
		{"Period", period},
		{"Income", r.Totals.Income},
		{"Expense", r.Totals.Expense},
		{"Profit", r.Totals.Profit},
		{"Margin", r.Margin},
	}); err != nil {
		return err
	}

	rows := make([][]any, 0, len(r.Breakdown))
	for _, b := range r.Breakdown {
		rows = append(rows, []any{string(b.TransactionType), string(b.ReferenceType), b.Count, b.Total})
	}
	if err := sheet(f, "Breakdown", []string{"Type", "Reference", "Entries", "Total"}, rows); err != nil {
		return err
	}
	return finish(f, "Profit and loss", w)
}
