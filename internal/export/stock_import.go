package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/GTDGit/gtd_pos/internal/models"
	"github.com/GTDGit/gtd_pos/internal/rules"
	"github.com/GTDGit/gtd_pos/internal/service"
)

// StockColumns is the header row expected by ParseStockSheet. Only
// product_id is required; IMEI cells must be formatted as text.
var StockColumns = []string{"product_id", "imei", "serial_number", "condition", "cost_price", "selling_price", "location", "notes"}

// ParseStockSheet reads receipts from the first sheet of a workbook. Columns
// are matched by header name, so their order is free.
func ParseStockSheet(r io.Reader) ([]service.ReceiveStockRequest, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, rules.Invalid("file", "not a readable workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, rules.Invalid("file", "workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, rules.Invalid("file", "sheet has no data rows")
	}

	col := map[string]int{}
	for i, h := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := col["product_id"]; !ok {
		return nil, rules.Invalid("file", "missing product_id column")
	}

	cell := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	optional := func(v string) *string {
		if v == "" {
			return nil
		}
		return &v
	}

	var reqs []service.ReceiveStockRequest
	for n, row := range rows[1:] {
		line := n + 2
		if strings.Join(row, "") == "" {
			continue
		}
		productID, err := strconv.Atoi(cell(row, "product_id"))
		if err != nil {
			return nil, rules.Invalid("product_id", "row %d: not a number", line)
		}
		req := service.ReceiveStockRequest{
			ProductID:    productID,
			IMEI:         optional(cell(row, "imei")),
			SerialNumber: optional(cell(row, "serial_number")),
			Condition:    models.UnitCondition(cell(row, "condition")),
			Location:     optional(cell(row, "location")),
			Notes:        optional(cell(row, "notes")),
		}
		if v := cell(row, "cost_price"); v != "" {
			if req.CostPrice, err = strconv.ParseInt(v, 10, 64); err != nil {
				return nil, rules.Invalid("cost_price", "row %d: not a whole number", line)
			}
		}
		if v := cell(row, "selling_price"); v != "" {
			price, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, rules.Invalid("selling_price", "row %d: not a whole number", line)
			}
			req.SellingPrice = &price
		}
		reqs = append(reqs, req)
	}
	if len(reqs) == 0 {
		return nil, rules.Invalid("file", "sheet has no data rows")
	}
	return reqs, nil
}

// StockTemplate writes an empty receipt sheet with the expected headers.
func StockTemplate(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := sheet(f, "Sheet1", StockColumns, nil); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{NumFmt: 49})
	if err != nil {
		return err
	}
	if err := f.SetColStyle("Sheet1", "B", style); err != nil {
		return fmt.Errorf("format imei column: %w", err)
	}
	return f.Write(w)
}
