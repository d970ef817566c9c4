package handler

import (
	"bytes"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_pos/internal/export"
	"github.com/GTDGit/gtd_pos/internal/service"
	"github.com/GTDGit/gtd_pos/internal/utils"
)

// ReportHandler handles read-only reports and their XLSX exports.
type ReportHandler struct {
	reportService *service.ReportService
}

func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) period(c *gin.Context) (service.Period, bool) {
	p, err := h.parsePeriod(c)
	if err != nil {
		utils.ErrorFrom(c, err)
		return service.Period{}, false
	}
	return p, true
}

func (h *ReportHandler) parsePeriod(c *gin.Context) (service.Period, error) {
	from, err := queryDate(c, "from")
	if err != nil {
		return service.Period{}, err
	}
	to, err := queryDate(c, "to")
	if err != nil {
		return service.Period{}, err
	}
	return h.reportService.ResolvePeriod(from, to)
}

func sendWorkbook(c *gin.Context, name string, write func(buf *bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.xlsx", name))
	c.Data(200, export.ContentType, buf.Bytes())
}

// Sales handles GET /v1/reports/sales?from=&to=
func (h *ReportHandler) Sales(c *gin.Context) {
	p, ok := h.period(c)
	if !ok {
		return
	}
	report, err := h.reportService.Sales(c.Request.Context(), p)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 200, "Sales report retrieved", report)
}

// Daily handles GET /v1/reports/sales/daily?from=&to=
func (h *ReportHandler) Daily(c *gin.Context) {
	p, ok := h.period(c)
	if !ok {
		return
	}
	days, err := h.reportService.Daily(c.Request.Context(), p)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 200, "Daily sales retrieved", days)
}

// Stock handles GET /v1/reports/stock?low=true
func (h *ReportHandler) Stock(c *gin.Context) {
	report, err := h.reportService.Stock(c.Request.Context(), c.Query("low") == "true")
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 200, "Stock report retrieved", report)
}

// ProfitLoss handles GET /v1/reports/profit-loss?from=&to=
func (h *ReportHandler) ProfitLoss(c *gin.Context) {
	p, ok := h.period(c)
	if !ok {
		return
	}
	report, err := h.reportService.ProfitLoss(c.Request.Context(), p)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 200, "Profit and loss retrieved", report)
}

// CustomerDebts handles GET /v1/reports/debts
func (h *ReportHandler) CustomerDebts(c *gin.Context) {
	report, err := h.reportService.CustomerDebts(c.Request.Context())
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 200, "Customer debts retrieved", report)
}

// Pawns handles GET /v1/reports/pawns
func (h *ReportHandler) Pawns(c *gin.Context) {
	report, err := h.reportService.Pawns(c.Request.Context())
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 200, "Pawn summary retrieved", report)
}

// ExportSales handles GET /v1/reports/sales/export
func (h *ReportHandler) ExportSales(c *gin.Context) {
	p, ok := h.period(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	report, err := h.reportService.Sales(ctx, p)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	days, err := h.reportService.Daily(ctx, p)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	name := fmt.Sprintf("sales_%s_%s", p.From.Format(dateLayout), p.To.Format(dateLayout))
	sendWorkbook(c, name, func(buf *bytes.Buffer) error {
		return export.Sales(buf, report, days)
	})
}

// ExportLowStock handles GET /v1/reports/stock/export
func (h *ReportHandler) ExportLowStock(c *gin.Context) {
	report, err := h.reportService.Stock(c.Request.Context(), true)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	sendWorkbook(c, "low_stock", func(buf *bytes.Buffer) error {
		return export.LowStock(buf, report)
	})
}

// ExportProfitLoss handles GET /v1/reports/profit-loss/export
func (h *ReportHandler) ExportProfitLoss(c *gin.Context) {
	p, ok := h.period(c)
	if !ok {
		return
	}
	report, err := h.reportService.ProfitLoss(c.Request.Context(), p)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	name := fmt.Sprintf("profit_loss_%s_%s", p.From.Format(dateLayout), p.To.Format(dateLayout))
	sendWorkbook(c, name, func(buf *bytes.Buffer) error {
		return export.ProfitLoss(buf, report)
	})
}
