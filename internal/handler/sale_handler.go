package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_pos/internal/middleware"
	"github.com/GTDGit/gtd_pos/internal/models"
	"github.com/GTDGit/gtd_pos/internal/service"
	"github.com/GTDGit/gtd_pos/internal/utils"
)

// SaleHandler handles quotes, checkout and invoice lookups.
type SaleHandler struct {
	saleService *service.SaleService
	loc         *time.Location
}

func NewSaleHandler(saleService *service.SaleService, loc *time.Location) *SaleHandler {
	return &SaleHandler{saleService: saleService, loc: loc}
}

// Quote handles POST /v1/sales/quote. Nothing is written.
func (h *SaleHandler) Quote(c *gin.Context) {
	var req service.CheckoutRequest
	if !bind(c, &req) {
		return
	}
	quote, err := h.saleService.Quote(c.Request.Context(), &req)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 200, "Quote calculated", quote)
}

// Checkout handles POST /v1/sales
func (h *SaleHandler) Checkout(c *gin.Context) {
	var req service.CheckoutRequest
	if !bind(c, &req) {
		return
	}
	result, err := h.saleService.Checkout(c.Request.Context(), middleware.GetActor(c), &req)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 201, "Sale completed", result)
}

// Get handles GET /v1/sales/:invoice
func (h *SaleHandler) Get(c *gin.Context) {
	sale, err := h.saleService.Get(c.Request.Context(), c.Param("invoice"))
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 200, "Sale retrieved", sale)
}

// List handles GET /v1/sales?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *SaleHandler) List(c *gin.Context) {
	from, to, err := instantRange(c, h.loc)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	page, limit := pagination(c)
	f := models.SaleFilter{
		From:          from,
		To:            to,
		PaymentStatus: models.PaymentStatus(c.Query("paymentStatus")),
		CustomerID:    queryInt(c, "customerId"),
		Search:        c.Query("search"),
		Page:          page,
		Limit:         limit,
	}
	sales, total, err := h.saleService.List(c.Request.Context(), f)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.SuccessWithPagination(c, 200, "Sales retrieved", sales, page, limit, total)
}
