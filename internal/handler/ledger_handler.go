package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_pos/internal/middleware"
	"github.com/GTDGit/gtd_pos/internal/models"
	"github.com/GTDGit/gtd_pos/internal/service"
	"github.com/GTDGit/gtd_pos/internal/utils"
)

// LedgerHandler handles the cash book and debts.
type LedgerHandler struct {
	ledgerService *service.LedgerService
	debtService   *service.DebtService
	loc           *time.Location
}

func NewLedgerHandler(ledgerService *service.LedgerService, debtService *service.DebtService, loc *time.Location) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService, debtService: debtService, loc: loc}
}

// Dashboard handles GET /v1/dashboard
func (h *LedgerHandler) Dashboard(c *gin.Context) {
	d, err := h.ledgerService.Dashboard(c.Request.Context())
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 200, "Dashboard retrieved", d)
}

// ListTransactions handles GET /v1/transactions
func (h *LedgerHandler) ListTransactions(c *gin.Context) {
	from, to, err := instantRange(c, h.loc)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	page, limit := pagination(c)
	f := models.TransactionFilter{
		Type:          models.TransactionType(c.Query("type")),
		ReferenceType: models.ReferenceType(c.Query("referenceType")),
		From:          from,
		To:            to,
		Page:          page,
		Limit:         limit,
	}
	trx, total, err := h.ledgerService.List(c.Request.Context(), f)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.SuccessWithPagination(c, 200, "Transactions retrieved", trx, page, limit, total)
}

// RecordTransaction handles POST /v1/transactions
func (h *LedgerHandler) RecordTransaction(c *gin.Context) {
	var req service.ManualEntryRequest
	if !bind(c, &req) {
		return
	}
	trx, err := h.ledgerService.RecordManual(c.Request.Context(), middleware.GetActor(c), &req)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 201, "Transaction recorded", trx)
}

// ListDebts handles GET /v1/debts
func (h *LedgerHandler) ListDebts(c *gin.Context) {
	page, limit := pagination(c)
	f := models.DebtFilter{
		DebtorType: models.DebtorType(c.Query("debtorType")),
		DebtorID:   queryInt(c, "debtorId"),
		Status:     models.DebtStatus(c.Query("status")),
		Page:       page,
		Limit:      limit,
	}
	debts, total, err := h.debtService.List(c.Request.Context(), f)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.SuccessWithPagination(c, 200, "Debts retrieved", debts, page, limit, total)
}

// GetDebt handles GET /v1/debts/:id
func (h *LedgerHandler) GetDebt(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	debt, err := h.debtService.Get(c.Request.Context(), id)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 200, "Debt retrieved", debt)
}

// CreateDebt handles POST /v1/debts
func (h *LedgerHandler) CreateDebt(c *gin.Context) {
	var req service.CreateDebtRequest
	if !bind(c, &req) {
		return
	}
	debt, err := h.debtService.Create(c.Request.Context(), middleware.GetActor(c), &req)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 201, "Debt recorded", debt)
}

// SettleDebt handles POST /v1/debts/:id/payments
func (h *LedgerHandler) SettleDebt(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.SettleDebtRequest
	if !bind(c, &req) {
		return
	}
	debt, err := h.debtService.Settle(c.Request.Context(), middleware.GetActor(c), id, &req)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 200, "Debt payment recorded", debt)
}
