package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_pos/internal/middleware"
	"github.com/GTDGit/gtd_pos/internal/models"
	"github.com/GTDGit/gtd_pos/internal/service"
	"github.com/GTDGit/gtd_pos/internal/utils"
)

// PawnHandler handles pawn contracts.
type PawnHandler struct {
	pawnService *service.PawnService
}

func NewPawnHandler(pawnService *service.PawnService) *PawnHandler {
	return &PawnHandler{pawnService: pawnService}
}

// Open handles POST /v1/pawns
func (h *PawnHandler) Open(c *gin.Context) {
	var req service.OpenPawnRequest
	if !bind(c, &req) {
		return
	}
	view, err := h.pawnService.Open(c.Request.Context(), middleware.GetActor(c), &req)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 201, "Pawn contract opened", view)
}

// Suggest handles GET /v1/pawns/suggest?itemValue=
func (h *PawnHandler) Suggest(c *gin.Context) {
	value, _ := strconv.ParseInt(c.Query("itemValue"), 10, 64)
	loan, err := h.pawnService.SuggestLoan(value)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 200, "Suggested loan calculated", gin.H{"itemValue": value, "loanAmount": loan})
}

// Get handles GET /v1/pawns/:number
func (h *PawnHandler) Get(c *gin.Context) {
	detail, err := h.pawnService.Get(c.Request.Context(), c.Param("number"))
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 200, "Pawn contract retrieved", detail)
}

// List handles GET /v1/pawns?status=overdue
func (h *PawnHandler) List(c *gin.Context) {
	page, limit := pagination(c)
	f := models.PawnFilter{
		Status: models.PawnStatus(c.Query("status")),
		Search: c.Query("search"),
		Page:   page,
		Limit:  limit,
	}
	views, total, err := h.pawnService.List(c.Request.Context(), f)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.SuccessWithPagination(c, 200, "Pawn contracts retrieved", views, page, limit, total)
}

// Redeem handles POST /v1/pawns/:number/redeem
func (h *PawnHandler) Redeem(c *gin.Context) {
	h.payment(c, "Pawn contract redeemed", h.pawnService.Redeem)
}

// Extend handles POST /v1/pawns/:number/extend
func (h *PawnHandler) Extend(c *gin.Context) {
	h.payment(c, "Pawn contract extended", h.pawnService.Extend)
}

// CollectInterest handles POST /v1/pawns/:number/interest
func (h *PawnHandler) CollectInterest(c *gin.Context) {
	h.payment(c, "Pawn interest collected", h.pawnService.CollectInterest)
}

type pawnPaymentFunc = func(ctx context.Context, actor models.Actor, number string, req *service.PawnPaymentRequest) (*models.PawnView, error)

func (h *PawnHandler) payment(c *gin.Context, message string, fn pawnPaymentFunc) {
	var req service.PawnPaymentRequest
	if !bind(c, &req) {
		return
	}
	view, err := fn(c.Request.Context(), middleware.GetActor(c), c.Param("number"), &req)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 200, message, view)
}

// Liquidate handles POST /v1/pawns/:number/liquidate
func (h *PawnHandler) Liquidate(c *gin.Context) {
	view, err := h.pawnService.Liquidate(c.Request.Context(), middleware.GetActor(c), c.Param("number"))
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 200, "Pawn contract liquidated", view)
}
