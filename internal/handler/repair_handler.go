package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_pos/internal/middleware"
	"github.com/GTDGit/gtd_pos/internal/models"
	"github.com/GTDGit/gtd_pos/internal/service"
	"github.com/GTDGit/gtd_pos/internal/utils"
)

// RepairHandler handles the service desk.
type RepairHandler struct {
	repairService *service.RepairService
}

func NewRepairHandler(repairService *service.RepairService) *RepairHandler {
	return &RepairHandler{repairService: repairService}
}

// Intake handles POST /v1/repairs
func (h *RepairHandler) Intake(c *gin.Context) {
	var req service.IntakeRequest
	if !bind(c, &req) {
		return
	}
	detail, err := h.repairService.Intake(c.Request.Context(), middleware.GetActor(c), &req)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 201, "Repair received", detail)
}

// Get handles GET /v1/repairs/:number. The printed REPAIR: token is accepted too.
func (h *RepairHandler) Get(c *gin.Context) {
	detail, err := h.repairService.Get(c.Request.Context(), c.Param("number"))
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 200, "Repair retrieved", detail)
}

// List handles GET /v1/repairs
func (h *RepairHandler) List(c *gin.Context) {
	page, limit := pagination(c)
	f := models.RepairFilter{
		Status: models.RepairStatus(c.Query("status")),
		Search: c.Query("search"),
		Page:   page,
		Limit:  limit,
	}
	repairs, total, err := h.repairService.List(c.Request.Context(), f)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.SuccessWithPagination(c, 200, "Repairs retrieved", repairs, page, limit, total)
}

// Transition handles PUT /v1/repairs/:number/status
func (h *RepairHandler) Transition(c *gin.Context) {
	var req service.RepairStatusRequest
	if !bind(c, &req) {
		return
	}
	detail, err := h.repairService.Transition(c.Request.Context(), middleware.GetActor(c), c.Param("number"), &req)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 200, "Repair status changed", detail)
}

// UpdateCosts handles PUT /v1/repairs/:number/costs
func (h *RepairHandler) UpdateCosts(c *gin.Context) {
	var req service.RepairCostRequest
	if !bind(c, &req) {
		return
	}
	detail, err := h.repairService.UpdateCosts(c.Request.Context(), middleware.GetActor(c), c.Param("number"), &req)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 200, "Repair costs updated", detail)
}

// CollectPayment handles POST /v1/repairs/:number/payments
func (h *RepairHandler) CollectPayment(c *gin.Context) {
	var req service.RepairPaymentRequest
	if !bind(c, &req) {
		return
	}
	detail, err := h.repairService.CollectPayment(c.Request.Context(), middleware.GetActor(c), c.Param("number"), &req)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 200, "Repair payment collected", detail)
}
