package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_pos/internal/middleware"
	"github.com/GTDGit/gtd_pos/internal/models"
	"github.com/GTDGit/gtd_pos/internal/service"
	"github.com/GTDGit/gtd_pos/internal/utils"
)

// WarrantyHandler handles warranty lookup and after-sales actions.
type WarrantyHandler struct {
	warrantyService *service.WarrantyService
}

func NewWarrantyHandler(warrantyService *service.WarrantyService) *WarrantyHandler {
	return &WarrantyHandler{warrantyService: warrantyService}
}

// Lookup handles GET /v1/warranties/lookup?q=<imei|number|WARRANTY:token>
func (h *WarrantyHandler) Lookup(c *gin.Context) {
	view, err := h.warrantyService.Lookup(c.Request.Context(), c.Query("q"))
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 200, "Warranty retrieved", view)
}

// Issue handles POST /v1/warranties
func (h *WarrantyHandler) Issue(c *gin.Context) {
	var req service.IssueWarrantyRequest
	if !bind(c, &req) {
		return
	}
	view, err := h.warrantyService.Issue(c.Request.Context(), &req)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 201, "Warranty issued", view)
}

// Claim handles POST /v1/warranties/:number/claim
func (h *WarrantyHandler) Claim(c *gin.Context) {
	var req service.WarrantyNoteRequest
	if !bindOptional(c, &req) {
		return
	}
	view, err := h.warrantyService.Claim(c.Request.Context(), middleware.GetActor(c), c.Param("number"), &req)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 200, "Warranty claimed", view)
}

// Void handles POST /v1/warranties/:number/void
func (h *WarrantyHandler) Void(c *gin.Context) {
	var req service.WarrantyNoteRequest
	if !bindOptional(c, &req) {
		return
	}
	view, err := h.warrantyService.Void(c.Request.Context(), middleware.GetActor(c), c.Param("number"), &req)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 200, "Warranty voided", view)
}

// List handles GET /v1/warranties
func (h *WarrantyHandler) List(c *gin.Context) {
	page, limit := pagination(c)
	f := models.WarrantyFilter{
		Status: models.WarrantyStatus(c.Query("status")),
		Type:   models.WarrantyType(c.Query("type")),
		Search: c.Query("search"),
		Page:   page,
		Limit:  limit,
	}
	views, total, err := h.warrantyService.List(c.Request.Context(), f)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.SuccessWithPagination(c, 200, "Warranties retrieved", views, page, limit, total)
}

// Expiring handles GET /v1/warranties/expiring
func (h *WarrantyHandler) Expiring(c *gin.Context) {
	views, err := h.warrantyService.Expiring(c.Request.Context())
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 200, "Expiring warranties retrieved", views)
}
