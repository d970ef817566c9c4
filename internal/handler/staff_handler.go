package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_pos/internal/service"
	"github.com/GTDGit/gtd_pos/internal/utils"
)

// StaffHandler handles staff account administration.
type StaffHandler struct {
	staffService *service.StaffService
}

func NewStaffHandler(staffService *service.StaffService) *StaffHandler {
	return &StaffHandler{staffService: staffService}
}

// List handles GET /v1/staff
func (h *StaffHandler) List(c *gin.Context) {
	staff, err := h.staffService.List(c.Request.Context())
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 200, "Staff retrieved", staff)
}

// Create handles POST /v1/staff
func (h *StaffHandler) Create(c *gin.Context) {
	var req service.CreateStaffRequest
	if !bind(c, &req) {
		return
	}
	staff, err := h.staffService.Create(c.Request.Context(), &req)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 201, "Staff created", staff)
}

// Update handles PUT /v1/staff/:id. Setting isActive false deactivates the account.
func (h *StaffHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.UpdateStaffRequest
	if !bind(c, &req) {
		return
	}
	staff, err := h.staffService.Update(c.Request.Context(), id, &req)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 200, "Staff updated", staff)
}
