package handler

import (
	"bytes"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_pos/internal/export"
	"github.com/GTDGit/gtd_pos/internal/middleware"
	"github.com/GTDGit/gtd_pos/internal/models"
	"github.com/GTDGit/gtd_pos/internal/service"
	"github.com/GTDGit/gtd_pos/internal/utils"
)

// InventoryHandler handles stock receipt and unit lookups.
type InventoryHandler struct {
	inventoryService *service.InventoryService
}

func NewInventoryHandler(inventoryService *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

type receiveBatchRequest struct {
	Units []service.ReceiveStockRequest `json:"units" binding:"required"`
}

// Receive handles POST /v1/inventory
func (h *InventoryHandler) Receive(c *gin.Context) {
	var req service.ReceiveStockRequest
	if !bind(c, &req) {
		return
	}
	unit, err := h.inventoryService.Receive(c.Request.Context(), middleware.GetActor(c), &req)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 201, "Stock received", unit)
}

// ReceiveBatch handles POST /v1/inventory/batch. The whole batch is
// rejected when any unit is.
func (h *InventoryHandler) ReceiveBatch(c *gin.Context) {
	var req receiveBatchRequest
	if !bind(c, &req) {
		return
	}
	units, err := h.inventoryService.ReceiveBatch(c.Request.Context(), middleware.GetActor(c), req.Units)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 201, "Stock received", units)
}

// Import handles POST /v1/inventory/import (multipart field "file", XLSX).
// Form fields supplierId, onCredit and paymentMethod apply to every row.
func (h *InventoryHandler) Import(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "file is required")
		return
	}
	file, err := header.Open()
	if err != nil {
		utils.Error(c, 400, "VALIDATION_ERROR", "file cannot be read")
		return
	}
	defer file.Close()

	reqs, err := export.ParseStockSheet(file)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}

	var supplierID *int
	if id, _ := strconv.Atoi(c.PostForm("supplierId")); id > 0 {
		supplierID = &id
	}
	onCredit := c.PostForm("onCredit") == "true"
	method := models.PaymentMethod(c.PostForm("paymentMethod"))
	for i := range reqs {
		reqs[i].SupplierID = supplierID
		reqs[i].OnCredit = onCredit
		reqs[i].PaymentMethod = method
	}

	units, err := h.inventoryService.ReceiveBatch(c.Request.Context(), middleware.GetActor(c), reqs)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 201, "Stock imported", units)
}

// Template handles GET /v1/inventory/import/template
func (h *InventoryHandler) Template(c *gin.Context) {
	var buf bytes.Buffer
	if err := export.StockTemplate(&buf); err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=stock_import.xlsx")
	c.Data(200, export.ContentType, buf.Bytes())
}

// List handles GET /v1/inventory
func (h *InventoryHandler) List(c *gin.Context) {
	page, limit := pagination(c)
	f := models.UnitFilter{
		ProductID: queryInt(c, "productId"),
		Status:    models.UnitStatus(c.Query("status")),
		Search:    c.Query("search"),
		Page:      page,
		Limit:     limit,
	}
	units, total, err := h.inventoryService.List(c.Request.Context(), f)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.SuccessWithPagination(c, 200, "Inventory retrieved", units, page, limit, total)
}

// Get handles GET /v1/inventory/:id
func (h *InventoryHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	unit, err := h.inventoryService.Get(c.Request.Context(), id)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 200, "Unit retrieved", unit)
}

// GetByIMEI handles GET /v1/inventory/imei/:imei
func (h *InventoryHandler) GetByIMEI(c *gin.Context) {
	unit, err := h.inventoryService.GetByIMEI(c.Request.Context(), c.Param("imei"))
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 200, "Unit retrieved", unit)
}

// Transition handles PUT /v1/inventory/:id/status
func (h *InventoryHandler) Transition(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.TransitionUnitRequest
	if !bind(c, &req) {
		return
	}
	unit, err := h.inventoryService.Transition(c.Request.Context(), middleware.GetActor(c), id, req.Status)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 200, "Unit status changed", unit)
}
