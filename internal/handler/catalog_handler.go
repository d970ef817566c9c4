package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_pos/internal/repository"
	"github.com/GTDGit/gtd_pos/internal/service"
	"github.com/GTDGit/gtd_pos/internal/utils"
)

// CatalogHandler handles categories, products, suppliers and customers.
type CatalogHandler struct {
	catalogService *service.CatalogService
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// ListCategories handles GET /v1/categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalogService.ListCategories(c.Request.Context())
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 200, "Categories retrieved", categories)
}

// CreateCategory handles POST /v1/categories
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req service.CategoryRequest
	if !bind(c, &req) {
		return
	}
	category, err := h.catalogService.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 201, "Category created", category)
}

// UpdateCategory handles PUT /v1/categories/:id
func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.CategoryRequest
	if !bind(c, &req) {
		return
	}
	category, err := h.catalogService.UpdateCategory(c.Request.Context(), id, &req)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 200, "Category updated", category)
}

// ListProducts handles GET /v1/products
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	page, limit := pagination(c)
	f := repository.ProductFilter{
		CategoryID: queryInt(c, "categoryId"),
		Search:     c.Query("search"),
		ActiveOnly: c.Query("active") == "true",
		Page:       page,
		Limit:      limit,
	}
	products, total, err := h.catalogService.ListProducts(c.Request.Context(), f)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.SuccessWithPagination(c, 200, "Products retrieved", products, page, limit, total)
}

// GetProduct handles GET /v1/products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 200, "Product retrieved", product)
}

// CreateProduct handles POST /v1/products
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req service.ProductRequest
	if !bind(c, &req) {
		return
	}
	product, err := h.catalogService.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 201, "Product created", product)
}

// UpdateProduct handles PUT /v1/products/:id
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.UpdateProductRequest
	if !bind(c, &req) {
		return
	}
	product, err := h.catalogService.UpdateProduct(c.Request.Context(), id, &req)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 200, "Product updated", product)
}

// ListSuppliers handles GET /v1/suppliers
func (h *CatalogHandler) ListSuppliers(c *gin.Context) {
	suppliers, err := h.catalogService.ListSuppliers(c.Request.Context(), c.Query("search"))
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 200, "Suppliers retrieved", suppliers)
}

// CreateSupplier handles POST /v1/suppliers
func (h *CatalogHandler) CreateSupplier(c *gin.Context) {
	var req service.SupplierRequest
	if !bind(c, &req) {
		return
	}
	supplier, err := h.catalogService.CreateSupplier(c.Request.Context(), &req)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 201, "Supplier created", supplier)
}

// UpdateSupplier handles PUT /v1/suppliers/:id
func (h *CatalogHandler) UpdateSupplier(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.SupplierRequest
	if !bind(c, &req) {
		return
	}
	supplier, err := h.catalogService.UpdateSupplier(c.Request.Context(), id, &req)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 200, "Supplier updated", supplier)
}

// ListCustomers handles GET /v1/customers
func (h *CatalogHandler) ListCustomers(c *gin.Context) {
	page, limit := pagination(c)
	customers, total, err := h.catalogService.ListCustomers(c.Request.Context(), c.Query("search"), page, limit)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.SuccessWithPagination(c, 200, "Customers retrieved", customers, page, limit, total)
}

// GetCustomer handles GET /v1/customers/:id
func (h *CatalogHandler) GetCustomer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	customer, err := h.catalogService.GetCustomer(c.Request.Context(), id)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 200, "Customer retrieved", customer)
}

// CreateCustomer handles POST /v1/customers
func (h *CatalogHandler) CreateCustomer(c *gin.Context) {
	var req service.CustomerRequest
	if !bind(c, &req) {
		return
	}
	customer, err := h.catalogService.CreateCustomer(c.Request.Context(), &req)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 201, "Customer created", customer)
}

// UpdateCustomer handles PUT /v1/customers/:id
func (h *CatalogHandler) UpdateCustomer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.CustomerRequest
	if !bind(c, &req) {
		return
	}
	customer, err := h.catalogService.UpdateCustomer(c.Request.Context(), id, &req)
	if err != nil {
		utils.ErrorFrom(c, err)
		return
	}
	utils.Success(c, 200, "Customer updated", customer)
}
