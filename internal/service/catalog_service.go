package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_pos/internal/models"
	"github.com/GTDGit/gtd_pos/internal/repository"
	"github.com/GTDGit/gtd_pos/internal/rules"
)

// CatalogService handles categories, products, suppliers and customers.
// Records are never deleted; they are deactivated.
type CatalogService struct {
	store                 *repository.Store
	clock                 rules.Clock
	defaultWarrantyMonths int
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(store *repository.Store, clock rules.Clock, defaultWarrantyMonths int) *CatalogService {
	return &CatalogService{store: store, clock: clock, defaultWarrantyMonths: defaultWarrantyMonths}
}

// CategoryRequest creates or updates a category.
type CategoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

// ProductRequest creates a product. WarrantyMonths falls back to the shop default.
type ProductRequest struct {
	CategoryID     *int    `json:"categoryId"`
	Name           string  `json:"name" binding:"required"`
	Brand          string  `json:"brand" binding:"required"`
	Model          string  `json:"model"`
	Barcode        *string `json:"barcode"`
	SKU            *string `json:"sku"`
	Description    *string `json:"description"`
	CostPrice      int64   `json:"costPrice"`
	SellingPrice   int64   `json:"sellingPrice"`
	WarrantyMonths *int    `json:"warrantyMonths"`
	TrackIMEI      *bool   `json:"trackImei"`
}

// UpdateProductRequest changes a product. Nil fields are left as they are.
type UpdateProductRequest struct {
	CategoryID     *int    `json:"categoryId"`
	Name           *string `json:"name"`
	Brand          *string `json:"brand"`
	Model          *string `json:"model"`
	Barcode        *string `json:"barcode"`
	SKU            *string `json:"sku"`
	Description    *string `json:"description"`
	CostPrice      *int64  `json:"costPrice"`
	SellingPrice   *int64  `json:"sellingPrice"`
	WarrantyMonths *int    `json:"warrantyMonths"`
	IsActive       *bool   `json:"isActive"`
}

// SupplierRequest creates or updates a supplier.
type SupplierRequest struct {
	Name          *string `json:"name"`
	ContactPerson *string `json:"contactPerson"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email"`
	Address       *string `json:"address"`
	TaxCode       *string `json:"taxCode"`
	IsActive      *bool   `json:"isActive"`
}

// CustomerRequest creates or updates a customer.
type CustomerRequest struct {
	Name      *string `json:"name"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email"`
	Address   *string `json:"address"`
	IDNumber  *string `json:"idNumber"`
	DebtLimit *int64  `json:"debtLimit"`
	Notes     *string `json:"notes"`
	IsActive  *bool   `json:"isActive"`
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.store.Categories.List(ctx)
}

func (s *CatalogService) CreateCategory(ctx context.Context, req *CategoryRequest) (*models.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, rules.Invalid("name", "is required")
	}
	c := &models.Category{
		Name:        name,
		Description: req.Description,
		IsActive:    true,
		CreatedAt:   rules.StampOf(s.clock.Now()),
	}
	if err := s.store.Categories.Create(ctx, c); err != nil {
		return nil, err
	}
	log.Info().Int("category_id", c.ID).Str("name", c.Name).Msg("Category created")
	return c, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id int, req *CategoryRequest) (*models.Category, error) {
	c, err := s.store.Categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		c.Name = name
	}
	if req.Description != nil {
		c.Description = req.Description
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	if err := s.store.Categories.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// CreateProduct adds a catalog entry. Physical units are received separately.
func (s *CatalogService) CreateProduct(ctx context.Context, req *ProductRequest) (*models.Product, error) {
	now := rules.StampOf(s.clock.Now())
	p := &models.Product{
		CategoryID:     req.CategoryID,
		Name:           strings.TrimSpace(req.Name),
		Brand:          strings.TrimSpace(req.Brand),
		Model:          strings.TrimSpace(req.Model),
		Barcode:        req.Barcode,
		SKU:            req.SKU,
		Description:    req.Description,
		CostPrice:      req.CostPrice,
		SellingPrice:   req.SellingPrice,
		WarrantyMonths: s.defaultWarrantyMonths,
		TrackIMEI:      true,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if req.WarrantyMonths != nil {
		p.WarrantyMonths = *req.WarrantyMonths
	}
	if req.TrackIMEI != nil {
		p.TrackIMEI = *req.TrackIMEI
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	if p.CategoryID != nil {
		if _, err := s.store.Categories.GetByID(ctx, *p.CategoryID); err != nil {
			return nil, err
		}
	}
	if err := s.store.Products.Create(ctx, p); err != nil {
		return nil, err
	}
	log.Info().Int("product_id", p.ID).Str("name", p.Name).Msg("Product created")
	return p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id int, req *UpdateProductRequest) (*models.Product, error) {
	p, err := s.store.Products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.CategoryID != nil {
		if _, err := s.store.Categories.GetByID(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		p.CategoryID = req.CategoryID
	}
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Brand != nil {
		p.Brand = strings.TrimSpace(*req.Brand)
	}
	if req.Model != nil {
		p.Model = strings.TrimSpace(*req.Model)
	}
	if req.Barcode != nil {
		p.Barcode = req.Barcode
	}
	if req.SKU != nil {
		p.SKU = req.SKU
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.CostPrice != nil {
		p.CostPrice = *req.CostPrice
	}
	if req.SellingPrice != nil {
		p.SellingPrice = *req.SellingPrice
	}
	if req.WarrantyMonths != nil {
		p.WarrantyMonths = *req.WarrantyMonths
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	p.UpdatedAt = rules.StampOf(s.clock.Now())
	if err := s.store.Products.Update(ctx, p); err != nil {
		return nil, err
	}
	log.Info().Int("product_id", p.ID).Bool("is_active", p.IsActive).Msg("Product updated")
	return p, nil
}

func validateProduct(p *models.Product) error {
	switch {
	case p.Name == "":
		return rules.Invalid("name", "is required")
	case p.Brand == "":
		return rules.Invalid("brand", "is required")
	case p.CostPrice < 0:
		return rules.Invalid("cost_price", "must be >= 0")
	case p.SellingPrice < 0:
		return rules.Invalid("selling_price", "must be >= 0")
	case p.WarrantyMonths < 0:
		return rules.Invalid("warranty_months", "must be >= 0")
	}
	return nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id int) (*models.Product, error) {
	return s.store.Products.GetByID(ctx, id)
}

func (s *CatalogService) ListProducts(ctx context.Context, f repository.ProductFilter) ([]models.Product, int, error) {
	return s.store.Products.GetAllPaged(ctx, f)
}

func (s *CatalogService) ListSuppliers(ctx context.Context, search string) ([]models.Supplier, error) {
	return s.store.Suppliers.List(ctx, search)
}

func (s *CatalogService) GetSupplier(ctx context.Context, id int) (*models.Supplier, error) {
	return s.store.Suppliers.GetByID(ctx, id)
}

func (s *CatalogService) CreateSupplier(ctx context.Context, req *SupplierRequest) (*models.Supplier, error) {
	now := rules.StampOf(s.clock.Now())
	sup := &models.Supplier{IsActive: true, CreatedAt: now, UpdatedAt: now}
	applySupplier(sup, req)
	if sup.Name == "" {
		return nil, rules.Invalid("name", "is required")
	}
	if err := s.store.Suppliers.Create(ctx, sup); err != nil {
		return nil, err
	}
	log.Info().Int("supplier_id", sup.ID).Str("name", sup.Name).Msg("Supplier created")
	return sup, nil
}

func (s *CatalogService) UpdateSupplier(ctx context.Context, id int, req *SupplierRequest) (*models.Supplier, error) {
	sup, err := s.store.Suppliers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applySupplier(sup, req)
	if sup.Name == "" {
		return nil, rules.Invalid("name", "is required")
	}
	sup.UpdatedAt = rules.StampOf(s.clock.Now())
	if err := s.store.Suppliers.Update(ctx, sup); err != nil {
		return nil, err
	}
	return sup, nil
}

func applySupplier(sup *models.Supplier, req *SupplierRequest) {
	if req.Name != nil {
		sup.Name = strings.TrimSpace(*req.Name)
	}
	if req.ContactPerson != nil {
		sup.ContactPerson = req.ContactPerson
	}
	if req.Phone != nil {
		sup.Phone = req.Phone
	}
	if req.Email != nil {
		sup.Email = req.Email
	}
	if req.Address != nil {
		sup.Address = req.Address
	}
	if req.TaxCode != nil {
		sup.TaxCode = req.TaxCode
	}
	if req.IsActive != nil {
		sup.IsActive = *req.IsActive
	}
}

func (s *CatalogService) ListCustomers(ctx context.Context, search string, page, limit int) ([]models.Customer, int, error) {
	return s.store.Customers.GetAllPaged(ctx, search, page, limit)
}

func (s *CatalogService) GetCustomer(ctx context.Context, id int) (*models.Customer, error) {
	return s.store.Customers.GetByID(ctx, id)
}

func (s *CatalogService) CreateCustomer(ctx context.Context, req *CustomerRequest) (*models.Customer, error) {
	now := rules.StampOf(s.clock.Now())
	c := &models.Customer{IsActive: true, CreatedAt: now, UpdatedAt: now}
	if err := applyCustomer(c, req); err != nil {
		return nil, err
	}
	if err := s.store.Customers.Create(ctx, c); err != nil {
		return nil, err
	}
	log.Info().Int("customer_id", c.ID).Str("name", c.Name).Msg("Customer created")
	return c, nil
}

func (s *CatalogService) UpdateCustomer(ctx context.Context, id int, req *CustomerRequest) (*models.Customer, error) {
	c, err := s.store.Customers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyCustomer(c, req); err != nil {
		return nil, err
	}
	c.UpdatedAt = rules.StampOf(s.clock.Now())
	if err := s.store.Customers.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func applyCustomer(c *models.Customer, req *CustomerRequest) error {
	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		c.Phone = req.Phone
	}
	if req.Email != nil {
		c.Email = req.Email
	}
	if req.Address != nil {
		c.Address = req.Address
	}
	if req.IDNumber != nil {
		c.IDNumber = req.IDNumber
	}
	if req.DebtLimit != nil {
		c.DebtLimit = *req.DebtLimit
	}
	if req.Notes != nil {
		c.Notes = req.Notes
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	if c.Name == "" {
		return rules.Invalid("name", "is required")
	}
	if c.DebtLimit < 0 {
		return rules.Invalid("debt_limit", "must be >= 0")
	}
	return nil
}
