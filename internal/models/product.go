package models

import "time"

// Category groups products in the catalog.
type Category struct {
	ID          int       `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	IsActive    bool      `db:"is_active" json:"isActive"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// Product represents a catalog definition. Physical stock is tracked by InventoryUnit.
type Product struct {
	ID             int       `db:"id" json:"id"`
	CategoryID     *int      `db:"category_id" json:"categoryId,omitempty"`
	Name           string    `db:"name" json:"name"`
	Brand          string    `db:"brand" json:"brand"`
	Model          string    `db:"model" json:"model"`
	Barcode        *string   `db:"barcode" json:"barcode,omitempty"`
	SKU            *string   `db:"sku" json:"sku,omitempty"`
	Description    *string   `db:"description" json:"description,omitempty"`
	CostPrice      int64     `db:"cost_price" json:"costPrice"`
	SellingPrice   int64     `db:"selling_price" json:"sellingPrice"`
	WarrantyMonths int       `db:"warranty_months" json:"warrantyMonths"`
	TrackIMEI      bool      `db:"track_imei" json:"trackImei"`
	IsActive       bool      `db:"is_active" json:"isActive"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`

	// Populated by stock queries
	CategoryName   *string `db:"category_name" json:"categoryName,omitempty"`
	AvailableCount int     `db:"available_count" json:"availableCount"`
}

// ProductStock is the read-side stock level of one product.
type ProductStock struct {
	ProductID      int    `db:"product_id" json:"productId"`
	Name           string `db:"name" json:"name"`
	Brand          string `db:"brand" json:"brand"`
	Model          string `db:"model" json:"model"`
	CategoryName   string `db:"category_name" json:"categoryName"`
	SellingPrice   int64  `db:"selling_price" json:"sellingPrice"`
	AvailableCount int    `db:"available_count" json:"availableCount"`
	StockValue     int64  `db:"stock_value" json:"stockValue"`
	IsLowStock     bool   `db:"-" json:"isLowStock"`
	Urgency        string `db:"-" json:"urgency,omitempty"`
}
