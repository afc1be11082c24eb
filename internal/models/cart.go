package models

import (
	"github.com/google/uuid"
)

// Product carries the display fields a cart line references. The cart never
// duplicates catalog data beyond these.
type Product struct {
	BaseModel
	Name     string           `json:"name"`
	Price    float64          `json:"price"`
	ImageURL string           `json:"image_url"`
	IsActive bool             `json:"is_active"`
	Variants []ProductVariant `json:"variants,omitempty"`
}

// ProductVariant is a purchasable variation of a product.
type ProductVariant struct {
	BaseModel
	ProductID uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	Label     string    `json:"label"`
	Price     float64   `json:"price"`
}

// Cart is one user's persisted cart.
type Cart struct {
	BaseModel
	UserID uuid.UUID  `gorm:"type:uuid;uniqueIndex" json:"user_id"`
	Items  []CartItem `json:"items,omitempty"`
}

// CartItem is a single cart line keyed by product plus optional variant.
// Prices come from the backend; the client never derives them.
type CartItem struct {
	BaseModel
	CartID           uuid.UUID       `gorm:"type:uuid;index" json:"-"`
	ProductID        uuid.UUID       `gorm:"type:uuid" json:"-"`
	Product          *Product        `json:"product"`
	ProductVariantID *uuid.UUID      `gorm:"type:uuid" json:"-"`
	ProductVariant   *ProductVariant `json:"productVariant,omitempty"`
	Quantity         int             `json:"quantity"`
	UnitPrice        float64         `json:"unitPrice"`
	SubTotal         float64         `json:"subTotal"`
}

// CartTotals is the authoritative set of totals computed by the backend.
type CartTotals struct {
	SubTotal     float64 `json:"subTotal"`
	TotalTax     float64 `json:"totalTax"`
	TotalPayable float64 `json:"totalPayable"`
}

// CartSnapshot is the wire shape every cart endpoint returns. Local state is
// replaced with it wholesale.
type CartSnapshot struct {
	Items  []CartItem `json:"items"`
	Totals CartTotals `json:"totals"`
}

// Coupon is a discount code known to the backend.
type Coupon struct {
	BaseModel
	Code          string  `gorm:"uniqueIndex" json:"code"`
	DiscountType  string  `json:"discount_type"`
	DiscountValue float64 `json:"discount_value"`
	MinOrderTotal float64 `json:"min_order_total"`
	IsActive      bool    `json:"is_active"`
}

// CouponValidation is the outcome of check_valid_coupon. It does not alter
// cart totals; applying the coupon is a separate, explicit step.
type CouponValidation struct {
	Valid         bool    `json:"valid"`
	Code          string  `json:"code"`
	DiscountType  string  `json:"discountType"`
	DiscountValue float64 `json:"discountValue"`
	Message       string  `json:"message"`
}
