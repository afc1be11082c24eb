package cart

import (
	"github.com/google/uuid"

	"github.com/example/stokai/internal/models"
)

// Estimated VAT applied while authoritative totals are in flight.
const previewVATRate = 0.20

// SameLine reports whether a cart item is the line identified by product and
// optional variant: the product must match and either both sides have no
// variant or both variants match by id.
func SameLine(item models.CartItem, productID uuid.UUID, variantID *uuid.UUID) bool {
	if item.Product == nil || item.Product.ID != productID {
		return false
	}
	if variantID == nil {
		return item.ProductVariant == nil
	}
	return item.ProductVariant != nil && item.ProductVariant.ID == *variantID
}

// FindLine returns the existing line for (product, variant), or nil. Callers
// use it to decide between a quantity merge and a fresh add.
func FindLine(items []models.CartItem, productID uuid.UUID, variantID *uuid.UUID) *models.CartItem {
	for i := range items {
		if SameLine(items[i], productID, variantID) {
			return &items[i]
		}
	}
	return nil
}

// Contains reports whether the cart already holds a line for (product,
// variant).
func Contains(items []models.CartItem, productID uuid.UUID, variantID *uuid.UUID) bool {
	return FindLine(items, productID, variantID) != nil
}

// SubtotalSum adds up the backend-sourced line subtotals. Advisory only; the
// backend's totals stay authoritative.
func SubtotalSum(items []models.CartItem) float64 {
	var total float64
	for i := range items {
		total += items[i].SubTotal
	}
	return total
}

// PreviewTotals estimates totals from the line subtotals with a flat VAT
// rate. The estimate is discarded as soon as authoritative totals arrive.
func PreviewTotals(items []models.CartItem) models.CartTotals {
	sub := SubtotalSum(items)
	tax := sub * previewVATRate
	return models.CartTotals{
		SubTotal:     sub,
		TotalTax:     tax,
		TotalPayable: sub + tax,
	}
}
