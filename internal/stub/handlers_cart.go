package stub

import (
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/stokai/internal/models"
)

const (
	cartPageSize = 20
	vatRate      = 0.20
)

// CartHandler bundles dependencies for the cart and coupon endpoints.
type CartHandler struct {
	db *gorm.DB
}

// NewCartHandler constructs a CartHandler.
func NewCartHandler(db *gorm.DB) *CartHandler {
	return &CartHandler{db: db}
}

// List returns one page of the user's cart plus totals over the whole cart.
func (h *CartHandler) List(c *fiber.Ctx) error {
	userID, ok := CurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	page, err := strconv.Atoi(c.Params("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	cart, err := h.loadCart(userID)
	if err != nil {
		return err
	}

	return h.respondSnapshot(c, cart, page, "cart")
}

type addToCartRequest struct {
	ProductID        uuid.UUID  `json:"productId"`
	Quantity         int        `json:"quantity"`
	ProductVariantID *uuid.UUID `json:"productVariantId"`
}

// Add creates a cart line, merging quantity when the (product, variant) line
// already exists so a cart never holds duplicate lines.
func (h *CartHandler) Add(c *fiber.Ctx) error {
	userID, ok := CurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req addToCartRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Quantity < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "quantity must be at least 1")
	}

	var product models.Product
	if err := h.db.Preload("Variants").First(&product, "id = ? AND is_active = true", req.ProductID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusBadRequest, "product not found")
		}
		return err
	}

	unitPrice := product.Price
	if req.ProductVariantID != nil {
		variant := findVariant(product.Variants, *req.ProductVariantID)
		if variant == nil {
			return fiber.NewError(fiber.StatusBadRequest, "product variant not found")
		}
		unitPrice = variant.Price
	}

	cart, err := h.loadCart(userID)
	if err != nil {
		return err
	}

	if line := findCartLine(cart.Items, req.ProductID, req.ProductVariantID); line != nil {
		line.Quantity += req.Quantity
		line.SubTotal = round2(float64(line.Quantity) * line.UnitPrice)
		if err := h.db.Save(line).Error; err != nil {
			return err
		}
	} else {
		item := models.CartItem{
			CartID:           cart.ID,
			ProductID:        req.ProductID,
			ProductVariantID: req.ProductVariantID,
			Quantity:         req.Quantity,
			UnitPrice:        unitPrice,
			SubTotal:         round2(float64(req.Quantity) * unitPrice),
		}
		if err := h.db.Create(&item).Error; err != nil {
			return err
		}
	}

	cart, err = h.loadCart(userID)
	if err != nil {
		return err
	}
	return h.respondSnapshot(c, cart, 1, "item added")
}

type updateCartRequest struct {
	ItemID           uuid.UUID  `json:"itemId"`
	Quantity         int        `json:"quantity"`
	ProductVariantID *uuid.UUID `json:"productVariantId"`
}

// Update changes a line's quantity. Quantity zero deletes the line.
func (h *CartHandler) Update(c *fiber.Ctx) error {
	userID, ok := CurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req updateCartRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Quantity < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "quantity cannot be negative")
	}

	cart, err := h.loadCart(userID)
	if err != nil {
		return err
	}

	var item models.CartItem
	if err := h.db.First(&item, "id = ? AND cart_id = ?", req.ItemID, cart.ID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusBadRequest, "cart item not found")
		}
		return err
	}

	if req.Quantity == 0 {
		if err := h.db.Delete(&item).Error; err != nil {
			return err
		}
	} else {
		item.Quantity = req.Quantity
		item.SubTotal = round2(float64(req.Quantity) * item.UnitPrice)
		if err := h.db.Save(&item).Error; err != nil {
			return err
		}
	}

	cart, err = h.loadCart(userID)
	if err != nil {
		return err
	}
	return h.respondSnapshot(c, cart, 1, "cart updated")
}

type checkCouponRequest struct {
	Code string `json:"code"`
}

// CheckCoupon validates a code against the user's current cart subtotal. An
// unknown or inapplicable code is a valid=false outcome, not an error.
func (h *CartHandler) CheckCoupon(c *fiber.Ctx) error {
	userID, ok := CurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req checkCouponRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Code == "" {
		return fiber.NewError(fiber.StatusBadRequest, "coupon code is required")
	}

	validation := models.CouponValidation{Code: req.Code}

	var coupon models.Coupon
	err := h.db.Where("code = ? AND is_active = true", req.Code).First(&coupon).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		validation.Message = "coupon code is not valid"
	case err != nil:
		return err
	default:
		cart, err := h.loadCart(userID)
		if err != nil {
			return err
		}
		subTotal := cartSubtotal(cart.Items)
		if coupon.MinOrderTotal > 0 && subTotal < coupon.MinOrderTotal {
			validation.Message = "order total is below the coupon minimum"
		} else {
			validation.Valid = true
			validation.DiscountType = coupon.DiscountType
			validation.DiscountValue = coupon.DiscountValue
			validation.Message = "coupon is valid"
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": validation.Message,
		"data":    validation,
	})
}

// loadCart fetches the user's cart with lines and references, creating the
// cart row on first use.
func (h *CartHandler) loadCart(userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := h.db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		Preload("Items.Product").
		Preload("Items.ProductVariant").
		Where("user_id = ?", userID).
		First(&cart).Error
	if err == gorm.ErrRecordNotFound {
		cart = models.Cart{UserID: userID}
		if err := h.db.Create(&cart).Error; err != nil {
			return nil, err
		}
		return &cart, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (h *CartHandler) respondSnapshot(c *fiber.Ctx, cart *models.Cart, page int, message string) error {
	items := pageOf(cart.Items, page)
	if items == nil {
		items = []models.CartItem{}
	}

	subTotal := cartSubtotal(cart.Items)
	tax := round2(subTotal * vatRate)
	totals := models.CartTotals{
		SubTotal:     round2(subTotal),
		TotalTax:     tax,
		TotalPayable: round2(subTotal + tax),
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": message,
		"data": models.CartSnapshot{
			Items:  items,
			Totals: totals,
		},
	})
}

func pageOf(items []models.CartItem, page int) []models.CartItem {
	start := (page - 1) * cartPageSize
	if start >= len(items) {
		return nil
	}
	end := start + cartPageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func findVariant(variants []models.ProductVariant, id uuid.UUID) *models.ProductVariant {
	for i := range variants {
		if variants[i].ID == id {
			return &variants[i]
		}
	}
	return nil
}

func findCartLine(items []models.CartItem, productID uuid.UUID, variantID *uuid.UUID) *models.CartItem {
	for i := range items {
		item := &items[i]
		if item.ProductID != productID {
			continue
		}
		if variantID == nil {
			if item.ProductVariantID == nil {
				return item
			}
			continue
		}
		if item.ProductVariantID != nil && *item.ProductVariantID == *variantID {
			return item
		}
	}
	return nil
}

func cartSubtotal(items []models.CartItem) float64 {
	var total float64
	for i := range items {
		total += items[i].SubTotal
	}
	return total
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
