package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/example/stokai/internal/api"
	"github.com/example/stokai/internal/models"
)

// Service issues the cart calls against the backend. Every mutation returns
// the authoritative cart snapshot.
type Service struct {
	client *api.Client
}

// NewService constructs a Service on top of the shared transport.
func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// AddRequest creates a new cart line.
type AddRequest struct {
	ProductID        uuid.UUID  `json:"productId"`
	Quantity         int        `json:"quantity"`
	ProductVariantID *uuid.UUID `json:"productVariantId,omitempty"`
}

// UpdateRequest changes the quantity of an existing line. Quantity zero is
// the backend's deletion signal and is reserved for Remove.
type UpdateRequest struct {
	ItemID           uuid.UUID  `json:"itemId"`
	Quantity         int        `json:"quantity"`
	ProductVariantID *uuid.UUID `json:"productVariantId,omitempty"`
}

type couponRequest struct {
	Code string `json:"code"`
}

// Fetch retrieves the authoritative cart for the given page.
func (s *Service) Fetch(ctx context.Context, page int) (*models.CartSnapshot, error) {
	if page < 1 {
		page = 1
	}

	var snapshot models.CartSnapshot
	if err := s.client.Get(ctx, fmt.Sprintf("%s/%d", api.PathCartList, page), &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// Add creates a new line. Callers must have resolved line identity first; an
// existing (product, variant) line takes Update instead.
func (s *Service) Add(ctx context.Context, req AddRequest) (*models.CartSnapshot, error) {
	if req.Quantity < 1 {
		return nil, &api.ValidationError{Message: "quantity must be at least 1"}
	}

	var snapshot models.CartSnapshot
	if err := s.client.Post(ctx, api.PathAddToCart, req, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// Update changes an existing line's quantity.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (*models.CartSnapshot, error) {
	if req.Quantity < 1 {
		return nil, &api.ValidationError{Message: "quantity must be at least 1; use remove to delete a line"}
	}
	return s.update(ctx, req)
}

// Remove deletes a line by sending a quantity-zero update.
func (s *Service) Remove(ctx context.Context, itemID uuid.UUID) (*models.CartSnapshot, error) {
	return s.update(ctx, UpdateRequest{ItemID: itemID, Quantity: 0})
}

func (s *Service) update(ctx context.Context, req UpdateRequest) (*models.CartSnapshot, error) {
	var snapshot models.CartSnapshot
	if err := s.client.Post(ctx, api.PathUpdateCart, req, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// ValidateCoupon checks a code without touching cart totals.
func (s *Service) ValidateCoupon(ctx context.Context, code string) (*models.CouponValidation, error) {
	if code == "" {
		return nil, &api.ValidationError{Message: "coupon code is required"}
	}

	var result models.CouponValidation
	if err := s.client.Post(ctx, api.PathCheckCoupon, couponRequest{Code: code}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
