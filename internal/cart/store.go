package cart

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/example/stokai/internal/api"
	"github.com/example/stokai/internal/models"
	"github.com/example/stokai/internal/storage"
)

const stateKey = "cart"

// State is the cart slice. The snapshot mirrors the backend and is replaced
// wholesale on every response; the client never merges diffs.
type State struct {
	Snapshot         *models.CartSnapshot     `json:"cart,omitempty"`
	CouponValidation *models.CouponValidation `json:"coupon_validation,omitempty"`
	AppliedCoupon    string                   `json:"applied_coupon,omitempty"`
	Err              string                   `json:"error,omitempty"`
}

// Items returns the current line sequence, empty when no snapshot is held.
func (s State) Items() []models.CartItem {
	if s.Snapshot == nil {
		return nil
	}
	return s.Snapshot.Items
}

// Store owns the cart slice. Operations run the network call first, then
// replace state with whichever response lands; two racing updates resolve
// last-completed-wins.
type Store struct {
	svc     *Service
	storage *storage.Store

	mu    sync.RWMutex
	state State
}

// NewStore constructs a cart store. Call Initialize to rehydrate a persisted
// slice.
func NewStore(svc *Service, st *storage.Store) *Store {
	return &Store{svc: svc, storage: st}
}

// State returns a copy of the current cart slice.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Initialize rehydrates the persisted cart slice, if any.
func (s *Store) Initialize() {
	var persisted State
	if !s.storage.LoadJSON(stateKey, &persisted) {
		return
	}
	persisted.Err = ""

	s.mu.Lock()
	s.state = persisted
	s.mu.Unlock()
}

// Fetch retrieves the authoritative cart and replaces local state with it.
func (s *Store) Fetch(ctx context.Context, page int) error {
	snapshot, err := s.svc.Fetch(ctx, page)
	if err != nil {
		return s.fail(err)
	}
	s.replace(snapshot)
	return nil
}

// AddToCart is the facade behind a UI "add to cart" click: it merges the
// quantity into an existing (product, variant) line via an update, or creates
// a new line.
func (s *Store) AddToCart(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID, quantity int) error {
	if quantity < 1 {
		return s.fail(&api.ValidationError{Message: "quantity must be at least 1"})
	}

	s.mu.RLock()
	existing := FindLine(s.state.Items(), productID, variantID)
	var merged UpdateRequest
	if existing != nil {
		merged = UpdateRequest{
			ItemID:           existing.ID,
			Quantity:         existing.Quantity + quantity,
			ProductVariantID: variantID,
		}
	}
	s.mu.RUnlock()

	if existing != nil {
		return s.UpdateItem(ctx, merged)
	}
	return s.Add(ctx, AddRequest{ProductID: productID, Quantity: quantity, ProductVariantID: variantID})
}

// Add dispatches a remote add for a line already known to be new.
func (s *Store) Add(ctx context.Context, req AddRequest) error {
	snapshot, err := s.svc.Add(ctx, req)
	if err != nil {
		return s.fail(err)
	}
	s.replace(snapshot)
	return nil
}

// UpdateItem dispatches a remote quantity update for an existing line.
func (s *Store) UpdateItem(ctx context.Context, req UpdateRequest) error {
	snapshot, err := s.svc.Update(ctx, req)
	if err != nil {
		return s.fail(err)
	}
	s.replace(snapshot)
	return nil
}

// RemoveItem deletes a line; on the wire this is a quantity-zero update.
func (s *Store) RemoveItem(ctx context.Context, itemID uuid.UUID) error {
	snapshot, err := s.svc.Remove(ctx, itemID)
	if err != nil {
		return s.fail(err)
	}
	s.replace(snapshot)
	return nil
}

// ValidateCoupon stores the validation outcome as a side channel. Totals and
// the applied coupon stay untouched until ApplyCoupon.
func (s *Store) ValidateCoupon(ctx context.Context, code string) error {
	result, err := s.svc.ValidateCoupon(ctx, code)
	if err != nil {
		return s.fail(err)
	}

	s.mu.Lock()
	s.state.CouponValidation = result
	s.state.Err = ""
	s.persistLocked()
	s.mu.Unlock()
	return nil
}

// ApplyCoupon marks a code as the one to submit at checkout. Validation does
// not imply application.
func (s *Store) ApplyCoupon(code string) {
	s.mu.Lock()
	s.state.AppliedCoupon = code
	s.persistLocked()
	s.mu.Unlock()
}

// ClearCouponValidation drops the validation side channel and any applied
// code.
func (s *Store) ClearCouponValidation() {
	s.mu.Lock()
	s.state.CouponValidation = nil
	s.state.AppliedCoupon = ""
	s.persistLocked()
	s.mu.Unlock()
}

// Clear tears the cart slice down.
func (s *Store) Clear() {
	s.mu.Lock()
	s.state = State{}
	s.persistLocked()
	s.mu.Unlock()
}

// ClearError drops the last operation's failure message.
func (s *Store) ClearError() {
	s.mu.Lock()
	s.state.Err = ""
	s.persistLocked()
	s.mu.Unlock()
}

// Totals returns the authoritative totals when a snapshot is held, or a VAT
// preview over the known lines otherwise. The second return reports whether
// the totals are authoritative.
func (s *Store) Totals() (models.CartTotals, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state.Snapshot != nil {
		return s.state.Snapshot.Totals, true
	}
	return PreviewTotals(s.state.Items()), false
}

// ItemCount returns the number of lines currently mirrored.
func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state.Items())
}

func (s *Store) replace(snapshot *models.CartSnapshot) {
	s.mu.Lock()
	s.state.Snapshot = snapshot
	s.state.Err = ""
	s.persistLocked()
	s.mu.Unlock()
}

func (s *Store) fail(err error) error {
	if api.IsUnauthorized(err) {
		// The forced logout preempts any local error.
		return err
	}

	s.mu.Lock()
	s.state.Err = err.Error()
	s.persistLocked()
	s.mu.Unlock()
	return err
}

func (s *Store) persistLocked() {
	if err := s.storage.SaveJSON(stateKey, s.state); err != nil {
		log.Printf("[Cart] persist state: %v", err)
	}
}
