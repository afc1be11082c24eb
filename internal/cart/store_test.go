package cart_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/example/stokai/internal/api"
	"github.com/example/stokai/internal/cart"
	"github.com/example/stokai/internal/models"
	"github.com/example/stokai/internal/storage"
)

func newCartStore(t *testing.T, baseURL string) *cart.Store {
	t.Helper()

	st, err := storage.New(t.TempDir())
	require.NoError(t, err)

	client, err := api.New(baseURL, 5*time.Second, st)
	require.NoError(t, err)

	return cart.NewStore(cart.NewService(client), st)
}

func writeSnapshot(w http.ResponseWriter, snapshot models.CartSnapshot) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"message": "cart",
		"data":    snapshot,
	})
}

func snapshotOf(items ...models.CartItem) models.CartSnapshot {
	var sub float64
	for _, item := range items {
		sub += item.SubTotal
	}
	return models.CartSnapshot{
		Items: items,
		Totals: models.CartTotals{
			SubTotal:     sub,
			TotalTax:     sub * 0.2,
			TotalPayable: sub * 1.2,
		},
	}
}

func TestFetchIsIdempotent(t *testing.T) {
	t.Parallel()

	itemID := uuid.New()
	productID := uuid.New()
	snapshot := snapshotOf(models.CartItem{
		BaseModel: models.BaseModel{ID: itemID},
		Product:   &models.Product{BaseModel: models.BaseModel{ID: productID}, Name: "Ceylon Black Tea"},
		Quantity:  2,
		UnitPrice: 6.50,
		SubTotal:  13.00,
	})

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/user/cart/list/1", r.URL.Path)
		writeSnapshot(w, snapshot)
	}))
	t.Cleanup(ts.Close)

	store := newCartStore(t, ts.URL)

	require.NoError(t, store.Fetch(context.Background(), 1))
	first := store.State()

	require.NoError(t, store.Fetch(context.Background(), 1))
	second := store.State()

	require.Equal(t, first.Items(), second.Items())
	require.Equal(t, first.Snapshot.Totals, second.Snapshot.Totals)
	require.Len(t, second.Items(), 1)
	require.Equal(t, itemID, second.Items()[0].ID)
}

func TestAddToCartCreatesNewLine(t *testing.T) {
	t.Parallel()

	productID := uuid.New()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/user/cart/addToCart", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, productID.String(), body["productId"])
		require.EqualValues(t, 2, body["quantity"])
		require.NotContains(t, body, "productVariantId")

		writeSnapshot(w, snapshotOf(models.CartItem{
			BaseModel: models.BaseModel{ID: uuid.New()},
			Product:   &models.Product{BaseModel: models.BaseModel{ID: productID}},
			Quantity:  2,
			SubTotal:  13.00,
		}))
	}))
	t.Cleanup(ts.Close)

	store := newCartStore(t, ts.URL)
	require.NoError(t, store.AddToCart(context.Background(), productID, nil, 2))

	require.Len(t, store.State().Items(), 1)
	require.Equal(t, 2, store.State().Items()[0].Quantity)
}

func TestAddToCartMergesIntoExistingLine(t *testing.T) {
	t.Parallel()

	itemID := uuid.New()
	productID := uuid.New()

	existing := models.CartItem{
		BaseModel: models.BaseModel{ID: itemID},
		Product:   &models.Product{BaseModel: models.BaseModel{ID: productID}},
		Quantity:  2,
		SubTotal:  13.00,
	}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/user/cart/list/1":
			writeSnapshot(w, snapshotOf(existing))
		case "/user/cart/updateToCart":
			// The merge arrives as an update with the summed quantity,
			// never as a second add.
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, itemID.String(), body["itemId"])
			require.EqualValues(t, 3, body["quantity"])

			merged := existing
			merged.Quantity = 3
			merged.SubTotal = 19.50
			writeSnapshot(w, snapshotOf(merged))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	t.Cleanup(ts.Close)

	store := newCartStore(t, ts.URL)
	require.NoError(t, store.Fetch(context.Background(), 1))
	require.NoError(t, store.AddToCart(context.Background(), productID, nil, 1))

	items := store.State().Items()
	require.Len(t, items, 1, "at most one line per (product, variant)")
	require.Equal(t, 3, items[0].Quantity)
}

func TestAddToCartTreatsDifferentVariantAsNewLine(t *testing.T) {
	t.Parallel()

	productID := uuid.New()
	variantID := uuid.New()

	existing := models.CartItem{
		BaseModel: models.BaseModel{ID: uuid.New()},
		Product:   &models.Product{BaseModel: models.BaseModel{ID: productID}},
		Quantity:  1,
		SubTotal:  9.90,
	}

	var addCalled bool
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/user/cart/list/1":
			writeSnapshot(w, snapshotOf(existing))
		case "/user/cart/addToCart":
			addCalled = true
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, variantID.String(), body["productVariantId"])

			variantLine := models.CartItem{
				BaseModel:      models.BaseModel{ID: uuid.New()},
				Product:        &models.Product{BaseModel: models.BaseModel{ID: productID}},
				ProductVariant: &models.ProductVariant{BaseModel: models.BaseModel{ID: variantID}},
				Quantity:       1,
				SubTotal:       17.40,
			}
			writeSnapshot(w, snapshotOf(existing, variantLine))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	t.Cleanup(ts.Close)

	store := newCartStore(t, ts.URL)
	require.NoError(t, store.Fetch(context.Background(), 1))
	require.NoError(t, store.AddToCart(context.Background(), productID, &variantID, 1))

	require.True(t, addCalled, "a new variant is a new line, not a merge")
	require.Len(t, store.State().Items(), 2)
}

func TestRemoveItemSendsQuantityZero(t *testing.T) {
	t.Parallel()

	itemID := uuid.New()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/user/cart/updateToCart", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, itemID.String(), body["itemId"])
		require.EqualValues(t, 0, body["quantity"])

		writeSnapshot(w, snapshotOf())
	}))
	t.Cleanup(ts.Close)

	store := newCartStore(t, ts.URL)
	require.NoError(t, store.RemoveItem(context.Background(), itemID))
	require.Empty(t, store.State().Items(), "the line is absent after the authoritative snapshot")
}

func TestUpdateItemRejectsZeroQuantity(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for a zero-quantity update")
	}))
	t.Cleanup(ts.Close)

	store := newCartStore(t, ts.URL)
	err := store.UpdateItem(context.Background(), cart.UpdateRequest{ItemID: uuid.New(), Quantity: 0})

	var ve *api.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, ve.Message, store.State().Err)
}

func TestValidateCouponIsASideChannel(t *testing.T) {
	t.Parallel()

	snapshot := snapshotOf(models.CartItem{
		BaseModel: models.BaseModel{ID: uuid.New()},
		Product:   &models.Product{BaseModel: models.BaseModel{ID: uuid.New()}},
		Quantity:  1,
		SubTotal:  30,
	})

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/user/cart/list/1":
			writeSnapshot(w, snapshot)
		case "/user/coupon/check_valid_coupon":
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"message": "coupon is valid",
				"data": models.CouponValidation{
					Valid:         true,
					Code:          "WELCOME10",
					DiscountType:  "percent",
					DiscountValue: 10,
					Message:       "coupon is valid",
				},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	t.Cleanup(ts.Close)

	store := newCartStore(t, ts.URL)
	require.NoError(t, store.Fetch(context.Background(), 1))
	totalsBefore, _ := store.Totals()

	require.NoError(t, store.ValidateCoupon(context.Background(), "WELCOME10"))

	state := store.State()
	require.NotNil(t, state.CouponValidation)
	require.True(t, state.CouponValidation.Valid)
	require.Empty(t, state.AppliedCoupon, "validation does not apply the coupon")

	totalsAfter, _ := store.Totals()
	require.Equal(t, totalsBefore, totalsAfter, "validation must not alter totals")

	store.ApplyCoupon("WELCOME10")
	require.Equal(t, "WELCOME10", store.State().AppliedCoupon)

	store.ClearCouponValidation()
	require.Nil(t, store.State().CouponValidation)
	require.Empty(t, store.State().AppliedCoupon)
}

func TestTotalsPreviewYieldsToAuthoritative(t *testing.T) {
	t.Parallel()

	// The backend deliberately reports totals a local VAT estimate would
	// not produce.
	authoritative := models.CartSnapshot{
		Items: []models.CartItem{{
			BaseModel: models.BaseModel{ID: uuid.New()},
			Product:   &models.Product{BaseModel: models.BaseModel{ID: uuid.New()}},
			Quantity:  1,
			SubTotal:  100,
		}},
		Totals: models.CartTotals{SubTotal: 100, TotalTax: 0, TotalPayable: 100},
	}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeSnapshot(w, authoritative)
	}))
	t.Cleanup(ts.Close)

	store := newCartStore(t, ts.URL)

	_, isAuthoritative := store.Totals()
	require.False(t, isAuthoritative, "no snapshot yet, only an estimate")

	require.NoError(t, store.Fetch(context.Background(), 1))

	totals, isAuthoritative := store.Totals()
	require.True(t, isAuthoritative)
	require.Equal(t, authoritative.Totals, totals, "the estimate is discarded once real totals arrive")
}

func TestFailedOperationKeepsPriorState(t *testing.T) {
	t.Parallel()

	snapshot := snapshotOf(models.CartItem{
		BaseModel: models.BaseModel{ID: uuid.New()},
		Product:   &models.Product{BaseModel: models.BaseModel{ID: uuid.New()}},
		Quantity:  1,
		SubTotal:  5,
	})

	var fail bool
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"success":false,"message":"backend down"}`))
			return
		}
		writeSnapshot(w, snapshot)
	}))
	t.Cleanup(ts.Close)

	store := newCartStore(t, ts.URL)
	require.NoError(t, store.Fetch(context.Background(), 1))

	fail = true
	err := store.Fetch(context.Background(), 1)
	require.Error(t, err)

	state := store.State()
	require.Equal(t, "backend down", state.Err)
	require.Len(t, state.Items(), 1, "a failed operation leaves prior state untouched")
}

// Two rapid quantity updates on the same line race; the cart reflects the
// response that lands last, not the request dispatched last.
func TestConcurrentUpdatesLastCompletedWins(t *testing.T) {
	t.Parallel()

	itemID := uuid.New()
	productID := uuid.New()

	lineWithQty := func(qty int) models.CartItem {
		return models.CartItem{
			BaseModel: models.BaseModel{ID: itemID},
			Product:   &models.Product{BaseModel: models.BaseModel{ID: productID}},
			Quantity:  qty,
			UnitPrice: 6.50,
			SubTotal:  6.50 * float64(qty),
		}
	}

	slowArrived := make(chan struct{})
	release := make(chan struct{})

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Quantity int `json:"quantity"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		if body.Quantity == 2 {
			close(slowArrived)
			<-release
		}
		writeSnapshot(w, snapshotOf(lineWithQty(body.Quantity)))
	}))
	t.Cleanup(ts.Close)

	store := newCartStore(t, ts.URL)

	done := make(chan error, 1)
	go func() {
		done <- store.UpdateItem(context.Background(), cart.UpdateRequest{ItemID: itemID, Quantity: 2})
	}()

	// The qty=2 request is in flight and stalled; the qty=3 request
	// dispatched later completes first.
	<-slowArrived
	require.NoError(t, store.UpdateItem(context.Background(), cart.UpdateRequest{ItemID: itemID, Quantity: 3}))
	require.Equal(t, 3, store.State().Items()[0].Quantity)

	close(release)
	require.NoError(t, <-done)

	require.Equal(t, 2, store.State().Items()[0].Quantity,
		"the later-completing qty=2 response wins over the later-dispatched qty=3")
}
