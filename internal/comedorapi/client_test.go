package comedorapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"comedores/internal/cart"
	"comedores/internal/checkout"
	"comedores/internal/promo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "ana@uni.edu", zap.NewNop().Sugar())
}

func snapshotWith(items ...cart.Item) cart.Snapshot {
	s := cart.NewStore()
	s.Restore(items)
	return s.Snapshot()
}

func TestFetchPromotionsFiltersInvalidRecords(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/promotions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":1,"name":"10%","type":"PERCENTAGE_DISCOUNT","percentage":10},
			{"id":2,"name":"sin tipo"},
			{"id":3,"name":"tipo raro","type":"MYSTERY"},
			{"id":4,"name":"2+1","type":"BUY_X_GET_Y","requiredCategory":"SANDWICH","freeCategory":"BEBIDA","requiredQuantity":2,"freeQuantityGranted":1}
		]`))
	})

	catalog, err := c.FetchPromotions(context.Background())

	require.NoError(t, err)
	require.Len(t, catalog, 2, "invalid records are dropped, valid ones kept")
	assert.Equal(t, promo.PercentageDiscount, catalog[0].Kind)
	assert.Equal(t, promo.BuyXGetY, catalog[1].Kind)
}

func TestFetchPromotionsServerError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.FetchPromotions(context.Background())
	assert.Error(t, err)
}

func TestSubmitOrderSuccess(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/orders", r.URL.Path)

		var req struct {
			Email string      `json:"email"`
			Items []cart.Item `json:"items"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ana@uni.edu", req.Email)
		require.Len(t, req.Items, 1)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"success":     true,
			"orderNumber": "COM-TEST-0001",
			"pricedCart":  promo.PricedCart{SubtotalCents: 1000, TotalCents: 900, DiscountCents: 100},
		})
	})

	snap := snapshotWith(cart.Item{Type: cart.ItemProduct, ID: 1, Name: "Sandwich", UnitPriceCents: 500, Quantity: 2})
	conf, err := c.SubmitOrder(context.Background(), snap)

	require.NoError(t, err)
	assert.Equal(t, "COM-TEST-0001", conf.OrderNumber)
	assert.Equal(t, int64(900), conf.Priced.TotalCents)
}

func TestSubmitOrderStockConflict(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]any{
			"error":       "insufficient_stock",
			"productName": "Flan casero",
			"requested":   6,
			"available":   2,
		})
	})

	snap := snapshotWith(cart.Item{Type: cart.ItemProduct, ID: 5, Name: "Flan casero", UnitPriceCents: 700, Quantity: 6})
	_, err := c.SubmitOrder(context.Background(), snap)

	var conflict *checkout.StockConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "Flan casero", conflict.ProductName)
	assert.Equal(t, 6, conflict.Requested)
	assert.Equal(t, 2, conflict.Available)
}

func TestSubmitOrderServerErrorIsSubmissionError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	snap := snapshotWith(cart.Item{Type: cart.ItemProduct, ID: 1, Name: "Sandwich", UnitPriceCents: 500, Quantity: 1})
	_, err := c.SubmitOrder(context.Background(), snap)

	var sub *checkout.SubmissionError
	require.ErrorAs(t, err, &sub)
}

func TestSubmitOrderMalformedSuccessBody(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"success": true}`))
	})

	snap := snapshotWith(cart.Item{Type: cart.ItemProduct, ID: 1, Name: "Sandwich", UnitPriceCents: 500, Quantity: 1})
	_, err := c.SubmitOrder(context.Background(), snap)

	var sub *checkout.SubmissionError
	require.ErrorAs(t, err, &sub, "success without an order number is not a confirmation")
}
