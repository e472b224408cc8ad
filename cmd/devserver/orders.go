package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"comedores/internal/cart"
	"comedores/internal/promo"
)

type createOrderRequest struct {
	Email string      `json:"email,omitempty" validate:"omitempty,email"`
	Items []cart.Item `json:"items" validate:"required,min=1,dive"`
}

func (app *application) getPromotionsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, app.catalog)
}

func (app *application) createOrderHandler(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := readJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := app.validate.Struct(req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	for _, it := range req.Items {
		if it.Quantity < 1 || it.UnitPriceCents < 0 {
			writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid line for %q", it.Name))
			return
		}
	}

	if conflict := app.menu.reserve(req.Items); conflict != nil {
		app.logger.Infow("rejecting order on stock",
			"product", conflict.ProductName, "requested", conflict.Requested, "available", conflict.Available)
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":       "insufficient_stock",
			"productName": conflict.ProductName,
			"requested":   conflict.Requested,
			"available":   conflict.Available,
		})
		return
	}

	// The server's pricing is authoritative: recompute from the submitted
	// lines against the live catalog, never trust client math.
	snap := cart.Snapshot{Items: req.Items}
	for _, it := range req.Items {
		snap.TotalPriceCents += it.UnitPriceCents * int64(it.Quantity)
		snap.ItemCount += it.Quantity
	}
	priced := promo.Price(snap, app.catalog)

	orderNumber := app.ordNum.Generate(req.Email)
	app.logger.Infow("order created", "order", orderNumber, "identity", req.Email, "total_cents", priced.TotalCents)
	app.walkOrder(req.Email, orderNumber)

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":     true,
		"orderNumber": orderNumber,
		"pricedCart":  priced,
	})
}

// streamOrderEventsHandler is the SSE endpoint. One subscription per request;
// the subscription dies with the request context, so navigating away on the
// client side releases the connection here too.
func (app *application) streamOrderEventsHandler(w http.ResponseWriter, r *http.Request) {
	identity := r.URL.Query().Get("email")
	if identity == "" {
		writeJSONError(w, http.StatusBadRequest, "email query parameter is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSONError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := app.hub.subscribe(identity)
	defer app.hub.unsubscribe(identity, ch)
	app.logger.Infow("stream subscriber attached", "identity", identity)

	for {
		select {
		case <-r.Context().Done():
			app.logger.Infow("stream subscriber detached", "identity", identity)
			return
		case ev := <-ch:
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: order-status\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}
