package checkout

import (
	"context"

	"comedores/internal/cart"
	"comedores/internal/promo"

	"go.uber.org/zap"
)

// Confirmation is the backend's answer to a successful submission: the order
// number to track on the status stream plus the authoritative pricing the
// server computed (which supersedes any preview shown before confirm).
type Confirmation struct {
	OrderNumber string           `json:"orderNumber"`
	Priced      promo.PricedCart `json:"pricedCart"`
}

// Submitter is the backend call that creates an order from a cart snapshot.
// It returns *StockConflictError or *SubmissionError on failure.
type Submitter interface {
	SubmitOrder(ctx context.Context, snap cart.Snapshot) (*Confirmation, error)
}

// Coordinator drives the confirm step: snapshot the cart, submit it, and
// clear the cart if and only if the backend accepted the order. The snapshot
// is taken at call time, so cart edits made while the request is in flight
// never leak into it.
type Coordinator struct {
	cart    *cart.Store
	backend Submitter
	logger  *zap.SugaredLogger
}

func NewCoordinator(store *cart.Store, backend Submitter, logger *zap.SugaredLogger) *Coordinator {
	return &Coordinator{cart: store, backend: backend, logger: logger}
}

func (co *Coordinator) Confirm(ctx context.Context) (*Confirmation, error) {
	snap := co.cart.Snapshot()
	if snap.Empty() {
		return nil, ErrEmptyCart
	}

	conf, err := co.backend.SubmitOrder(ctx, snap)
	if err != nil {
		// Cart stays as-is on every failure path. Stock conflicts need the
		// user to fix quantities; anything else is retryable verbatim.
		co.logger.Warnw("order submission failed", "items", len(snap.Items), "error", err)
		return nil, err
	}

	co.cart.Clear()
	co.logger.Infow("order confirmed", "order_number", conf.OrderNumber, "total_cents", conf.Priced.TotalCents)
	return conf, nil
}
