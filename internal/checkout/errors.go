package checkout

import (
	"errors"
	"fmt"
)

// ErrEmptyCart is returned by Confirm when there is nothing to submit. The
// backend is never contacted in that case.
var ErrEmptyCart = errors.New("cart is empty")

// StockConflictError is the backend refusing an order because a requested
// quantity exceeds available stock. The cart is left untouched; the user has
// to adjust quantities and retry.
type StockConflictError struct {
	ProductName string
	Requested   int
	Available   int
}

func (e *StockConflictError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.ProductName, e.Requested, e.Available)
}

// SubmissionError covers every other submission failure: network errors,
// server errors, responses that cannot be decoded. The cart is left
// untouched and Confirm may simply be retried.
type SubmissionError struct {
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("order submission failed: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("order submission failed: %s", e.Message)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}
