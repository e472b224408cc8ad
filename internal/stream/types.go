package stream

import "context"

// Status is the order lifecycle state set pushed by the server. The set is an
// external contract; this package relays values verbatim.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusPreparing Status = "PREPARING"
	StatusReady     Status = "READY"
	StatusDelivered Status = "DELIVERED"
	StatusRejected  Status = "REJECTED"
)

// Event is one status transition for one order. Purely informational; it
// never feeds back into cart state.
type Event struct {
	OrderNumber string `json:"orderNumber"`
	NewStatus   Status `json:"newStatus"`
}

// State is the connection state of the notification channel.
type State string

const (
	StateIdle       State = "idle"       // no identity, never started
	StateConnecting State = "connecting" // attempt in flight
	StateOpen       State = "open"       // receiving events
	StateError      State = "error"      // dropped, waiting to retry
	StateClosed     State = "closed"     // deliberate teardown, no retries
)

// Transport opens a push subscription for an identity. Implementations wrap
// the concrete wire mechanism (SSE against the backend, a fake in tests); the
// reconnection state machine lives above this interface and does not care.
type Transport interface {
	Connect(ctx context.Context, identity string) (Conn, error)
}

// Conn is one live subscription. Receive blocks until the next raw payload
// arrives and returns an error when the connection drops.
type Conn interface {
	Receive() ([]byte, error)
	Close() error
}
