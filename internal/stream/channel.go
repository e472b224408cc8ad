package stream

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultMinBackoff = 500 * time.Millisecond
	defaultMaxBackoff = 30 * time.Second
)

// Channel keeps one live push subscription per active identity and turns raw
// payloads into typed status events.
//
// Lifecycle: Idle until an identity is set, then Connecting → Open, back to
// Connecting (via Error) after a drop, with exponential backoff between
// attempts. Setting a new identity closes the old connection before opening
// the new one; clearing the identity (or Close) tears the channel down for
// good — no further reconnection.
//
// A malformed payload is logged and dropped without touching the connection,
// and delivering the same status for the same order twice dispatches only
// once.
type Channel struct {
	transport  Transport
	logger     *zap.SugaredLogger
	minBackoff time.Duration
	maxBackoff time.Duration

	mu       sync.Mutex
	state    State
	identity string
	gen      int
	cancel   context.CancelFunc
	handlers []func(Event)
	last     map[string]Status
}

type ChannelOption func(*Channel)

// WithBackoff overrides the reconnection backoff bounds.
func WithBackoff(min, max time.Duration) ChannelOption {
	return func(c *Channel) {
		c.minBackoff = min
		c.maxBackoff = max
	}
}

func NewChannel(transport Transport, logger *zap.SugaredLogger, opts ...ChannelOption) *Channel {
	c := &Channel{
		transport:  transport,
		logger:     logger,
		minBackoff: defaultMinBackoff,
		maxBackoff: defaultMaxBackoff,
		state:      StateIdle,
		last:       make(map[string]Status),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnEvent registers a handler for incoming status events. Handlers are
// invoked sequentially from the channel's receive goroutine.
func (c *Channel) OnEvent(fn func(Event)) {
	c.mu.Lock()
	c.handlers = append(c.handlers, fn)
	c.mu.Unlock()
}

// SetIdentity switches the subscription to a new identity. An empty identity
// tears the channel down. Setting the identity already in use is a no-op.
func (c *Channel) SetIdentity(identity string) {
	c.mu.Lock()
	if identity == c.identity && c.state != StateIdle && c.state != StateClosed {
		c.mu.Unlock()
		return
	}
	c.stopLocked()
	if identity == "" {
		c.state = StateClosed
		c.mu.Unlock()
		return
	}

	c.identity = identity
	c.state = StateConnecting
	c.gen++
	gen := c.gen
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.mu.Unlock()

	go c.run(ctx, gen, identity)
}

// Close tears the channel down. Safe to call more than once.
func (c *Channel) Close() {
	c.mu.Lock()
	c.stopLocked()
	c.state = StateClosed
	c.mu.Unlock()
}

func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// stopLocked cancels the running subscription, if any. Caller holds the mutex.
func (c *Channel) stopLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.identity = ""
	c.gen++
}

func (c *Channel) run(ctx context.Context, gen int, identity string) {
	backoff := c.minBackoff

	for {
		if !c.setState(gen, StateConnecting) {
			return
		}

		conn, err := c.transport.Connect(ctx, identity)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Warnw("order stream connect failed", "identity", identity, "error", err, "retry_in", backoff)
			if !c.setState(gen, StateError) {
				return
			}
			if !sleep(ctx, backoff) {
				return
			}
			backoff = nextBackoff(backoff, c.maxBackoff)
			continue
		}

		if !c.setState(gen, StateOpen) {
			conn.Close()
			return
		}
		c.logger.Infow("order stream open", "identity", identity)
		backoff = c.minBackoff

		c.receive(ctx, gen, conn)
		conn.Close()
		if ctx.Err() != nil {
			return
		}

		c.logger.Warnw("order stream dropped", "identity", identity, "retry_in", backoff)
		if !c.setState(gen, StateError) {
			return
		}
		if !sleep(ctx, backoff) {
			return
		}
		backoff = nextBackoff(backoff, c.maxBackoff)
	}
}

// receive pumps payloads from one connection until it drops or the context
// is cancelled.
func (c *Channel) receive(ctx context.Context, gen int, conn Conn) {
	for {
		payload, err := conn.Receive()
		if err != nil {
			return
		}
		if ctx.Err() != nil {
			return
		}

		var ev Event
		if err := json.Unmarshal(payload, &ev); err != nil || ev.OrderNumber == "" || ev.NewStatus == "" {
			// One bad message must not kill a healthy connection.
			c.logger.Warnw("dropping malformed order event", "payload", string(payload), "error", err)
			continue
		}
		c.dispatch(gen, ev)
	}
}

func (c *Channel) dispatch(gen int, ev Event) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	if c.last[ev.OrderNumber] == ev.NewStatus {
		// Duplicate delivery of the same status is a no-op.
		c.mu.Unlock()
		return
	}
	c.last[ev.OrderNumber] = ev.NewStatus
	handlers := make([]func(Event), len(c.handlers))
	copy(handlers, c.handlers)
	c.mu.Unlock()

	for _, fn := range handlers {
		fn(ev)
	}
}

// setState records the new state if this goroutine still owns the channel.
func (c *Channel) setState(gen int, s State) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.state = s
	return true
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func nextBackoff(current, max time.Duration) time.Duration {
	next := current * 2
	if next > max {
		next = max
	}
	return next
}
