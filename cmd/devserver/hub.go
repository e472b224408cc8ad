package main

import (
	"sync"
	"time"

	"comedores/internal/stream"

	"go.uber.org/zap"
)

// hub fans order status events out to the SSE subscribers of each identity.
type hub struct {
	logger *zap.SugaredLogger

	mu   sync.Mutex
	subs map[string]map[chan stream.Event]struct{}
}

func newHub(logger *zap.SugaredLogger) *hub {
	return &hub{logger: logger, subs: make(map[string]map[chan stream.Event]struct{})}
}

func (h *hub) subscribe(identity string) chan stream.Event {
	ch := make(chan stream.Event, 16)
	h.mu.Lock()
	if h.subs[identity] == nil {
		h.subs[identity] = make(map[chan stream.Event]struct{})
	}
	h.subs[identity][ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *hub) unsubscribe(identity string, ch chan stream.Event) {
	h.mu.Lock()
	if set, ok := h.subs[identity]; ok {
		delete(set, ch)
		if len(set) == 0 {
			delete(h.subs, identity)
		}
	}
	h.mu.Unlock()
}

// publish delivers ev to the identity's subscribers. A subscriber whose
// buffer is full loses the event; the dev backend does not block on slow
// consumers.
func (h *hub) publish(identity string, ev stream.Event) {
	h.mu.Lock()
	for ch := range h.subs[identity] {
		select {
		case ch <- ev:
		default:
			h.logger.Warnw("dropping event for slow subscriber", "identity", identity, "order", ev.OrderNumber)
		}
	}
	h.mu.Unlock()
}

// walkOrder steps a freshly created order through the lifecycle on a timer,
// publishing one status event per step.
func (app *application) walkOrder(identity, orderNumber string) {
	go func() {
		statuses := []stream.Status{
			stream.StatusPending,
			stream.StatusConfirmed,
			stream.StatusPreparing,
			stream.StatusReady,
			stream.StatusDelivered,
		}

		app.hub.publish(identity, stream.Event{OrderNumber: orderNumber, NewStatus: statuses[0]})

		ticker := time.NewTicker(app.config.statusStep)
		defer ticker.Stop()

		for _, status := range statuses[1:] {
			<-ticker.C
			app.hub.publish(identity, stream.Event{OrderNumber: orderNumber, NewStatus: status})
			app.logger.Infow("order status advanced", "order", orderNumber, "status", status)
		}
	}()
}
