package events

import (
	"context"
	"log/slog"
	"sync"
)

// Handler reacts to one or more event types dispatched after a UoW commit.
// Implementations are constructed per-invocation by a HandlerFactory from a
// user-scoped context; Handle errors are logged by the dispatcher and never
// propagated to peer handlers or to the committing caller (§4.2, §7).
type Handler interface {
	// Types lists the event Type() values this handler reacts to.
	Types() []string
	Handle(ctx context.Context, evt Event) error
}

// Dispatcher is the single process-wide registry of event handlers. It is
// written once at startup (Register) and read concurrently thereafter, so no
// locking is required after initialization — the mutex only guards against
// registration racing dispatch during tests.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

// NewDispatcher returns an empty dispatcher ready for one-shot registration.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string][]Handler)}
}

// Register adds handler to every event type it declares. Registration is
// one-shot at process start (§4.2); handlers deregister only at shutdown,
// which this dispatcher models by simply being discarded.
func (d *Dispatcher) Register(h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, t := range h.Types() {
		d.handlers[t] = append(d.handlers[t], h)
	}
}

// Dispatch delivers evt, in order, to every handler registered for its type.
// Dispatch is sequential and each handler invocation is awaited; a handler
// error is logged and does not stop the remaining handlers from running
// (§4.2). Dispatch itself never returns an error to its caller (the UoW
// treats post-commit dispatch as best-effort, §4.1 step 5, §7).
func (d *Dispatcher) Dispatch(ctx context.Context, evt Event) {
	d.mu.RLock()
	hs := d.handlers[evt.Type()]
	d.mu.RUnlock()

	for _, h := range hs {
		if err := h.Handle(ctx, evt); err != nil {
			slog.Error("event handler failed",
				"event_type", evt.Type(), "user_id", evt.UserID(), "error", err)
		}
	}
}

// DispatchAll delivers each event in evts, in order, to the dispatcher.
func (d *Dispatcher) DispatchAll(ctx context.Context, evts []Event) {
	for _, evt := range evts {
		d.Dispatch(ctx, evt)
	}
}

// HandlerFunc adapts a plain function to Handler for a single event type.
type HandlerFunc struct {
	EventType string
	Fn        func(ctx context.Context, evt Event) error
}

func (f HandlerFunc) Types() []string { return []string{f.EventType} }
func (f HandlerFunc) Handle(ctx context.Context, evt Event) error {
	return f.Fn(ctx, evt)
}
