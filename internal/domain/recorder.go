package domain

import "github.com/dayforge/dayforge/internal/events"

// Recorder is embedded by every aggregate to buffer the domain events it
// raises during mutation. The Unit of Work drains each aggregate's recorder
// via PullEvents after staging it for persistence (§4.1 step 2).
type Recorder struct {
	pending []events.Event
}

// Record appends evt to the aggregate's pending event list, preserving
// insertion order.
func (r *Recorder) Record(evt events.Event) {
	r.pending = append(r.pending, evt)
}

// PullEvents returns and clears the aggregate's pending events. Safe to call
// even if nothing was recorded.
func (r *Recorder) PullEvents() []events.Event {
	if len(r.pending) == 0 {
		return nil
	}
	out := r.pending
	r.pending = nil
	return out
}

// HasPendingEvents reports whether the aggregate has unflushed events.
func (r *Recorder) HasPendingEvents() bool {
	return len(r.pending) > 0
}
