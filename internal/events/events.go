// Package events defines the domain event contract and the process-local
// dispatcher that fans events out to registered handlers after a successful
// unit-of-work commit.
package events

import "time"

// Event is implemented by every domain event raised by an aggregate during a
// transaction. Type is stable string used both for dispatcher routing and as
// the audit log's activity_type column.
type Event interface {
	Type() string
	UserID() string
	OccurredAt() time.Time
}

// EntityEvent is implemented by events that pertain to exactly one mutated
// entity and therefore participate in audit-log synthesis (§4.1 step 3).
// Events that don't implement it (e.g. NewDayEvent) are dispatched to
// in-process handlers but never produce an AuditLog row.
type EntityEvent interface {
	Event
	EntityID() string
	EntityType() string
	// EntityData returns the serializable snapshot to store in
	// AuditLogMeta.EntityData, or nil for deletions.
	EntityData() map[string]interface{}
}

// Base is embedded by concrete event structs to satisfy Event's UserID and
// OccurredAt trivially.
type Base struct {
	UID string
	At  time.Time
}

func (b Base) UserID() string        { return b.UID }
func (b Base) OccurredAt() time.Time { return b.At }
