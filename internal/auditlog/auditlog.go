// Package auditlog synthesizes and queries the append-only per-user mutation
// stream that doubles as the incremental-sync source of truth (§3.1, §4.8).
package auditlog

import (
	"strings"
	"time"

	"github.com/dayforge/dayforge/internal/events"
)

// Entry mirrors the persisted AuditLog row shape (ent/schema/auditlog.go).
type Entry struct {
	ID           int64
	UserID       string
	ActivityType string
	EntityID     string
	EntityType   string
	OccurredAt   time.Time
	EntityData   map[string]interface{} // nil for deletions
}

// FromEvent builds the AuditLog row for evt, or returns ok=false if evt is
// not auditable (it doesn't implement events.EntityEvent — e.g. NewDayEvent,
// §4.1 step 3 / §4.2's distinction between dispatch-only and audited events).
// ID is left zero; the repository assigns it from the user's monotonic
// sequence at insert time.
func FromEvent(evt events.Event) (Entry, bool) {
	ee, ok := evt.(events.EntityEvent)
	if !ok {
		return Entry{}, false
	}
	return Entry{
		UserID:       evt.UserID(),
		ActivityType: evt.Type(),
		EntityID:     ee.EntityID(),
		EntityType:   ee.EntityType(),
		OccurredAt:   evt.OccurredAt(),
		EntityData:   ee.EntityData(),
	}, true
}

// ChangeType enumerates the wire-protocol change kinds (§6.1).
type ChangeType string

const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// DeriveChangeType maps an AuditLog's activity_type to a wire-protocol
// change_type per §4.8.1's literal derivation rules. ok is false when the
// activity_type matches none of the rules and the row should be skipped.
func DeriveChangeType(activityType string) (ChangeType, bool) {
	switch {
	case strings.Contains(activityType, "Created") || activityType == "EntityCreatedEvent":
		return ChangeCreated, true
	case strings.Contains(activityType, "Deleted") || activityType == "EntityDeletedEvent":
		return ChangeDeleted, true
	case strings.Contains(activityType, "Updated") ||
		activityType == "TaskCompletedEvent" ||
		activityType == "TaskPuntedEvent":
		return ChangeUpdated, true
	default:
		return "", false
	}
}

// wholeUserEntityTypes affect every day view and are therefore always
// included by IsForDate regardless of target_date (§4.8.1).
var wholeUserEntityTypes = map[string]bool{
	"routine_definition": true,
	"day_template":       true,
}

// IsForDate implements the is_audit_log_for_today predicate (§4.8.1): an
// audit log pertains to targetDate if its entity snapshot names that date
// directly, or if its entity type is whole-user.
func IsForDate(e Entry, targetDate string) bool {
	if wholeUserEntityTypes[e.EntityType] {
		return true
	}
	if e.EntityData == nil {
		// Deletions carry no snapshot; entity_type alone decides relevance
		// for types that are always date-scoped via their id, so a deletion
		// of a task/day/calendar_entry is conservatively excluded here and
		// must instead be filtered by the caller using the entity's last
		// known date before deletion (see internal/queries.IncrementalChanges).
		return false
	}
	if v, ok := e.EntityData["scheduled_date"].(string); ok {
		return v == targetDate
	}
	if v, ok := e.EntityData["date"].(string); ok {
		return v == targetDate
	}
	if v, ok := e.EntityData["starts_at"]; ok {
		if t, ok := parseTimeLike(v); ok {
			return t.Format("2006-01-02") == targetDate
		}
	}
	return false
}

func parseTimeLike(v interface{}) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case string:
		if t, err := time.Parse(time.RFC3339, x); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
