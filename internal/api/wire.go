package api

import (
	"encoding/json"
	"time"

	"github.com/dayforge/dayforge/internal/auditlog"
	"github.com/dayforge/dayforge/internal/queries"
)

// clientMessage is the envelope for every client → server message (§6.1).
type clientMessage struct {
	Type           string  `json:"type"`
	SinceTimestamp *string `json:"since_timestamp"`
}

// connectionAck is sent once, immediately after subscribing (§4.8 step 1).
type connectionAck struct {
	Type   string `json:"type"`
	UserID string `json:"user_id"`
}

// syncResponse covers both the full-snapshot and incremental-changes shapes
// (§4.8 step 3/4); exactly one of DayContext or Changes is populated.
type syncResponse struct {
	Type                  string             `json:"type"`
	DayContext            *queries.DayContext `json:"day_context,omitempty"`
	Changes                []changeWire       `json:"changes,omitempty"`
	LastAuditLogTimestamp *string            `json:"last_audit_log_timestamp,omitempty"`
}

// changeWire is one entry of sync_response.changes (§6.1).
type changeWire struct {
	ChangeType string                 `json:"change_type"`
	EntityType string                 `json:"entity_type"`
	EntityID   string                 `json:"entity_id"`
	EntityData map[string]interface{} `json:"entity_data,omitempty"`
}

// errorMessage is sent for unknown message types or handling failures.
type errorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func changesToWire(changes []queries.Change) []changeWire {
	out := make([]changeWire, len(changes))
	for i, c := range changes {
		out[i] = changeWire{
			ChangeType: string(c.ChangeType),
			EntityType: c.EntityType,
			EntityID:   c.EntityID,
			EntityData: c.EntityData,
		}
	}
	return out
}

func formatTimestampPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

// auditLogWire mirrors pubsub's publish-side encoding so the forward loop can
// decode a NOTIFY payload back into an auditlog.Entry.
type auditLogWire struct {
	ID           int64                  `json:"id"`
	UserID       string                 `json:"user_id"`
	ActivityType string                 `json:"activity_type"`
	EntityID     string                 `json:"entity_id"`
	EntityType   string                 `json:"entity_type"`
	OccurredAt   string                 `json:"occurred_at"`
	EntityData   map[string]interface{} `json:"entity_data,omitempty"`
}

func unmarshalAuditLogWire(payload string) (auditlog.Entry, error) {
	var w auditLogWire
	if err := json.Unmarshal([]byte(payload), &w); err != nil {
		return auditlog.Entry{}, err
	}
	occurredAt, err := time.Parse("2006-01-02T15:04:05.000000Z07:00", w.OccurredAt)
	if err != nil {
		occurredAt, err = time.Parse(time.RFC3339, w.OccurredAt)
		if err != nil {
			return auditlog.Entry{}, err
		}
	}
	return auditlog.Entry{
		ID:           w.ID,
		UserID:       w.UserID,
		ActivityType: w.ActivityType,
		EntityID:     w.EntityID,
		EntityType:   w.EntityType,
		OccurredAt:   occurredAt,
		EntityData:   w.EntityData,
	}, nil
}
