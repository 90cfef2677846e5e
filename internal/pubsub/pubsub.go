// Package pubsub implements the per-user, per-channel-type pub/sub bus
// (§2 Pub/Sub Bus, §6.2) on top of PostgreSQL LISTEN/NOTIFY, grounded on the
// teacher's pkg/events NotifyListener/EventPublisher pair.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dayforge/dayforge/internal/auditlog"
	"github.com/dayforge/dayforge/internal/events"
)

// Channel kinds (§6.2).
const (
	ChannelAuditLog           = "auditlog"
	ChannelDomainEvents       = "domain-events"
	ChannelKioskNotifications = "kiosk-notifications"
)

// ChannelName returns the full `user:{id}:{kind}` NOTIFY channel name.
func ChannelName(userID, kind string) string {
	return fmt.Sprintf("user:%s:%s", userID, kind)
}

// Publisher is consumed by the UoW (best-effort, post-commit) and by
// reactive handlers that publish kiosk payloads directly (§4.5.6).
type Publisher interface {
	// PublishAuditLog publishes one committed audit log row to
	// user:{id}:auditlog (§4.1 step 5a).
	PublishAuditLog(ctx context.Context, entry auditlog.Entry) error
	// PublishDomainEvent publishes a non-entity event (e.g. NewDayEvent) to
	// user:{id}:domain-events (§6.2).
	PublishDomainEvent(ctx context.Context, evt events.Event) error
	// PublishKioskNotification publishes a verbatim payload to
	// user:{id}:kiosk-notifications, including a message_hash for
	// client-side dedup (§4.5.6).
	PublishKioskNotification(ctx context.Context, userID string, payload KioskPayload) error
}

// KioskPayload is published verbatim for kiosk UI read-aloud.
type KioskPayload struct {
	Message     string `json:"message"`
	Priority    string `json:"priority"`
	MessageHash string `json:"message_hash"`
}

// auditLogWire mirrors the AuditLog entity for transport.
type auditLogWire struct {
	ID           int64                  `json:"id"`
	UserID       string                 `json:"user_id"`
	ActivityType string                 `json:"activity_type"`
	EntityID     string                 `json:"entity_id"`
	EntityType   string                 `json:"entity_type"`
	OccurredAt   string                 `json:"occurred_at"`
	EntityData   map[string]interface{} `json:"entity_data,omitempty"`
}

func marshalAuditLog(entry auditlog.Entry) ([]byte, error) {
	return json.Marshal(auditLogWire{
		ID:           entry.ID,
		UserID:       entry.UserID,
		ActivityType: entry.ActivityType,
		EntityID:     entry.EntityID,
		EntityType:   entry.EntityType,
		OccurredAt:   entry.OccurredAt.Format("2006-01-02T15:04:05.000000Z07:00"),
		EntityData:   entry.EntityData,
	})
}

type domainEventWire struct {
	Type       string                 `json:"type"`
	UserID     string                 `json:"user_id"`
	OccurredAt string                 `json:"occurred_at"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
}

func marshalDomainEvent(evt events.Event) ([]byte, error) {
	var payload map[string]interface{}
	if ee, ok := evt.(events.EntityEvent); ok {
		payload = ee.EntityData()
	}
	return json.Marshal(domainEventWire{
		Type:       evt.Type(),
		UserID:     evt.UserID(),
		OccurredAt: evt.OccurredAt().Format("2006-01-02T15:04:05.000000Z07:00"),
		Payload:    payload,
	})
}
