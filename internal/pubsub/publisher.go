package pubsub

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dayforge/dayforge/internal/auditlog"
	"github.com/dayforge/dayforge/internal/events"
)

// PGPublisher publishes via `pg_notify`. It is constructed from the same
// *sql.DB the UoW's transaction runs against so pg_notify can be issued
// inside (database/publisher.go's helper) or, for the common case here,
// right after commit using a fresh connection from the pool — grounded on
// the teacher's EventPublisher.notifyOnly (pkg/events/publisher.go).
type PGPublisher struct {
	db *sql.DB
}

// NewPGPublisher wraps db as a Publisher.
func NewPGPublisher(db *sql.DB) *PGPublisher {
	return &PGPublisher{db: db}
}

func (p *PGPublisher) PublishAuditLog(ctx context.Context, entry auditlog.Entry) error {
	payload, err := marshalAuditLog(entry)
	if err != nil {
		return fmt.Errorf("pubsub: marshal audit log: %w", err)
	}
	return p.notify(ctx, ChannelName(entry.UserID, ChannelAuditLog), payload)
}

func (p *PGPublisher) PublishDomainEvent(ctx context.Context, evt events.Event) error {
	payload, err := marshalDomainEvent(evt)
	if err != nil {
		return fmt.Errorf("pubsub: marshal domain event: %w", err)
	}
	return p.notify(ctx, ChannelName(evt.UserID(), ChannelDomainEvents), payload)
}

func (p *PGPublisher) PublishKioskNotification(ctx context.Context, userID string, kp KioskPayload) error {
	payload, err := marshalKiosk(kp)
	if err != nil {
		return fmt.Errorf("pubsub: marshal kiosk payload: %w", err)
	}
	return p.notify(ctx, ChannelName(userID, ChannelKioskNotifications), payload)
}

func (p *PGPublisher) notify(ctx context.Context, channel string, payload []byte) error {
	_, err := p.db.ExecContext(ctx, "SELECT pg_notify($1, $2)", channel, string(payload))
	if err != nil {
		return fmt.Errorf("pg_notify %s: %w", channel, err)
	}
	return nil
}

func marshalKiosk(kp KioskPayload) ([]byte, error) {
	return json.Marshal(kp)
}
