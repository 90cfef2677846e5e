// Package api implements the externally-facing surface named in §1's
// Non-goals boundary — the WebSocket sync endpoint itself (§4.8) plus a thin
// Echo server around it. Authentication, general REST handlers, and DTO
// mapping stay out of scope; this package only wires the core's own
// collaborators (queries, pubsub, auditlog) onto a wire protocol.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/dayforge/dayforge/ent"
	"github.com/dayforge/dayforge/internal/auditlog"
	"github.com/dayforge/dayforge/internal/pubsub"
	"github.com/dayforge/dayforge/internal/queries"
)

// writeTimeout bounds each outbound WebSocket write so a stalled client
// cannot block the notification fan-out loop indefinitely.
const writeTimeout = 5 * time.Second

// SyncManager implements the §4.8 connection lifecycle: one goroutine pair
// per WebSocket connection sharing a context, subscribed to the connecting
// user's auditlog pub/sub channel and filtering by the client's target date.
// Grounded on the teacher's events.ConnectionManager, generalized from a
// multi-channel/multi-subscriber broadcast hub down to this spec's
// single-connection, single-date-filter shape.
type SyncManager struct {
	client   *ent.Client
	listener *pubsub.Listener
	loc      *time.Location
}

// NewSyncManager binds a SyncManager to the ent client (for query-side sync)
// and the process's shared pub/sub Listener (for live forwarding).
func NewSyncManager(client *ent.Client, listener *pubsub.Listener, loc *time.Location) *SyncManager {
	if loc == nil {
		loc = time.UTC
	}
	return &SyncManager{client: client, listener: listener, loc: loc}
}

// HandleConnection drives one WebSocket client's full lifecycle: connect
// acknowledgement, the inbound sync_request loop, and outbound forwarding of
// pub/sub audit-log messages filtered to targetDate. Blocks until conn
// closes or ctx is cancelled.
func (m *SyncManager) HandleConnection(ctx context.Context, conn *websocket.Conn, userID, targetDate string) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	connID := uuid.New().String()
	log := slog.With("connection_id", connID, "user_id", userID, "target_date", targetDate)

	channel := pubsub.ChannelName(userID, pubsub.ChannelAuditLog)
	notifyCh := make(chan pubsub.Notification, 64)
	if err := m.listener.Subscribe(ctx, channel, notifyCh); err != nil {
		log.Error("subscribe to auditlog channel failed", "error", err)
		return
	}
	defer m.listener.Unsubscribe(context.Background(), channel, notifyCh)

	if err := m.send(ctx, conn, connectionAck{Type: "connection_ack", UserID: userID}); err != nil {
		log.Warn("failed to send connection_ack", "error", err)
		return
	}

	go m.forwardLoop(ctx, conn, notifyCh, targetDate, log)
	m.inboundLoop(ctx, conn, userID, targetDate, log)
}

// inboundLoop reads client messages until the connection closes or ctx is
// cancelled, handling sync_request and rejecting anything else (§4.8 step 3).
func (m *SyncManager) inboundLoop(ctx context.Context, conn *websocket.Conn, userID, targetDate string, log *slog.Logger) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return // connection closed or cancelled; outbound loop exits via ctx
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			m.sendError(ctx, conn, "bad_request", "invalid JSON message")
			continue
		}

		switch msg.Type {
		case "sync_request":
			if err := m.handleSyncRequest(ctx, conn, userID, targetDate, msg.SinceTimestamp); err != nil {
				log.Warn("sync_request failed", "error", err)
				m.sendError(ctx, conn, "sync_failed", err.Error())
			}
		default:
			m.sendError(ctx, conn, "unknown_type", fmt.Sprintf("unknown message type %q", msg.Type))
		}
	}
}

// handleSyncRequest implements §4.8 step 3's full/incremental branch.
func (m *SyncManager) handleSyncRequest(ctx context.Context, conn *websocket.Conn, userID, targetDate string, since *string) error {
	if since == nil {
		dayCtx, err := queries.BuildDayContext(ctx, m.client, userID, targetDate, m.loc)
		if err != nil {
			return fmt.Errorf("build day context: %w", err)
		}
		lastTS, err := queries.LastAuditLogTimestamp(ctx, m.client, userID)
		if err != nil {
			return fmt.Errorf("last audit log timestamp: %w", err)
		}
		return m.send(ctx, conn, syncResponse{
			Type:                  "sync_response",
			DayContext:            dayCtx,
			LastAuditLogTimestamp: formatTimestampPtr(lastTS),
		})
	}

	sinceTS, err := time.Parse(time.RFC3339, *since)
	if err != nil {
		return fmt.Errorf("invalid since_timestamp: %w", err)
	}

	changes, err := queries.IncrementalChanges(ctx, m.client, userID, targetDate, sinceTS)
	if err != nil {
		return fmt.Errorf("incremental changes: %w", err)
	}
	lastTS, err := queries.LastAuditLogTimestamp(ctx, m.client, userID)
	if err != nil {
		return fmt.Errorf("last audit log timestamp: %w", err)
	}
	return m.send(ctx, conn, syncResponse{
		Type:                  "sync_response",
		Changes:                changesToWire(changes),
		LastAuditLogTimestamp: formatTimestampPtr(lastTS),
	})
}

// forwardLoop implements §4.8 step 4: forward pub/sub audit-log messages
// filtered by auditlog.IsForDate to the client as single-change
// sync_response messages.
func (m *SyncManager) forwardLoop(ctx context.Context, conn *websocket.Conn, notifyCh <-chan pubsub.Notification, targetDate string, log *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-notifyCh:
			entry, err := unmarshalAuditLogWire(n.Payload)
			if err != nil {
				log.Warn("failed to unmarshal audit log notification", "error", err)
				continue
			}
			if !auditlog.IsForDate(entry, targetDate) {
				continue
			}
			changeType, ok := auditlog.DeriveChangeType(entry.ActivityType)
			if !ok {
				continue
			}
			change := queries.Change{
				ChangeType: changeType,
				EntityType: entry.EntityType,
				EntityID:   entry.EntityID,
				EntityData: entry.EntityData,
			}
			occurred := entry.OccurredAt
			if err := m.send(ctx, conn, syncResponse{
				Type:                  "sync_response",
				Changes:                changesToWire([]queries.Change{change}),
				LastAuditLogTimestamp: formatTimestampPtr(&occurred),
			}); err != nil {
				log.Warn("failed to forward audit log change", "error", err)
				return
			}
		}
	}
}

func (m *SyncManager) sendError(ctx context.Context, conn *websocket.Conn, code, message string) {
	_ = m.send(ctx, conn, errorMessage{Type: "error", Code: code, Message: message})
}

func (m *SyncManager) send(ctx context.Context, conn *websocket.Conn, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal wire message: %w", err)
	}
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, data)
}
