package domain

import "time"

// PushNotificationStatus enumerates the outcome of a notification attempt.
type PushNotificationStatus string

const (
	PushSuccess PushNotificationStatus = "success"
	PushSkipped PushNotificationStatus = "skipped"
	PushError   PushNotificationStatus = "error"
)

// PushSubscription is a stored web-push endpoint for one of a user's
// devices.
type PushSubscription struct {
	ID        string
	UserID    string
	Endpoint  string
	Keys      map[string]string
	CreatedAt time.Time
}

// PushNotification is an audit record of every notification attempt,
// whether or not it was actually delivered (§4.5.3's "still valuable as an
// audit trail").
type PushNotification struct {
	Recorder

	ID                  string
	UserID              string
	PushSubscriptionIDs []string
	Content             string
	Status              PushNotificationStatus
	ErrorMessage        *string
	SentAt              time.Time
	TriggeredBy         string
	LLMSnapshot         *LLMRunResultSnapshot
}

// NewPushNotification constructs and immediately raises the creation event
// for a notification attempt — like Message, these are append-only.
func NewPushNotification(id, userID, triggeredBy string, status PushNotificationStatus, subscriptionIDs []string, content string) *PushNotification {
	p := &PushNotification{
		ID:                  id,
		UserID:              userID,
		PushSubscriptionIDs: subscriptionIDs,
		Content:             content,
		Status:              status,
		SentAt:              now(),
		TriggeredBy:         triggeredBy,
	}
	p.Record(PushNotificationCreatedEvent{Base: base(userID), PushNotificationID: id, Snapshot: p.snapshot()})
	return p
}

func (p *PushNotification) snapshot() entitySnapshot {
	return entitySnapshot{
		"id":           p.ID,
		"user_id":      p.UserID,
		"content":      p.Content,
		"status":       p.Status,
		"sent_at":      p.SentAt,
		"triggered_by": p.TriggeredBy,
	}
}
