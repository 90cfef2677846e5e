package domain

import "time"

// MessageRole enumerates the speaker of a Message.
type MessageRole string

const (
	RoleUser      MessageRole = "USER"
	RoleAssistant MessageRole = "ASSISTANT"
	RoleSystem    MessageRole = "SYSTEM"
)

// Message is an inbound or outbound communication (SMS, in-app chat).
type Message struct {
	Recorder

	ID           string
	UserID       string
	Role         MessageRole
	Content      string
	Meta         map[string]interface{}
	TriggeredBy  *string
	LLMRunResult *LLMRunResultSnapshot
	CreatedAt    time.Time
}

// NewMessage constructs a Message and immediately raises its creation event
// — messages are append-only, so "new" and "created" always coincide.
func NewMessage(id, userID string, role MessageRole, content string, meta map[string]interface{}) *Message {
	m := &Message{
		ID:        id,
		UserID:    userID,
		Role:      role,
		Content:   content,
		Meta:      meta,
		CreatedAt: now(),
	}
	m.Record(MessageCreatedEvent{Base: base(userID), MessageID: id, Snapshot: m.snapshot()})
	return m
}

func (m *Message) snapshot() entitySnapshot {
	return entitySnapshot{
		"id":           m.ID,
		"user_id":      m.UserID,
		"role":         m.Role,
		"content":      m.Content,
		"meta":         m.Meta,
		"triggered_by": m.TriggeredBy,
		"created_at":   m.CreatedAt,
	}
}
