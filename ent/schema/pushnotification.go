package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// PushNotification holds the schema definition for an audit record of every
// notification attempt (sent, skipped, or failed).
type PushNotification struct {
	ent.Schema
}

// Fields of the PushNotification.
func (PushNotification) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("user_id").
			Immutable(),
		field.JSON("push_subscription_ids", []string{}).
			Optional(),
		field.Text("content"),
		field.Enum("status").
			Values("success", "skipped", "error"),
		field.String("error_message").
			Optional().
			Nillable(),
		field.Time("sent_at").
			Default(time.Now),
		field.String("triggered_by").
			Comment("dedup key, e.g. calendar_entry_reminder:<entry>:<minutes>:<channel>"),
		field.JSON("llm_snapshot", LLMRunResultSnapshot{}).
			Optional(),
	}
}

// Edges of the PushNotification.
func (PushNotification) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("user", User.Type).
			Ref("push_notifications").
			Field("user_id").
			Unique().
			Required().
			Immutable(),
	}
}

// Indexes of the PushNotification.
func (PushNotification) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id", "triggered_by"),
		index.Fields("user_id", "sent_at"),
	}
}
