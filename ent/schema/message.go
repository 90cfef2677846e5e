package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Message holds the schema definition for an inbound/outbound communication
// (SMS, in-app).
type Message struct {
	ent.Schema
}

// Fields of the Message.
func (Message) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("user_id").
			Immutable(),
		field.Enum("role").
			Values("USER", "ASSISTANT", "SYSTEM"),
		field.Text("content"),
		field.JSON("meta", map[string]interface{}{}).
			Optional().
			Comment("from_number, to_number, in_reply_to_message_id, payload, provider"),
		field.String("triggered_by").
			Optional().
			Nillable(),
		field.JSON("llm_run_result", LLMRunResultSnapshot{}).
			Optional(),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

// Edges of the Message.
func (Message) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("user", User.Type).
			Ref("messages").
			Field("user_id").
			Unique().
			Required().
			Immutable(),
	}
}

// Indexes of the Message.
func (Message) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id", "created_at"),
		index.Fields("triggered_by"),
	}
}
