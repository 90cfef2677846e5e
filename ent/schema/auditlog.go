package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// AuditLog holds the schema definition for the append-only per-user mutation
// stream. occurred_at is monotonically increasing per user and doubles as
// the incremental-sync logical clock (§4.8 of the sync design).
type AuditLog struct {
	ent.Schema
}

// Fields of the AuditLog.
func (AuditLog) Fields() []ent.Field {
	return []ent.Field{
		field.Int64("id").
			Unique().
			Immutable(),
		field.String("user_id").
			Immutable(),
		field.String("activity_type").
			Immutable().
			Comment("e.g. TaskCreatedEvent, DayUpdatedEvent"),
		field.String("entity_id").
			Immutable(),
		field.String("entity_type").
			Immutable(),
		field.Time("occurred_at").
			Default(time.Now).
			Immutable(),
		field.JSON("meta", AuditLogMeta{}).
			Immutable(),
	}
}

// AuditLogMeta carries the entity snapshot for created/updated rows.
// EntityData is nil for deletions per the wire-protocol contract.
type AuditLogMeta struct {
	EntityData map[string]interface{} `json:"entity_data,omitempty"`
}

// Edges of the AuditLog.
func (AuditLog) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("user", User.Type).
			Ref("audit_logs").
			Field("user_id").
			Unique().
			Required().
			Immutable(),
	}
}

// Indexes of the AuditLog.
func (AuditLog) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id", "occurred_at"),
		index.Fields("user_id", "id"),
	}
}
