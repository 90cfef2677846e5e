package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// QueueJob holds the schema definition for a durable row backing the
// post-commit deferred worker queue (§4.7). WorkersToSchedule.Flush submits
// rows here; internal/worker.Pool claims them with `FOR UPDATE SKIP LOCKED`,
// the same pattern the teacher uses for alert_sessions.
type QueueJob struct {
	ent.Schema
}

// Fields of the QueueJob.
func (QueueJob) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("user_id").
			Immutable(),
		field.String("kind").
			Immutable(),
		field.JSON("payload", map[string]interface{}{}).
			Immutable(),
		field.Enum("status").
			Values("pending", "processing", "complete", "failed").
			Default("pending"),
		field.Int("attempts").
			Default(0),
		field.String("last_error").
			Optional().
			Nillable(),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.Time("available_at").
			Default(time.Now).
			Comment("earliest time this job may be claimed; advanced on retry backoff"),
	}
}

// Indexes of the QueueJob.
func (QueueJob) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("status", "available_at"),
		index.Fields("user_id"),
	}
}
