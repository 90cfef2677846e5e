package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// BrainDumpItem holds the schema definition for a free-form captured note
// awaiting LLM triage into tasks/reminders/calendar entries. Supplements the
// distilled spec from the original Python source's brain-dump workflow.
type BrainDumpItem struct {
	ent.Schema
}

// Fields of the BrainDumpItem.
func (BrainDumpItem) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("user_id").
			Immutable(),
		field.String("day_date").
			Comment("ISO date this note was captured for"),
		field.Text("content"),
		field.Enum("status").
			Values("PENDING", "PROCESSED", "FAILED").
			Default("PENDING"),
		field.JSON("llm_run_result", LLMRunResultSnapshot{}).
			Optional(),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.Time("processed_at").
			Optional().
			Nillable(),
	}
}

// Edges of the BrainDumpItem.
func (BrainDumpItem) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("user", User.Type).
			Ref("brain_dump_items").
			Field("user_id").
			Unique().
			Required().
			Immutable(),
	}
}

// Indexes of the BrainDumpItem.
func (BrainDumpItem) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id", "day_date"),
		index.Fields("status"),
	}
}
