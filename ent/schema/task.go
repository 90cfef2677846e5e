package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Task holds the schema definition for the Task entity.
type Task struct {
	ent.Schema
}

// Fields of the Task.
func (Task) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("user_id").
			Immutable(),
		field.String("day_id").
			Immutable().
			Comment("UUID5(user_id, scheduled_date) — FK to Day.id"),
		field.String("scheduled_date").
			Immutable().
			Comment("ISO date this task belongs to (denormalized for range queries)"),
		field.String("name"),
		field.Enum("status").
			Values("NOT_STARTED", "READY", "NOT_READY", "PENDING", "PUNTED", "COMPLETE").
			Default("NOT_STARTED"),
		field.String("category").
			Optional(),
		field.String("type").
			Optional(),
		field.Enum("frequency").
			Values("DAILY", "WEEKLY", "MONTHLY", "ONE_OFF").
			Default("ONE_OFF"),
		field.JSON("schedule", TimeWindow{}).
			Optional().
			Comment("nil schedule means no fixed timing"),
		field.String("routine_definition_id").
			Optional().
			Nillable().
			Comment("nil => adhoc task"),
		field.JSON("tags", []string{}).
			Optional(),
		field.JSON("actions", []TaskAction{}).
			Optional().
			Comment("append-only action log"),
		field.Time("completed_at").
			Optional().
			Nillable(),
		field.JSON("llm_run_result", LLMRunResultSnapshot{}).
			Optional(),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.Time("updated_at").
			Default(time.Now).
			UpdateDefault(time.Now),
	}
}

// TimeWindow describes when a task is meant to happen.
type TimeWindow struct {
	TimingType string  `json:"timing_type"` // DEADLINE, FIXED_TIME, TIME_WINDOW, FLEXIBLE
	StartTime  *string `json:"start_time,omitempty"`
	EndTime    *string `json:"end_time,omitempty"`
}

// TaskAction is one append-only entry in Task.actions.
type TaskAction struct {
	Type      string    `json:"type"` // e.g. COMPLETE, PUNT, REOPEN
	OccurredAt time.Time `json:"occurred_at"`
	Note      string    `json:"note,omitempty"`
}

// Edges of the Task.
func (Task) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("day", Day.Type).
			Ref("tasks").
			Field("day_id").
			Unique().
			Required().
			Immutable(),
		edge.From("user", User.Type).
			Ref("tasks").
			Field("user_id").
			Unique().
			Required().
			Immutable(),
		edge.From("routine_definition", RoutineDefinition.Type).
			Ref("tasks").
			Field("routine_definition_id").
			Unique(),
	}
}

// Indexes of the Task.
func (Task) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id", "scheduled_date"),
		index.Fields("scheduled_date", "routine_definition_id"),
		index.Fields("status"),
	}
}
