package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// RoutineDefinition holds the schema definition for a recurring-task
// template. Active on a date D iff its RecurrenceSchedule matches D.
type RoutineDefinition struct {
	ent.Schema
}

// Fields of the RoutineDefinition.
func (RoutineDefinition) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("user_id").
			Immutable(),
		field.String("name"),
		field.JSON("recurrence", RecurrenceSchedule{}),
		field.JSON("routine_tasks", []RoutineTask{}).
			Optional(),
		field.Bool("active").
			Default(true),
	}
}

// RecurrenceSchedule describes the cadence on which a routine materializes
// tasks, or a calendar series repeats.
type RecurrenceSchedule struct {
	Frequency string `json:"frequency"` // DAILY, WEEKLY, MONTHLY
	Weekdays  []int  `json:"weekdays,omitempty"`
	DayNumber *int   `json:"day_number,omitempty"`
}

// RoutineTask is a task blueprint embedded in a routine definition. One Task
// is materialized per RoutineTask each time the routine matches a date.
type RoutineTask struct {
	Name     string      `json:"name"`
	Category string      `json:"category,omitempty"`
	Type     string      `json:"type,omitempty"`
	Schedule *TimeWindow `json:"schedule,omitempty"`
	Tags     []string    `json:"tags,omitempty"`
}

// Edges of the RoutineDefinition.
func (RoutineDefinition) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("user", User.Type).
			Ref("routine_definitions").
			Field("user_id").
			Unique().
			Required().
			Immutable(),
		edge.To("tasks", Task.Type).
			Annotations(entsql.OnDelete(entsql.SetNull)),
	}
}

// Indexes of the RoutineDefinition.
func (RoutineDefinition) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id", "active"),
	}
}
