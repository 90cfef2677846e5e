package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Day holds the schema definition for the Day entity (aggregate root for a
// calendar date). Identity is deterministic: UUID5(user_id, date.iso).
type Day struct {
	ent.Schema
}

// Fields of the Day.
func (Day) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable().
			Comment("UUID5(user_id, date)"),
		field.String("user_id").
			Immutable(),
		field.String("date").
			Immutable().
			Comment("ISO 8601 calendar date, YYYY-MM-DD"),
		field.Enum("status").
			Values("UNSCHEDULED", "SCHEDULED", "IN_PROGRESS", "COMPLETE").
			Default("UNSCHEDULED"),
		field.String("template_id").
			Optional().
			Nillable(),
		field.JSON("time_blocks", []TimeBlock{}).
			Optional(),
		field.JSON("high_level_plan", HighLevelPlan{}).
			Optional(),
		field.JSON("alarms", []Alarm{}).
			Optional(),
		field.JSON("tags", []string{}).
			Optional(),
		field.Time("scheduled_at").
			Optional().
			Nillable(),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.Time("updated_at").
			Default(time.Now).
			UpdateDefault(time.Now),
		field.Time("deleted_at").
			Optional().
			Nillable().
			Comment("set by the retention sweep (§9); soft-deleted rows are excluded from normal queries"),
	}
}

// Alarm is a value object embedded in Day.alarms.
type Alarm struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Time        string     `json:"time"` // HH:MM
	DateTime    time.Time  `json:"datetime"`
	Type        string     `json:"type"` // GENTLE, FIRM, LOUD, SIREN, KIOSK, URL
	TriggeredAt *time.Time `json:"triggered_at,omitempty"`
}

// Edges of the Day.
func (Day) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("user", User.Type).
			Ref("days").
			Field("user_id").
			Unique().
			Required().
			Immutable(),
		edge.To("tasks", Task.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}

// Indexes of the Day.
func (Day) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id", "date").
			Unique(),
		index.Fields("status"),
	}
}
