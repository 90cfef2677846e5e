package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// CalendarEntrySeries holds the schema definition for a recurring calendar
// series. Identity is deterministic: UUID5(platform, series_platform_id).
type CalendarEntrySeries struct {
	ent.Schema
}

// Fields of the CalendarEntrySeries.
func (CalendarEntrySeries) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable().
			Comment("UUID5(platform, series_platform_id)"),
		field.String("user_id").
			Immutable(),
		field.String("calendar_id").
			Immutable(),
		field.String("platform").
			Immutable(),
		field.String("series_platform_id").
			Immutable(),
		field.String("name"),
		field.Enum("frequency").
			Values("DAILY", "WEEKLY", "MONTHLY", "ONE_OFF").
			Default("ONE_OFF"),
		field.String("event_category").
			Optional(),
		field.JSON("recurrence", RecurrenceSchedule{}).
			Optional(),
		field.Time("starts_at"),
		field.Time("ends_at").
			Optional().
			Nillable(),
	}
}

// Edges of the CalendarEntrySeries.
func (CalendarEntrySeries) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("calendar", Calendar.Type).
			Ref("series").
			Field("calendar_id").
			Unique().
			Required().
			Immutable(),
		edge.To("entries", CalendarEntry.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}

// Indexes of the CalendarEntrySeries.
func (CalendarEntrySeries) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("platform", "series_platform_id").
			Unique(),
		index.Fields("calendar_id"),
	}
}
