package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// CalendarEntry holds the schema definition for a single occurrence
// projected from an external calendar.
type CalendarEntry struct {
	ent.Schema
}

// Fields of the CalendarEntry.
func (CalendarEntry) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("user_id").
			Immutable(),
		field.String("calendar_id").
			Immutable(),
		field.String("platform").
			Immutable(),
		field.String("platform_id").
			Immutable(),
		field.String("series_id").
			Optional().
			Nillable().
			Comment("nullable reference to CalendarEntrySeries.id"),
		field.String("name"),
		field.String("event_category").
			Optional(),
		field.Enum("frequency").
			Values("DAILY", "WEEKLY", "MONTHLY", "ONE_OFF").
			Default("ONE_OFF"),
		field.Time("starts_at"),
		field.Time("ends_at"),
		field.Enum("attendance_status").
			Values("GOING", "NOT_GOING", "TENTATIVE", "UNKNOWN").
			Default("UNKNOWN"),
		field.Bool("deleted").
			Default(false),
	}
}

// Edges of the CalendarEntry.
func (CalendarEntry) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("calendar", Calendar.Type).
			Ref("entries").
			Field("calendar_id").
			Unique().
			Required().
			Immutable(),
		edge.From("series", CalendarEntrySeries.Type).
			Ref("entries").
			Field("series_id").
			Unique(),
	}
}

// Indexes of the CalendarEntry.
func (CalendarEntry) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("platform", "platform_id").
			Unique(),
		index.Fields("user_id", "starts_at"),
		index.Fields("series_id"),
	}
}
