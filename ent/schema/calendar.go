package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Calendar holds the schema definition for a connected external calendar
// (one per platform account a user has linked).
type Calendar struct {
	ent.Schema
}

// Fields of the Calendar.
func (Calendar) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("user_id").
			Immutable(),
		field.String("platform").
			Comment("e.g. google"),
		field.JSON("auth_token", AuthToken{}).
			Optional(),
		field.String("sync_token").
			Optional().
			Nillable(),
		field.Time("last_sync_at").
			Optional().
			Nillable(),
		field.Bool("needs_reauth").
			Default(false),
	}
}

// AuthToken is the stored OAuth-style credential for a Calendar.
// Refresh/exchange mechanics live behind CalendarGateway; this is only the
// persisted shape.
type AuthToken struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Edges of the Calendar.
func (Calendar) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("user", User.Type).
			Ref("calendars").
			Field("user_id").
			Unique().
			Required().
			Immutable(),
		edge.To("series", CalendarEntrySeries.Type),
		edge.To("entries", CalendarEntry.Type),
	}
}

// Indexes of the Calendar.
func (Calendar) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id", "platform").
			Unique(),
	}
}
