package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
)

// User holds the schema definition for the User entity.
type User struct {
	ent.Schema
}

// Fields of the User.
func (User) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("timezone").
			Default("UTC").
			Comment("IANA timezone name, e.g. America/New_York"),
		field.String("phone_number").
			Optional().
			Comment("E.164; required for the §4.5.2 TEXT reminder channel to deliver"),
		field.String("preferred_llm_provider").
			Optional(),
		field.String("morning_overview_time").
			Optional().
			Comment("HH:MM in user timezone"),
		field.JSON("calendar_entry_notification_settings", CalendarEntryNotificationSettings{}).
			Optional(),
		field.JSON("template_defaults", [7]string{}).
			Optional().
			Comment("day-template slug per weekday, Sunday=0"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

// CalendarEntryNotificationSettings is the JSON shape stored on User.
// Kept here (rather than in internal/domain) so ent can reference it
// directly as a field type without an import cycle.
type CalendarEntryNotificationSettings struct {
	Enabled bool                 `json:"enabled"`
	Rules   []CalendarReminderRule `json:"rules"`
}

// CalendarReminderRule is a single {channel, minutes_before} reminder rule.
type CalendarReminderRule struct {
	Channel       string `json:"channel"` // PUSH, TEXT, KIOSK_ALARM
	MinutesBefore int    `json:"minutes_before"`
}

// Edges of the User.
func (User) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("days", Day.Type),
		edge.To("day_templates", DayTemplate.Type),
		edge.To("tasks", Task.Type),
		edge.To("routine_definitions", RoutineDefinition.Type),
		edge.To("calendars", Calendar.Type),
		edge.To("messages", Message.Type),
		edge.To("push_subscriptions", PushSubscription.Type),
		edge.To("push_notifications", PushNotification.Type),
		edge.To("audit_logs", AuditLog.Type),
		edge.To("brain_dump_items", BrainDumpItem.Type),
	}
}
