package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// DayTemplate holds the schema definition for the DayTemplate entity.
// Identity is deterministic: UUID5(user_id, slug).
type DayTemplate struct {
	ent.Schema
}

// Fields of the DayTemplate.
func (DayTemplate) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable().
			Comment("UUID5(user_id, slug)"),
		field.String("user_id").
			Immutable(),
		field.String("slug"),
		field.String("start_time").
			Optional().
			Nillable().
			Comment("HH:MM"),
		field.String("end_time").
			Optional().
			Nillable().
			Comment("HH:MM"),
		field.JSON("routine_definition_ids", []string{}).
			Optional(),
		field.JSON("time_blocks", []TimeBlock{}).
			Optional(),
		field.JSON("high_level_plan", HighLevelPlan{}).
			Optional(),
	}
}

// TimeBlock is an ordered, named, typed interval in a day template.
type TimeBlock struct {
	TimeBlockDefID string `json:"time_block_def_id"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	Name           string `json:"name"`
}

// HighLevelPlan is the template's plan intentions block, copied verbatim
// onto a Day by schedule().
type HighLevelPlan struct {
	Title       string   `json:"title"`
	Text        string   `json:"text"`
	Intentions  []string `json:"intentions"`
}

// Edges of the DayTemplate.
func (DayTemplate) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("user", User.Type).
			Ref("day_templates").
			Field("user_id").
			Unique().
			Required().
			Immutable(),
	}
}

// Indexes of the DayTemplate.
func (DayTemplate) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id", "slug").
			Unique(),
	}
}
