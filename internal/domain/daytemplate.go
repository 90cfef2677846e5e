package domain

// DayTemplate is the reusable per-weekday blueprint a Day is scheduled from.
// It has no interesting state machine of its own; its id is deterministic so
// it can be referenced before it is ever persisted.
type DayTemplate struct {
	Recorder

	ID                 string
	UserID             string
	Slug               string
	StartTime          *string
	EndTime            *string
	RoutineDefinitionIDs []string
	TimeBlocks         []TimeBlock
	HighLevelPlan      HighLevelPlan
}

// NewDayTemplate constructs a template with its deterministic identity.
func NewDayTemplate(userID, slug string) *DayTemplate {
	return &DayTemplate{
		ID:     DayTemplateID(userID, slug),
		UserID: userID,
		Slug:   slug,
	}
}
