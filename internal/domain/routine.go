package domain

import "github.com/dayforge/dayforge/internal/events"

// RoutineDefinition is a recurring-task blueprint (spec.md §3.1 calls this
// "Routine / RoutineDefinition" — this module treats them as one aggregate,
// since the spec names no behavior distinguishing a bare "Routine" from its
// definition; see DESIGN.md).
type RoutineDefinition struct {
	Recorder

	ID          string
	UserID      string
	Name        string
	Recurrence  RecurrenceSchedule
	RoutineTasks []RoutineTask
	Active      bool

	isNew bool
}

// NewRoutineDefinition constructs a new active routine definition.
func NewRoutineDefinition(id, userID, name string, recurrence RecurrenceSchedule) *RoutineDefinition {
	return &RoutineDefinition{
		ID:         id,
		UserID:     userID,
		Name:       name,
		Recurrence: recurrence,
		Active:     true,
		isNew:      true,
	}
}

// Touch raises the routine's create-or-update event based on its current
// isNew flag.
func (r *RoutineDefinition) Touch() {
	snap := r.snapshot()
	if r.isNew {
		r.Record(RoutineDefinitionCreatedEvent{Base: events.Base{UID: r.UserID, At: now()}, RoutineID: r.ID, Snapshot: snap})
		return
	}
	r.Record(RoutineDefinitionUpdatedEvent{Base: events.Base{UID: r.UserID, At: now()}, RoutineID: r.ID, Snapshot: snap})
}

// MarkPersisted flips isNew off after the routine's first successful commit.
func (r *RoutineDefinition) MarkPersisted() { r.isNew = false }

func (r *RoutineDefinition) snapshot() entitySnapshot {
	return entitySnapshot{
		"id":            r.ID,
		"user_id":       r.UserID,
		"name":          r.Name,
		"recurrence":    r.Recurrence,
		"routine_tasks": r.RoutineTasks,
		"active":        r.Active,
	}
}
