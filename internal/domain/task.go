package domain

import (
	"time"

	"github.com/dayforge/dayforge/internal/events"
)

// TaskStatus enumerates a Task's lifecycle (§3.1).
type TaskStatus string

const (
	TaskNotStarted TaskStatus = "NOT_STARTED"
	TaskReady      TaskStatus = "READY"
	TaskNotReady   TaskStatus = "NOT_READY"
	TaskPending    TaskStatus = "PENDING"
	TaskPunted     TaskStatus = "PUNTED"
	TaskComplete   TaskStatus = "COMPLETE"
)

// TaskFrequency enumerates how often a routine-sourced Task recurs; adhoc
// tasks default to ONE_OFF.
type TaskFrequency string

const (
	FrequencyDaily   TaskFrequency = "DAILY"
	FrequencyWeekly  TaskFrequency = "WEEKLY"
	FrequencyMonthly TaskFrequency = "MONTHLY"
	FrequencyOneOff  TaskFrequency = "ONE_OFF"
)

// Task belongs to a Day via ScheduledDate (and DayID once the Day exists).
type Task struct {
	Recorder

	ID                  string
	UserID              string
	DayID               string
	ScheduledDate       string
	Name                string
	Status              TaskStatus
	Category            string
	Type                string
	Frequency           TaskFrequency
	Schedule            *TimeWindow
	RoutineDefinitionID *string // nil => adhoc
	Tags                []string
	Actions             []TaskAction
	CompletedAt         *time.Time
	LLMRunResult        *LLMRunResultSnapshot
	CreatedAt           time.Time
	UpdatedAt           time.Time

	isNew bool
}

// NewTask constructs a new, not-yet-persisted Task.
func NewTask(id, userID, dayID, scheduledDate, name string) *Task {
	ts := now()
	return &Task{
		ID:            id,
		UserID:        userID,
		DayID:         dayID,
		ScheduledDate: scheduledDate,
		Name:          name,
		Status:        TaskNotStarted,
		Frequency:     FrequencyOneOff,
		CreatedAt:     ts,
		UpdatedAt:     ts,
		isNew:         true,
	}
}

// IsAdhoc reports whether the task was created outside of routine scheduling.
func (t *Task) IsAdhoc() bool { return t.RoutineDefinitionID == nil }

// RecordAction appends actionType to the Task's action log and, for the
// terminal actions "completed" and "punted", transitions Status and raises
// the corresponding typed event instead of a generic TaskUpdatedEvent so
// downstream risk scoring (§4.5.5) can distinguish them.
func (t *Task) RecordAction(actionType, note string) {
	ts := now()
	t.Actions = append(t.Actions, TaskAction{Type: actionType, OccurredAt: ts, Note: note})
	t.UpdatedAt = ts

	switch actionType {
	case "completed":
		t.Status = TaskComplete
		t.CompletedAt = &ts
		t.raise(func(base events.Base) events.Event {
			return TaskCompletedEvent{Base: base, TaskIDVal: t.ID, Snapshot: t.snapshot()}
		})
	case "punted":
		t.Status = TaskPunted
		t.raise(func(base events.Base) events.Event {
			return TaskPuntedEvent{Base: base, TaskIDVal: t.ID, Snapshot: t.snapshot()}
		})
	default:
		t.raiseMutationEvent()
	}
}

// SetStatus directly sets Status for non-terminal transitions (e.g. READY,
// NOT_READY, PENDING) driven by a command handler rather than an action log
// entry, and raises the standard create/update event.
func (t *Task) SetStatus(s TaskStatus) {
	t.Status = s
	t.UpdatedAt = now()
	t.raiseMutationEvent()
}

// Touch raises the task's create-or-update event based on its current isNew
// flag without otherwise mutating state. Command handlers call this once
// after constructing or editing a task outside of RecordAction/SetStatus
// (e.g. after copying routine-task fields during scheduling).
func (t *Task) Touch() { t.raiseMutationEvent() }

// MarkDeleted raises TaskDeletedEvent ahead of the row's removal. Unlike
// RecordAction's "completed"/"punted" transitions, a deleted task carries no
// terminal status — the row itself is gone.
func (t *Task) MarkDeleted() {
	t.raise(func(base events.Base) events.Event {
		return TaskDeletedEvent{Base: base, TaskIDVal: t.ID}
	})
}

// MarkPersisted flips isNew off after the Task's first successful commit.
func (t *Task) MarkPersisted() { t.isNew = false }

// IsNew reports whether this Task has never been committed.
func (t *Task) IsNew() bool { return t.isNew }

func (t *Task) raiseMutationEvent() {
	if t.isNew {
		t.raise(func(base events.Base) events.Event {
			return TaskCreatedEvent{Base: base, TaskIDVal: t.ID, Snapshot: t.snapshot()}
		})
		return
	}
	t.raise(func(base events.Base) events.Event {
		return TaskUpdatedEvent{Base: base, TaskIDVal: t.ID, Snapshot: t.snapshot()}
	})
}

func (t *Task) raise(build func(events.Base) events.Event) {
	t.Record(build(events.Base{UID: t.UserID, At: now()}))
}

func (t *Task) snapshot() entitySnapshot {
	return entitySnapshot{
		"id":                    t.ID,
		"user_id":               t.UserID,
		"day_id":                t.DayID,
		"scheduled_date":        t.ScheduledDate,
		"name":                  t.Name,
		"status":                t.Status,
		"category":              t.Category,
		"type":                  t.Type,
		"frequency":             t.Frequency,
		"schedule":              t.Schedule,
		"routine_definition_id": t.RoutineDefinitionID,
		"tags":                  t.Tags,
		"completed_at":          t.CompletedAt,
		"updated_at":            t.UpdatedAt,
	}
}
