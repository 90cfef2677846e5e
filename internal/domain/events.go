package domain

import (
	"time"

	"github.com/dayforge/dayforge/internal/events"
)

// entitySnapshot turns a map of already-JSON-safe fields into the
// AuditLogMeta.EntityData payload (§4.1 step 3). Callers pass nil for
// deletions per the wire-protocol contract (§4.8).
type entitySnapshot map[string]interface{}

// DayCreatedEvent is raised the first time a Day aggregate is persisted.
type DayCreatedEvent struct {
	events.Base
	DayIDVal string
	Snapshot entitySnapshot
}

func (e DayCreatedEvent) Type() string                     { return "DayCreatedEvent" }
func (e DayCreatedEvent) EntityID() string                 { return e.DayIDVal }
func (e DayCreatedEvent) EntityType() string                { return "day" }
func (e DayCreatedEvent) EntityData() map[string]interface{} { return e.Snapshot }

// DayUpdatedEvent is raised on every subsequent mutation of a Day aggregate
// (schedule of an already-scheduled day, unschedule, complete, alarm
// mutation).
type DayUpdatedEvent struct {
	events.Base
	DayIDVal string
	Snapshot entitySnapshot
}

func (e DayUpdatedEvent) Type() string                     { return "DayUpdatedEvent" }
func (e DayUpdatedEvent) EntityID() string                 { return e.DayIDVal }
func (e DayUpdatedEvent) EntityType() string                { return "day" }
func (e DayUpdatedEvent) EntityData() map[string]interface{} { return e.Snapshot }

// NewDayEvent is a whole-user signal (not per-entity) emitted by the nightly
// emit-new-day-event cron job (§6.3) so downstream handlers (e.g. morning
// overview priming) know a fresh Day exists. It carries no EntityData and is
// therefore never audited, only dispatched (§6.2 domain-events channel).
type NewDayEvent struct {
	events.Base
	Date string
}

func (e NewDayEvent) Type() string { return "NewDayEvent" }

// AlarmTriggeredEvent is raised when an Alarm's datetime has passed and it
// has not yet fired, or synthesized ad-hoc for a KIOSK_ALARM calendar
// reminder without a persisted Alarm (§4.5.1, §4.5.2).
type AlarmTriggeredEvent struct {
	events.Base
	DayIDVal  string
	AlarmID   string
	AlarmType AlarmType
	Snapshot  entitySnapshot
}

func (e AlarmTriggeredEvent) Type() string                     { return "AlarmTriggeredEvent" }
func (e AlarmTriggeredEvent) EntityID() string                 { return e.DayIDVal }
func (e AlarmTriggeredEvent) EntityType() string                { return "day" }
func (e AlarmTriggeredEvent) EntityData() map[string]interface{} { return e.Snapshot }

// TaskCreatedEvent is raised when a Task is first materialized, whether by
// the Day Scheduler or an adhoc create command.
type TaskCreatedEvent struct {
	events.Base
	TaskIDVal string
	Snapshot  entitySnapshot
}

func (e TaskCreatedEvent) Type() string                     { return "TaskCreatedEvent" }
func (e TaskCreatedEvent) EntityID() string                 { return e.TaskIDVal }
func (e TaskCreatedEvent) EntityType() string                { return "task" }
func (e TaskCreatedEvent) EntityData() map[string]interface{} { return e.Snapshot }

// TaskUpdatedEvent is raised on any Task mutation other than completion,
// punting, or creation (e.g. recording a non-terminal action).
type TaskUpdatedEvent struct {
	events.Base
	TaskIDVal string
	Snapshot  entitySnapshot
}

func (e TaskUpdatedEvent) Type() string                     { return "TaskUpdatedEvent" }
func (e TaskUpdatedEvent) EntityID() string                 { return e.TaskIDVal }
func (e TaskUpdatedEvent) EntityType() string                { return "task" }
func (e TaskUpdatedEvent) EntityData() map[string]interface{} { return e.Snapshot }

// TaskCompletedEvent is raised when a Task transitions to COMPLETE. Task risk
// scoring (§4.5.5) and morning overview both read the audit trail of these
// events to compute completion rates.
type TaskCompletedEvent struct {
	events.Base
	TaskIDVal string
	Snapshot  entitySnapshot
}

func (e TaskCompletedEvent) Type() string                     { return "TaskCompletedEvent" }
func (e TaskCompletedEvent) EntityID() string                 { return e.TaskIDVal }
func (e TaskCompletedEvent) EntityType() string                { return "task" }
func (e TaskCompletedEvent) EntityData() map[string]interface{} { return e.Snapshot }

// TaskPuntedEvent is raised when a Task transitions to PUNTED.
type TaskPuntedEvent struct {
	events.Base
	TaskIDVal string
	Snapshot  entitySnapshot
}

func (e TaskPuntedEvent) Type() string                     { return "TaskPuntedEvent" }
func (e TaskPuntedEvent) EntityID() string                 { return e.TaskIDVal }
func (e TaskPuntedEvent) EntityType() string                { return "task" }
func (e TaskPuntedEvent) EntityData() map[string]interface{} { return e.Snapshot }

// TaskDeletedEvent is raised when a Task is removed — by day re-scheduling
// (routine tasks only) or an explicit delete command (§3.3).
type TaskDeletedEvent struct {
	events.Base
	TaskIDVal string
}

func (e TaskDeletedEvent) Type() string                     { return "TaskDeletedEvent" }
func (e TaskDeletedEvent) EntityID() string                 { return e.TaskIDVal }
func (e TaskDeletedEvent) EntityType() string                { return "task" }
func (e TaskDeletedEvent) EntityData() map[string]interface{} { return nil }

// CalendarEntryCreatedEvent, CalendarEntryUpdatedEvent and
// CalendarEntryDeletedEvent mirror a SyncCalendar upsert/delete onto the
// audit trail (§4.4).
type CalendarEntryCreatedEvent struct {
	events.Base
	EntryID  string
	Snapshot entitySnapshot
}

func (e CalendarEntryCreatedEvent) Type() string                     { return "CalendarEntryCreatedEvent" }
func (e CalendarEntryCreatedEvent) EntityID() string                 { return e.EntryID }
func (e CalendarEntryCreatedEvent) EntityType() string                { return "calendar_entry" }
func (e CalendarEntryCreatedEvent) EntityData() map[string]interface{} { return e.Snapshot }

type CalendarEntryUpdatedEvent struct {
	events.Base
	EntryID  string
	Snapshot entitySnapshot
}

func (e CalendarEntryUpdatedEvent) Type() string                     { return "CalendarEntryUpdatedEvent" }
func (e CalendarEntryUpdatedEvent) EntityID() string                 { return e.EntryID }
func (e CalendarEntryUpdatedEvent) EntityType() string                { return "calendar_entry" }
func (e CalendarEntryUpdatedEvent) EntityData() map[string]interface{} { return e.Snapshot }

type CalendarEntryDeletedEvent struct {
	events.Base
	EntryID string
}

func (e CalendarEntryDeletedEvent) Type() string                     { return "CalendarEntryDeletedEvent" }
func (e CalendarEntryDeletedEvent) EntityID() string                 { return e.EntryID }
func (e CalendarEntryDeletedEvent) EntityType() string                { return "calendar_entry" }
func (e CalendarEntryDeletedEvent) EntityData() map[string]interface{} { return nil }

// CalendarEntrySeriesCreatedEvent and CalendarEntrySeriesUpdatedEvent mirror
// a series-level sync change. The series cascade rule (§4.4.1) emits exactly
// one of the Updated variant per affected series, regardless of how many
// entries it fans out to.
type CalendarEntrySeriesCreatedEvent struct {
	events.Base
	SeriesID string
	Snapshot entitySnapshot
}

func (e CalendarEntrySeriesCreatedEvent) Type() string { return "CalendarEntrySeriesCreatedEvent" }
func (e CalendarEntrySeriesCreatedEvent) EntityID() string { return e.SeriesID }
func (e CalendarEntrySeriesCreatedEvent) EntityType() string { return "calendar_entry_series" }
func (e CalendarEntrySeriesCreatedEvent) EntityData() map[string]interface{} { return e.Snapshot }

type CalendarEntrySeriesUpdatedEvent struct {
	events.Base
	SeriesID string
	Snapshot entitySnapshot
}

func (e CalendarEntrySeriesUpdatedEvent) Type() string { return "CalendarEntrySeriesUpdatedEvent" }
func (e CalendarEntrySeriesUpdatedEvent) EntityID() string { return e.SeriesID }
func (e CalendarEntrySeriesUpdatedEvent) EntityType() string { return "calendar_entry_series" }
func (e CalendarEntrySeriesUpdatedEvent) EntityData() map[string]interface{} { return e.Snapshot }

// MessageCreatedEvent is raised for every inbound or outbound Message.
type MessageCreatedEvent struct {
	events.Base
	MessageID string
	Snapshot  entitySnapshot
}

func (e MessageCreatedEvent) Type() string                     { return "MessageCreatedEvent" }
func (e MessageCreatedEvent) EntityID() string                 { return e.MessageID }
func (e MessageCreatedEvent) EntityType() string                { return "message" }
func (e MessageCreatedEvent) EntityData() map[string]interface{} { return e.Snapshot }

// PushNotificationCreatedEvent is raised for every notification attempt
// (success, skipped, or error), giving the audit trail a record even when no
// push was actually delivered (§4.5.3).
type PushNotificationCreatedEvent struct {
	events.Base
	PushNotificationID string
	Snapshot           entitySnapshot
}

func (e PushNotificationCreatedEvent) Type() string { return "PushNotificationCreatedEvent" }
func (e PushNotificationCreatedEvent) EntityID() string { return e.PushNotificationID }
func (e PushNotificationCreatedEvent) EntityType() string { return "push_notification" }
func (e PushNotificationCreatedEvent) EntityData() map[string]interface{} { return e.Snapshot }

// RoutineDefinitionCreatedEvent and RoutineDefinitionUpdatedEvent are
// whole-user entity events: §4.8.1 always includes them in an incremental
// sync response regardless of target_date, because a routine change can
// affect any future day view.
type RoutineDefinitionCreatedEvent struct {
	events.Base
	RoutineID string
	Snapshot  entitySnapshot
}

func (e RoutineDefinitionCreatedEvent) Type() string { return "RoutineDefinitionCreatedEvent" }
func (e RoutineDefinitionCreatedEvent) EntityID() string { return e.RoutineID }
func (e RoutineDefinitionCreatedEvent) EntityType() string { return "routine_definition" }
func (e RoutineDefinitionCreatedEvent) EntityData() map[string]interface{} { return e.Snapshot }

type RoutineDefinitionUpdatedEvent struct {
	events.Base
	RoutineID string
	Snapshot  entitySnapshot
}

func (e RoutineDefinitionUpdatedEvent) Type() string { return "RoutineDefinitionUpdatedEvent" }
func (e RoutineDefinitionUpdatedEvent) EntityID() string { return e.RoutineID }
func (e RoutineDefinitionUpdatedEvent) EntityType() string { return "routine_definition" }
func (e RoutineDefinitionUpdatedEvent) EntityData() map[string]interface{} { return e.Snapshot }

// BrainDumpItemCreatedEvent and BrainDumpItemUpdatedEvent cover the
// supplemented brain-dump workflow (SPEC_FULL.md §Supplemented Features).
type BrainDumpItemCreatedEvent struct {
	events.Base
	ItemID   string
	Snapshot entitySnapshot
}

func (e BrainDumpItemCreatedEvent) Type() string                     { return "BrainDumpItemCreatedEvent" }
func (e BrainDumpItemCreatedEvent) EntityID() string                 { return e.ItemID }
func (e BrainDumpItemCreatedEvent) EntityType() string                { return "brain_dump_item" }
func (e BrainDumpItemCreatedEvent) EntityData() map[string]interface{} { return e.Snapshot }

type BrainDumpItemUpdatedEvent struct {
	events.Base
	ItemID   string
	Snapshot entitySnapshot
}

func (e BrainDumpItemUpdatedEvent) Type() string                     { return "BrainDumpItemUpdatedEvent" }
func (e BrainDumpItemUpdatedEvent) EntityID() string                 { return e.ItemID }
func (e BrainDumpItemUpdatedEvent) EntityType() string                { return "brain_dump_item" }
func (e BrainDumpItemUpdatedEvent) EntityData() map[string]interface{} { return e.Snapshot }

func now() time.Time { return time.Now().UTC() }

func base(userID string) events.Base {
	return events.Base{UID: userID, At: now()}
}
