package domain

import (
	"errors"
	"time"

	"github.com/dayforge/dayforge/internal/events"
)

// DayStatus enumerates the Day state machine (§3.1).
type DayStatus string

const (
	DayUnscheduled DayStatus = "UNSCHEDULED"
	DayScheduled   DayStatus = "SCHEDULED"
	DayInProgress  DayStatus = "IN_PROGRESS"
	DayComplete    DayStatus = "COMPLETE"
)

// ErrInvalidDayTransition is returned when a Day operation is attempted from
// a status that cannot legally reach the target status (§3.1 invariant).
var ErrInvalidDayTransition = errors.New("domain: invalid day status transition")

// Day is the aggregate root for a single calendar date belonging to one
// user. Its identity is deterministic (DayID) so any process can address it
// without a prior lookup.
type Day struct {
	Recorder

	ID            string
	UserID        string
	Date          string // immutable ISO 8601 date
	Status        DayStatus
	TemplateID    *string
	TimeBlocks    []TimeBlock
	HighLevelPlan HighLevelPlan
	Alarms        []Alarm
	Tags          []string
	ScheduledAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	isNew bool
}

// NewDay constructs an UNSCHEDULED Day for userID/date, ready to be scheduled.
// Callers that load an existing row should populate the struct directly
// rather than calling NewDay (isNew stays false so subsequent mutations are
// treated as updates, not creations — §9 open question on create-vs-update).
func NewDay(userID, date string) *Day {
	ts := now()
	return &Day{
		ID:        DayID(userID, date),
		UserID:    userID,
		Date:      date,
		Status:    DayUnscheduled,
		CreatedAt: ts,
		UpdatedAt: ts,
		isNew:     true,
	}
}

// Schedule materializes tpl onto the Day: copies time_blocks and
// high_level_plan verbatim, sets TemplateID, and advances status to
// SCHEDULED. Calling Schedule again on an already-SCHEDULED day (same or
// different template) is legal and simply re-copies — the resulting event is
// DayUpdatedEvent, not DayCreatedEvent, because creation already committed
// (§4.3 edge cases).
func (d *Day) Schedule(tpl *DayTemplate) error {
	if tpl == nil {
		return errors.New("domain: day template is required to schedule")
	}
	switch d.Status {
	case DayUnscheduled, DayScheduled:
	default:
		return ErrInvalidDayTransition
	}

	id := tpl.ID
	d.TemplateID = &id
	d.TimeBlocks = append([]TimeBlock(nil), tpl.TimeBlocks...)
	d.HighLevelPlan = tpl.HighLevelPlan
	d.Status = DayScheduled
	ts := now()
	d.ScheduledAt = &ts
	d.UpdatedAt = ts
	d.raiseMutationEvent()
	return nil
}

// Unschedule reverts the Day to UNSCHEDULED, clearing its copied template
// state. Only legal from SCHEDULED.
func (d *Day) Unschedule() error {
	if d.Status != DayScheduled {
		return ErrInvalidDayTransition
	}
	d.Status = DayUnscheduled
	d.TemplateID = nil
	d.TimeBlocks = nil
	d.HighLevelPlan = HighLevelPlan{}
	d.ScheduledAt = nil
	d.UpdatedAt = now()
	d.raiseMutationEvent()
	return nil
}

// Begin transitions a SCHEDULED Day to IN_PROGRESS.
func (d *Day) Begin() error {
	if d.Status != DayScheduled {
		return ErrInvalidDayTransition
	}
	d.Status = DayInProgress
	d.UpdatedAt = now()
	d.raiseMutationEvent()
	return nil
}

// Complete transitions an IN_PROGRESS (or already-SCHEDULED, for days with no
// explicit Begin) Day to COMPLETE.
func (d *Day) Complete() error {
	switch d.Status {
	case DayScheduled, DayInProgress:
	default:
		return ErrInvalidDayTransition
	}
	d.Status = DayComplete
	d.UpdatedAt = now()
	d.raiseMutationEvent()
	return nil
}

// TriggerAlarm marks the Alarm with id as fired as of ts and records an
// AlarmTriggeredEvent. Returns false if no matching untriggered alarm exists.
func (d *Day) TriggerAlarm(alarmID string, ts time.Time) bool {
	for i := range d.Alarms {
		a := &d.Alarms[i]
		if a.ID != alarmID || a.TriggeredAt != nil {
			continue
		}
		a.TriggeredAt = &ts
		d.UpdatedAt = now()
		d.Record(AlarmTriggeredEvent{
			Base:      events.Base{UID: d.UserID, At: now()},
			DayIDVal:  d.ID,
			AlarmID:   a.ID,
			AlarmType: a.Type,
			Snapshot:  d.snapshot(),
		})
		return true
	}
	return false
}

// DueAlarms returns every alarm whose DateTime has passed asOf and that has
// not yet triggered (§4.5.1).
func (d *Day) DueAlarms(asOf time.Time) []Alarm {
	var due []Alarm
	for _, a := range d.Alarms {
		if a.TriggeredAt == nil && !a.DateTime.After(asOf) {
			due = append(due, a)
		}
	}
	return due
}

// EmitSyntheticKioskAlarm records an AlarmTriggeredEvent for a KIOSK_ALARM
// calendar-entry reminder without persisting an Alarm value object on the
// Day, per §4.5.2's "do not persist an Alarm on the Day" instruction.
func (d *Day) EmitSyntheticKioskAlarm(alarmID string) {
	d.Record(AlarmTriggeredEvent{
		Base:      events.Base{UID: d.UserID, At: now()},
		DayIDVal:  d.ID,
		AlarmID:   alarmID,
		AlarmType: AlarmKiosk,
		Snapshot:  d.snapshot(),
	})
}

// MarkPersisted flips isNew off after the Day's first successful commit so
// subsequent mutations raise DayUpdatedEvent instead of DayCreatedEvent.
func (d *Day) MarkPersisted() { d.isNew = false }

// IsNew reports whether this Day has never been committed.
func (d *Day) IsNew() bool { return d.isNew }

func (d *Day) raiseMutationEvent() {
	snap := d.snapshot()
	if d.isNew {
		d.Record(DayCreatedEvent{
			Base:     events.Base{UID: d.UserID, At: now()},
			DayIDVal: d.ID,
			Snapshot: snap,
		})
		return
	}
	d.Record(DayUpdatedEvent{
		Base:     events.Base{UID: d.UserID, At: now()},
		DayIDVal: d.ID,
		Snapshot: snap,
	})
}

func (d *Day) snapshot() entitySnapshot {
	return entitySnapshot{
		"id":              d.ID,
		"user_id":         d.UserID,
		"date":            d.Date,
		"status":          d.Status,
		"template_id":     d.TemplateID,
		"time_blocks":     d.TimeBlocks,
		"high_level_plan": d.HighLevelPlan,
		"alarms":          d.Alarms,
		"tags":            d.Tags,
		"scheduled_at":    d.ScheduledAt,
		"updated_at":      d.UpdatedAt,
	}
}
