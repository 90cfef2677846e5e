// Package queries implements the read-side views consumed by the sync
// fabric: the full-day snapshot, the incremental audit-log diff, the task
// risk score, and a day preview used before a ScheduleDay commit.
package queries

import (
	"context"
	"time"

	"github.com/dayforge/dayforge/ent"
	entauditlog "github.com/dayforge/dayforge/ent/auditlog"
	"github.com/dayforge/dayforge/ent/braindumpitem"
	"github.com/dayforge/dayforge/ent/calendarentry"
	"github.com/dayforge/dayforge/ent/message"
	"github.com/dayforge/dayforge/ent/pushnotification"
	"github.com/dayforge/dayforge/ent/routinedefinition"
	"github.com/dayforge/dayforge/ent/task"
	"github.com/dayforge/dayforge/internal/domain"
)

// DayContext is the materialized view a client needs to render a single
// date's UI for one user (§4.8 step 3, GLOSSARY).
type DayContext struct {
	Day               *ent.Day
	Tasks             []*ent.Task
	CalendarEntries   []*ent.CalendarEntry
	Messages          []*ent.Message
	BrainDumps        []*ent.BrainDumpItem
	Routines          []*ent.RoutineDefinition
	PushNotifications []*ent.PushNotification
}

// BuildDayContext assembles the full snapshot for userID/targetDate. The Day
// row itself may be nil if the date has never been scheduled — every other
// collection is independent of Day's existence (§3.3).
func BuildDayContext(ctx context.Context, client *ent.Client, userID, targetDate string, loc *time.Location) (*DayContext, error) {
	dayID := domain.DayID(userID, targetDate)
	dayRow, err := client.Day.Get(ctx, dayID)
	if err != nil && !ent.IsNotFound(err) {
		return nil, err
	}
	if ent.IsNotFound(err) {
		dayRow = nil
	}

	tasks, err := client.Task.Query().
		Where(task.UserID(userID), task.ScheduledDate(targetDate)).
		All(ctx)
	if err != nil {
		return nil, err
	}

	dayStart, dayEnd := dayBounds(targetDate, loc)

	entries, err := client.CalendarEntry.Query().
		Where(calendarentry.UserID(userID), calendarentry.Deleted(false),
			calendarentry.StartsAtGTE(dayStart), calendarentry.StartsAtLT(dayEnd)).
		All(ctx)
	if err != nil {
		return nil, err
	}

	messages, err := client.Message.Query().
		Where(message.UserID(userID), message.CreatedAtGTE(dayStart), message.CreatedAtLT(dayEnd)).
		All(ctx)
	if err != nil {
		return nil, err
	}

	brainDumps, err := client.BrainDumpItem.Query().
		Where(braindumpitem.UserID(userID), braindumpitem.DayDate(targetDate)).
		All(ctx)
	if err != nil {
		return nil, err
	}

	routines, err := client.RoutineDefinition.Query().
		Where(routinedefinition.UserID(userID), routinedefinition.Active(true)).
		All(ctx)
	if err != nil {
		return nil, err
	}

	pushes, err := client.PushNotification.Query().
		Where(pushnotification.UserID(userID), pushnotification.SentAtGTE(dayStart), pushnotification.SentAtLT(dayEnd)).
		All(ctx)
	if err != nil {
		return nil, err
	}

	return &DayContext{
		Day:               dayRow,
		Tasks:             tasks,
		CalendarEntries:   entries,
		Messages:          messages,
		BrainDumps:        brainDumps,
		Routines:          routines,
		PushNotifications: pushes,
	}, nil
}

// LastAuditLogTimestamp returns the occurred_at of the most recent audit log
// for userID, used as the sync cursor handed back with a full DayContext
// (§4.8 step 3).
func LastAuditLogTimestamp(ctx context.Context, client *ent.Client, userID string) (*time.Time, error) {
	row, err := client.AuditLog.Query().
		Where(entauditlog.UserID(userID)).
		Order(ent.Desc(entauditlog.FieldOccurredAt)).
		First(ctx)
	if ent.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ts := row.OccurredAt
	return &ts, nil
}

// dayBounds returns the [start, end) half-open interval of targetDate in loc.
func dayBounds(targetDate string, loc *time.Location) (time.Time, time.Time) {
	d, err := time.ParseInLocation("2006-01-02", targetDate, loc)
	if err != nil {
		d = time.Time{}
	}
	return d, d.AddDate(0, 0, 1)
}
