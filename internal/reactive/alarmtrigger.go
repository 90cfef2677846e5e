// Package reactive implements the per-user cron-triggered handlers (§4.5):
// alarm trigger, calendar-entry notifications, smart notification, morning
// overview, and kiosk notification, plus the AlarmTriggeredEvent ->
// transport dispatch that runs downstream of them.
package reactive

import (
	"context"
	"time"

	"github.com/dayforge/dayforge/ent"
	"github.com/dayforge/dayforge/internal/commands"
	"github.com/dayforge/dayforge/internal/domain"
	"github.com/dayforge/dayforge/internal/uow"
)

// AlarmTrigger runs the §4.5.1 per-user job: load today's Day in the user's
// timezone, fire every Alarm whose datetime has passed, and stage the
// resulting AlarmTriggeredEvent(s) for commit. A downstream
// AlarmDispatchHandler (registered on the event dispatcher) turns each
// event into an actual push/SMS/kiosk send.
func AlarmTrigger(ctx context.Context, factory *uow.Factory, client *ent.Client, userID string, now time.Time) error {
	userRow, err := client.User.Get(ctx, userID)
	if err != nil {
		return err
	}
	user := commands.UserFromEnt(userRow)
	loc, err := time.LoadLocation(user.Timezone)
	if err != nil {
		loc = time.UTC
	}
	today := now.In(loc).Format("2006-01-02")

	dayRow, err := client.Day.Get(ctx, domain.DayID(userID, today))
	if ent.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}

	day := commands.DayFromEnt(dayRow)
	due := day.DueAlarms(now)
	if len(due) == 0 {
		return nil
	}

	u, err := factory.New(ctx, userID)
	if err != nil {
		return err
	}
	for _, alarm := range due {
		day.TriggerAlarm(alarm.ID, now)
	}
	if err := commands.PersistDay(ctx, u.Tx(), day); err != nil {
		_ = u.Rollback()
		return err
	}
	u.Add(day)
	return u.Commit()
}
