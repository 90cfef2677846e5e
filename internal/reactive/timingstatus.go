package reactive

import (
	"context"
	"time"

	"github.com/dayforge/dayforge/ent"
	"github.com/dayforge/dayforge/ent/task"
	"github.com/dayforge/dayforge/internal/commands"
	"github.com/dayforge/dayforge/internal/domain"
	"github.com/dayforge/dayforge/internal/uow"
)

// TimingStatus runs the supplemented per-minute evaluator that transitions
// Task.Status between NOT_READY/READY/PENDING based on schedule.TimingType
// and the current time, independent of whether the user has acted on the
// task. Terminal tasks (COMPLETE/PUNTED) are left alone.
func TimingStatus(ctx context.Context, factory *uow.Factory, client *ent.Client, userID string, now time.Time) error {
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

	rows, err := client.Task.Query().Where(task.UserID(userID), task.ScheduledDate(today)).All(ctx)
	if err != nil {
		return err
	}

	var toUpdate []*domain.Task
	for _, row := range rows {
		if row.Status == string(domain.TaskComplete) || row.Status == string(domain.TaskPunted) {
			continue
		}
		t := commands.TaskFromEnt(row)
		next := nextTimingStatus(t, now.In(loc))
		if next == "" || next == t.Status {
			continue
		}
		t.SetStatus(next)
		toUpdate = append(toUpdate, t)
	}
	if len(toUpdate) == 0 {
		return nil
	}

	u, err := factory.New(ctx, userID)
	if err != nil {
		return err
	}
	for _, t := range toUpdate {
		if err := commands.PersistTask(ctx, u.Tx(), t); err != nil {
			_ = u.Rollback()
			return err
		}
		u.Add(t)
	}
	return u.Commit()
}

// nextTimingStatus derives the schedule-driven status for a task that has
// no schedule window at all (FLEXIBLE / nil Schedule) is always READY;
// otherwise it depends on the TimingType.
func nextTimingStatus(t *domain.Task, nowLocal time.Time) domain.TaskStatus {
	if t.Schedule == nil {
		return domain.TaskReady
	}
	start, hasStart := parseClock(t.Schedule.StartTime, nowLocal)
	end, hasEnd := parseClock(t.Schedule.EndTime, nowLocal)

	switch t.Schedule.TimingType {
	case domain.TimingFlexible:
		return domain.TaskReady

	case domain.TimingFixedTime:
		if hasStart && nowLocal.Before(start) {
			return domain.TaskNotReady
		}
		return domain.TaskReady

	case domain.TimingDeadline:
		if hasEnd && !nowLocal.Before(end) {
			return domain.TaskPending
		}
		return domain.TaskReady

	case domain.TimingWindow:
		if hasStart && nowLocal.Before(start) {
			return domain.TaskNotReady
		}
		if hasEnd && !nowLocal.Before(end) {
			return domain.TaskPending
		}
		return domain.TaskReady
	}
	return ""
}

func parseClock(hhmm *string, nowLocal time.Time) (time.Time, bool) {
	if hhmm == nil {
		return time.Time{}, false
	}
	parsed, err := time.ParseInLocation("15:04", *hhmm, nowLocal.Location())
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(nowLocal.Year(), nowLocal.Month(), nowLocal.Day(), parsed.Hour(), parsed.Minute(), 0, 0, nowLocal.Location()), true
}
