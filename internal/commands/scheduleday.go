// Package commands implements the transactional intent executors named in
// §2 ("Command Handlers"): schedule day, sync calendar, record task action,
// receive SMS, send push, process brain dump, etc. Each opens a UoW, mutates
// domain aggregates, persists them via the generated ent client, and commits.
package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/dayforge/dayforge/ent"
	"github.com/dayforge/dayforge/ent/day"
	"github.com/dayforge/dayforge/ent/routinedefinition"
	"github.com/dayforge/dayforge/ent/task"
	"github.com/dayforge/dayforge/internal/domain"
	"github.com/dayforge/dayforge/internal/uow"
)

// ScheduleDayInput is the command's input (§4.3).
type ScheduleDayInput struct {
	UserID     string
	Date       string // ISO 8601
	TemplateID *string
}

// ScheduleDay resolves the template, replaces routine-sourced tasks for
// Date, materializes the Day and its preview tasks, and commits.
func ScheduleDay(ctx context.Context, u *uow.UoW, user *domain.User, in ScheduleDayInput) (*domain.Day, error) {
	tx := u.Tx()

	tplID, err := resolveTemplateID(ctx, tx, user, in)
	if err != nil {
		return nil, err
	}
	tplRow, err := tx.DayTemplate.Get(ctx, tplID)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, fmt.Errorf("domain: day template is required to schedule")
		}
		return nil, fmt.Errorf("commands: load template: %w", err)
	}
	tpl := dayTemplateFromEnt(tplRow)

	// Step 3: delete existing routine-sourced tasks for the date; adhoc
	// tasks are untouched (§3.2 adhoc preservation invariant).
	existingRoutineTasks, err := tx.Task.Query().
		Where(
			task.UserID(in.UserID),
			task.ScheduledDate(in.Date),
			task.RoutineDefinitionIDNotNil(),
		).All(ctx)
	if err != nil {
		return nil, fmt.Errorf("commands: load existing routine tasks: %w", err)
	}
	for _, row := range existingRoutineTasks {
		if err := tx.Task.DeleteOne(row).Exec(ctx); err != nil {
			return nil, fmt.Errorf("commands: delete routine task %s: %w", row.ID, err)
		}
	}

	// Step 4: build/load the Day aggregate and schedule() it.
	dayRow, err := tx.Day.Query().Where(day.ID(domain.DayID(in.UserID, in.Date))).Only(ctx)
	var dayAgg *domain.Day
	switch {
	case ent.IsNotFound(err):
		dayAgg = domain.NewDay(in.UserID, in.Date)
	case err != nil:
		return nil, fmt.Errorf("commands: load day: %w", err)
	default:
		dayAgg = dayFromEnt(dayRow)
	}
	if err := dayAgg.Schedule(tpl); err != nil {
		return nil, err
	}
	if err := upsertDay(ctx, tx, dayAgg); err != nil {
		return nil, err
	}
	u.Add(dayAgg)
	dayAgg.MarkPersisted()

	// Step 5: preview tasks from active routine definitions matching Date.
	targetDate, err := time.Parse("2006-01-02", in.Date)
	if err != nil {
		return nil, fmt.Errorf("commands: parse date %q: %w", in.Date, err)
	}
	routines, err := tx.RoutineDefinition.Query().
		Where(routinedefinition.UserID(in.UserID), routinedefinition.Active(true)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("commands: load routine definitions: %w", err)
	}

	for _, r := range routines {
		recurrence := routineRecurrenceFromEnt(r)
		if !recurrence.Matches(targetDate) {
			continue
		}
		for idx, rt := range routineTasksFromEnt(r) {
			taskID := domain.TaskID(in.UserID, in.Date, r.ID, idx)
			t := domain.NewTask(taskID, in.UserID, dayAgg.ID, in.Date, rt.Name)
			t.Category = rt.Category
			t.Type = rt.Type
			t.Schedule = rt.Schedule
			t.Tags = rt.Tags
			rID := r.ID
			t.RoutineDefinitionID = &rID
			t.Touch()
			if err := upsertTask(ctx, tx, t); err != nil {
				return nil, fmt.Errorf("commands: materialize routine task: %w", err)
			}
			u.Add(t)
			t.MarkPersisted()
		}
	}

	return dayAgg, nil
}

func resolveTemplateID(ctx context.Context, tx *ent.Tx, user *domain.User, in ScheduleDayInput) (string, error) {
	if in.TemplateID != nil && *in.TemplateID != "" {
		return *in.TemplateID, nil
	}
	existing, err := tx.Day.Query().Where(day.ID(domain.DayID(in.UserID, in.Date))).Only(ctx)
	if err == nil && existing.TemplateID != nil {
		return *existing.TemplateID, nil
	}
	if err != nil && !ent.IsNotFound(err) {
		return "", fmt.Errorf("commands: load existing day: %w", err)
	}
	date, err := time.Parse("2006-01-02", in.Date)
	if err != nil {
		return "", fmt.Errorf("commands: parse date %q: %w", in.Date, err)
	}
	slug := user.TemplateDefaultFor(int(date.Weekday()))
	if slug == "" {
		return "", fmt.Errorf("domain: day template is required to schedule")
	}
	return domain.DayTemplateID(in.UserID, slug), nil
}
