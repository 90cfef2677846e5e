package commands

import (
	"context"
	"fmt"

	"github.com/dayforge/dayforge/ent"
	"github.com/dayforge/dayforge/internal/domain"
	"github.com/dayforge/dayforge/internal/uow"
	"github.com/google/uuid"
)

// CreateAdhocTaskInput is the command's input (§3.3: tasks created outside
// of routine scheduling have no RoutineDefinitionID).
type CreateAdhocTaskInput struct {
	UserID        string
	ScheduledDate string
	Name          string
	Category      string
	Type          string
	Schedule      *domain.TimeWindow
	Tags          []string
}

// CreateAdhocTask materializes a one-off Task for a date that may or may not
// have a Day row yet; the Day's existence is not a precondition (§3.3: adhoc
// tasks survive a day being rescheduled or deleted).
func CreateAdhocTask(ctx context.Context, u *uow.UoW, in CreateAdhocTaskInput) (*domain.Task, error) {
	tx := u.Tx()

	dayID := domain.DayID(in.UserID, in.ScheduledDate)
	t := domain.NewTask(uuid.NewString(), in.UserID, dayID, in.ScheduledDate, in.Name)
	t.Category = in.Category
	t.Type = in.Type
	t.Schedule = in.Schedule
	t.Tags = in.Tags
	t.Touch()

	if err := upsertTask(ctx, tx, t); err != nil {
		return nil, fmt.Errorf("commands: persist adhoc task: %w", err)
	}
	u.Add(t)
	t.MarkPersisted()
	return t, nil
}

// DeleteTaskInput is the command's input.
type DeleteTaskInput struct {
	UserID string
	TaskID string
}

// DeleteTask removes a Task outright (as opposed to RecordAction's
// append-only "punted"/"completed" transitions) and raises
// TaskDeletedEvent so the sync fabric reflects the removal (§4.8).
func DeleteTask(ctx context.Context, u *uow.UoW, in DeleteTaskInput) error {
	tx := u.Tx()

	row, err := tx.Task.Get(ctx, in.TaskID)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil
		}
		return err
	}
	if row.UserID != in.UserID {
		return fmt.Errorf("commands: task %s does not belong to user %s", in.TaskID, in.UserID)
	}

	t := taskFromEnt(row)
	t.MarkDeleted()

	if err := tx.Task.DeleteOneID(in.TaskID).Exec(ctx); err != nil {
		return fmt.Errorf("commands: delete task: %w", err)
	}
	u.Add(t)
	return nil
}
