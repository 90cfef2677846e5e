package commands

import (
	"context"
	"fmt"

	"github.com/dayforge/dayforge/ent"
	"github.com/dayforge/dayforge/ent/schema"
	"github.com/dayforge/dayforge/internal/domain"
	"github.com/dayforge/dayforge/internal/uow"
)

// RecordTaskActionInput is the command's input.
type RecordTaskActionInput struct {
	UserID     string
	TaskID     string
	ActionType string // e.g. "started", "snoozed", "completed", "punted"
	Note       string
}

// RecordTaskAction loads the Task, appends the action, and persists the
// resulting status/action-log change. Ownership is enforced by scoping the
// lookup to UserID (§3.2).
func RecordTaskAction(ctx context.Context, u *uow.UoW, in RecordTaskActionInput) (*domain.Task, error) {
	tx := u.Tx()

	row, err := tx.Task.Get(ctx, in.TaskID)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, fmt.Errorf("commands: task %s not found", in.TaskID)
		}
		return nil, fmt.Errorf("commands: load task: %w", err)
	}
	if row.UserID != in.UserID {
		return nil, fmt.Errorf("commands: task %s does not belong to user %s", in.TaskID, in.UserID)
	}

	t := taskFromEnt(row)
	t.RecordAction(in.ActionType, in.Note)

	if err := upsertTask(ctx, tx, t); err != nil {
		return nil, fmt.Errorf("commands: persist task action: %w", err)
	}
	u.Add(t)
	return t, nil
}

func taskFromEnt(row *ent.Task) *domain.Task {
	return &domain.Task{
		ID:                  row.ID,
		UserID:              row.UserID,
		DayID:               row.DayID,
		ScheduledDate:       row.ScheduledDate,
		Name:                row.Name,
		Status:              domain.TaskStatus(row.Status),
		Category:            row.Category,
		Type:                row.Type,
		Frequency:           domain.TaskFrequency(row.Frequency),
		Schedule:            timeWindowFromEnt(row.Schedule),
		RoutineDefinitionID: row.RoutineDefinitionID,
		Tags:                row.Tags,
		Actions:             taskActionsFromEnt(row.Actions),
		CompletedAt:         row.CompletedAt,
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
	}
}

func taskActionsFromEnt(in []schema.TaskAction) []domain.TaskAction {
	out := make([]domain.TaskAction, len(in))
	for i, a := range in {
		out[i] = domain.TaskAction{Type: a.Type, OccurredAt: a.OccurredAt, Note: a.Note}
	}
	return out
}

// TaskFromEnt exposes taskFromEnt to other internal packages (the timing
// status evaluator loads rows directly rather than through a command).
func TaskFromEnt(row *ent.Task) *domain.Task { return taskFromEnt(row) }

// PersistTask exposes upsertTask to other internal packages.
func PersistTask(ctx context.Context, tx *ent.Tx, t *domain.Task) error { return upsertTask(ctx, tx, t) }
