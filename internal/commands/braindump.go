package commands

import (
	"context"
	"fmt"

	"github.com/dayforge/dayforge/ent"
	"github.com/dayforge/dayforge/internal/domain"
	"github.com/dayforge/dayforge/internal/uow"
	"github.com/google/uuid"
)

// CreateBrainDumpItemInput is the command's input (supplemented feature:
// the original source's free-form capture workflow).
type CreateBrainDumpItemInput struct {
	UserID  string
	DayDate string
	Content string
}

// CreateBrainDumpItem persists a pending note and defers its LLM triage run.
func CreateBrainDumpItem(ctx context.Context, u *uow.UoW, in CreateBrainDumpItemInput) (*domain.BrainDumpItem, error) {
	tx := u.Tx()

	b := domain.NewBrainDumpItem(uuid.NewString(), in.UserID, in.DayDate, in.Content)
	b.Touch()
	if err := upsertBrainDumpItem(ctx, tx, b); err != nil {
		return nil, fmt.Errorf("commands: persist brain dump item: %w", err)
	}
	u.Add(b)
	b.MarkPersisted()
	u.Workers().ScheduleProcessBrainDumpItem(in.UserID, in.DayDate, b.ID)
	return b, nil
}

// CompleteBrainDumpTriageInput carries the terminal outcome of an LLM triage
// run (assembled by the llmusecase package) back to persistence.
type CompleteBrainDumpTriageInput struct {
	UserID    string
	ItemID    string
	Succeeded bool
	Snapshot  *domain.LLMRunResultSnapshot
}

// CompleteBrainDumpTriage marks the item processed or failed with the run's
// snapshot attached for reproducibility (§4.6).
func CompleteBrainDumpTriage(ctx context.Context, u *uow.UoW, in CompleteBrainDumpTriageInput) (*domain.BrainDumpItem, error) {
	tx := u.Tx()

	row, err := tx.BrainDumpItem.Get(ctx, in.ItemID)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, fmt.Errorf("commands: brain dump item %s not found", in.ItemID)
		}
		return nil, err
	}
	if row.UserID != in.UserID {
		return nil, fmt.Errorf("commands: brain dump item %s does not belong to user %s", in.ItemID, in.UserID)
	}

	b := brainDumpItemFromEnt(row)
	if in.Succeeded {
		b.MarkProcessed(in.Snapshot)
	} else {
		b.MarkFailed(in.Snapshot)
	}

	if err := upsertBrainDumpItem(ctx, tx, b); err != nil {
		return nil, fmt.Errorf("commands: persist brain dump triage outcome: %w", err)
	}
	u.Add(b)
	return b, nil
}
