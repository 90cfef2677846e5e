package llmusecase

import (
	"context"
	"fmt"
	"time"

	"github.com/dayforge/dayforge/ent"
	"github.com/dayforge/dayforge/internal/commands"
	"github.com/dayforge/dayforge/internal/queries"
	"github.com/dayforge/dayforge/internal/uow"
)

// ProcessBrainDumpItem runs the §4.6 LLM use case against a single pending
// brain-dump note: the note either becomes a task (create_task) or the LLM
// declines (no_action). Either way the item is marked processed with the
// run's snapshot attached; a gateway error marks it failed instead so the
// worker doesn't retry forever against a broken provider.
func ProcessBrainDumpItem(ctx context.Context, factory *uow.Factory, client *ent.Client, gw commands.LLMGateway, userID, dayDate, itemID string, now time.Time) error {
	userRow, err := client.User.Get(ctx, userID)
	if err != nil {
		return err
	}
	user := commands.UserFromEnt(userRow)

	loc, err := time.LoadLocation(user.Timezone)
	if err != nil {
		loc = time.UTC
	}
	promptCtx, err := queries.BuildLLMPromptContext(ctx, client, userID, dayDate, loc, 30, now)
	if err != nil {
		return err
	}

	itemRow, err := client.BrainDumpItem.Get(ctx, itemID)
	if err != nil {
		return err
	}

	var declined bool

	u, err := factory.New(ctx, userID)
	if err != nil {
		return err
	}

	createTool := CreateTaskTool(func(ctx context.Context, name, category, taskType, scheduledDate string) (string, error) {
		t, err := commands.CreateAdhocTask(ctx, u, commands.CreateAdhocTaskInput{
			UserID:        userID,
			ScheduledDate: scheduledDate,
			Name:          name,
			Category:      category,
			Type:          taskType,
		})
		if err != nil {
			return "", err
		}
		return t.ID, nil
	})
	noActionTool := NoActionTool(&declined)

	snapshot, runErr := Run(ctx, gw, Request{
		Provider:      user.PreferredLLMProvider,
		SystemPrompt:  "You triage a user's free-form brain dump note into at most one scheduled task.",
		ContextPrompt: brainDumpContextPrompt(promptCtx),
		AskPrompt:     fmt.Sprintf("Brain dump note: %q. Today is %s.", itemRow.Content, dayDate),
		ToolsPrompt:   "Call create_task if the note describes something to do, otherwise call no_action.",
		Tools:         []ToolCallback{createTool, noActionTool},
	}, now)

	if runErr != nil {
		_ = u.Rollback()
		u2, err := factory.New(ctx, userID)
		if err != nil {
			return err
		}
		_, err = commands.CompleteBrainDumpTriage(ctx, u2, commands.CompleteBrainDumpTriageInput{
			UserID: userID, ItemID: itemID, Succeeded: false, Snapshot: nil,
		})
		if err != nil {
			_ = u2.Rollback()
			return err
		}
		return u2.Commit()
	}

	_, err = commands.CompleteBrainDumpTriage(ctx, u, commands.CompleteBrainDumpTriageInput{
		UserID: userID, ItemID: itemID, Succeeded: true, Snapshot: &snapshot,
	})
	if err != nil {
		_ = u.Rollback()
		return err
	}
	return u.Commit()
}

func brainDumpContextPrompt(ctx *queries.LLMPromptContext) string {
	if ctx == nil || ctx.Day == nil || ctx.Day.Day == nil {
		return "No existing day context."
	}
	return fmt.Sprintf("%d existing tasks, %d calendar entries scheduled today.",
		len(ctx.Day.Tasks), len(ctx.Day.CalendarEntries))
}
