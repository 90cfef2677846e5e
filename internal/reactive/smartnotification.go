package reactive

import (
	"context"
	"fmt"
	"time"

	"github.com/dayforge/dayforge/ent"
	"github.com/dayforge/dayforge/ent/pushnotification"
	"github.com/dayforge/dayforge/internal/commands"
	"github.com/dayforge/dayforge/internal/llmusecase"
	"github.com/dayforge/dayforge/internal/queries"
	"github.com/dayforge/dayforge/internal/uow"
)

const smartNotificationCooldown = 10 * time.Minute

// SmartNotification runs the §4.5.3 per-user job on the :00/:19/:20/:30/:50
// cron cadence: an LLM use case decides whether the moment calls for a
// notification. A low-priority decision is treated the same as
// should_notify=false — only normal/high priority actually sends.
func SmartNotification(ctx context.Context, factory *uow.Factory, client *ent.Client, gw commands.LLMGateway, pushGateway commands.PushGateway, enabled bool, userID string, now time.Time) error {
	if !enabled {
		return nil
	}

	recent, err := client.PushNotification.Query().
		Where(pushnotification.UserID(userID), pushnotification.SentAtGTE(now.Add(-smartNotificationCooldown))).
		Exist(ctx)
	if err != nil {
		return err
	}
	if recent {
		return nil
	}

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

	promptCtx, err := queries.BuildLLMPromptContext(ctx, client, userID, today, loc, 30, now)
	if err != nil {
		return err
	}

	var decision llmusecase.Decision
	tool := llmusecase.DecideNotificationTool(&decision)

	_, err = llmusecase.Run(ctx, gw, llmusecase.Request{
		Provider:      user.PreferredLLMProvider,
		SystemPrompt:  "You decide, moment to moment, whether this user needs a proactive nudge.",
		ContextPrompt: dayContextSummary(promptCtx),
		AskPrompt:     "Should the user be notified right now? Prefer silence unless something is actionable.",
		ToolsPrompt:   "Call decide_notification exactly once.",
		Tools:         []llmusecase.ToolCallback{tool},
	}, now)
	if err != nil {
		return err
	}

	if !decision.ShouldNotify || decision.Priority == "low" {
		return nil
	}

	u, err := factory.New(ctx, userID)
	if err != nil {
		return err
	}
	_, err = commands.SendPushNotification(ctx, u, pushGateway, commands.SendPushNotificationInput{
		UserID:      userID,
		TriggeredBy: "smart_notification:" + now.Format(time.RFC3339),
		Content:     decision.Message,
	})
	if err != nil {
		_ = u.Rollback()
		return err
	}
	return u.Commit()
}

func dayContextSummary(pc *queries.LLMPromptContext) string {
	if pc == nil || pc.Day == nil || pc.Day.Day == nil {
		return "No day context available."
	}
	atRisk := 0
	for _, r := range pc.TaskRisks {
		if r.Score > 0 {
			atRisk++
		}
	}
	return fmt.Sprintf("%d tasks today (%d at risk), %d calendar entries, %d unprocessed brain dumps.",
		len(pc.Day.Tasks), atRisk, len(pc.Day.CalendarEntries), len(pc.Day.BrainDumps))
}
