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

const morningOverviewBucket = 15 * time.Minute

// MorningOverview runs the §4.5.4 per-user job on its 15-minute cron
// cadence: fires once per user-local day, in the 15-minute bucket
// containing their configured morning_overview_time.
func MorningOverview(ctx context.Context, factory *uow.Factory, client *ent.Client, gw commands.LLMGateway, pushGateway commands.PushGateway, userID string, now time.Time) error {
	userRow, err := client.User.Get(ctx, userID)
	if err != nil {
		return err
	}
	user := commands.UserFromEnt(userRow)
	loc, err := time.LoadLocation(user.Timezone)
	if err != nil {
		loc = time.UTC
	}
	nowLocal := now.In(loc)

	if !inConfiguredBucket(user.MorningOverviewTime, nowLocal) {
		return nil
	}

	today := nowLocal.Format("2006-01-02")
	dayStart := time.Date(nowLocal.Year(), nowLocal.Month(), nowLocal.Day(), 0, 0, 0, 0, loc)

	sentToday, err := client.PushNotification.Query().
		Where(pushnotification.UserID(userID), pushnotification.TriggeredBy("morning_overview:"+today), pushnotification.SentAtGTE(dayStart)).
		Exist(ctx)
	if err != nil {
		return err
	}
	if sentToday {
		return nil
	}

	promptCtx, err := queries.BuildLLMPromptContext(ctx, client, userID, today, loc, 30, now)
	if err != nil {
		return err
	}

	var overview string
	tool := llmusecase.OverviewTool(&overview)

	snapshot, err := llmusecase.Run(ctx, gw, llmusecase.Request{
		Provider:      user.PreferredLLMProvider,
		SystemPrompt:  "You write a short, friendly morning overview of the user's day.",
		ContextPrompt: dayContextSummary(promptCtx),
		AskPrompt:     fmt.Sprintf("Summarize %s for the user in two or three sentences.", today),
		ToolsPrompt:   "Call render_overview exactly once with the finished message.",
		Tools:         []llmusecase.ToolCallback{tool},
	}, now)
	if err != nil {
		return err
	}
	if overview == "" {
		return nil
	}

	u, err := factory.New(ctx, userID)
	if err != nil {
		return err
	}
	_, err = commands.SendPushNotification(ctx, u, pushGateway, commands.SendPushNotificationInput{
		UserID:      userID,
		TriggeredBy: "morning_overview:" + today,
		Content:     overview,
		LLMSnapshot: &snapshot,
	})
	if err != nil {
		_ = u.Rollback()
		return err
	}
	return u.Commit()
}

// inConfiguredBucket reports whether nowLocal falls in the 15-minute bucket
// containing the user's configured "HH:MM" morning_overview_time.
func inConfiguredBucket(configured string, nowLocal time.Time) bool {
	var hh, mm int
	if _, err := fmt.Sscanf(configured, "%d:%d", &hh, &mm); err != nil {
		return false
	}
	target := time.Date(nowLocal.Year(), nowLocal.Month(), nowLocal.Day(), hh, mm, 0, 0, nowLocal.Location())
	bucketStart := target.Truncate(morningOverviewBucket)
	nowBucket := nowLocal.Truncate(morningOverviewBucket)
	return bucketStart.Equal(nowBucket)
}
