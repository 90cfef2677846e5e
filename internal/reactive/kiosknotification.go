package reactive

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/dayforge/dayforge/ent"
	"github.com/dayforge/dayforge/internal/commands"
	"github.com/dayforge/dayforge/internal/llmusecase"
	"github.com/dayforge/dayforge/internal/pubsub"
	"github.com/dayforge/dayforge/internal/queries"
)

// KioskNotification runs the §4.5.6 per-user job, identical in shape to
// SmartNotification but for the kiosk display: a positive decision is
// published verbatim to the kiosk channel rather than going through
// PushNotification/web-push.
func KioskNotification(ctx context.Context, client *ent.Client, gw commands.LLMGateway, publisher pubsub.Publisher, enabled bool, userID string, now time.Time) error {
	if !enabled {
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
		SystemPrompt:  "You decide whether to show something on the user's kiosk display right now.",
		ContextPrompt: dayContextSummary(promptCtx),
		AskPrompt:     "Should the kiosk show a message right now?",
		ToolsPrompt:   "Call decide_notification exactly once.",
		Tools:         []llmusecase.ToolCallback{tool},
	}, now)
	if err != nil {
		return err
	}

	if !decision.ShouldNotify || decision.Priority == "low" {
		return nil
	}

	sum := sha256.Sum256([]byte(decision.Message))
	payload := pubsub.KioskPayload{
		Message:     decision.Message,
		Priority:    decision.Priority,
		MessageHash: hex.EncodeToString(sum[:]),
	}
	return publisher.PublishKioskNotification(ctx, userID, payload)
}
