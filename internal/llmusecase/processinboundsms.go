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

// ProcessInboundSMSMessage runs the §4.5/§9 inbound-SMS triage use case
// (original source: process_inbound_sms.py): the LLM classifies a just-
// received SMS and may reply, create a task, or update an existing one. The
// inbound message's LLM run result is recorded regardless of which tool (if
// any) fired, for audit/debugging parity with the brain-dump triage path.
func ProcessInboundSMSMessage(ctx context.Context, factory *uow.Factory, client *ent.Client, gw commands.LLMGateway, smsGateway commands.SMSGateway, userID, messageID string, now time.Time) error {
	msgRow, err := client.Message.Get(ctx, messageID)
	if err != nil {
		return err
	}
	if msgRow.Role != "USER" {
		return nil
	}
	fromNumber, _ := msgRow.Meta["from_number"].(string)
	if fromNumber == "" {
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
	dayDate := now.In(loc).Format("2006-01-02")

	promptCtx, err := queries.BuildLLMPromptContext(ctx, client, userID, dayDate, loc, 30, now)
	if err != nil {
		return err
	}

	u, err := factory.New(ctx, userID)
	if err != nil {
		return err
	}

	replyTool := ReplyTool(func(ctx context.Context, message string) error {
		if _, err := commands.SendSMS(ctx, u, commands.SendSMSInput{
			UserID: userID, MessageID: fmt.Sprintf("%s:reply", messageID),
			ToNumber: fromNumber, Body: message,
			TriggeredBy: fmt.Sprintf("inbound_sms_reply:%s", messageID),
		}); err != nil {
			return err
		}
		return smsGateway.SendMessage(ctx, fromNumber, message)
	})
	createTool := CreateTaskTool(func(ctx context.Context, name, category, taskType, scheduledDate string) (string, error) {
		t, err := commands.CreateAdhocTask(ctx, u, commands.CreateAdhocTaskInput{
			UserID: userID, ScheduledDate: scheduledDate, Name: name, Category: category, Type: taskType,
		})
		if err != nil {
			return "", err
		}
		return t.ID, nil
	})
	updateTool := UpdateTaskTool(func(ctx context.Context, taskID, action string) error {
		_, err := commands.RecordTaskAction(ctx, u, commands.RecordTaskActionInput{
			UserID: userID, TaskID: taskID, ActionType: action, Note: "source: llm inbound sms triage",
		})
		return err
	})
	var declined bool
	noActionTool := NoActionTool(&declined)

	_, runErr := Run(ctx, gw, Request{
		Provider:      user.PreferredLLMProvider,
		SystemPrompt:  "You triage an inbound SMS into at most one reply and/or task mutation.",
		ContextPrompt: brainDumpContextPrompt(promptCtx),
		AskPrompt:     fmt.Sprintf("Inbound SMS from %s: %q.", fromNumber, msgRow.Content),
		ToolsPrompt:   "Call reply to respond over SMS, create_task/update_task for task mutations, or no_action.",
		Tools:         []ToolCallback{replyTool, createTool, updateTool, noActionTool},
	}, now)
	if runErr != nil {
		_ = u.Rollback()
		return runErr
	}
	return u.Commit()
}
