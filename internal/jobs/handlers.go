// Package jobs adapts the deferred worker.Job payloads (§4.7) scheduled by
// WorkersToSchedule into the actual command/use-case invocations the worker
// pool's polling loop runs. Each handler opens its own uow.Factory-scoped
// UoW (or, for the LLM use cases, delegates UoW management to the use case
// itself), since a deferred job always runs after the UoW that scheduled it
// has already committed.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/dayforge/dayforge/ent"
	"github.com/dayforge/dayforge/internal/commands"
	"github.com/dayforge/dayforge/internal/llmusecase"
	"github.com/dayforge/dayforge/internal/uow"
	"github.com/dayforge/dayforge/internal/worker"
)

// Handlers builds the JobHandler map worker.NewPool dispatches on, one
// entry per worker.Kind* constant.
func Handlers(
	factory *uow.Factory,
	client *ent.Client,
	llmGateway commands.LLMGateway,
	smsGateway commands.SMSGateway,
	pushGateway commands.PushGateway,
	calendarGateway commands.CalendarGateway,
) map[string]worker.JobHandler {
	return map[string]worker.JobHandler{
		worker.KindProcessBrainDumpItem: func(ctx context.Context, job worker.Job) error {
			dayDate, _ := job.Payload["day_date"].(string)
			itemID, _ := job.Payload["item_id"].(string)
			return llmusecase.ProcessBrainDumpItem(ctx, factory, client, llmGateway, job.UserID, dayDate, itemID, time.Now())
		},
		worker.KindProcessInboundSMSMessage: func(ctx context.Context, job worker.Job) error {
			messageID, _ := job.Payload["message_id"].(string)
			return llmusecase.ProcessInboundSMSMessage(ctx, factory, client, llmGateway, smsGateway, job.UserID, messageID, time.Now())
		},
		worker.KindSendPushNotification: func(ctx context.Context, job worker.Job) error {
			triggeredBy, _ := job.Payload["triggered_by"].(string)
			content, _ := job.Payload["content"].(string)
			u, err := factory.New(ctx, job.UserID)
			if err != nil {
				return err
			}
			if _, err := commands.SendPushNotification(ctx, u, pushGateway, commands.SendPushNotificationInput{
				UserID: job.UserID, TriggeredBy: triggeredBy, Content: content,
			}); err != nil {
				_ = u.Rollback()
				return err
			}
			return u.Commit()
		},
		worker.KindSyncCalendar: func(ctx context.Context, job worker.Job) error {
			calendarID, _ := job.Payload["calendar_id"].(string)
			if calendarID == "" {
				return fmt.Errorf("jobs: sync_calendar job missing calendar_id")
			}
			u, err := factory.New(ctx, job.UserID)
			if err != nil {
				return err
			}
			if err := commands.SyncCalendar(ctx, u, calendarGateway, commands.SyncCalendarInput{
				UserID: job.UserID, CalendarID: calendarID,
			}, time.Now()); err != nil {
				_ = u.Rollback()
				return err
			}
			return u.Commit()
		},
	}
}
