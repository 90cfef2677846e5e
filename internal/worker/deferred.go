// Package worker implements the post-commit deferred job queue (§4.7) and
// the polling worker pool + cron scheduler that execute jobs (§6.3).
package worker

import (
	"context"
	"log/slog"
)

// Job is one unit of background work submitted to the Broker after a
// successful commit.
type Job struct {
	Kind    string
	UserID  string
	Payload map[string]interface{}
}

// Broker submits jobs for asynchronous execution. Implementations back onto
// a durable queue table (see internal/database) polled by WorkerPool.
type Broker interface {
	Submit(ctx context.Context, job Job) error
}

const (
	KindProcessBrainDumpItem      = "process_brain_dump_item"
	KindProcessInboundSMSMessage  = "process_inbound_sms_message"
	KindSendPushNotification     = "send_push_notification"
	KindSyncCalendar             = "sync_calendar"
)

// WorkersToSchedule is a per-UoW collector of jobs that must be submitted
// only if — and exactly once after — the enclosing transaction commits
// (§4.7). It is owned by the UoW, not by the broker: no job reaches the
// broker until Flush is called post-commit, and Discard drops everything on
// rollback so a failed command never leaves orphan jobs.
type WorkersToSchedule struct {
	jobs   []Job
	broker Broker
}

// NewWorkersToSchedule returns an empty collector. The broker is attached
// later via Bind because the UoW constructs the collector before the
// process-wide broker instance is necessarily in scope (mirrors the
// teacher's deferred-construction pattern for cross-cutting collaborators).
func NewWorkersToSchedule() *WorkersToSchedule {
	return &WorkersToSchedule{}
}

// Bind attaches the broker jobs will be submitted to on Flush. Called once
// by the UoW factory at construction time.
func (w *WorkersToSchedule) Bind(broker Broker) { w.broker = broker }

// ScheduleProcessBrainDumpItem defers an LLM triage run for a captured note.
func (w *WorkersToSchedule) ScheduleProcessBrainDumpItem(userID, dayDate, itemID string) {
	w.jobs = append(w.jobs, Job{
		Kind:   KindProcessBrainDumpItem,
		UserID: userID,
		Payload: map[string]interface{}{
			"day_date": dayDate,
			"item_id":  itemID,
		},
	})
}

// ScheduleProcessInboundSMSMessage defers triage of an inbound SMS message.
func (w *WorkersToSchedule) ScheduleProcessInboundSMSMessage(userID, messageID string) {
	w.jobs = append(w.jobs, Job{
		Kind:   KindProcessInboundSMSMessage,
		UserID: userID,
		Payload: map[string]interface{}{
			"message_id": messageID,
		},
	})
}

// ScheduleSendPushNotification defers a push delivery attempt so it is
// submitted atomically with the commit that decided to send it.
func (w *WorkersToSchedule) ScheduleSendPushNotification(userID, triggeredBy, content string, subscriptionIDs []string) {
	w.jobs = append(w.jobs, Job{
		Kind:   KindSendPushNotification,
		UserID: userID,
		Payload: map[string]interface{}{
			"triggered_by":          triggeredBy,
			"content":               content,
			"push_subscription_ids": subscriptionIDs,
		},
	})
}

// ScheduleSyncCalendar defers a calendar sync run for a specific calendar.
func (w *WorkersToSchedule) ScheduleSyncCalendar(userID, calendarID string) {
	w.jobs = append(w.jobs, Job{
		Kind:   KindSyncCalendar,
		UserID: userID,
		Payload: map[string]interface{}{
			"calendar_id": calendarID,
		},
	})
}

// Flush submits every collected job to the broker. Submission failure is
// logged, never raised — the DB transaction has already committed by the
// time Flush runs (§4.7, §7).
func (w *WorkersToSchedule) Flush(ctx context.Context) error {
	if w.broker == nil {
		if len(w.jobs) > 0 {
			slog.Warn("deferred jobs dropped: no broker bound", "count", len(w.jobs))
		}
		w.jobs = nil
		return nil
	}
	for _, job := range w.jobs {
		if err := w.broker.Submit(ctx, job); err != nil {
			slog.Error("failed to submit deferred job", "kind", job.Kind, "user_id", job.UserID, "error", err)
		}
	}
	w.jobs = nil
	return nil
}

// Discard drops every collected job without submitting, called on UoW
// rollback.
func (w *WorkersToSchedule) Discard() {
	w.jobs = nil
}
