// Package uow implements the transactional Unit of Work that wraps every
// state change: it stages mutated aggregates, drains their domain events,
// synthesizes audit-log rows in the same DB transaction, and — only after a
// successful commit — publishes to pub/sub, dispatches events to in-process
// handlers, and flushes the deferred worker queue (§4.1).
package uow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dayforge/dayforge/ent"
	"github.com/dayforge/dayforge/internal/auditlog"
	"github.com/dayforge/dayforge/internal/events"
	"github.com/dayforge/dayforge/internal/masking"
	"github.com/dayforge/dayforge/internal/pubsub"
	"github.com/dayforge/dayforge/internal/worker"
)

// Aggregate is implemented by every domain aggregate; the UoW drains its
// pending events when staged via Add.
type Aggregate interface {
	PullEvents() []events.Event
}

// UoW is the transactional scope for one logical command. Create one with
// Begin per request/worker invocation; it is not safe for concurrent use
// (§4.1 Concurrency).
type UoW struct {
	ctx        context.Context
	client     *ent.Client
	tx         *ent.Tx
	userID     string
	dispatcher *events.Dispatcher
	publisher  pubsub.Publisher
	workers    *worker.WorkersToSchedule
	masker     *masking.Service // nil-safe; set by Factory.New after Begin

	pending *[]events.Event // shared across nested UoWs
	nested  bool
	done    bool
}

// Begin opens a new transaction scoped to userID.
func Begin(ctx context.Context, client *ent.Client, userID string, dispatcher *events.Dispatcher, publisher pubsub.Publisher) (*UoW, error) {
	tx, err := client.Tx(ctx)
	if err != nil {
		return nil, fmt.Errorf("uow: begin transaction: %w", err)
	}
	pending := make([]events.Event, 0, 8)
	return &UoW{
		ctx:        ctx,
		client:     client,
		tx:         tx,
		userID:     userID,
		dispatcher: dispatcher,
		publisher:  publisher,
		workers:    worker.NewWorkersToSchedule(),
		pending:    &pending,
	}, nil
}

// BeginNested reuses outer's transaction, event buffer, and deferred worker
// queue. Its Commit and Rollback are no-ops — only the outermost UoW actually
// commits or rolls back the DB transaction (§4.1 Contract: "nested begin
// reuses the outer transaction and neither commits nor rolls back").
func BeginNested(outer *UoW) *UoW {
	return &UoW{
		ctx:        outer.ctx,
		client:     outer.client,
		tx:         outer.tx,
		userID:     outer.userID,
		dispatcher: outer.dispatcher,
		publisher:  outer.publisher,
		workers:    outer.workers,
		masker:     outer.masker,
		pending:    outer.pending,
		nested:     true,
	}
}

// Tx exposes the underlying ent transaction so command handlers can use the
// generated per-entity builders directly (tx.Day.Create(), tx.Task.Update(),
// ...), mirroring how the teacher's services use *ent.Tx.
func (u *UoW) Tx() *ent.Tx { return u.tx }

// UserID returns the user this UoW is scoped to.
func (u *UoW) UserID() string { return u.userID }

// Workers exposes the deferred post-commit worker collector (§4.7).
func (u *UoW) Workers() *worker.WorkersToSchedule { return u.workers }

// Add stages agg: its pending events are drained into the UoW's ordered
// buffer (insertion order across aggregates, §4.1 step 2). The caller is
// responsible for having already persisted agg's fields via Tx() before (or
// after) calling Add — Add only collects events, since the actual
// create/update was done through the ent builders.
func (u *UoW) Add(agg Aggregate) {
	*u.pending = append(*u.pending, agg.PullEvents()...)
}

// Commit synthesizes audit rows for every auditable pending event in the
// same transaction, commits, and then (best-effort, logged-not-raised)
// publishes audit rows, dispatches events, and flushes deferred workers
// (§4.1 steps 3-5, §7 error policy). Nested UoWs no-op.
func (u *UoW) Commit() error {
	if u.nested {
		return nil
	}
	if u.done {
		return fmt.Errorf("uow: commit called twice")
	}
	u.done = true

	entries := make([]auditlog.Entry, 0, len(*u.pending))
	for _, evt := range *u.pending {
		entry, ok := auditlog.FromEvent(evt)
		if !ok {
			continue
		}
		row, err := u.writeAuditRow(entry)
		if err != nil {
			_ = u.tx.Rollback()
			return fmt.Errorf("uow: synthesize audit row for %s: %w", entry.ActivityType, err)
		}
		entries = append(entries, row)
	}

	if err := u.tx.Commit(); err != nil {
		return fmt.Errorf("uow: commit transaction: %w", err)
	}

	u.postCommit(entries)
	return nil
}

// Rollback discards the transaction and the deferred worker queue, per
// §4.7's "collector is discarded on rollback, guaranteeing no orphan jobs".
// Nested UoWs no-op — only the outermost rollback actually aborts the DB
// transaction.
func (u *UoW) Rollback() error {
	if u.nested {
		return nil
	}
	if u.done {
		return nil
	}
	u.done = true
	*u.pending = nil
	u.workers.Discard()
	return u.tx.Rollback()
}

// postCommit runs step 5 of §4.1: publish, dispatch, flush — all best
// effort. Failures are logged at error level and never propagated (§7).
func (u *UoW) postCommit(entries []auditlog.Entry) {
	for _, row := range entries {
		if err := u.publisher.PublishAuditLog(u.ctx, row); err != nil {
			slog.Error("failed to publish audit log", "user_id", row.UserID, "entity_type", row.EntityType, "error", err)
		}
	}

	for _, evt := range *u.pending {
		if _, ok := evt.(events.EntityEvent); !ok {
			// Whole-process signals (e.g. NewDayEvent) still publish to the
			// domain-events channel (§6.2) even though they're not audited.
			if err := u.publisher.PublishDomainEvent(u.ctx, evt); err != nil {
				slog.Error("failed to publish domain event", "event_type", evt.Type(), "error", err)
			}
		}
		u.dispatcher.Dispatch(u.ctx, evt)
	}

	if err := u.workers.Flush(u.ctx); err != nil {
		slog.Error("failed to flush deferred worker queue", "user_id", u.userID, "error", err)
	}
}

func (u *UoW) writeAuditRow(entry auditlog.Entry) (auditlog.Entry, error) {
	if u.masker != nil {
		entry.EntityData = u.masker.MaskEntityData(entry.EntityData)
	}
	row, err := u.tx.AuditLog.Create().
		SetUserID(entry.UserID).
		SetActivityType(entry.ActivityType).
		SetEntityID(entry.EntityID).
		SetEntityType(entry.EntityType).
		SetOccurredAt(entry.OccurredAt).
		SetMeta(entAuditMeta(entry.EntityData)).
		Save(u.ctx)
	if err != nil {
		return auditlog.Entry{}, err
	}
	entry.ID = row.ID
	return entry, nil
}
