package uow

import (
	"context"
	"sync"
	"testing"
	"time"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dayforge/dayforge/ent"
	"github.com/dayforge/dayforge/internal/auditlog"
	"github.com/dayforge/dayforge/internal/events"
	"github.com/dayforge/dayforge/internal/masking"
	"github.com/dayforge/dayforge/internal/worker"
)

// newTestClient spins up a disposable Postgres container and an ent.Client
// with schema auto-migrated, mirroring the teacher's database package test
// helper.
func newTestClient(t *testing.T) *ent.Client {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	drv, err := sql.Open(dialect.Postgres, connStr)
	require.NoError(t, err)

	client := ent.NewClient(ent.Driver(drv))
	require.NoError(t, client.Schema.Create(ctx))
	t.Cleanup(func() { client.Close() })

	return client
}

type fakePublisher struct {
	mu           sync.Mutex
	auditEntries []auditlog.Entry
	domainEvents []events.Event
}

func (p *fakePublisher) PublishAuditLog(ctx context.Context, entry auditlog.Entry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.auditEntries = append(p.auditEntries, entry)
	return nil
}

func (p *fakePublisher) PublishDomainEvent(ctx context.Context, evt events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.domainEvents = append(p.domainEvents, evt)
	return nil
}

type fakeBroker struct {
	mu   sync.Mutex
	jobs []worker.Job
}

func (b *fakeBroker) Submit(ctx context.Context, job worker.Job) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.jobs = append(b.jobs, job)
	return nil
}

type fakeAggregate struct {
	events []events.Event
}

func (f *fakeAggregate) PullEvents() []events.Event {
	out := f.events
	f.events = nil
	return out
}

type taskCreatedEvent struct {
	events.Base
	taskID string
	data   map[string]interface{}
}

func (e taskCreatedEvent) Type() string                     { return "TaskCreatedEvent" }
func (e taskCreatedEvent) EntityID() string                 { return e.taskID }
func (e taskCreatedEvent) EntityType() string                { return "task" }
func (e taskCreatedEvent) EntityData() map[string]interface{} { return e.data }

type newDayEvent struct {
	events.Base
}

func (e newDayEvent) Type() string { return "NewDayEvent" }

func seedUser(t *testing.T, client *ent.Client, userID string) {
	t.Helper()
	_, err := client.User.Create().SetID(userID).Save(context.Background())
	require.NoError(t, err)
}

func TestUoW_Commit_WritesAuditRowAndRunsPostCommitEffects(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	seedUser(t, client, "user-1")

	publisher := &fakePublisher{}
	broker := &fakeBroker{}
	dispatcher := events.NewDispatcher()

	var dispatched []events.Event
	dispatcher.Register(events.HandlerFunc{
		EventType: "TaskCreatedEvent",
		Fn: func(ctx context.Context, evt events.Event) error {
			dispatched = append(dispatched, evt)
			return nil
		},
	})

	factory := NewFactory(client, dispatcher, publisher, broker, masking.NewService())
	u, err := factory.New(ctx, "user-1")
	require.NoError(t, err)

	u.Add(&fakeAggregate{events: []events.Event{
		taskCreatedEvent{
			Base:   events.Base{UID: "user-1", At: time.Now()},
			taskID: "task-1",
			data:   map[string]interface{}{"name": "email jane.doe@example.com"},
		},
	}})
	u.Workers().ScheduleProcessBrainDumpItem("user-1", "2026-08-01", "item-1")

	require.NoError(t, u.Commit())

	rows, err := client.AuditLog.Query().All(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "TaskCreatedEvent", rows[0].ActivityType)
	assert.Equal(t, "task-1", rows[0].EntityID)
	assert.Equal(t, "[MASKED_EMAIL]", rows[0].Meta.EntityData["name"], "entity_data must be masked before it is persisted")

	require.Len(t, publisher.auditEntries, 1)
	assert.Equal(t, "[MASKED_EMAIL]", publisher.auditEntries[0].EntityData["name"])

	require.Len(t, dispatched, 1)
	assert.Equal(t, "TaskCreatedEvent", dispatched[0].Type())

	require.Len(t, broker.jobs, 1)
	assert.Equal(t, worker.KindProcessBrainDumpItem, broker.jobs[0].Kind)
}

func TestUoW_Commit_NonEntityEventPublishesDomainEventNotAuditRow(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	seedUser(t, client, "user-1")

	publisher := &fakePublisher{}
	broker := &fakeBroker{}
	dispatcher := events.NewDispatcher()
	factory := NewFactory(client, dispatcher, publisher, broker, nil)

	u, err := factory.New(ctx, "user-1")
	require.NoError(t, err)
	u.Add(&fakeAggregate{events: []events.Event{newDayEvent{Base: events.Base{UID: "user-1", At: time.Now()}}}})

	require.NoError(t, u.Commit())

	rows, err := client.AuditLog.Query().All(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows, "whole-user signals are never audited")

	require.Len(t, publisher.domainEvents, 1)
	assert.Equal(t, "NewDayEvent", publisher.domainEvents[0].Type())
}

func TestUoW_Rollback_DiscardsDeferredJobsAndTransaction(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	seedUser(t, client, "user-1")

	broker := &fakeBroker{}
	factory := NewFactory(client, events.NewDispatcher(), &fakePublisher{}, broker, nil)

	u, err := factory.New(ctx, "user-1")
	require.NoError(t, err)

	_, err = u.Tx().AuditLog.Create().
		SetUserID("user-1").
		SetActivityType("TaskCreatedEvent").
		SetEntityID("task-1").
		SetEntityType("task").
		SetOccurredAt(time.Now()).
		SetMeta(entAuditMeta(nil)).
		Save(ctx)
	require.NoError(t, err)
	u.Workers().ScheduleSyncCalendar("user-1", "calendar-1")

	require.NoError(t, u.Rollback())

	rows, err := client.AuditLog.Query().All(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows, "rollback must discard the transaction, not just the worker queue")
	assert.Empty(t, broker.jobs, "rollback discards the deferred worker queue before flush ever runs")
}

func TestUoW_Commit_CalledTwiceErrors(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	seedUser(t, client, "user-1")

	factory := NewFactory(client, events.NewDispatcher(), &fakePublisher{}, &fakeBroker{}, nil)
	u, err := factory.New(ctx, "user-1")
	require.NoError(t, err)

	require.NoError(t, u.Commit())
	assert.Error(t, u.Commit())
}

func TestBeginNested_CommitAndRollbackAreNoOps(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	seedUser(t, client, "user-1")

	broker := &fakeBroker{}
	factory := NewFactory(client, events.NewDispatcher(), &fakePublisher{}, broker, nil)
	outer, err := factory.New(ctx, "user-1")
	require.NoError(t, err)

	inner := BeginNested(outer)
	inner.Add(&fakeAggregate{events: []events.Event{
		taskCreatedEvent{Base: events.Base{UID: "user-1", At: time.Now()}, taskID: "task-1", data: map[string]interface{}{"name": "t"}},
	}})

	require.NoError(t, inner.Commit(), "nested commit must no-op")
	require.NoError(t, inner.Rollback(), "nested rollback must no-op")

	// The outer UoW still owns the transaction and the shared event buffer;
	// committing it persists what the nested UoW staged.
	require.NoError(t, outer.Commit())

	rows, err := client.AuditLog.Query().All(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "task-1", rows[0].EntityID)
}
