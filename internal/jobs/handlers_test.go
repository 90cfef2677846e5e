package jobs

import (
	"context"
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
	"github.com/dayforge/dayforge/internal/domain"
	"github.com/dayforge/dayforge/internal/events"
	"github.com/dayforge/dayforge/internal/masking"
	"github.com/dayforge/dayforge/internal/uow"
	"github.com/dayforge/dayforge/internal/worker"
)

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

type noopPublisher struct{}

func (noopPublisher) PublishAuditLog(ctx context.Context, entry auditlog.Entry) error { return nil }
func (noopPublisher) PublishDomainEvent(ctx context.Context, evt events.Event) error   { return nil }

type noopPushGateway struct{ sent int }

func (g *noopPushGateway) Send(ctx context.Context, sub domain.PushSubscription, payload string) error {
	g.sent++
	return nil
}

func TestHandlers_RegistersOneHandlerPerJobKind(t *testing.T) {
	client := newTestClient(t)
	factory := uow.NewFactory(client, events.NewDispatcher(), noopPublisher{}, worker.NewDBStore(client), masking.NewService())

	handlers := Handlers(factory, client, nil, nil, &noopPushGateway{}, nil)

	assert.Contains(t, handlers, worker.KindProcessBrainDumpItem)
	assert.Contains(t, handlers, worker.KindProcessInboundSMSMessage)
	assert.Contains(t, handlers, worker.KindSendPushNotification)
	assert.Contains(t, handlers, worker.KindSyncCalendar)
	assert.Len(t, handlers, 4)
}

func TestHandlers_SendPushNotificationDeliversAndCommits(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	_, err := client.User.Create().SetID("user-1").Save(ctx)
	require.NoError(t, err)
	_, err = client.PushSubscription.Create().SetID("sub-1").SetUserID("user-1").SetEndpoint("https://push.example/sub-1").Save(ctx)
	require.NoError(t, err)

	factory := uow.NewFactory(client, events.NewDispatcher(), noopPublisher{}, worker.NewDBStore(client), masking.NewService())
	gw := &noopPushGateway{}
	handlers := Handlers(factory, client, nil, nil, gw, nil)

	err = handlers[worker.KindSendPushNotification](ctx, worker.Job{
		UserID: "user-1",
		Payload: map[string]interface{}{
			"triggered_by": "alarm:day-1:alarm-1",
			"content":      "time to leave",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, gw.sent)

	rows, err := client.PushNotification.Query().All(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "success", rows[0].Status)
}

func TestHandlers_SyncCalendarMissingCalendarIDErrors(t *testing.T) {
	client := newTestClient(t)
	factory := uow.NewFactory(client, events.NewDispatcher(), noopPublisher{}, worker.NewDBStore(client), masking.NewService())
	handlers := Handlers(factory, client, nil, nil, nil, nil)

	err := handlers[worker.KindSyncCalendar](context.Background(), worker.Job{UserID: "user-1", Payload: map[string]interface{}{}})
	assert.Error(t, err)
}
