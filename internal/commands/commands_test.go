package commands

import (
	"context"
	"testing"
	"time"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dayforge/dayforge/ent"
	"github.com/dayforge/dayforge/ent/schema"
	"github.com/dayforge/dayforge/internal/auditlog"
	"github.com/dayforge/dayforge/internal/domain"
	"github.com/dayforge/dayforge/internal/events"
	"github.com/dayforge/dayforge/internal/masking"
	"github.com/dayforge/dayforge/internal/uow"
	"github.com/dayforge/dayforge/internal/worker"
)

// newTestClient spins up a disposable Postgres container with the schema
// auto-migrated, matching every other package's integration-test helper.
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

// newTestUoW opens a top-level UoW against client for userID, wired with a
// real DB-backed worker broker so ScheduleX calls exercise the same path as
// production.
func newTestUoW(t *testing.T, client *ent.Client, userID string) *uow.UoW {
	t.Helper()
	factory := uow.NewFactory(client, events.NewDispatcher(), noopPublisher{}, worker.NewDBStore(client), masking.NewService())
	u, err := factory.New(context.Background(), userID)
	require.NoError(t, err)
	return u
}

type noopPublisher struct{}

func (noopPublisher) PublishAuditLog(ctx context.Context, entry auditlog.Entry) error { return nil }
func (noopPublisher) PublishDomainEvent(ctx context.Context, evt events.Event) error   { return nil }

func seedUser(t *testing.T, client *ent.Client, userID string) {
	t.Helper()
	_, err := client.User.Create().SetID(userID).Save(context.Background())
	require.NoError(t, err)
}

func seedDayTemplate(t *testing.T, client *ent.Client, userID, slug string) *ent.DayTemplate {
	t.Helper()
	row, err := client.DayTemplate.Create().
		SetID(domain.DayTemplateID(userID, slug)).
		SetUserID(userID).
		SetSlug(slug).
		SetTimeBlocks([]schema.TimeBlock{{TimeBlockDefID: "morning", StartTime: "06:00", EndTime: "09:00", Name: "Morning"}}).
		SetHighLevelPlan(schema.HighLevelPlan{Title: "Focus day"}).
		Save(context.Background())
	require.NoError(t, err)
	return row
}
