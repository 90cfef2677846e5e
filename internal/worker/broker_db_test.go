package worker

import (
	"context"
	"errors"
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
	"github.com/dayforge/dayforge/ent/queuejob"
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

func TestDBStore_SubmitThenClaimMarksProcessing(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	store := NewDBStore(client)

	require.NoError(t, store.Submit(ctx, Job{Kind: KindSyncCalendar, UserID: "user-1", Payload: map[string]interface{}{"calendar_id": "cal-1"}}))

	claimed, err := store.Claim(ctx, "worker-0", 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, KindSyncCalendar, claimed[0].Kind)
	assert.Equal(t, "user-1", claimed[0].UserID)

	row, err := client.QueueJob.Get(ctx, claimed[0].ID)
	require.NoError(t, err)
	assert.Equal(t, queuejob.StatusProcessing, row.Status)
}

func TestDBStore_ClaimSkipsAlreadyClaimedRows(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	store := NewDBStore(client)

	require.NoError(t, store.Submit(ctx, Job{Kind: KindSyncCalendar, UserID: "user-1"}))

	first, err := store.Claim(ctx, "worker-0", 10)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := store.Claim(ctx, "worker-1", 10)
	require.NoError(t, err)
	assert.Empty(t, second, "a row already marked processing must not be claimed again")
}

func TestDBStore_ClaimRespectsAvailableAt(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	store := NewDBStore(client)

	require.NoError(t, store.Submit(ctx, Job{Kind: KindSyncCalendar, UserID: "user-1"}))

	rows, err := client.QueueJob.Query().All(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	_, err = client.QueueJob.UpdateOne(rows[0]).SetAvailableAt(time.Now().Add(time.Hour)).Save(ctx)
	require.NoError(t, err)

	claimed, err := store.Claim(ctx, "worker-0", 10)
	require.NoError(t, err)
	assert.Empty(t, claimed, "a job not yet due must not be claimed")
}

func TestDBStore_CompleteAndFail(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	store := NewDBStore(client)

	require.NoError(t, store.Submit(ctx, Job{Kind: KindSyncCalendar, UserID: "user-1"}))
	claimed, err := store.Claim(ctx, "worker-0", 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)

	require.NoError(t, store.Complete(ctx, claimed[0].ID))
	row, err := client.QueueJob.Get(ctx, claimed[0].ID)
	require.NoError(t, err)
	assert.Equal(t, queuejob.StatusComplete, row.Status)

	require.NoError(t, store.Submit(ctx, Job{Kind: KindSyncCalendar, UserID: "user-2"}))
	claimed2, err := store.Claim(ctx, "worker-0", 10)
	require.NoError(t, err)
	require.Len(t, claimed2, 1)

	require.NoError(t, store.Fail(ctx, claimed2[0].ID, errors.New("gateway timeout")))
	row2, err := client.QueueJob.Get(ctx, claimed2[0].ID)
	require.NoError(t, err)
	assert.Equal(t, queuejob.StatusFailed, row2.Status)
	require.NotNil(t, row2.LastError)
	assert.Equal(t, "gateway timeout", *row2.LastError)
	assert.Equal(t, 1, row2.Attempts)
}
