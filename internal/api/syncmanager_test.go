package api

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql"
	"github.com/coder/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dayforge/dayforge/ent"
	"github.com/dayforge/dayforge/internal/auditlog"
	"github.com/dayforge/dayforge/internal/database"
	"github.com/dayforge/dayforge/internal/pubsub"
)

func newTestServer(t *testing.T) (*ent.Client, *pubsub.Listener, *pubsub.PGPublisher, *Server) {
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

	db := drv.DB()

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	listener := pubsub.NewListener(pool)
	listenerCtx, cancel := context.WithCancel(ctx)
	t.Cleanup(cancel)
	require.NoError(t, listener.Start(listenerCtx))

	publisher := pubsub.NewPGPublisher(db)

	syncManager := NewSyncManager(client, listener, time.UTC)
	dbClient := database.NewClientFromEnt(client, db)
	server := NewServer(dbClient, syncManager, []string{"*"})

	return client, listener, publisher, server
}

func TestServer_Health_ReportsHealthyAgainstLiveDB(t *testing.T) {
	_, _, _, server := newTestServer(t)
	ts := httptest.NewServer(server.echo)
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)
}

func TestServer_SyncHandler_MissingQueryParamsIsBadRequest(t *testing.T) {
	_, _, _, server := newTestServer(t)
	ts := httptest.NewServer(server.echo)
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/days/today/context")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 400, resp.StatusCode)
}

func TestSyncManager_FullSyncRequestReturnsDayContext(t *testing.T) {
	client, _, _, server := newTestServer(t)
	ctx := context.Background()
	_, err := client.User.Create().SetID("user-1").SetTimezone("UTC").Save(ctx)
	require.NoError(t, err)

	ts := httptest.NewServer(server.echo)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/days/today/context?user_id=user-1&target_date=2026-08-01"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	_, ackData, err := conn.Read(ctx)
	require.NoError(t, err)
	var ack connectionAck
	require.NoError(t, json.Unmarshal(ackData, &ack))
	assert.Equal(t, "connection_ack", ack.Type)
	assert.Equal(t, "user-1", ack.UserID)

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{"type":"sync_request"}`)))

	_, respData, err := conn.Read(ctx)
	require.NoError(t, err)
	var resp syncResponse
	require.NoError(t, json.Unmarshal(respData, &resp))
	assert.Equal(t, "sync_response", resp.Type)
	require.NotNil(t, resp.DayContext)
}

func TestSyncManager_UnknownMessageTypeReturnsError(t *testing.T) {
	client, _, _, server := newTestServer(t)
	ctx := context.Background()
	_, err := client.User.Create().SetID("user-1").SetTimezone("UTC").Save(ctx)
	require.NoError(t, err)

	ts := httptest.NewServer(server.echo)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/days/today/context?user_id=user-1&target_date=2026-08-01"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	_, _, err = conn.Read(ctx) // drain connection_ack
	require.NoError(t, err)

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{"type":"nonsense"}`)))

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var em errorMessage
	require.NoError(t, json.Unmarshal(data, &em))
	assert.Equal(t, "unknown_type", em.Code)
}

func TestSyncManager_ForwardsMatchingAuditLogEntryOverPubSub(t *testing.T) {
	client, _, publisher, server := newTestServer(t)
	ctx := context.Background()
	_, err := client.User.Create().SetID("user-1").SetTimezone("UTC").Save(ctx)
	require.NoError(t, err)

	ts := httptest.NewServer(server.echo)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/days/today/context?user_id=user-1&target_date=2026-08-01"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	_, _, err = conn.Read(ctx) // drain connection_ack
	require.NoError(t, err)

	// give the forward loop a moment to subscribe before publishing
	time.Sleep(200 * time.Millisecond)

	require.NoError(t, publisher.PublishAuditLog(ctx, auditlog.Entry{
		UserID:       "user-1",
		ActivityType: "TaskCreatedEvent",
		EntityID:     "task-1",
		EntityType:   "task",
		OccurredAt:   time.Now(),
		EntityData:   map[string]interface{}{"scheduled_date": "2026-08-01"},
	}))

	readCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, data, err := conn.Read(readCtx)
	require.NoError(t, err)

	var resp syncResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	require.Len(t, resp.Changes, 1)
	assert.Equal(t, "created", resp.Changes[0].ChangeType)
	assert.Equal(t, "task-1", resp.Changes[0].EntityID)
}
