package queries

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
	"github.com/dayforge/dayforge/ent/schema"
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

func seedAuditRow(t *testing.T, client *ent.Client, userID, activityType, taskID, routineDefinitionID string, occurredAt time.Time) {
	t.Helper()
	_, err := client.AuditLog.Create().
		SetUserID(userID).
		SetActivityType(activityType).
		SetEntityID(taskID).
		SetEntityType("task").
		SetOccurredAt(occurredAt).
		SetMeta(schema.AuditLogMeta{EntityData: map[string]interface{}{
			"routine_definition_id": routineDefinitionID,
		}}).
		Save(context.Background())
	require.NoError(t, err)
}

func TestTaskRisk_SkipsDailyAndCompleteTasks(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	now := time.Now()

	tasks := []*ent.Task{
		{ID: "daily-task", Category: "AVOIDANT", Frequency: "DAILY", Status: "NOT_STARTED"},
		{ID: "complete-task", Category: "AVOIDANT", Frequency: "ONE_OFF", Status: "COMPLETE"},
	}

	results, err := TaskRisk(ctx, client, "user-1", tasks, 30, now)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestTaskRisk_AdhocTaskGetsNeutralCompletionRate(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	now := time.Now()

	tasks := []*ent.Task{
		{ID: "adhoc-task", Category: "AVOIDANT", Frequency: "ONE_OFF", Status: "NOT_STARTED", RoutineDefinitionID: nil},
	}

	results, err := TaskRisk(ctx, client, "user-1", tasks, 30, now)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 100, results[0].CompletionRate)
	assert.Equal(t, "adhoc-task", results[0].TaskID)
	assert.Equal(t, weightAvoidant+nonDailyPenalty, results[0].Score)
}

func TestTaskRisk_LowCompletionRateFromRoutineHistoryScoresHigher(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	now := time.Now()
	_, err := client.User.Create().SetID("user-1").Save(ctx)
	require.NoError(t, err)

	// 1 completed, 4 punted -> 20% completion rate over the lookback window.
	seedAuditRow(t, client, "user-1", "TaskCompletedEvent", "t1", "routine-1", now.Add(-time.Hour))
	for i := 0; i < 4; i++ {
		seedAuditRow(t, client, "user-1", "TaskPuntedEvent", "t2", "routine-1", now.Add(-time.Hour))
	}
	// Outside the lookback window: must not affect the rate.
	seedAuditRow(t, client, "user-1", "TaskCompletedEvent", "t3", "routine-1", now.AddDate(0, 0, -60))

	routineID := "routine-1"
	tasks := []*ent.Task{
		{ID: "task-1", Category: "FORGETTABLE", Frequency: "WEEKLY", Status: "NOT_STARTED", RoutineDefinitionID: &routineID},
	}

	results, err := TaskRisk(ctx, client, "user-1", tasks, 30, now)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 20, results[0].CompletionRate)
	assert.Equal(t, weightForgettable+completionPenaltyBelow40+nonDailyPenalty, results[0].Score)
}

func TestTaskRisk_BelowThresholdScoreIsExcluded(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	now := time.Now()

	tasks := []*ent.Task{
		{ID: "low-risk", Category: "", Frequency: "DAILY_LIKE", Status: "NOT_STARTED"},
	}

	results, err := TaskRisk(ctx, client, "user-1", tasks, 30, now)
	require.NoError(t, err)
	assert.Empty(t, results, "an uncategorized, non-penalized task should score below the threshold")
}
