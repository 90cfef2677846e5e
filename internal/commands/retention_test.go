package commands

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSoftDeleteOldDays_DeletesOnlyRowsOlderThanCutoff(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	seedUser(t, client, "user-1")
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	_, err := client.Day.Create().SetID("old-day").SetUserID("user-1").SetDate("2026-06-01").SetStatus("SCHEDULED").Save(ctx)
	require.NoError(t, err)
	_, err = client.Day.Create().SetID("recent-day").SetUserID("user-1").SetDate("2026-07-30").SetStatus("SCHEDULED").Save(ctx)
	require.NoError(t, err)

	count, err := SoftDeleteOldDays(ctx, client, 30, now)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	oldRow, err := client.Day.Get(ctx, "old-day")
	require.NoError(t, err)
	assert.NotNil(t, oldRow.DeletedAt)

	recentRow, err := client.Day.Get(ctx, "recent-day")
	require.NoError(t, err)
	assert.Nil(t, recentRow.DeletedAt)
}

func TestSoftDeleteOldDays_AlreadyDeletedRowsAreNotCountedAgain(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	seedUser(t, client, "user-1")
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	_, err := client.Day.Create().SetID("old-day").SetUserID("user-1").SetDate("2026-06-01").SetStatus("SCHEDULED").SetDeletedAt(now.AddDate(0, 0, -1)).Save(ctx)
	require.NoError(t, err)

	count, err := SoftDeleteOldDays(ctx, client, 30, now)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
