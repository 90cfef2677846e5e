package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordTaskAction_CompletedSetsStatusAndAppendsAction(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	seedUser(t, client, "user-1")

	u := newTestUoW(t, client, "user-1")
	task, err := CreateAdhocTask(ctx, u, CreateAdhocTaskInput{UserID: "user-1", ScheduledDate: "2026-08-03", Name: "water plants"})
	require.NoError(t, err)
	require.NoError(t, u.Commit())

	u2 := newTestUoW(t, client, "user-1")
	updated, err := RecordTaskAction(ctx, u2, RecordTaskActionInput{UserID: "user-1", TaskID: task.ID, ActionType: "completed", Note: "done early"})
	require.NoError(t, err)
	require.NoError(t, u2.Commit())

	assert.Equal(t, "COMPLETE", string(updated.Status))
	require.Len(t, updated.Actions, 1)
	assert.Equal(t, "completed", updated.Actions[0].Type)
	assert.Equal(t, "done early", updated.Actions[0].Note)

	row, err := client.Task.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "COMPLETE", row.Status)
	require.NotNil(t, row.CompletedAt)
}

func TestRecordTaskAction_UnknownTaskErrors(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	seedUser(t, client, "user-1")

	u := newTestUoW(t, client, "user-1")
	_, err := RecordTaskAction(ctx, u, RecordTaskActionInput{UserID: "user-1", TaskID: "missing", ActionType: "completed"})
	assert.Error(t, err)
}

func TestRecordTaskAction_WrongUserIsRejected(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	seedUser(t, client, "user-1")
	seedUser(t, client, "user-2")

	u := newTestUoW(t, client, "user-1")
	task, err := CreateAdhocTask(ctx, u, CreateAdhocTaskInput{UserID: "user-1", ScheduledDate: "2026-08-03", Name: "mine"})
	require.NoError(t, err)
	require.NoError(t, u.Commit())

	u2 := newTestUoW(t, client, "user-2")
	_, err = RecordTaskAction(ctx, u2, RecordTaskActionInput{UserID: "user-2", TaskID: task.ID, ActionType: "completed"})
	assert.Error(t, err)
}

func TestRecordTaskAction_PuntedLeavesStatusInProgress(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	seedUser(t, client, "user-1")

	u := newTestUoW(t, client, "user-1")
	task, err := CreateAdhocTask(ctx, u, CreateAdhocTaskInput{UserID: "user-1", ScheduledDate: "2026-08-03", Name: "renew passport"})
	require.NoError(t, err)
	require.NoError(t, u.Commit())

	u2 := newTestUoW(t, client, "user-1")
	updated, err := RecordTaskAction(ctx, u2, RecordTaskActionInput{UserID: "user-1", TaskID: task.ID, ActionType: "punted", Note: "tomorrow"})
	require.NoError(t, err)
	require.NoError(t, u2.Commit())

	assert.NotEqual(t, "COMPLETE", string(updated.Status))
	require.Len(t, updated.Actions, 1)
	assert.Equal(t, "punted", updated.Actions[0].Type)
}
