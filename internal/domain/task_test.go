package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask_Defaults(t *testing.T) {
	task := NewTask("task-1", "user-1", "day-1", "2026-08-01", "write report")

	assert.Equal(t, TaskNotStarted, task.Status)
	assert.Equal(t, FrequencyOneOff, task.Frequency)
	assert.True(t, task.IsNew())
	assert.True(t, task.IsAdhoc())
}

func TestTask_IsAdhoc(t *testing.T) {
	task := NewTask("task-1", "user-1", "day-1", "2026-08-01", "water plants")
	assert.True(t, task.IsAdhoc())

	routineID := "routine-1"
	task.RoutineDefinitionID = &routineID
	assert.False(t, task.IsAdhoc())
}

func TestTask_RecordAction_Completed(t *testing.T) {
	task := NewTask("task-1", "user-1", "day-1", "2026-08-01", "water plants")
	task.MarkPersisted()

	task.RecordAction("completed", "done early")

	assert.Equal(t, TaskComplete, task.Status)
	require.NotNil(t, task.CompletedAt)
	require.Len(t, task.Actions, 1)
	assert.Equal(t, "completed", task.Actions[0].Type)
	assert.Equal(t, "done early", task.Actions[0].Note)

	events := task.PullEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "TaskCompletedEvent", events[0].Type())
}

func TestTask_RecordAction_Punted(t *testing.T) {
	task := NewTask("task-1", "user-1", "day-1", "2026-08-01", "water plants")
	task.MarkPersisted()

	task.RecordAction("punted", "")

	assert.Equal(t, TaskPunted, task.Status)
	events := task.PullEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "TaskPuntedEvent", events[0].Type())
}

func TestTask_RecordAction_OtherActionRaisesGenericUpdate(t *testing.T) {
	task := NewTask("task-1", "user-1", "day-1", "2026-08-01", "water plants")
	task.MarkPersisted()

	task.RecordAction("snoozed", "push 30m")

	assert.Equal(t, TaskNotStarted, task.Status, "snoozed does not change status")
	events := task.PullEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "TaskUpdatedEvent", events[0].Type())
}

func TestTask_SetStatus(t *testing.T) {
	task := NewTask("task-1", "user-1", "day-1", "2026-08-01", "water plants")
	task.SetStatus(TaskReady)
	assert.Equal(t, TaskReady, task.Status)

	events := task.PullEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "TaskCreatedEvent", events[0].Type(), "still new, so SetStatus raises create not update")
}

func TestTask_Touch_RaisesCreateThenUpdate(t *testing.T) {
	task := NewTask("task-1", "user-1", "day-1", "2026-08-01", "water plants")

	task.Touch()
	events := task.PullEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "TaskCreatedEvent", events[0].Type())

	task.MarkPersisted()
	task.Touch()
	events = task.PullEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "TaskUpdatedEvent", events[0].Type())
}

func TestTask_MarkDeleted(t *testing.T) {
	task := NewTask("task-1", "user-1", "day-1", "2026-08-01", "water plants")
	task.MarkPersisted()

	task.MarkDeleted()

	events := task.PullEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "TaskDeletedEvent", events[0].Type())

	evt, ok := events[0].(interface{ EntityID() string })
	require.True(t, ok)
	assert.Equal(t, "task-1", evt.EntityID())
}
