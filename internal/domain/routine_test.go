package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoutineDefinition_DefaultsActive(t *testing.T) {
	r := NewRoutineDefinition("routine-1", "user-1", "Morning stack", RecurrenceSchedule{Frequency: "DAILY"})

	assert.True(t, r.Active)
	assert.Equal(t, "routine-1", r.ID)
	assert.True(t, r.isNew)
}

func TestRoutineDefinition_Touch_RaisesCreateThenUpdate(t *testing.T) {
	r := NewRoutineDefinition("routine-1", "user-1", "Morning stack", RecurrenceSchedule{Frequency: "DAILY"})

	r.Touch()
	events := r.PullEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "RoutineDefinitionCreatedEvent", events[0].Type())

	r.MarkPersisted()
	r.Touch()
	events = r.PullEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "RoutineDefinitionUpdatedEvent", events[0].Type())
}
