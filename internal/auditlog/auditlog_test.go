package auditlog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayforge/dayforge/internal/events"
)

type entityEvent struct {
	events.Base
	kind   string
	id     string
	etype  string
	data   map[string]interface{}
}

func (e entityEvent) Type() string                     { return e.kind }
func (e entityEvent) EntityID() string                 { return e.id }
func (e entityEvent) EntityType() string                { return e.etype }
func (e entityEvent) EntityData() map[string]interface{} { return e.data }

type plainEvent struct {
	events.Base
	kind string
}

func (e plainEvent) Type() string { return e.kind }

func TestFromEvent_EntityEventProducesEntry(t *testing.T) {
	now := time.Now()
	evt := entityEvent{
		Base:  events.Base{UID: "user-1", At: now},
		kind:  "TaskCreatedEvent",
		id:    "task-1",
		etype: "task",
		data:  map[string]interface{}{"scheduled_date": "2026-08-01"},
	}

	entry, ok := FromEvent(evt)
	require.True(t, ok)
	assert.Equal(t, "user-1", entry.UserID)
	assert.Equal(t, "TaskCreatedEvent", entry.ActivityType)
	assert.Equal(t, "task-1", entry.EntityID)
	assert.Equal(t, "task", entry.EntityType)
	assert.Equal(t, now, entry.OccurredAt)
	assert.Equal(t, evt.data, entry.EntityData)
}

func TestFromEvent_NonEntityEventIsSkipped(t *testing.T) {
	_, ok := FromEvent(plainEvent{Base: events.Base{UID: "user-1"}, kind: "NewDayEvent"})
	assert.False(t, ok)
}

func TestDeriveChangeType(t *testing.T) {
	tests := []struct {
		activityType string
		want         ChangeType
		wantOK       bool
	}{
		{"TaskCreatedEvent", ChangeCreated, true},
		{"DayUpdatedEvent", ChangeUpdated, true},
		{"TaskDeletedEvent", ChangeDeleted, true},
		{"TaskCompletedEvent", ChangeUpdated, true},
		{"TaskPuntedEvent", ChangeUpdated, true},
		{"NewDayEvent", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.activityType, func(t *testing.T) {
			got, ok := DeriveChangeType(tt.activityType)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsForDate_WholeUserEntityTypeAlwaysMatches(t *testing.T) {
	e := Entry{EntityType: "routine_definition", EntityData: nil}
	assert.True(t, IsForDate(e, "2026-08-01"))
}

func TestIsForDate_NilEntityDataIsExcluded(t *testing.T) {
	e := Entry{EntityType: "task", EntityData: nil}
	assert.False(t, IsForDate(e, "2026-08-01"))
}

func TestIsForDate_MatchesScheduledDate(t *testing.T) {
	e := Entry{EntityType: "task", EntityData: map[string]interface{}{"scheduled_date": "2026-08-01"}}
	assert.True(t, IsForDate(e, "2026-08-01"))
	assert.False(t, IsForDate(e, "2026-08-02"))
}

func TestIsForDate_MatchesDate(t *testing.T) {
	e := Entry{EntityType: "day", EntityData: map[string]interface{}{"date": "2026-08-01"}}
	assert.True(t, IsForDate(e, "2026-08-01"))
}

func TestIsForDate_MatchesStartsAt(t *testing.T) {
	e := Entry{EntityType: "calendar_entry", EntityData: map[string]interface{}{
		"starts_at": "2026-08-01T09:00:00Z",
	}}
	assert.True(t, IsForDate(e, "2026-08-01"))
	assert.False(t, IsForDate(e, "2026-08-02"))
}

func TestIsForDate_NoRecognizedFieldIsExcluded(t *testing.T) {
	e := Entry{EntityType: "calendar", EntityData: map[string]interface{}{"name": "Work"}}
	assert.False(t, IsForDate(e, "2026-08-01"))
}
