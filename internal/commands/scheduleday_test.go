package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayforge/dayforge/ent/schema"
	"github.com/dayforge/dayforge/internal/domain"
)

func TestScheduleDay_MaterializesDayAndRoutineTasks(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	seedUser(t, client, "user-1")
	tpl := seedDayTemplate(t, client, "user-1", "weekday")

	_, err := client.RoutineDefinition.Create().
		SetID("routine-1").
		SetUserID("user-1").
		SetName("morning meds").
		SetRecurrence(schema.RecurrenceSchedule{Frequency: "DAILY"}).
		SetRoutineTasks([]schema.RoutineTask{{Name: "take meds", Category: "URGENT", Type: "ROUTINE"}}).
		SetActive(true).
		Save(ctx)
	require.NoError(t, err)

	u := newTestUoW(t, client, "user-1")
	tplID := tpl.ID
	day, err := ScheduleDay(ctx, u, &domain.User{ID: "user-1"}, ScheduleDayInput{
		UserID: "user-1", Date: "2026-08-03", TemplateID: &tplID,
	})
	require.NoError(t, err)
	require.NoError(t, u.Commit())

	assert.Equal(t, domain.DayScheduled, day.Status)
	assert.Equal(t, tplID, *day.TemplateID)

	tasks, err := client.Task.Query().All(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "take meds", tasks[0].Name)
	assert.Equal(t, "routine-1", *tasks[0].RoutineDefinitionID)

	rows, err := client.Day.Query().All(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "SCHEDULED", rows[0].Status)
}

func TestScheduleDay_RescheduleReplacesRoutineTasksButKeepsAdhoc(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	seedUser(t, client, "user-1")
	tpl := seedDayTemplate(t, client, "user-1", "weekday")
	tplID := tpl.ID

	u := newTestUoW(t, client, "user-1")
	_, err := ScheduleDay(ctx, u, &domain.User{ID: "user-1"}, ScheduleDayInput{
		UserID: "user-1", Date: "2026-08-03", TemplateID: &tplID,
	})
	require.NoError(t, err)

	adhoc, err := CreateAdhocTask(ctx, u, CreateAdhocTaskInput{
		UserID: "user-1", ScheduledDate: "2026-08-03", Name: "call dentist", Category: "AVOIDANT", Type: "ADHOC",
	})
	require.NoError(t, err)
	require.NoError(t, u.Commit())

	u2 := newTestUoW(t, client, "user-1")
	_, err = ScheduleDay(ctx, u2, &domain.User{ID: "user-1"}, ScheduleDayInput{
		UserID: "user-1", Date: "2026-08-03", TemplateID: &tplID,
	})
	require.NoError(t, err)
	require.NoError(t, u2.Commit())

	tasks, err := client.Task.Query().All(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1, "adhoc task must survive rescheduling")
	assert.Equal(t, adhoc.ID, tasks[0].ID)
}

func TestScheduleDay_MissingTemplateErrors(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	seedUser(t, client, "user-1")

	u := newTestUoW(t, client, "user-1")
	_, err := ScheduleDay(ctx, u, &domain.User{ID: "user-1"}, ScheduleDayInput{
		UserID: "user-1", Date: "2026-08-03",
	})
	assert.Error(t, err)
}
