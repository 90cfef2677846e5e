package reactive

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayforge/dayforge/ent/schema"
	"github.com/dayforge/dayforge/internal/domain"
	"github.com/dayforge/dayforge/internal/events"
	"github.com/dayforge/dayforge/internal/masking"
	"github.com/dayforge/dayforge/internal/uow"
	"github.com/dayforge/dayforge/internal/worker"
)

func TestAlarmTrigger_FiresDueAlarmAndPersistsTriggeredAt(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	_, err := client.User.Create().SetID("user-1").SetTimezone("UTC").Save(ctx)
	require.NoError(t, err)

	now := time.Date(2026, 8, 1, 7, 30, 0, 0, time.UTC)
	dayID := domain.DayID("user-1", "2026-08-01")
	_, err = client.Day.Create().
		SetID(dayID).
		SetUserID("user-1").
		SetDate("2026-08-01").
		SetStatus("SCHEDULED").
		SetAlarms([]schema.Alarm{
			{ID: "alarm-1", Name: "wake up", Time: "07:00", DateTime: now.Add(-30 * time.Minute), Type: "LOUD"},
		}).
		Save(ctx)
	require.NoError(t, err)

	factory := uow.NewFactory(client, events.NewDispatcher(), noopTestPublisher{}, worker.NewDBStore(client), masking.NewService())
	err = AlarmTrigger(ctx, factory, client, "user-1", now)
	require.NoError(t, err)

	row, err := client.Day.Get(ctx, dayID)
	require.NoError(t, err)
	require.Len(t, row.Alarms, 1)
	assert.NotNil(t, row.Alarms[0].TriggeredAt)
}

func TestAlarmTrigger_NoDayRowIsNoOp(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	_, err := client.User.Create().SetID("user-1").SetTimezone("UTC").Save(ctx)
	require.NoError(t, err)

	factory := uow.NewFactory(client, events.NewDispatcher(), noopTestPublisher{}, worker.NewDBStore(client), masking.NewService())
	err = AlarmTrigger(ctx, factory, client, "user-1", time.Date(2026, 8, 1, 7, 30, 0, 0, time.UTC))
	assert.NoError(t, err)
}

func TestAlarmTrigger_NotYetDueAlarmIsUntouched(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	_, err := client.User.Create().SetID("user-1").SetTimezone("UTC").Save(ctx)
	require.NoError(t, err)

	now := time.Date(2026, 8, 1, 6, 0, 0, 0, time.UTC)
	dayID := domain.DayID("user-1", "2026-08-01")
	_, err = client.Day.Create().
		SetID(dayID).
		SetUserID("user-1").
		SetDate("2026-08-01").
		SetStatus("SCHEDULED").
		SetAlarms([]schema.Alarm{
			{ID: "alarm-1", Name: "wake up", Time: "07:00", DateTime: now.Add(time.Hour), Type: "LOUD"},
		}).
		Save(ctx)
	require.NoError(t, err)

	factory := uow.NewFactory(client, events.NewDispatcher(), noopTestPublisher{}, worker.NewDBStore(client), masking.NewService())
	require.NoError(t, AlarmTrigger(ctx, factory, client, "user-1", now))

	row, err := client.Day.Get(ctx, dayID)
	require.NoError(t, err)
	assert.Nil(t, row.Alarms[0].TriggeredAt)
}
