package reactive

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayforge/dayforge/internal/commands"
	"github.com/dayforge/dayforge/internal/events"
	"github.com/dayforge/dayforge/internal/gateway"
	"github.com/dayforge/dayforge/internal/masking"
	"github.com/dayforge/dayforge/internal/uow"
	"github.com/dayforge/dayforge/internal/worker"
)

func TestMorningOverview_OutsideConfiguredBucketIsNoOp(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	_, err := client.User.Create().SetID("user-1").SetTimezone("UTC").SetMorningOverviewTime("07:00").Save(ctx)
	require.NoError(t, err)

	factory := uow.NewFactory(client, events.NewDispatcher(), noopTestPublisher{}, worker.NewDBStore(client), masking.NewService())
	gw := gateway.NewScriptedLLMGateway()

	now := time.Date(2026, 8, 1, 14, 0, 0, 0, time.UTC)
	require.NoError(t, MorningOverview(ctx, factory, client, gw, nil, "user-1", now))

	rows, err := client.PushNotification.Query().All(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestMorningOverview_InBucketSendsOverviewOnce(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	_, err := client.User.Create().SetID("user-1").SetTimezone("UTC").SetMorningOverviewTime("07:00").Save(ctx)
	require.NoError(t, err)
	_, err = client.PushSubscription.Create().SetID("sub-1").SetUserID("user-1").SetEndpoint("https://push.example/sub-1").Save(ctx)
	require.NoError(t, err)

	factory := uow.NewFactory(client, events.NewDispatcher(), noopTestPublisher{}, worker.NewDBStore(client), masking.NewService())
	gw := gateway.NewScriptedLLMGateway(commands.LLMResponse{
		ToolCalls: []commands.LLMToolCall{{Name: "render_overview", Arguments: map[string]interface{}{"message": "Good morning! 2 tasks today."}}},
	})
	push := &capturingPushGateway{}

	now := time.Date(2026, 8, 1, 7, 5, 0, 0, time.UTC)
	require.NoError(t, MorningOverview(ctx, factory, client, gw, push, "user-1", now))

	rows, err := client.PushNotification.Query().All(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "morning_overview:2026-08-01", rows[0].TriggeredBy)
	require.Len(t, push.sent, 1)

	// a second call in the same bucket must not send again
	require.NoError(t, MorningOverview(ctx, factory, client, gw, push, "user-1", now.Add(5*time.Minute)))
	rows, err = client.PushNotification.Query().All(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestMorningOverview_EmptyOverviewIsNoOp(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	_, err := client.User.Create().SetID("user-1").SetTimezone("UTC").SetMorningOverviewTime("07:00").Save(ctx)
	require.NoError(t, err)

	factory := uow.NewFactory(client, events.NewDispatcher(), noopTestPublisher{}, worker.NewDBStore(client), masking.NewService())
	gw := gateway.NewScriptedLLMGateway(commands.LLMResponse{})

	now := time.Date(2026, 8, 1, 7, 5, 0, 0, time.UTC)
	require.NoError(t, MorningOverview(ctx, factory, client, gw, nil, "user-1", now))

	rows, err := client.PushNotification.Query().All(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
