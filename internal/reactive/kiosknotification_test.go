package reactive

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayforge/dayforge/internal/commands"
	"github.com/dayforge/dayforge/internal/gateway"
)

func TestKioskNotification_DisabledIsNoOp(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	gw := gateway.NewScriptedLLMGateway()
	publisher := &capturingPublisher{}

	require.NoError(t, KioskNotification(ctx, client, gw, publisher, false, "user-1", time.Now()))
	assert.Empty(t, gw.Requests())
	assert.Empty(t, publisher.kiosk)
}

func TestKioskNotification_PositiveDecisionPublishesWithHash(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	_, err := client.User.Create().SetID("user-1").SetTimezone("UTC").Save(ctx)
	require.NoError(t, err)

	gw := gateway.NewScriptedLLMGateway(commands.LLMResponse{
		ToolCalls: []commands.LLMToolCall{{Name: "decide_notification", Arguments: map[string]interface{}{
			"should_notify": true, "message": "time to head out", "priority": "high",
		}}},
	})
	publisher := &capturingPublisher{}

	require.NoError(t, KioskNotification(ctx, client, gw, publisher, true, "user-1", time.Now()))

	require.Len(t, publisher.kiosk, 1)
	assert.Equal(t, "time to head out", publisher.kiosk[0].Message)
	assert.NotEmpty(t, publisher.kiosk[0].MessageHash)
}

func TestKioskNotification_LowPriorityDoesNotPublish(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	_, err := client.User.Create().SetID("user-1").SetTimezone("UTC").Save(ctx)
	require.NoError(t, err)

	gw := gateway.NewScriptedLLMGateway(commands.LLMResponse{
		ToolCalls: []commands.LLMToolCall{{Name: "decide_notification", Arguments: map[string]interface{}{
			"should_notify": true, "message": "fyi", "priority": "low",
		}}},
	})
	publisher := &capturingPublisher{}

	require.NoError(t, KioskNotification(ctx, client, gw, publisher, true, "user-1", time.Now()))
	assert.Empty(t, publisher.kiosk)
}
