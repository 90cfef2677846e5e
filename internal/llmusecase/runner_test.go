package llmusecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayforge/dayforge/internal/commands"
	"github.com/dayforge/dayforge/internal/gateway"
)

func TestRun_NativeToolCallsAreExecutedAndTraced(t *testing.T) {
	gw := gateway.NewScriptedLLMGateway(commands.LLMResponse{
		ToolCalls: []commands.LLMToolCall{
			{Name: "no_action", Arguments: map[string]interface{}{}},
		},
	})

	var noActioned bool
	now := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

	snapshot, err := Run(context.Background(), gw, Request{
		Provider:     "default",
		SystemPrompt: "you triage notes",
		Tools:        []ToolCallback{NoActionTool(&noActioned)},
	}, now)

	require.NoError(t, err)
	assert.True(t, noActioned)
	assert.Equal(t, now, snapshot.CurrentTime)
	require.Len(t, snapshot.ToolCalls, 1)
	assert.Equal(t, "no_action", snapshot.ToolCalls[0].Name)
	assert.Empty(t, snapshot.ToolCalls[0].Error)
}

func TestRun_UnknownToolIsTracedAsError(t *testing.T) {
	gw := gateway.NewScriptedLLMGateway(commands.LLMResponse{
		ToolCalls: []commands.LLMToolCall{{Name: "does_not_exist"}},
	})

	snapshot, err := Run(context.Background(), gw, Request{Provider: "default"}, time.Now())

	require.NoError(t, err)
	require.Len(t, snapshot.ToolCalls, 1)
	assert.Contains(t, snapshot.ToolCalls[0].Error, "unknown tool")
}

func TestRun_ToolCallbackErrorIsTraced(t *testing.T) {
	gw := gateway.NewScriptedLLMGateway(commands.LLMResponse{
		ToolCalls: []commands.LLMToolCall{{Name: "create_task", Arguments: map[string]interface{}{}}},
	})

	createTool := CreateTaskTool(func(ctx context.Context, name, category, taskType, scheduledDate string) (string, error) {
		t.Fatal("create should not be invoked when required args are missing")
		return "", nil
	})

	snapshot, err := Run(context.Background(), gw, Request{Provider: "default", Tools: []ToolCallback{createTool}}, time.Now())

	require.NoError(t, err)
	require.Len(t, snapshot.ToolCalls, 1)
	assert.Contains(t, snapshot.ToolCalls[0].Error, "required")
}

func TestRun_ToolCallWithWrongArgumentTypeIsRejectedBeforeInvocation(t *testing.T) {
	gw := gateway.NewScriptedLLMGateway(commands.LLMResponse{
		ToolCalls: []commands.LLMToolCall{{
			Name:      "decide_notification",
			Arguments: map[string]interface{}{"should_notify": "yes", "message": "go", "priority": "normal", "reason": "because"},
		}},
	})

	var decision Decision
	decideTool := DecideNotificationTool(&decision)

	snapshot, err := Run(context.Background(), gw, Request{Provider: "default", Tools: []ToolCallback{decideTool}}, time.Now())

	require.NoError(t, err)
	require.Len(t, snapshot.ToolCalls, 1)
	assert.Contains(t, snapshot.ToolCalls[0].Error, "should_notify")
	assert.Equal(t, Decision{}, decision) // Fn never ran, so out was never populated
}

func TestRun_FallsBackToJSONFencedTextWhenNoNativeToolCalls(t *testing.T) {
	gw := gateway.NewScriptedLLMGateway(commands.LLMResponse{
		Text: "sure, here you go:\n```json\n{\"name\": \"no_action\", \"arguments\": {}}\n```\nthanks",
	})

	var noActioned bool
	snapshot, err := Run(context.Background(), gw, Request{Provider: "default", Tools: []ToolCallback{NoActionTool(&noActioned)}}, time.Now())

	require.NoError(t, err)
	assert.True(t, noActioned)
	require.Len(t, snapshot.ToolCalls, 1)
	assert.Equal(t, "no_action", snapshot.ToolCalls[0].Name)
}

func TestRun_FallsBackToBareJSONArrayInText(t *testing.T) {
	gw := gateway.NewScriptedLLMGateway(commands.LLMResponse{
		Text: `[{"name": "no_action", "arguments": {}}]`,
	})

	var noActioned bool
	snapshot, err := Run(context.Background(), gw, Request{Provider: "default", Tools: []ToolCallback{NoActionTool(&noActioned)}}, time.Now())

	require.NoError(t, err)
	assert.True(t, noActioned)
	require.Len(t, snapshot.ToolCalls, 1)
}

func TestRun_NoToolCallsAndNoTextProducesEmptyTraces(t *testing.T) {
	gw := gateway.NewScriptedLLMGateway(commands.LLMResponse{})

	snapshot, err := Run(context.Background(), gw, Request{Provider: "default"}, time.Now())

	require.NoError(t, err)
	assert.Empty(t, snapshot.ToolCalls)
}

func TestRun_GatewayErrorIsPropagated(t *testing.T) {
	gw := gateway.NewScriptedLLMGateway() // empty script -> next call errors

	_, err := Run(context.Background(), gw, Request{Provider: "default"}, time.Now())
	assert.Error(t, err)
}

func TestRun_RecordsContextEntitiesOnSnapshot(t *testing.T) {
	gw := gateway.NewScriptedLLMGateway(commands.LLMResponse{})

	snapshot, err := Run(context.Background(), gw, Request{
		Provider:        "default",
		ContextEntities: []string{"day-1", "task-1"},
	}, time.Now())

	require.NoError(t, err)
	assert.Equal(t, []string{"day-1", "task-1"}, snapshot.ContextEntities)
}
