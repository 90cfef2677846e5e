package gateway

import (
	"context"
	"fmt"
	"sync"

	"github.com/dayforge/dayforge/internal/commands"
)

// ScriptedLLMGateway implements commands.LLMGateway with a queue of
// pre-built responses consumed in order, for deterministic tests of the
// reactive jobs and the brain dump triage use case.
type ScriptedLLMGateway struct {
	mu       sync.Mutex
	script   []commands.LLMResponse
	index    int
	requests []commands.LLMRequest
}

// NewScriptedLLMGateway returns a gateway that replays responses in order.
func NewScriptedLLMGateway(responses ...commands.LLMResponse) *ScriptedLLMGateway {
	return &ScriptedLLMGateway{script: responses}
}

// Complete implements commands.LLMGateway.
func (g *ScriptedLLMGateway) Complete(ctx context.Context, req commands.LLMRequest) (commands.LLMResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.requests = append(g.requests, req)
	if g.index >= len(g.script) {
		return commands.LLMResponse{}, fmt.Errorf("scripted llm gateway: no more responses (call %d)", g.index+1)
	}
	resp := g.script[g.index]
	g.index++
	return resp, nil
}

// Requests returns every request Complete has received so far, for
// assertions on prompt assembly.
func (g *ScriptedLLMGateway) Requests() []commands.LLMRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]commands.LLMRequest(nil), g.requests...)
}
