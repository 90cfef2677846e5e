// Package llmusecase implements the §4.6 LLM use-case runner: prompt
// assembly, gateway invocation, tool-call extraction (native channel with a
// JSON-fallback parser), argument-driven callback dispatch, and
// LLMRunResultSnapshot capture.
package llmusecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/dayforge/dayforge/internal/commands"
	"github.com/dayforge/dayforge/internal/domain"
)

// ToolCallback is a single tool the LLM may invoke, described declaratively
// (name, description, parameter schema) rather than recovered by runtime
// reflection over the Go function itself — the "duck-typed tool callback"
// shape the commands package's ToolSpec/ToolParam types were designed
// around (§9 Design Notes).
type ToolCallback struct {
	Name        string
	Description string
	Params      []commands.ToolParam
	Fn          func(ctx context.Context, args map[string]interface{}) (interface{}, error)
}

// Request bundles the four assembled prompt parts, the tool roster, and the
// entity ids the context prompt was built from (recorded into the snapshot
// for reproducibility).
type Request struct {
	Provider        string
	SystemPrompt    string
	ContextPrompt   string
	AskPrompt       string
	ToolsPrompt     string
	Tools           []ToolCallback
	ContextEntities []string
}

// Run invokes gw, extracts and executes tool calls, and returns the
// snapshot to be attached to whatever entity the run is "about" (§4.6 step
// 3). The runner is synchronous from the caller's point of view.
func Run(ctx context.Context, gw commands.LLMGateway, req Request, now time.Time) (domain.LLMRunResultSnapshot, error) {
	start := time.Now()

	specs := make([]commands.ToolSpec, len(req.Tools))
	for i, t := range req.Tools {
		specs[i] = commands.ToolSpec{Name: t.Name, Description: t.Description, Parameters: t.Params}
	}

	resp, err := gw.Complete(ctx, commands.LLMRequest{
		Provider:      req.Provider,
		SystemPrompt:  req.SystemPrompt,
		ContextPrompt: req.ContextPrompt,
		AskPrompt:     req.AskPrompt,
		ToolsPrompt:   req.ToolsPrompt,
		Tools:         specs,
	})
	if err != nil {
		slog.Error("llm_use_case_run", "provider", req.Provider, "error", err, "latency_ms", time.Since(start).Milliseconds())
		return domain.LLMRunResultSnapshot{}, err
	}

	calls := resp.ToolCalls
	if len(calls) == 0 && resp.Text != "" {
		calls = extractToolCallsFromText(resp.Text)
	}

	traces := make([]domain.ToolCallTrace, 0, len(calls))
	for _, call := range calls {
		trace := domain.ToolCallTrace{Name: call.Name, Arguments: call.Arguments}
		cb := findTool(req.Tools, call.Name)
		if cb == nil {
			trace.Error = "unknown tool: " + call.Name
			traces = append(traces, trace)
			continue
		}
		if err := validateToolArgs(cb.Params, call.Arguments); err != nil {
			trace.Error = err.Error()
			traces = append(traces, trace)
			continue
		}
		result, err := cb.Fn(ctx, call.Arguments)
		if err != nil {
			trace.Error = err.Error()
		} else {
			trace.Result = result
		}
		traces = append(traces, trace)
	}

	snapshot := domain.LLMRunResultSnapshot{
		Provider:        req.Provider,
		CurrentTime:     now,
		SystemPrompt:    req.SystemPrompt,
		ContextPrompt:   req.ContextPrompt,
		AskPrompt:       req.AskPrompt,
		ToolsPrompt:     req.ToolsPrompt,
		ToolCalls:       traces,
		ContextEntities: req.ContextEntities,
	}

	slog.Info("llm_use_case_run",
		"provider", req.Provider,
		"tool_calls", len(traces),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return snapshot, nil
}

// validateToolArgs checks a tool call's arguments against the callback's
// declared parameter schema (§4.6 step 2) before the callback ever runs: each
// non-"optional" param must be present, and its value must match the basic
// shape its type tag implies.
func validateToolArgs(params []commands.ToolParam, args map[string]interface{}) error {
	for _, p := range params {
		if p.Type == "optional" {
			continue
		}
		v, present := args[p.Name]
		if !present || v == nil {
			return fmt.Errorf("missing required argument %q", p.Name)
		}
		if err := checkArgType(p.Type, v); err != nil {
			return fmt.Errorf("argument %q: %w", p.Name, err)
		}
	}
	return nil
}

// checkArgType validates v against typ, one of ToolParam's type tags
// (string|int|bool|time|enum|list). Arguments arrive json.Unmarshal'd into
// interface{}, so numbers surface as float64 regardless of whether the LLM
// emitted an integer literal.
func checkArgType(typ string, v interface{}) error {
	switch typ {
	case "string", "enum", "time":
		if _, ok := v.(string); !ok {
			return fmt.Errorf("expected string, got %T", v)
		}
	case "bool":
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("expected bool, got %T", v)
		}
	case "int":
		switch v.(type) {
		case float64, int, int64:
		default:
			return fmt.Errorf("expected int, got %T", v)
		}
	case "list":
		if _, ok := v.([]interface{}); !ok {
			return fmt.Errorf("expected list, got %T", v)
		}
	}
	return nil
}

func findTool(tools []ToolCallback, name string) *ToolCallback {
	for i := range tools {
		if tools[i].Name == name {
			return &tools[i]
		}
	}
	return nil
}

var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(.+?)\\s*```")

// extractToolCallsFromText falls back to parsing the response body as JSON
// when the gateway's native tool-call channel is empty (§4.6 step 1): a
// fenced code block is preferred if present, otherwise the whole body is
// tried as-is. Accepts either a single {"name":..,"arguments":{...}} object
// or an array of them.
func extractToolCallsFromText(text string) []commands.LLMToolCall {
	body := strings.TrimSpace(text)
	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		body = m[1]
	}

	var single struct {
		Name      string                 `json:"name"`
		Arguments map[string]interface{} `json:"arguments"`
	}
	if err := json.Unmarshal([]byte(body), &single); err == nil && single.Name != "" {
		return []commands.LLMToolCall{{Name: single.Name, Arguments: single.Arguments}}
	}

	var multiple []struct {
		Name      string                 `json:"name"`
		Arguments map[string]interface{} `json:"arguments"`
	}
	if err := json.Unmarshal([]byte(body), &multiple); err == nil {
		calls := make([]commands.LLMToolCall, len(multiple))
		for i, c := range multiple {
			calls[i] = commands.LLMToolCall{Name: c.Name, Arguments: c.Arguments}
		}
		return calls
	}
	return nil
}
