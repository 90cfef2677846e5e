package schema

import "time"

// LLMRunResultSnapshot is captured per LLM use-case run for reproducibility.
// It is embedded as a JSON column on whichever entity the run was "about"
// (Task, Message, PushNotification, BrainDumpItem).
type LLMRunResultSnapshot struct {
	Provider        string          `json:"provider"`
	CurrentTime     time.Time       `json:"current_time"`
	SystemPrompt    string          `json:"system_prompt"`
	ContextPrompt   string          `json:"context_prompt"`
	AskPrompt       string          `json:"ask_prompt"`
	ToolsPrompt     string          `json:"tools_prompt"`
	ToolCalls       []ToolCallTrace `json:"tool_calls"`
	ContextEntities []string        `json:"referenced_entities"`
}

// ToolCallTrace records a single tool invocation and its result, as decided
// by the LLM during a use-case run.
type ToolCallTrace struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
	Result    interface{}            `json:"result,omitempty"`
	Error     string                 `json:"error,omitempty"`
}
