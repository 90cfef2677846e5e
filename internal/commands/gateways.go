package commands

import (
	"context"
	"time"

	"github.com/dayforge/dayforge/internal/domain"
)

// CalendarGateway abstracts the external calendar wire protocol (§1
// Out-of-scope collaborator). Implementations live in internal/gateway.
type CalendarGateway interface {
	RefreshToken(ctx context.Context, token domain.AuthToken) (domain.AuthToken, error)
	LoadCalendarEvents(ctx context.Context, platform string, token domain.AuthToken, syncToken *string) (CalendarSyncResult, error)
}

// CalendarSyncResult is the gateway's response shape (§4.4).
type CalendarSyncResult struct {
	EntryUpserts  []CalendarEntryUpsert
	EntryDeletes  []string // platform_ids
	SeriesUpserts []CalendarSeriesUpsert
	SeriesDeletes []string // series_platform_ids
	NextSyncToken string
}

// CalendarEntryUpsert is one occurrence reported by the gateway.
type CalendarEntryUpsert struct {
	PlatformID       string
	SeriesPlatformID *string
	Name             string
	EventCategory    string
	Frequency        domain.TaskFrequency
	StartsAt         time.Time
	EndsAt           time.Time
	AttendanceStatus domain.AttendanceStatus
}

// CalendarSeriesUpsert is one recurring series reported by the gateway.
type CalendarSeriesUpsert struct {
	SeriesPlatformID string
	Name             string
	EventCategory    string
	Frequency        domain.TaskFrequency
	Recurrence       *domain.RecurrenceSchedule
	StartsAt         time.Time
	EndsAt           *time.Time
}

// SMSGateway abstracts outbound SMS transport (§1).
type SMSGateway interface {
	SendMessage(ctx context.Context, toNumber, body string) error
}

// PushGateway abstracts web-push delivery (§1).
type PushGateway interface {
	Send(ctx context.Context, sub domain.PushSubscription, payload string) error
}

// LLMGateway abstracts the LLM provider wire protocol (§1, §4.6).
type LLMGateway interface {
	Complete(ctx context.Context, req LLMRequest) (LLMResponse, error)
}

// LLMRequest bundles the four assembled prompt parts plus tool specs.
type LLMRequest struct {
	Provider      string
	SystemPrompt  string
	ContextPrompt string
	AskPrompt     string
	ToolsPrompt   string
	Tools         []ToolSpec
}

// ToolSpec is the reflection-derived tool definition handed to the gateway
// (§4.6, §9 "duck-typed tool callbacks" redesign).
type ToolSpec struct {
	Name        string
	Description string
	Parameters  []ToolParam
}

// ToolParam is one entry in a tool's parameter schema.
type ToolParam struct {
	Name string
	Type string // string|int|bool|time|enum|list|optional
	Doc  string
}

// LLMResponse is the gateway's reply: either native tool calls or raw text
// to fall back to JSON-parsing (§4.6 step 1).
type LLMResponse struct {
	ToolCalls []LLMToolCall
	Text      string
}

// LLMToolCall is one tool invocation the LLM decided on.
type LLMToolCall struct {
	Name      string
	Arguments map[string]interface{}
}
