package queries

import (
	"context"
	"time"

	"github.com/dayforge/dayforge/ent"
)

// LLMPromptContext bundles everything the §4.6 use-case runner serializes
// into its "context" prompt part and records verbatim in
// LLMRunResultSnapshot.ContextPrompt's source data.
type LLMPromptContext struct {
	Day       *DayContext
	TaskRisks []TaskRiskResult
}

// BuildLLMPromptContext assembles a DayContext plus its task-risk scores
// (§4.5.5) for userID/targetDate — the read-side input every LLM use case
// (smart notification, morning overview, brain-dump triage) starts from.
func BuildLLMPromptContext(ctx context.Context, client *ent.Client, userID, targetDate string, loc *time.Location, lookbackDays int, now time.Time) (*LLMPromptContext, error) {
	dc, err := BuildDayContext(ctx, client, userID, targetDate, loc)
	if err != nil {
		return nil, err
	}
	risks, err := TaskRisk(ctx, client, userID, dc.Tasks, lookbackDays, now)
	if err != nil {
		return nil, err
	}
	return &LLMPromptContext{Day: dc, TaskRisks: risks}, nil
}
