package queries

import (
	"context"
	"time"

	"github.com/dayforge/dayforge/ent"
	entauditlog "github.com/dayforge/dayforge/ent/auditlog"
	"github.com/dayforge/dayforge/internal/domain"
)

// Risk weights and thresholds (§4.5.5).
const (
	weightAvoidant   = 30
	weightForgettable = 25
	weightUrgent     = 20

	completionPenaltyBelow40 = 40
	completionPenaltyBelow60 = 20

	nonDailyPenalty = 15

	riskThreshold = 30
)

// TaskRiskResult is one scored task (§4.5.5).
type TaskRiskResult struct {
	TaskID         string
	Score          int
	CompletionRate int // 0-100
}

// TaskRisk scores tasks for risk of being missed: tasks with DAILY frequency
// or COMPLETE status are never scored. Completion rate is derived from
// TaskCompletedEvent/TaskPuntedEvent audit logs over lookbackDays, grouped by
// the task's routine (adhoc tasks with no routine get a neutral 100% rate
// since there is no history to judge them against).
func TaskRisk(ctx context.Context, client *ent.Client, userID string, tasks []*ent.Task, lookbackDays int, now time.Time) ([]TaskRiskResult, error) {
	since := now.AddDate(0, 0, -lookbackDays)
	results := make([]TaskRiskResult, 0, len(tasks))

	for _, t := range tasks {
		if t.Frequency == string(domain.FrequencyDaily) || t.Status == string(domain.TaskComplete) {
			continue
		}

		completionRate := 100
		if t.RoutineDefinitionID != nil {
			rate, err := routineCompletionRate(ctx, client, userID, *t.RoutineDefinitionID, since)
			if err != nil {
				return nil, err
			}
			completionRate = rate
		}

		score := 0
		switch t.Category {
		case "AVOIDANT":
			score += weightAvoidant
		case "FORGETTABLE":
			score += weightForgettable
		case "URGENT":
			score += weightUrgent
		}
		switch {
		case completionRate < 40:
			score += completionPenaltyBelow40
		case completionRate < 60:
			score += completionPenaltyBelow60
		}
		if t.Frequency != string(domain.FrequencyDaily) {
			score += nonDailyPenalty
		}

		if score >= riskThreshold {
			results = append(results, TaskRiskResult{TaskID: t.ID, Score: score, CompletionRate: completionRate})
		}
	}
	return results, nil
}

// routineCompletionRate counts TaskCompletedEvent vs TaskPuntedEvent audit
// logs for tasks materialized from routineDefinitionID since `since`.
func routineCompletionRate(ctx context.Context, client *ent.Client, userID, routineDefinitionID string, since time.Time) (int, error) {
	rows, err := client.AuditLog.Query().
		Where(
			entauditlog.UserID(userID),
			entauditlog.EntityType("task"),
			entauditlog.OccurredAtGTE(since),
			entauditlog.ActivityTypeIn("TaskCompletedEvent", "TaskPuntedEvent"),
		).
		All(ctx)
	if err != nil {
		return 0, err
	}

	completed, total := 0, 0
	for _, row := range rows {
		if row.Meta.EntityData == nil {
			continue
		}
		rdID, _ := row.Meta.EntityData["routine_definition_id"].(string)
		if rdID != routineDefinitionID {
			continue
		}
		total++
		if row.ActivityType == "TaskCompletedEvent" {
			completed++
		}
	}
	if total == 0 {
		return 100, nil
	}
	return completed * 100 / total, nil
}
