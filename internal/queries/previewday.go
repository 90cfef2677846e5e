package queries

import (
	"context"
	"sort"
	"time"

	"github.com/dayforge/dayforge/ent"
	"github.com/dayforge/dayforge/ent/routinedefinition"
	"github.com/dayforge/dayforge/internal/domain"
)

// TaskPreview is one task ScheduleDay would materialize for a date, without
// persisting it (§4.3 step 5, used by a "preview before committing" UI).
type TaskPreview struct {
	Name                string
	Category            string
	Type                string
	Schedule            *domain.TimeWindow
	Tags                []string
	RoutineDefinitionID string
	RoutineTaskIndex    int
}

// PreviewDay mirrors ScheduleDay's task-materialization step (§4.3 step 5)
// as a read-only projection: it never writes, and callers must still run
// ScheduleDay to actually commit. Ordering follows §4.3's tie-break rule —
// tasks with a schedule start_time sort before those without one; ties keep
// routine enumeration order, then routine_task order.
func PreviewDay(ctx context.Context, client *ent.Client, userID string, date time.Time) ([]TaskPreview, error) {
	routines, err := client.RoutineDefinition.Query().
		Where(routinedefinition.UserID(userID), routinedefinition.Active(true)).
		All(ctx)
	if err != nil {
		return nil, err
	}

	var previews []TaskPreview
	for _, r := range routines {
		recurrence := domain.RecurrenceSchedule{Frequency: r.Recurrence.Frequency, Weekdays: r.Recurrence.Weekdays, DayNumber: r.Recurrence.DayNumber}
		if !recurrence.Matches(date) {
			continue
		}
		for i, rt := range r.RoutineTasks {
			var schedule *domain.TimeWindow
			if rt.Schedule != nil {
				schedule = &domain.TimeWindow{TimingType: domain.TimingType(rt.Schedule.TimingType), StartTime: rt.Schedule.StartTime, EndTime: rt.Schedule.EndTime}
			}
			previews = append(previews, TaskPreview{
				Name:                rt.Name,
				Category:            rt.Category,
				Type:                rt.Type,
				Schedule:            schedule,
				Tags:                rt.Tags,
				RoutineDefinitionID: r.ID,
				RoutineTaskIndex:    i,
			})
		}
	}

	sort.SliceStable(previews, func(i, j int) bool {
		a, b := previews[i].Schedule, previews[j].Schedule
		aHas := a != nil && a.StartTime != nil
		bHas := b != nil && b.StartTime != nil
		if aHas != bHas {
			return aHas
		}
		if aHas && bHas && *a.StartTime != *b.StartTime {
			return *a.StartTime < *b.StartTime
		}
		return false // preserves stable insertion order for ties
	})
	return previews, nil
}
