package commands

import (
	"context"
	"fmt"

	"github.com/dayforge/dayforge/ent"
	"github.com/dayforge/dayforge/ent/schema"
	"github.com/dayforge/dayforge/internal/domain"
)

// The helpers below translate between the generated ent row types and the
// behavior-rich domain aggregates. Keeping this mapping in one file (rather
// than scattered per command) mirrors the teacher's convention of small,
// single-purpose service files that each own one conversion concern.

// UserFromEnt converts a loaded User row into the domain settings struct
// every reactive handler and command needs (timezone, LLM provider,
// template defaults, notification rules).
func UserFromEnt(row *ent.User) *domain.User {
	return &domain.User{
		ID:                                row.ID,
		Timezone:                          row.Timezone,
		PhoneNumber:                       row.PhoneNumber,
		PreferredLLMProvider:              row.PreferredLlmProvider,
		MorningOverviewTime:               row.MorningOverviewTime,
		CalendarEntryNotificationSettings: calendarNotificationSettingsFromEnt(row.CalendarEntryNotificationSettings),
		TemplateDefaults:                  row.TemplateDefaults,
	}
}

func calendarNotificationSettingsFromEnt(in schema.CalendarEntryNotificationSettings) domain.CalendarEntryNotificationSettings {
	rules := make([]domain.CalendarReminderRule, len(in.Rules))
	for i, r := range in.Rules {
		rules[i] = domain.CalendarReminderRule{Channel: r.Channel, MinutesBefore: r.MinutesBefore}
	}
	return domain.CalendarEntryNotificationSettings{Enabled: in.Enabled, Rules: rules}
}

func dayTemplateFromEnt(row *ent.DayTemplate) *domain.DayTemplate {
	return &domain.DayTemplate{
		ID:                   row.ID,
		UserID:               row.UserID,
		Slug:                 row.Slug,
		StartTime:            row.StartTime,
		EndTime:              row.EndTime,
		RoutineDefinitionIDs: row.RoutineDefinitionIds,
		TimeBlocks:           timeBlocksFromEnt(row.TimeBlocks),
		HighLevelPlan:        highLevelPlanFromEnt(row.HighLevelPlan),
	}
}

func timeBlocksFromEnt(in []schema.TimeBlock) []domain.TimeBlock {
	out := make([]domain.TimeBlock, len(in))
	for i, b := range in {
		out[i] = domain.TimeBlock{
			TimeBlockDefID: b.TimeBlockDefID,
			StartTime:      b.StartTime,
			EndTime:        b.EndTime,
			Name:           b.Name,
		}
	}
	return out
}

func highLevelPlanFromEnt(in schema.HighLevelPlan) domain.HighLevelPlan {
	return domain.HighLevelPlan{Title: in.Title, Text: in.Text, Intentions: in.Intentions}
}

func dayFromEnt(row *ent.Day) *domain.Day {
	return &domain.Day{
		ID:            row.ID,
		UserID:        row.UserID,
		Date:          row.Date,
		Status:        domain.DayStatus(row.Status),
		TemplateID:    row.TemplateID,
		TimeBlocks:    timeBlocksFromEnt(row.TimeBlocks),
		HighLevelPlan: highLevelPlanFromEnt(row.HighLevelPlan),
		Alarms:        alarmsFromEnt(row.Alarms),
		Tags:          row.Tags,
		ScheduledAt:   row.ScheduledAt,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

func alarmsFromEnt(in []schema.Alarm) []domain.Alarm {
	out := make([]domain.Alarm, len(in))
	for i, a := range in {
		out[i] = domain.Alarm{
			ID:          a.ID,
			Name:        a.Name,
			Time:        a.Time,
			DateTime:    a.DateTime,
			Type:        domain.AlarmType(a.Type),
			TriggeredAt: a.TriggeredAt,
		}
	}
	return out
}

func alarmsToEnt(in []domain.Alarm) []schema.Alarm {
	out := make([]schema.Alarm, len(in))
	for i, a := range in {
		out[i] = schema.Alarm{
			ID:          a.ID,
			Name:        a.Name,
			Time:        a.Time,
			DateTime:    a.DateTime,
			Type:        string(a.Type),
			TriggeredAt: a.TriggeredAt,
		}
	}
	return out
}

func timeBlocksToEnt(in []domain.TimeBlock) []schema.TimeBlock {
	out := make([]schema.TimeBlock, len(in))
	for i, b := range in {
		out[i] = schema.TimeBlock{TimeBlockDefID: b.TimeBlockDefID, StartTime: b.StartTime, EndTime: b.EndTime, Name: b.Name}
	}
	return out
}

func highLevelPlanToEnt(in domain.HighLevelPlan) schema.HighLevelPlan {
	return schema.HighLevelPlan{Title: in.Title, Text: in.Text, Intentions: in.Intentions}
}

// DayFromEnt exposes dayFromEnt to other packages (reactive handlers need to
// load a Day row into its domain aggregate the same way commands do).
func DayFromEnt(row *ent.Day) *domain.Day { return dayFromEnt(row) }

// PersistDay exposes upsertDay to other packages.
func PersistDay(ctx context.Context, tx *ent.Tx, d *domain.Day) error { return upsertDay(ctx, tx, d) }

// upsertDay persists dayAgg's current field values, creating the row if
// MarkPersisted has not yet been called (aggregate identity is deterministic,
// so "create" vs "update" is decided by whether the row already exists, not
// by a separate counter).
func upsertDay(ctx context.Context, tx *ent.Tx, d *domain.Day) error {
	_, err := tx.Day.Get(ctx, d.ID)
	switch {
	case ent.IsNotFound(err):
		_, err = tx.Day.Create().
			SetID(d.ID).
			SetUserID(d.UserID).
			SetDate(d.Date).
			SetStatus(string(d.Status)).
			SetNillableTemplateID(d.TemplateID).
			SetTimeBlocks(timeBlocksToEnt(d.TimeBlocks)).
			SetHighLevelPlan(highLevelPlanToEnt(d.HighLevelPlan)).
			SetAlarms(alarmsToEnt(d.Alarms)).
			SetTags(d.Tags).
			SetNillableScheduledAt(d.ScheduledAt).
			SetCreatedAt(d.CreatedAt).
			SetUpdatedAt(d.UpdatedAt).
			Save(ctx)
		return err
	case err != nil:
		return fmt.Errorf("commands: load day for upsert: %w", err)
	default:
		upd := tx.Day.UpdateOneID(d.ID).
			SetStatus(string(d.Status)).
			SetTimeBlocks(timeBlocksToEnt(d.TimeBlocks)).
			SetHighLevelPlan(highLevelPlanToEnt(d.HighLevelPlan)).
			SetAlarms(alarmsToEnt(d.Alarms)).
			SetTags(d.Tags).
			SetUpdatedAt(d.UpdatedAt)
		if d.TemplateID != nil {
			upd = upd.SetTemplateID(*d.TemplateID)
		} else {
			upd = upd.ClearTemplateID()
		}
		if d.ScheduledAt != nil {
			upd = upd.SetScheduledAt(*d.ScheduledAt)
		}
		_, err = upd.Save(ctx)
		return err
	}
}

func upsertTask(ctx context.Context, tx *ent.Tx, t *domain.Task) error {
	_, err := tx.Task.Get(ctx, t.ID)
	switch {
	case ent.IsNotFound(err):
		create := tx.Task.Create().
			SetID(t.ID).
			SetUserID(t.UserID).
			SetDayID(t.DayID).
			SetScheduledDate(t.ScheduledDate).
			SetName(t.Name).
			SetStatus(string(t.Status)).
			SetCategory(t.Category).
			SetType(t.Type).
			SetFrequency(string(t.Frequency)).
			SetTags(t.Tags).
			SetActions(taskActionsToEnt(t.Actions)).
			SetNillableRoutineDefinitionID(t.RoutineDefinitionID).
			SetNillableCompletedAt(t.CompletedAt).
			SetCreatedAt(t.CreatedAt).
			SetUpdatedAt(t.UpdatedAt)
		if t.Schedule != nil {
			create = create.SetSchedule(timeWindowToEnt(*t.Schedule))
		}
		_, err = create.Save(ctx)
		return err
	case err != nil:
		return fmt.Errorf("commands: load task for upsert: %w", err)
	default:
		upd := tx.Task.UpdateOneID(t.ID).
			SetStatus(string(t.Status)).
			SetCategory(t.Category).
			SetType(t.Type).
			SetFrequency(string(t.Frequency)).
			SetTags(t.Tags).
			SetActions(taskActionsToEnt(t.Actions)).
			SetUpdatedAt(t.UpdatedAt)
		if t.Schedule != nil {
			upd = upd.SetSchedule(timeWindowToEnt(*t.Schedule))
		}
		if t.CompletedAt != nil {
			upd = upd.SetCompletedAt(*t.CompletedAt)
		}
		_, err = upd.Save(ctx)
		return err
	}
}

func taskActionsToEnt(in []domain.TaskAction) []schema.TaskAction {
	out := make([]schema.TaskAction, len(in))
	for i, a := range in {
		out[i] = schema.TaskAction{Type: a.Type, OccurredAt: a.OccurredAt, Note: a.Note}
	}
	return out
}

func timeWindowToEnt(in domain.TimeWindow) schema.TimeWindow {
	return schema.TimeWindow{TimingType: string(in.TimingType), StartTime: in.StartTime, EndTime: in.EndTime}
}

func timeWindowFromEnt(in *schema.TimeWindow) *domain.TimeWindow {
	if in == nil {
		return nil
	}
	return &domain.TimeWindow{TimingType: domain.TimingType(in.TimingType), StartTime: in.StartTime, EndTime: in.EndTime}
}

func routineRecurrenceFromEnt(row *ent.RoutineDefinition) domain.RecurrenceSchedule {
	return domain.RecurrenceSchedule{
		Frequency: row.Recurrence.Frequency,
		Weekdays:  row.Recurrence.Weekdays,
		DayNumber: row.Recurrence.DayNumber,
	}
}

func routineTasksFromEnt(row *ent.RoutineDefinition) []domain.RoutineTask {
	out := make([]domain.RoutineTask, len(row.RoutineTasks))
	for i, rt := range row.RoutineTasks {
		out[i] = domain.RoutineTask{
			Name:     rt.Name,
			Category: rt.Category,
			Type:     rt.Type,
			Schedule: timeWindowFromEnt(rt.Schedule),
			Tags:     rt.Tags,
		}
	}
	return out
}

// persistMessage creates the append-only Message row. Messages are never
// updated, so there is no corresponding update branch.
func persistMessage(ctx context.Context, tx *ent.Tx, m *domain.Message) error {
	create := tx.Message.Create().
		SetID(m.ID).
		SetUserID(m.UserID).
		SetRole(string(m.Role)).
		SetContent(m.Content).
		SetMeta(m.Meta).
		SetNillableTriggeredBy(m.TriggeredBy).
		SetCreatedAt(m.CreatedAt)
	if m.LLMRunResult != nil {
		create = create.SetLlmRunResult(llmSnapshotToEnt(*m.LLMRunResult))
	}
	_, err := create.Save(ctx)
	return err
}

func messageFromEnt(row *ent.Message) *domain.Message {
	m := &domain.Message{
		ID:          row.ID,
		UserID:      row.UserID,
		Role:        domain.MessageRole(row.Role),
		Content:     row.Content,
		Meta:        row.Meta,
		TriggeredBy: row.TriggeredBy,
		CreatedAt:   row.CreatedAt,
	}
	if row.LlmRunResult != nil {
		snap := llmSnapshotFromEnt(*row.LlmRunResult)
		m.LLMRunResult = &snap
	}
	return m
}

// persistPushNotification creates the append-only PushNotification audit
// row.
func persistPushNotification(ctx context.Context, tx *ent.Tx, p *domain.PushNotification) error {
	create := tx.PushNotification.Create().
		SetID(p.ID).
		SetUserID(p.UserID).
		SetPushSubscriptionIds(p.PushSubscriptionIDs).
		SetContent(p.Content).
		SetStatus(string(p.Status)).
		SetNillableErrorMessage(p.ErrorMessage).
		SetSentAt(p.SentAt).
		SetTriggeredBy(p.TriggeredBy)
	if p.LLMSnapshot != nil {
		create = create.SetLlmSnapshot(llmSnapshotToEnt(*p.LLMSnapshot))
	}
	_, err := create.Save(ctx)
	return err
}

func llmSnapshotToEnt(in domain.LLMRunResultSnapshot) schema.LLMRunResultSnapshot {
	traces := make([]schema.ToolCallTrace, len(in.ToolCalls))
	for i, t := range in.ToolCalls {
		traces[i] = schema.ToolCallTrace{Name: t.Name, Arguments: t.Arguments, Result: t.Result, Error: t.Error}
	}
	return schema.LLMRunResultSnapshot{
		Provider:        in.Provider,
		CurrentTime:     in.CurrentTime,
		SystemPrompt:    in.SystemPrompt,
		ContextPrompt:   in.ContextPrompt,
		AskPrompt:       in.AskPrompt,
		ToolsPrompt:     in.ToolsPrompt,
		ToolCalls:       traces,
		ContextEntities: in.ContextEntities,
	}
}

func llmSnapshotFromEnt(in schema.LLMRunResultSnapshot) domain.LLMRunResultSnapshot {
	traces := make([]domain.ToolCallTrace, len(in.ToolCalls))
	for i, t := range in.ToolCalls {
		traces[i] = domain.ToolCallTrace{Name: t.Name, Arguments: t.Arguments, Result: t.Result, Error: t.Error}
	}
	return domain.LLMRunResultSnapshot{
		Provider:        in.Provider,
		CurrentTime:     in.CurrentTime,
		SystemPrompt:    in.SystemPrompt,
		ContextPrompt:   in.ContextPrompt,
		AskPrompt:       in.AskPrompt,
		ToolsPrompt:     in.ToolsPrompt,
		ToolCalls:       traces,
		ContextEntities: in.ContextEntities,
	}
}

func brainDumpItemFromEnt(row *ent.BrainDumpItem) *domain.BrainDumpItem {
	b := &domain.BrainDumpItem{
		ID:          row.ID,
		UserID:      row.UserID,
		DayDate:     row.DayDate,
		Content:     row.Content,
		Status:      domain.BrainDumpStatus(row.Status),
		CreatedAt:   row.CreatedAt,
		ProcessedAt: row.ProcessedAt,
	}
	if row.LlmRunResult != nil {
		snap := llmSnapshotFromEnt(*row.LlmRunResult)
		b.LLMRunResult = &snap
	}
	return b
}

// upsertBrainDumpItem persists the item's fields, creating it on first
// commit like upsertDay/upsertTask.
func upsertBrainDumpItem(ctx context.Context, tx *ent.Tx, b *domain.BrainDumpItem) error {
	_, err := tx.BrainDumpItem.Get(ctx, b.ID)
	switch {
	case ent.IsNotFound(err):
		create := tx.BrainDumpItem.Create().
			SetID(b.ID).
			SetUserID(b.UserID).
			SetDayDate(b.DayDate).
			SetContent(b.Content).
			SetStatus(string(b.Status)).
			SetCreatedAt(b.CreatedAt).
			SetNillableProcessedAt(b.ProcessedAt)
		if b.LLMRunResult != nil {
			create = create.SetLlmRunResult(llmSnapshotToEnt(*b.LLMRunResult))
		}
		_, err = create.Save(ctx)
		return err
	case err != nil:
		return fmt.Errorf("commands: load brain dump item for upsert: %w", err)
	default:
		upd := tx.BrainDumpItem.UpdateOneID(b.ID).
			SetStatus(string(b.Status))
		if b.ProcessedAt != nil {
			upd = upd.SetProcessedAt(*b.ProcessedAt)
		}
		if b.LLMRunResult != nil {
			upd = upd.SetLlmRunResult(llmSnapshotToEnt(*b.LLMRunResult))
		}
		_, err = upd.Save(ctx)
		return err
	}
}
