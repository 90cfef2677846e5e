package domain

import "time"

// BrainDumpStatus enumerates the triage state of a captured free-form note
// (supplemented feature; SPEC_FULL.md).
type BrainDumpStatus string

const (
	BrainDumpPending   BrainDumpStatus = "PENDING"
	BrainDumpProcessed BrainDumpStatus = "PROCESSED"
	BrainDumpFailed    BrainDumpStatus = "FAILED"
)

// BrainDumpItem is a free-form note awaiting LLM triage into
// tasks/reminders/calendar entries.
type BrainDumpItem struct {
	Recorder

	ID           string
	UserID       string
	DayDate      string
	Content      string
	Status       BrainDumpStatus
	LLMRunResult *LLMRunResultSnapshot
	CreatedAt    time.Time
	ProcessedAt  *time.Time

	isNew bool
}

// NewBrainDumpItem constructs a pending brain-dump item.
func NewBrainDumpItem(id, userID, dayDate, content string) *BrainDumpItem {
	return &BrainDumpItem{
		ID:        id,
		UserID:    userID,
		DayDate:   dayDate,
		Content:   content,
		Status:    BrainDumpPending,
		CreatedAt: now(),
		isNew:     true,
	}
}

// Touch raises the item's create-or-update event.
func (b *BrainDumpItem) Touch() {
	snap := b.snapshot()
	if b.isNew {
		b.Record(BrainDumpItemCreatedEvent{Base: base(b.UserID), ItemID: b.ID, Snapshot: snap})
		return
	}
	b.Record(BrainDumpItemUpdatedEvent{Base: base(b.UserID), ItemID: b.ID, Snapshot: snap})
}

// MarkProcessed records the triage outcome of an LLM use-case run.
func (b *BrainDumpItem) MarkProcessed(snapshot *LLMRunResultSnapshot) {
	b.Status = BrainDumpProcessed
	b.LLMRunResult = snapshot
	ts := now()
	b.ProcessedAt = &ts
	b.Touch()
}

// MarkFailed records a failed triage attempt without losing the item.
func (b *BrainDumpItem) MarkFailed(snapshot *LLMRunResultSnapshot) {
	b.Status = BrainDumpFailed
	b.LLMRunResult = snapshot
	ts := now()
	b.ProcessedAt = &ts
	b.Touch()
}

// MarkPersisted flips isNew off after the item's first successful commit.
func (b *BrainDumpItem) MarkPersisted() { b.isNew = false }

func (b *BrainDumpItem) snapshot() entitySnapshot {
	return entitySnapshot{
		"id":           b.ID,
		"user_id":      b.UserID,
		"day_date":     b.DayDate,
		"content":      b.Content,
		"status":       b.Status,
		"processed_at": b.ProcessedAt,
	}
}
