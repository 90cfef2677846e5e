package queries

import (
	"context"
	"time"

	"github.com/dayforge/dayforge/ent"
	entauditlog "github.com/dayforge/dayforge/ent/auditlog"
	"github.com/dayforge/dayforge/internal/auditlog"
)

// Change is one wire-protocol change entry (§6.1 sync_response.changes[i]).
type Change struct {
	ChangeType auditlog.ChangeType
	EntityType string
	EntityID   string
	EntityData map[string]interface{} // nil for deletions
}

// IncrementalChanges implements §4.8 step 3's non-null sync_request branch:
// every audit log after sinceTimestamp whose entity pertains to targetDate,
// in occurred_at order.
//
// Deletions carry no entity snapshot (auditlog.IsForDate cannot place them by
// itself), so for each deletion row this looks up the entity's most recent
// prior audit log to recover its last-known date before exclusion/inclusion
// is decided — resolving the gap flagged in internal/auditlog.IsForDate.
func IncrementalChanges(ctx context.Context, client *ent.Client, userID, targetDate string, sinceTimestamp time.Time) ([]Change, error) {
	rows, err := client.AuditLog.Query().
		Where(entauditlog.UserID(userID), entauditlog.OccurredAtGT(sinceTimestamp)).
		Order(ent.Asc(entauditlog.FieldOccurredAt)).
		All(ctx)
	if err != nil {
		return nil, err
	}

	changes := make([]Change, 0, len(rows))
	for _, row := range rows {
		entry := entryFromRow(row)
		changeType, ok := auditlog.DeriveChangeType(entry.ActivityType)
		if !ok {
			continue
		}

		include := auditlog.IsForDate(entry, targetDate)
		if !include && entry.EntityData == nil {
			include, err = deletedEntityWasForDate(ctx, client, entry, targetDate)
			if err != nil {
				return nil, err
			}
		}
		if !include {
			continue
		}

		changes = append(changes, Change{
			ChangeType: changeType,
			EntityType: entry.EntityType,
			EntityID:   entry.EntityID,
			EntityData: entry.EntityData,
		})
	}
	return changes, nil
}

// deletedEntityWasForDate looks at the most recent audit log row for the
// same entity (before the deletion) to decide whether the now-deleted
// entity pertained to targetDate.
func deletedEntityWasForDate(ctx context.Context, client *ent.Client, deletion auditlog.Entry, targetDate string) (bool, error) {
	prior, err := client.AuditLog.Query().
		Where(
			entauditlog.UserID(deletion.UserID),
			entauditlog.EntityID(deletion.EntityID),
			entauditlog.OccurredAtLT(deletion.OccurredAt),
		).
		Order(ent.Desc(entauditlog.FieldOccurredAt)).
		First(ctx)
	if ent.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return auditlog.IsForDate(entryFromRow(prior), targetDate), nil
}

func entryFromRow(row *ent.AuditLog) auditlog.Entry {
	return auditlog.Entry{
		ID:           row.ID,
		UserID:       row.UserID,
		ActivityType: row.ActivityType,
		EntityID:     row.EntityID,
		EntityType:   row.EntityType,
		OccurredAt:   row.OccurredAt,
		EntityData:   row.Meta.EntityData,
	}
}
