package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/dayforge/dayforge/ent"
	"github.com/dayforge/dayforge/ent/day"
)

// SoftDeleteOldDays soft-deletes every Day older than retentionDays whose
// deleted_at is still unset, returning the number of rows affected (§9
// supplemented feature 6). Grounded on the teacher's
// SessionService.SoftDeleteOldSessions: a single bulk predicate update
// rather than a per-row UoW, since a retention sweep is an infrastructure
// job, not a user-auditable domain event — it has no place in the audit
// log and nothing subscribes to it over pub/sub.
func SoftDeleteOldDays(ctx context.Context, client *ent.Client, retentionDays int, now time.Time) (int, error) {
	cutoff := now.AddDate(0, 0, -retentionDays).Format("2006-01-02")
	count, err := client.Day.Update().
		Where(day.DateLT(cutoff), day.DeletedAtIsNil()).
		SetDeletedAt(now).
		Save(ctx)
	if err != nil {
		return 0, fmt.Errorf("commands: soft-delete old days: %w", err)
	}
	return count, nil
}
