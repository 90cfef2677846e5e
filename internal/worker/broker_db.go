package worker

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect/sql"
	"github.com/dayforge/dayforge/ent"
	"github.com/dayforge/dayforge/ent/queuejob"
	"github.com/google/uuid"
)

// DBStore is the Postgres-backed Store, grounded on the teacher's
// claimNextSession (pkg/queue/worker.go): a dedicated transaction selects one
// row `FOR UPDATE SKIP LOCKED`, marks it processing, and commits before the
// handler runs, so a crashed worker simply leaves the row processing for a
// future sweep rather than losing it.
type DBStore struct {
	client *ent.Client
}

// NewDBStore wraps client as a Store.
func NewDBStore(client *ent.Client) *DBStore {
	return &DBStore{client: client}
}

// Submit persists job as a pending row (§4.7 Flush target).
func (s *DBStore) Submit(ctx context.Context, job Job) error {
	_, err := s.client.QueueJob.Create().
		SetID(uuid.NewString()).
		SetUserID(job.UserID).
		SetKind(job.Kind).
		SetPayload(job.Payload).
		Save(ctx)
	if err != nil {
		return fmt.Errorf("worker: submit job: %w", err)
	}
	return nil
}

// Claim locks up to limit pending, due rows for workerID and flips them to
// processing.
func (s *DBStore) Claim(ctx context.Context, workerID string, limit int) ([]ClaimedJob, error) {
	tx, err := s.client.Tx(ctx)
	if err != nil {
		return nil, fmt.Errorf("worker: begin claim tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueueJob.Query().
		Where(
			queuejob.StatusEQ(queuejob.StatusPending),
			queuejob.AvailableAtLTE(time.Now()),
		).
		Order(ent.Asc(queuejob.FieldCreatedAt)).
		Limit(limit).
		ForUpdate(sql.WithLockAction(sql.SkipLocked)).
		All(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("worker: claim query: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	claimed := make([]ClaimedJob, 0, len(rows))
	for _, row := range rows {
		if _, err := tx.QueueJob.UpdateOne(row).SetStatus(queuejob.StatusProcessing).Save(ctx); err != nil {
			return nil, fmt.Errorf("worker: mark processing: %w", err)
		}
		claimed = append(claimed, ClaimedJob{
			ID: row.ID,
			Job: Job{
				Kind:    row.Kind,
				UserID:  row.UserID,
				Payload: row.Payload,
			},
		})
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("worker: commit claim: %w", err)
	}
	return claimed, nil
}

// Complete marks a claimed job done.
func (s *DBStore) Complete(ctx context.Context, id string) error {
	_, err := s.client.QueueJob.UpdateOneID(id).SetStatus(queuejob.StatusComplete).Save(ctx)
	return err
}

// Fail marks a claimed job failed and records the cause. A future retry
// sweep (not implemented here) would advance available_at with a backoff
// and flip the row back to pending up to a retry limit.
func (s *DBStore) Fail(ctx context.Context, id string, cause error) error {
	_, err := s.client.QueueJob.UpdateOneID(id).
		SetStatus(queuejob.StatusFailed).
		SetLastError(cause.Error()).
		AddAttempts(1).
		Save(ctx)
	return err
}
