package worker

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"
)

// JobHandler executes one job's body. Implementations wrap the whole body in
// a catch-all recover/log and treat jobs as at-least-once and idempotent
// (§5 Cancellation, §7 Policy).
type JobHandler func(ctx context.Context, job Job) error

// Store is the durable backing queue WorkerPool polls. A Postgres-backed
// implementation using `FOR UPDATE SKIP LOCKED` lives in broker_db.go.
type Store interface {
	Broker
	// Claim locks and returns up to limit pending jobs for processing,
	// marking them so concurrent workers/pods don't also claim them.
	Claim(ctx context.Context, workerID string, limit int) ([]ClaimedJob, error)
	// Complete marks a claimed job done.
	Complete(ctx context.Context, id string) error
	// Fail records a processing failure; implementations may requeue with
	// backoff up to a retry limit.
	Fail(ctx context.Context, id string, cause error) error
}

// ClaimedJob pairs a Job with the durable row id Store assigned it.
type ClaimedJob struct {
	ID string
	Job
}

// Pool manages a fixed number of polling Worker goroutines, grounded on the
// teacher's queue.WorkerPool (pkg/queue/pool.go): one pool per process,
// graceful Stop drains in-flight jobs before returning.
type Pool struct {
	podID       string
	store       Store
	handlers    map[string]JobHandler
	workerCount int
	pollEvery   time.Duration

	workers []*pooledWorker
	stopCh  chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

// NewPool constructs a worker pool. handlers maps Job.Kind to its executor;
// an unregistered kind is logged and marked failed rather than panicking.
func NewPool(podID string, store Store, handlers map[string]JobHandler, workerCount int, pollEvery time.Duration) *Pool {
	if workerCount <= 0 {
		workerCount = 1
	}
	return &Pool{
		podID:       podID,
		store:       store,
		handlers:    handlers,
		workerCount: workerCount,
		pollEvery:   pollEvery,
		stopCh:      make(chan struct{}),
	}
}

// Start launches workerCount polling goroutines.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workerCount; i++ {
		w := &pooledWorker{
			id:    fmt.Sprintf("%s-worker-%d", p.podID, i),
			pool:  p,
			stop:  p.stopCh,
		}
		p.workers = append(p.workers, w)
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			w.run(ctx)
		}()
	}
	slog.Info("worker pool started", "pod_id", p.podID, "worker_count", p.workerCount)
}

// Stop signals every worker to finish its current claim batch and exit, then
// waits for them.
func (p *Pool) Stop() {
	p.once.Do(func() { close(p.stopCh) })
	p.wg.Wait()
	slog.Info("worker pool stopped", "pod_id", p.podID)
}

type pooledWorker struct {
	id   string
	pool *Pool
	stop chan struct{}
}

func (w *pooledWorker) run(ctx context.Context) {
	interval := w.pool.pollEvery
	for {
		select {
		case <-w.stop:
			return
		case <-ctx.Done():
			return
		default:
		}

		claimed, err := w.pool.store.Claim(ctx, w.id, 1)
		if err != nil {
			slog.Error("worker claim failed", "worker_id", w.id, "error", err)
			w.sleep(interval)
			continue
		}
		if len(claimed) == 0 {
			w.sleep(jitter(interval))
			continue
		}

		for _, job := range claimed {
			w.process(ctx, job)
		}
	}
}

func (w *pooledWorker) process(ctx context.Context, job ClaimedJob) {
	handler, ok := w.pool.handlers[job.Kind]
	if !ok {
		slog.Error("no handler registered for job kind", "kind", job.Kind, "job_id", job.ID)
		_ = w.pool.store.Fail(ctx, job.ID, fmt.Errorf("no handler for kind %q", job.Kind))
		return
	}

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("job panicked: %v", r)
			}
		}()
		return handler(ctx, job.Job)
	}()

	if err != nil {
		slog.Error("job failed", "kind", job.Kind, "job_id", job.ID, "error", err)
		if failErr := w.pool.store.Fail(ctx, job.ID, err); failErr != nil {
			slog.Error("failed to record job failure", "job_id", job.ID, "error", failErr)
		}
		return
	}
	if err := w.pool.store.Complete(ctx, job.ID); err != nil {
		slog.Error("failed to mark job complete", "job_id", job.ID, "error", err)
	}
}

func (w *pooledWorker) sleep(d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-w.stop:
	}
}

// jitter spreads polling so that many idle workers don't all hit the store
// in lockstep.
func jitter(base time.Duration) time.Duration {
	if base <= 0 {
		return time.Second
	}
	delta := time.Duration(rand.Int64N(int64(base)))
	return base/2 + delta/2
}
