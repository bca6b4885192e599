// Package worker runs recompute jobs off the queue.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/circlemate/matchmaker/internal/adapters/mq/queue"
	"github.com/circlemate/matchmaker/internal/domain/model"
	"github.com/circlemate/matchmaker/pkg/logger"
	"github.com/circlemate/matchmaker/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	defaultRecomputeDelay   = 2 * time.Second
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Directory is the read side of the profile store.
type Directory interface {
	Get(ctx context.Context, id string) (model.Profile, error)
	List(ctx context.Context) ([]model.Profile, error)
}

// Ranker orders candidates by compatibility with a reference.
type Ranker interface {
	Rank(reference model.Profile, candidates []model.Profile) ([]model.MatchResult, error)
}

// Publisher receives the outcome of a job. Both methods return an error
// when the job's token is no longer current.
type Publisher interface {
	Publish(referenceID, token string, results []model.MatchResult) error
	Fail(referenceID, token string, err error) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker processes recompute jobs.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker, abandoning any job still waiting on its delay.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue     Queue
	directory Directory
	ranker    Ranker
	publisher Publisher
	name      string
	delay     time.Duration

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, directory Directory, ranker Ranker, publisher Publisher, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     q,
		directory: directory,
		ranker:    ranker,
		publisher: publisher,
		name:      "worker",
		delay:     defaultRecomputeDelay,
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	// Releases the queue's forwarder once this loop exits.
	dequeueCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := w.queue.Dequeue(dequeueCtx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.processJob(ctx, j); err != nil && !errors.Is(err, ErrCancelled) {
				w.logger.Error(ctx, "recompute failed",
					logger.String("reference_id", j.ReferenceID),
					logger.String("token", j.Token),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// wait blocks until the job's delay has elapsed, measured from its enqueue
// time.
func (w *InMemoryWorker) wait(ctx context.Context, j queue.Job) error {
	remaining := w.delay
	if !j.EnqueuedAt.IsZero() {
		remaining -= time.Since(j.EnqueuedAt)
	}
	if remaining <= 0 {
		return nil
	}

	timer := time.NewTimer(remaining)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-j.Done:
		return ErrCancelled
	case <-ctx.Done():
		return ErrStopped
	case <-w.shutdown:
		return ErrStopped
	}
}

// processJob waits out the delay, ranks the pool and hands the results to
// the publisher.
func (w *InMemoryWorker) processJob(ctx context.Context, j queue.Job) error {
	start := time.Now()
	metrics.AddWorkerBusy(1)
	defer func() {
		metrics.AddWorkerBusy(-1)
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := w.wait(ctx, j); err != nil {
		if errors.Is(err, ErrStopped) {
			_ = w.publisher.Fail(j.ReferenceID, j.Token, err)
		}
		w.logger.Debug(ctx, "recompute abandoned before ranking",
			logger.String("reference_id", j.ReferenceID),
			logger.String("token", j.Token),
			logger.String("reason", err.Error()),
		)
		return ErrCancelled
	}
	if !j.EnqueuedAt.IsZero() {
		metrics.RecordRecomputeDelay(float64(time.Since(j.EnqueuedAt).Milliseconds()))
	}

	results, n, err := w.rank(ctx, j.ReferenceID)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "ranking_error")
		if ferr := w.publisher.Fail(j.ReferenceID, j.Token, err); ferr != nil {
			metrics.RecordRecompute(metrics.OutcomeDiscarded)
		} else {
			metrics.RecordRecompute(metrics.OutcomeFailed)
		}
		return fmt.Errorf("recompute %s: %w", j.ReferenceID, err)
	}

	if err := w.publisher.Publish(j.ReferenceID, j.Token, results); err != nil {
		metrics.RecordRecompute(metrics.OutcomeDiscarded)
		w.logger.Debug(ctx, "discarding stale results",
			logger.String("reference_id", j.ReferenceID),
			logger.String("token", j.Token),
		)
		return ErrCancelled
	}

	metrics.RecordRecompute(metrics.OutcomePublished)
	w.logger.Info(ctx, "matches published",
		logger.String("reference_id", j.ReferenceID),
		logger.Int("candidates", n),
		logger.Int("results", len(results)),
	)
	return nil
}

// rank loads the reference and every other profile, in directory order, and
// ranks them.
func (w *InMemoryWorker) rank(ctx context.Context, referenceID string) ([]model.MatchResult, int, error) {
	reference, err := w.directory.Get(ctx, referenceID)
	if err != nil {
		return nil, 0, fmt.Errorf("load reference: %w", err)
	}
	all, err := w.directory.List(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list candidates: %w", err)
	}

	candidates := make([]model.Profile, 0, len(all))
	for i := range all {
		if all[i].ID != referenceID {
			candidates = append(candidates, all[i])
		}
	}

	rankStart := time.Now()
	results, err := w.ranker.Rank(reference, candidates)
	metrics.RecordRankingPass(float64(time.Since(rankStart).Microseconds())/1000, len(candidates))
	if err != nil {
		return nil, len(candidates), err
	}
	return results, len(candidates), nil
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates a worker pool. A non-positive count defaults to twice the
// number of CPUs. opts are applied to every worker.
func NewPool(workerCount int, q Queue, directory Directory, ranker Ranker, publisher Publisher, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		workerOpts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		pool.workers[i] = NewInMemoryWorker(q, directory, ranker, publisher, workerOpts...)
	}

	metrics.UpdateWorkerCount(workerCount)
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop signals every worker and waits briefly for each to exit.
func (p *Pool) Stop() {
	for _, w := range p.workers {
		select {
		case <-w.shutdown:
		default:
			close(w.shutdown)
		}
	}
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
}

// Shutdown closes the queue and waits for every worker to exit.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		if err := w.Shutdown(shutdownCtx); err != nil {
			timedOut = true
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	if timedOut {
		return fmt.Errorf("worker pool: %w", ErrStopped)
	}
	return nil
}
