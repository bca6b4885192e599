// Package service wires the profile directory, the recompute pipeline and
// connection requests into the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/circlemate/matchmaker/internal/adapters/mq/queue"
	"github.com/circlemate/matchmaker/internal/adapters/mq/worker"
	"github.com/circlemate/matchmaker/internal/adapters/repository"
	"github.com/circlemate/matchmaker/internal/domain/dedupe"
	"github.com/circlemate/matchmaker/internal/domain/model"
	"github.com/circlemate/matchmaker/internal/domain/ranking"
	"github.com/circlemate/matchmaker/internal/domain/recompute"
	"github.com/circlemate/matchmaker/internal/domain/types"
	"github.com/circlemate/matchmaker/pkg/logger"
	"github.com/circlemate/matchmaker/pkg/metrics"
)

// Service implements the API dependencies for the matchmaking view.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   repository.Store
	deduper dedupe.Deduper
	queue   *queue.InMemoryQueue
	tracker *recompute.Tracker
	ranker  ranking.Ranker
	pool    *worker.Pool

	// Configuration
	workerCount    int
	queueSize      int
	dedupeSize     int
	recomputeDelay time.Duration

	// State
	started     bool
	connections atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of recompute workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the recompute queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many connection requests are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithRecomputeDelay sets how long a recompute waits before ranking.
// Zero ranks as soon as a worker picks the job up.
func WithRecomputeDelay(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.recomputeDelay = d
		}
	}
}

// WithStore sets the profile directory. Defaults to an empty MemoryStore.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:    runtime.NumCPU() * 2,
		queueSize:      1024,
		dedupeSize:     50_000,
		recomputeDelay: 2 * time.Second,
		ranker:         ranking.New(),
		tracker:        recompute.NewTracker(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the queue and deduper and starts the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting matchmaking service...")

	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s.store, s.ranker, s.tracker,
		worker.WithDelay(s.recomputeDelay),
	)
	s.pool.Start(ctx)

	metrics.UpdateProfilesTotal(s.store.Count(ctx))

	s.started = true
	s.logger.Info(ctx, "matchmaking service started",
		logger.String("store", backendName(s.store)),
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("recomputeDelayMs", int(s.recomputeDelay.Milliseconds())),
	)
	return nil
}

// Stop shuts the worker pool down and cancels every pending recompute.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping matchmaking service...")

	if s.pool != nil {
		s.pool.Stop()
	}
	if s.queue != nil {
		_ = s.queue.Close()
	}
	if n := s.tracker.CancelAll(); n > 0 {
		s.logger.Info(ctx, "cancelled pending recomputes", logger.Int("count", n))
	}
	metrics.UpdateRecomputeInFlight(0)

	if closer, ok := s.store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			s.logger.Warn(ctx, "error closing store", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "matchmaking service stopped")
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// UpsertProfile validates p and stores it. A blank id is replaced by a new
// UUID. Reports whether the profile was created.
func (s *Service) UpsertProfile(ctx context.Context, p model.Profile) (model.Profile, bool, error) {
	if err := s.ready(); err != nil {
		return model.Profile{}, false, err
	}
	if strings.TrimSpace(p.ID) == "" {
		p.ID = uuid.NewString()
	}
	if err := p.Validate(); err != nil {
		return model.Profile{}, false, err
	}

	created, err := s.store.Put(ctx, p)
	if err != nil {
		metrics.RecordErrorByComponent("repository", "put_error")
		return model.Profile{}, false, fmt.Errorf("store profile %s: %w", p.ID, err)
	}

	metrics.RecordProfileUpsert()
	metrics.UpdateProfilesTotal(s.store.Count(ctx))
	s.logger.Debug(ctx, "profile stored",
		logger.String("profile_id", p.ID),
		logger.Any("created", created),
	)
	return p, created, nil
}

// Profile returns the stored profile with the given id.
func (s *Service) Profile(ctx context.Context, id string) (model.Profile, error) {
	if err := s.ready(); err != nil {
		return model.Profile{}, err
	}
	return s.store.Get(ctx, id)
}

// Matches returns the published match list of id together with its
// recompute state.
func (s *Service) Matches(ctx context.Context, id string) (types.Matches, error) {
	if _, err := s.Profile(ctx, id); err != nil {
		return types.Matches{}, err
	}

	view := s.tracker.Snapshot(id)
	out := types.Matches{
		ReferenceID: id,
		State:       string(view.State),
		Token:       view.Token,
		Generation:  view.Generation,
		LastError:   view.LastError,
		Results:     view.Results,
	}
	if !view.PublishedAt.IsZero() {
		at := view.PublishedAt
		out.PublishedAt = &at
	}
	return out, nil
}

// Preview ranks the directory for id right away. Nothing is published.
func (s *Service) Preview(ctx context.Context, id string) ([]model.MatchResult, error) {
	reference, err := s.Profile(ctx, id)
	if err != nil {
		return nil, err
	}
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	candidates := make([]model.Profile, 0, len(all))
	for i := range all {
		if all[i].ID != id {
			candidates = append(candidates, all[i])
		}
	}

	start := time.Now()
	results, err := s.ranker.Rank(reference, candidates)
	metrics.RecordRankingPass(float64(time.Since(start).Microseconds())/1000, len(candidates))
	return results, err
}

// Recompute schedules a ranking pass for id. While a pass is already
// calculating the request is ignored and the running pass's token is
// returned. ErrBackpressure means the queue had no room.
func (s *Service) Recompute(ctx context.Context, id string) (types.Recompute, error) {
	if _, err := s.Profile(ctx, id); err != nil {
		return types.Recompute{}, err
	}

	ticket, err := s.tracker.Begin(id)
	if errors.Is(err, recompute.ErrInProgress) {
		metrics.RecordRecompute(metrics.OutcomeIgnored)
		view := s.tracker.Snapshot(id)
		s.logger.Debug(ctx, "recompute already running, ignoring request",
			logger.String("reference_id", id),
			logger.String("token", view.Token),
		)
		return types.Recompute{
			ReferenceID: id,
			Status:      types.RecomputeIgnored,
			Token:       view.Token,
			State:       string(view.State),
		}, nil
	}
	if err != nil {
		return types.Recompute{}, err
	}

	job := queue.Job{ReferenceID: id, Token: ticket.Token, Done: ticket.Done}
	if !s.queue.Enqueue(ctx, job) {
		_ = s.tracker.Fail(id, ticket.Token, ErrBackpressure)
		metrics.RecordRecompute(metrics.OutcomeRejected)
		s.logger.Warn(ctx, "recompute rejected",
			logger.String("reference_id", id),
			logger.Int("queueLength", s.queue.Len(ctx)),
		)
		return types.Recompute{}, ErrBackpressure
	}

	metrics.RecordRecompute(metrics.OutcomeAccepted)
	metrics.UpdateRecomputeInFlight(s.tracker.InFlight())
	s.logger.Info(ctx, "recompute accepted",
		logger.String("reference_id", id),
		logger.String("token", ticket.Token),
	)
	return types.Recompute{
		ReferenceID: id,
		Status:      types.RecomputeAccepted,
		Token:       ticket.Token,
		State:       string(recompute.StateCalculating),
	}, nil
}

// CancelRecompute aborts the in-flight pass of id. Reports whether one was
// running.
func (s *Service) CancelRecompute(ctx context.Context, id string) (bool, error) {
	if _, err := s.Profile(ctx, id); err != nil {
		return false, err
	}
	if !s.tracker.Cancel(id) {
		return false, nil
	}
	metrics.RecordRecompute(metrics.OutcomeCancelled)
	metrics.UpdateRecomputeInFlight(s.tracker.InFlight())
	s.logger.Info(ctx, "recompute cancelled", logger.String("reference_id", id))
	return true, nil
}

// Connect records a connection request from one profile to another.
// Repeating a request reports it as a duplicate.
func (s *Service) Connect(ctx context.Context, from, to string) (types.Connection, error) {
	if err := s.ready(); err != nil {
		return types.Connection{}, err
	}
	if from == to {
		metrics.RecordConnectionRequest(metrics.ConnectionRejected)
		return types.Connection{}, ErrSelfConnection
	}
	for _, id := range []string{from, to} {
		if _, err := s.store.Get(ctx, id); err != nil {
			metrics.RecordConnectionRequest(metrics.ConnectionRejected)
			return types.Connection{}, err
		}
	}

	out := types.Connection{From: from, To: to, Status: types.ConnectionRequested}
	if s.deduper.SeenAndRecord(ctx, dedupe.ConnectionKey(from, to)) {
		out.Status = types.ConnectionDuplicate
		metrics.RecordConnectionRequest(metrics.ConnectionDuplicate)
		return out, nil
	}

	s.connections.Add(1)
	metrics.RecordConnectionRequest(metrics.ConnectionAccepted)
	s.logger.Info(ctx, "connection requested",
		logger.String("from", from),
		logger.String("to", to),
	)
	return out, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) types.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := types.Stats{
		Started:          s.started,
		WorkerCount:      s.workerCount,
		QueueCapacity:    s.queueSize,
		RecomputeDelayMS: s.recomputeDelay.Milliseconds(),
		Connections:      s.connections.Load(),
	}
	if s.store != nil {
		stats.StoreBackend = backendName(s.store)
	}
	if !s.started {
		return stats
	}

	stats.Profiles = s.store.Count(ctx)
	stats.QueueLength = s.queue.Len(ctx)
	stats.RecomputeInFlight = s.tracker.InFlight()

	metrics.UpdateProfilesTotal(stats.Profiles)
	metrics.UpdateQueueSize(stats.QueueLength)
	metrics.UpdateRecomputeInFlight(stats.RecomputeInFlight)
	metrics.UpdateWorkerCount(s.workerCount)
	return stats
}

func backendName(store repository.Store) string {
	if _, ok := store.(*repository.RedisStore); ok {
		return "redis"
	}
	return "memory"
}
