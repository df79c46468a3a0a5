package worker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/swarm/internal/model"
)

// Strategy performs the work for one entity: gather evidence, then score
type Strategy interface {
	Evaluate(ctx context.Context, query, entity string, templates []model.SearchTemplate) (model.QueryResult, error)
}

// ProgressFunc is called once per entity after its task finishes.
// err is nil for a completed entity.
type ProgressFunc func(entity string, err error)

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithRateLimiter shares an existing limiter instead of creating one
func WithRateLimiter(limiter *RateLimiter) Option {
	return func(d *Dispatcher) {
		if limiter != nil {
			d.limiter = limiter
		}
	}
}

// WithProgress registers a per-entity completion callback.
// It may be called from several goroutines at once.
func WithProgress(fn ProgressFunc) Option {
	return func(d *Dispatcher) { d.progress = fn }
}

// Dispatcher fans one query out over many entities with a fixed-size worker
// pool. Every admission goes through a RateLimiter that lives as long as the
// Dispatcher, so the rate budget carries over between Research calls.
type Dispatcher struct {
	strategy Strategy
	limiter  *RateLimiter
	workers  int
	logger   *slog.Logger
	progress ProgressFunc

	// mu serializes Research calls; queue and pool are per call
	mu sync.Mutex
}

// NewDispatcher creates a dispatcher running up to workers concurrent entity
// tasks, admitting at most requestsPerWindow tasks per window
func NewDispatcher(strategy Strategy, workers, requestsPerWindow int, window time.Duration, opts ...Option) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}

	d := &Dispatcher{
		strategy: strategy,
		workers:  workers,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.limiter == nil {
		d.limiter = NewRateLimiter(requestsPerWindow, window)
	}

	return d
}

// Limiter returns the shared rate limiter
func (d *Dispatcher) Limiter() *RateLimiter {
	return d.limiter
}

// task is one queued entity occurrence
type task struct {
	index  int
	entity string
}

// Research evaluates query against every entity and returns once all of
// them have been processed. Each entity occurrence ends up in exactly one of
// Outcome.Results or Outcome.Failures; result order is unspecified.
//
// Cancelling ctx does not abort the call: remaining entities are drained as
// failures carrying the context error.
func (d *Dispatcher) Research(ctx context.Context, query string, entities []string, templates []model.SearchTemplate) (*model.Outcome, error) {
	if len(entities) == 0 {
		return nil, model.ErrNoEntities
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	started := time.Now()
	runID := uuid.NewString()
	logger := d.logger.With("run_id", runID)

	// All entities are enqueued up front; closing the queue tells each
	// worker to exit once it is drained.
	queue := make(chan task, len(entities))
	for i, entity := range entities {
		queue <- task{index: i, entity: entity}
	}
	close(queue)

	workers := d.workers
	if workers > len(entities) {
		workers = len(entities)
	}

	logger.Info("starting research", "entities", len(entities), "workers", workers, "templates", len(templates))

	out := newCollector(len(entities))
	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			d.worker(workerCtx, id, logger, query, templates, queue, out)
		}(i)
	}

	// Barrier: every dequeued entity has been acknowledged
	wg.Wait()
	cancel()

	results, failures := out.drain()

	logger.Info("research complete",
		"results", len(results),
		"failures", len(failures),
		"duration", time.Since(started))

	return &model.Outcome{
		RunID:    runID,
		Query:    query,
		Results:  results,
		Failures: failures,
		Started:  started,
		Duration: time.Since(started),
	}, nil
}

// worker processes queued entities until the queue is drained. A failing
// entity is recorded and the worker moves on.
func (d *Dispatcher) worker(ctx context.Context, id int, logger *slog.Logger, query string, templates []model.SearchTemplate, queue <-chan task, out *collector) {
	logger = logger.With("worker", id)

	for t := range queue {
		logger.Debug("dequeued", "entity", t.entity, "index", t.index)

		result, err := d.process(ctx, logger, query, t.entity, templates)
		if err != nil {
			logger.Warn("entity failed", "entity", t.entity, "error", err)
			out.fail(model.Failure{Entity: t.entity, Error: err.Error(), Err: err})
		} else {
			logger.Debug("completed", "entity", t.entity, "score", result.ScoreValue())
			out.succeed(result)
		}

		if d.progress != nil {
			d.progress(t.entity, err)
		}
	}
}

// process runs one entity through admission and the strategy. Panics are
// confined to the entity that raised them.
func (d *Dispatcher) process(ctx context.Context, logger *slog.Logger, query, entity string, templates []model.SearchTemplate) (result model.QueryResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = model.QueryResult{}
			err = fmt.Errorf("%w: %v", model.ErrPanic, r)
		}
	}()

	logger.Debug("rate limited", "entity", entity)
	if err := d.limiter.Acquire(ctx); err != nil {
		return model.QueryResult{}, fmt.Errorf("rate limit: %w", err)
	}

	logger.Debug("evaluating", "entity", entity)
	result, err = d.strategy.Evaluate(ctx, query, entity, templates)
	if err != nil {
		return model.QueryResult{}, err
	}

	result.Entity = entity
	if result.Query == "" {
		result.Query = query
	}

	return result, nil
}

// collector gathers outcomes from all workers. Both channels are sized to
// the entity count, so a push never blocks and is never partially applied.
type collector struct {
	results  chan model.QueryResult
	failures chan model.Failure
}

func newCollector(size int) *collector {
	return &collector{
		results:  make(chan model.QueryResult, size),
		failures: make(chan model.Failure, size),
	}
}

func (c *collector) succeed(r model.QueryResult) {
	c.results <- r
}

func (c *collector) fail(f model.Failure) {
	c.failures <- f
}

// drain closes the collector and returns everything pushed so far.
// Only call once all producers have stopped.
func (c *collector) drain() ([]model.QueryResult, []model.Failure) {
	close(c.results)
	close(c.failures)

	results := make([]model.QueryResult, 0, len(c.results))
	for r := range c.results {
		results = append(results, r)
	}

	var failures []model.Failure
	for f := range c.failures {
		failures = append(failures, f)
	}

	return results, failures
}
