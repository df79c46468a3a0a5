package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/swarm/internal/model"
)

// stubStrategy scores entities from a fixed table
type stubStrategy struct {
	scores   map[string]int
	failures map[string]error
	panics   map[string]bool
	delay    time.Duration

	mu    sync.Mutex
	calls map[string]int

	current int32
	peak    int32
}

func newStubStrategy() *stubStrategy {
	return &stubStrategy{
		scores:   make(map[string]int),
		failures: make(map[string]error),
		panics:   make(map[string]bool),
		calls:    make(map[string]int),
	}
}

func (s *stubStrategy) Evaluate(ctx context.Context, query, entity string, templates []model.SearchTemplate) (model.QueryResult, error) {
	s.mu.Lock()
	s.calls[entity]++
	s.mu.Unlock()

	cur := atomic.AddInt32(&s.current, 1)
	defer atomic.AddInt32(&s.current, -1)
	for {
		peak := atomic.LoadInt32(&s.peak)
		if cur <= peak || atomic.CompareAndSwapInt32(&s.peak, peak, cur) {
			break
		}
	}

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return model.QueryResult{}, ctx.Err()
		}
	}

	if s.panics[entity] {
		panic("boom")
	}
	if err, ok := s.failures[entity]; ok {
		return model.QueryResult{}, err
	}

	score := s.scores[entity]
	return model.QueryResult{Entity: entity, Score: model.IntPtr(score), Reason: "stub"}, nil
}

func (s *stubStrategy) callCount(entity string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[entity]
}

// blockingStrategy waits until its context is cancelled
type blockingStrategy struct {
	started chan string
}

func (b *blockingStrategy) Evaluate(ctx context.Context, query, entity string, templates []model.SearchTemplate) (model.QueryResult, error) {
	b.started <- entity
	<-ctx.Done()
	return model.QueryResult{}, ctx.Err()
}

func TestNewDispatcher_Defaults(t *testing.T) {
	d := NewDispatcher(newStubStrategy(), 0, 0, 0)
	if d.workers != 1 {
		t.Errorf("expected 1 worker for zero input, got %d", d.workers)
	}
	if d.Limiter() == nil {
		t.Fatal("expected a rate limiter")
	}
}

func TestDispatcher_Research_Scenario(t *testing.T) {
	strategy := newStubStrategy()
	strategy.scores["AAPL"] = 100
	strategy.scores["MSFT"] = 40
	strategy.failures["ZZZZ"] = fmt.Errorf("%w: search failed", model.ErrTransport)

	d := NewDispatcher(strategy, 2, 5, time.Second)
	outcome, err := d.Research(context.Background(), "has a podcast", []string{"AAPL", "MSFT", "ZZZZ"}, nil)
	if err != nil {
		t.Fatalf("Research failed: %v", err)
	}

	if len(outcome.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(outcome.Results))
	}

	got := make(map[string]int)
	for _, r := range outcome.Results {
		got[r.Entity] = r.ScoreValue()
		if r.Query != "has a podcast" {
			t.Errorf("expected query to be filled in, got %q", r.Query)
		}
	}
	if got["AAPL"] != 100 || got["MSFT"] != 40 {
		t.Errorf("unexpected scores: %v", got)
	}

	if len(outcome.Failures) != 1 || outcome.Failures[0].Entity != "ZZZZ" {
		t.Fatalf("expected ZZZZ to be the only failure, got %+v", outcome.Failures)
	}
	if !errors.Is(outcome.Failures[0].Err, model.ErrTransport) {
		t.Errorf("expected transport error, got %v", outcome.Failures[0].Err)
	}

	ranked := model.Rank(outcome.Results, model.DefaultThreshold)
	if len(ranked) != 1 || ranked[0].Entity != "AAPL" {
		t.Errorf("expected only AAPL above threshold, got %+v", ranked)
	}

	if outcome.RunID == "" {
		t.Error("expected a run id")
	}
}

func TestDispatcher_Research_NoEntities(t *testing.T) {
	d := NewDispatcher(newStubStrategy(), 2, 5, time.Second)

	_, err := d.Research(context.Background(), "q", nil, nil)
	if !errors.Is(err, model.ErrNoEntities) {
		t.Errorf("expected ErrNoEntities, got %v", err)
	}
}

func TestDispatcher_Research_ExactlyOnce(t *testing.T) {
	strategy := newStubStrategy()

	var entities []string
	for i := 0; i < 60; i++ {
		entities = append(entities, fmt.Sprintf("E%02d", i))
	}
	// Duplicates are processed independently
	entities = append(entities, "E00", "E00", "E01")

	var progressed int32
	d := NewDispatcher(strategy, 8, 1000, time.Second, WithProgress(func(entity string, err error) {
		atomic.AddInt32(&progressed, 1)
	}))

	outcome, err := d.Research(context.Background(), "q", entities, nil)
	if err != nil {
		t.Fatalf("Research failed: %v", err)
	}

	if len(outcome.Results) != len(entities) {
		t.Errorf("expected %d results, got %d", len(entities), len(outcome.Results))
	}
	if int(progressed) != len(entities) {
		t.Errorf("expected %d progress callbacks, got %d", len(entities), progressed)
	}

	if n := strategy.callCount("E00"); n != 3 {
		t.Errorf("expected E00 evaluated 3 times, got %d", n)
	}
	if n := strategy.callCount("E01"); n != 2 {
		t.Errorf("expected E01 evaluated 2 times, got %d", n)
	}
	if n := strategy.callCount("E59"); n != 1 {
		t.Errorf("expected E59 evaluated once, got %d", n)
	}

	seen := make(map[string]int)
	for _, r := range outcome.Results {
		seen[r.Entity]++
	}
	if seen["E00"] != 3 || seen["E01"] != 2 {
		t.Errorf("result multiplicity does not match input: %v", seen)
	}
}

func TestDispatcher_Research_FaultIsolation(t *testing.T) {
	strategy := newStubStrategy()
	strategy.scores["A"] = 10
	strategy.scores["C"] = 30
	strategy.panics["B"] = true
	strategy.failures["D"] = fmt.Errorf("%w: bad json", model.ErrSchema)

	d := NewDispatcher(strategy, 1, 100, time.Second)
	outcome, err := d.Research(context.Background(), "q", []string{"A", "B", "C", "D"}, nil)
	if err != nil {
		t.Fatalf("Research failed: %v", err)
	}

	if len(outcome.Results) != 2 {
		t.Errorf("expected 2 results, got %d", len(outcome.Results))
	}
	if len(outcome.Failures) != 2 {
		t.Fatalf("expected 2 failures, got %d", len(outcome.Failures))
	}

	for _, f := range outcome.Failures {
		switch f.Entity {
		case "B":
			if !errors.Is(f.Err, model.ErrPanic) {
				t.Errorf("expected panic failure for B, got %v", f.Err)
			}
		case "D":
			if !errors.Is(f.Err, model.ErrSchema) {
				t.Errorf("expected schema failure for D, got %v", f.Err)
			}
		default:
			t.Errorf("unexpected failure for %s", f.Entity)
		}
	}
}

func TestDispatcher_Research_BoundedConcurrency(t *testing.T) {
	strategy := newStubStrategy()
	strategy.delay = 20 * time.Millisecond

	entities := make([]string, 30)
	for i := range entities {
		entities[i] = fmt.Sprintf("E%d", i)
	}

	d := NewDispatcher(strategy, 4, 1000, time.Second)
	if _, err := d.Research(context.Background(), "q", entities, nil); err != nil {
		t.Fatalf("Research failed: %v", err)
	}

	peak := atomic.LoadInt32(&strategy.peak)
	if peak > 4 {
		t.Errorf("max concurrency %d exceeded workers 4", peak)
	}
	if peak <= 1 {
		t.Logf("Warning: max concurrency was %d, expected > 1", peak)
	}
}

func TestDispatcher_Research_LimiterPersistsAcrossCalls(t *testing.T) {
	strategy := newStubStrategy()
	d := NewDispatcher(strategy, 2, 2, time.Hour)

	first, err := d.Research(context.Background(), "q", []string{"A", "B"}, nil)
	if err != nil {
		t.Fatalf("first Research failed: %v", err)
	}
	if len(first.Results) != 2 {
		t.Fatalf("expected 2 results from first call, got %d", len(first.Results))
	}
	if got := d.Limiter().InFlight(); got != 2 {
		t.Fatalf("expected 2 admissions recorded, got %d", got)
	}

	// The budget is spent for the hour; the second call can only drain
	// its entities as failures once the caller gives up.
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	second, err := d.Research(ctx, "q", []string{"C", "D", "E"}, nil)
	if err != nil {
		t.Fatalf("second Research failed: %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Errorf("second call should return soon after cancellation, took %v", time.Since(start))
	}

	if len(second.Results) != 0 {
		t.Errorf("expected no results, got %d", len(second.Results))
	}
	if len(second.Failures) != 3 {
		t.Fatalf("expected 3 failures, got %d", len(second.Failures))
	}
	for _, f := range second.Failures {
		if !errors.Is(f.Err, context.DeadlineExceeded) {
			t.Errorf("expected deadline exceeded for %s, got %v", f.Entity, f.Err)
		}
	}
	if strategy.callCount("C") != 0 {
		t.Error("strategy must not run for entities that were never admitted")
	}
}

func TestDispatcher_Research_CancelUnblocksWorkers(t *testing.T) {
	strategy := &blockingStrategy{started: make(chan string, 10)}
	d := NewDispatcher(strategy, 3, 100, time.Second)

	ctx, cancel := context.WithCancel(context.Background())

	type result struct {
		outcome *model.Outcome
		err     error
	}
	done := make(chan result, 1)
	go func() {
		outcome, err := d.Research(ctx, "q", []string{"A", "B", "C", "D"}, nil)
		done <- result{outcome, err}
	}()

	// Wait until the pool is busy, then cancel
	for i := 0; i < 3; i++ {
		<-strategy.started
	}
	cancel()

	select {
	case r := <-done:
		if r.err != nil {
			t.Fatalf("Research failed: %v", r.err)
		}
		if len(r.outcome.Results) != 0 {
			t.Errorf("expected no results, got %d", len(r.outcome.Results))
		}
		if len(r.outcome.Failures) != 4 {
			t.Errorf("expected every entity to be accounted for, got %d failures", len(r.outcome.Failures))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Research did not return after cancellation")
	}
}

func TestDispatcher_Research_Sequential(t *testing.T) {
	strategy := newStubStrategy()
	strategy.scores["A"] = 70

	d := NewDispatcher(strategy, 2, 100, time.Minute)
	for i := 0; i < 3; i++ {
		outcome, err := d.Research(context.Background(), "q", []string{"A"}, nil)
		if err != nil {
			t.Fatalf("call %d failed: %v", i, err)
		}
		if len(outcome.Results) != 1 {
			t.Fatalf("call %d: expected 1 result, got %d", i, len(outcome.Results))
		}
	}

	if got := d.Limiter().InFlight(); got != 3 {
		t.Errorf("expected 3 admissions carried over in the window, got %d", got)
	}
}

func TestCollector_Drain(t *testing.T) {
	c := newCollector(3)
	c.succeed(model.QueryResult{Entity: "A"})
	c.fail(model.Failure{Entity: "B", Error: "err"})
	c.succeed(model.QueryResult{Entity: "C"})

	results, failures := c.drain()
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}
	if len(failures) != 1 {
		t.Errorf("expected 1 failure, got %d", len(failures))
	}
}
