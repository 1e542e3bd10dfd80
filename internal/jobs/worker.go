package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/evokelektrique/trendyol-scrapper/internal/delivery"
	"github.com/evokelektrique/trendyol-scrapper/internal/observability"
	"github.com/evokelektrique/trendyol-scrapper/internal/ratelimit"
)

// Deliverer hands terminal payloads to the downstream collector.
type Deliverer interface {
	Deliver(ctx context.Context, path string, result *delivery.Result) error
}

// PoolConfig tunes one kind's worker pool.
type PoolConfig struct {
	Kind        Kind
	Concurrency int
	MaxAttempts int
	BackoffBase time.Duration
}

// Pool runs a fixed number of workers against one kind's queue. Each worker
// processes one job at a time to completion: extraction is sequential within
// a browser page, so per-job parallelism would not help.
type Pool struct {
	cfg       PoolConfig
	queue     Queue
	runner    Runner
	limiter   ratelimit.Limiter
	deliverer Deliverer
	store     Store
	logger    *slog.Logger
	wg        sync.WaitGroup
}

// NewPool wires a worker pool. A nil limiter means the kind is not rate
// limited.
func NewPool(cfg PoolConfig, queue Queue, runner Runner, limiter ratelimit.Limiter, deliverer Deliverer, store Store, logger *slog.Logger) *Pool {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = 5 * time.Second
	}
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}
	if store == nil {
		store = NopStore{}
	}

	return &Pool{
		cfg:       cfg,
		queue:     queue,
		runner:    runner,
		limiter:   limiter,
		deliverer: deliverer,
		store:     store,
		logger:    logger.With("component", "worker_pool", "kind", string(cfg.Kind)),
	}
}

// Start launches the workers. They stop when the context is done or the
// queue is closed; Wait blocks until all of them have returned.
func (p *Pool) Start(ctx context.Context) {
	p.logger.Info("starting workers", "concurrency", p.cfg.Concurrency)

	for i := 0; i < p.cfg.Concurrency; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.run(ctx)
		}()
	}
}

// Wait blocks until all workers have exited.
func (p *Pool) Wait() {
	p.wg.Wait()
}

func (p *Pool) run(ctx context.Context) {
	for {
		job, err := p.queue.Pop(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, ErrQueueClosed) {
				p.logger.Info("worker stopping")
				return
			}
			p.logger.Error("failed to pop job", "error", err)
			continue
		}

		p.process(ctx, job)
	}
}

func (p *Pool) process(ctx context.Context, job *Job) {
	if err := p.limiter.Wait(ctx); err != nil {
		// Shutting down mid-wait; hand the job back so it is not lost.
		if pushErr := p.queue.Push(context.Background(), job); pushErr != nil {
			p.logger.Error("failed to requeue job on shutdown", "job", job.ID, "error", pushErr)
		}
		return
	}

	if err := job.Transition(StateActive); err != nil {
		p.logger.Error("dropping job in invalid state", "job", job.ID, "state", job.State, "error", err)
		return
	}
	p.recordState(ctx, job)

	p.logger.Info("processing job", "job", job.ID, "attempt", job.Attempts+1)

	result, err := p.runner.Run(ctx, job)
	if err == nil {
		p.complete(ctx, job, result)
		return
	}

	p.logger.Error("job attempt failed", "job", job.ID, "error", err)

	retryIn, dead, ferr := job.Fail(err, p.cfg.MaxAttempts, p.cfg.BackoffBase)
	if ferr != nil {
		p.logger.Error("job lifecycle error", "job", job.ID, "error", ferr)
		return
	}
	p.recordState(ctx, job)

	if dead {
		p.logger.Warn("job dead after exhausting attempts", "job", job.ID, "attempts", job.Attempts)
		observability.JobsTotal.WithLabelValues(string(p.cfg.Kind), "dead").Inc()
		p.deliver(ctx, p.runner.Failure(job))
		return
	}

	observability.JobRetriesTotal.WithLabelValues(string(p.cfg.Kind)).Inc()
	p.logger.Info("retrying job", "job", job.ID, "in", retryIn)
	if err := p.queue.PushDelayed(ctx, job, retryIn); err != nil {
		p.logger.Error("failed to requeue job", "job", job.ID, "error", err)
	}
}

func (p *Pool) complete(ctx context.Context, job *Job, result *delivery.Result) {
	if err := job.Transition(StateCompleted); err != nil {
		p.logger.Error("job lifecycle error", "job", job.ID, "error", err)
		return
	}
	p.recordState(ctx, job)

	observability.JobsTotal.WithLabelValues(string(p.cfg.Kind), "completed").Inc()
	p.logger.Info("job completed", "job", job.ID)

	p.deliver(ctx, result)
}

// deliver posts the terminal payload. Delivery failures are logged only: the
// job is already terminal, and delivery has no retry budget of its own.
func (p *Pool) deliver(ctx context.Context, result *delivery.Result) {
	if err := p.deliverer.Deliver(ctx, p.runner.StorePath(), result); err != nil {
		observability.DeliveriesTotal.WithLabelValues("failed").Inc()
		p.logger.Error("delivery failed", "error", err)
		return
	}
	observability.DeliveriesTotal.WithLabelValues("ok").Inc()
}

func (p *Pool) recordState(ctx context.Context, job *Job) {
	if err := p.store.Update(ctx, job); err != nil {
		p.logger.Error("failed to record job state", "job", job.ID, "state", job.State, "error", err)
	}
}
