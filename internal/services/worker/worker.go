// Package worker bounds how many PDF analyses run at once.
//
// Go Pattern: Goroutines and channels are Go's concurrency primitives.
// A goroutine is like a lightweight thread (thousands are fine), and
// channels are typed pipes for communication between goroutines.
//
// This worker pool pattern is very common in Go:
// 1. Create a buffered channel as a job queue
// 2. Spawn N worker goroutines that read from the channel
// 3. Send jobs to the channel from your HTTP handlers
// 4. Workers process jobs concurrently
//
// Conversion shells out to pdftotext and can use a lot of memory, so HTTP
// handlers never convert directly: they hand the bytes to the pool and wait
// for the answer on a per-job channel.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Shimizu-Technology/listing-analyzer-api/internal/services/analyzer"
)

// Errors returned by Analyze.
var (
	ErrQueueFull = errors.New("analysis queue is full; try again later")
	ErrStopped   = errors.New("worker pool is stopped")
)

// Analyzer is the work each job performs. *analyzer.Analyzer satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, data []byte) (*analyzer.Result, error)
}

// job is one queued analysis. done is buffered so a worker never blocks
// on a caller that already gave up.
type job struct {
	ctx      context.Context
	data     []byte
	queuedAt time.Time
	done     chan outcome
}

type outcome struct {
	result *analyzer.Result
	err    error
}

// Pool manages a pool of worker goroutines.
type Pool struct {
	// Go Pattern: Channels are the backbone of Go concurrency.
	// This buffered channel acts as our job queue.
	// Buffered means it can hold `queueSize` jobs before Analyze gives up.
	jobs     chan job
	workers  int
	analyzer Analyzer
	log      *zap.Logger

	// Go Pattern: sync.WaitGroup tracks running goroutines.
	// We call wg.Add(1) when starting a worker, wg.Done() when it finishes,
	// and wg.Wait() blocks until all workers are done (used for graceful shutdown).
	wg sync.WaitGroup

	// mu guards stopped and the close of jobs against concurrent Analyze calls.
	mu      sync.RWMutex
	stopped bool

	// Go Pattern: context.Context with cancel for graceful shutdown.
	// When we call cancel(), in-flight analyses are cancelled.
	ctx    context.Context
	cancel context.CancelFunc
}

// NewPool creates a new worker pool.
func NewPool(workers, queueSize int, a Analyzer, log *zap.Logger) *Pool {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		jobs:     make(chan job, queueSize), // Buffered channel
		workers:  workers,
		analyzer: a,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the worker goroutines.
// Go Pattern: The `go` keyword starts a new goroutine (lightweight thread).
// Each worker runs in its own goroutine, reading from the shared jobs channel.
func (p *Pool) Start() {
	p.log.Info("starting analysis workers", zap.Int("workers", p.workers))
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop gracefully shuts down all workers. Queued jobs are answered with
// ErrStopped and running ones see their context cancelled. It is safe to
// call more than once.
// Go Pattern: Close the channel + cancel the context + wait for completion.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.cancel()
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
	p.log.Info("all analysis workers stopped")
}

// Analyze queues data for analysis and waits for the result.
// Returns ErrQueueFull without blocking when the queue is full, and
// ctx.Err() if the caller's context ends first.
func (p *Pool) Analyze(ctx context.Context, data []byte) (*analyzer.Result, error) {
	j := job{ctx: ctx, data: data, queuedAt: time.Now(), done: make(chan outcome, 1)}

	p.mu.RLock()
	if p.stopped {
		p.mu.RUnlock()
		return nil, ErrStopped
	}
	// Go Pattern: `select` with `default` makes channel operations non-blocking.
	// Without default, sending to a full channel would block the HTTP handler.
	select {
	case p.jobs <- j:
	default:
		p.mu.RUnlock()
		return nil, ErrQueueFull
	}
	p.mu.RUnlock()

	select {
	case out := <-j.done:
		return out.result, out.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// QueueSize returns the current number of jobs in the queue.
func (p *Pool) QueueSize() int {
	return len(p.jobs)
}

// WorkerCount returns the number of workers.
func (p *Pool) WorkerCount() int {
	return p.workers
}

// worker is the main loop for each worker goroutine.
func (p *Pool) worker(id int) {
	defer p.wg.Done() // Signal completion when this worker exits

	log := p.log.With(zap.Int("worker", id))
	log.Debug("worker started")

	// Go Pattern: `range` over a channel reads values until the channel is closed.
	for j := range p.jobs {
		j.done <- p.run(log, j)
	}

	log.Debug("worker stopped")
}

// run processes one job under a context that ends when either the caller
// gives up or the pool shuts down.
func (p *Pool) run(log *zap.Logger, j job) outcome {
	if err := p.ctx.Err(); err != nil {
		return outcome{err: ErrStopped}
	}
	if err := j.ctx.Err(); err != nil {
		return outcome{err: err}
	}

	ctx, cancel := context.WithCancel(j.ctx)
	defer cancel()
	stop := context.AfterFunc(p.ctx, cancel)
	defer stop()

	start := time.Now()
	res, err := p.analyzer.Analyze(ctx, j.data)
	if err != nil {
		log.Warn("analysis failed", zap.Error(err))
		return outcome{err: err}
	}

	log.Info("analysis completed",
		zap.String("source", res.Source),
		zap.Int("fields", len(res.Fields)),
		zap.Duration("queued", start.Sub(j.queuedAt)),
		zap.Duration("took", time.Since(start)),
	)
	return outcome{result: res}
}
