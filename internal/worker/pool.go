// Package worker runs the background pool that drains the job queue
// and drives the index coordinator.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/docsearch/internal/core/domain"
	"github.com/custodia-labs/docsearch/internal/core/ports/driven"
	"github.com/custodia-labs/docsearch/internal/logger"
)

// Processor executes the work a job describes.
type Processor interface {
	// IndexFile extracts and stores one file.
	IndexFile(ctx context.Context, path string) error

	// ReindexFile re-extracts a file even when its content hash is
	// unchanged.
	ReindexFile(ctx context.Context, path string) error

	// DeleteFile removes a file from the index.
	DeleteFile(ctx context.Context, path string) error
}

// DefaultIdleSleep is how long a worker naps when the queue is empty.
const DefaultIdleSleep = 500 * time.Millisecond

// DefaultDrainTimeout bounds how long Stop waits for in-flight jobs.
const DefaultDrainTimeout = 30 * time.Second

// Pool runs N workers that claim jobs from the queue until stopped.
// A processing failure is reported back to the queue, which decides
// between retry and terminal failure; workers never crash on job errors.
type Pool struct {
	jobs      driven.JobStore
	processor Processor
	workers   int
	idleSleep time.Duration
	drain     time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Option configures the pool.
type Option func(*Pool)

// WithWorkers sets the worker count.
func WithWorkers(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithIdleSleep sets the nap taken when the queue is empty.
func WithIdleSleep(d time.Duration) Option {
	return func(p *Pool) {
		if d > 0 {
			p.idleSleep = d
		}
	}
}

// WithDrainTimeout bounds how long Stop waits for in-flight jobs.
func WithDrainTimeout(d time.Duration) Option {
	return func(p *Pool) {
		if d > 0 {
			p.drain = d
		}
	}
}

// NewPool creates a worker pool over the given queue and processor.
func NewPool(jobs driven.JobStore, processor Processor, opts ...Option) *Pool {
	p := &Pool{
		jobs:      jobs,
		processor: processor,
		workers:   3,
		idleSleep: DefaultIdleSleep,
		drain:     DefaultDrainTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the workers. Calling Start on a running pool is a no-op.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	p.running = true

	ctx, p.cancel = context.WithCancel(ctx)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.processLoop(ctx, i)
	}
	logger.Info("worker pool started with %d worker(s)", p.workers)
}

// Stop signals the workers and waits for in-flight jobs up to the drain
// timeout. Jobs still running after the timeout stay claimed in the
// queue and are reported, not silently dropped.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.cancel()
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("worker pool stopped")
	case <-time.After(p.drain):
		logger.Warn("worker pool drain timed out after %s; in-flight jobs remain claimed", p.drain)
	}
}

func (p *Pool) processLoop(ctx context.Context, id int) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := p.jobs.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, domain.ErrQueueEmpty) {
				select {
				case <-ctx.Done():
					return
				case <-time.After(p.idleSleep):
				}
				continue
			}
			if ctx.Err() != nil {
				return
			}
			logger.Warn("worker %d: dequeue failed: %v", id, err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(p.idleSleep):
			}
			continue
		}

		p.runJob(ctx, id, job)
	}
}

// runJob executes one claimed job and reports the outcome back to the
// queue. Job errors never propagate out of the worker.
func (p *Pool) runJob(ctx context.Context, id int, job *domain.Job) {
	logger.Debug("worker %d: job %d %s %s (attempt %d/%d)",
		id, job.ID, job.Kind, job.FilePath, job.Attempts, job.MaxAttempts)

	var err error
	switch job.Kind {
	case domain.JobIndex:
		err = p.processor.IndexFile(ctx, job.FilePath)
	case domain.JobReindex:
		err = p.processor.ReindexFile(ctx, job.FilePath)
	case domain.JobDelete:
		err = p.processor.DeleteFile(ctx, job.FilePath)
	default:
		err = fmt.Errorf("%w: job kind %q", domain.ErrInvalidInput, job.Kind)
	}

	if err != nil {
		logger.Warn("worker %d: job %d failed: %v", id, job.ID, err)
		if ferr := p.jobs.Fail(ctx, job.ID, err.Error()); ferr != nil {
			logger.Warn("worker %d: recording failure for job %d: %v", id, job.ID, ferr)
		}
		return
	}

	if cerr := p.jobs.Complete(ctx, job.ID); cerr != nil {
		logger.Warn("worker %d: completing job %d: %v", id, job.ID, cerr)
	}
}
