// Package worker runs document analyses concurrently: a fixed pool of
// workers shares one read-only pipeline, and a collector drains results
// while documents are still being queued.
package worker

import (
	"context"
	"sync"
)

// Job is one unit of work, one document analysis in practice.
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is the outcome of one job.
type Result interface {
	GetError() error
}

// Pool executes jobs on a fixed set of workers. Results are collected as
// they arrive, so Submit never stalls behind finished work regardless of
// how many documents are queued ahead of Wait. Cancelling the context
// passed to NewPool stops queued and in-flight work.
type Pool struct {
	ctx      context.Context
	workers  int
	jobs     chan Job
	resultCh chan Result

	wg        sync.WaitGroup
	closeOnce sync.Once

	results   []Result
	collected chan struct{}
}

// NewPool creates a pool and starts its workers and the result collector.
// The context governs the whole run, typically the batch command's timeout.
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	p := &Pool{
		ctx:       ctx,
		workers:   workers,
		jobs:      make(chan Job, workers*2),
		resultCh:  make(chan Result),
		collected: make(chan struct{}),
	}

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	go p.collect()

	return p
}

// worker analyzes queued documents until the queue closes or the run is
// cancelled.
func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			result := job.Execute(p.ctx)
			select {
			case p.resultCh <- result:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// collect drains finished analyses while submission is still in progress.
func (p *Pool) collect() {
	defer close(p.collected)
	for result := range p.resultCh {
		p.results = append(p.results, result)
	}
}

// Submit queues one job. It reports false when the run was cancelled
// before the job could be queued; the caller should stop submitting.
func (p *Pool) Submit(job Job) bool {
	select {
	case <-p.ctx.Done():
		return false
	case p.jobs <- job:
		return true
	}
}

// Wait closes the queue, waits for the workers to drain it and returns
// every collected result. A cancelled run returns the results gathered so
// far; jobs that never ran produce none.
func (p *Pool) Wait() []Result {
	p.closeOnce.Do(func() { close(p.jobs) })
	p.wg.Wait()
	close(p.resultCh)
	<-p.collected
	return p.results
}
