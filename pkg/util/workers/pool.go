// Package workers runs a fixed number of concurrent tasks against an
// optional rate limit. bgp-replay is the caller: it uses this to decode a
// directory of capture files concurrently without spawning one goroutine
// per file or outrunning whatever replay rate it was given.
package workers

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Task is one unit of work a Pool runs: decode one capture file, in
// bgp-replay's case.
type Task func(ctx context.Context) error

// Result is the outcome of running one Task, tagged with the index it was
// submitted under so the caller can map it back to its input (bgp-replay's
// file list).
type Result struct {
	Index int
	Error error
}

// Pool runs Tasks across a fixed number of concurrent slots, optionally
// throttled by a token-bucket rate limiter.
type Pool struct {
	slots   chan struct{}
	limiter *rate.Limiter
	results chan Result
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

// Config configures a Pool.
type Config struct {
	// Workers is the number of tasks allowed to run at once.
	Workers int
	// RateLimit caps task starts per second; 0 means unlimited.
	RateLimit float64
	// BurstSize is the token bucket's burst capacity. Defaults to Workers
	// when unset.
	BurstSize int
}

// NewPool builds a Pool ready to accept Submit calls. ctx bounds every
// task's lifetime: cancelling it (directly, or via the returned Pool's
// Stop) aborts any task still waiting on a slot or the rate limiter.
func NewPool(ctx context.Context, cfg Config) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = cfg.Workers
	}

	poolCtx, cancel := context.WithCancel(ctx)

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.BurstSize)
	}

	return &Pool{
		slots:   make(chan struct{}, cfg.Workers),
		limiter: limiter,
		results: make(chan Result, cfg.Workers*2),
		ctx:     poolCtx,
		cancel:  cancel,
	}
}

// Submit runs task in its own goroutine once a slot is free and the rate
// limiter (if any) admits it. The result lands on the channel Wait drains.
func (p *Pool) Submit(index int, task Task) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		select {
		case p.slots <- struct{}{}:
			defer func() { <-p.slots }()
		case <-p.ctx.Done():
			p.results <- Result{Index: index, Error: p.ctx.Err()}
			return
		}

		if p.limiter != nil {
			if err := p.limiter.Wait(p.ctx); err != nil {
				p.results <- Result{Index: index, Error: err}
				return
			}
		}

		p.results <- Result{Index: index, Error: task(p.ctx)}
	}()
}

// Wait blocks until every submitted task has produced a Result, then
// returns them all. Call it exactly once per Pool.
func (p *Pool) Wait() []Result {
	go func() {
		p.wg.Wait()
		close(p.results)
	}()

	var results []Result
	for result := range p.results {
		results = append(results, result)
	}
	return results
}

// Stop cancels the Pool's context, aborting any task still waiting on a
// slot or the rate limiter. Safe to call even after Wait has returned.
func (p *Pool) Stop() {
	p.cancel()
}
