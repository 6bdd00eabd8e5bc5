package service

import (
	"context"
	"sync"
	"time"

	"orderboard/internal/common/logger"
)

const DefaultPollInterval = 10 * time.Second

// Poller runs a reconciliation cycle on a fixed period. Cycles may overlap;
// each one runs in its own goroutine.
type Poller struct {
	interval time.Duration
	timeout  time.Duration
	cycle    func(ctx context.Context) error
	log      *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	cycles sync.WaitGroup
}

func NewPoller(interval time.Duration, cycle func(ctx context.Context) error, lg *logger.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		interval: interval,
		// a cycle may outlive its tick but not the next few
		timeout: 3 * interval,
		cycle:   cycle,
		log:     lg,
	}
}

// Start begins ticking. Calling Start on a running poller does nothing.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.loop(ctx, p.done)
	p.log.Info("poller_started", map[string]any{"interval": p.interval.String()})
}

func (p *Poller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.cycles.Add(1)
			go p.run(ctx)
		}
	}
}

// run detaches the cycle from loop cancellation so a request already on the
// wire is allowed to finish.
func (p *Poller) run(parent context.Context) {
	defer p.cycles.Done()
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), p.timeout)
	defer cancel()
	if err := p.cycle(ctx); err != nil {
		p.log.Debug("poll_cycle_failed", map[string]any{"error": err.Error()})
	}
}

// Stop halts the ticker and returns once no new cycle can start.
// Cycles already running are not interrupted; use Wait for them.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	p.log.Info("poller_stopped", nil)
}

// Wait blocks until every started cycle has returned.
func (p *Poller) Wait() { p.cycles.Wait() }
