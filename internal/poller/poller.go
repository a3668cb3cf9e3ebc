// Package poller drives the refresh cycle: fetch the current snapshot, hand it
// to the display, then fetch and hand over the usage history.
package poller

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"time"

	"hwdash/internal/metrics"
	"hwdash/internal/monitor"
)

// ErrStale is returned by Tick when its snapshot arrived after a newer tick's
// result had already been applied.
var ErrStale = errors.New("stale response discarded")

type Trigger string

const (
	TriggerInitial Trigger = "initial"
	TriggerTimer   Trigger = "timer"
	TriggerManual  Trigger = "manual"
)

// Source is the metrics backend.
type Source interface {
	FetchDashboard(ctx context.Context) (metrics.DashboardPayload, error)
	FetchHistory(ctx context.Context) (metrics.History, error)
}

// Sink receives the effects of a tick. Calls come from several goroutines but
// never concurrently, and in the order the poller admitted them.
type Sink interface {
	ClearError()
	ShowError(err error)
	ApplySnapshot(p metrics.DashboardPayload)
	ApplyHistory(h metrics.History)
}

type Options struct {
	Interval time.Duration
	Logger   *log.Logger
	Metrics  *Metrics
}

type Poller struct {
	src      Source
	sink     Sink
	interval time.Duration
	logger   *log.Logger
	metrics  *Metrics
	refresh  chan struct{}

	// mu serializes every sink call.
	mu          sync.Mutex
	seq         uint64 // last sequence number handed out
	snapshotSeq uint64 // newest tick whose dashboard outcome reached the sink
	historySeq  uint64 // newest tick whose history reached the sink
}

func New(src Source, sink Sink, opts Options) *Poller {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(nil)
	}
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Second
	}
	return &Poller{
		src:      src,
		sink:     sink,
		interval: opts.Interval,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		refresh:  make(chan struct{}, 1),
	}
}

// admitAndApply records seq as applied for *last and runs apply, unless a
// newer tick got there first. apply runs under p.mu so admission order is also
// delivery order.
func (p *Poller) admitAndApply(last *uint64, seq uint64, apply func()) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if seq < *last {
		return false
	}
	*last = seq
	apply()
	return true
}

// Tick runs one full cycle. It returns the dashboard fetch error, or ErrStale
// when the snapshot was superseded. History failures are logged only and do
// not fail the tick.
func (p *Poller) Tick(ctx context.Context, trigger Trigger) error {
	p.metrics.Ticks.WithLabelValues(string(trigger)).Inc()

	// Numbering and the opening clear happen together, so no later tick's
	// outcome can reach the sink ahead of this clear.
	p.mu.Lock()
	p.seq++
	seq := p.seq
	p.sink.ClearError()
	p.mu.Unlock()

	start := time.Now()
	payload, err := p.src.FetchDashboard(ctx)
	p.metrics.FetchDuration.WithLabelValues("dashboard").Observe(time.Since(start).Seconds())
	if err != nil {
		kind := monitor.Classify(err)
		if kind == monitor.KindCanceled {
			return err
		}
		p.metrics.FetchFailures.WithLabelValues("dashboard", string(kind)).Inc()
		p.logger.Printf("tick %d (%s): dashboard fetch failed (%s): %v", seq, trigger, kind, err)
		if !p.admitAndApply(&p.snapshotSeq, seq, func() { p.sink.ShowError(err) }) {
			p.metrics.Stale.WithLabelValues("dashboard").Inc()
		}
		return err
	}

	// A successful cycle clears any banner raised by an older failure that
	// landed after this tick started.
	applied := p.admitAndApply(&p.snapshotSeq, seq, func() {
		p.sink.ClearError()
		p.sink.ApplySnapshot(payload)
	})
	if !applied {
		p.metrics.Stale.WithLabelValues("dashboard").Inc()
		p.logger.Printf("tick %d (%s): discarding stale snapshot", seq, trigger)
		return ErrStale
	}

	start = time.Now()
	history, err := p.src.FetchHistory(ctx)
	p.metrics.FetchDuration.WithLabelValues("history").Observe(time.Since(start).Seconds())
	if err != nil {
		kind := monitor.Classify(err)
		if kind != monitor.KindCanceled {
			p.metrics.FetchFailures.WithLabelValues("history", string(kind)).Inc()
			p.logger.Printf("tick %d (%s): history fetch failed (%s): %v", seq, trigger, kind, err)
		}
		return nil
	}

	if !p.admitAndApply(&p.historySeq, seq, func() { p.sink.ApplyHistory(history) }) {
		p.metrics.Stale.WithLabelValues("history").Inc()
		p.logger.Printf("tick %d (%s): discarding stale history", seq, trigger)
	}
	return nil
}

// Refresh asks a running Start loop for an immediate tick. Requests made while
// one is already pending are folded into it.
func (p *Poller) Refresh() {
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

// Start ticks once immediately, then on every interval and on every Refresh,
// until ctx is done. Ticks may overlap. Start returns after in-flight ticks
// have finished.
func (p *Poller) Start(ctx context.Context) {
	var wg sync.WaitGroup
	run := func(trigger Trigger) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = p.Tick(ctx, trigger)
		}()
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	run(TriggerInitial)
	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			return
		case <-ticker.C:
			run(TriggerTimer)
		case <-p.refresh:
			run(TriggerManual)
		}
	}
}
