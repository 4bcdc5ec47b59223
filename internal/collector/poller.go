package collector

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"optionflow/config"
	"optionflow/internal/flow"
	"optionflow/internal/memorystore"
	"optionflow/internal/metrics"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ChainFetcher returns the current options chain for an underlying and the
// number of malformed elements it dropped.
type ChainFetcher interface {
	GetChain(ctx context.Context, symbol string) ([]flow.ContractSnapshot, int, error)
}

// Poller fetches the chain, classifies it and commits each batch to history.
// It is the only writer of the history. At most one fetch is in flight.
type Poller struct {
	fetcher ChainFetcher
	symbol  string
	history *memorystore.History
	logger  *zap.Logger

	cadence  string
	interval time.Duration
	limiter  *rate.Limiter

	live    atomic.Bool
	resumed chan struct{}

	lastCommit atomic.Int64 // unix nanos
	failures   atomic.Int64

	subMu  sync.Mutex
	subs   map[int]chan struct{}
	nextID int

	now func() time.Time
}

func NewPoller(cfg config.PollerConfig, symbol string, fetcher ChainFetcher,
	history *memorystore.History, logger *zap.Logger) *Poller {
	gap := cfg.MinGap
	if gap <= 0 {
		gap = time.Second
	}

	p := &Poller{
		fetcher:  fetcher,
		symbol:   symbol,
		history:  history,
		logger:   logger.With(zap.String("component", "poller"), zap.String("symbol", symbol)),
		cadence:  cfg.Cadence,
		interval: cfg.Interval,
		limiter:  rate.NewLimiter(rate.Every(gap), 1),
		resumed:  make(chan struct{}, 1),
		subs:     make(map[int]chan struct{}),
		now:      time.Now,
	}
	p.live.Store(true)
	return p
}

// Live reports whether the poller issues fetches.
func (p *Poller) Live() bool {
	return p.live.Load()
}

// SetLive pauses or resumes polling. The change applies at the next fetch
// boundary; a fetch already in flight still commits.
func (p *Poller) SetLive(live bool) {
	if p.live.Swap(live) == live {
		return
	}
	p.logger.Info("live flag changed", zap.Bool("live", live))
	if live {
		select {
		case p.resumed <- struct{}{}:
		default:
		}
	}
}

// LastCommit returns the capture time of the last committed batch.
func (p *Poller) LastCommit() time.Time {
	n := p.lastCommit.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// Failures returns the number of failed fetch cycles.
func (p *Poller) Failures() int64 {
	return p.failures.Load()
}

// Subscribe returns a channel signalled after every commit and a function
// that removes the subscription. Signals are coalesced for slow readers.
func (p *Poller) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	p.subMu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = ch
	p.subMu.Unlock()

	return ch, func() {
		p.subMu.Lock()
		delete(p.subs, id)
		p.subMu.Unlock()
	}
}

func (p *Poller) notify() {
	p.subMu.Lock()
	defer p.subMu.Unlock()
	for _, ch := range p.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Run polls until ctx is cancelled. Fetch failures are logged and the cycle
// is skipped; they never stop the loop.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("poller started",
		zap.String("cadence", p.cadence),
		zap.Duration("interval", p.interval))

	var ticker *time.Ticker
	if p.cadence == config.CadenceInterval {
		ticker = time.NewTicker(p.interval)
		defer ticker.Stop()
	}

	first := true
	for {
		if !p.Live() {
			select {
			case <-ctx.Done():
				p.logger.Info("poller stopped")
				return nil
			case <-p.resumed:
				continue
			}
		}

		if !first {
			if err := p.pace(ctx, ticker); err != nil {
				p.logger.Info("poller stopped")
				return nil
			}
			// paused while waiting for the next slot
			if !p.Live() {
				continue
			}
		}
		first = false

		if err := p.PollOnce(ctx); err != nil {
			if ctx.Err() != nil {
				p.logger.Info("poller stopped")
				return nil
			}
			p.failures.Add(1)
			p.logger.Warn("poll cycle failed", zap.Error(err))
		}
	}
}

// pace blocks until the next fetch may start.
func (p *Poller) pace(ctx context.Context, ticker *time.Ticker) error {
	if ticker == nil {
		return p.limiter.Wait(ctx)
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ticker.C:
		return nil
	}
}

// PollOnce performs one fetch/classify/commit cycle. Results that arrive after
// ctx is cancelled are discarded without touching history.
func (p *Poller) PollOnce(ctx context.Context) error {
	start := time.Now()
	chain, skipped, err := p.fetcher.GetChain(ctx, p.symbol)
	latency := time.Since(start)
	if err != nil {
		metrics.RecordPoll("error", latency, 0)
		return fmt.Errorf("fetch chain: %w", err)
	}

	if err := ctx.Err(); err != nil {
		metrics.RecordPoll("cancelled", latency, skipped)
		return err
	}

	now := p.now()
	batch := flow.NewBatch(now, flow.ClassifyAll(chain))
	p.history.Append(batch, now)
	p.lastCommit.Store(now.UnixNano())

	sides := countSides(batch.Trades)
	retained := p.history.Len()
	metrics.RecordPoll("success", latency, skipped)
	metrics.RecordCommit(sides, retained)

	p.logger.Debug("batch committed",
		zap.String("batch_id", batch.ID),
		zap.Int("contracts", len(chain)),
		zap.Int("trades", len(batch.Trades)),
		zap.Int("skipped", skipped),
		zap.Int("retained_batches", retained),
		zap.Duration("latency", latency))

	p.notify()
	return nil
}

func countSides(trades []flow.ClassifiedTrade) map[string]int {
	out := make(map[string]int, 3)
	for _, t := range trades {
		out[string(t.Side)]++
	}
	return out
}
