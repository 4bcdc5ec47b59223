package collector

import (
	"sort"
	"time"

	"optionflow/config"
	"optionflow/internal/flow"
	"optionflow/internal/memorystore"
)

// Query selects what a view aggregates. A zero Window means the latest batch
// only; a non-positive Range disables the near-the-money band.
type Query struct {
	Window  time.Duration
	Range   float64
	Options flow.ViewOptions
}

// Status summarises poller and history state.
type Status struct {
	Live          bool      `json:"live"`
	Symbol        string    `json:"symbol"`
	Batches       int       `json:"batches"`
	Trades        int       `json:"trades"`
	LastCommit    time.Time `json:"last_commit"`
	Failures      int64     `json:"failures"`
	HistoryMaxAge string    `json:"history_max_age"`
}

// Service is the read side consumed by renderers. It never mutates history.
type Service struct {
	history  *memorystore.History
	poller   *Poller
	symbol   string
	defaults Query
	now      func() time.Time
}

func NewService(history *memorystore.History, poller *Poller, symbol string, view config.ViewConfig) *Service {
	opts := flow.DefaultViewOptions
	if f, err := flow.ParseFormula(view.Formula); err == nil {
		opts.Formula = f
	}
	if view.Sign != 0 {
		opts.Sign = view.Sign
	}

	return &Service{
		history: history,
		poller:  poller,
		symbol:  symbol,
		defaults: Query{
			Window:  view.Window,
			Range:   view.StrikeRange,
			Options: opts,
		},
		now: time.Now,
	}
}

// DefaultQuery returns the configured window, band and view options.
func (s *Service) DefaultQuery() Query {
	return s.defaults
}

// View aggregates the requested window and projects it. Spot is taken from the
// most recent trade of the latest batch.
func (s *Service) View(q Query) flow.View {
	band := flow.Band{Range: q.Range}

	var strikes flow.Strikes
	if q.Window <= 0 {
		latest, _ := s.history.Latest()
		strikes = flow.Aggregate(latest.Trades, band)
	} else {
		strikes = flow.AggregateBatches(s.history.Window(q.Window, s.now()), band)
	}

	view := flow.Project(strikes, q.Options)
	if latest, ok := s.Latest(); ok && len(latest.Trades) > 0 {
		view.Spot = latest.Trades[0].UnderlyingValue
	}
	return view
}

// Latest returns the most recent batch with trades ordered newest first by
// exchange time. The stored batch is left untouched.
func (s *Service) Latest() (flow.Batch, bool) {
	latest, ok := s.history.Latest()
	if !ok {
		return flow.Batch{}, false
	}

	trades := make([]flow.ClassifiedTrade, len(latest.Trades))
	copy(trades, latest.Trades)
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].TradeTime().After(trades[j].TradeTime())
	})
	latest.Trades = trades
	return latest, true
}

func (s *Service) Status() Status {
	return Status{
		Live:          s.poller.Live(),
		Symbol:        s.symbol,
		Batches:       s.history.Len(),
		Trades:        s.history.CountTrades(),
		LastCommit:    s.poller.LastCommit(),
		Failures:      s.poller.Failures(),
		HistoryMaxAge: s.history.MaxAge().String(),
	}
}

// SetLive pauses or resumes the poller.
func (s *Service) SetLive(live bool) {
	s.poller.SetLive(live)
}

// Subscribe is signalled after each batch commit.
func (s *Service) Subscribe() (<-chan struct{}, func()) {
	return s.poller.Subscribe()
}
