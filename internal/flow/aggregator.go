package flow

// Band restricts aggregation to strikes strictly inside (Spot-Range, Spot+Range).
// A non-positive Range disables filtering. A zero Spot means each trade is
// compared against its own underlying value.
type Band struct {
	Spot  float64
	Range float64
}

// Contains reports whether the trade's strike falls inside the band.
func (b Band) Contains(t ClassifiedTrade) bool {
	if b.Range <= 0 {
		return true
	}
	spot := b.Spot
	if spot == 0 {
		spot = t.UnderlyingValue
	}
	return t.StrikePrice > spot-b.Range && t.StrikePrice < spot+b.Range
}

// StrikeAccumulator holds the signed volume seen at one strike during a single
// aggregation pass.
type StrikeAccumulator struct {
	Strike float64
	Up     int64
	Down   int64
	Trade  int64 // neutral volume, split below by contract type
	Call   int64
	Put    int64
}

// Add folds one trade into the accumulator.
func (a *StrikeAccumulator) Add(t ClassifiedTrade) {
	size := t.Size()
	switch t.Direction() {
	case Up:
		a.Up += size
	case Down:
		a.Down += size
	default:
		a.Trade += size
		switch t.ContractType {
		case Call:
			a.Call += size
		case Put:
			a.Put += size
		}
	}
}

// Merge adds another accumulator's counts into a.
func (a *StrikeAccumulator) Merge(o StrikeAccumulator) {
	a.Up += o.Up
	a.Down += o.Down
	a.Trade += o.Trade
	a.Call += o.Call
	a.Put += o.Put
}

// Strikes maps normalized strike keys to their accumulators.
type Strikes map[StrikeKey]*StrikeAccumulator

func (s Strikes) at(strike float64) *StrikeAccumulator {
	key := KeyOf(strike)
	acc, ok := s[key]
	if !ok {
		acc = &StrikeAccumulator{Strike: strike}
		s[key] = acc
	}
	return acc
}

// Merge adds every accumulator of o into s key-wise.
func (s Strikes) Merge(o Strikes) {
	for key, acc := range o {
		dst, ok := s[key]
		if !ok {
			dst = &StrikeAccumulator{Strike: acc.Strike}
			s[key] = dst
		}
		dst.Merge(*acc)
	}
}

// Aggregate reduces trades inside the band to per-strike accumulators.
// The result does not depend on the order of trades.
func Aggregate(trades []ClassifiedTrade, band Band) Strikes {
	out := make(Strikes)
	for _, t := range trades {
		if !band.Contains(t) {
			continue
		}
		out.at(t.StrikePrice).Add(t)
	}
	return out
}

// AggregateBatches reduces each batch on its own and sums the results.
func AggregateBatches(batches []Batch, band Band) Strikes {
	out := make(Strikes)
	for _, b := range batches {
		out.Merge(Aggregate(b.Trades, band))
	}
	return out
}
