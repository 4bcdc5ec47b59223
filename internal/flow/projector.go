package flow

import (
	"fmt"
	"math"
	"sort"
)

// Formula selects how a strike's delta is derived from its accumulator.
type Formula string

const (
	// Directional is up - down.
	Directional Formula = "directional"
	// Combined is (up - down) + (call - put), folding in neutral call/put skew.
	Combined Formula = "combined"
)

// ParseFormula validates a formula name.
func ParseFormula(s string) (Formula, error) {
	switch f := Formula(s); f {
	case Directional, Combined:
		return f, nil
	default:
		return "", fmt.Errorf("unknown formula %q", s)
	}
}

// ViewOptions configures delta formula and polarity. Sign -1 flips the delta
// to (down - up) for charts drawn in the opposite orientation.
type ViewOptions struct {
	Formula Formula
	Sign    int
}

// DefaultViewOptions is the combined formula with normal polarity.
var DefaultViewOptions = ViewOptions{Formula: Combined, Sign: 1}

// Delta computes the signed delta for one accumulator.
func (o ViewOptions) Delta(a StrikeAccumulator) int64 {
	d := a.Up - a.Down
	if o.Formula == Combined {
		d += a.Call - a.Put
	}
	if o.Sign < 0 {
		return -d
	}
	return d
}

// Row is one strike line of a projected view.
type Row struct {
	Strike float64 `json:"strike"`
	Up     int64   `json:"up"`
	Down   int64   `json:"down"`
	Delta  int64   `json:"delta"`
	Call   int64   `json:"call"`
	Put    int64   `json:"put"`
	Trade  int64   `json:"trade"`
}

// Totals are the view-wide sums. UpPct and DownPct are NaN when up+down is zero.
type Totals struct {
	Up      int64
	Down    int64
	Trade   int64
	Call    int64
	Put     int64
	UpPct   float64
	DownPct float64
	Bias    Direction
}

// View is the projected table consumed by renderers.
type View struct {
	Rows   []Row
	Totals Totals
	Range  int64 // symmetric axis bound so zero sits at the centre
	Spot   float64
}

// Split returns the up and down percentages of up+down, or NaN for both when
// nothing directional was traded.
func Split(up, down int64) (float64, float64) {
	total := up + down
	if total == 0 {
		return math.NaN(), math.NaN()
	}
	return float64(up) / float64(total) * 100, float64(down) / float64(total) * 100
}

// Range returns max(max(deltas), |min(deltas)|), or 0 for no deltas.
func Range(deltas []int64) int64 {
	if len(deltas) == 0 {
		return 0
	}
	hi, lo := deltas[0], deltas[0]
	for _, d := range deltas[1:] {
		if d > hi {
			hi = d
		}
		if d < lo {
			lo = d
		}
	}
	if -lo > hi {
		return -lo
	}
	return hi
}

// Project orders strikes by descending price and derives deltas, range and totals.
func Project(strikes Strikes, opts ViewOptions) View {
	rows := make([]Row, 0, len(strikes))
	deltas := make([]int64, 0, len(strikes))
	var totals Totals

	for _, acc := range strikes {
		delta := opts.Delta(*acc)
		rows = append(rows, Row{
			Strike: acc.Strike,
			Up:     acc.Up,
			Down:   acc.Down,
			Delta:  delta,
			Call:   acc.Call,
			Put:    acc.Put,
			Trade:  acc.Trade,
		})
		deltas = append(deltas, delta)

		totals.Up += acc.Up
		totals.Down += acc.Down
		totals.Trade += acc.Trade
		totals.Call += acc.Call
		totals.Put += acc.Put
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Strike > rows[j].Strike })

	totals.UpPct, totals.DownPct = Split(totals.Up, totals.Down)
	switch {
	case totals.Up > totals.Down:
		totals.Bias = Up
	case totals.Up < totals.Down:
		totals.Bias = Down
	default:
		totals.Bias = None
	}

	return View{Rows: rows, Totals: totals, Range: Range(deltas)}
}
