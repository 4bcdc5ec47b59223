package dashboard

import (
	"math"
	"time"

	"optionflow/internal/flow"
)

type totalsPayload struct {
	Up      int64    `json:"up"`
	Down    int64    `json:"down"`
	Trade   int64    `json:"trade"`
	Call    int64    `json:"call"`
	Put     int64    `json:"put"`
	UpPct   *float64 `json:"up_pct"`   // null when up+down is zero
	DownPct *float64 `json:"down_pct"` // null when up+down is zero
	Bias    string   `json:"bias"`
}

type viewPayload struct {
	Window  string        `json:"window"`
	Range   float64       `json:"range"`
	Formula string        `json:"formula"`
	Sign    int           `json:"sign"`
	Spot    float64       `json:"spot"`
	Axis    int64         `json:"axis"`
	Rows    []flow.Row    `json:"rows"`
	Totals  totalsPayload `json:"totals"`
}

type tradePayload struct {
	Time      string  `json:"time"`
	Side      string  `json:"side"`
	Size      int64   `json:"size"`
	Strike    float64 `json:"strike"`
	Price     float64 `json:"price"`
	Type      string  `json:"type"`
	Direction string  `json:"direction"`
	Ticker    string  `json:"ticker"`
	Spot      float64 `json:"spot"`
}

// finite maps NaN and Inf to nil since JSON has no representation for them.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func windowLabel(d time.Duration) string {
	if d <= 0 {
		return "latest"
	}
	return d.String()
}

func newViewPayload(v flow.View, window time.Duration, band float64, opts flow.ViewOptions) viewPayload {
	rows := v.Rows
	if rows == nil {
		rows = []flow.Row{}
	}
	return viewPayload{
		Window:  windowLabel(window),
		Range:   band,
		Formula: string(opts.Formula),
		Sign:    opts.Sign,
		Spot:    v.Spot,
		Axis:    v.Range,
		Rows:    rows,
		Totals: totalsPayload{
			Up:      v.Totals.Up,
			Down:    v.Totals.Down,
			Trade:   v.Totals.Trade,
			Call:    v.Totals.Call,
			Put:     v.Totals.Put,
			UpPct:   finite(v.Totals.UpPct),
			DownPct: finite(v.Totals.DownPct),
			Bias:    string(v.Totals.Bias),
		},
	}
}

func newTradePayloads(b flow.Batch, loc *time.Location) []tradePayload {
	out := make([]tradePayload, 0, len(b.Trades))
	for _, t := range b.Trades {
		var price float64
		if t.LastTradePrice != nil {
			price = *t.LastTradePrice
		}
		out = append(out, tradePayload{
			Time:      t.TradeTime().In(loc).Format(time.RFC3339Nano),
			Side:      string(t.Side),
			Size:      t.Size(),
			Strike:    t.StrikePrice,
			Price:     price,
			Type:      string(t.ContractType),
			Direction: string(t.Direction()),
			Ticker:    t.Ticker,
			Spot:      t.UnderlyingValue,
		})
	}
	return out
}
