package flow

// Classify applies the tick rule to a snapshot's last trade.
// It reports false when the snapshot carries no last-trade price or timestamp.
//
// The ask comparison runs first, so a trade on a locked or crossed market
// (ask <= bid) that satisfies both comparisons is labelled Buy.
func Classify(s ContractSnapshot) (ClassifiedTrade, bool) {
	if s.LastTradePrice == nil || s.LastTradeTimestampNanos == nil {
		return ClassifiedTrade{}, false
	}

	price := *s.LastTradePrice
	side := Neutral
	switch {
	case price >= s.BestAsk:
		side = Buy
	case price <= s.BestBid:
		side = Sell
	}

	return ClassifiedTrade{ContractSnapshot: s, Side: side}, true
}

// ClassifyAll classifies a fetched chain, dropping snapshots with no trade.
// Input order is preserved.
func ClassifyAll(chain []ContractSnapshot) []ClassifiedTrade {
	out := make([]ClassifiedTrade, 0, len(chain))
	for _, s := range chain {
		if t, ok := Classify(s); ok {
			out = append(out, t)
		}
	}
	return out
}

// DirectionOf maps side and contract type onto sentiment: a bought call or a
// sold put is Up, a sold call or a bought put is Down, neutral trades are None.
func DirectionOf(side Side, ct ContractType) Direction {
	switch {
	case side == Buy && ct == Call, side == Sell && ct == Put:
		return Up
	case side == Sell && ct == Call, side == Buy && ct == Put:
		return Down
	default:
		return None
	}
}
