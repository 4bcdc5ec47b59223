package flow

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }

// trade builds a snapshot with a last trade at price for the given quote.
func trade(strike float64, ct ContractType, ask, bid, price float64, size int64) ContractSnapshot {
	return ContractSnapshot{
		StrikePrice:             strike,
		ContractType:            ct,
		BestAsk:                 ask,
		BestBid:                 bid,
		LastTradePrice:          f64(price),
		LastTradeSize:           i64(size),
		LastTradeTimestampNanos: i64(1_700_000_000_000_000_000),
		UnderlyingValue:         100,
	}
}

func classified(s ContractSnapshot) ClassifiedTrade {
	t, ok := Classify(s)
	if !ok {
		panic("snapshot is not classifiable")
	}
	return t
}
