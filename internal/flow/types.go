package flow

import (
	"time"

	"github.com/google/uuid"
)

// ContractType is the option right of a contract as reported by the feed.
type ContractType string

const (
	Call ContractType = "call"
	Put  ContractType = "put"
)

// Side is the aggressor side assigned to a last trade by the tick rule.
type Side string

const (
	Buy     Side = "buy"
	Sell    Side = "sell"
	Neutral Side = "neutral"
)

// Direction is the market sentiment implied by a trade's side and contract type.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
	None Direction = "none"
)

// ContractSnapshot is one contract's market state at fetch time.
// Last-trade fields are nil when the feed did not report them.
type ContractSnapshot struct {
	Ticker         string       `json:"ticker"`
	StrikePrice    float64      `json:"strike_price"`
	ContractType   ContractType `json:"contract_type"`
	ExpirationDate string       `json:"expiration_date"`

	LastTradePrice          *float64 `json:"last_trade_price,omitempty"`
	LastTradeSize           *int64   `json:"last_trade_size,omitempty"`
	LastTradeTimestampNanos *int64   `json:"last_trade_timestamp_nanos,omitempty"`

	BestAsk         float64 `json:"best_ask"`
	BestBid         float64 `json:"best_bid"`
	UnderlyingValue float64 `json:"underlying_value"`
}

// Size returns the last trade size, treating a missing size as zero.
func (s ContractSnapshot) Size() int64 {
	if s.LastTradeSize == nil {
		return 0
	}
	return *s.LastTradeSize
}

// TradeTime returns the exchange (SIP) time of the last trade, or the zero time.
func (s ContractSnapshot) TradeTime() time.Time {
	if s.LastTradeTimestampNanos == nil {
		return time.Time{}
	}
	return time.Unix(0, *s.LastTradeTimestampNanos)
}

// ClassifiedTrade pairs a snapshot with the side derived from its last trade.
type ClassifiedTrade struct {
	ContractSnapshot
	Side Side `json:"side"`
}

// Direction maps the trade onto up/down sentiment, see DirectionOf.
func (t ClassifiedTrade) Direction() Direction {
	return DirectionOf(t.Side, t.ContractType)
}

// Batch is the set of classified trades produced by one fetch cycle.
// Timestamp is the local capture time, not exchange time.
type Batch struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	Trades    []ClassifiedTrade `json:"trades"`
}

// NewBatch tags trades captured at the given time.
func NewBatch(captured time.Time, trades []ClassifiedTrade) Batch {
	return Batch{
		ID:        uuid.NewString(),
		Timestamp: captured,
		Trades:    trades,
	}
}
