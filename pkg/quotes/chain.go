package quotes

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"optionflow/internal/flow"
)

var (
	errMissingDetails = errors.New("missing details")
	errMissingQuote   = errors.New("missing last_quote")
	errContractType   = errors.New("unknown contract type")
	errStrike         = errors.New("non-positive strike")
)

// ParseChain converts raw chain elements to snapshots.
// It skips elements that fail to decode or lack details/last_quote and
// reports how many were skipped.
func ParseChain(raw []json.RawMessage) ([]flow.ContractSnapshot, int) {
	out := make([]flow.ContractSnapshot, 0, len(raw))
	skipped := 0

	for _, elem := range raw {
		var c ChainContract
		if err := json.Unmarshal(elem, &c); err != nil {
			skipped++
			continue
		}
		snap, err := c.Snapshot()
		if err != nil {
			skipped++
			continue
		}
		out = append(out, snap)
	}
	return out, skipped
}

// Snapshot maps a feed contract onto the domain snapshot.
// A zero last-trade price or timestamp is treated as absent.
func (c ChainContract) Snapshot() (flow.ContractSnapshot, error) {
	if c.Details == nil {
		return flow.ContractSnapshot{}, errMissingDetails
	}
	if c.LastQuote == nil {
		return flow.ContractSnapshot{}, errMissingQuote
	}

	var ct flow.ContractType
	switch strings.ToLower(c.Details.ContractType) {
	case "call":
		ct = flow.Call
	case "put":
		ct = flow.Put
	default:
		return flow.ContractSnapshot{}, fmt.Errorf("%w: %q", errContractType, c.Details.ContractType)
	}
	if c.Details.StrikePrice <= 0 {
		return flow.ContractSnapshot{}, errStrike
	}

	snap := flow.ContractSnapshot{
		Ticker:         c.Details.Ticker,
		StrikePrice:    c.Details.StrikePrice,
		ContractType:   ct,
		ExpirationDate: c.Details.ExpirationDate,
		BestAsk:        c.LastQuote.Ask,
		BestBid:        c.LastQuote.Bid,
	}
	if c.UnderlyingAsset != nil {
		snap.UnderlyingValue = c.UnderlyingAsset.Value
	}

	if lt := c.LastTrade; lt != nil {
		if lt.Price != nil && *lt.Price != 0 {
			snap.LastTradePrice = lt.Price
		}
		if lt.SIPTimestamp != nil && *lt.SIPTimestamp != 0 {
			snap.LastTradeTimestampNanos = lt.SIPTimestamp
		}
		snap.LastTradeSize = lt.Size
	}

	return snap, nil
}
