package flow

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// go test -v --run TestAggregateScenarios
func TestAggregateScenarios(t *testing.T) {
	boughtCall := classified(trade(100, Call, 10, 9.8, 10.1, 3))
	require.Equal(t, Buy, boughtCall.Side)
	require.Equal(t, Up, boughtCall.Direction())

	soldPut := classified(trade(95, Put, 5, 4.5, 4.5, 2))
	require.Equal(t, Sell, soldPut.Side)
	require.Equal(t, Up, soldPut.Direction())

	got := Aggregate([]ClassifiedTrade{boughtCall, soldPut}, Band{})
	require.Len(t, got, 2)
	assert.Equal(t, int64(3), got[KeyOf(100)].Up)
	assert.Equal(t, int64(2), got[KeyOf(95)].Up)
	assert.Zero(t, got[KeyOf(95)].Down)
}

func TestAggregateNeutralSplitsByType(t *testing.T) {
	trades := []ClassifiedTrade{
		classified(trade(100, Call, 5, 4.5, 4.7, 4)),
		classified(trade(100, Put, 5, 4.5, 4.7, 1)),
		classified(trade(100, Put, 5, 4.5, 5.2, 6)),  // bought put
		classified(trade(100, Call, 5, 4.5, 4.4, 2)), // sold call
	}

	acc := Aggregate(trades, Band{})[KeyOf(100)]
	require.NotNil(t, acc)
	assert.Equal(t, StrikeAccumulator{Strike: 100, Up: 0, Down: 8, Trade: 5, Call: 4, Put: 1}, *acc)
}

func TestAggregateMissingSizeCountsZero(t *testing.T) {
	s := trade(100, Call, 10, 9.8, 10.1, 0)
	s.LastTradeSize = nil

	acc := Aggregate([]ClassifiedTrade{classified(s)}, Band{})[KeyOf(100)]
	require.NotNil(t, acc)
	assert.Zero(t, acc.Up)
}

func TestAggregateEmpty(t *testing.T) {
	assert.Empty(t, Aggregate(nil, Band{Range: 50}))
	assert.Empty(t, AggregateBatches(nil, Band{}))
}

func TestBandIsExclusive(t *testing.T) {
	band := Band{Spot: 100, Range: 15}
	trades := []ClassifiedTrade{
		classified(trade(85, Call, 10, 9.8, 10.1, 1)),
		classified(trade(86, Call, 10, 9.8, 10.1, 1)),
		classified(trade(114, Call, 10, 9.8, 10.1, 1)),
		classified(trade(115, Call, 10, 9.8, 10.1, 1)),
	}

	got := Aggregate(trades, band)
	assert.Len(t, got, 2)
	assert.Contains(t, got, KeyOf(86))
	assert.Contains(t, got, KeyOf(114))
}

func TestBandFallsBackToTradeSpot(t *testing.T) {
	near := trade(110, Call, 10, 9.8, 10.1, 1)
	near.UnderlyingValue = 100
	far := trade(110, Call, 10, 9.8, 10.1, 1)
	far.UnderlyingValue = 200

	band := Band{Range: 50}
	assert.True(t, band.Contains(classified(near)))
	assert.False(t, band.Contains(classified(far)))
}

func TestAggregateIsOrderIndependent(t *testing.T) {
	var trades []ClassifiedTrade
	for i := 0; i < 200; i++ {
		strike := float64(90 + i%5*5)
		ct := Call
		if i%3 == 0 {
			ct = Put
		}
		price := []float64{10.2, 9.7, 9.9}[i%3]
		trades = append(trades, classified(trade(strike, ct, 10, 9.8, price, int64(i%7+1))))
	}

	want := Aggregate(trades, Band{})

	rng := rand.New(rand.NewSource(42))
	for n := 0; n < 5; n++ {
		shuffled := append([]ClassifiedTrade(nil), trades...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		assert.Equal(t, want, Aggregate(shuffled, Band{}))
	}
}

func TestAggregateBatchesSumsKeyWise(t *testing.T) {
	a := NewBatch(timeAt(0), []ClassifiedTrade{classified(trade(100, Call, 10, 9.8, 10.1, 5))})
	b := NewBatch(timeAt(1), []ClassifiedTrade{classified(trade(100, Call, 10, 9.8, 10.1, 3))})

	got := AggregateBatches([]Batch{a, b}, Band{})
	require.Contains(t, got, KeyOf(100))
	assert.Equal(t, int64(8), got[KeyOf(100)].Up)

	manual := Aggregate(a.Trades, Band{})
	manual.Merge(Aggregate(b.Trades, Band{}))
	assert.Equal(t, manual, got)

	reversed := AggregateBatches([]Batch{b, a}, Band{})
	assert.Equal(t, got, reversed)
}
