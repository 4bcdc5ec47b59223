package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// go test -v --run TestClassify
func TestClassify(t *testing.T) {
	cases := []struct {
		name  string
		ask   float64
		bid   float64
		price float64
		want  Side
	}{
		{"above ask", 10, 9.8, 10.1, Buy},
		{"at ask", 10, 9.8, 10, Buy},
		{"at bid", 5, 4.5, 4.5, Sell},
		{"below bid", 5, 4.5, 4.4, Sell},
		{"inside spread", 5, 4.5, 4.7, Neutral},
		// locked/crossed market: ask check wins
		{"locked market", 5, 5, 5, Buy},
		{"crossed market", 4.5, 5, 4.8, Buy},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Classify(trade(100, Call, tc.ask, tc.bid, tc.price, 1))
			require.True(t, ok)
			assert.Equal(t, tc.want, got.Side)
		})
	}
}

func TestClassifyRequiresPriceAndTimestamp(t *testing.T) {
	noPrice := trade(100, Call, 10, 9.8, 10, 1)
	noPrice.LastTradePrice = nil
	_, ok := Classify(noPrice)
	assert.False(t, ok)

	noTime := trade(100, Call, 10, 9.8, 10, 1)
	noTime.LastTradeTimestampNanos = nil
	_, ok = Classify(noTime)
	assert.False(t, ok)
}

func TestClassifyAllKeepsOrderAndDropsUntraded(t *testing.T) {
	a := trade(100, Call, 10, 9.8, 10.1, 3)
	b := trade(95, Put, 5, 4.5, 4.5, 2)
	b.LastTradePrice = nil
	c := trade(90, Put, 5, 4.5, 4.5, 2)

	got := ClassifyAll([]ContractSnapshot{a, b, c})
	require.Len(t, got, 2)
	assert.Equal(t, 100.0, got[0].StrikePrice)
	assert.Equal(t, 90.0, got[1].StrikePrice)
}

func TestDirectionOf(t *testing.T) {
	assert.Equal(t, Up, DirectionOf(Buy, Call))
	assert.Equal(t, Down, DirectionOf(Sell, Call))
	assert.Equal(t, Down, DirectionOf(Buy, Put))
	assert.Equal(t, Up, DirectionOf(Sell, Put))
	assert.Equal(t, None, DirectionOf(Neutral, Call))
	assert.Equal(t, None, DirectionOf(Neutral, Put))
}

func TestKeyOfNormalizesFloatNoise(t *testing.T) {
	assert.Equal(t, KeyOf(5825), KeyOf(5824.99999999999))
	assert.Equal(t, KeyOf(0.1+0.2), KeyOf(0.3))
	assert.NotEqual(t, KeyOf(5825), KeyOf(5830))
}
