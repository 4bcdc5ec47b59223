package collector

import (
	"context"
	"math"
	"testing"
	"time"

	"optionflow/config"
	"optionflow/internal/flow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var viewCfg = config.ViewConfig{StrikeRange: 50, Window: time.Minute, Formula: "directional", Sign: 1}

func TestServiceDefaults(t *testing.T) {
	p, h := newTestPoller(&fakeFetcher{}, intervalCfg)
	svc := NewService(h, p, "I:SPX", viewCfg)

	q := svc.DefaultQuery()
	assert.Equal(t, time.Minute, q.Window)
	assert.Equal(t, 50.0, q.Range)
	assert.Equal(t, flow.ViewOptions{Formula: flow.Directional, Sign: 1}, q.Options)
}

// go test -v --run TestServiceViewWindow
func TestServiceViewWindow(t *testing.T) {
	f := &fakeFetcher{}
	p, h := newTestPoller(f, intervalCfg)
	svc := NewService(h, p, "I:SPX", viewCfg)

	clock := time.Date(2026, 10, 19, 14, 30, 0, 0, time.UTC)
	p.now = func() time.Time { return clock }
	svc.now = func() time.Time { return clock }

	f.chain = []flow.ContractSnapshot{snapshot(100, flow.Call, 10, 9.8, 10.1, 5, 1)}
	require.NoError(t, p.PollOnce(context.Background()))

	clock = clock.Add(10 * time.Second)
	f.chain = []flow.ContractSnapshot{
		snapshot(100, flow.Call, 10, 9.8, 10.1, 3, 2),
		snapshot(300, flow.Call, 10, 9.8, 10.1, 9, 3), // outside the band
	}
	require.NoError(t, p.PollOnce(context.Background()))

	q := svc.DefaultQuery()
	view := svc.View(q)
	require.Len(t, view.Rows, 1)
	assert.Equal(t, int64(8), view.Rows[0].Up)
	assert.Equal(t, 100.0, view.Spot)

	// latest batch only
	q.Window = 0
	view = svc.View(q)
	require.Len(t, view.Rows, 1)
	assert.Equal(t, int64(3), view.Rows[0].Up)

	// window that ends before the first batch was captured
	clock = clock.Add(2 * time.Minute)
	q.Window = time.Minute
	view = svc.View(q)
	assert.Empty(t, view.Rows)
	assert.True(t, math.IsNaN(view.Totals.UpPct))
}

func TestServiceLatestSortsNewestFirst(t *testing.T) {
	f := &fakeFetcher{chain: []flow.ContractSnapshot{
		snapshot(100, flow.Call, 10, 9.8, 10.1, 1, 10),
		snapshot(105, flow.Call, 10, 9.8, 10.1, 1, 30),
		snapshot(110, flow.Call, 10, 9.8, 10.1, 1, 20),
	}}
	p, h := newTestPoller(f, intervalCfg)
	svc := NewService(h, p, "I:SPX", viewCfg)

	_, ok := svc.Latest()
	assert.False(t, ok)

	require.NoError(t, p.PollOnce(context.Background()))

	latest, ok := svc.Latest()
	require.True(t, ok)
	assert.Equal(t, []float64{105, 110, 100},
		[]float64{latest.Trades[0].StrikePrice, latest.Trades[1].StrikePrice, latest.Trades[2].StrikePrice})

	stored, _ := h.Latest()
	assert.Equal(t, 100.0, stored.Trades[0].StrikePrice)
}

func TestServiceStatusAndLive(t *testing.T) {
	f := &fakeFetcher{chain: []flow.ContractSnapshot{snapshot(100, flow.Call, 10, 9.8, 10.1, 1, 10)}}
	p, h := newTestPoller(f, intervalCfg)
	svc := NewService(h, p, "I:SPX", viewCfg)

	require.NoError(t, p.PollOnce(context.Background()))
	svc.SetLive(false)

	st := svc.Status()
	assert.False(t, st.Live)
	assert.Equal(t, "I:SPX", st.Symbol)
	assert.Equal(t, 1, st.Batches)
	assert.Equal(t, 1, st.Trades)
	assert.Equal(t, "5m0s", st.HistoryMaxAge)
}
