package strategy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtxlabs/mtx-trading-bot/pkg/types"
)

// fakeDataSource serves a fixed bar series to strategies under test.
type fakeDataSource struct {
	symbol string
	bars   []types.OHLCV
	err    error
}

func (f *fakeDataSource) Symbol() string { return f.symbol }

func (f *fakeDataSource) Bars(context.Context) ([]types.OHLCV, error) {
	return f.bars, f.err
}

func barsFromCloses(closes []float64) []types.OHLCV {
	bars := make([]types.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = types.OHLCV{
			Open:      c,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    1000,
			Timestamp: time.Now().Add(time.Duration(i) * time.Hour),
		}
	}
	return bars
}

func constantCloses(n int, value float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = value
	}
	return closes
}

func TestCrossover_BuyOnCrossUp(t *testing.T) {
	// flat series then a spike: both averages were equal on the previous
	// bar, the fast one reacts harder on the last bar
	closes := constantCloses(30, 100)
	closes[29] = 200

	strat := NewCrossover(&fakeDataSource{symbol: "BTCUSDT", bars: barsFromCloses(closes)})

	symbol, sig, err := strat.Signal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", symbol)
	assert.Equal(t, SignalBuy, sig)
}

func TestCrossover_SellOnCrossDown(t *testing.T) {
	closes := constantCloses(30, 100)
	closes[29] = 10

	strat := NewCrossover(&fakeDataSource{symbol: "BTCUSDT", bars: barsFromCloses(closes)})

	_, sig, err := strat.Signal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SignalSell, sig)
}

func TestCrossover_NoSignalWithoutCross(t *testing.T) {
	strat := NewCrossover(&fakeDataSource{symbol: "BTCUSDT", bars: barsFromCloses(constantCloses(30, 100))})

	_, sig, err := strat.Signal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SignalNone, sig)
}

func TestCrossover_ShortHistoryIsNone(t *testing.T) {
	strat := NewCrossover(&fakeDataSource{symbol: "BTCUSDT", bars: barsFromCloses(constantCloses(15, 100))})

	_, sig, err := strat.Signal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SignalNone, sig)
}

func TestCrossover_DataErrorPropagates(t *testing.T) {
	strat := NewCrossover(&fakeDataSource{symbol: "BTCUSDT", err: errors.New("feed down")})

	_, sig, err := strat.Signal(context.Background())
	assert.Error(t, err)
	assert.Equal(t, SignalNone, sig)
}
