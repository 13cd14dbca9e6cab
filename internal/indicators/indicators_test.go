package indicators

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtxlabs/mtx-trading-bot/pkg/types"
)

func generateTestData(count int) []types.OHLCV {
	data := make([]types.OHLCV, count)
	for i := 0; i < count; i++ {
		data[i] = types.OHLCV{
			Open:      100.0 + float64(i),
			High:      105.0 + float64(i),
			Low:       95.0 + float64(i),
			Close:     100.0 + float64(i),
			Volume:    1000.0,
			Timestamp: time.Now().Add(time.Duration(i) * time.Hour),
		}
	}
	return data
}

func flatBars(count int, high, low, close float64) []types.OHLCV {
	data := make([]types.OHLCV, count)
	for i := 0; i < count; i++ {
		data[i] = types.OHLCV{
			Open:      close,
			High:      high,
			Low:       low,
			Close:     close,
			Volume:    1000.0,
			Timestamp: time.Now().Add(time.Duration(i) * time.Hour),
		}
	}
	return data
}

func TestSMA_InsufficientData(t *testing.T) {
	data := generateTestData(10)

	_, err := SMA(data, 20)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestSMA_KnownValue(t *testing.T) {
	data := generateTestData(10) // closes 100..109

	value, err := SMA(data, 5)
	require.NoError(t, err)

	// mean of 105..109
	assert.InDelta(t, 107.0, value, 1e-9)
}

func TestSMAAt_PreviousBar(t *testing.T) {
	data := generateTestData(10)

	now, err := SMAAt(data, 5, len(data)-1)
	require.NoError(t, err)
	prev, err := SMAAt(data, 5, len(data)-2)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, now-prev, 1e-9)
}

func TestEMASeries_SeededWithFirstValue(t *testing.T) {
	values := []float64{100, 110, 120}
	ema := EMASeries(values, 9)

	require.Len(t, ema, 3)
	assert.Equal(t, 100.0, ema[0])
	assert.Greater(t, ema[2], ema[1])
	assert.Less(t, ema[2], 120.0)
}

func TestEMASeries_Empty(t *testing.T) {
	assert.Nil(t, EMASeries(nil, 9))
	assert.Nil(t, EMASeries([]float64{1, 2}, 0))
}

func TestTrueRange_GapDominates(t *testing.T) {
	bar := types.OHLCV{High: 105, Low: 100, Close: 102}

	// gap down: previous close far above the bar's range
	tr := TrueRange(bar, 120)
	assert.InDelta(t, 20.0, tr, 1e-9)

	// no gap: plain high-low span
	tr = TrueRange(bar, 103)
	assert.InDelta(t, 5.0, tr, 1e-9)
}

func TestATRAverage_ConstantRange(t *testing.T) {
	data := flatBars(40, 102, 98, 100)

	atr := ATRAverage(data, 14, 20)
	assert.InDelta(t, 4.0, atr, 1e-9)
}

func TestATRAverage_InsufficientData(t *testing.T) {
	data := flatBars(10, 102, 98, 100)
	assert.Equal(t, 0.0, ATRAverage(data, 14, 20))
}

func TestADX_Bounds(t *testing.T) {
	data := generateTestData(60) // steady uptrend

	adx := ADX(data, 14)
	assert.GreaterOrEqual(t, adx, 0.0)
	assert.LessOrEqual(t, adx, 100.0)
	// a clean one-way trend reads as strong
	assert.Greater(t, adx, 25.0)
}

func TestADX_InsufficientData(t *testing.T) {
	data := generateTestData(20)
	assert.Equal(t, 0.0, ADX(data, 14))
}

func TestVWAPSeries_WeightsByVolume(t *testing.T) {
	data := []types.OHLCV{
		{High: 100, Low: 100, Close: 100, Volume: 1},
		{High: 200, Low: 200, Close: 200, Volume: 3},
	}

	vwap := VWAPSeries(data)
	require.Len(t, vwap, 2)
	assert.InDelta(t, 100.0, vwap[0], 1e-9)
	assert.InDelta(t, 175.0, vwap[1], 1e-9)
}

func TestVWAPSeries_ZeroVolumeFallback(t *testing.T) {
	data := []types.OHLCV{
		{High: 100, Low: 100, Close: 100},
		{High: 200, Low: 200, Close: 200},
	}

	vwap := VWAPSeries(data)
	require.Len(t, vwap, 2)
	// typical price stands in as weight, so later bars still move the VWAP
	assert.Greater(t, vwap[1], vwap[0])
}

func TestReturns_SimpleReturns(t *testing.T) {
	returns := Returns([]float64{100, 110, 99})

	require.Len(t, returns, 2)
	assert.InDelta(t, 0.10, returns[0], 1e-9)
	assert.InDelta(t, -0.10, returns[1], 1e-9)
}

func TestStdDev_ConstantSeries(t *testing.T) {
	assert.Equal(t, 0.0, StdDev([]float64{5, 5, 5, 5}))
	assert.Equal(t, 0.0, StdDev([]float64{5}))
}

func TestStdDev_SampleVariance(t *testing.T) {
	// sample stdev of {2, 4, 4, 4, 5, 5, 7, 9} is ~2.138
	sd := StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 2.138, sd, 0.001)
}
