package indicators

import (
	"math"

	"github.com/mtxlabs/mtx-trading-bot/pkg/types"
)

// ADX computes the Average Directional Index over the full series using
// Wilder's smoothing and returns the latest value. The first ADX value needs
// period bars to seed the smoothed TR/DM sums plus period DX values, so the
// series must hold at least 2*period+1 bars; shorter series yield 0.
func ADX(data []types.OHLCV, period int) float64 {
	if period <= 0 || len(data) < 2*period+1 {
		return 0
	}

	// Seed Wilder sums over the first period of movements.
	var trSum, plusDMSum, minusDMSum float64
	for i := 1; i <= period; i++ {
		tr, plusDM, minusDM := directionalMovement(data[i], data[i-1])
		trSum += tr
		plusDMSum += plusDM
		minusDMSum += minusDM
	}

	dx := make([]float64, 0, len(data)-period)
	dx = append(dx, dxValue(plusDMSum, minusDMSum, trSum))

	for i := period + 1; i < len(data); i++ {
		tr, plusDM, minusDM := directionalMovement(data[i], data[i-1])
		trSum = trSum - trSum/float64(period) + tr
		plusDMSum = plusDMSum - plusDMSum/float64(period) + plusDM
		minusDMSum = minusDMSum - minusDMSum/float64(period) + minusDM
		dx = append(dx, dxValue(plusDMSum, minusDMSum, trSum))
	}

	if len(dx) < period {
		return 0
	}

	// Initial ADX is the simple average of the first period DX values,
	// then Wilder-smoothed over the rest.
	adx := 0.0
	for i := 0; i < period; i++ {
		adx += dx[i]
	}
	adx /= float64(period)
	for i := period; i < len(dx); i++ {
		adx = (adx*float64(period-1) + dx[i]) / float64(period)
	}
	return adx
}

func directionalMovement(current, previous types.OHLCV) (tr, plusDM, minusDM float64) {
	tr = TrueRange(current, previous.Close)

	highDiff := current.High - previous.High
	lowDiff := previous.Low - current.Low
	if highDiff > lowDiff && highDiff > 0 {
		plusDM = highDiff
	}
	if lowDiff > highDiff && lowDiff > 0 {
		minusDM = lowDiff
	}
	return tr, plusDM, minusDM
}

func dxValue(plusDMSum, minusDMSum, trSum float64) float64 {
	if trSum == 0 {
		return 0
	}
	plusDI := plusDMSum / trSum * 100
	minusDI := minusDMSum / trSum * 100
	diSum := plusDI + minusDI
	if diSum == 0 {
		return 0
	}
	return math.Abs(plusDI-minusDI) / diSum * 100
}
