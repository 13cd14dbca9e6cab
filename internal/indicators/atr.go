package indicators

import (
	"math"

	"github.com/mtxlabs/mtx-trading-bot/pkg/types"
)

// TrueRange returns max(high-low, |high-prevClose|, |low-prevClose|).
func TrueRange(current types.OHLCV, prevClose float64) float64 {
	hl := current.High - current.Low
	hc := math.Abs(current.High - prevClose)
	lc := math.Abs(current.Low - prevClose)
	return math.Max(hl, math.Max(hc, lc))
}

// ATRAverage computes ATR as a simple moving average of true range over
// atrPeriod, then averages the trailing lookback ATR values (all available
// values when the series is shorter). Returns 0 when there are not enough
// bars to produce a single ATR value.
func ATRAverage(data []types.OHLCV, atrPeriod, lookback int) float64 {
	if len(data) < atrPeriod+1 {
		return 0
	}

	trs := make([]float64, 0, len(data)-1)
	for i := 1; i < len(data); i++ {
		trs = append(trs, TrueRange(data[i], data[i-1].Close))
	}
	if len(trs) < atrPeriod {
		return 0
	}

	atrs := make([]float64, 0, len(trs)-atrPeriod+1)
	for i := atrPeriod - 1; i < len(trs); i++ {
		sum := 0.0
		for j := i - atrPeriod + 1; j <= i; j++ {
			sum += trs[j]
		}
		atrs = append(atrs, sum/float64(atrPeriod))
	}

	n := lookback
	if n > len(atrs) {
		n = len(atrs)
	}
	sum := 0.0
	for _, v := range atrs[len(atrs)-n:] {
		sum += v
	}
	return sum / float64(n)
}
