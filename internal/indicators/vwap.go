package indicators

import "github.com/mtxlabs/mtx-trading-bot/pkg/types"

// VWAPSeries returns the cumulative volume-weighted average price over the
// whole series. Bars from sources without tick or real volume report zero
// volume; in that case the typical price stands in as the weight, which
// degrades VWAP to a running typical-price average.
func VWAPSeries(data []types.OHLCV) []float64 {
	if len(data) == 0 {
		return nil
	}

	useTypicalAsVolume := true
	for _, b := range data {
		if b.Volume > 0 {
			useTypicalAsVolume = false
			break
		}
	}

	out := make([]float64, len(data))
	var cumPV, cumV float64
	for i, b := range data {
		tp := b.TypicalPrice()
		vol := b.Volume
		if useTypicalAsVolume {
			vol = tp
		}
		cumPV += tp * vol
		cumV += vol
		if cumV > 0 {
			out[i] = cumPV / cumV
		}
	}
	return out
}
