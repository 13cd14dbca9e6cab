package indicators

import "github.com/mtxlabs/mtx-trading-bot/pkg/types"

// EMASeries returns the exponential moving average of values with the given
// span, smoothed recursively and seeded with the first value. This matches
// the conventional span-based weighting: alpha = 2 / (span + 1).
func EMASeries(values []float64, span int) []float64 {
	if len(values) == 0 || span <= 0 {
		return nil
	}

	alpha := 2.0 / float64(span+1)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// Closes extracts the close series from a bar series.
func Closes(data []types.OHLCV) []float64 {
	out := make([]float64, len(data))
	for i, b := range data {
		out[i] = b.Close
	}
	return out
}
