package indicators

import (
	"errors"

	"github.com/mtxlabs/mtx-trading-bot/pkg/types"
)

// ErrInsufficientData is returned when a series is shorter than the window
// an indicator needs.
var ErrInsufficientData = errors.New("insufficient data for calculation")

// SMA returns the simple moving average of closes over the trailing period.
func SMA(data []types.OHLCV, period int) (float64, error) {
	return SMAAt(data, period, len(data)-1)
}

// SMAAt returns the simple moving average of closes for the window ending at
// index i. The crossover strategy uses it to compare the current bar's
// averages with the previous bar's.
func SMAAt(data []types.OHLCV, period, i int) (float64, error) {
	if period <= 0 || i < period-1 || i >= len(data) {
		return 0, ErrInsufficientData
	}

	sum := 0.0
	for j := i - period + 1; j <= i; j++ {
		sum += data[j].Close
	}
	return sum / float64(period), nil
}
