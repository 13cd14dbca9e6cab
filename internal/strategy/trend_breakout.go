package strategy

import (
	"context"

	"github.com/mtxlabs/mtx-trading-bot/internal/broker"
	"github.com/mtxlabs/mtx-trading-bot/internal/indicators"
	"github.com/mtxlabs/mtx-trading-bot/pkg/types"
)

type breakoutDirection int

const (
	breakoutNone breakoutDirection = iota
	breakoutBullish
	breakoutBearish
)

// TrendBreakout trades breakouts from a trailing support/resistance channel,
// confirmed by ADX trend strength, a 9/21 SMA pair and the series VWAP. In
// an established trend it also takes continuation entries on pullbacks close
// to the channel boundary.
type TrendBreakout struct {
	data              broker.DataSource
	lookbackPeriod    int
	breakoutThreshold float64
	adxPeriod         int
}

// NewTrendBreakout creates a trend-breakout strategy with the default
// 20-bar channel and 0.1% confirmation threshold.
func NewTrendBreakout(data broker.DataSource) *TrendBreakout {
	return &TrendBreakout{
		data:              data,
		lookbackPeriod:    20,
		breakoutThreshold: 0.001,
		adxPeriod:         14,
	}
}

func (t *TrendBreakout) Name() string { return "trend_breakout" }

func (t *TrendBreakout) Signal(ctx context.Context) (string, Signal, error) {
	symbol := t.data.Symbol()

	bars, err := t.data.Bars(ctx)
	if err != nil {
		return symbol, SignalNone, err
	}
	if len(bars) < t.lookbackPeriod+5 {
		return symbol, SignalNone, nil
	}

	support, resistance := t.supportResistance(bars)
	if support == 0 || resistance == 0 {
		return symbol, SignalNone, nil
	}

	direction := t.detectBreakout(bars, support, resistance)
	trendStrength := indicators.ADX(bars, t.adxPeriod)

	last := len(bars) - 1
	price := bars[last].Close

	smaFast, err := indicators.SMA(bars, 9)
	if err != nil {
		return symbol, SignalNone, nil
	}
	smaSlow, err := indicators.SMA(bars, 21)
	if err != nil {
		return symbol, SignalNone, nil
	}
	vwap := indicators.VWAPSeries(bars)

	aboveFast := price > smaFast
	aboveSlow := price > smaSlow
	aboveVWAP := price > vwap[last]

	// Breakout entries need a strong trend and both averages on side.
	if direction == breakoutBullish && trendStrength > 25 && aboveFast && aboveSlow {
		return symbol, SignalBuy, nil
	}
	if direction == breakoutBearish && trendStrength > 25 && !aboveFast && !aboveSlow {
		return symbol, SignalSell, nil
	}

	// Continuation entries: very strong trend, pulled back near the channel
	// boundary in the trend's direction.
	if trendStrength > 30 {
		if aboveFast && aboveSlow && aboveVWAP && smaFast > smaSlow {
			distToSupport := (price - support) / support
			if distToSupport > 0 && distToSupport < 0.005 {
				return symbol, SignalBuy, nil
			}
		}
		if !aboveFast && !aboveSlow && !aboveVWAP && smaFast < smaSlow {
			distToResistance := (resistance - price) / price
			if distToResistance > 0 && distToResistance < 0.005 {
				return symbol, SignalSell, nil
			}
		}
	}

	return symbol, SignalNone, nil
}

// supportResistance returns the lowest low and highest high of the lookback
// window ending at the bar before the current one, so the current bar can
// actually break the levels it is tested against.
func (t *TrendBreakout) supportResistance(bars []types.OHLCV) (support, resistance float64) {
	end := len(bars) - 1
	start := end - t.lookbackPeriod
	if start < 0 {
		return 0, 0
	}

	support = bars[start].Low
	resistance = bars[start].High
	for _, b := range bars[start:end] {
		if b.Low < support {
			support = b.Low
		}
		if b.High > resistance {
			resistance = b.High
		}
	}
	return support, resistance
}

// detectBreakout checks whether the current bar clears a level by at least
// the confirmation threshold, as a fraction of the level.
func (t *TrendBreakout) detectBreakout(bars []types.OHLCV, support, resistance float64) breakoutDirection {
	if len(bars) < 2 {
		return breakoutNone
	}
	current := bars[len(bars)-1]

	if resistance > 0 && current.High > resistance {
		if (current.High-resistance)/resistance >= t.breakoutThreshold {
			return breakoutBullish
		}
	}
	if support > 0 && current.Low < support {
		if (support-current.Low)/support >= t.breakoutThreshold {
			return breakoutBearish
		}
	}
	return breakoutNone
}
