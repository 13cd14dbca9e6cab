package strategy

import (
	"context"
	"math"

	"github.com/mtxlabs/mtx-trading-bot/internal/broker"
	"github.com/mtxlabs/mtx-trading-bot/internal/indicators"
	"github.com/mtxlabs/mtx-trading-bot/pkg/types"
)

type marketStructure int

const (
	structureNeutral marketStructure = iota
	structureBullish
	structureBearish
)

// SMC is a Smart Money Concepts strategy. It reads institutional footprints
// from the bar series: order blocks (a strong directional candle followed by
// low-range consolidation), fair value gaps (three-bar price
// discontinuities) and market structure (sequences of higher highs/lows or
// lower highs/lows), confirmed against a 9/21 EMA pair.
type SMC struct {
	data              broker.DataSource
	orderBlockPeriods int
	fvgLookback       int
}

// NewSMC creates an SMC strategy with the default 20-bar order-block window
// and 3-bar FVG lookback.
func NewSMC(data broker.DataSource) *SMC {
	return &SMC{
		data:              data,
		orderBlockPeriods: 20,
		fvgLookback:       3,
	}
}

func (s *SMC) Name() string { return "smc" }

func (s *SMC) Signal(ctx context.Context) (string, Signal, error) {
	symbol := s.data.Symbol()

	bars, err := s.data.Bars(ctx)
	if err != nil {
		return symbol, SignalNone, err
	}
	if len(bars) < s.orderBlockPeriods+5 {
		return symbol, SignalNone, nil
	}

	bullishBlocks, bearishBlocks := s.identifyOrderBlocks(bars)
	bullishFVG, bearishFVG := s.identifyFairValueGaps(bars)
	structure := s.identifyMarketStructure(bars)

	closes := indicators.Closes(bars)
	emaFast := indicators.EMASeries(closes, 9)
	emaSlow := indicators.EMASeries(closes, 21)

	recentBullish := anyTrue(bullishBlocks, s.orderBlockPeriods) || anyTrue(bullishFVG, s.fvgLookback)
	recentBearish := anyTrue(bearishBlocks, s.orderBlockPeriods) || anyTrue(bearishFVG, s.fvgLookback)

	last := len(bars) - 1
	price := bars[last].Close
	priceAboveFast := price > emaFast[last]

	// Structure-confirmed entries first, then EMA crossover confirmations.
	if structure == structureBullish && recentBullish && priceAboveFast {
		return symbol, SignalBuy, nil
	}
	if structure == structureBearish && recentBearish && !priceAboveFast {
		return symbol, SignalSell, nil
	}
	if emaFast[last] > emaSlow[last] && emaFast[last-1] <= emaSlow[last-1] && recentBullish {
		return symbol, SignalBuy, nil
	}
	if emaFast[last] < emaSlow[last] && emaFast[last-1] >= emaSlow[last-1] && recentBearish {
		return symbol, SignalSell, nil
	}

	return symbol, SignalNone, nil
}

// identifyOrderBlocks flags candles whose body exceeds 60% of their range
// and whose following candle ranges less than half of it. The direction of
// the block follows the direction of the strong candle.
func (s *SMC) identifyOrderBlocks(bars []types.OHLCV) (bullish, bearish []bool) {
	bullish = make([]bool, len(bars))
	bearish = make([]bool, len(bars))

	for i := s.orderBlockPeriods; i < len(bars)-1; i++ {
		body := math.Abs(bars[i].Close - bars[i].Open)
		candleRange := bars[i].Range()
		if candleRange <= 0 || body <= 0.6*candleRange {
			continue
		}
		if bars[i+1].Range() >= 0.5*candleRange {
			continue
		}
		if bars[i].Close > bars[i].Open {
			bullish[i] = true
		} else if bars[i].Close < bars[i].Open {
			bearish[i] = true
		}
	}
	return bullish, bearish
}

// identifyFairValueGaps flags three-bar gaps: bullish when both the middle
// and the following bar trade entirely above the previous bar's high,
// bearish when both trade entirely below the previous bar's low.
func (s *SMC) identifyFairValueGaps(bars []types.OHLCV) (bullish, bearish []bool) {
	bullish = make([]bool, len(bars))
	bearish = make([]bool, len(bars))

	for i := 1; i < len(bars)-1; i++ {
		prev, curr, next := bars[i-1], bars[i], bars[i+1]
		if next.Low > prev.High && curr.Low > prev.High {
			bullish[i] = true
		}
		if next.High < prev.Low && curr.High < prev.Low {
			bearish[i] = true
		}
	}
	return bullish, bearish
}

// identifyMarketStructure classifies the trend from rolling 5-bar extremes:
// at least 3 strictly rising adjacent pairs across the last 10 rolling highs
// and lows reads bullish, at least 3 strictly falling pairs in both reads
// bearish.
func (s *SMC) identifyMarketStructure(bars []types.OHLCV) marketStructure {
	const (
		window     = 5
		recentSpan = 10
	)
	if len(bars) < 20 {
		return structureNeutral
	}

	rollingHighs := rollingMax(bars, window)
	rollingLows := rollingMin(bars, window)

	recentHighs := tail(rollingHighs, recentSpan)
	recentLows := tail(rollingLows, recentSpan)

	var higherHighs, higherLows, lowerHighs, lowerLows int
	for i := 1; i < len(recentHighs); i++ {
		if recentHighs[i] > recentHighs[i-1] {
			higherHighs++
		}
		if recentHighs[i] < recentHighs[i-1] {
			lowerHighs++
		}
	}
	for i := 1; i < len(recentLows); i++ {
		if recentLows[i] > recentLows[i-1] {
			higherLows++
		}
		if recentLows[i] < recentLows[i-1] {
			lowerLows++
		}
	}

	switch {
	case higherHighs >= 3 && higherLows >= 3:
		return structureBullish
	case lowerHighs >= 3 && lowerLows >= 3:
		return structureBearish
	default:
		return structureNeutral
	}
}

// anyTrue reports whether any of the trailing n flags is set.
func anyTrue(flags []bool, n int) bool {
	start := len(flags) - n
	if start < 0 {
		start = 0
	}
	for _, f := range flags[start:] {
		if f {
			return true
		}
	}
	return false
}

func tail(values []float64, n int) []float64 {
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}

// rollingMax returns the rolling maximum of highs over the window; the
// series starts at the first fully populated window.
func rollingMax(bars []types.OHLCV, window int) []float64 {
	if len(bars) < window {
		return nil
	}
	out := make([]float64, 0, len(bars)-window+1)
	for i := window - 1; i < len(bars); i++ {
		max := bars[i-window+1].High
		for j := i - window + 2; j <= i; j++ {
			if bars[j].High > max {
				max = bars[j].High
			}
		}
		out = append(out, max)
	}
	return out
}

func rollingMin(bars []types.OHLCV, window int) []float64 {
	if len(bars) < window {
		return nil
	}
	out := make([]float64, 0, len(bars)-window+1)
	for i := window - 1; i < len(bars); i++ {
		min := bars[i-window+1].Low
		for j := i - window + 2; j <= i; j++ {
			if bars[j].Low < min {
				min = bars[j].Low
			}
		}
		out = append(out, min)
	}
	return out
}
