package volatility

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/mtxlabs/mtx-trading-bot/internal/broker"
	"github.com/mtxlabs/mtx-trading-bot/internal/indicators"
)

// Metrics is the volatility profile of one symbol, computed on demand and
// never persisted.
type Metrics struct {
	Symbol        string
	ATR           float64
	ATRPercentage float64 // ATR as a percentage of the current price
	Volatility    float64 // annualized stdev of simple close returns
	PriceRangePct float64 // full-series high-low span over mean close, in %
	CurrentPrice  float64
	Score         float64 // 0.6·ATRPercentage + 0.4·Volatility
}

// Analyzer ranks symbols by a composite volatility score so the most
// volatile candidates can be picked for trading.
type Analyzer struct {
	market         broker.MarketData
	atrPeriod      int
	lookbackPeriod int
}

// NewAnalyzer creates an analyzer with the default ATR period (14) and
// lookback window (20).
func NewAnalyzer(market broker.MarketData) *Analyzer {
	return &Analyzer{market: market, atrPeriod: 14, lookbackPeriod: 20}
}

// Metrics computes the volatility profile for one symbol. Symbols with no
// data or fewer than atrPeriod+lookbackPeriod bars are reported as an error
// so callers exclude them instead of scoring them as zero.
func (a *Analyzer) Metrics(ctx context.Context, symbol string) (*Metrics, error) {
	bars, err := a.market.Bars(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("no data for %s: %w", symbol, err)
	}
	if len(bars) < a.atrPeriod+a.lookbackPeriod {
		return nil, fmt.Errorf("insufficient history for %s: %d bars", symbol, len(bars))
	}

	atr := indicators.ATRAverage(bars, a.atrPeriod, a.lookbackPeriod)

	closes := indicators.Closes(bars)
	vol := indicators.StdDev(indicators.Returns(closes)) * math.Sqrt(252)

	maxHigh, minLow, sumClose := bars[0].High, bars[0].Low, 0.0
	for _, b := range bars {
		if b.High > maxHigh {
			maxHigh = b.High
		}
		if b.Low < minLow {
			minLow = b.Low
		}
		sumClose += b.Close
	}
	meanClose := sumClose / float64(len(bars))

	priceRangePct := 0.0
	if meanClose > 0 {
		priceRangePct = (maxHigh - minLow) / meanClose * 100
	}

	// Live mid price when a quote is available, last close otherwise.
	currentPrice := closes[len(closes)-1]
	if tick, err := a.market.Tick(ctx, symbol); err == nil && tick.Mid() > 0 {
		currentPrice = tick.Mid()
	}

	atrPct := 0.0
	if currentPrice > 0 {
		atrPct = atr / currentPrice * 100
	}

	return &Metrics{
		Symbol:        symbol,
		ATR:           atr,
		ATRPercentage: atrPct,
		Volatility:    vol,
		PriceRangePct: priceRangePct,
		CurrentPrice:  currentPrice,
		Score:         0.6*atrPct + 0.4*vol,
	}, nil
}

// Rank computes metrics for all symbols and returns them in descending
// score order. Unavailable symbols are skipped; the sort is stable so tied
// scores keep their input order.
func (a *Analyzer) Rank(ctx context.Context, symbols []string) []Metrics {
	ranked := make([]Metrics, 0, len(symbols))
	for _, symbol := range symbols {
		m, err := a.Metrics(ctx, symbol)
		if err != nil {
			log.Printf("⚠️ excluding %s from ranking: %v", symbol, err)
			continue
		}
		ranked = append(ranked, *m)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// SelectTop returns up to maxN symbols whose score is at least minScore, in
// descending score order. When nothing qualifies the candidates themselves
// are returned, truncated to maxN, so a data outage degrades symbol
// selection instead of halting trading.
func (a *Analyzer) SelectTop(ctx context.Context, symbols []string, maxN int, minScore float64) []string {
	ranked := a.Rank(ctx, symbols)

	selected := make([]string, 0, maxN)
	for _, m := range ranked {
		if m.Score < minScore {
			continue
		}
		selected = append(selected, m.Symbol)
		if len(selected) == maxN {
			break
		}
	}

	if len(selected) == 0 {
		log.Printf("⚠️ volatility selection produced no symbols, falling back to candidate order")
		if len(symbols) > maxN {
			return symbols[:maxN]
		}
		return symbols
	}
	return selected
}
