package strategy

import (
	"context"
	"log"

	"github.com/mtxlabs/mtx-trading-bot/internal/broker"
)

// Combined fuses the signals of several constituent strategies over the same
// data source. A constituent that fails is skipped, so one broken strategy
// cannot silence the others.
type Combined struct {
	data       broker.DataSource
	strategies []Strategy
	requireAll bool
}

// NewCombined builds a combined strategy from the named constituents
// (crossover, smc, trend_breakout); nil means all three. With requireAll the
// non-skipped constituents must be unanimous, otherwise a majority of
// ceil((n+1)/2) decides.
func NewCombined(data broker.DataSource, kinds []string, requireAll bool) *Combined {
	if kinds == nil {
		kinds = []string{KindCrossover, KindSMC, KindTrendBreakout}
	}

	c := &Combined{data: data, requireAll: requireAll}
	for _, kind := range kinds {
		switch kind {
		case KindCrossover:
			c.strategies = append(c.strategies, NewCrossover(data))
		case KindSMC:
			c.strategies = append(c.strategies, NewSMC(data))
		case KindTrendBreakout:
			c.strategies = append(c.strategies, NewTrendBreakout(data))
		}
	}
	return c
}

func (c *Combined) Name() string { return "combined" }

func (c *Combined) Signal(ctx context.Context) (string, Signal, error) {
	symbol := c.data.Symbol()

	if len(c.strategies) == 0 {
		return symbol, SignalNone, nil
	}

	signals := make([]Signal, 0, len(c.strategies))
	for _, s := range c.strategies {
		_, sig, err := s.Signal(ctx)
		if err != nil {
			log.Printf("⚠️ %s strategy failed for %s, skipping: %v", s.Name(), symbol, err)
			continue
		}
		signals = append(signals, sig)
	}
	if len(signals) == 0 {
		return symbol, SignalNone, nil
	}

	var buyCount, sellCount int
	for _, sig := range signals {
		switch sig {
		case SignalBuy:
			buyCount++
		case SignalSell:
			sellCount++
		}
	}

	if c.requireAll {
		switch {
		case buyCount == len(signals):
			return symbol, SignalBuy, nil
		case sellCount == len(signals):
			return symbol, SignalSell, nil
		default:
			return symbol, SignalNone, nil
		}
	}

	// ceil((n+1)/2): strictly more than half of the usable constituents.
	threshold := (len(signals) + 2) / 2
	switch {
	case buyCount >= threshold:
		return symbol, SignalBuy, nil
	case sellCount >= threshold:
		return symbol, SignalSell, nil
	default:
		return symbol, SignalNone, nil
	}
}
