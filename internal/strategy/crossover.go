package strategy

import (
	"context"

	"github.com/mtxlabs/mtx-trading-bot/internal/broker"
	"github.com/mtxlabs/mtx-trading-bot/internal/indicators"
)

// Crossover signals on the bar where the fast simple moving average crosses
// the slow one: a cross above is BUY, a cross below is SELL, anything else
// is NONE.
type Crossover struct {
	data       broker.DataSource
	fastPeriod int
	slowPeriod int
}

// NewCrossover creates a crossover strategy with the default 9/21 windows.
func NewCrossover(data broker.DataSource) *Crossover {
	return &Crossover{
		data:       data,
		fastPeriod: 9,
		slowPeriod: 21,
	}
}

func (c *Crossover) Name() string { return "crossover" }

func (c *Crossover) Signal(ctx context.Context) (string, Signal, error) {
	symbol := c.data.Symbol()

	bars, err := c.data.Bars(ctx)
	if err != nil {
		return symbol, SignalNone, err
	}

	// Need the slow average on the previous bar too.
	if len(bars) < c.slowPeriod+1 {
		return symbol, SignalNone, nil
	}

	last := len(bars) - 1
	fastNow, err := indicators.SMAAt(bars, c.fastPeriod, last)
	if err != nil {
		return symbol, SignalNone, nil
	}
	slowNow, err := indicators.SMAAt(bars, c.slowPeriod, last)
	if err != nil {
		return symbol, SignalNone, nil
	}
	fastPrev, err := indicators.SMAAt(bars, c.fastPeriod, last-1)
	if err != nil {
		return symbol, SignalNone, nil
	}
	slowPrev, err := indicators.SMAAt(bars, c.slowPeriod, last-1)
	if err != nil {
		return symbol, SignalNone, nil
	}

	switch {
	case fastNow > slowNow && fastPrev <= slowPrev:
		return symbol, SignalBuy, nil
	case fastNow < slowNow && fastPrev >= slowPrev:
		return symbol, SignalSell, nil
	default:
		return symbol, SignalNone, nil
	}
}
