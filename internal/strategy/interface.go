package strategy

import (
	"context"
	"fmt"

	"github.com/mtxlabs/mtx-trading-bot/internal/broker"
)

// Strategy maps a symbol's current bar series to a directional signal.
// Implementations must degrade to SignalNone when history is too short
// rather than returning an error; errors are reserved for failures to
// obtain data at all.
type Strategy interface {
	// Signal evaluates the strategy and returns the symbol it evaluated
	// together with the signal.
	Signal(ctx context.Context) (string, Signal, error)

	// Name returns the strategy's identifier.
	Name() string
}

// Kind names for the factory. KindCombined fuses the other three.
const (
	KindCrossover     = "crossover"
	KindSMC           = "smc"
	KindTrendBreakout = "trend_breakout"
	KindCombined      = "combined"
)

// New builds a strategy of the given kind over the data source, with each
// strategy's default parameters.
func New(kind string, data broker.DataSource) (Strategy, error) {
	switch kind {
	case KindCrossover:
		return NewCrossover(data), nil
	case KindSMC:
		return NewSMC(data), nil
	case KindTrendBreakout:
		return NewTrendBreakout(data), nil
	case KindCombined:
		return NewCombined(data, nil, false), nil
	default:
		return nil, fmt.Errorf("unknown strategy kind %q", kind)
	}
}
