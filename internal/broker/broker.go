package broker

import (
	"context"

	"github.com/mtxlabs/mtx-trading-bot/pkg/types"
)

// MarketData supplies price history and live quotes per symbol.
type MarketData interface {
	// Bars returns the symbol's bar series, oldest first. The series is
	// refetched wholesale on every call.
	Bars(ctx context.Context, symbol string) ([]types.OHLCV, error)

	// Tick returns the latest quote for the symbol.
	Tick(ctx context.Context, symbol string) (*types.Ticker, error)
}

// Account exposes account-level balance and equity.
type Account interface {
	Balance(ctx context.Context) (float64, error)
	Equity(ctx context.Context) (float64, error)
}

// SymbolDirectory resolves broker metadata for a symbol.
type SymbolDirectory interface {
	SymbolInfo(ctx context.Context, symbol string) (*types.SymbolInfo, error)
}

// OpenRequest describes a position to open. StopLoss and TakeProfit of zero
// mean none is placed.
type OpenRequest struct {
	Symbol     string
	Side       types.PositionSide
	Volume     float64
	Comment    string
	Magic      int64
	StopLoss   float64
	TakeProfit float64
}

// Trader executes and inspects positions. Open positions are always queried
// live; callers must not cache them across cycles.
type Trader interface {
	// OpenPositions lists open positions, optionally narrowed by symbol
	// (empty string means all) and side (empty means both).
	OpenPositions(ctx context.Context, symbol string, side types.PositionSide) ([]types.Position, error)

	// OpenPosition submits a market order for the request.
	OpenPosition(ctx context.Context, req OpenRequest) (*types.OrderResult, error)

	// ClosePositions closes all open positions for the symbol on the given
	// side that carry the strategy tag.
	ClosePositions(ctx context.Context, tag string, symbol string, side types.PositionSide) error
}

// Broker is the full set of capabilities the trading core consumes. Connect
// must be called once at startup; a failure there is fatal, every later
// degradation is handled per call site.
type Broker interface {
	MarketData
	Account
	SymbolDirectory
	Trader

	Name() string
	Connect(ctx context.Context) error
	Close() error
}

// DataSource is a fixed-symbol view over MarketData, the unit a strategy
// consumes.
type DataSource interface {
	Symbol() string
	Bars(ctx context.Context) ([]types.OHLCV, error)
}

// NewDataSource binds a symbol to a MarketData provider.
func NewDataSource(md MarketData, symbol string) DataSource {
	return &dataSource{md: md, symbol: symbol}
}

type dataSource struct {
	md     MarketData
	symbol string
}

func (d *dataSource) Symbol() string { return d.symbol }

func (d *dataSource) Bars(ctx context.Context) ([]types.OHLCV, error) {
	return d.md.Bars(ctx, d.symbol)
}
