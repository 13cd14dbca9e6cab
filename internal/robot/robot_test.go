package robot

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtxlabs/mtx-trading-bot/internal/broker"
	"github.com/mtxlabs/mtx-trading-bot/internal/risk"
	"github.com/mtxlabs/mtx-trading-bot/internal/strategy"
	"github.com/mtxlabs/mtx-trading-bot/internal/symbols"
	"github.com/mtxlabs/mtx-trading-bot/pkg/types"
)

type fakeAccount struct {
	balance float64
}

func (f *fakeAccount) Balance(context.Context) (float64, error) { return f.balance, nil }
func (f *fakeAccount) Equity(context.Context) (float64, error)  { return f.balance, nil }

type fakeDirectory struct{}

func (fakeDirectory) SymbolInfo(_ context.Context, symbol string) (*types.SymbolInfo, error) {
	return &types.SymbolInfo{
		Symbol:     symbol,
		TickSize:   0.00001,
		TickValue:  1.0,
		Digits:     5,
		VolumeMin:  0.01,
		VolumeMax:  100,
		VolumeStep: 0.01,
	}, nil
}

type fakeMarket struct{}

func (fakeMarket) Bars(context.Context, string) ([]types.OHLCV, error) {
	return nil, errors.New("no data")
}

func (fakeMarket) Tick(context.Context, string) (*types.Ticker, error) {
	return nil, errors.New("no data")
}

// fakeTrader records every order and close so tests can assert on the exact
// broker interactions of a cycle.
type fakeTrader struct {
	positions []types.Position
	opened    []broker.OpenRequest
	closed    []types.PositionSide
}

func (f *fakeTrader) OpenPositions(_ context.Context, symbol string, side types.PositionSide) ([]types.Position, error) {
	var out []types.Position
	for _, p := range f.positions {
		if symbol != "" && p.Symbol != symbol {
			continue
		}
		if side != "" && p.Side != side {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeTrader) OpenPosition(_ context.Context, req broker.OpenRequest) (*types.OrderResult, error) {
	f.opened = append(f.opened, req)
	return &types.OrderResult{Success: true, OrderID: "42", FilledVolume: req.Volume}, nil
}

func (f *fakeTrader) ClosePositions(_ context.Context, _ string, _ string, side types.PositionSide) error {
	f.closed = append(f.closed, side)
	return nil
}

type fixedStrategy struct {
	symbol string
	sig    strategy.Signal
	err    error
}

func (s *fixedStrategy) Name() string { return "fixed" }

func (s *fixedStrategy) Signal(context.Context) (string, strategy.Signal, error) {
	return s.symbol, s.sig, s.err
}

func newTestRobot(trader *fakeTrader, balance float64, sig strategy.Signal) *MultiSymbolRobot {
	manager := symbols.NewManager(fakeMarket{}, []string{"EURUSD"})
	riskManager := risk.NewManager(risk.DefaultLimits(), &fakeAccount{balance: balance}, fakeDirectory{}, trader)
	strategies := map[string]strategy.Strategy{
		"EURUSD": &fixedStrategy{symbol: "EURUSD", sig: sig},
	}
	return New(manager, trader, strategies, riskManager, Options{})
}

func TestTradeSymbol_BuyOpensPosition(t *testing.T) {
	trader := &fakeTrader{}
	r := newTestRobot(trader, 10000, strategy.SignalBuy)

	err := r.TradeSymbol(context.Background(), "EURUSD")
	require.NoError(t, err)

	require.Len(t, trader.opened, 1)
	assert.Equal(t, types.SideBuy, trader.opened[0].Side)
	assert.Equal(t, "EURUSD", trader.opened[0].Symbol)
	assert.Equal(t, DefaultMagic, trader.opened[0].Magic)
	assert.Greater(t, trader.opened[0].Volume, 0.0)
	assert.Empty(t, trader.closed)
}

func TestTradeSymbol_ExistingPositionIsKept(t *testing.T) {
	trader := &fakeTrader{positions: []types.Position{
		{Symbol: "EURUSD", Side: types.SideBuy, Volume: 0.4},
	}}
	r := newTestRobot(trader, 10000, strategy.SignalBuy)

	err := r.TradeSymbol(context.Background(), "EURUSD")
	require.NoError(t, err)

	assert.Empty(t, trader.opened)
	assert.Empty(t, trader.closed)
}

func TestTradeSymbol_SignalFlipReversesExposure(t *testing.T) {
	trader := &fakeTrader{positions: []types.Position{
		{Symbol: "EURUSD", Side: types.SideSell, Volume: 0.4},
	}}
	r := newTestRobot(trader, 10000, strategy.SignalBuy)

	err := r.TradeSymbol(context.Background(), "EURUSD")
	require.NoError(t, err)

	require.Len(t, trader.opened, 1)
	assert.Equal(t, types.SideBuy, trader.opened[0].Side)
	assert.Equal(t, []types.PositionSide{types.SideSell}, trader.closed)
}

func TestTradeSymbol_RiskRejectionAbortsWholeAction(t *testing.T) {
	// zero balance fails the risk check; the stale opposite position must
	// survive too, the rejection aborts the entire action for the symbol
	trader := &fakeTrader{positions: []types.Position{
		{Symbol: "EURUSD", Side: types.SideSell, Volume: 0.4},
	}}
	r := newTestRobot(trader, 0, strategy.SignalBuy)

	err := r.TradeSymbol(context.Background(), "EURUSD")
	require.NoError(t, err)

	assert.Empty(t, trader.opened)
	assert.Empty(t, trader.closed)
}

func TestTradeSymbol_NoneDoesNothing(t *testing.T) {
	trader := &fakeTrader{}
	r := newTestRobot(trader, 10000, strategy.SignalNone)

	err := r.TradeSymbol(context.Background(), "EURUSD")
	require.NoError(t, err)

	assert.Empty(t, trader.opened)
	assert.Empty(t, trader.closed)
}

func TestTradeSymbol_UnmanagedSymbolIsNoop(t *testing.T) {
	trader := &fakeTrader{}
	r := newTestRobot(trader, 10000, strategy.SignalBuy)

	err := r.TradeSymbol(context.Background(), "XAUUSD")
	require.NoError(t, err)
	assert.Empty(t, trader.opened)
}

func TestTradeSymbol_StrategyErrorPropagates(t *testing.T) {
	trader := &fakeTrader{}
	manager := symbols.NewManager(fakeMarket{}, []string{"EURUSD"})
	riskManager := risk.NewManager(risk.DefaultLimits(), &fakeAccount{balance: 10000}, fakeDirectory{}, trader)
	r := New(manager, trader, map[string]strategy.Strategy{
		"EURUSD": &fixedStrategy{symbol: "EURUSD", err: errors.New("feed down")},
	}, riskManager, Options{})

	err := r.TradeSymbol(context.Background(), "EURUSD")
	assert.Error(t, err)
	assert.Empty(t, trader.opened)
}

func TestTrade_CycleCoversAllSymbols(t *testing.T) {
	trader := &fakeTrader{}
	r := newTestRobot(trader, 10000, strategy.SignalBuy)

	r.Trade(context.Background())

	require.Len(t, trader.opened, 1)
	assert.Equal(t, "EURUSD", trader.opened[0].Symbol)
}

func TestStatus_Snapshot(t *testing.T) {
	trader := &fakeTrader{positions: []types.Position{
		{Symbol: "EURUSD", Side: types.SideBuy, Volume: 0.4, Profit: 12},
	}}
	r := newTestRobot(trader, 10000, strategy.SignalNone)

	status := r.Status(context.Background())
	assert.Equal(t, []string{"EURUSD"}, status.Symbols)
	assert.Equal(t, 1, status.TotalPositions)
	assert.InDelta(t, 12.0, status.TotalProfit, 1e-9)
	assert.InDelta(t, 10000.0, status.Balance, 1e-9)
}
