package risk

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mtxlabs/mtx-trading-bot/internal/broker"
	"github.com/mtxlabs/mtx-trading-bot/pkg/types"
)

type fakeAccount struct {
	balance float64
	equity  float64
	err     error
}

func (f *fakeAccount) Balance(context.Context) (float64, error) { return f.balance, f.err }
func (f *fakeAccount) Equity(context.Context) (float64, error)  { return f.equity, f.err }

type fakeDirectory struct {
	infos map[string]*types.SymbolInfo
}

func (f *fakeDirectory) SymbolInfo(_ context.Context, symbol string) (*types.SymbolInfo, error) {
	info, ok := f.infos[symbol]
	if !ok {
		return nil, errors.New("symbol not found")
	}
	return info, nil
}

type fakeTrader struct {
	positions []types.Position
	err       error
}

func (f *fakeTrader) OpenPositions(_ context.Context, symbol string, side types.PositionSide) ([]types.Position, error) {
	if f.err != nil {
		return nil, f.err
	}
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

func (f *fakeTrader) OpenPosition(context.Context, broker.OpenRequest) (*types.OrderResult, error) {
	return &types.OrderResult{Success: true}, nil
}

func (f *fakeTrader) ClosePositions(context.Context, string, string, types.PositionSide) error {
	return nil
}

func eurusdInfo() *types.SymbolInfo {
	return &types.SymbolInfo{
		Symbol:     "EURUSD",
		TickSize:   0.00001,
		TickValue:  1.0,
		Digits:     5,
		VolumeMin:  0.01,
		VolumeMax:  100,
		VolumeStep: 0.01,
	}
}

func newTestManager(balance float64, positions []types.Position) *Manager {
	return NewManager(
		DefaultLimits(),
		&fakeAccount{balance: balance, equity: balance},
		&fakeDirectory{infos: map[string]*types.SymbolInfo{"EURUSD": eurusdInfo()}},
		&fakeTrader{positions: positions},
	)
}

func TestCalculatePositionSize_RiskBased(t *testing.T) {
	m := newTestManager(10000, nil)

	// risk 2% of 10000 = $200; 50 pips on a 5-digit symbol is a 0.005
	// price move, worth $500 per lot
	size := m.CalculatePositionSize(context.Background(), "EURUSD", 50, 0, 1.0)
	assert.InDelta(t, 0.4, size, 1e-9)
}

func TestCalculatePositionSize_VolatilityMultiplierShrinks(t *testing.T) {
	m := newTestManager(10000, nil)

	full := m.CalculatePositionSize(context.Background(), "EURUSD", 50, 0, 1.0)
	halved := m.CalculatePositionSize(context.Background(), "EURUSD", 50, 0, 2.0)
	assert.InDelta(t, full/2, halved, 1e-9)
}

func TestCalculatePositionSize_RoundsToStepAndClamps(t *testing.T) {
	m := newTestManager(10000, nil)

	// explicit $3 risk: raw size 0.006 rounds to 0.01 (the step and min)
	size := m.CalculatePositionSize(context.Background(), "EURUSD", 50, 3, 1.0)
	assert.InDelta(t, 0.01, size, 1e-9)

	// absurd risk clamps to the symbol maximum
	size = m.CalculatePositionSize(context.Background(), "EURUSD", 50, 1e9, 1.0)
	assert.InDelta(t, 100.0, size, 1e-9)
}

func TestCalculatePositionSize_UnknownSymbolIsZero(t *testing.T) {
	m := newTestManager(10000, nil)

	size := m.CalculatePositionSize(context.Background(), "XAUUSD", 50, 0, 1.0)
	assert.Equal(t, 0.0, size)
}

func TestCalculatePositionSize_ZeroStopIsZero(t *testing.T) {
	m := newTestManager(10000, nil)

	size := m.CalculatePositionSize(context.Background(), "EURUSD", 0, 0, 1.0)
	assert.Equal(t, 0.0, size)
}

func TestVolatilityMultiplier_Clamps(t *testing.T) {
	m := newTestManager(10000, nil)

	// quiet symbol sizes up, capped at 2x
	assert.Equal(t, 2.0, m.VolatilityMultiplier(0.3, 1.0))
	// volatile symbol sizes down, floored at 0.5x
	assert.Equal(t, 0.5, m.VolatilityMultiplier(4.0, 1.0))
	// at the base ATR the multiplier is neutral
	assert.InDelta(t, 1.0, m.VolatilityMultiplier(1.0, 1.0), 1e-9)
}

func TestCheckLimits_ZeroBalanceRejects(t *testing.T) {
	m := newTestManager(0, nil)

	allowed, reason := m.CheckLimits(context.Background(), "EURUSD", 0.1, 50)
	assert.False(t, allowed)
	assert.Equal(t, "Account balance is zero", reason)
}

func TestCheckLimits_PerSymbolCeiling(t *testing.T) {
	m := newTestManager(10000, nil)

	// 1 lot risks $500 = 5% of balance, above the 2% ceiling
	allowed, reason := m.CheckLimits(context.Background(), "EURUSD", 1.0, 50)
	assert.False(t, allowed)
	assert.Contains(t, reason, "per-symbol limit")
}

func TestCheckLimits_AggregateCeiling(t *testing.T) {
	// floating loss of $400 is 4% of balance; adding a 2% position breaches
	// the 5% aggregate cap
	m := newTestManager(10000, []types.Position{
		{Symbol: "GBPUSD", Side: types.SideBuy, Volume: 1, Profit: -400},
	})

	allowed, reason := m.CheckLimits(context.Background(), "EURUSD", 0.4, 50)
	assert.False(t, allowed)
	assert.Contains(t, reason, "maximum limit")
}

func TestCheckLimits_Passes(t *testing.T) {
	m := newTestManager(10000, nil)

	allowed, reason := m.CheckLimits(context.Background(), "EURUSD", 0.2, 50)
	assert.True(t, allowed)
	assert.Contains(t, reason, "Risk check passed")
}

func TestTotalExposure_AggregatesAndFilters(t *testing.T) {
	m := newTestManager(10000, []types.Position{
		{Symbol: "EURUSD", Side: types.SideBuy, Volume: 0.5, Profit: 10},
		{Symbol: "EURUSD", Side: types.SideSell, Volume: 0.2, Profit: -5},
		{Symbol: "GBPUSD", Side: types.SideBuy, Volume: 1.0, Profit: 20},
	})

	all := m.TotalExposure(context.Background())
	assert.Equal(t, 3, all.TotalPositions)
	assert.InDelta(t, 1.7, all.TotalVolume, 1e-9)
	assert.InDelta(t, 25.0, all.TotalProfit, 1e-9)

	one := m.TotalExposure(context.Background(), "EURUSD")
	assert.Equal(t, 2, one.TotalPositions)
	assert.InDelta(t, 0.7, one.TotalVolume, 1e-9)
}
