package risk

import (
	"context"
	"fmt"
	"log"
	"math"

	"github.com/mtxlabs/mtx-trading-bot/internal/broker"
	"github.com/mtxlabs/mtx-trading-bot/pkg/types"
)

// Limits is the process-wide risk configuration, immutable for the process
// lifetime.
type Limits struct {
	// RiskPerSymbol is the maximum risk per symbol as a fraction of the
	// account balance.
	RiskPerSymbol float64

	// MaxTotalRisk is the maximum aggregate risk across all open positions
	// as a fraction of the account balance.
	MaxTotalRisk float64
}

// DefaultLimits mirrors the conventional 2% per symbol / 5% total split.
func DefaultLimits() Limits {
	return Limits{RiskPerSymbol: 0.02, MaxTotalRisk: 0.05}
}

// SymbolExposure is the open exposure of a single symbol.
type SymbolExposure struct {
	Positions int
	Volume    float64
	Profit    float64
}

// Exposure summarizes all open positions at the broker at query time. It is
// derived fresh for every check; nothing here is cached across cycles.
type Exposure struct {
	TotalPositions int
	TotalVolume    float64
	TotalProfit    float64
	Symbols        map[string]SymbolExposure
}

// Manager converts desired trades into broker-legal sizes and gates them
// against per-symbol and aggregate risk ceilings using live account state.
type Manager struct {
	limits  Limits
	account broker.Account
	symbols broker.SymbolDirectory
	trader  broker.Trader
}

// NewManager creates a risk manager over the given broker capabilities.
func NewManager(limits Limits, account broker.Account, symbols broker.SymbolDirectory, trader broker.Trader) *Manager {
	return &Manager{limits: limits, account: account, symbols: symbols, trader: trader}
}

// Limits returns the configured risk limits.
func (m *Manager) Limits() Limits { return m.limits }

// AccountBalance returns the current balance, degrading to 0 on failure so
// that a broken account feed blocks trading instead of crashing the cycle.
func (m *Manager) AccountBalance(ctx context.Context) float64 {
	balance, err := m.account.Balance(ctx)
	if err != nil {
		log.Printf("❌ failed to get account balance: %v", err)
		return 0
	}
	return balance
}

// AccountEquity returns balance plus floating P/L, degrading to 0 on failure.
func (m *Manager) AccountEquity(ctx context.Context) float64 {
	equity, err := m.account.Equity(ctx)
	if err != nil {
		log.Printf("❌ failed to get account equity: %v", err)
		return 0
	}
	return equity
}

// CalculatePositionSize sizes a position so that a stop-loss hit loses at
// most the risk amount. A riskAmount of 0 derives it from the per-symbol
// limit and live balance; volatilityMultiplier divides the risk, so a higher
// multiplier yields a smaller size. Returns 0 when market data needed for
// sizing is unavailable; callers must treat 0 as "use the configured
// fallback size", never as a valid trade.
func (m *Manager) CalculatePositionSize(ctx context.Context, symbol string, stopLossPips, riskAmount, volatilityMultiplier float64) float64 {
	info, err := m.symbols.SymbolInfo(ctx, symbol)
	if err != nil {
		log.Printf("❌ symbol %s not available: %v", symbol, err)
		return 0
	}
	if info.TickSize <= 0 || info.TickValue <= 0 || info.VolumeStep <= 0 {
		log.Printf("❌ incomplete metadata for %s", symbol)
		return 0
	}

	if riskAmount <= 0 {
		riskAmount = m.AccountBalance(ctx) * m.limits.RiskPerSymbol
	}
	if volatilityMultiplier <= 0 {
		volatilityMultiplier = 1.0
	}
	adjustedRisk := riskAmount / volatilityMultiplier

	priceDiff := pipPriceDiff(info, stopLossPips)
	if priceDiff == 0 {
		log.Printf("⚠️ invalid stop loss for %s: %.1f pips", symbol, stopLossPips)
		return 0
	}

	// riskAmount = (priceDiff / tickSize) * tickValue * lots
	size := adjustedRisk / (priceDiff * info.TickValue / info.TickSize)

	size = math.Round(size/info.VolumeStep) * info.VolumeStep
	size = math.Max(info.VolumeMin, math.Min(size, info.VolumeMax))

	log.Printf("📏 %s position size: %.4f lots (risk $%.2f, SL %.1f pips, vol mult %.2f)",
		symbol, size, adjustedRisk, stopLossPips, volatilityMultiplier)
	return size
}

// VolatilityMultiplier maps an observed ATR percentage to a sizing
// multiplier: quiet symbols size up (to 2x), volatile ones size down (to
// 0.5x). baseATR of 0 normalizes against 1%.
func (m *Manager) VolatilityMultiplier(atrPercentage, baseATR float64) float64 {
	if baseATR == 0 {
		baseATR = 1.0
	}
	multiplier := baseATR / math.Max(atrPercentage, 0.1)
	return math.Max(0.5, math.Min(2.0, multiplier))
}

// TotalExposure aggregates the broker's currently open positions, optionally
// narrowed to the given symbols. Failures degrade to an empty exposure.
func (m *Manager) TotalExposure(ctx context.Context, symbols ...string) Exposure {
	exposure := Exposure{Symbols: map[string]SymbolExposure{}}

	positions, err := m.trader.OpenPositions(ctx, "", "")
	if err != nil {
		log.Printf("❌ failed to get open positions: %v", err)
		return exposure
	}

	var filter map[string]bool
	if len(symbols) > 0 {
		filter = make(map[string]bool, len(symbols))
		for _, s := range symbols {
			filter[s] = true
		}
	}

	for _, p := range positions {
		if filter != nil && !filter[p.Symbol] {
			continue
		}
		exposure.TotalPositions++
		exposure.TotalVolume += p.Volume
		exposure.TotalProfit += p.Profit

		se := exposure.Symbols[p.Symbol]
		se.Positions++
		se.Volume += p.Volume
		se.Profit += p.Profit
		exposure.Symbols[p.Symbol] = se
	}
	return exposure
}

// CheckLimits decides whether a proposed position fits inside both risk
// ceilings. The aggregate check uses |total floating P/L| / balance as the
// current-risk numerator; that is an approximation of committed exposure
// (it understates risk while positions are profitable) kept for
// compatibility with the sizing model.
func (m *Manager) CheckLimits(ctx context.Context, symbol string, proposedVolume, stopLossPips float64) (bool, string) {
	balance := m.AccountBalance(ctx)
	if balance == 0 {
		return false, "Account balance is zero"
	}

	info, err := m.symbols.SymbolInfo(ctx, symbol)
	if err != nil {
		return false, fmt.Sprintf("Symbol %s not found", symbol)
	}
	if info.TickSize <= 0 {
		return false, fmt.Sprintf("Incomplete metadata for %s", symbol)
	}

	priceDiff := pipPriceDiff(info, stopLossPips)
	positionRisk := math.Abs(priceDiff * info.TickValue * proposedVolume / info.TickSize)
	positionRiskPercent := positionRisk / balance * 100

	if positionRiskPercent > m.limits.RiskPerSymbol*100 {
		return false, fmt.Sprintf("Position risk (%.2f%%) exceeds per-symbol limit (%.2f%%)",
			positionRiskPercent, m.limits.RiskPerSymbol*100)
	}

	exposure := m.TotalExposure(ctx)
	currentTotalRisk := math.Abs(exposure.TotalProfit) / balance * 100
	newTotalRisk := currentTotalRisk + positionRiskPercent

	if newTotalRisk > m.limits.MaxTotalRisk*100 {
		return false, fmt.Sprintf("Total risk (%.2f%%) would exceed maximum limit (%.2f%%)",
			newTotalRisk, m.limits.MaxTotalRisk*100)
	}

	return true, fmt.Sprintf("Risk check passed (position risk: %.2f%%, total risk: %.2f%%)",
		positionRiskPercent, newTotalRisk)
}

// pipPriceDiff converts a stop loss in pips to a price distance. On 3- and
// 5-digit symbols one pip is ten ticks; elsewhere a pip is one tick.
func pipPriceDiff(info *types.SymbolInfo, pips float64) float64 {
	if info.Digits == 3 || info.Digits == 5 {
		return pips * info.TickSize * 10
	}
	return pips * info.TickSize
}
