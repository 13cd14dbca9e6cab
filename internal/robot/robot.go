package robot

import (
	"context"
	"fmt"
	"log"

	"github.com/mtxlabs/mtx-trading-bot/internal/broker"
	"github.com/mtxlabs/mtx-trading-bot/internal/monitoring"
	"github.com/mtxlabs/mtx-trading-bot/internal/notifications"
	"github.com/mtxlabs/mtx-trading-bot/internal/risk"
	"github.com/mtxlabs/mtx-trading-bot/internal/strategy"
	"github.com/mtxlabs/mtx-trading-bot/internal/symbols"
	"github.com/mtxlabs/mtx-trading-bot/pkg/types"
)

// DefaultMagic tags every order this robot submits so close operations only
// touch its own positions.
const DefaultMagic int64 = 20240101

// Options configures a MultiSymbolRobot.
type Options struct {
	// DefaultLotSize is used when risk-based sizing returns 0 (missing
	// market data).
	DefaultLotSize float64

	// StopLossPips is the stop distance assumed for sizing and risk checks.
	// No stop order is actually placed.
	StopLossPips float64

	Notifier notifications.Notifier
}

// MultiSymbolRobot runs one trading cycle across the managed symbol set:
// signal, size, risk check, then reconciliation against the broker's open
// positions. It holds no position state of its own; every decision is made
// against freshly queried broker truth, so cycles are idempotent across
// process restarts.
type MultiSymbolRobot struct {
	name       string
	manager    *symbols.Manager
	trader     broker.Trader
	strategies map[string]strategy.Strategy
	risk       *risk.Manager
	notifier   notifications.Notifier

	defaultLotSize float64
	stopLossPips   float64
	magic          int64
}

// New creates a robot trading each symbol in strategies with its assigned
// strategy.
func New(manager *symbols.Manager, trader broker.Trader, strategies map[string]strategy.Strategy, riskManager *risk.Manager, opts Options) *MultiSymbolRobot {
	if opts.DefaultLotSize <= 0 {
		opts.DefaultLotSize = 0.1
	}
	if opts.StopLossPips <= 0 {
		opts.StopLossPips = 50
	}
	if opts.Notifier == nil {
		opts.Notifier = notifications.NoopNotifier{}
	}

	r := &MultiSymbolRobot{
		name:           "Multi-Symbol Robot",
		manager:        manager,
		trader:         trader,
		strategies:     strategies,
		risk:           riskManager,
		notifier:       opts.Notifier,
		defaultLotSize: opts.DefaultLotSize,
		stopLossPips:   opts.StopLossPips,
		magic:          DefaultMagic,
	}
	log.Printf("🤖 initialized %s with %d symbols", r.name, len(strategies))
	return r
}

// PositionSize computes the lot size for a symbol. A volatilityMultiplier
// of 0 derives the multiplier from the symbol's latest ATR percentage; when
// sizing fails entirely the configured default lot size is used.
func (r *MultiSymbolRobot) PositionSize(ctx context.Context, symbol string, volatilityMultiplier float64) float64 {
	if volatilityMultiplier <= 0 {
		volatilityMultiplier = 1.0
		if metrics, ok := r.manager.Metrics(symbol); ok {
			volatilityMultiplier = r.risk.VolatilityMultiplier(metrics.ATRPercentage, 1.0)
		}
	}

	size := r.risk.CalculatePositionSize(ctx, symbol, r.stopLossPips, 0, volatilityMultiplier)
	if size == 0 {
		size = r.defaultLotSize
		log.Printf("⚠️ using default lot size for %s: %.2f", symbol, size)
	}
	return size
}

// TradeSymbol runs the decision for a single symbol. The returned error is
// informational; the cycle driver logs it and moves on.
func (r *MultiSymbolRobot) TradeSymbol(ctx context.Context, symbol string) error {
	strat, ok := r.strategies[symbol]
	if !ok {
		log.Printf("⚠️ no strategy assigned for %s", symbol)
		return nil
	}

	log.Printf("🔍 checking signals for %s", symbol)
	signalSymbol, sig, err := strat.Signal(ctx)
	if err != nil {
		return fmt.Errorf("signal for %s: %w", symbol, err)
	}
	if signalSymbol != symbol {
		log.Printf("⚠️ strategy returned different symbol: %s vs %s", signalSymbol, symbol)
	}
	monitoring.RecordSignal(symbol, sig.String())

	switch sig {
	case strategy.SignalBuy:
		return r.reconcile(ctx, symbol, types.SideBuy)
	case strategy.SignalSell:
		return r.reconcile(ctx, symbol, types.SideSell)
	default:
		log.Printf("💤 no trading signal for %s", symbol)
		return nil
	}
}

// reconcile brings the open positions for a symbol in line with the desired
// side: open a position on that side when none exists, then close any
// position left on the opposite side. A risk rejection aborts the whole
// action for this symbol, including the opposite-side close.
func (r *MultiSymbolRobot) reconcile(ctx context.Context, symbol string, side types.PositionSide) error {
	same, err := r.trader.OpenPositions(ctx, symbol, side)
	if err != nil {
		return fmt.Errorf("query %s positions for %s: %w", side, symbol, err)
	}

	if len(same) == 0 {
		size := r.PositionSize(ctx, symbol, 0)

		allowed, reason := r.risk.CheckLimits(ctx, symbol, size, r.stopLossPips)
		if !allowed {
			log.Printf("🚫 trade not allowed for %s: %s", symbol, reason)
			monitoring.RecordRiskRejection(symbol)
			r.notify("warning", fmt.Sprintf("Trade on %s rejected: %s", symbol, reason))
			return nil
		}

		log.Printf("📈 %s signal for %s, opening %.4f lots", side, symbol, size)
		result, err := r.trader.OpenPosition(ctx, broker.OpenRequest{
			Symbol:  symbol,
			Side:    side,
			Volume:  size,
			Comment: fmt.Sprintf("%s %s position", r.name, side),
			Magic:   r.magic,
		})
		if err != nil {
			monitoring.RecordOrder(symbol, string(side), "error")
			return fmt.Errorf("open %s for %s: %w", side, symbol, err)
		}
		if result.Success {
			log.Printf("✅ %s position opened for %s: order %s, volume %.4f, price %.5f",
				side, symbol, result.OrderID, result.FilledVolume, result.FilledPrice)
			monitoring.RecordOrder(symbol, string(side), "filled")
			r.notify("trade", fmt.Sprintf("Opened %s %s, %.4f lots @ %.5f",
				side, symbol, result.FilledVolume, result.FilledPrice))
		} else {
			log.Printf("❌ failed to open %s position for %s: %d %s",
				side, symbol, result.RetCode, result.RetMsg)
			monitoring.RecordOrder(symbol, string(side), "rejected")
		}
	} else {
		log.Printf("ℹ️ %s position already exists for %s", side, symbol)
	}

	// A signal flip fully reverses exposure: whatever is still open on the
	// opposite side gets closed.
	opposite := side.Opposite()
	open, err := r.trader.OpenPositions(ctx, symbol, opposite)
	if err != nil {
		return fmt.Errorf("query %s positions for %s: %w", opposite, symbol, err)
	}
	if len(open) > 0 {
		log.Printf("🔁 closing existing %s positions for %s", opposite, symbol)
		if err := r.trader.ClosePositions(ctx, r.name, symbol, opposite); err != nil {
			return fmt.Errorf("close %s for %s: %w", opposite, symbol, err)
		}
		r.notify("trade", fmt.Sprintf("Closed %s positions on %s", opposite, symbol))
	}
	return nil
}

// Trade runs one full cycle over all managed symbols. A failure on one
// symbol is logged and does not stop the others.
func (r *MultiSymbolRobot) Trade(ctx context.Context) {
	log.Println("================================================================================")
	log.Printf("🚀 starting trading cycle for %d symbols", len(r.strategies))

	balance := r.risk.AccountBalance(ctx)
	equity := r.risk.AccountEquity(ctx)
	log.Printf("💰 account balance: $%.2f, equity: $%.2f", balance, equity)

	exposure := r.risk.TotalExposure(ctx)
	log.Printf("📊 current exposure: %d positions, %.2f lots, floating P/L $%.2f",
		exposure.TotalPositions, exposure.TotalVolume, exposure.TotalProfit)
	monitoring.UpdateAccount(balance, exposure.TotalPositions)

	for _, symbol := range r.manager.Active() {
		if err := r.TradeSymbol(ctx, symbol); err != nil {
			log.Printf("❌ error trading %s: %v", symbol, err)
			monitoring.RecordError("trade_symbol")
		}
	}

	monitoring.RecordCycle()
	log.Println("🏁 trading cycle completed")
	log.Println("================================================================================")
}

// Status is a snapshot of the robot and account for logging.
type Status struct {
	Symbols        []string
	TotalPositions int
	TotalVolume    float64
	TotalProfit    float64
	Balance        float64
	Equity         float64
}

// Status reports the current account and exposure snapshot.
func (r *MultiSymbolRobot) Status(ctx context.Context) Status {
	exposure := r.risk.TotalExposure(ctx)
	return Status{
		Symbols:        r.manager.Active(),
		TotalPositions: exposure.TotalPositions,
		TotalVolume:    exposure.TotalVolume,
		TotalProfit:    exposure.TotalProfit,
		Balance:        r.risk.AccountBalance(ctx),
		Equity:         r.risk.AccountEquity(ctx),
	}
}

func (r *MultiSymbolRobot) notify(level, message string) {
	if err := r.notifier.SendAlert(level, message); err != nil {
		log.Printf("⚠️ notification failed: %v", err)
	}
}
