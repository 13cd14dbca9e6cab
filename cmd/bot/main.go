package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mtxlabs/mtx-trading-bot/internal/broker"
	"github.com/mtxlabs/mtx-trading-bot/internal/broker/bybit"
	"github.com/mtxlabs/mtx-trading-bot/internal/config"
	"github.com/mtxlabs/mtx-trading-bot/internal/monitoring"
	"github.com/mtxlabs/mtx-trading-bot/internal/notifications"
	"github.com/mtxlabs/mtx-trading-bot/internal/risk"
	"github.com/mtxlabs/mtx-trading-bot/internal/robot"
	"github.com/mtxlabs/mtx-trading-bot/internal/strategy"
	"github.com/mtxlabs/mtx-trading-bot/internal/symbols"
	"github.com/mtxlabs/mtx-trading-bot/internal/volatility"
	"github.com/mtxlabs/mtx-trading-bot/pkg/reporting"
)

func main() {
	var (
		configFile = flag.String("config", "multi-symbol", "Configuration file (e.g., multi-symbol.yaml)")
		envFile    = flag.String("env", ".env", "Environment file path")
	)
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil {
		log.Printf("Warning: could not load %s (%v), using environment variables", *envFile, err)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	fmt.Println("🚀 Multi-Symbol Trading Bot Starting...")

	b := bybit.New(bybit.Config{
		APIKey:    cfg.Exchange.APIKey,
		APISecret: cfg.Exchange.APISecret,
		Testnet:   cfg.Exchange.Testnet,
		Demo:      cfg.Exchange.Demo,
		Category:  cfg.Exchange.Category,
		Interval:  cfg.Volatility.Interval,
	})
	defer b.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The broker connection is the only hard startup dependency. Every
	// later failure is degraded per cycle, never fatal.
	if err := b.Connect(ctx); err != nil {
		log.Fatalf("Failed to connect to exchange: %v", err)
	}
	log.Printf("✅ connected to %s", b.Name())

	health := monitoring.NewHealthChecker(2 * cfg.Trading.CycleInterval.Std())
	health.SetConnected(true)
	if cfg.Monitoring.Enabled {
		go serveMonitoring(cfg.Monitoring.ListenAddr, health)
	}

	// Rank the configured pool by volatility and trade only the top slice.
	analyzer := volatility.NewAnalyzer(b)
	pool := cfg.Symbols.Pool()
	log.Printf("🔍 analyzing volatility for %d candidate symbols", len(pool))
	ranked := analyzer.Rank(ctx, pool)
	selected := analyzer.SelectTop(ctx, pool, cfg.Volatility.MaxSymbols, cfg.Volatility.MinScore)
	reporting.PrintVolatilityRanking(ranked, selected)
	for _, m := range ranked {
		monitoring.UpdateVolatilityScore(m.Symbol, m.Score)
	}

	manager := symbols.NewManager(b, selected)
	manager.RefreshMetrics(ctx, analyzer)

	strategies := make(map[string]strategy.Strategy, len(selected))
	for _, symbol := range selected {
		strat, err := buildStrategy(cfg.Trading, manager.DataSource(symbol))
		if err != nil {
			log.Fatalf("Failed to build strategy for %s: %v", symbol, err)
		}
		strategies[symbol] = strat
	}

	riskManager := risk.NewManager(risk.Limits{
		RiskPerSymbol: cfg.Trading.RiskPerSymbol,
		MaxTotalRisk:  cfg.Trading.MaxTotalRisk,
	}, b, b, b)

	var notifier notifications.Notifier = notifications.NoopNotifier{}
	if cfg.Telegram.Enabled {
		notifier = notifications.NewTelegramNotifier(cfg.Telegram.Token, cfg.Telegram.ChatID)
		log.Println("📱 telegram notifications enabled")
	}

	bot := robot.New(manager, b, strategies, riskManager, robot.Options{
		DefaultLotSize: cfg.Trading.DefaultLotSize,
		StopLossPips:   cfg.Trading.StopLossPips,
		Notifier:       notifier,
	})

	reporting.PrintStartupInfo(b.Name(), environment(cfg), cfg.Trading.Strategy,
		cfg.Volatility.Interval, selected)

	// First cycle runs immediately, then on the configured interval.
	bot.Trade(ctx)
	health.CycleCompleted()

	ticker := time.NewTicker(cfg.Trading.CycleInterval.Std())
	defer ticker.Stop()

	log.Printf("⏰ trading every %s, press Ctrl+C to stop", cfg.Trading.CycleInterval.Std())
	for {
		select {
		case <-ctx.Done():
			log.Println("🛑 shutdown signal received, stopping bot")
			return
		case <-ticker.C:
			manager.RefreshMetrics(ctx, analyzer)
			bot.Trade(ctx)
			health.CycleCompleted()
		}
	}
}

func buildStrategy(trading config.TradingConfig, data broker.DataSource) (strategy.Strategy, error) {
	if trading.Strategy == strategy.KindCombined {
		return strategy.NewCombined(data, trading.Strategies, trading.RequireAll), nil
	}
	return strategy.New(trading.Strategy, data)
}

func environment(cfg *config.Config) string {
	if cfg.Exchange.Demo {
		return "demo"
	}
	if cfg.Exchange.Testnet {
		return "testnet"
	}
	return "mainnet"
}

func serveMonitoring(addr string, health *monitoring.HealthChecker) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", monitoring.MetricsHandler())
	mux.Handle("/health", health)

	log.Printf("📊 metrics and health listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Printf("⚠️ monitoring server stopped: %v", err)
	}
}
