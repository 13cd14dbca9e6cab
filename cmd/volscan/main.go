package main

import (
	"context"
	"flag"
	"log"

	"github.com/joho/godotenv"

	"github.com/mtxlabs/mtx-trading-bot/internal/broker/bybit"
	"github.com/mtxlabs/mtx-trading-bot/internal/config"
	"github.com/mtxlabs/mtx-trading-bot/internal/volatility"
	"github.com/mtxlabs/mtx-trading-bot/pkg/reporting"
)

// volscan ranks the configured symbol pool by volatility score and prints
// the result, optionally exporting it to an Excel workbook. Useful for
// tuning min_score and max_symbols before letting the bot trade.
func main() {
	var (
		configFile = flag.String("config", "multi-symbol", "Configuration file (e.g., multi-symbol.yaml)")
		envFile    = flag.String("env", ".env", "Environment file path")
		xlsxPath   = flag.String("xlsx", "", "Write the ranking to this Excel file (optional)")
	)
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil {
		log.Printf("Warning: could not load %s (%v), using environment variables", *envFile, err)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	b := bybit.New(bybit.Config{
		APIKey:    cfg.Exchange.APIKey,
		APISecret: cfg.Exchange.APISecret,
		Testnet:   cfg.Exchange.Testnet,
		Demo:      cfg.Exchange.Demo,
		Category:  cfg.Exchange.Category,
		Interval:  cfg.Volatility.Interval,
	})
	defer b.Close()

	ctx := context.Background()
	if err := b.Connect(ctx); err != nil {
		log.Fatalf("Failed to connect to exchange: %v", err)
	}

	pool := cfg.Symbols.Pool()
	log.Printf("🔍 scanning %d symbols on %s", len(pool), b.Name())

	analyzer := volatility.NewAnalyzer(b)
	ranked := analyzer.Rank(ctx, pool)
	selected := analyzer.SelectTop(ctx, pool, cfg.Volatility.MaxSymbols, cfg.Volatility.MinScore)

	reporting.PrintVolatilityRanking(ranked, selected)

	if *xlsxPath != "" {
		if err := reporting.WriteVolatilityXLSX(ranked, selected, *xlsxPath); err != nil {
			log.Fatalf("Failed to write Excel report: %v", err)
		}
		log.Printf("💾 ranking written to %s", *xlsxPath)
	}
}
