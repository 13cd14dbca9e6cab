package bybit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mtxlabs/mtx-trading-bot/pkg/types"
)

// SymbolInfo returns the trading metadata for a symbol, served from a
// TTL cache to keep per-cycle sizing off the instruments endpoint.
func (b *Broker) SymbolInfo(ctx context.Context, symbol string) (*types.SymbolInfo, error) {
	b.mu.Lock()
	cached, ok := b.instruments[symbol]
	b.mu.Unlock()
	if ok && time.Since(cached.fetchedAt) < instrumentTTL {
		return cached.info, nil
	}

	info, err := b.fetchSymbolInfo(ctx, symbol)
	if err != nil {
		// A stale entry beats no entry when the refresh fails.
		if ok {
			return cached.info, nil
		}
		return nil, err
	}

	b.mu.Lock()
	b.instruments[symbol] = cachedInstrument{info: info, fetchedAt: time.Now()}
	b.mu.Unlock()
	return info, nil
}

func (b *Broker) fetchSymbolInfo(ctx context.Context, symbol string) (*types.SymbolInfo, error) {
	params := map[string]interface{}{
		"category": b.category,
		"symbol":   symbol,
	}

	var instrumentResult struct {
		Category string `json:"category"`
		List     []struct {
			Symbol      string `json:"symbol"`
			Status      string `json:"status"`
			PriceFilter struct {
				MinPrice string `json:"minPrice"`
				MaxPrice string `json:"maxPrice"`
				TickSize string `json:"tickSize"`
			} `json:"priceFilter"`
			LotSizeFilter struct {
				MinOrderQty string `json:"minOrderQty"`
				MaxOrderQty string `json:"maxOrderQty"`
				QtyStep     string `json:"qtyStep"`
			} `json:"lotSizeFilter"`
		} `json:"list"`
	}

	err := b.withRetry(ctx, func() error {
		result, err := b.httpClient.NewUtaBybitServiceWithParams(params).GetInstrumentInfo(ctx)
		if err != nil {
			return err
		}
		return decodeResult(result, &instrumentResult)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get instrument info for %s: %w", symbol, err)
	}

	for _, item := range instrumentResult.List {
		if item.Symbol != symbol {
			continue
		}

		tickSize := parseFloat64(item.PriceFilter.TickSize)
		// Linear contracts are sized in base units, one contract per unit.
		const contractSize = 1.0

		return &types.SymbolInfo{
			Symbol:       item.Symbol,
			TickSize:     tickSize,
			TickValue:    tickSize * contractSize,
			ContractSize: contractSize,
			Digits:       decimalDigits(item.PriceFilter.TickSize),
			VolumeMin:    parseFloat64(item.LotSizeFilter.MinOrderQty),
			VolumeMax:    parseFloat64(item.LotSizeFilter.MaxOrderQty),
			VolumeStep:   parseFloat64(item.LotSizeFilter.QtyStep),
		}, nil
	}

	return nil, fmt.Errorf("instrument %s not found", symbol)
}

// decimalDigits counts the decimal places of a price step like "0.001".
func decimalDigits(step string) int {
	if i := strings.IndexByte(step, '.'); i >= 0 {
		return len(strings.TrimRight(step[i+1:], "0"))
	}
	return 0
}
