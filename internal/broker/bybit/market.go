package bybit

import (
	"context"
	"fmt"
	"time"

	"github.com/mtxlabs/mtx-trading-bot/pkg/types"
)

// Bars fetches the symbol's kline series. Bybit returns klines newest
// first; the series is reversed so callers always see oldest first.
func (b *Broker) Bars(ctx context.Context, symbol string) ([]types.OHLCV, error) {
	params := map[string]interface{}{
		"category": b.category,
		"symbol":   symbol,
		"interval": b.interval,
		"limit":    b.klineLimit,
	}

	var klineResult struct {
		Symbol   string     `json:"symbol"`
		Category string     `json:"category"`
		List     [][]string `json:"list"`
	}

	err := b.withRetry(ctx, func() error {
		result, err := b.httpClient.NewUtaBybitServiceWithParams(params).GetMarketKline(ctx)
		if err != nil {
			return err
		}
		return decodeResult(result, &klineResult)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get klines for %s: %w", symbol, err)
	}

	bars := make([]types.OHLCV, 0, len(klineResult.List))
	// Bybit kline format: [startTime, open, high, low, close, volume, turnover]
	for i := len(klineResult.List) - 1; i >= 0; i-- {
		item := klineResult.List[i]
		if len(item) < 6 {
			continue
		}
		bars = append(bars, types.OHLCV{
			Timestamp: time.UnixMilli(parseInt64(item[0])),
			Open:      parseFloat64(item[1]),
			High:      parseFloat64(item[2]),
			Low:       parseFloat64(item[3]),
			Close:     parseFloat64(item[4]),
			Volume:    parseFloat64(item[5]),
		})
	}

	return bars, nil
}

// Tick returns the latest quote for the symbol.
func (b *Broker) Tick(ctx context.Context, symbol string) (*types.Ticker, error) {
	params := map[string]interface{}{
		"category": b.category,
		"symbol":   symbol,
	}

	var tickerResult struct {
		Category string `json:"category"`
		List     []struct {
			Symbol    string `json:"symbol"`
			Bid1Price string `json:"bid1Price"`
			Ask1Price string `json:"ask1Price"`
			LastPrice string `json:"lastPrice"`
		} `json:"list"`
	}

	err := b.withRetry(ctx, func() error {
		result, err := b.httpClient.NewUtaBybitServiceWithParams(params).GetMarketTickers(ctx)
		if err != nil {
			return err
		}
		return decodeResult(result, &tickerResult)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get ticker for %s: %w", symbol, err)
	}

	if len(tickerResult.List) == 0 {
		return nil, fmt.Errorf("no ticker data for %s", symbol)
	}

	t := tickerResult.List[0]
	return &types.Ticker{
		Symbol:    t.Symbol,
		Bid:       parseFloat64(t.Bid1Price),
		Ask:       parseFloat64(t.Ask1Price),
		LastPrice: parseFloat64(t.LastPrice),
		Timestamp: time.Now(),
	}, nil
}
