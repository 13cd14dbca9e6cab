package bybit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/mtxlabs/mtx-trading-bot/internal/broker"
	"github.com/mtxlabs/mtx-trading-bot/pkg/types"
)

// OpenPositions lists live positions. An empty symbol queries every USDT
// position in the category; an empty side returns both directions.
//
// Bybit nets positions per symbol in one-way mode, so the broker reports
// at most one position per symbol and direction.
func (b *Broker) OpenPositions(ctx context.Context, symbol string, side types.PositionSide) ([]types.Position, error) {
	params := map[string]interface{}{
		"category": b.category,
	}
	if symbol != "" {
		params["symbol"] = symbol
	} else {
		// The v5 position endpoint requires either a symbol or a
		// settle coin for linear contracts.
		params["settleCoin"] = "USDT"
	}

	var positionResult struct {
		Category string `json:"category"`
		List     []struct {
			Symbol        string `json:"symbol"`
			Side          string `json:"side"`
			Size          string `json:"size"`
			AvgPrice      string `json:"avgPrice"`
			UnrealisedPnl string `json:"unrealisedPnl"`
		} `json:"list"`
	}

	err := b.withRetry(ctx, func() error {
		result, err := b.httpClient.NewUtaBybitServiceWithParams(params).GetPositionList(ctx)
		if err != nil {
			return err
		}
		return decodeResult(result, &positionResult)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get positions: %w", err)
	}

	var positions []types.Position
	for _, item := range positionResult.List {
		size := parseFloat64(item.Size)
		if size <= 0 {
			continue
		}
		posSide := types.PositionSide(item.Side)
		if side != "" && posSide != side {
			continue
		}
		positions = append(positions, types.Position{
			Symbol:     item.Symbol,
			Side:       posSide,
			Volume:     size,
			EntryPrice: parseFloat64(item.AvgPrice),
			Profit:     parseFloat64(item.UnrealisedPnl),
		})
	}

	return positions, nil
}

// OpenPosition submits a market order. API-level rejections come back as
// an unsuccessful OrderResult; transport failures as an error.
func (b *Broker) OpenPosition(ctx context.Context, req broker.OpenRequest) (*types.OrderResult, error) {
	params := map[string]interface{}{
		"category":    b.category,
		"symbol":      req.Symbol,
		"side":        string(req.Side),
		"orderType":   "Market",
		"qty":         formatQty(req.Volume),
		"orderLinkId": orderLinkID(req.Magic, req.Side),
		"positionIdx": 0,
	}
	if req.StopLoss > 0 {
		params["stopLoss"] = strconv.FormatFloat(req.StopLoss, 'f', -1, 64)
	}
	if req.TakeProfit > 0 {
		params["takeProfit"] = strconv.FormatFloat(req.TakeProfit, 'f', -1, 64)
	}

	return b.placeOrder(ctx, params)
}

// ClosePositions flattens the symbol's open positions on the given side
// with reduce-only market orders. Bybit nets positions, so the tag cannot
// narrow the selection further than symbol and side.
func (b *Broker) ClosePositions(ctx context.Context, tag string, symbol string, side types.PositionSide) error {
	positions, err := b.OpenPositions(ctx, symbol, side)
	if err != nil {
		return err
	}

	for _, pos := range positions {
		params := map[string]interface{}{
			"category":    b.category,
			"symbol":      pos.Symbol,
			"side":        string(pos.Side.Opposite()),
			"orderType":   "Market",
			"qty":         formatQty(pos.Volume),
			"reduceOnly":  true,
			"positionIdx": 0,
		}
		result, err := b.placeOrder(ctx, params)
		if err != nil {
			return fmt.Errorf("close %s %s: %w", pos.Side, pos.Symbol, err)
		}
		if !result.Success {
			return fmt.Errorf("close %s %s rejected: %d %s",
				pos.Side, pos.Symbol, result.RetCode, result.RetMsg)
		}
	}

	return nil
}

func (b *Broker) placeOrder(ctx context.Context, params map[string]interface{}) (*types.OrderResult, error) {
	var orderResult struct {
		OrderID     string `json:"orderId"`
		OrderLinkID string `json:"orderLinkId"`
	}

	err := b.withRetry(ctx, func() error {
		result, err := b.httpClient.NewUtaBybitServiceWithParams(params).PlaceOrder(ctx)
		if err != nil {
			return err
		}
		return decodeResult(result, &orderResult)
	})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return &types.OrderResult{
				Success: false,
				RetCode: apiErr.Code,
				RetMsg:  apiErr.Message,
			}, nil
		}
		return nil, err
	}

	qty := parseFloat64(fmt.Sprint(params["qty"]))
	return &types.OrderResult{
		Success:      true,
		OrderID:      orderResult.OrderID,
		FilledVolume: qty,
	}, nil
}

func orderLinkID(magic int64, side types.PositionSide) string {
	return fmt.Sprintf("mtx-%d-%s-%d", magic, side, time.Now().UnixMilli())
}

func formatQty(qty float64) string {
	return strconv.FormatFloat(qty, 'f', -1, 64)
}

var _ broker.Broker = (*Broker)(nil)
