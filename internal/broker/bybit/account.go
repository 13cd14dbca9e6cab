package bybit

import (
	"context"
	"fmt"
)

// Balance returns the unified account wallet balance in USD.
func (b *Broker) Balance(ctx context.Context) (float64, error) {
	balance, _, err := b.walletTotals(ctx)
	return balance, err
}

// Equity returns the unified account equity in USD, floating P/L included.
func (b *Broker) Equity(ctx context.Context) (float64, error) {
	_, equity, err := b.walletTotals(ctx)
	return equity, err
}

func (b *Broker) walletTotals(ctx context.Context) (balance, equity float64, err error) {
	params := map[string]interface{}{
		"accountType": "UNIFIED",
	}

	var walletResult struct {
		List []struct {
			AccountType        string `json:"accountType"`
			TotalEquity        string `json:"totalEquity"`
			TotalWalletBalance string `json:"totalWalletBalance"`
			TotalPerpUPL       string `json:"totalPerpUPL"`
		} `json:"list"`
	}

	err = b.withRetry(ctx, func() error {
		result, err := b.httpClient.NewUtaBybitServiceWithParams(params).GetAccountWallet(ctx)
		if err != nil {
			return err
		}
		return decodeResult(result, &walletResult)
	})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get wallet balance: %w", err)
	}

	if len(walletResult.List) == 0 {
		return 0, 0, fmt.Errorf("no account data found")
	}

	account := walletResult.List[0]
	return parseFloat64(account.TotalWalletBalance), parseFloat64(account.TotalEquity), nil
}
