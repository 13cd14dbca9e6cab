package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	bybit_api "github.com/bybit-exchange/bybit.go.api"

	"github.com/mtxlabs/mtx-trading-bot/pkg/types"
)

// Config holds the connection settings for the Bybit broker.
type Config struct {
	APIKey    string
	APISecret string
	Testnet   bool
	Demo      bool // demo trading environment (paper trading)

	// Category is the product category every request targets. Defaults to
	// "linear" (USDT perpetuals).
	Category string

	// Interval is the kline interval in Bybit notation ("1", "5", "60",
	// "D", ...). Defaults to "60".
	Interval string

	// KlineLimit is the number of bars fetched per Bars call. Defaults to
	// 200, capped at Bybit's per-request maximum of 1000.
	KlineLimit int
}

// Broker is a Bybit v5 implementation of the trading broker interface set.
// All state it holds is connection config and a metadata cache; positions
// and balances are always queried live.
type Broker struct {
	httpClient *bybit_api.Client
	category   string
	interval   string
	klineLimit int
	demo       bool
	testnet    bool

	mu          sync.Mutex
	instruments map[string]cachedInstrument
}

type cachedInstrument struct {
	info      *types.SymbolInfo
	fetchedAt time.Time
}

// instrumentTTL bounds how long symbol metadata is served from cache.
// Tick size and lot filters change rarely but not never.
const instrumentTTL = time.Hour

// New creates a Bybit broker from the given config.
func New(config Config) *Broker {
	var baseURL string
	if config.Demo {
		baseURL = "https://api-demo.bybit.com"
	} else if config.Testnet {
		baseURL = bybit_api.TESTNET
	} else {
		baseURL = bybit_api.MAINNET
	}

	if config.Category == "" {
		config.Category = "linear"
	}
	if config.Interval == "" {
		config.Interval = "60"
	}
	if config.KlineLimit <= 0 {
		config.KlineLimit = 200
	}
	if config.KlineLimit > 1000 {
		config.KlineLimit = 1000
	}

	httpClient := bybit_api.NewBybitHttpClient(
		config.APIKey,
		config.APISecret,
		bybit_api.WithBaseURL(baseURL),
	)

	return &Broker{
		httpClient:  httpClient,
		category:    config.Category,
		interval:    config.Interval,
		klineLimit:  config.KlineLimit,
		demo:        config.Demo,
		testnet:     config.Testnet,
		instruments: make(map[string]cachedInstrument),
	}
}

// Name returns the broker identifier including the environment.
func (b *Broker) Name() string {
	return "bybit-" + b.environment()
}

func (b *Broker) environment() string {
	if b.demo {
		return "demo"
	}
	if b.testnet {
		return "testnet"
	}
	return "mainnet"
}

// Connect verifies connectivity and credentials with a wallet query. A
// failure here is fatal to the caller; nothing else is initialized lazily.
func (b *Broker) Connect(ctx context.Context) error {
	if _, _, err := b.walletTotals(ctx); err != nil {
		return fmt.Errorf("connect to bybit %s: %w", b.environment(), err)
	}
	return nil
}

// Close releases the broker. The REST client holds no persistent
// connections, so this only exists to satisfy the interface.
func (b *Broker) Close() error {
	return nil
}

// decodeResult checks the API envelope and unmarshals its result payload.
func decodeResult(response interface{}, v interface{}) error {
	serverResp, ok := response.(*bybit_api.ServerResponse)
	if !ok {
		return fmt.Errorf("invalid response type %T", response)
	}

	if serverResp.RetCode != 0 {
		return &APIError{Code: serverResp.RetCode, Message: serverResp.RetMsg}
	}

	resultBytes, err := json.Marshal(serverResp.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	if err := json.Unmarshal(resultBytes, v); err != nil {
		return fmt.Errorf("failed to unmarshal result: %w", err)
	}
	return nil
}

func parseFloat64(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func parseInt64(s string) int64 {
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return i
}
