package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
exchange:
  demo: true

symbols:
  categories:
    majors:
      - BTCUSDT
      - ETHUSDT
    alts:
      - SOLUSDT
      - BTCUSDT

volatility:
  min_score: 1.5
  max_symbols: 3

trading:
  strategy: smc
  risk_per_symbol: 0.01
  cycle_interval: 30m
`

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func setTestCredentials(t *testing.T) {
	t.Helper()
	t.Setenv("BYBIT_API_KEY", "key")
	t.Setenv("BYBIT_API_SECRET", "secret")
}

func TestLoad_AppliesDefaultsAndOverrides(t *testing.T) {
	setTestCredentials(t)

	cfg, err := Load(writeTestConfig(t, testYAML))
	require.NoError(t, err)

	// explicit values survive
	assert.True(t, cfg.Exchange.Demo)
	assert.Equal(t, "smc", cfg.Trading.Strategy)
	assert.Equal(t, 0.01, cfg.Trading.RiskPerSymbol)
	assert.Equal(t, 1.5, cfg.Volatility.MinScore)
	assert.Equal(t, 3, cfg.Volatility.MaxSymbols)
	assert.Equal(t, 30*time.Minute, cfg.Trading.CycleInterval.Std())

	// defaults fill the gaps
	assert.Equal(t, "bybit", cfg.Exchange.Name)
	assert.Equal(t, "linear", cfg.Exchange.Category)
	assert.Equal(t, 14, cfg.Volatility.ATRPeriod)
	assert.Equal(t, 0.05, cfg.Trading.MaxTotalRisk)
	assert.Equal(t, 0.1, cfg.Trading.DefaultLotSize)
	assert.Equal(t, 50.0, cfg.Trading.StopLossPips)
}

func TestLoad_CredentialsFromEnvironment(t *testing.T) {
	setTestCredentials(t)

	cfg, err := Load(writeTestConfig(t, testYAML))
	require.NoError(t, err)

	assert.Equal(t, "key", cfg.Exchange.APIKey)
	assert.Equal(t, "secret", cfg.Exchange.APISecret)
}

func TestLoad_MissingCredentialsFails(t *testing.T) {
	t.Setenv("BYBIT_API_KEY", "")
	t.Setenv("BYBIT_API_SECRET", "")

	_, err := Load(writeTestConfig(t, testYAML))
	assert.Error(t, err)
}

func TestLoad_UnknownStrategyFails(t *testing.T) {
	setTestCredentials(t)

	bad := `
symbols:
  categories:
    majors: [BTCUSDT]
trading:
  strategy: martingale
`
	_, err := Load(writeTestConfig(t, bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown strategy")
}

func TestLoad_NoSymbolsFails(t *testing.T) {
	setTestCredentials(t)

	_, err := Load(writeTestConfig(t, "exchange:\n  demo: true\n"))
	assert.Error(t, err)
}

func TestSymbolsConfig_PoolDeduplicates(t *testing.T) {
	setTestCredentials(t)

	cfg, err := Load(writeTestConfig(t, testYAML))
	require.NoError(t, err)

	pool := cfg.Symbols.Pool()
	assert.ElementsMatch(t, []string{"BTCUSDT", "ETHUSDT", "SOLUSDT"}, pool)
}

func TestDuration_RejectsGarbage(t *testing.T) {
	setTestCredentials(t)

	bad := `
symbols:
  categories:
    majors: [BTCUSDT]
trading:
  cycle_interval: soon
`
	_, err := Load(writeTestConfig(t, bad))
	assert.Error(t, err)
}
