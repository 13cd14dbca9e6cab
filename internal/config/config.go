package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete runtime configuration for the trading bot,
// assembled from a YAML file plus environment credentials.
type Config struct {
	Exchange   ExchangeConfig   `yaml:"exchange"`
	Symbols    SymbolsConfig    `yaml:"symbols"`
	Volatility VolatilityConfig `yaml:"volatility"`
	Trading    TradingConfig    `yaml:"trading"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Telegram   TelegramConfig   `yaml:"telegram"`
}

// ExchangeConfig holds exchange connection settings. Credentials always
// come from the environment, never from the file.
type ExchangeConfig struct {
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
	Testnet  bool   `yaml:"testnet"`
	Demo     bool   `yaml:"demo"`

	APIKey    string `yaml:"-"`
	APISecret string `yaml:"-"`
}

// SymbolsConfig groups candidate symbols into named categories. The
// volatility filter selects the tradable subset from the flattened pool.
type SymbolsConfig struct {
	Categories map[string][]string `yaml:"categories"`
}

// Pool returns all configured symbols, deduplicated, in stable order.
func (s SymbolsConfig) Pool() []string {
	seen := make(map[string]bool)
	var pool []string

	names := make([]string, 0, len(s.Categories))
	for name := range s.Categories {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, symbol := range s.Categories[name] {
			if !seen[symbol] {
				seen[symbol] = true
				pool = append(pool, symbol)
			}
		}
	}
	return pool
}

// VolatilityConfig controls symbol ranking and selection.
type VolatilityConfig struct {
	ATRPeriod      int     `yaml:"atr_period"`
	LookbackPeriod int     `yaml:"lookback_period"`
	MinScore       float64 `yaml:"min_score"`
	MaxSymbols     int     `yaml:"max_symbols"`
	Interval       string  `yaml:"interval"` // kline interval in Bybit notation
}

// TradingConfig controls strategy selection, risk limits and cycle pacing.
type TradingConfig struct {
	Strategy       string   `yaml:"strategy"`   // crossover, smc, trend_breakout, combined
	Strategies     []string `yaml:"strategies"` // constituents for combined; empty means all
	RequireAll     bool     `yaml:"require_all"`
	RiskPerSymbol  float64  `yaml:"risk_per_symbol"`
	MaxTotalRisk   float64  `yaml:"max_total_risk"`
	DefaultLotSize float64  `yaml:"default_lot_size"`
	StopLossPips   float64  `yaml:"stop_loss_pips"`
	CycleInterval  Duration `yaml:"cycle_interval"`
}

// Duration parses YAML values like "1h" or "90s" into a time.Duration.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// MonitoringConfig holds the metrics/health listen address.
type MonitoringConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"`
}

// TelegramConfig enables trade alerts. Token and chat ID come from the
// environment.
type TelegramConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"-"`
	ChatID  string `yaml:"-"`
}

// Load reads the YAML config file, applies defaults, overlays environment
// credentials and validates the result.
func Load(configFile string) (*Config, error) {
	if !strings.ContainsAny(configFile, "/\\") {
		configFile = filepath.Join("configs", configFile)
	}
	if !strings.HasSuffix(configFile, ".yaml") && !strings.HasSuffix(configFile, ".yml") {
		configFile += ".yaml"
	}

	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.setDefaults()
	config.loadEnv()

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) setDefaults() {
	if c.Exchange.Name == "" {
		c.Exchange.Name = "bybit"
	}
	if c.Exchange.Category == "" {
		c.Exchange.Category = "linear"
	}

	if c.Volatility.ATRPeriod == 0 {
		c.Volatility.ATRPeriod = 14
	}
	if c.Volatility.LookbackPeriod == 0 {
		c.Volatility.LookbackPeriod = 20
	}
	if c.Volatility.MinScore == 0 {
		c.Volatility.MinScore = 1.0
	}
	if c.Volatility.MaxSymbols == 0 {
		c.Volatility.MaxSymbols = 5
	}
	if c.Volatility.Interval == "" {
		c.Volatility.Interval = "60"
	}

	if c.Trading.Strategy == "" {
		c.Trading.Strategy = "combined"
	}
	if c.Trading.RiskPerSymbol == 0 {
		c.Trading.RiskPerSymbol = 0.02
	}
	if c.Trading.MaxTotalRisk == 0 {
		c.Trading.MaxTotalRisk = 0.05
	}
	if c.Trading.DefaultLotSize == 0 {
		c.Trading.DefaultLotSize = 0.1
	}
	if c.Trading.StopLossPips == 0 {
		c.Trading.StopLossPips = 50
	}
	if c.Trading.CycleInterval == 0 {
		c.Trading.CycleInterval = Duration(time.Hour)
	}

	if c.Monitoring.ListenAddr == "" {
		c.Monitoring.ListenAddr = ":9090"
	}
}

func (c *Config) loadEnv() {
	c.Exchange.APIKey = os.Getenv("BYBIT_API_KEY")
	c.Exchange.APISecret = os.Getenv("BYBIT_API_SECRET")
	if v := os.Getenv("BYBIT_TESTNET"); v != "" {
		c.Exchange.Testnet = parseBool(v)
	}
	if v := os.Getenv("BYBIT_DEMO"); v != "" {
		c.Exchange.Demo = parseBool(v)
	}

	c.Telegram.Token = os.Getenv("TELEGRAM_BOT_TOKEN")
	c.Telegram.ChatID = os.Getenv("TELEGRAM_CHAT_ID")
}

func (c *Config) validate() error {
	if c.Exchange.APIKey == "" || c.Exchange.APISecret == "" {
		return fmt.Errorf("BYBIT_API_KEY and BYBIT_API_SECRET must be set")
	}
	if len(c.Symbols.Pool()) == 0 {
		return fmt.Errorf("at least one symbol must be configured")
	}
	switch c.Trading.Strategy {
	case "crossover", "smc", "trend_breakout", "combined":
	default:
		return fmt.Errorf("unknown strategy %q", c.Trading.Strategy)
	}
	if c.Trading.RiskPerSymbol <= 0 || c.Trading.RiskPerSymbol > 1 {
		return fmt.Errorf("risk_per_symbol must be between 0 and 1")
	}
	if c.Trading.MaxTotalRisk < c.Trading.RiskPerSymbol {
		return fmt.Errorf("max_total_risk must be at least risk_per_symbol")
	}
	if c.Volatility.MaxSymbols <= 0 {
		return fmt.Errorf("max_symbols must be positive")
	}
	if c.Telegram.Enabled && (c.Telegram.Token == "" || c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram enabled but TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_ID missing")
	}
	return nil
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false
	}
	return b
}
