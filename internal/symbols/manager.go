package symbols

import (
	"context"
	"log"
	"sync"

	"github.com/mtxlabs/mtx-trading-bot/internal/broker"
	"github.com/mtxlabs/mtx-trading-bot/internal/volatility"
)

// Manager owns the managed symbol set: one data source per symbol plus the
// most recent volatility metrics. The set is read-only during a trading
// cycle; Add and Remove are the only writers and take the lock, so
// out-of-band changes cannot race an in-flight cycle.
type Manager struct {
	mu      sync.RWMutex
	market  broker.MarketData
	sources map[string]broker.DataSource
	metrics map[string]volatility.Metrics
	order   []string
}

// NewManager creates a manager with data sources for each symbol.
func NewManager(market broker.MarketData, symbolList []string) *Manager {
	m := &Manager{
		market:  market,
		sources: make(map[string]broker.DataSource, len(symbolList)),
		metrics: make(map[string]volatility.Metrics, len(symbolList)),
	}
	for _, s := range symbolList {
		m.sources[s] = broker.NewDataSource(market, s)
		m.order = append(m.order, s)
	}
	return m
}

// DataSource returns the data source for a symbol, or nil when the symbol is
// not managed.
func (m *Manager) DataSource(symbol string) broker.DataSource {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sources[symbol]
}

// Active returns the managed symbols in their registration order.
func (m *Manager) Active() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Add registers a new symbol. Adding an existing symbol is a no-op.
func (m *Manager) Add(symbol string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sources[symbol]; ok {
		log.Printf("⚠️ symbol %s already managed", symbol)
		return
	}
	m.sources[symbol] = broker.NewDataSource(m.market, symbol)
	m.order = append(m.order, symbol)
	log.Printf("➕ added symbol %s", symbol)
}

// Remove drops a symbol and its cached metrics.
func (m *Manager) Remove(symbol string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sources[symbol]; !ok {
		log.Printf("⚠️ symbol %s not managed", symbol)
		return false
	}
	delete(m.sources, symbol)
	delete(m.metrics, symbol)
	for i, s := range m.order {
		if s == symbol {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	log.Printf("➖ removed symbol %s", symbol)
	return true
}

// SetMetrics stores volatility metrics for a managed symbol. Metrics for
// unmanaged symbols are dropped.
func (m *Manager) SetMetrics(symbol string, metrics volatility.Metrics) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sources[symbol]; !ok {
		return
	}
	m.metrics[symbol] = metrics
}

// Metrics returns the cached volatility metrics for a symbol.
func (m *Manager) Metrics(symbol string) (volatility.Metrics, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	metrics, ok := m.metrics[symbol]
	return metrics, ok
}

// RefreshMetrics recomputes volatility metrics for every managed symbol.
// A symbol whose metrics cannot be computed keeps its previous values.
func (m *Manager) RefreshMetrics(ctx context.Context, analyzer *volatility.Analyzer) {
	for _, symbol := range m.Active() {
		metrics, err := analyzer.Metrics(ctx, symbol)
		if err != nil {
			log.Printf("⚠️ metrics refresh failed for %s: %v", symbol, err)
			continue
		}
		m.SetMetrics(symbol, *metrics)
	}
}
