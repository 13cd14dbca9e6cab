package types

import "time"

// OHLCV is a single price bar. Series are ordered oldest first and are
// refreshed wholesale on every fetch; nothing in the core appends to them.
type OHLCV struct {
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	Timestamp time.Time
}

// TypicalPrice returns (high + low + close) / 3.
func (b OHLCV) TypicalPrice() float64 {
	return (b.High + b.Low + b.Close) / 3
}

// Range returns the full high-low span of the bar.
func (b OHLCV) Range() float64 {
	return b.High - b.Low
}

// Ticker is the latest quote for a symbol.
type Ticker struct {
	Symbol    string
	Bid       float64
	Ask       float64
	LastPrice float64
	Timestamp time.Time
}

// Mid returns the bid/ask midpoint, falling back to the last trade price
// when one side of the book is missing.
func (t Ticker) Mid() float64 {
	if t.Bid > 0 && t.Ask > 0 {
		return (t.Bid + t.Ask) / 2
	}
	return t.LastPrice
}

// SymbolInfo carries the broker metadata needed to turn a risk amount into
// a broker-legal position size.
type SymbolInfo struct {
	Symbol       string
	TickSize     float64
	TickValue    float64
	ContractSize float64
	Digits       int
	VolumeMin    float64
	VolumeMax    float64
	VolumeStep   float64
}

// PositionSide is the direction of an open position or order.
type PositionSide string

const (
	SideBuy  PositionSide = "Buy"
	SideSell PositionSide = "Sell"
)

// Opposite returns the other side.
func (s PositionSide) Opposite() PositionSide {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// Position is an open position as reported by the broker. The broker's view
// is the single source of truth; the core never caches these across cycles.
type Position struct {
	Symbol     string
	Side       PositionSide
	Volume     float64
	EntryPrice float64
	Profit     float64 // floating P/L in account currency
	Comment    string
	Magic      int64
}

// OrderResult is the outcome of an order submission.
type OrderResult struct {
	Success      bool
	OrderID      string
	FilledPrice  float64
	FilledVolume float64
	RetCode      int
	RetMsg       string
}
