package strategy

// Signal is a directional trading signal. It is produced fresh on every
// evaluation and carries no state between cycles.
type Signal int

const (
	SignalNone Signal = iota
	SignalBuy
	SignalSell
)

func (s Signal) String() string {
	switch s {
	case SignalBuy:
		return "BUY"
	case SignalSell:
		return "SELL"
	case SignalNone:
		return "NONE"
	default:
		return "UNKNOWN"
	}
}
