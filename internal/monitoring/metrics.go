package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	cyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mtx_bot_cycles_total",
			Help: "Total number of completed trading cycles",
		},
	)

	signalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mtx_bot_signals_total",
			Help: "Signals produced per symbol and kind",
		},
		[]string{"symbol", "signal"},
	)

	ordersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mtx_bot_orders_total",
			Help: "Orders submitted per symbol, side and outcome",
		},
		[]string{"symbol", "side", "outcome"},
	)

	riskRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mtx_bot_risk_rejections_total",
			Help: "Trades rejected by the risk limit checks",
		},
		[]string{"symbol"},
	)

	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mtx_bot_errors_total",
			Help: "Errors by type",
		},
		[]string{"type"},
	)

	accountBalance = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mtx_bot_account_balance",
			Help: "Account balance in account currency",
		},
	)

	openPositions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mtx_bot_open_positions",
			Help: "Number of currently open positions",
		},
	)

	volatilityScore = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mtx_bot_volatility_score",
			Help: "Composite volatility score per managed symbol",
		},
		[]string{"symbol"},
	)
)

func init() {
	prometheus.MustRegister(cyclesTotal)
	prometheus.MustRegister(signalsTotal)
	prometheus.MustRegister(ordersTotal)
	prometheus.MustRegister(riskRejectionsTotal)
	prometheus.MustRegister(errorsTotal)
	prometheus.MustRegister(accountBalance)
	prometheus.MustRegister(openPositions)
	prometheus.MustRegister(volatilityScore)
}

// MetricsHandler serves the Prometheus scrape endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// RecordCycle marks a completed trading cycle.
func RecordCycle() {
	cyclesTotal.Inc()
}

// RecordSignal records the signal a strategy produced for a symbol.
func RecordSignal(symbol, signal string) {
	signalsTotal.WithLabelValues(symbol, signal).Inc()
}

// RecordOrder records a submitted order and its outcome.
func RecordOrder(symbol, side, outcome string) {
	ordersTotal.WithLabelValues(symbol, side, outcome).Inc()
}

// RecordRiskRejection records a trade blocked by risk limits.
func RecordRiskRejection(symbol string) {
	riskRejectionsTotal.WithLabelValues(symbol).Inc()
}

// RecordError records an error by type.
func RecordError(errorType string) {
	errorsTotal.WithLabelValues(errorType).Inc()
}

// UpdateAccount updates the balance and open-position gauges.
func UpdateAccount(balance float64, positions int) {
	accountBalance.Set(balance)
	openPositions.Set(float64(positions))
}

// UpdateVolatilityScore publishes the latest composite score for a symbol.
func UpdateVolatilityScore(symbol string, score float64) {
	volatilityScore.WithLabelValues(symbol).Set(score)
}
