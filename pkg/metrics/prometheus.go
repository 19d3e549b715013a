package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	alertsTotal  *prometheus.CounterVec
	ticksTotal   *prometheus.CounterVec
	tradesOpened *prometheus.CounterVec
	tradesClosed *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	lastPrice    *prometheus.GaugeVec
	generation   prometheus.Gauge
	bestScore    prometheus.Gauge
	realizedPnl  prometheus.Gauge
	latency      *prometheus.HistogramVec
}

// New creates a Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		alertsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "evotrader_alerts_total",
				Help: "Total alerts processed by outcome status",
			},
			[]string{"status"},
		),
		ticksTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "evotrader_ticks_total",
				Help: "Total ticks ingested",
			},
			[]string{"symbol"},
		),
		tradesOpened: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "evotrader_trades_opened_total",
				Help: "Total paper trades opened",
			},
			[]string{"source"},
		),
		tradesClosed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "evotrader_trades_closed_total",
				Help: "Total paper trades closed by exit reason",
			},
			[]string{"reason"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "evotrader_errors_total",
				Help: "Total errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "evotrader_last_price",
				Help: "Last recorded price for a symbol",
			},
			[]string{"symbol"},
		),
		generation: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "evotrader_generation",
			Help: "Current evolution generation",
		}),
		bestScore: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "evotrader_best_genome_score",
			Help: "Score of the best genome in the population",
		}),
		realizedPnl: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "evotrader_realized_pnl",
			Help: "Realized pnl for the current generation",
		}),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "evotrader_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordAlert counts one alert by its outcome status.
func (r *Recorder) RecordAlert(status string) {
	r.alertsTotal.WithLabelValues(status).Inc()
}

// RecordTick counts a tick and records its price.
func (r *Recorder) RecordTick(symbol string, price float64) {
	r.ticksTotal.WithLabelValues(symbol).Inc()
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordTradeOpened counts an opened trade by source (engine or bot).
func (r *Recorder) RecordTradeOpened(source string) {
	r.tradesOpened.WithLabelValues(source).Inc()
}

// RecordTradeClosed counts a closed trade by exit reason.
func (r *Recorder) RecordTradeClosed(reason string) {
	r.tradesClosed.WithLabelValues(reason).Inc()
}

// RecordError counts an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// SetGeneration records the current generation index.
func (r *Recorder) SetGeneration(gen int) {
	r.generation.Set(float64(gen))
}

// SetBestScore records the best genome score.
func (r *Recorder) SetBestScore(score float64) {
	r.bestScore.Set(score)
}

// SetRealized records generation realized pnl.
func (r *Recorder) SetRealized(pnl float64) {
	r.realizedPnl.Set(pnl)
}
