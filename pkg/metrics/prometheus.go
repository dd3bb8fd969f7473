package metrics

import (
	"FinNotify/internal/domain/models"
	"FinNotify/internal/domain/repository"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var _ repository.Metrics = (*Recorder)(nil)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	gatherer      prometheus.Gatherer
	fetchTotal    *prometheus.CounterVec
	fetchLatency  *prometheus.HistogramVec
	evaluations   *prometheus.CounterVec
	rulesFired    *prometheus.CounterVec
	notifications *prometheus.CounterVec
	lastPrice     *prometheus.GaugeVec
}

// New creates a recorder registered on reg. A nil reg means the default registry,
// which is also what /metrics serves.
func New(reg *prometheus.Registry) *Recorder {
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if reg != nil {
		registerer, gatherer = reg, reg
	}
	factory := promauto.With(registerer)

	return &Recorder{
		gatherer: gatherer,
		fetchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finnotify_provider_requests_total",
				Help: "Provider requests by indicator family and result",
			},
			[]string{"provider", "family", "result"},
		),
		fetchLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finnotify_provider_request_duration_seconds",
				Help:    "Duration of provider requests in seconds, retries and rate-limit waits included",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"provider", "family"},
		),
		evaluations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finnotify_evaluations_total",
				Help: "Ticker evaluations by outcome",
			},
			[]string{"symbol", "outcome"},
		),
		rulesFired: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finnotify_rules_fired_total",
				Help: "Rules that fired, by rule name",
			},
			[]string{"rule"},
		),
		notifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finnotify_notifications_total",
				Help: "Notifications delivered per sink",
			},
			[]string{"sink", "kind", "result"},
		),
		lastPrice: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "finnotify_last_price",
				Help: "Last recorded price for a symbol or coin",
			},
			[]string{"symbol"},
		),
	}
}

// RecordFetch records one provider call for an indicator family.
func (r *Recorder) RecordFetch(provider, family string, seconds float64, err error) {
	r.fetchTotal.WithLabelValues(provider, family, result(err)).Inc()
	r.fetchLatency.WithLabelValues(provider, family).Observe(seconds)
}

// RecordEvaluation records a ticker evaluation outcome (notified, quiet, failed).
func (r *Recorder) RecordEvaluation(symbol, outcome string) {
	r.evaluations.WithLabelValues(symbol, outcome).Inc()
}

func (r *Recorder) RecordRuleFired(rule string) {
	r.rulesFired.WithLabelValues(rule).Inc()
}

func (r *Recorder) RecordNotification(sink string, kind models.NotificationKind, err error) {
	r.notifications.WithLabelValues(sink, string(kind), result(err)).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

func (r *Recorder) Gatherer() prometheus.Gatherer { return r.gatherer }

// WriteTextfile dumps the registry in the node_exporter textfile format.
// One-shot cron runs use it since nothing scrapes them.
func (r *Recorder) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.gatherer)
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Nop discards every measurement.
type Nop struct{}

var _ repository.Metrics = Nop{}

func (Nop) RecordFetch(string, string, float64, error) {}
func (Nop) RecordEvaluation(string, string) {}
func (Nop) RecordRuleFired(string) {}
func (Nop) RecordNotification(string, models.NotificationKind, error) {}
func (Nop) RecordLastPrice(string, float64) {}
