package observability

import (
	"time"

	"github.com/fintrackhq/fintrack-api/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the API.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration     *prometheus.HistogramVec
	postingsTotal       *prometheus.CounterVec
	budgetOverages      prometheus.Counter
	goalAccruals        prometheus.Counter
	advisoryFailures    *prometheus.CounterVec
	inconsistencyEvents prometheus.Counter
	externalErrors      *prometheus.CounterVec
	cacheHits           *prometheus.CounterVec
	cacheMisses         *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fintrack_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		postingsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_postings_total",
				Help: "Transaction postings by outcome.",
			},
			[]string{"status"},
		),
		budgetOverages: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "fintrack_budget_overages_total",
				Help: "Advisory budget-limit overages detected.",
			},
		),
		goalAccruals: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "fintrack_goal_accruals_total",
				Help: "Goal savings accruals applied.",
			},
		),
		advisoryFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_advisory_failures_total",
				Help: "Suppressed failures inside advisory subsystems.",
			},
			[]string{"subsystem"},
		),
		inconsistencyEvents: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "fintrack_inconsistency_events_total",
				Help: "Persisted transactions whose goal accrual failed.",
			},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrPosting increments the posting counter with an outcome label
// (accepted, rejected, conversion_error).
func (m *Metrics) IncrPosting(status string) {
	m.postingsTotal.WithLabelValues(status).Inc()
}

// IncrBudgetOverage counts one advisory budget overage.
func (m *Metrics) IncrBudgetOverage() {
	m.budgetOverages.Inc()
}

// IncrGoalAccrual counts one applied goal accrual.
func (m *Metrics) IncrGoalAccrual() {
	m.goalAccruals.Inc()
}

// IncrAdvisoryFailure counts a swallowed advisory-subsystem failure.
func (m *Metrics) IncrAdvisoryFailure(subsystem string) {
	m.advisoryFailures.WithLabelValues(subsystem).Inc()
}

// IncrInconsistencyEvent counts a persisted transaction whose goal
// accrual failed, so an external reconciliation job can detect drift.
func (m *Metrics) IncrInconsistencyEvent() {
	m.inconsistencyEvents.Inc()
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// PostingSnapshot returns cumulative posting counters for the
// GET /v1/metrics/posting endpoint.
func (m *Metrics) PostingSnapshot() *domain.PostingMetrics {
	return &domain.PostingMetrics{
		PostingsAccepted:    int64(getCounterValue(m.postingsTotal, "accepted")),
		PostingsRejected:    int64(getCounterValue(m.postingsTotal, "rejected")),
		ConversionFailures:  int64(getCounterValue(m.postingsTotal, "conversion_error")),
		BudgetOverages:      int64(readCounter(m.budgetOverages)),
		GoalAccruals:        int64(readCounter(m.goalAccruals)),
		AdvisoryFailures:    int64(getCounterValue(m.advisoryFailures, "budget") + getCounterValue(m.advisoryFailures, "goal")),
		InconsistencyEvents: int64(readCounter(m.inconsistencyEvents)),
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	metric, ok := counter.(prometheus.Metric)
	if !ok {
		return 0
	}
	return readMetric(metric)
}

func readCounter(c prometheus.Counter) float64 {
	return readMetric(c)
}

func readMetric(metric prometheus.Metric) float64 {
	m := &dto.Metric{}
	if err := metric.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
