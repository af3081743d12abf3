// Package metrics exposes Prometheus instrumentation for translation calls
// and debounce sessions.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for translation requests.
const (
	OutcomeSuccess              = "success"
	OutcomeCommunicationFailure = "communication_failure"
	OutcomeInvalidResponseShape = "invalid_response_shape"
	// OutcomeCancelled marks calls abandoned by the caller, which are not failures.
	OutcomeCancelled = "cancelled"
)

var (
	translationRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polyglot_translation_requests_total",
			Help: "Total number of remote translation requests",
		},
		[]string{"provider", "outcome"},
	)

	translationRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "polyglot_translation_request_duration_seconds",
			Help:    "Duration of remote translation requests in seconds",
			Buckets: []float64{0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
		},
		[]string{"provider", "outcome"},
	)

	translationInputSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "polyglot_translation_input_size_bytes",
			Help:    "Size of text submitted for translation in bytes",
			Buckets: []float64{16, 64, 256, 1024, 4096, 16384},
		},
	)

	sessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "polyglot_sessions_active",
			Help: "Number of open translation sessions",
		},
	)

	debounceSuperseded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "polyglot_debounce_superseded_total",
			Help: "Scheduled translations cancelled by a newer input",
		},
	)

	staleResults = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "polyglot_stale_results_total",
			Help: "Translation results dropped because a newer input had arrived",
		},
	)
)

// ObserveTranslation records one remote translation call.
func ObserveTranslation(provider, outcome string, duration time.Duration, inputBytes int) {
	translationRequestsTotal.WithLabelValues(provider, outcome).Inc()
	translationRequestDuration.WithLabelValues(provider, outcome).Observe(duration.Seconds())
	translationInputSize.Observe(float64(inputBytes))
}

// SessionOpened increments the open session gauge.
func SessionOpened() { sessionsActive.Inc() }

// SessionClosed decrements the open session gauge.
func SessionClosed() { sessionsActive.Dec() }

// DebounceSuperseded counts a scheduled translation replaced by newer input.
func DebounceSuperseded() { debounceSuperseded.Inc() }

// StaleResult counts a completion discarded by the last-input-wins rule.
func StaleResult() { staleResults.Inc() }

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
