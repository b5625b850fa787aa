package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels calls that produced a usable result.
	OutcomeSuccess = "success"
	// OutcomeError labels calls that failed (configuration, transport, or parse).
	OutcomeError = "error"
)

var (
	analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "loanlens",
			Name:      "analyses_total",
			Help:      "Total number of document analyses, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	analysisDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "loanlens",
			Name:      "analysis_seconds",
			Help:      "Document analysis latency in seconds, including the model call.",
			Buckets:   []float64{1, 2, 5, 10, 20, 30, 45, 60, 90, 120},
		},
	)

	lettersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "loanlens",
			Name:      "letters_total",
			Help:      "Total number of decision-letter generations, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	letterCacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "loanlens",
			Name:      "letter_cache_hits_total",
			Help:      "Decision letters served from the letter cache.",
		},
	)
)

// Register attaches loanlens collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		analysesTotal,
		analysisDurationSeconds,
		lettersTotal,
		letterCacheHitsTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveAnalysis records an analysis duration and outcome label.
func ObserveAnalysis(duration time.Duration, outcome string) {
	if outcome != OutcomeError {
		outcome = OutcomeSuccess
	}
	analysesTotal.WithLabelValues(outcome).Inc()
	if duration < 0 {
		duration = 0
	}
	analysisDurationSeconds.Observe(duration.Seconds())
}

// ObserveLetter records a letter-generation outcome.
func ObserveLetter(outcome string) {
	if outcome != OutcomeError {
		outcome = OutcomeSuccess
	}
	lettersTotal.WithLabelValues(outcome).Inc()
}

// ObserveLetterCacheHit counts a letter served without a model call.
func ObserveLetterCacheHit() {
	letterCacheHitsTotal.Inc()
}
