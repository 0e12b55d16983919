/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: reporter.go
Description: Reporter interface and implementations for generator telemetry. Supports
structured logging and Prometheus metrics for accepted, duplicate and failed derivations.
*/

package generator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

// ProgramEvent describes one finished derivation
type ProgramEvent struct {
	RunID    string
	Grammar  string
	Worker   int
	Nodes    int
	Duration float64 // seconds spent deriving the program

	// ProgramID numbers accepted programs from 1 in acceptance order across the run.
	// Zero for duplicates.
	ProgramID int64
}

// FailureEvent describes a derivation that ended in an error
type FailureEvent struct {
	RunID   string
	Grammar string
	Worker  int
	Err     error
}

// Reporter defines the interface for telemetry hooks.
// Implementations are called concurrently from every worker.
type Reporter interface {
	// OnProgramAccepted is called when a new program passes deduplication.
	OnProgramAccepted(event ProgramEvent)
	// OnDuplicate is called when a program is rejected as already seen.
	OnDuplicate(event ProgramEvent)
	// OnGenerationFailed is called when a derivation returns an error.
	OnGenerationFailed(event FailureEvent)
}

// LoggerReporter logs generator events
type LoggerReporter struct {
	logger *logrus.Logger
}

// NewLoggerReporter creates a new LoggerReporter.
func NewLoggerReporter(logger *logrus.Logger) *LoggerReporter {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LoggerReporter{logger: logger}
}

func (r *LoggerReporter) OnProgramAccepted(event ProgramEvent) {
	r.logger.WithFields(logrus.Fields{
		"run_id":     event.RunID,
		"worker":     event.Worker,
		"program_id": event.ProgramID,
		"nodes":      event.Nodes,
	}).Debug("Program accepted")
}

func (r *LoggerReporter) OnDuplicate(event ProgramEvent) {
	r.logger.WithFields(logrus.Fields{"run_id": event.RunID, "worker": event.Worker}).Trace("Duplicate program skipped")
}

func (r *LoggerReporter) OnGenerationFailed(event FailureEvent) {
	r.logger.WithFields(logrus.Fields{"run_id": event.RunID, "worker": event.Worker}).Warnf("Derivation failed: %v", event.Err)
}

// PrometheusReporter exports generator events as Prometheus metrics, labelled by grammar
type PrometheusReporter struct {
	Generated  *prometheus.CounterVec
	Duplicates *prometheus.CounterVec
	Failures   *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
}

// NewPrometheusReporter registers the generator metrics with reg.
// A nil reg uses the default registerer.
func NewPrometheusReporter(reg prometheus.Registerer) *PrometheusReporter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusReporter{
		Generated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "programs_generated_total",
			Help: "Total programs accepted by the generator",
		}, []string{"grammar"}),
		Duplicates: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "duplicates_total",
			Help: "Total generated programs rejected as duplicates",
		}, []string{"grammar"}),
		Failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "generation_failures_total",
			Help: "Total derivations that ended in an error",
		}, []string{"grammar"}),
		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "generation_duration_seconds",
			Help:    "Time spent deriving one accepted program",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10), // 10µs to ~2.6s
		}, []string{"grammar"}),
	}
}

func (r *PrometheusReporter) OnProgramAccepted(event ProgramEvent) {
	r.Generated.WithLabelValues(event.Grammar).Inc()
	r.Duration.WithLabelValues(event.Grammar).Observe(event.Duration)
}

func (r *PrometheusReporter) OnDuplicate(event ProgramEvent) {
	r.Duplicates.WithLabelValues(event.Grammar).Inc()
}

func (r *PrometheusReporter) OnGenerationFailed(event FailureEvent) {
	r.Failures.WithLabelValues(event.Grammar).Inc()
}
