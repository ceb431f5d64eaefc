// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

// Package metrics holds the Prometheus collectors for the service.
// Collectors are registered on the default registry through promauto and
// exposed by the API router at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Matching Engine Metrics
	MatchCandidatesScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_candidates_scored_total",
			Help: "Total number of lost/found pairs scored",
		},
		[]string{"source_type"},
	)

	MatchResults = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "match_results",
			Help:    "Number of candidates at or above the threshold per retrieval",
			Buckets: []float64{0, 1, 2, 3, 5, 10, 25, 50, 100},
		},
		[]string{"min_score"},
	)

	MatchScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "match_score",
			Help:    "Distribution of returned match scores",
			Buckets: []float64{40, 50, 60, 70, 80, 90, 100},
		},
	)

	MatchProcessDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "match_process_duration_seconds",
			Help:    "Duration of one process-and-notify run",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	MatchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_errors_total",
			Help: "Swallowed matching errors by stage",
		},
		[]string{"stage"}, // fetch, notify, cache, preference
	)

	MatchNotifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_notifications_total",
			Help: "Notification decisions made by the matching engine",
		},
		[]string{"outcome"}, // queued, opted_out, no_reporter, failed
	)

	// Batch Sweep Metrics
	SweepRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_sweep_runs_total",
			Help: "Total number of batch sweeps",
		},
		[]string{"result"}, // success, failure, skipped
	)

	SweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "match_sweep_duration_seconds",
			Help:    "Duration of batch sweeps",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 900},
		},
	)

	SweepItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "match_sweep_last_items",
			Help: "Items processed by the most recent sweep",
		},
	)

	SweepMatches = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "match_sweep_last_matches",
			Help: "Matches found by the most recent sweep",
		},
	)

	SweepLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "match_sweep_last_success_timestamp",
			Help: "Unix timestamp of the last successful sweep",
		},
	)

	// Notification Delivery Metrics
	NotificationDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_deliveries_total",
			Help: "Match notification deliveries by result",
		},
		[]string{"result"}, // sent, failed, suppressed, dropped
	)

	NotificationQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "notification_queue_depth",
			Help: "Notices waiting for delivery",
		},
	)

	NotificationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "notification_send_duration_seconds",
			Help:    "Duration of a single notification send",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	// Event Bus Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Item lifecycle events published",
		},
		[]string{"topic", "result"},
	)

	EventsHandled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_handled_total",
			Help: "Item lifecycle events consumed",
		},
		[]string{"topic", "result"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)
)

// RecordScored counts n scored pairs for a source item of the given type.
func RecordScored(sourceType string, n int) {
	MatchCandidatesScored.WithLabelValues(sourceType).Add(float64(n))
}

// RecordMatchResults records the size and score distribution of a ranked list.
func RecordMatchResults(minScore string, scores []int) {
	MatchResults.WithLabelValues(minScore).Observe(float64(len(scores)))
	for _, s := range scores {
		MatchScores.Observe(float64(s))
	}
}

// RecordMatchError counts a swallowed error at the given stage.
func RecordMatchError(stage string) {
	MatchErrors.WithLabelValues(stage).Inc()
}

// RecordMatchNotification counts a notification decision.
func RecordMatchNotification(outcome string) {
	MatchNotifications.WithLabelValues(outcome).Inc()
}

// RecordSweep records a completed batch sweep.
func RecordSweep(duration time.Duration, items, matches int, err error) {
	SweepDuration.Observe(duration.Seconds())
	if err != nil {
		SweepRuns.WithLabelValues("failure").Inc()
		return
	}
	SweepRuns.WithLabelValues("success").Inc()
	SweepItems.Set(float64(items))
	SweepMatches.Set(float64(matches))
	SweepLastSuccess.Set(float64(time.Now().Unix()))
}

// RecordSweepSkipped counts a sweep that did not run because another held the lock.
func RecordSweepSkipped() {
	SweepRuns.WithLabelValues("skipped").Inc()
}

// RecordDelivery counts a notification delivery outcome.
func RecordDelivery(result string, duration time.Duration) {
	NotificationDeliveries.WithLabelValues(result).Inc()
	if duration > 0 {
		NotificationDuration.Observe(duration.Seconds())
	}
}

// RecordEventPublished counts a published event.
func RecordEventPublished(topic string, err error) {
	EventsPublished.WithLabelValues(topic, resultLabel(err)).Inc()
}

// RecordEventHandled counts a consumed event.
func RecordEventHandled(topic string, err error) {
	EventsHandled.WithLabelValues(topic, resultLabel(err)).Inc()
}

// RecordBreakerTransition records a circuit breaker state change.
// States are encoded as 0=closed, 1=half-open, 2=open.
func RecordBreakerTransition(name, from, to string, toValue float64) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(toValue)
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
