// Package metrics provides Prometheus metrics for forecasting and matching.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the custom prometheus registry for the planner
var Registry = prometheus.NewRegistry()

// factory registers metrics to Registry directly
var factory = promauto.With(Registry)

// Advisory outcomes.
const (
	AdvisoryOK      = "ok"
	AdvisorySkipped = "skipped"
	AdvisoryFailed  = "failed"
)

// ForecastDurationSeconds tracks end-to-end forecast latency, collaborator reads included.
var ForecastDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "capacity",
	Name:      "forecast_duration_seconds",
	Help:      "Time taken to produce a bottleneck forecast",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
})

// ForecastsTotal counts forecasts by scope (project or portfolio).
var ForecastsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "capacity",
	Name:      "forecasts_total",
	Help:      "Number of forecasts produced, by scope",
}, []string{"scope"})

// BottlenecksTotal counts emitted bottleneck predictions by severity.
var BottlenecksTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "capacity",
	Name:      "bottlenecks_total",
	Help:      "Bottleneck predictions emitted, by severity",
}, []string{"severity"})

// BurnoutRisksTotal counts emitted burnout risks by level.
var BurnoutRisksTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "capacity",
	Name:      "burnout_risks_total",
	Help:      "Burnout risks emitted, by risk level",
}, []string{"level"})

// OverAllocatedResources is the over-allocated count of the most recent forecast.
var OverAllocatedResources = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "capacity",
	Name:      "over_allocated_resources",
	Help:      "Over-allocated resources in the most recent forecast",
})

// AdvisoryRequestsTotal counts rebalance advisory calls by outcome.
var AdvisoryRequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "advisory",
	Name:      "requests_total",
	Help:      "Rebalance advisory calls by outcome (ok, skipped, failed)",
}, []string{"outcome"})

// AdvisoryDurationSeconds tracks advisory latency including timeouts.
var AdvisoryDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "advisory",
	Name:      "duration_seconds",
	Help:      "Time spent waiting for the rebalance advisor",
	Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
})

// MatchDurationSeconds tracks skill matching latency.
var MatchDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "matching",
	Name:      "duration_seconds",
	Help:      "Time taken to score resources against a task",
	Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
})

// HTTPRequestsTotal counts served requests by route pattern and status code.
var HTTPRequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "http",
	Name:      "requests_total",
	Help:      "HTTP requests served, by route and status",
}, []string{"route", "status"})
