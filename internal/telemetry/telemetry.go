// Package telemetry provides OpenTelemetry instrumentation for the BOQ
// classifier service. It exports Prometheus metrics and tracing capabilities.
package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "boq-classifier"

// Metrics holds all classifier Prometheus metrics.
type Metrics struct {
	// Row-role classification
	RowsClassified  *prometheus.CounterVec
	RowPassDuration prometheus.Histogram
	BatchSize       prometheus.Histogram

	// Work-group scoring
	GroupsAssigned   *prometheus.CounterVec
	ScoringDuration  prometheus.Histogram
	ScoringUnmatched prometheus.Counter

	// Rule engine
	RulesLoaded  prometheus.Gauge
	RuleReloads  prometheus.Counter

	// Worker pool
	ActiveWorkers prometheus.Gauge
	Throttled     prometheus.Counter
}

// Provider wraps telemetry providers.
type Provider struct {
	Tracer  trace.Tracer
	Metrics *Metrics
}

// NewProvider initializes telemetry with Prometheus metrics.
func NewProvider() *Provider {
	return &Provider{
		Tracer:  otel.Tracer(serviceName),
		Metrics: initMetrics(),
	}
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func (p *Provider) Handler() http.Handler {
	return promhttp.Handler()
}

func initMetrics() *Metrics {
	m := &Metrics{}

	m.RowsClassified = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "boq_rows_classified_total",
		Help: "Total rows classified, by structural role",
	}, []string{"role"})

	m.RowPassDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "boq_row_pass_duration_seconds",
		Help:    "Time for one row-role pass over a document",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	})

	m.BatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "boq_batch_size",
		Help:    "Number of rows per classification request",
		Buckets: []float64{10, 50, 100, 250, 500, 1000, 2500, 5000},
	})

	m.GroupsAssigned = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "boq_groups_assigned_total",
		Help: "Total work groups committed, by group",
	}, []string{"group"})

	m.ScoringDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "boq_scoring_duration_seconds",
		Help:    "Time for the work-group scoring pass over a document",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.25, 1.0},
	})

	m.ScoringUnmatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boq_scoring_unmatched_total",
		Help: "Items where no rule scored above zero",
	})

	m.RulesLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "boq_rules_loaded",
		Help: "Enabled work-group rules currently in the engine",
	})

	m.RuleReloads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boq_rule_reloads_total",
		Help: "Rule table hot swaps",
	})

	m.ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "boq_active_workers",
		Help: "Currently active scoring workers",
	})

	m.Throttled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boq_throttled_total",
		Help: "Scoring calls delayed by the rate limiter",
	})

	return m
}

// RecordRowPass records metrics for one row-role pass.
func (p *Provider) RecordRowPass(ctx context.Context, duration time.Duration, byRole map[string]int) {
	p.Metrics.RowPassDuration.Observe(duration.Seconds())
	for role, count := range byRole {
		p.Metrics.RowsClassified.WithLabelValues(role).Add(float64(count))
	}
}

// RecordScoring records one work-group scoring pass and how many of its
// items no rule matched.
func (p *Provider) RecordScoring(ctx context.Context, duration time.Duration, unmatched int) {
	p.Metrics.ScoringDuration.Observe(duration.Seconds())
	if unmatched > 0 {
		p.Metrics.ScoringUnmatched.Add(float64(unmatched))
	}
}

// RecordGroupAssigned increments the per-group assignment counter.
func (p *Provider) RecordGroupAssigned(ctx context.Context, group string) {
	p.Metrics.GroupsAssigned.WithLabelValues(group).Inc()
}

// RecordBatchSize records the size of a classification request.
func (p *Provider) RecordBatchSize(size int) {
	p.Metrics.BatchSize.Observe(float64(size))
}

// RecordRuleReload records a rule table hot swap.
func (p *Provider) RecordRuleReload(ruleCount int) {
	p.Metrics.RuleReloads.Inc()
	p.Metrics.RulesLoaded.Set(float64(ruleCount))
}

// SetActiveWorkers sets the current active worker count.
func (p *Provider) SetActiveWorkers(count int) {
	p.Metrics.ActiveWorkers.Set(float64(count))
}

// IncrementThrottled increments the rate-limit counter.
func (p *Provider) IncrementThrottled() {
	p.Metrics.Throttled.Inc()
}

// StartSpan starts a new trace span.
// The caller is responsible for ending the span with span.End().
//
//nolint:spancheck // Caller is responsible for ending the span
func (p *Provider) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := p.Tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, span
}
