// Package prometheus registers and exposes the operational metrics for the
// relna tagging pipeline. All metrics live on a private registry so tests
// can construct isolated instances without global-registration conflicts.
package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metric label values for the pipeline stages.
const (
	StageRecognition   = "recognition"
	StageNormalization = "normalization"
	StageOntology      = "ontology"
	StageAlignment     = "alignment"
)

// TaggingMetrics holds every metric emitted by the annotation pipeline.
type TaggingMetrics struct {
	registry *prometheus.Registry

	// DocumentsTagged counts completed document runs, labelled by target
	// collection ("gold" | "predicted") and outcome ("ok" | "error").
	DocumentsTagged *prometheus.CounterVec

	// MentionsRecognized counts gene mentions returned by the recognizer.
	MentionsRecognized prometheus.Counter

	// MentionsDropped counts mentions whose global offset matched no part
	// window.
	MentionsDropped prometheus.Counter

	// EntitiesTagged counts produced entities, labelled by category.
	EntitiesTagged *prometheus.CounterVec

	// LookupMisses counts absent mapping entries per cross-reference stage.
	LookupMisses *prometheus.CounterVec

	// StageDuration observes wall time per pipeline stage in seconds.
	StageDuration *prometheus.HistogramVec

	// CacheRequests counts lookup-cache requests labelled by result
	// ("hit" | "miss").
	CacheRequests *prometheus.CounterVec
}

// NewTaggingMetrics constructs and registers all pipeline metrics on a
// fresh registry.
func NewTaggingMetrics() *TaggingMetrics {
	reg := prometheus.NewRegistry()

	m := &TaggingMetrics{
		registry: reg,
		DocumentsTagged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "relna",
			Name:      "documents_tagged_total",
			Help:      "Completed document tagging runs",
		}, []string{"target", "outcome"}),
		MentionsRecognized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "relna",
			Name:      "mentions_recognized_total",
			Help:      "Gene mentions returned by the recognizer",
		}),
		MentionsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "relna",
			Name:      "mentions_dropped_total",
			Help:      "Mentions whose offset matched no document part",
		}),
		EntitiesTagged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "relna",
			Name:      "entities_tagged_total",
			Help:      "Entities appended to annotation collections",
		}, []string{"category"}),
		LookupMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "relna",
			Name:      "lookup_misses_total",
			Help:      "Cross-reference lookups with no mapping entry",
		}, []string{"stage"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "relna",
			Name:      "stage_duration_seconds",
			Help:      "Wall time spent per pipeline stage",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"stage"}),
		CacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "relna",
			Name:      "lookup_cache_requests_total",
			Help:      "Lookup cache requests by result",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.DocumentsTagged,
		m.MentionsRecognized,
		m.MentionsDropped,
		m.EntitiesTagged,
		m.LookupMisses,
		m.StageDuration,
		m.CacheRequests,
	)

	return m
}

// The methods below satisfy the metrics interfaces of the annotation and
// services layers without those layers importing this package.

// ObserveDocument records one completed document run.
func (m *TaggingMetrics) ObserveDocument(target, outcome string, elapsed time.Duration) {
	m.DocumentsTagged.WithLabelValues(target, outcome).Inc()
	m.StageDuration.WithLabelValues("document").Observe(elapsed.Seconds())
}

// ObserveStage records wall time for one pipeline stage.
func (m *TaggingMetrics) ObserveStage(stage string, elapsed time.Duration) {
	m.StageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// CountMentions records recognizer output and alignment drops for one
// document.
func (m *TaggingMetrics) CountMentions(recognized, dropped int) {
	m.MentionsRecognized.Add(float64(recognized))
	m.MentionsDropped.Add(float64(dropped))
}

// CountEntity records one produced entity.
func (m *TaggingMetrics) CountEntity(category string) {
	m.EntitiesTagged.WithLabelValues(category).Inc()
}

// CountLookupMiss records an absent cross-reference mapping entry.
func (m *TaggingMetrics) CountLookupMiss(stage string) {
	m.LookupMisses.WithLabelValues(stage).Inc()
}

// CountCache records a lookup-cache request result ("hit" or "miss").
func (m *TaggingMetrics) CountCache(result string) {
	m.CacheRequests.WithLabelValues(result).Inc()
}

// Handler returns an http.Handler serving the registry in the Prometheus
// exposition format.
func (m *TaggingMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry for tests.
func (m *TaggingMetrics) Gatherer() prometheus.Gatherer {
	return m.registry
}
