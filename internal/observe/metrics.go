// Package observe provides application-wide observability primitives for the
// Suara voice navigation server: OpenTelemetry metrics, distributed tracing,
// structured logging, and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all Suara metrics.
const meterName = "github.com/wanhafiz/suara"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use; the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms per pipeline stage ---

	// STTDuration tracks speech-to-text transcription latency.
	STTDuration metric.Float64Histogram

	// ClassifyDuration tracks intent classification latency, retries and
	// backoff included.
	ClassifyDuration metric.Float64Histogram

	// TurnDuration tracks end-to-end voice turn latency.
	TurnDuration metric.Float64Histogram

	// --- Counters ---

	// Turns counts processed voice turns. Use with attributes:
	//   attribute.String("step", ...), attribute.String("lang", ...)
	Turns metric.Int64Counter

	// ClassifierFallbacks counts degradations to the keyword path. Use with
	// attribute: attribute.String("reason", ...)
	ClassifierFallbacks metric.Int64Counter

	// HallucinationsDetected counts transcripts flagged by the
	// hallucination filter.
	HallucinationsDetected metric.Int64Counter

	// Navigations counts emitted frontend navigations. Use with attribute:
	//   attribute.String("route", ...)
	Navigations metric.Int64Counter

	// --- Error counters ---

	// ProviderErrors counts provider errors. Use with attributes:
	//   attribute.String("provider", ...), attribute.String("kind", ...)
	ProviderErrors metric.Int64Counter

	// --- Gauges ---

	// ActiveSessions tracks the number of live dialogue sessions.
	ActiveSessions metric.Int64UpDownCounter

	// ActiveStreams tracks the number of open voice websocket streams.
	ActiveStreams metric.Int64UpDownCounter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds). The upper
// buckets are wide because a rate-limited classification can back off for
// tens of seconds.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.STTDuration, err = m.Float64Histogram("suara.stt.duration",
		metric.WithDescription("Latency of speech-to-text transcription."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ClassifyDuration, err = m.Float64Histogram("suara.classify.duration",
		metric.WithDescription("Latency of intent classification including retries."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TurnDuration, err = m.Float64Histogram("suara.turn.duration",
		metric.WithDescription("End-to-end voice turn latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.Turns, err = m.Int64Counter("suara.turns",
		metric.WithDescription("Total processed voice turns by dialogue step and language."),
	); err != nil {
		return nil, err
	}
	if met.ClassifierFallbacks, err = m.Int64Counter("suara.classifier.fallbacks",
		metric.WithDescription("Total degradations to the keyword classifier by reason."),
	); err != nil {
		return nil, err
	}
	if met.HallucinationsDetected, err = m.Int64Counter("suara.transcript.hallucinations",
		metric.WithDescription("Total transcripts flagged as degenerate model output."),
	); err != nil {
		return nil, err
	}
	if met.Navigations, err = m.Int64Counter("suara.navigations",
		metric.WithDescription("Total emitted frontend navigations by route."),
	); err != nil {
		return nil, err
	}

	// Error counters.
	if met.ProviderErrors, err = m.Int64Counter("suara.provider.errors",
		metric.WithDescription("Total provider errors by provider and kind."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ActiveSessions, err = m.Int64UpDownCounter("suara.active_sessions",
		metric.WithDescription("Number of live dialogue sessions."),
	); err != nil {
		return nil, err
	}
	if met.ActiveStreams, err = m.Int64UpDownCounter("suara.active_streams",
		metric.WithDescription("Number of open voice websocket streams."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("suara.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordTurn records one processed voice turn.
func (m *Metrics) RecordTurn(ctx context.Context, step, lang string) {
	m.Turns.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("step", step),
			attribute.String("lang", lang),
		),
	)
}

// RecordFallback records one degradation to the keyword classifier.
func (m *Metrics) RecordFallback(ctx context.Context, reason string) {
	m.ClassifierFallbacks.Add(ctx, 1,
		metric.WithAttributes(attribute.String("reason", reason)),
	)
}

// RecordNavigation records one emitted frontend navigation.
func (m *Metrics) RecordNavigation(ctx context.Context, route string) {
	m.Navigations.Add(ctx, 1,
		metric.WithAttributes(attribute.String("route", route)),
	)
}

// RecordProviderError records a provider error counter increment.
func (m *Metrics) RecordProviderError(ctx context.Context, provider, kind string) {
	m.ProviderErrors.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("provider", provider),
			attribute.String("kind", kind),
		),
	)
}
