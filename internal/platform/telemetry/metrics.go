package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/guildradar/core"

// Tracer returns the tracer for this module.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// Metrics holds the instruments recorded on the data path.
type Metrics struct {
	fetchDuration metric.Float64Histogram
	cacheHits     metric.Int64Counter
	cacheMisses   metric.Int64Counter
	networkErrors metric.Int64Counter
}

// NewMetrics creates the data-path instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)

	fetchDuration, err := meter.Float64Histogram(
		"guildradar.fetch.duration",
		metric.WithDescription("Duration of data fetch operations"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating fetch duration histogram: %w", err)
	}

	cacheHits, err := meter.Int64Counter(
		"guildradar.cache.hits",
		metric.WithDescription("Number of cache hits on fetch operations"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating cache hit counter: %w", err)
	}

	cacheMisses, err := meter.Int64Counter(
		"guildradar.cache.misses",
		metric.WithDescription("Number of cache misses on fetch operations"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating cache miss counter: %w", err)
	}

	networkErrors, err := meter.Int64Counter(
		"guildradar.network.errors",
		metric.WithDescription("Number of failed network fetches by error type"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating network error counter: %w", err)
	}

	return &Metrics{
		fetchDuration: fetchDuration,
		cacheHits:     cacheHits,
		cacheMisses:   cacheMisses,
		networkErrors: networkErrors,
	}, nil
}

// RecordFetch records the duration of a fetch operation.
func (m *Metrics) RecordFetch(ctx context.Context, operation string, d time.Duration, cacheHit bool) {
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.Bool("cache_hit", cacheHit),
	)
	m.fetchDuration.Record(ctx, float64(d.Milliseconds()), attrs)

	opAttr := metric.WithAttributes(attribute.String("operation", operation))
	if cacheHit {
		m.cacheHits.Add(ctx, 1, opAttr)
	} else {
		m.cacheMisses.Add(ctx, 1, opAttr)
	}
}

// RecordNetworkError counts a failed network fetch.
func (m *Metrics) RecordNetworkError(ctx context.Context, operation, errorType string) {
	if m == nil {
		return
	}

	m.networkErrors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("error_type", errorType),
	))
}
