package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records tool dispatch outcomes.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordCall records a completed tool call with its duration and
	// error status.
	RecordCall(ctx context.Context, toolName string, duration time.Duration, err error)

	// RecordDenial records a call turned away before its handler ran,
	// with the denial reason (auth_required, invalid_token, forbidden,
	// rate_limited).
	RecordDenial(ctx context.Context, toolName, reason string)
}

type metricsImpl struct {
	callCount    metric.Int64Counter
	errorCount   metric.Int64Counter
	denialCount  metric.Int64Counter
	durationHist metric.Float64Histogram
}

func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	callCount, err := meter.Int64Counter(
		"journal.tool.calls",
		metric.WithDescription("Total number of tool calls dispatched"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"journal.tool.errors",
		metric.WithDescription("Total number of tool calls that returned an error"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	denialCount, err := meter.Int64Counter(
		"journal.tool.denials",
		metric.WithDescription("Tool calls turned away by auth or rate limiting"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"journal.tool.duration_ms",
		metric.WithDescription("Tool call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		callCount:    callCount,
		errorCount:   errorCount,
		denialCount:  denialCount,
		durationHist: durationHist,
	}, nil
}

func (m *metricsImpl) RecordCall(ctx context.Context, toolName string, duration time.Duration, err error) {
	opt := metric.WithAttributes(attribute.String("tool.name", toolName))
	m.callCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

func (m *metricsImpl) RecordDenial(ctx context.Context, toolName, reason string) {
	m.denialCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tool.name", toolName),
		attribute.String("reason", reason),
	))
}

// RegisterSessionGauge registers an observable gauge reporting the number
// of live sessions, polled at collection time through count. The returned
// registration can be unregistered on shutdown.
func RegisterSessionGauge(meter metric.Meter, count func(ctx context.Context) int) (metric.Registration, error) {
	gauge, err := meter.Int64ObservableGauge(
		"journal.sessions.live",
		metric.WithDescription("Number of live authenticated sessions"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, err
	}
	return meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		o.ObserveInt64(gauge, int64(count(ctx)))
		return nil
	}, gauge)
}

type noopMetrics struct{}

func (noopMetrics) RecordCall(context.Context, string, time.Duration, error) {}
func (noopMetrics) RecordDenial(context.Context, string, string)             {}
