package observe

import (
	"context"
	"errors"
	"time"

	"github.com/jonwraymond/journalops/guard"
	"github.com/jonwraymond/journalops/ratelimit"
	"github.com/jonwraymond/journalops/tool"
)

// Middleware instruments tool handlers with tracing, metrics, and
// logging. Wrap it outermost so denials from the guard and rate limiter
// are observed too.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware assembles instrumentation from its parts. Nil parts
// degrade to no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = newNoopTracer()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{tracer: tracer, metrics: metrics, logger: logger}
}

// FromObserver builds a Middleware on an Observer's telemetry.
func FromObserver(obs Observer) (*Middleware, error) {
	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return NewMiddleware(newTracer(obs.Tracer()), metrics, obs.Logger()), nil
}

// Instrument returns middleware recording a span, metrics, and one log
// line per call of the named tool.
func (m *Middleware) Instrument(name string) tool.Middleware {
	return func(next tool.Handler) tool.Handler {
		logger := m.logger.WithTool(name)
		return func(ctx context.Context, args tool.Args) (any, error) {
			ctx, span := m.tracer.StartSpan(ctx, name)
			start := time.Now()

			result, err := next(ctx, args)

			duration := time.Since(start)
			m.tracer.EndSpan(span, err)
			m.metrics.RecordCall(ctx, name, duration, err)

			fields := []Field{
				{Key: "duration_ms", Value: float64(duration.Milliseconds())},
			}
			if id := tool.RequestIDFromContext(ctx); id != "" {
				fields = append(fields, Field{Key: "request_id", Value: id})
			}

			if err == nil {
				logger.Info(ctx, "tool call completed", fields...)
				return result, nil
			}

			fields = append(fields, Field{Key: "error", Value: err.Error()})
			if reason := denialReason(err); reason != "" {
				m.metrics.RecordDenial(ctx, name, reason)
				fields = append(fields, Field{Key: "denied", Value: reason})
				logger.Warn(ctx, "tool call denied", fields...)
			} else {
				logger.Error(ctx, "tool call failed", fields...)
			}
			return result, err
		}
	}
}

// denialReason classifies errors raised before a handler ran. Anything
// else is an ordinary handler failure.
func denialReason(err error) string {
	switch {
	case errors.Is(err, guard.ErrAuthRequired):
		return "auth_required"
	case errors.Is(err, guard.ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, guard.ErrForbidden):
		return "forbidden"
	case errors.Is(err, ratelimit.ErrRateLimited):
		return "rate_limited"
	}
	return ""
}
