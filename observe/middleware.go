package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

// ExecuteFunc is the signature of an operation Middleware wraps.
type ExecuteFunc func(ctx context.Context, op OperationMeta, input any) (any, error)

// Classifier maps an operation outcome to a low-cardinality reason label.
// It is called with a nil error for operations that succeeded.
type Classifier func(err error) string

// DefaultClassifier labels successes "ok" and every failure "error".
func DefaultClassifier(err error) string {
	if err == nil {
		return ReasonOK
	}
	return ReasonError
}

// MiddlewareOption configures a Middleware.
type MiddlewareOption func(*Middleware)

// WithClassifier installs the reason classifier used for spans, metrics and logs.
func WithClassifier(c Classifier) MiddlewareOption {
	return func(m *Middleware) {
		if c != nil {
			m.classify = c
		}
	}
}

// Middleware wraps operations with tracing, metrics and logging.
//
// Contract:
//   - Concurrency: Wrap() returns a thread-safe ExecuteFunc.
//   - Context: the wrapped function runs inside the operation span.
//   - Errors: errors from the wrapped function are recorded and returned unchanged.
type Middleware struct {
	tracer   Tracer
	metrics  Metrics
	logger   Logger
	classify Classifier
}

// NewMiddleware creates a new Middleware with the given observability components.
// Nil components record nothing.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger, opts ...MiddlewareOption) *Middleware {
	m := &Middleware{
		tracer:   tracer,
		metrics:  metrics,
		logger:   logger,
		classify: DefaultClassifier,
	}
	if m.tracer == nil {
		m.tracer = newNoopTracer()
	}
	if m.metrics == nil {
		m.metrics = noopMetrics{}
	}
	if m.logger == nil {
		m.logger = NopLogger()
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NopMiddleware returns a Middleware that records nothing.
func NopMiddleware(opts ...MiddlewareOption) *Middleware {
	return NewMiddleware(newNoopTracer(), noopMetrics{}, NopLogger(), opts...)
}

// Wrap wraps an ExecuteFunc with tracing, metrics and logging.
func (m *Middleware) Wrap(fn ExecuteFunc) ExecuteFunc {
	return func(ctx context.Context, op OperationMeta, input any) (any, error) {
		if op.Name == "" {
			return nil, ErrMissingOperationName
		}

		ctx, span := m.tracer.StartSpan(ctx, op)
		start := time.Now()

		result, err := fn(ctx, op, input)

		duration := time.Since(start)
		reason := m.classify(err)

		span.SetAttributes(attribute.String("auth.reason", reason))
		m.tracer.EndSpan(span, err)
		m.metrics.RecordOperation(ctx, op, duration, reason, err)

		opLogger := m.logger.WithOperation(op)
		fields := []Field{
			{Key: "duration_ms", Value: float64(duration.Microseconds()) / 1000},
			{Key: "reason", Value: reason},
		}
		if err != nil {
			fields = append(fields, Field{Key: "error", Value: err.Error()})
			opLogger.Warn(ctx, "operation rejected", fields...)
		} else {
			opLogger.Debug(ctx, "operation allowed", fields...)
		}

		return result, err
	}
}

// Logger returns the logger the middleware writes to.
func (m *Middleware) Logger() Logger {
	return m.logger
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer, opts ...MiddlewareOption) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger(), opts...), nil
}
