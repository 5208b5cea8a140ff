package query

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/x-research-team/dtx-graphrepo/paging"
)

const (
	instrumentationName    = "github.com/x-research-team/dtx-graphrepo/query"
	instrumentationVersion = "0.1.0"
	metricKeyPrefix        = "graphrepo."
)

// Middleware определяет интерфейс для middleware исполнителя запросов.
type Middleware interface {
	Wrap(next Executor) Executor
}

// MiddlewareFunc является адаптером, позволяющим использовать обычные функции как middleware.
type MiddlewareFunc func(next Executor) Executor

// Wrap реализует интерфейс Middleware.
func (f MiddlewareFunc) Wrap(next Executor) Executor {
	return f(next)
}

// ExecutorFunc является адаптером, позволяющим использовать обычные функции как Executor.
type ExecutorFunc func(ctx context.Context, desc Descriptor, params Parameters, args ...Argument) (any, error)

// Execute реализует интерфейс Executor.
func (f ExecutorFunc) Execute(ctx context.Context, desc Descriptor, params Parameters, args ...Argument) (any, error) {
	return f(ctx, desc, params, args...)
}

// loggingMiddleware реализует Middleware для логирования исполнения методов.
type loggingMiddleware struct {
	logger *slog.Logger
}

// NewLoggingMiddleware создает новое middleware для логирования.
// Если логгер не предоставлен (nil), возвращается no-op middleware.
func NewLoggingMiddleware(logger *slog.Logger) Middleware {
	if logger == nil {
		return &noopMiddleware{}
	}
	return &loggingMiddleware{
		logger: logger,
	}
}

// Wrap оборачивает исполнитель для добавления логирования.
func (m *loggingMiddleware) Wrap(next Executor) Executor {
	return &loggingExecutor{
		next:   next,
		logger: m.logger,
	}
}

// loggingExecutor - это обертка над исполнителем, которая добавляет логирование.
type loggingExecutor struct {
	next   Executor
	logger *slog.Logger
}

// Execute логирует и исполняет метод.
func (e *loggingExecutor) Execute(ctx context.Context, desc Descriptor, params Parameters, args ...Argument) (result any, err error) {
	invocationID := uuid.NewString()
	strategy := StrategyOf(args)
	e.logger.InfoContext(ctx, "исполнение метода репозитория",
		slog.String("query_name", desc.Name),
		slog.String("strategy", strategy.String()),
		slog.String("invocation_id", invocationID),
	)

	startTime := time.Now()
	defer func() {
		duration := time.Since(startTime)
		if err != nil {
			e.logger.ErrorContext(ctx, "ошибка исполнения метода репозитория",
				slog.String("query_name", desc.Name),
				slog.String("strategy", strategy.String()),
				slog.String("invocation_id", invocationID),
				slog.Any("error", err),
				slog.Duration("duration", duration),
			)
			return
		}
		e.logger.InfoContext(ctx, "метод репозитория исполнен",
			slog.String("query_name", desc.Name),
			slog.String("strategy", strategy.String()),
			slog.String("invocation_id", invocationID),
			slog.Duration("duration", duration),
		)
	}()

	return e.next.Execute(ctx, desc, params, args...)
}

// metricsMiddleware реализует Middleware для сбора метрик OpenTelemetry.
type metricsMiddleware struct {
	executeCounter     metric.Int64Counter
	durationHist       metric.Float64Histogram
	estimatedTotalHist metric.Int64Histogram
}

// NewMetricsMiddleware создает новое middleware для сбора метрик.
func NewMetricsMiddleware(provider metric.MeterProvider) Middleware {
	if provider == nil {
		return &noopMiddleware{}
	}

	meter := provider.Meter(instrumentationName)

	executeCounter, err := meter.Int64Counter(
		metricKeyPrefix+"execute.count",
		metric.WithDescription("Количество исполненных методов репозитория"),
		metric.WithUnit("{invocations}"),
	)
	if err != nil {
		panic(fmt.Sprintf("не удалось создать счетчик execute.count: %v", err))
	}

	durationHist, err := meter.Float64Histogram(
		metricKeyPrefix+"execute.duration",
		metric.WithDescription("Длительность исполнения метода репозитория"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		panic(fmt.Sprintf("не удалось создать гистограмму execute.duration: %v", err))
	}

	estimatedTotalHist, err := meter.Int64Histogram(
		metricKeyPrefix+"page.estimated_total",
		metric.WithDescription("Оценка общего количества элементов для постраничных результатов"),
		metric.WithUnit("{items}"),
	)
	if err != nil {
		panic(fmt.Sprintf("не удалось создать гистограмму page.estimated_total: %v", err))
	}

	return &metricsMiddleware{
		executeCounter:     executeCounter,
		durationHist:       durationHist,
		estimatedTotalHist: estimatedTotalHist,
	}
}

// Wrap оборачивает исполнитель для добавления сбора метрик.
func (m *metricsMiddleware) Wrap(next Executor) Executor {
	return &metricsExecutor{
		next:    next,
		metrics: m,
	}
}

// metricsExecutor - это обертка над исполнителем, которая собирает метрики.
type metricsExecutor struct {
	next    Executor
	metrics *metricsMiddleware
}

// Execute собирает метрики и исполняет метод.
func (e *metricsExecutor) Execute(ctx context.Context, desc Descriptor, params Parameters, args ...Argument) (result any, err error) {
	startTime := time.Now()
	result, err = e.next.Execute(ctx, desc, params, args...)
	duration := float64(time.Since(startTime).Milliseconds())

	status := "success"
	if err != nil {
		status = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("query.name", desc.Name),
		attribute.String("strategy", StrategyOf(args).String()),
		attribute.String("status", status),
	)

	e.metrics.executeCounter.Add(ctx, 1, attrs)
	e.metrics.durationHist.Record(ctx, duration, attrs)

	if page, ok := result.(paging.Page[any]); ok {
		e.metrics.estimatedTotalHist.Record(ctx, int64(page.Total()),
			metric.WithAttributes(attribute.String("query.name", desc.Name)))
	}

	return result, err
}

// tracingMiddleware реализует Middleware для распределенной трассировки OpenTelemetry.
type tracingMiddleware struct {
	tracer trace.Tracer
}

// NewTracingMiddleware создает новое middleware для трассировки.
func NewTracingMiddleware(tp trace.TracerProvider) Middleware {
	if tp == nil {
		return &noopMiddleware{}
	}

	return &tracingMiddleware{
		tracer: tp.Tracer(
			instrumentationName,
			trace.WithInstrumentationVersion(instrumentationVersion),
		),
	}
}

// Wrap оборачивает исполнитель для добавления логики трассировки.
func (m *tracingMiddleware) Wrap(next Executor) Executor {
	return &tracingExecutor{
		next:   next,
		tracer: m.tracer,
	}
}

// tracingExecutor - это обертка над исполнителем, которая управляет спанами трассировки.
type tracingExecutor struct {
	next   Executor
	tracer trace.Tracer
}

// Execute создает клиентский спан на время вызова сессии.
func (e *tracingExecutor) Execute(ctx context.Context, desc Descriptor, params Parameters, args ...Argument) (result any, err error) {
	spanName := fmt.Sprintf("%s execute", desc.Name)

	ctx, span := e.tracer.Start(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.query.text", desc.Query),
			attribute.String("strategy", StrategyOf(args).String()),
			attribute.String("returns", desc.Returns.String()),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	return e.next.Execute(ctx, desc, params, args...)
}

// applyMiddlewares применяет цепочку middleware к базовому исполнителю.
// Первый middleware в списке становится внешним.
func applyMiddlewares(executor Executor, middlewares ...Middleware) Executor {
	e := executor
	for i := len(middlewares) - 1; i >= 0; i-- {
		e = middlewares[i].Wrap(e)
	}
	return e
}

// noopMiddleware представляет собой пустое middleware.
type noopMiddleware struct{}

// Wrap просто возвращает следующий исполнитель без изменений.
func (m *noopMiddleware) Wrap(next Executor) Executor {
	return next
}
