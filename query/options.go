package query

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// config содержит неэкспортируемую конфигурацию диспетчера.
type config struct {
	logger         *slog.Logger
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	middlewares    []Middleware
}

// Option определяет тип для функциональных опций, которые изменяют конфигурацию диспетчера.
type Option func(*config)

// WithLogger возвращает опцию, которая устанавливает логгер.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithTracerProvider возвращает опцию, которая устанавливает провайдер трассировки.
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(c *config) {
		c.tracerProvider = provider
	}
}

// WithMeterProvider возвращает опцию, которая устанавливает провайдер метрик.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(c *config) {
		c.meterProvider = provider
	}
}

// WithMiddleware возвращает опцию, которая добавляет один или несколько middleware в цепочку.
// Пользовательские middleware выполняются после встроенных, в порядке добавления.
func WithMiddleware(mw ...Middleware) Option {
	return func(c *config) {
		c.middlewares = append(c.middlewares, mw...)
	}
}
