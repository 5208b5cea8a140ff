package neo4j

import "log/slog"

// config содержит неэкспортируемую конфигурацию сессии.
type config struct {
	database       string
	logger         *slog.Logger
	readersRouting bool
}

// Option изменяет конфигурацию сессии.
type Option func(*config)

// WithDatabase задает имя базы данных. Пустое имя означает базу по умолчанию.
func WithDatabase(name string) Option {
	return func(c *config) {
		c.database = name
	}
}

// WithLogger задает логгер для отладочного вывода выполняемых запросов.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithReadersRouting направляет запросы с результатом на читающие узлы
// кластера. Execute всегда выполняется на пишущих узлах.
func WithReadersRouting() Option {
	return func(c *config) {
		c.readersRouting = true
	}
}
