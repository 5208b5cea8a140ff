// Package postgres реализует session.Session поверх PostgreSQL (pgx).
//
// Параметры передаются как pgx.NamedArgs: именованный параметр доступен в
// запросе как @name, позиционный "0" как @p0.
package postgres

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/x-research-team/dtx-graphrepo/session"
)

// Session - сессия поверх Querier (пула соединений или транзакции).
type Session struct {
	q      Querier
	pool   *pgxpool.Pool
	logger *slog.Logger
}

var _ session.Session = (*Session)(nil)

// Option изменяет сессию при создании.
type Option func(*Session)

// WithLogger задает логгер для отладочного вывода выполняемых запросов.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// New создает сессию поверх Querier.
func New(q Querier, opts ...Option) *Session {
	s := &Session{q: q}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

// Open создает пул соединений по строке подключения, проверяет соединение и
// возвращает сессию, которая владеет пулом.
func Open(ctx context.Context, uri string, opts ...Option) (*Session, error) {
	pool, err := pgxpool.New(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать пул соединений postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("не удалось подключиться к postgres: %w", err)
	}
	s := New(pool, opts...)
	s.pool = pool
	return s, nil
}

// WithQuerier возвращает копию сессии, выполняющую запросы через q,
// например внутри транзакции pgx.Tx.
func (s *Session) WithQuerier(q Querier) *Session {
	return &Session{q: q, logger: s.logger}
}

// Close закрывает пул, если сессия создана через Open.
func (s *Session) Close(context.Context) error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// Execute реализует session.Session.
func (s *Session) Execute(ctx context.Context, query string, params session.Params) error {
	s.debug(ctx, query, params)
	_, err := s.q.Exec(ctx, query, pgx.NamedArgs(params.SQLNamed()))
	return err
}

// QueryRows реализует session.Session.
func (s *Session) QueryRows(ctx context.Context, query string, params session.Params) ([]session.Row, error) {
	s.debug(ctx, query, params)
	rows, err := s.q.Query(ctx, query, pgx.NamedArgs(params.SQLNamed()))
	if err != nil {
		return nil, err
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, err
	}

	out := make([]session.Row, len(maps))
	for i, m := range maps {
		out[i] = normalizeRow(m)
	}
	return out, nil
}

// Query реализует session.Session. Порядок и страница дописываются в конец
// запроса: " ORDER BY ... LIMIT m OFFSET n".
func (s *Session) Query(ctx context.Context, elem session.ElementType, query string, params session.Params, order session.SortOrder, page *session.Pagination) ([]any, error) {
	text, err := session.Render(session.DialectSQL, query, order, page)
	if err != nil {
		return nil, err
	}
	rows, err := s.QueryRows(ctx, text, params)
	if err != nil {
		return nil, err
	}
	return elem.DecodeAll(rows)
}

// QueryForObject реализует session.Session.
func (s *Session) QueryForObject(ctx context.Context, typ session.ElementType, query string, params session.Params) (any, error) {
	rows, err := s.QueryRows(ctx, query, params)
	if err != nil {
		return nil, err
	}
	return session.First(typ, rows)
}

func (s *Session) debug(ctx context.Context, query string, params session.Params) {
	s.logger.DebugContext(ctx, "выполнение запроса postgres",
		slog.String("query", query),
		slog.Any("params", params.Keys()),
	)
}
