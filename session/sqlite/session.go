// Package sqlite реализует session.Session поверх встроенной базы SQLite
// (database/sql и драйвер mattn/go-sqlite3).
//
// Параметры передаются как sql.Named: именованный параметр доступен в
// запросе как :name, позиционный "0" как :p0.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"

	"github.com/x-research-team/dtx-graphrepo/session"
)

// DriverName - имя драйвера database/sql.
const DriverName = "sqlite3"

// Querier абстрагирует выполнение запросов. Ему удовлетворяют *sql.DB,
// *sql.Conn и *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Session - сессия поверх Querier.
type Session struct {
	q      Querier
	db     *sql.DB
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

// Open открывает базу по DSN, например "file:graph.db" или
// "file::memory:?cache=shared", и возвращает сессию, которая владеет ею.
func Open(ctx context.Context, dsn string, opts ...Option) (*Session, error) {
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть базу sqlite '%s': %w", dsn, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("не удалось подключиться к базе sqlite '%s': %w", dsn, err)
	}
	s := New(db, opts...)
	s.db = db
	return s, nil
}

// WithQuerier возвращает копию сессии, выполняющую запросы через q,
// например внутри транзакции *sql.Tx.
func (s *Session) WithQuerier(q Querier) *Session {
	return &Session{q: q, logger: s.logger}
}

// Close закрывает базу, если сессия создана через Open.
func (s *Session) Close(context.Context) error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Execute реализует session.Session.
func (s *Session) Execute(ctx context.Context, query string, params session.Params) error {
	s.debug(ctx, query, params)
	_, err := s.q.ExecContext(ctx, query, namedArgs(params)...)
	return err
}

// QueryRows реализует session.Session.
func (s *Session) QueryRows(ctx context.Context, query string, params session.Params) ([]session.Row, error) {
	s.debug(ctx, query, params)
	rows, err := s.q.QueryContext(ctx, query, namedArgs(params)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return readRows(rows)
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
	s.logger.DebugContext(ctx, "выполнение запроса sqlite",
		slog.String("query", query),
		slog.Any("params", params.Keys()),
	)
}

// namedArgs возвращает параметры в виде sql.Named в порядке ключей.
func namedArgs(params session.Params) []any {
	args := make([]any, 0, len(params))
	for _, key := range params.Keys() {
		args = append(args, sql.Named(session.SQLName(key), params[key]))
	}
	return args
}

// readRows читает все строки результата в отображения "столбец -> значение".
// BLOB-значения возвращаются как []byte.
func readRows(rows *sql.Rows) ([]session.Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("не удалось получить столбцы: %w", err)
	}

	out := make([]session.Row, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		scanArgs := make([]any, len(columns))
		for i := range values {
			scanArgs[i] = &values[i]
		}
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, fmt.Errorf("не удалось прочитать строку: %w", err)
		}

		row := make(session.Row, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при чтении строк: %w", err)
	}
	return out, nil
}
