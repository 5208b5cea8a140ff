// Package neo4j реализует session.Session поверх драйвера Neo4j.
//
// Параметры передаются в Cypher без переименования: позиционный ключ "0"
// доступен в запросе как $0.
package neo4j

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/x-research-team/dtx-graphrepo/session"
)

// Session - сессия поверх neo4j.DriverWithContext.
// Безопасна для одновременного использования.
type Session struct {
	driver neo4j.DriverWithContext
	cfg    config
}

var _ session.Session = (*Session)(nil)

// New создает сессию поверх существующего драйвера. Драйвером по-прежнему
// владеет вызывающая сторона.
func New(driver neo4j.DriverWithContext, opts ...Option) *Session {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Session{driver: driver, cfg: cfg}
}

// Open создает драйвер с базовой аутентификацией, проверяет соединение и
// возвращает сессию, которая владеет драйвером.
func Open(ctx context.Context, uri, username, password string, opts ...Option) (*Session, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("не удалось создать драйвер neo4j: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("не удалось подключиться к neo4j '%s': %w", uri, err)
	}
	return New(driver, opts...), nil
}

// Close закрывает драйвер.
func (s *Session) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// Execute реализует session.Session.
func (s *Session) Execute(ctx context.Context, query string, params session.Params) error {
	_, err := s.run(ctx, query, params, false)
	return err
}

// QueryRows реализует session.Session.
func (s *Session) QueryRows(ctx context.Context, query string, params session.Params) ([]session.Row, error) {
	return s.run(ctx, query, params, s.cfg.readersRouting)
}

// Query реализует session.Session. Порядок и страница дописываются в конец
// запроса: " ORDER BY ... SKIP n LIMIT m".
func (s *Session) Query(ctx context.Context, elem session.ElementType, query string, params session.Params, order session.SortOrder, page *session.Pagination) ([]any, error) {
	text, err := session.Render(session.DialectCypher, query, order, page)
	if err != nil {
		return nil, err
	}
	rows, err := s.run(ctx, text, params, s.cfg.readersRouting)
	if err != nil {
		return nil, err
	}
	return elem.DecodeAll(rows)
}

// QueryForObject реализует session.Session.
func (s *Session) QueryForObject(ctx context.Context, typ session.ElementType, query string, params session.Params) (any, error) {
	rows, err := s.run(ctx, query, params, s.cfg.readersRouting)
	if err != nil {
		return nil, err
	}
	return session.First(typ, rows)
}

func (s *Session) run(ctx context.Context, query string, params session.Params, read bool) ([]session.Row, error) {
	s.cfg.logger.DebugContext(ctx, "выполнение запроса cypher",
		slog.String("query", query),
		slog.Any("params", params.Keys()),
		slog.Bool("read", read),
	)

	settings := []neo4j.ExecuteQueryConfigurationOption{
		neo4j.ExecuteQueryWithDatabase(s.cfg.database),
	}
	if read {
		settings = append(settings, neo4j.ExecuteQueryWithReadersRouting())
	}

	result, err := neo4j.ExecuteQuery(ctx, s.driver, query, map[string]any(params),
		neo4j.EagerResultTransformer, settings...)
	if err != nil {
		return nil, err
	}
	return rowsOf(result.Records), nil
}
