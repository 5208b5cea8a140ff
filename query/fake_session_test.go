package query_test

import (
	"context"
	"sync"

	"github.com/x-research-team/dtx-graphrepo/session"
)

// Вызов сессии, записанный тестовой сессией.
type sessionCall struct {
	method string
	query  string
	params session.Params
	elem   session.ElementType
	order  session.SortOrder
	page   *session.Pagination
}

// Тестовая сессия: записывает вызовы и возвращает заранее заданные значения.
type fakeSession struct {
	mu     sync.Mutex
	calls  []sessionCall
	rows   []session.Row
	items  []any
	object any
	err    error
}

func (s *fakeSession) record(c sessionCall) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, c)
}

func (s *fakeSession) Calls() []sessionCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]sessionCall, len(s.calls))
	copy(out, s.calls)
	return out
}

func (s *fakeSession) Execute(ctx context.Context, query string, params session.Params) error {
	s.record(sessionCall{method: "Execute", query: query, params: params})
	return s.err
}

func (s *fakeSession) QueryRows(ctx context.Context, query string, params session.Params) ([]session.Row, error) {
	s.record(sessionCall{method: "QueryRows", query: query, params: params})
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

func (s *fakeSession) Query(ctx context.Context, elem session.ElementType, query string, params session.Params, order session.SortOrder, page *session.Pagination) ([]any, error) {
	s.record(sessionCall{method: "Query", query: query, params: params, elem: elem, order: order, page: page})
	if s.err != nil {
		return nil, s.err
	}
	return s.items, nil
}

func (s *fakeSession) QueryForObject(ctx context.Context, typ session.ElementType, query string, params session.Params) (any, error) {
	s.record(sessionCall{method: "QueryForObject", query: query, params: params, elem: typ})
	if s.err != nil {
		return nil, s.err
	}
	return s.object, nil
}
