package query

import (
	"context"
	"fmt"

	"github.com/x-research-team/dtx-graphrepo/paging"
	"github.com/x-research-team/dtx-graphrepo/session"
)

// Executor определяет контракт исполнения метода репозитория.
// Его реализуют Dispatcher и все обертки middleware.
type Executor interface {
	// Execute привязывает аргументы к параметрам, выбирает стратегию,
	// выполняет ровно один вызов сессии и возвращает результат в форме,
	// описанной desc. Ошибки сессии возвращаются без изменений.
	Execute(ctx context.Context, desc Descriptor, params Parameters, args ...Argument) (any, error)
}

// Dispatcher - базовая реализация Executor поверх сессии.
// Не хранит изменяемого состояния, поэтому безопасен для одновременного
// использования, если безопасна сессия.
type Dispatcher struct {
	session session.Session
}

// NewDispatcher создает исполнитель поверх сессии и оборачивает его в
// middleware: сначала логирование, метрики и трассировка, затем
// пользовательские middleware из опций.
func NewDispatcher(sess session.Session, opts ...Option) (Executor, error) {
	if sess == nil {
		return nil, fmt.Errorf("сессия не может быть nil")
	}

	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	allMiddlewares := []Middleware{
		NewLoggingMiddleware(cfg.logger),
		NewMetricsMiddleware(cfg.meterProvider),
		NewTracingMiddleware(cfg.tracerProvider),
	}
	allMiddlewares = append(allMiddlewares, cfg.middlewares...)

	return applyMiddlewares(&Dispatcher{session: sess}, allMiddlewares...), nil
}

// Execute реализует Executor.
//
// При одновременном наличии PageArg и SortArg выполняется постраничная
// выборка. Если desc.PageResult установлен, но PageArg не передан,
// выполнение идет по обычной стратегии или стратегии с сортировкой.
func (d *Dispatcher) Execute(ctx context.Context, desc Descriptor, params Parameters, args ...Argument) (any, error) {
	bound, err := params.Bind(args)
	if err != nil {
		return nil, err
	}

	c := findControl(args)
	switch c.strategy() {
	case StrategyPaged:
		return d.executePaged(ctx, desc, bound, *c.page)
	case StrategySorted:
		return d.executeSorted(ctx, desc, bound, *c.sort)
	default:
		return d.executePlain(ctx, desc, bound)
	}
}

func (d *Dispatcher) executePlain(ctx context.Context, desc Descriptor, params session.Params) (any, error) {
	switch desc.Returns {
	case ReturnNone:
		if err := d.session.Execute(ctx, desc.Query, params); err != nil {
			return nil, err
		}
		return nil, nil
	case ReturnCollection:
		if desc.Element.IsMap() {
			rows, err := d.session.QueryRows(ctx, desc.Query, params)
			if err != nil {
				return nil, err
			}
			return rows, nil
		}
		return d.query(ctx, desc, params, session.SortOrder{}, nil)
	default:
		return d.session.QueryForObject(ctx, desc.ReturnType, desc.Query, params)
	}
}

func (d *Dispatcher) executeSorted(ctx context.Context, desc Descriptor, params session.Params, sort paging.Sort) (any, error) {
	return d.query(ctx, desc, params, ConvertSort(sort), nil)
}

func (d *Dispatcher) query(ctx context.Context, desc Descriptor, params session.Params, order session.SortOrder, page *session.Pagination) (any, error) {
	result, err := d.session.Query(ctx, desc.Element, desc.Query, params, order, page)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (d *Dispatcher) executePaged(ctx context.Context, desc Descriptor, params session.Params, request paging.PageRequest) (any, error) {
	pagination := session.Pagination{Page: request.Number(), Size: request.Size()}
	result, err := d.session.Query(ctx, desc.Element, desc.Query, params, ConvertSort(request.Sort()), &pagination)
	if err != nil {
		return nil, err
	}

	content := make([]any, len(result))
	copy(content, result)

	if desc.PageResult {
		return UpdatePage(request, content), nil
	}
	return content, nil
}
