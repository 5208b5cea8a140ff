package query_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x-research-team/dtx-graphrepo/paging"
	"github.com/x-research-team/dtx-graphrepo/query"
	"github.com/x-research-team/dtx-graphrepo/session"
)

type user struct {
	Name string `graph:"name"`
}

const findUsers = "MATCH (u:User) WHERE u.name = $name RETURN u"

func newExecutor(t *testing.T, sess session.Session, opts ...query.Option) query.Executor {
	t.Helper()
	executor, err := query.NewDispatcher(sess, opts...)
	require.NoError(t, err)
	return executor
}

func TestNewDispatcher_NilSession(t *testing.T) {
	t.Parallel()

	_, err := query.NewDispatcher(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "сессия не может быть nil")
}

func TestDispatcher_PlainExecution(t *testing.T) {
	t.Parallel()

	params := query.Parameters{query.Named("name")}

	t.Run("метод без значения вызывает Execute", func(t *testing.T) {
		t.Parallel()
		sess := &fakeSession{}
		desc := query.Descriptor{Name: "DeleteUser", Query: "MATCH (u:User {name: $name}) DELETE u", Returns: query.ReturnNone}

		result, err := newExecutor(t, sess).Execute(context.Background(), desc, params, query.Arg("Alice"))

		require.NoError(t, err)
		assert.Nil(t, result)
		calls := sess.Calls()
		require.Len(t, calls, 1)
		assert.Equal(t, "Execute", calls[0].method)
		assert.Equal(t, desc.Query, calls[0].query)
		assert.Equal(t, session.Params{"name": "Alice"}, calls[0].params)
	})

	t.Run("коллекция отображений вызывает QueryRows", func(t *testing.T) {
		t.Parallel()
		rows := []session.Row{{"name": "Alice"}, {"name": "Bob"}}
		sess := &fakeSession{rows: rows}
		desc := query.Descriptor{Name: "UserRows", Query: findUsers, Returns: query.ReturnCollection, Element: session.MapType()}

		result, err := newExecutor(t, sess).Execute(context.Background(), desc, params, query.Arg("Alice"))

		require.NoError(t, err)
		assert.Equal(t, rows, result)
		calls := sess.Calls()
		require.Len(t, calls, 1)
		assert.Equal(t, "QueryRows", calls[0].method)
	})

	t.Run("типизированная коллекция вызывает Query без сортировки", func(t *testing.T) {
		t.Parallel()
		items := []any{user{Name: "Alice"}}
		sess := &fakeSession{items: items}
		desc := query.Descriptor{Name: "FindUsers", Query: findUsers, Returns: query.ReturnCollection, Element: session.TypeOf[user]()}

		result, err := newExecutor(t, sess).Execute(context.Background(), desc, params, query.Arg("Alice"))

		require.NoError(t, err)
		assert.Equal(t, items, result)
		calls := sess.Calls()
		require.Len(t, calls, 1)
		assert.Equal(t, "Query", calls[0].method)
		assert.Equal(t, session.TypeOf[user](), calls[0].elem)
		assert.True(t, calls[0].order.IsEmpty())
		assert.Nil(t, calls[0].page)
	})

	t.Run("одно значение вызывает QueryForObject с объявленным типом", func(t *testing.T) {
		t.Parallel()
		sess := &fakeSession{object: 3}
		desc := query.Descriptor{
			Name:       "CountUsers",
			Query:      "MATCH (u:User) WHERE u.name = $name RETURN count(u)",
			Returns:    query.ReturnSingle,
			ReturnType: session.TypeOf[int](),
			Element:    session.TypeOf[int](),
		}

		result, err := newExecutor(t, sess).Execute(context.Background(), desc, params, query.Arg("Alice"))

		require.NoError(t, err)
		assert.Equal(t, 3, result)
		calls := sess.Calls()
		require.Len(t, calls, 1)
		assert.Equal(t, "QueryForObject", calls[0].method)
		assert.Equal(t, session.TypeOf[int](), calls[0].elem)
	})

	t.Run("отсутствующее значение", func(t *testing.T) {
		t.Parallel()
		sess := &fakeSession{}
		desc := query.Descriptor{Name: "FindUser", Query: findUsers, Returns: query.ReturnSingle, ReturnType: session.TypeOf[user]()}

		result, err := newExecutor(t, sess).Execute(context.Background(), desc, params, query.Arg("Nobody"))

		require.NoError(t, err)
		assert.Nil(t, result)
	})
}

func TestDispatcher_SortedExecution(t *testing.T) {
	t.Parallel()

	items := []any{user{Name: "Bob"}, user{Name: "Alice"}}
	sess := &fakeSession{items: items}
	desc := query.Descriptor{Name: "AllUsers", Query: "MATCH (u:User) RETURN u", Returns: query.ReturnCollection, Element: session.TypeOf[user](), PageResult: true}
	params := query.Parameters{query.SortSlot()}

	result, err := newExecutor(t, sess).Execute(context.Background(), desc, params,
		query.Sorted(paging.Descending("u.name").And(paging.By("u.age"))))

	require.NoError(t, err)
	assert.Equal(t, items, result, "результат сортировки возвращается без обертки в страницу")

	calls := sess.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "Query", calls[0].method)
	assert.Empty(t, calls[0].params, "управляющие аргументы не попадают в параметры")
	assert.Nil(t, calls[0].page)
	assert.Equal(t, []session.SortClause{
		{Property: "u.name", Direction: session.Descending},
		{Property: "u.age"},
	}, calls[0].order.Clauses())
}

func TestDispatcher_PagedExecution(t *testing.T) {
	t.Parallel()

	params := query.Parameters{query.Named("label"), query.PageSlot()}

	t.Run("страница с оценкой общего количества", func(t *testing.T) {
		t.Parallel()
		sess := &fakeSession{items: []any{user{Name: "a"}, user{Name: "b"}}}
		desc := query.Descriptor{Name: "PageUsers", Query: findUsers, Returns: query.ReturnCollection, Element: session.TypeOf[user](), PageResult: true}
		request := paging.MustPageRequest(0, 2, paging.By("u.name"))

		result, err := newExecutor(t, sess).Execute(context.Background(), desc, params, query.Arg("User"), query.Paged(request))

		require.NoError(t, err)
		page, ok := result.(paging.Page[any])
		require.True(t, ok, "ожидалась paging.Page[any], получено %T", result)
		assert.Equal(t, 4, page.Total(), "полная страница предполагает еще одну")
		assert.Equal(t, []any{user{Name: "a"}, user{Name: "b"}}, page.Content())
		assert.Equal(t, request, page.Request())
		assert.True(t, page.HasNext())

		calls := sess.Calls()
		require.Len(t, calls, 1)
		assert.Equal(t, session.Params{"label": "User"}, calls[0].params)
		require.NotNil(t, calls[0].page)
		assert.Equal(t, session.Pagination{Page: 0, Size: 2}, *calls[0].page)
		assert.Equal(t, []session.SortClause{{Property: "u.name"}}, calls[0].order.Clauses())
	})

	t.Run("последняя страница дает точное количество", func(t *testing.T) {
		t.Parallel()
		sess := &fakeSession{items: []any{1, 2, 3, 4}}
		desc := query.Descriptor{Name: "PageNumbers", Query: "RETURN 1", Returns: query.ReturnCollection, Element: session.TypeOf[int](), PageResult: true}

		result, err := newExecutor(t, sess).Execute(context.Background(), desc, params, query.Arg("x"), query.Paged(paging.MustPageRequest(2, 10, nil)))

		require.NoError(t, err)
		page := result.(paging.Page[any])
		assert.Equal(t, 24, page.Total())
		assert.True(t, page.IsLast())
	})

	t.Run("коллекция без обертки, если страница не ожидается", func(t *testing.T) {
		t.Parallel()
		items := []any{user{Name: "a"}}
		sess := &fakeSession{items: items}
		desc := query.Descriptor{Name: "ListUsers", Query: findUsers, Returns: query.ReturnCollection, Element: session.TypeOf[user]()}

		result, err := newExecutor(t, sess).Execute(context.Background(), desc, params, query.Arg("User"), query.Paged(paging.MustPageRequest(0, 5, nil)))

		require.NoError(t, err)
		assert.Equal(t, items, result)
		calls := sess.Calls()
		require.Len(t, calls, 1)
		require.NotNil(t, calls[0].page)
	})

	t.Run("результат копируется в новую последовательность", func(t *testing.T) {
		t.Parallel()
		items := []any{1, 2}
		sess := &fakeSession{items: items}
		desc := query.Descriptor{Name: "Copy", Query: "RETURN 1", Returns: query.ReturnCollection, Element: session.TypeOf[int]()}

		result, err := newExecutor(t, sess).Execute(context.Background(), desc, params, query.Arg("x"), query.Paged(paging.MustPageRequest(0, 5, nil)))

		require.NoError(t, err)
		got := result.([]any)
		got[0] = 100
		assert.Equal(t, 1, items[0], "результат сессии не изменяется")
	})
}

func TestDispatcher_StrategySelection(t *testing.T) {
	t.Parallel()

	request := paging.MustPageRequest(1, 3, nil)
	cases := []struct {
		name     string
		args     []query.Argument
		strategy query.Strategy
		paged    bool
		sorted   bool
	}{
		{name: "без управляющих аргументов", args: query.Args("a", "b"), strategy: query.StrategyPlain},
		{name: "только сортировка", args: []query.Argument{query.Arg("a"), query.Sorted(paging.By("x"))}, strategy: query.StrategySorted, sorted: true},
		{name: "только страница", args: []query.Argument{query.Arg("a"), query.Paged(request)}, strategy: query.StrategyPaged, paged: true},
		{name: "страница важнее сортировки", args: []query.Argument{query.Sorted(paging.By("x")), query.Paged(request)}, strategy: query.StrategyPaged, paged: true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.strategy, query.StrategyOf(tc.args))

			sess := &fakeSession{}
			desc := query.Descriptor{Name: "Strategy", Query: "RETURN 1", Returns: query.ReturnCollection, Element: session.TypeOf[int]()}
			params := make(query.Parameters, len(tc.args))

			_, err := newExecutor(t, sess).Execute(context.Background(), desc, params, tc.args...)
			require.NoError(t, err)

			calls := sess.Calls()
			require.Len(t, calls, 1)
			assert.Equal(t, "Query", calls[0].method)
			assert.Equal(t, tc.paged, calls[0].page != nil)
			assert.Equal(t, tc.sorted, !calls[0].order.IsEmpty())
		})
	}
}

func TestDispatcher_PageResultWithoutPageArgument(t *testing.T) {
	t.Parallel()

	items := []any{user{Name: "a"}}
	sess := &fakeSession{items: items}
	desc := query.Descriptor{Name: "Misused", Query: findUsers, Returns: query.ReturnCollection, Element: session.TypeOf[user](), PageResult: true}

	result, err := newExecutor(t, sess).Execute(context.Background(), desc, query.Parameters{query.Named("name")}, query.Arg("a"))

	require.NoError(t, err)
	assert.Equal(t, items, result, "без PageArg выполняется обычная стратегия")
}

func TestDispatcher_SessionErrorPropagated(t *testing.T) {
	t.Parallel()

	sessionErr := errors.New("connection refused")
	descs := []query.Descriptor{
		{Name: "None", Query: "q", Returns: query.ReturnNone},
		{Name: "Rows", Query: "q", Returns: query.ReturnCollection, Element: session.MapType()},
		{Name: "Typed", Query: "q", Returns: query.ReturnCollection, Element: session.TypeOf[user]()},
		{Name: "Single", Query: "q", Returns: query.ReturnSingle, ReturnType: session.TypeOf[user]()},
	}

	for _, desc := range descs {
		sess := &fakeSession{err: sessionErr}
		result, err := newExecutor(t, sess).Execute(context.Background(), desc, nil)
		assert.Nil(t, result, desc.Name)
		assert.Same(t, sessionErr, err, "ошибка сессии для %s должна возвращаться без изменений", desc.Name)
	}

	sess := &fakeSession{err: sessionErr}
	desc := query.Descriptor{Name: "Paged", Query: "q", Returns: query.ReturnCollection, Element: session.TypeOf[user](), PageResult: true}
	result, err := newExecutor(t, sess).Execute(context.Background(), desc, query.Parameters{query.PageSlot()}, query.Paged(paging.MustPageRequest(0, 1, nil)))
	assert.Nil(t, result)
	assert.Same(t, sessionErr, err)
}

func TestDispatcher_UndeclaredParameter(t *testing.T) {
	t.Parallel()

	sess := &fakeSession{}
	desc := query.Descriptor{Name: "TooMany", Query: "q", Returns: query.ReturnNone}

	_, err := newExecutor(t, sess).Execute(context.Background(), desc, query.Parameters{query.Named("a")}, query.Args(1, 2)...)

	require.ErrorIs(t, err, query.ErrUndeclaredParameter)
	assert.Empty(t, sess.Calls(), "при ошибке привязки сессия не вызывается")
}
