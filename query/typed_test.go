package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x-research-team/dtx-graphrepo/paging"
	"github.com/x-research-team/dtx-graphrepo/query"
	"github.com/x-research-team/dtx-graphrepo/session"
)

func TestCollect(t *testing.T) {
	t.Parallel()

	t.Run("последовательность элементов", func(t *testing.T) {
		t.Parallel()
		users, err := query.Collect[user]([]any{user{Name: "a"}, user{Name: "b"}})
		require.NoError(t, err)
		assert.Equal(t, []user{{Name: "a"}, {Name: "b"}}, users)
	})

	t.Run("строки без приведения", func(t *testing.T) {
		t.Parallel()
		rows, err := query.Collect[session.Row]([]session.Row{{"a": 1}})
		require.NoError(t, err)
		assert.Equal(t, []session.Row{{"a": 1}}, rows)
	})

	t.Run("содержимое страницы", func(t *testing.T) {
		t.Parallel()
		page := paging.NewPage([]any{1, 2}, paging.MustPageRequest(0, 2, nil), 4)
		numbers, err := query.Collect[int](page)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2}, numbers)
	})

	t.Run("nil результат", func(t *testing.T) {
		t.Parallel()
		numbers, err := query.Collect[int](nil)
		require.NoError(t, err)
		assert.Nil(t, numbers)
	})

	t.Run("элемент другого типа", func(t *testing.T) {
		t.Parallel()
		_, err := query.Collect[int]([]any{1, "2"})
		require.ErrorIs(t, err, query.ErrUnexpectedResult)
	})

	t.Run("не коллекция", func(t *testing.T) {
		t.Parallel()
		_, err := query.Collect[int](42)
		require.ErrorIs(t, err, query.ErrUnexpectedResult)
	})
}

func TestSingle(t *testing.T) {
	t.Parallel()

	v, ok, err := query.Single[string]("x")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "x", v)

	v, ok, err = query.Single[string](nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)

	_, _, err = query.Single[string](1)
	require.ErrorIs(t, err, query.ErrUnexpectedResult)
}

func TestAsPage(t *testing.T) {
	t.Parallel()

	request := paging.MustPageRequest(1, 2, paging.By("name"))
	raw := paging.NewPage([]any{user{Name: "c"}}, request, 3)

	page, err := query.AsPage[user](raw)

	require.NoError(t, err)
	assert.Equal(t, []user{{Name: "c"}}, page.Content())
	assert.Equal(t, 3, page.Total())
	assert.Equal(t, request, page.Request())

	_, err = query.AsPage[user]([]any{user{}})
	require.ErrorIs(t, err, query.ErrUnexpectedResult)
}
