package query

import (
	"errors"
	"fmt"

	"github.com/x-research-team/dtx-graphrepo/paging"
	"github.com/x-research-team/dtx-graphrepo/session"
)

// ErrUnexpectedResult возвращается, если результат исполнения не имеет
// ожидаемой формы или тип элемента не совпадает.
var ErrUnexpectedResult = errors.New("неожиданная форма результата")

// Collect приводит результат исполнения-коллекции к []T.
// Принимает []any, []session.Row и paging.Page[any].
func Collect[T any](result any) ([]T, error) {
	var items []any
	switch v := result.(type) {
	case nil:
		return nil, nil
	case []T:
		return v, nil
	case []any:
		items = v
	case []session.Row:
		items = make([]any, len(v))
		for i, row := range v {
			items[i] = row
		}
	case paging.Page[any]:
		items = v.Content()
	default:
		return nil, fmt.Errorf("%w: ожидалась коллекция, получено %T", ErrUnexpectedResult, result)
	}

	out := make([]T, 0, len(items))
	for i, item := range items {
		typed, ok := item.(T)
		if !ok {
			var zero T
			return nil, fmt.Errorf("%w: элемент %d имеет тип %T вместо %T", ErrUnexpectedResult, i, item, zero)
		}
		out = append(out, typed)
	}
	return out, nil
}

// Single приводит результат исполнения с одним значением к T.
// Второе значение false означает, что результат отсутствует.
func Single[T any](result any) (T, bool, error) {
	var zero T
	if result == nil {
		return zero, false, nil
	}
	typed, ok := result.(T)
	if !ok {
		return zero, false, fmt.Errorf("%w: получено %T вместо %T", ErrUnexpectedResult, result, zero)
	}
	return typed, true, nil
}

// AsPage приводит постраничный результат исполнения к paging.Page[T].
func AsPage[T any](result any) (paging.Page[T], error) {
	page, ok := result.(paging.Page[any])
	if !ok {
		return paging.Page[T]{}, fmt.Errorf("%w: ожидалась страница, получено %T", ErrUnexpectedResult, result)
	}
	content, err := Collect[T](page.Content())
	if err != nil {
		return paging.Page[T]{}, err
	}
	return paging.NewPage(content, page.Request(), page.Total()), nil
}
