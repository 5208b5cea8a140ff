// Package session определяет контракт сессии графовой базы данных, которой
// пользуется диспетчер запросов, а также нативные для сессии представления
// сортировки, постраничной выборки и типа результата.
//
// Конкретные реализации находятся в подпакетах neo4j, postgres и sqlite.
package session

import (
	"context"
	"errors"
	"sort"
	"strconv"
)

// ErrInvalidSortProperty возвращается, если имя свойства сортировки нельзя
// безопасно подставить в текст запроса.
var ErrInvalidSortProperty = errors.New("недопустимое имя свойства сортировки")

// Row - одна строка результата в виде отображения "столбец -> значение".
type Row = map[string]any

// Params - отображение ключей параметров запроса на значения аргументов.
// Ключ именованного параметра - его имя, позиционного - индекс в виде строки.
type Params map[string]any

// Keys возвращает ключи в отсортированном порядке.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SQLName возвращает имя параметра, пригодное для SQL-драйверов:
// позиционные ключи ("0", "1") получают префикс "p" ("p0", "p1").
func SQLName(key string) string {
	if _, err := strconv.Atoi(key); err == nil {
		return "p" + key
	}
	return key
}

// SQLNamed возвращает копию параметров, ключи которой приведены через SQLName.
func (p Params) SQLNamed() map[string]any {
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[SQLName(k)] = v
	}
	return out
}

// Session - внешний исполнитель запросов. Реализация сама отвечает за
// соединения, транзакции, отмену и таймауты.
type Session interface {
	// Execute выполняет запрос с побочным эффектом, не возвращающий результата.
	Execute(ctx context.Context, query string, params Params) error

	// QueryRows выполняет запрос и возвращает строки без приведения типов.
	QueryRows(ctx context.Context, query string, params Params) ([]Row, error)

	// Query выполняет запрос и возвращает элементы, приведенные к elem.
	// Пустой order означает отсутствие сортировки, nil page - отсутствие
	// постраничной выборки.
	Query(ctx context.Context, elem ElementType, query string, params Params, order SortOrder, page *Pagination) ([]any, error)

	// QueryForObject выполняет запрос и возвращает первый элемент,
	// приведенный к typ, или nil, если результат пуст.
	QueryForObject(ctx context.Context, typ ElementType, query string, params Params) (any, error)
}
