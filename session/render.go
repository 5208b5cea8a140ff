package session

import "strings"

// Dialect определяет синтаксис постраничной выборки языка запросов.
type Dialect int

const (
	// DialectCypher - " SKIP n LIMIT m".
	DialectCypher Dialect = iota
	// DialectSQL - " LIMIT m OFFSET n".
	DialectSQL
)

// Render дописывает к тексту запроса порядок сортировки и постраничную
// выборку. Завершающая точка с запятой и пробелы удаляются.
func Render(dialect Dialect, query string, order SortOrder, page *Pagination) (string, error) {
	clause, err := order.Clause()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(strings.TrimSpace(query), ";"))
	b.WriteString(clause)
	if page != nil {
		switch dialect {
		case DialectSQL:
			b.WriteString(page.SQL())
		default:
			b.WriteString(page.Cypher())
		}
	}
	return b.String(), nil
}

// First приводит первую строку к типу typ. Для пустого результата
// возвращается nil.
func First(typ ElementType, rows []Row) (any, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	return typ.Decode(rows[0])
}
