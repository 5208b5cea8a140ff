package session

import (
	"fmt"
	"regexp"
	"strings"
)

// SortDirection - нативный маркер направления сортировки.
// Пустое значение означает порядок по умолчанию (по возрастанию).
type SortDirection string

// Descending - явный маркер сортировки по убыванию.
const Descending SortDirection = "DESC"

// SortClause - одно свойство нативного порядка сортировки.
type SortClause struct {
	Property  string
	Direction SortDirection
}

func (c SortClause) String() string {
	if c.Direction == "" {
		return c.Property
	}
	return c.Property + " " + string(c.Direction)
}

// SortOrder - нативный порядок сортировки. Нулевое значение пригодно к
// использованию и означает отсутствие сортировки.
type SortOrder struct {
	clauses []SortClause
}

// Add добавляет свойства с порядком по умолчанию.
func (o *SortOrder) Add(properties ...string) *SortOrder {
	for _, p := range properties {
		o.clauses = append(o.clauses, SortClause{Property: p})
	}
	return o
}

// AddDirection добавляет свойства с явным направлением.
func (o *SortOrder) AddDirection(dir SortDirection, properties ...string) *SortOrder {
	for _, p := range properties {
		o.clauses = append(o.clauses, SortClause{Property: p, Direction: dir})
	}
	return o
}

// Clauses возвращает копию элементов порядка.
func (o SortOrder) Clauses() []SortClause {
	out := make([]SortClause, len(o.clauses))
	copy(out, o.clauses)
	return out
}

// Len возвращает количество элементов порядка.
func (o SortOrder) Len() int { return len(o.clauses) }

// IsEmpty сообщает, что сортировка не задана.
func (o SortOrder) IsEmpty() bool { return len(o.clauses) == 0 }

var propertyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// Validate проверяет, что каждое свойство - идентификатор или путь из
// идентификаторов через точку.
func (o SortOrder) Validate() error {
	for _, c := range o.clauses {
		if !propertyPattern.MatchString(c.Property) {
			return fmt.Errorf("%w: '%s'", ErrInvalidSortProperty, c.Property)
		}
	}
	return nil
}

// Clause возвращает фрагмент " ORDER BY ..." для подстановки в конец запроса
// или пустую строку для пустого порядка. Синтаксис одинаков для Cypher и SQL.
func (o SortOrder) Clause() (string, error) {
	if o.IsEmpty() {
		return "", nil
	}
	if err := o.Validate(); err != nil {
		return "", err
	}
	parts := make([]string, len(o.clauses))
	for i, c := range o.clauses {
		parts[i] = c.String()
	}
	return " ORDER BY " + strings.Join(parts, ", "), nil
}

func (o SortOrder) String() string {
	s, err := o.Clause()
	if err != nil {
		return err.Error()
	}
	return strings.TrimSpace(s)
}

// Pagination - нативная директива постраничной выборки.
type Pagination struct {
	Page int
	Size int
}

// Offset возвращает количество пропускаемых элементов.
func (p Pagination) Offset() int {
	return p.Page * p.Size
}

// Cypher возвращает фрагмент " SKIP n LIMIT m".
func (p Pagination) Cypher() string {
	return fmt.Sprintf(" SKIP %d LIMIT %d", p.Offset(), p.Size)
}

// SQL возвращает фрагмент " LIMIT m OFFSET n".
func (p Pagination) SQL() string {
	return fmt.Sprintf(" LIMIT %d OFFSET %d", p.Size, p.Offset())
}
