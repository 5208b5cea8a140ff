// Package paging определяет абстрактные типы сортировки и постраничной
// выборки, с которыми работают методы репозитория. Пакет не зависит от
// конкретной сессии: преобразование в нативное представление выполняет
// пакет query.
package paging

import (
	"fmt"
	"strings"
)

// Direction задает направление сортировки.
type Direction string

const (
	// Asc - сортировка по возрастанию.
	Asc Direction = "ASC"
	// Desc - сортировка по убыванию.
	Desc Direction = "DESC"
)

// ParseDirection разбирает направление без учета регистра.
// Пустая строка трактуется как Asc.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", string(Asc):
		return Asc, nil
	case string(Desc):
		return Desc, nil
	default:
		return "", fmt.Errorf("неизвестное направление сортировки '%s'", s)
	}
}

// Order - одно свойство сортировки с направлением.
type Order struct {
	Property  string
	Direction Direction
}

// IsAscending сообщает, выполняется ли сортировка по возрастанию.
// Нулевое значение Direction считается возрастающим.
func (o Order) IsAscending() bool {
	return o.Direction != Desc
}

// String возвращает представление вида "name DESC".
func (o Order) String() string {
	if o.IsAscending() {
		return o.Property + " " + string(Asc)
	}
	return o.Property + " " + string(Desc)
}

// Sort - упорядоченный набор свойств сортировки. Порядок элементов задает
// приоритет при равенстве значений. Пустой Sort означает отсутствие сортировки.
type Sort []Order

// By создает сортировку по возрастанию для перечисленных свойств.
func By(properties ...string) Sort {
	return Ascending(properties...)
}

// Ascending создает сортировку по возрастанию для перечисленных свойств.
func Ascending(properties ...string) Sort {
	return ordersFor(Asc, properties)
}

// Descending создает сортировку по убыванию для перечисленных свойств.
func Descending(properties ...string) Sort {
	return ordersFor(Desc, properties)
}

func ordersFor(dir Direction, properties []string) Sort {
	s := make(Sort, 0, len(properties))
	for _, p := range properties {
		s = append(s, Order{Property: p, Direction: dir})
	}
	return s
}

// And возвращает новую сортировку, в которой к текущим свойствам добавлены
// свойства other. Исходная сортировка не изменяется.
func (s Sort) And(other Sort) Sort {
	out := make(Sort, 0, len(s)+len(other))
	out = append(out, s...)
	return append(out, other...)
}

// IsUnsorted сообщает, что сортировка пуста.
func (s Sort) IsUnsorted() bool {
	return len(s) == 0
}

// String возвращает представление вида "name ASC, age DESC".
func (s Sort) String() string {
	if s.IsUnsorted() {
		return "UNSORTED"
	}
	parts := make([]string, len(s))
	for i, o := range s {
		parts[i] = o.String()
	}
	return strings.Join(parts, ", ")
}
