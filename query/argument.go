package query

import (
	"github.com/x-research-team/dtx-graphrepo/paging"
)

// Argument - аргумент вызова метода. Набор вариантов закрыт:
// ValueArg, SortArg и PageArg.
type Argument interface {
	argument()
}

// ValueArg - аргумент с данными запроса.
type ValueArg struct {
	Value any
}

// SortArg - управляющий аргумент сортировки.
type SortArg struct {
	Sort paging.Sort
}

// PageArg - управляющий аргумент постраничной выборки.
type PageArg struct {
	Request paging.PageRequest
}

func (ValueArg) argument() {}
func (SortArg) argument()  {}
func (PageArg) argument()  {}

// Arg оборачивает значение параметра запроса.
func Arg(v any) Argument { return ValueArg{Value: v} }

// Sorted оборачивает сортировку.
func Sorted(s paging.Sort) Argument { return SortArg{Sort: s} }

// Paged оборачивает запрос страницы.
func Paged(r paging.PageRequest) Argument { return PageArg{Request: r} }

// Args оборачивает значения параметров запроса.
func Args(values ...any) []Argument {
	out := make([]Argument, len(values))
	for i, v := range values {
		out[i] = Arg(v)
	}
	return out
}

// Strategy - способ исполнения метода.
type Strategy int

const (
	// StrategyPlain - без сортировки и постраничной выборки.
	StrategyPlain Strategy = iota
	// StrategySorted - с сортировкой.
	StrategySorted
	// StrategyPaged - постраничная выборка.
	StrategyPaged
)

func (s Strategy) String() string {
	switch s {
	case StrategySorted:
		return "sorted"
	case StrategyPaged:
		return "paged"
	default:
		return "plain"
	}
}

// control - найденные среди аргументов управляющие значения.
type control struct {
	page *paging.PageRequest
	sort *paging.Sort
}

func (c control) strategy() Strategy {
	switch {
	case c.page != nil:
		return StrategyPaged
	case c.sort != nil:
		return StrategySorted
	default:
		return StrategyPlain
	}
}

// findControl возвращает первый PageArg и первый SortArg среди аргументов.
func findControl(args []Argument) control {
	var c control
	for _, a := range args {
		switch v := a.(type) {
		case PageArg:
			if c.page == nil {
				r := v.Request
				c.page = &r
			}
		case SortArg:
			if c.sort == nil {
				s := v.Sort
				c.sort = &s
			}
		}
	}
	return c
}

// StrategyOf определяет стратегию исполнения по аргументам. Если среди
// аргументов одновременно есть PageArg и SortArg, выбирается постраничная
// выборка, а SortArg игнорируется.
func StrategyOf(args []Argument) Strategy {
	return findControl(args).strategy()
}
