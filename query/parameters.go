package query

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/x-research-team/dtx-graphrepo/session"
)

var (
	// ErrUndeclaredParameter возвращается, если для позиции аргумента
	// не объявлен параметр метода.
	ErrUndeclaredParameter = errors.New("параметр метода не объявлен")
	// ErrConflictingControlSlots возвращается, если метод объявляет
	// одновременно параметр сортировки и параметр страницы.
	ErrConflictingControlSlots = errors.New("метод не может объявлять одновременно параметр сортировки и параметр страницы")
)

// ParameterKind - назначение параметра метода.
type ParameterKind int

const (
	// KindValue - параметр с данными запроса.
	KindValue ParameterKind = iota
	// KindSort - параметр сортировки.
	KindSort
	// KindPage - параметр страницы.
	KindPage
)

// Parameter - метаданные одного параметра метода.
// Непустое Name делает параметр именованным.
type Parameter struct {
	Name string
	Kind ParameterKind
}

// IsNamed сообщает, привязывается ли параметр по имени.
func (p Parameter) IsNamed() bool {
	return p.Name != ""
}

// Named объявляет именованный параметр.
func Named(name string) Parameter {
	return Parameter{Name: name}
}

// Positional объявляет позиционный параметр.
func Positional() Parameter {
	return Parameter{}
}

// SortSlot объявляет параметр сортировки.
func SortSlot() Parameter {
	return Parameter{Kind: KindSort}
}

// PageSlot объявляет параметр страницы.
func PageSlot() Parameter {
	return Parameter{Kind: KindPage}
}

// Parameters - метаданные параметров метода по позициям.
type Parameters []Parameter

// Parameter возвращает метаданные параметра в позиции i.
func (ps Parameters) Parameter(i int) (Parameter, error) {
	if i < 0 || i >= len(ps) {
		return Parameter{}, fmt.Errorf("%w: позиция %d, объявлено %d", ErrUndeclaredParameter, i, len(ps))
	}
	return ps[i], nil
}

// SortIndex возвращает позицию параметра сортировки или -1.
func (ps Parameters) SortIndex() int {
	return ps.indexOf(KindSort)
}

// PageIndex возвращает позицию параметра страницы или -1.
func (ps Parameters) PageIndex() int {
	return ps.indexOf(KindPage)
}

func (ps Parameters) indexOf(kind ParameterKind) int {
	for i, p := range ps {
		if p.Kind == kind {
			return i
		}
	}
	return -1
}

// Validate проверяет, что метод не объявляет одновременно параметр
// сортировки и параметр страницы.
func (ps Parameters) Validate() error {
	if ps.SortIndex() >= 0 && ps.PageIndex() >= 0 {
		return ErrConflictingControlSlots
	}
	return nil
}

// Bind строит отображение параметров запроса. Управляющие аргументы
// пропускаются. Именованный параметр привязывается по имени, остальные -
// по позиции в виде строки. Повторяющийся ключ перезаписывается последним
// значением.
func (ps Parameters) Bind(args []Argument) (session.Params, error) {
	params := make(session.Params, len(args))
	for i, a := range args {
		var value any
		switch v := a.(type) {
		case PageArg, SortArg:
			continue
		case ValueArg:
			value = v.Value
		case nil:
		}

		p, err := ps.Parameter(i)
		if err != nil {
			return nil, err
		}
		if p.IsNamed() {
			params[p.Name] = value
		} else {
			params[strconv.Itoa(i)] = value
		}
	}
	return params, nil
}
