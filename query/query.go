// Package query реализует исполнение методов репозитория, объявленных
// шаблоном запроса: привязку аргументов к параметрам, выбор стратегии
// (обычная, с сортировкой, постраничная), вызов сессии и приведение
// результата к ожидаемой форме.
package query

import (
	"github.com/x-research-team/dtx-graphrepo/session"
)

// ReturnKind описывает форму значения, которую ожидает вызывающая сторона.
type ReturnKind int

const (
	// ReturnNone - метод не возвращает значения.
	ReturnNone ReturnKind = iota
	// ReturnSingle - метод возвращает одно значение, возможно отсутствующее.
	ReturnSingle
	// ReturnCollection - метод возвращает коллекцию элементов.
	ReturnCollection
)

func (k ReturnKind) String() string {
	switch k {
	case ReturnNone:
		return "none"
	case ReturnSingle:
		return "single"
	case ReturnCollection:
		return "collection"
	default:
		return "unknown"
	}
}

// Descriptor - уже разрешенные метаданные метода репозитория.
// Диспетчер только читает их.
type Descriptor struct {
	// Name - имя метода, используется в логах, метриках и трассировке.
	Name string
	// Query - шаблон запроса.
	Query string
	// Returns - объявленная форма возвращаемого значения.
	Returns ReturnKind
	// ReturnType - объявленный тип значения для ReturnSingle.
	ReturnType session.ElementType
	// Element - конкретный тип элемента результата.
	Element session.ElementType
	// PageResult - вызывающая сторона ожидает страницу (paging.Page).
	PageResult bool
}

// Method объединяет описание метода с метаданными его параметров.
type Method struct {
	Descriptor
	Parameters Parameters
}
