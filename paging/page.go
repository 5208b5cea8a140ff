package paging

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrInvalidPageNumber возвращается для отрицательного номера страницы.
	ErrInvalidPageNumber = errors.New("номер страницы не может быть отрицательным")
	// ErrInvalidPageSize возвращается для размера страницы меньше единицы.
	ErrInvalidPageSize = errors.New("размер страницы должен быть больше нуля")
)

// PageRequest описывает одну страницу большего результата: номер страницы
// (с нуля), ее размер и сортировку. Значение неизменяемо.
type PageRequest struct {
	page int
	size int
	sort Sort
}

// NewPageRequest создает запрос страницы. Номер страницы отсчитывается с нуля.
func NewPageRequest(page, size int, sort Sort) (PageRequest, error) {
	if page < 0 {
		return PageRequest{}, fmt.Errorf("%w: %d", ErrInvalidPageNumber, page)
	}
	if size < 1 {
		return PageRequest{}, fmt.Errorf("%w: %d", ErrInvalidPageSize, size)
	}
	return PageRequest{page: page, size: size, sort: sort}, nil
}

// MustPageRequest аналогичен NewPageRequest, но паникует при ошибке.
func MustPageRequest(page, size int, sort Sort) PageRequest {
	r, err := NewPageRequest(page, size, sort)
	if err != nil {
		panic(err)
	}
	return r
}

// Number возвращает номер страницы.
func (r PageRequest) Number() int { return r.page }

// Size возвращает размер страницы.
func (r PageRequest) Size() int { return r.size }

// Offset возвращает смещение первого элемента страницы.
func (r PageRequest) Offset() int { return r.page * r.size }

// Sort возвращает сортировку запроса.
func (r PageRequest) Sort() Sort { return r.sort }

// WithSort возвращает копию запроса с другой сортировкой.
func (r PageRequest) WithSort(sort Sort) PageRequest {
	r.sort = sort
	return r
}

// Next возвращает запрос следующей страницы.
func (r PageRequest) Next() PageRequest {
	r.page++
	return r
}

// Previous возвращает запрос предыдущей страницы или первой, если текущая
// страница первая.
func (r PageRequest) Previous() PageRequest {
	if r.page == 0 {
		return r
	}
	r.page--
	return r
}

// First возвращает запрос первой страницы.
func (r PageRequest) First() PageRequest {
	r.page = 0
	return r
}

// HasPrevious сообщает, есть ли страница перед текущей.
func (r PageRequest) HasPrevious() bool {
	return r.page > 0
}

func (r PageRequest) String() string {
	return fmt.Sprintf("Page request [number: %d, size %d, sort: %s]", r.page, r.size, r.sort)
}

// Page - материализованная страница результата вместе с общим количеством
// элементов. Общее количество может быть оценкой: см. query.UpdatePage.
type Page[T any] struct {
	content []T
	request PageRequest
	total   int
}

// NewPage создает страницу.
func NewPage[T any](content []T, request PageRequest, total int) Page[T] {
	return Page[T]{content: content, request: request, total: total}
}

// Content возвращает элементы страницы.
func (p Page[T]) Content() []T { return p.content }

// Request возвращает запрос, по которому получена страница.
func (p Page[T]) Request() PageRequest { return p.request }

// Total возвращает общее количество элементов.
func (p Page[T]) Total() int { return p.total }

// Number возвращает номер страницы.
func (p Page[T]) Number() int { return p.request.Number() }

// Size возвращает запрошенный размер страницы.
func (p Page[T]) Size() int { return p.request.Size() }

// NumberOfElements возвращает фактическое количество элементов на странице.
func (p Page[T]) NumberOfElements() int { return len(p.content) }

// TotalPages возвращает количество страниц исходя из Total.
func (p Page[T]) TotalPages() int {
	if p.request.size == 0 {
		return 1
	}
	return (p.total + p.request.size - 1) / p.request.size
}

// HasNext сообщает, есть ли следующая страница.
func (p Page[T]) HasNext() bool {
	return p.Number()+1 < p.TotalPages()
}

// HasPrevious сообщает, есть ли предыдущая страница.
func (p Page[T]) HasPrevious() bool {
	return p.request.HasPrevious()
}

// IsFirst сообщает, является ли страница первой.
func (p Page[T]) IsFirst() bool {
	return !p.HasPrevious()
}

// IsLast сообщает, является ли страница последней.
func (p Page[T]) IsLast() bool {
	return !p.HasNext()
}

// NextRequest возвращает запрос следующей страницы и false, если ее нет.
func (p Page[T]) NextRequest() (PageRequest, bool) {
	if !p.HasNext() {
		return PageRequest{}, false
	}
	return p.request.Next(), true
}

// PreviousRequest возвращает запрос предыдущей страницы и false, если ее нет.
func (p Page[T]) PreviousRequest() (PageRequest, bool) {
	if !p.HasPrevious() {
		return PageRequest{}, false
	}
	return p.request.Previous(), true
}

// MapPage преобразует элементы страницы, сохраняя запрос и общее количество.
func MapPage[T, U any](p Page[T], fn func(T) U) Page[U] {
	content := make([]U, len(p.content))
	for i, v := range p.content {
		content[i] = fn(v)
	}
	return Page[U]{content: content, request: p.request, total: p.total}
}

type pageJSON[T any] struct {
	Content          []T      `json:"content"`
	Number           int      `json:"number"`
	Size             int      `json:"size"`
	NumberOfElements int      `json:"numberOfElements"`
	TotalElements    int      `json:"totalElements"`
	TotalPages       int      `json:"totalPages"`
	HasNext          bool     `json:"hasNext"`
	Sort             []string `json:"sort,omitempty"`
}

// MarshalJSON сериализует страницу вместе с навигационными полями.
func (p Page[T]) MarshalJSON() ([]byte, error) {
	content := p.content
	if content == nil {
		content = []T{}
	}
	var sort []string
	for _, o := range p.request.sort {
		sort = append(sort, o.String())
	}
	return json.Marshal(pageJSON[T]{
		Content:          content,
		Number:           p.Number(),
		Size:             p.Size(),
		NumberOfElements: p.NumberOfElements(),
		TotalElements:    p.total,
		TotalPages:       p.TotalPages(),
		HasNext:          p.HasNext(),
		Sort:             sort,
	})
}
