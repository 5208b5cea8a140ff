package query

import (
	"github.com/x-research-team/dtx-graphrepo/paging"
	"github.com/x-research-team/dtx-graphrepo/session"
)

// ConvertSort преобразует сортировку в нативный порядок сессии с тем же
// порядком свойств. Для пустой сортировки возвращается пустой порядок.
func ConvertSort(sort paging.Sort) session.SortOrder {
	var order session.SortOrder
	for _, o := range sort {
		if o.IsAscending() {
			order.Add(o.Property)
		} else {
			order.AddDirection(session.Descending, o.Property)
		}
	}
	return order
}

// UpdatePage оборачивает результаты в страницу, оценивая общее количество
// элементов без отдельного запроса подсчета.
//
// Если страница заполнена полностью, предполагается, что за ней есть еще
// как минимум одна полная страница: total = offset + n + size. Иначе
// страница последняя и total = offset + n точно. Каждая следующая страница
// уточняет оценку, и на последней она совпадает с реальным количеством.
func UpdatePage[T any](request paging.PageRequest, results []T) paging.Page[T] {
	n := len(results)
	size := request.Size()
	total := request.Offset() + n
	if n == size {
		total += size
	}
	return paging.NewPage(results, request, total)
}
