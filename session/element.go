package session

import (
	"fmt"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/goccy/go-reflect"
)

// tagName - имя struct-тега, задающего имя свойства узла или столбца.
const tagName = "graph"

// ElementType описывает тип, к которому приводится каждый элемент результата.
// Нулевое значение означает "без приведения": элементы возвращаются как есть.
type ElementType struct {
	typ reflect.Type
}

// TypeOf возвращает описание типа T.
func TypeOf[T any]() ElementType {
	return ElementType{typ: reflect.TypeOf((*T)(nil)).Elem()}
}

// MapType возвращает описание типа map[string]any - строки без приведения.
func MapType() ElementType {
	return TypeOf[map[string]any]()
}

// IsZero сообщает, что тип не задан.
func (e ElementType) IsZero() bool {
	return e.typ == nil
}

// IsMap сообщает, является ли тип отображением со строковыми ключами.
func (e ElementType) IsMap() bool {
	return e.typ != nil && e.typ.Kind() == reflect.Map && e.typ.Key().Kind() == reflect.String
}

// Name возвращает имя типа для логов и сообщений об ошибках.
func (e ElementType) Name() string {
	if e.typ == nil {
		return "any"
	}
	return e.typ.String()
}

func (e ElementType) String() string {
	return e.Name()
}

func (e ElementType) isStruct() bool {
	t := e.typ
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

// Decode приводит значение, полученное от базы данных, к описываемому типу.
//
// Строка результата обрабатывается так: для отображения она возвращается
// целиком; для структуры берется значение единственного столбца, если оно
// уже имеет нужный тип (например, time.Time) или является отображением
// (узел графа), иначе декодируется сама строка; для скалярного типа
// берется значение единственного столбца.
func (e ElementType) Decode(v any) (any, error) {
	if e.typ == nil || e.typ.Kind() == reflect.Interface {
		return v, nil
	}

	src := v
	if row, ok := v.(Row); ok {
		src = e.source(row)
	}
	if src == nil {
		return nil, nil
	}

	target := reflect.New(e.typ)
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target.Interface(),
		TagName:          tagName,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("не удалось создать декодер для типа %s: %w", e.Name(), err)
	}
	if err := dec.Decode(src); err != nil {
		return nil, fmt.Errorf("не удалось привести значение к типу %s: %w", e.Name(), err)
	}
	return target.Elem().Interface(), nil
}

func (e ElementType) source(row Row) any {
	if e.IsMap() || len(row) != 1 {
		return row
	}
	for _, only := range row {
		if !e.isStruct() {
			return only
		}
		if only != nil && reflect.TypeOf(only).AssignableTo(e.typ) {
			return only
		}
		if props, ok := only.(map[string]any); ok {
			return props
		}
	}
	return row
}

// DecodeAll приводит каждую строку к описываемому типу, сохраняя порядок.
func (e ElementType) DecodeAll(rows []Row) ([]any, error) {
	out := make([]any, 0, len(rows))
	for i, row := range rows {
		v, err := e.Decode(row)
		if err != nil {
			return nil, fmt.Errorf("строка %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}
