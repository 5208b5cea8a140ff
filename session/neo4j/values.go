package neo4j

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/x-research-team/dtx-graphrepo/session"
)

// rowsOf преобразует записи драйвера в строки результата.
func rowsOf(records []*neo4j.Record) []session.Row {
	rows := make([]session.Row, 0, len(records))
	for _, rec := range records {
		row := make(session.Row, len(rec.Keys))
		for i, key := range rec.Keys {
			if i < len(rec.Values) {
				row[key] = normalize(rec.Values[i])
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// normalize заменяет значения графовых типов драйвера на обычные значения:
// узлы и связи - на отображения свойств, путь - на список свойств узлов и
// связей в порядке обхода, временные типы - на time.Time.
func normalize(v any) any {
	switch x := v.(type) {
	case neo4j.Node:
		return normalizeMap(x.Props)
	case neo4j.Relationship:
		return normalizeMap(x.Props)
	case neo4j.Path:
		// Узлы и связи чередуются: n0, r0, n1, r1, ..., nk.
		out := make([]any, 0, len(x.Nodes)+len(x.Relationships))
		for i, n := range x.Nodes {
			out = append(out, normalizeMap(n.Props))
			if i < len(x.Relationships) {
				out = append(out, normalizeMap(x.Relationships[i].Props))
			}
		}
		return out
	case neo4j.Date:
		return x.Time()
	case neo4j.LocalDateTime:
		return x.Time()
	case neo4j.LocalTime:
		return x.Time()
	case neo4j.Time:
		return x.Time()
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = normalize(item)
		}
		return out
	case map[string]any:
		return normalizeMap(x)
	default:
		return v
	}
}

func normalizeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalize(v)
	}
	return out
}
