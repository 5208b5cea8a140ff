package postgres

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/x-research-team/dtx-graphrepo/session"
)

// normalizeRow заменяет значения, которые pgx возвращает в двоичном
// представлении, на удобные для приведения типов: uuid - на строку,
// numeric - на float64. Numeric, не представимый как float64, остается
// pgtype.Numeric, и приведение к числовому типу завершится ошибкой.
func normalizeRow(m map[string]any) session.Row {
	row := make(session.Row, len(m))
	for k, v := range m {
		row[k] = normalize(v)
	}
	return row
}

func normalize(v any) any {
	switch x := v.(type) {
	case [16]byte:
		return uuid.UUID(x).String()
	case pgtype.Numeric:
		f, err := x.Float64Value()
		if err != nil {
			return x
		}
		if !f.Valid {
			return nil
		}
		return f.Float64
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = normalize(item)
		}
		return out
	case map[string]any:
		return normalizeRow(x)
	default:
		return v
	}
}
