package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier абстрагирует выполнение SQL-запросов. Ему удовлетворяют и
// *pgxpool.Pool, и pgx.Tx, поэтому сессию можно использовать как в рамках
// транзакции, так и без нее.
type Querier interface {
	// Exec выполняет SQL-запрос, который не возвращает строк.
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)

	// Query выполняет SQL-запрос и возвращает результат в виде pgx.Rows.
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}
