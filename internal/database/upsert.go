package database

import (
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// UpsertColumns makes q overwrite cols when a row with the same id already
// exists, in the syntax of the connection's dialect.
func UpsertColumns(q *bun.InsertQuery, cols ...string) *bun.InsertQuery {
	if q.Dialect().Name() == dialect.MySQL {
		q = q.On("DUPLICATE KEY UPDATE")
		for _, col := range cols {
			q = q.Set("? = VALUES(?)", bun.Ident(col), bun.Ident(col))
		}
		return q
	}

	q = q.On("CONFLICT (id) DO UPDATE")
	for _, col := range cols {
		q = q.Set("? = EXCLUDED.?", bun.Ident(col), bun.Ident(col))
	}
	return q
}
