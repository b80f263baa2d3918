package repository

import (
	"fmt"

	"github.com/uptrace/bun"
)

// SelectCriteria narrows a select query. Criteria compose: every one in a
// call is applied in order.
type SelectCriteria func(*bun.SelectQuery) *bun.SelectQuery

// Where adds an arbitrary boolean predicate over entity columns.
func Where(query string, args ...any) SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where(query, args...)
	}
}

// ByID matches the row with the given primary key value.
func ByID(id any) SelectCriteria {
	return ByColumn("id", id)
}

// ByColumn matches rows whose column equals value.
func ByColumn(column string, value any) SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where(fmt.Sprintf("?TableAlias.%s = ?", column), value)
	}
}

// Include eager-loads the named relations.
func Include(relations ...string) SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		for _, relation := range relations {
			q = q.Relation(relation)
		}
		return q
	}
}

// OrderBy sorts results by the given expression, e.g. "created_at DESC".
func OrderBy(expr string) SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Order(expr)
	}
}
