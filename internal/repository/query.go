package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/panjilaras/Dashboard-PI/internal/sqlerr"
)

// updateBuilder collects "column = @arg" assignments for partial updates.
type updateBuilder struct {
	sets []string
	args pgx.NamedArgs
}

func newUpdateBuilder(id int64) *updateBuilder {
	return &updateBuilder{args: pgx.NamedArgs{"id": id}}
}

func (b *updateBuilder) set(column string, value any) {
	b.sets = append(b.sets, fmt.Sprintf("%s = @%s", column, column))
	b.args[column] = value
}

func (b *updateBuilder) empty() bool {
	return len(b.sets) == 0
}

func (b *updateBuilder) clause() string {
	return strings.Join(b.sets, ", ")
}

// whereBuilder collects AND-ed predicates.
type whereBuilder struct {
	conds []string
	args  pgx.NamedArgs
}

func newWhereBuilder() *whereBuilder {
	return &whereBuilder{args: pgx.NamedArgs{}}
}

func (w *whereBuilder) add(cond, name string, value any) {
	w.conds = append(w.conds, cond)
	w.args[name] = value
}

func (w *whereBuilder) clause() string {
	if len(w.conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(w.conds, " AND ")
}

// likePattern escapes LIKE wildcards in a user search term.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(term)) + "%"
}

func notFound(table string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return sqlerr.NotFound(table, err)
	}
	return err
}
