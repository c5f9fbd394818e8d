package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/panjilaras/Dashboard-PI/internal/model/category"
	"github.com/panjilaras/Dashboard-PI/internal/server"
)

const categoryColumns = `id, name, color, created_at, updated_at`

// categoryStatsSelect computes taskCount and avgPoints on the fly; they are
// never stored.
const categoryStatsSelect = `
	SELECT
		c.id, c.name, c.color, c.created_at, c.updated_at,
		COUNT(t.id)::int AS task_count,
		COALESCE(ROUND(AVG(t.points)::numeric, 1), 0)::float8 AS avg_points
	FROM task_categories c
	LEFT JOIN tasks t ON t.category_id = c.id
`

type CategoryRepository struct {
	server *server.Server
}

func NewCategoryRepository(s *server.Server) *CategoryRepository {
	return &CategoryRepository{server: s}
}

func (r *CategoryRepository) List(ctx context.Context, q *category.ListCategoriesQuery) ([]category.WithStats, error) {
	w := newWhereBuilder()
	if q.Search != "" {
		w.add("c.name ILIKE @search", "search", likePattern(q.Search))
	}
	limit, offset := q.Resolve()
	w.args["limit"] = limit
	w.args["offset"] = offset

	stmt := categoryStatsSelect + w.clause() + `
		GROUP BY c.id
		ORDER BY c.name ASC
		LIMIT @limit OFFSET @offset`

	rows, err := r.server.DB.Pool.Query(ctx, stmt, w.args)
	if err != nil {
		return nil, fmt.Errorf("failed to execute list categories query: %w", err)
	}

	categories, err := pgx.CollectRows(rows, pgx.RowToStructByName[category.WithStats])
	if err != nil {
		return nil, fmt.Errorf("failed to collect categories: %w", err)
	}
	return categories, nil
}

// All returns every category without statistics.
func (r *CategoryRepository) All(ctx context.Context) ([]category.Category, error) {
	rows, err := r.server.DB.Pool.Query(ctx, `SELECT `+categoryColumns+` FROM task_categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[category.Category])
}

func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*category.WithStats, error) {
	rows, err := r.server.DB.Pool.Query(ctx, categoryStatsSelect+`WHERE c.id = @id GROUP BY c.id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to get category by id=%d: %w", id, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[category.WithStats])
	if err != nil {
		return nil, notFound("task_categories", err)
	}
	return c, nil
}

// FindByName matches case-insensitively.
func (r *CategoryRepository) FindByName(ctx context.Context, name string) (*category.Category, error) {
	rows, err := r.server.DB.Pool.Query(ctx,
		`SELECT `+categoryColumns+` FROM task_categories WHERE LOWER(name) = LOWER(@name)`,
		pgx.NamedArgs{"name": name})
	if err != nil {
		return nil, fmt.Errorf("failed to find category by name: %w", err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[category.Category])
	if err != nil {
		return nil, notFound("task_categories", err)
	}
	return c, nil
}

func (r *CategoryRepository) Create(ctx context.Context, name, color string) (*category.Category, error) {
	rows, err := r.server.DB.Pool.Query(ctx, `
		INSERT INTO task_categories (name, color)
		VALUES (@name, @color)
		RETURNING `+categoryColumns,
		pgx.NamedArgs{"name": name, "color": color})
	if err != nil {
		return nil, fmt.Errorf("failed to execute create category query: %w", err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[category.Category])
	if err != nil {
		return nil, fmt.Errorf("failed to collect created category: %w", err)
	}
	return c, nil
}

func (r *CategoryRepository) Update(ctx context.Context, p *category.UpdateCategoryPayload) (*category.Category, error) {
	b := newUpdateBuilder(p.ID)
	if p.Name != nil {
		b.set("name", *p.Name)
	}
	if p.Color != nil {
		b.set("color", *p.Color)
	}

	stmt := `SELECT ` + categoryColumns + ` FROM task_categories WHERE id = @id`
	if !b.empty() {
		stmt = `UPDATE task_categories SET ` + b.clause() + ` WHERE id = @id RETURNING ` + categoryColumns
	}

	rows, err := r.server.DB.Pool.Query(ctx, stmt, b.args)
	if err != nil {
		return nil, fmt.Errorf("failed to execute update category query: %w", err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[category.Category])
	if err != nil {
		return nil, notFound("task_categories", err)
	}
	return c, nil
}

// Delete removes the category. The foreign key sets category_id of its
// tasks to NULL.
func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.server.DB.Pool.Exec(ctx, `DELETE FROM task_categories WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete category id=%d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return notFound("task_categories", pgx.ErrNoRows)
	}
	return nil
}

// Exists reports whether a category with id exists.
func (r *CategoryRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.server.DB.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM task_categories WHERE id = @id)`, pgx.NamedArgs{"id": id}).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check category id=%d: %w", id, err)
	}
	return exists, nil
}
