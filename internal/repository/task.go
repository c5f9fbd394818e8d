package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/panjilaras/Dashboard-PI/internal/model/task"
	"github.com/panjilaras/Dashboard-PI/internal/server"
)

const taskColumns = `id, title, description, status, priority, category_id, points, assignee_ids, due_date, created_at, updated_at`

type TaskRepository struct {
	server *server.Server
}

func NewTaskRepository(s *server.Server) *TaskRepository {
	return &TaskRepository{server: s}
}

func buildTaskFilters(q *task.ListTasksQuery, since *time.Time) *whereBuilder {
	w := newWhereBuilder()
	if q.Search != "" {
		w.add("(title ILIKE @search OR COALESCE(description, '') ILIKE @search)", "search", likePattern(q.Search))
	}
	if q.Status != "" {
		w.add("status = @status", "status", q.Status)
	}
	if q.Priority != "" {
		w.add("priority = @priority", "priority", q.Priority)
	}
	if q.CategoryID != nil {
		w.add("category_id = @category_id", "category_id", *q.CategoryID)
	}
	if since != nil {
		w.add("created_at >= @since", "since", *since)
	}
	return w
}

func (r *TaskRepository) List(ctx context.Context, q *task.ListTasksQuery, since *time.Time) ([]task.Task, error) {
	w := buildTaskFilters(q, since)
	limit, offset := q.Resolve()
	w.args["limit"] = limit
	w.args["offset"] = offset

	stmt := fmt.Sprintf(`
		SELECT %s
		FROM tasks
		%s
		ORDER BY updated_at DESC, id DESC
		LIMIT @limit OFFSET @offset
	`, taskColumns, w.clause())

	rows, err := r.server.DB.Pool.Query(ctx, stmt, w.args)
	if err != nil {
		return nil, fmt.Errorf("failed to execute list tasks query: %w", err)
	}

	tasks, err := pgx.CollectRows(rows, pgx.RowToStructByName[task.Task])
	if err != nil {
		return nil, fmt.Errorf("failed to collect tasks: %w", err)
	}
	return tasks, nil
}

// All returns every task created at or after since (all tasks when nil),
// newest update first.
func (r *TaskRepository) All(ctx context.Context, since *time.Time) ([]task.Task, error) {
	w := newWhereBuilder()
	if since != nil {
		w.add("created_at >= @since", "since", *since)
	}

	rows, err := r.server.DB.Pool.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks `+w.clause()+` ORDER BY updated_at DESC, id DESC`, w.args)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[task.Task])
}

func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*task.Task, error) {
	rows, err := r.server.DB.Pool.Query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to get task by id=%d: %w", id, err)
	}

	t, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[task.Task])
	if err != nil {
		return nil, notFound("tasks", err)
	}
	return t, nil
}

func (r *TaskRepository) Create(ctx context.Context, t *task.Task) (*task.Task, error) {
	stmt := `
		INSERT INTO tasks (title, description, status, priority, category_id, points, assignee_ids, due_date)
		VALUES (@title, @description, @status, @priority, @category_id, @points, @assignee_ids, @due_date)
		RETURNING ` + taskColumns

	rows, err := r.server.DB.Pool.Query(ctx, stmt, pgx.NamedArgs{
		"title":        t.Title,
		"description":  t.Description,
		"status":       t.Status,
		"priority":     t.Priority,
		"category_id":  t.CategoryID,
		"points":       t.Points,
		"assignee_ids": t.AssigneeIDs,
		"due_date":     t.DueDate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to execute create task query: %w", err)
	}

	created, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[task.Task])
	if err != nil {
		return nil, fmt.Errorf("failed to collect created task: %w", err)
	}
	return created, nil
}

// Update applies the fields present in p. Pointer fields are skipped when
// nil; a set Nullable with no value writes NULL. AssigneeIDs must already be
// normalized, and an empty list is stored as NULL.
func (r *TaskRepository) Update(ctx context.Context, p *task.UpdateTaskPayload) (*task.Task, error) {
	b := newUpdateBuilder(p.ID)
	if p.Title != nil {
		b.set("title", *p.Title)
	}
	if p.Description.Set {
		b.set("description", p.Description.Val)
	}
	if p.Status != nil {
		b.set("status", *p.Status)
	}
	if p.Priority != nil {
		b.set("priority", *p.Priority)
	}
	if p.CategoryID.Set {
		b.set("category_id", p.CategoryID.Val)
	}
	if p.Points != nil {
		b.set("points", *p.Points)
	}
	if p.AssigneeIDs.Set {
		var value *string
		if p.AssigneeIDs.Val != nil && *p.AssigneeIDs.Val != "" {
			value = p.AssigneeIDs.Val
		}
		b.set("assignee_ids", value)
	}
	if p.DueDate.Set {
		b.set("due_date", p.DueDate.Val)
	}

	if b.empty() {
		return r.GetByID(ctx, p.ID)
	}

	stmt := `UPDATE tasks SET ` + b.clause() + ` WHERE id = @id RETURNING ` + taskColumns

	rows, err := r.server.DB.Pool.Query(ctx, stmt, b.args)
	if err != nil {
		return nil, fmt.Errorf("failed to execute update task query: %w", err)
	}

	t, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[task.Task])
	if err != nil {
		return nil, notFound("tasks", err)
	}
	return t, nil
}

func (r *TaskRepository) UpdateStatus(ctx context.Context, id int64, status task.Status) (*task.Task, error) {
	rows, err := r.server.DB.Pool.Query(ctx,
		`UPDATE tasks SET status = @status WHERE id = @id RETURNING `+taskColumns,
		pgx.NamedArgs{"id": id, "status": status})
	if err != nil {
		return nil, fmt.Errorf("failed to execute update task status query: %w", err)
	}

	t, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[task.Task])
	if err != nil {
		return nil, notFound("tasks", err)
	}
	return t, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.server.DB.Pool.Exec(ctx, `DELETE FROM tasks WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete task id=%d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return notFound("tasks", pgx.ErrNoRows)
	}
	return nil
}
