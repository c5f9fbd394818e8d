package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/panjilaras/Dashboard-PI/internal/model/user"
	"github.com/panjilaras/Dashboard-PI/internal/server"
)

const userColumns = `id, name, email, role, status, position, join_date, avatar_url, created_at, updated_at`

type UserRepository struct {
	server *server.Server
}

func NewUserRepository(s *server.Server) *UserRepository {
	return &UserRepository{server: s}
}

func buildUserFilters(q *user.ListUsersQuery) *whereBuilder {
	w := newWhereBuilder()
	if q.Search != "" {
		w.add("(name ILIKE @search OR email ILIKE @search OR COALESCE(position, '') ILIKE @search)", "search", likePattern(q.Search))
	}
	if q.Role != "" {
		w.add("role = @role", "role", q.Role)
	}
	if q.Status != "" {
		w.add("status = @status", "status", q.Status)
	}
	return w
}

func (r *UserRepository) List(ctx context.Context, q *user.ListUsersQuery) ([]user.User, error) {
	w := buildUserFilters(q)
	limit, offset := q.Resolve()
	w.args["limit"] = limit
	w.args["offset"] = offset

	stmt := fmt.Sprintf(`
		SELECT %s
		FROM users
		%s
		ORDER BY name ASC, id ASC
		LIMIT @limit OFFSET @offset
	`, userColumns, w.clause())

	rows, err := r.server.DB.Pool.Query(ctx, stmt, w.args)
	if err != nil {
		return nil, fmt.Errorf("failed to execute list users query: %w", err)
	}

	users, err := pgx.CollectRows(rows, pgx.RowToStructByName[user.User])
	if err != nil {
		return nil, fmt.Errorf("failed to collect users: %w", err)
	}
	return users, nil
}

// All returns every master user, for aggregation.
func (r *UserRepository) All(ctx context.Context) ([]user.User, error) {
	rows, err := r.server.DB.Pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[user.User])
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	rows, err := r.server.DB.Pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id=%d: %w", id, err)
	}

	u, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[user.User])
	if err != nil {
		return nil, notFound("users", err)
	}
	return u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	rows, err := r.server.DB.Pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE email = @email`, pgx.NamedArgs{"email": email})
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	u, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[user.User])
	if err != nil {
		return nil, notFound("users", err)
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, p *user.CreateUserPayload) (*user.User, error) {
	role := user.RoleMember
	if p.Role != nil {
		role = *p.Role
	}
	status := user.StatusActive
	if p.Status != nil {
		status = *p.Status
	}

	stmt := `
		INSERT INTO users (name, email, role, status, position, join_date, avatar_url)
		VALUES (@name, @email, @role, @status, @position, @join_date, @avatar_url)
		RETURNING ` + userColumns

	rows, err := r.server.DB.Pool.Query(ctx, stmt, pgx.NamedArgs{
		"name":       p.Name,
		"email":      p.Email,
		"role":       role,
		"status":     status,
		"position":   p.Position,
		"join_date":  p.JoinDate,
		"avatar_url": p.AvatarURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to execute create user query: %w", err)
	}

	u, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[user.User])
	if err != nil {
		return nil, fmt.Errorf("failed to collect created user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) Update(ctx context.Context, p *user.UpdateUserPayload) (*user.User, error) {
	b := newUpdateBuilder(p.ID)
	if p.Name != nil {
		b.set("name", *p.Name)
	}
	if p.Email != nil {
		b.set("email", *p.Email)
	}
	if p.Role != nil {
		b.set("role", *p.Role)
	}
	if p.Status != nil {
		b.set("status", *p.Status)
	}
	if p.Position != nil {
		b.set("position", *p.Position)
	}
	if p.JoinDate != nil {
		b.set("join_date", *p.JoinDate)
	}
	if p.AvatarURL != nil {
		b.set("avatar_url", *p.AvatarURL)
	}

	if b.empty() {
		return r.GetByID(ctx, p.ID)
	}

	stmt := `UPDATE users SET ` + b.clause() + ` WHERE id = @id RETURNING ` + userColumns

	rows, err := r.server.DB.Pool.Query(ctx, stmt, b.args)
	if err != nil {
		return nil, fmt.Errorf("failed to execute update user query: %w", err)
	}

	u, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[user.User])
	if err != nil {
		return nil, notFound("users", err)
	}
	return u, nil
}

// UpsertByEmail creates or refreshes the master row for an auth identity.
// Role is only written on insert or when explicitly given.
func (r *UserRepository) UpsertByEmail(ctx context.Context, name, email string, role *user.Role, avatarURL *string) (*user.User, error) {
	insertRole := user.RoleMember
	if role != nil {
		insertRole = *role
	}

	stmt := `
		INSERT INTO users (name, email, role, status, avatar_url, join_date)
		VALUES (@name, @email, @role, 'active', @avatar_url, TO_CHAR(CURRENT_DATE, 'YYYY-MM-DD'))
		ON CONFLICT (email) DO UPDATE SET
			name = EXCLUDED.name,
			avatar_url = COALESCE(EXCLUDED.avatar_url, users.avatar_url),
			role = CASE WHEN @role_given THEN EXCLUDED.role ELSE users.role END
		RETURNING ` + userColumns

	rows, err := r.server.DB.Pool.Query(ctx, stmt, pgx.NamedArgs{
		"name":       name,
		"email":      email,
		"role":       insertRole,
		"avatar_url": avatarURL,
		"role_given": role != nil,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to execute upsert user query: %w", err)
	}

	u, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[user.User])
	if err != nil {
		return nil, fmt.Errorf("failed to collect upserted user: %w", err)
	}
	return u, nil
}

// SQL fragments over tasks.assignee_ids and the @id_text parameter. The
// removal yields NULL once the list is empty.
const (
	assigneesWithoutUser = `NULLIF(ARRAY_TO_STRING(ARRAY_REMOVE(STRING_TO_ARRAY(REPLACE(assignee_ids, ' ', ''), ','), @id_text), ','), '')`
	assigneesContainUser = `@id_text = ANY (STRING_TO_ARRAY(REPLACE(assignee_ids, ' ', ''), ','))`
)

// Delete removes the user and strips its id from every task's assignee list
// in the same transaction.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	return r.server.DB.WithTx(ctx, func(tx pgx.Tx) error {
		idText := strconv.FormatInt(id, 10)

		_, err := tx.Exec(ctx,
			`UPDATE tasks SET assignee_ids = `+assigneesWithoutUser+` WHERE `+assigneesContainUser,
			pgx.NamedArgs{"id_text": idText})
		if err != nil {
			return fmt.Errorf("failed to remove user %d from task assignees: %w", id, err)
		}

		result, err := tx.Exec(ctx, `DELETE FROM users WHERE id = @id`, pgx.NamedArgs{"id": id})
		if err != nil {
			return fmt.Errorf("failed to delete user %d: %w", id, err)
		}
		if result.RowsAffected() == 0 {
			return notFound("users", pgx.ErrNoRows)
		}
		return nil
	})
}

// ExistingIDs returns the subset of ids that belong to a master user.
func (r *UserRepository) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.server.DB.Pool.Query(ctx, `SELECT id FROM users WHERE id = ANY (@ids)`, pgx.NamedArgs{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("failed to check user ids: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}
