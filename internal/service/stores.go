package service

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"github.com/panjilaras/Dashboard-PI/internal/model/auth"
	"github.com/panjilaras/Dashboard-PI/internal/model/category"
	"github.com/panjilaras/Dashboard-PI/internal/model/task"
	"github.com/panjilaras/Dashboard-PI/internal/model/user"
)

// The store interfaces are satisfied by the repository package. Services
// depend on them so tests can swap in in-memory fakes.

type UserStore interface {
	List(ctx context.Context, q *user.ListUsersQuery) ([]user.User, error)
	All(ctx context.Context) ([]user.User, error)
	GetByID(ctx context.Context, id int64) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	Create(ctx context.Context, p *user.CreateUserPayload) (*user.User, error)
	Update(ctx context.Context, p *user.UpdateUserPayload) (*user.User, error)
	UpsertByEmail(ctx context.Context, name, email string, role *user.Role, avatarURL *string) (*user.User, error)
	Delete(ctx context.Context, id int64) error
	ExistingIDs(ctx context.Context, ids []int64) ([]int64, error)
}

type TaskStore interface {
	List(ctx context.Context, q *task.ListTasksQuery, since *time.Time) ([]task.Task, error)
	All(ctx context.Context, since *time.Time) ([]task.Task, error)
	GetByID(ctx context.Context, id int64) (*task.Task, error)
	Create(ctx context.Context, t *task.Task) (*task.Task, error)
	Update(ctx context.Context, p *task.UpdateTaskPayload) (*task.Task, error)
	UpdateStatus(ctx context.Context, id int64, status task.Status) (*task.Task, error)
	Delete(ctx context.Context, id int64) error
}

type CategoryStore interface {
	List(ctx context.Context, q *category.ListCategoriesQuery) ([]category.WithStats, error)
	All(ctx context.Context) ([]category.Category, error)
	GetByID(ctx context.Context, id int64) (*category.WithStats, error)
	FindByName(ctx context.Context, name string) (*category.Category, error)
	Create(ctx context.Context, name, color string) (*category.Category, error)
	Update(ctx context.Context, p *category.UpdateCategoryPayload) (*category.Category, error)
	Delete(ctx context.Context, id int64) error
	Exists(ctx context.Context, id int64) (bool, error)
}

type AuthStore interface {
	GetUserByID(ctx context.Context, id string) (*auth.User, error)
	GetUserByEmail(ctx context.Context, email string) (*auth.User, error)
	UpsertUser(ctx context.Context, u *auth.User) (*auth.User, error)
	CreateCredentialUser(ctx context.Context, u *auth.User, passwordHash string) (*auth.User, error)
	SetPassword(ctx context.Context, userID, passwordHash string) error
	GetCredentialAccount(ctx context.Context, userID string) (*auth.Account, error)
	UpdateUserRole(ctx context.Context, email string, role user.Role) (*auth.User, error)
	CreateSession(ctx context.Context, s *auth.Session) error
	GetSession(ctx context.Context, id string) (*auth.Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
	ReplaceVerification(ctx context.Context, v *auth.Verification) error
	GetVerification(ctx context.Context, identifier string) (*auth.Verification, error)
	DeleteVerifications(ctx context.Context, identifier string) error
}

// Enqueuer is the part of *asynq.Client the services use.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Cache is the dashboard aggregate cache, see lib/cache.
type Cache interface {
	Key(ctx context.Context, parts ...string) string
	GetJSON(ctx context.Context, key string, dest any) bool
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration)
	Invalidate(ctx context.Context)
}
