package service

import (
	"context"
	"encoding/json"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/panjilaras/Dashboard-PI/internal/config"
	"github.com/panjilaras/Dashboard-PI/internal/model"
	"github.com/panjilaras/Dashboard-PI/internal/model/auth"
	"github.com/panjilaras/Dashboard-PI/internal/model/category"
	"github.com/panjilaras/Dashboard-PI/internal/model/task"
	"github.com/panjilaras/Dashboard-PI/internal/model/user"
	"github.com/panjilaras/Dashboard-PI/internal/server"
	"github.com/panjilaras/Dashboard-PI/internal/sqlerr"
	"github.com/rs/zerolog"
)

var testNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func newTestServer() *server.Server {
	logger := zerolog.Nop()
	return &server.Server{
		Config: &config.Config{
			Auth: config.AuthConfig{
				Provider:      config.AuthProviderSession,
				SecretKey:     "test-secret-key-with-at-least-32-chars",
				SessionTTL:    24 * time.Hour,
				RememberMeTTL: 30 * 24 * time.Hour,
				ResetTokenTTL: 24 * time.Hour,
			},
			Cache: config.CacheConfig{DashboardTTL: time.Minute},
		},
		Logger: &logger,
	}
}

func notFoundErr(table string) error {
	return sqlerr.NotFound(table, pgx.ErrNoRows)
}

func ptr[T any](v T) *T { return &v }

// ------------------------------------------------------------ users

type fakeUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  []user.User
}

func newFakeUserStore(users ...user.User) *fakeUserStore {
	f := &fakeUserStore{}
	for _, u := range users {
		f.users = append(f.users, u)
		f.nextID = max(f.nextID, u.ID)
	}
	return f
}

func (f *fakeUserStore) List(_ context.Context, q *user.ListUsersQuery) ([]user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []user.User
	for _, u := range f.users {
		if q.Search != "" && !strings.Contains(strings.ToLower(u.Name), strings.ToLower(q.Search)) {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUserStore) All(ctx context.Context) ([]user.User, error) {
	return f.List(ctx, &user.ListUsersQuery{})
}

func (f *fakeUserStore) GetByID(_ context.Context, id int64) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, notFoundErr("users")
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, notFoundErr("users")
}

func (f *fakeUserStore) insert(u user.User) *user.User {
	f.nextID++
	u.ID = f.nextID
	u.CreatedAt, u.UpdatedAt = testNow, testNow
	f.users = append(f.users, u)
	return &u
}

func (f *fakeUserStore) Create(_ context.Context, p *user.CreateUserPayload) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := user.User{Name: p.Name, Email: p.Email, Role: user.RoleMember, Status: user.StatusActive}
	if p.Role != nil {
		u.Role = *p.Role
	}
	return f.insert(u), nil
}

func (f *fakeUserStore) Update(_ context.Context, p *user.UpdateUserPayload) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.users {
		u := &f.users[i]
		if u.ID != p.ID {
			continue
		}
		if p.Name != nil {
			u.Name = *p.Name
		}
		if p.Email != nil {
			u.Email = *p.Email
		}
		if p.Role != nil {
			u.Role = *p.Role
		}
		if p.Status != nil {
			u.Status = *p.Status
		}
		copied := *u
		return &copied, nil
	}
	return nil, notFoundErr("users")
}

func (f *fakeUserStore) UpsertByEmail(_ context.Context, name, email string, role *user.Role, avatarURL *string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.users {
		u := &f.users[i]
		if u.Email != email {
			continue
		}
		u.Name = name
		if avatarURL != nil {
			u.AvatarURL = avatarURL
		}
		if role != nil {
			u.Role = *role
		}
		copied := *u
		return &copied, nil
	}
	u := user.User{Name: name, Email: email, Role: user.RoleMember, Status: user.StatusActive, AvatarURL: avatarURL}
	if role != nil {
		u.Role = *role
	}
	return f.insert(u), nil
}

func (f *fakeUserStore) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, u := range f.users {
		if u.ID == id {
			f.users = slices.Delete(f.users, i, i+1)
			return nil
		}
	}
	return notFoundErr("users")
}

func (f *fakeUserStore) ExistingIDs(_ context.Context, ids []int64) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []int64
	for _, u := range f.users {
		if slices.Contains(ids, u.ID) {
			out = append(out, u.ID)
		}
	}
	return out, nil
}

// ------------------------------------------------------------ tasks

type fakeTaskStore struct {
	mu     sync.Mutex
	nextID int64
	tasks  []task.Task
	since  *time.Time
}

func newFakeTaskStore(tasks ...task.Task) *fakeTaskStore {
	f := &fakeTaskStore{}
	for _, t := range tasks {
		f.tasks = append(f.tasks, t)
		f.nextID = max(f.nextID, t.ID)
	}
	return f
}

func (f *fakeTaskStore) List(ctx context.Context, _ *task.ListTasksQuery, since *time.Time) ([]task.Task, error) {
	return f.All(ctx, since)
}

func (f *fakeTaskStore) All(_ context.Context, since *time.Time) ([]task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.since = since
	var out []task.Task
	for _, t := range f.tasks {
		if since != nil && t.CreatedAt.Before(*since) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTaskStore) GetByID(_ context.Context, id int64) (*task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tasks {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, notFoundErr("tasks")
}

func (f *fakeTaskStore) Create(_ context.Context, t *task.Task) (*task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	created := *t
	created.ID = f.nextID
	created.CreatedAt, created.UpdatedAt = testNow, testNow
	f.tasks = append(f.tasks, created)
	return &created, nil
}

func (f *fakeTaskStore) Update(_ context.Context, p *task.UpdateTaskPayload) (*task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		t := &f.tasks[i]
		if t.ID != p.ID {
			continue
		}
		if p.Title != nil {
			t.Title = *p.Title
		}
		if p.Description.Set {
			t.Description = p.Description.Val
		}
		if p.Status != nil {
			t.Status = *p.Status
		}
		if p.CategoryID.Set {
			t.CategoryID = p.CategoryID.Val
		}
		if p.AssigneeIDs.Set {
			t.AssigneeIDs = nil
			if p.AssigneeIDs.Val != nil && *p.AssigneeIDs.Val != "" {
				t.AssigneeIDs = p.AssigneeIDs.Val
			}
		}
		if p.DueDate.Set {
			t.DueDate = p.DueDate.Val
		}
		copied := *t
		return &copied, nil
	}
	return nil, notFoundErr("tasks")
}

func (f *fakeTaskStore) UpdateStatus(_ context.Context, id int64, status task.Status) (*task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks[i].Status = status
			copied := f.tasks[i]
			return &copied, nil
		}
	}
	return nil, notFoundErr("tasks")
}

func (f *fakeTaskStore) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = slices.Delete(f.tasks, i, i+1)
			return nil
		}
	}
	return notFoundErr("tasks")
}

// ------------------------------------------------------------ categories

type fakeCategoryStore struct {
	mu         sync.Mutex
	nextID     int64
	categories []category.Category
}

func newFakeCategoryStore(categories ...category.Category) *fakeCategoryStore {
	f := &fakeCategoryStore{}
	for _, c := range categories {
		f.categories = append(f.categories, c)
		f.nextID = max(f.nextID, c.ID)
	}
	return f
}

func (f *fakeCategoryStore) List(_ context.Context, _ *category.ListCategoriesQuery) ([]category.WithStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]category.WithStats, len(f.categories))
	for i, c := range f.categories {
		out[i] = category.WithStats{Category: c}
	}
	return out, nil
}

func (f *fakeCategoryStore) All(_ context.Context) ([]category.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.categories), nil
}

func (f *fakeCategoryStore) GetByID(_ context.Context, id int64) (*category.WithStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.categories {
		if c.ID == id {
			return &category.WithStats{Category: c}, nil
		}
	}
	return nil, notFoundErr("task_categories")
}

func (f *fakeCategoryStore) FindByName(_ context.Context, name string) (*category.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.categories {
		if strings.EqualFold(c.Name, name) {
			return &c, nil
		}
	}
	return nil, notFoundErr("task_categories")
}

func (f *fakeCategoryStore) Create(_ context.Context, name, color string) (*category.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	c := category.Category{Base: model.Base{ID: f.nextID, CreatedAt: testNow, UpdatedAt: testNow}, Name: name, Color: color}
	f.categories = append(f.categories, c)
	return &c, nil
}

func (f *fakeCategoryStore) Update(_ context.Context, p *category.UpdateCategoryPayload) (*category.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.categories {
		c := &f.categories[i]
		if c.ID != p.ID {
			continue
		}
		if p.Name != nil {
			c.Name = *p.Name
		}
		if p.Color != nil {
			c.Color = *p.Color
		}
		copied := *c
		return &copied, nil
	}
	return nil, notFoundErr("task_categories")
}

func (f *fakeCategoryStore) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.categories {
		if c.ID == id {
			f.categories = slices.Delete(f.categories, i, i+1)
			return nil
		}
	}
	return notFoundErr("task_categories")
}

func (f *fakeCategoryStore) Exists(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.ContainsFunc(f.categories, func(c category.Category) bool { return c.ID == id }), nil
}

// ------------------------------------------------------------ auth

type fakeAuthStore struct {
	mu            sync.Mutex
	users         map[string]*auth.User
	passwords     map[string]string
	sessions      map[string]*auth.Session
	verifications map[string]*auth.Verification
}

func newFakeAuthStore() *fakeAuthStore {
	return &fakeAuthStore{
		users:         map[string]*auth.User{},
		passwords:     map[string]string{},
		sessions:      map[string]*auth.Session{},
		verifications: map[string]*auth.Verification{},
	}
}

func (f *fakeAuthStore) GetUserByID(_ context.Context, id string) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, notFoundErr("auth_users")
}

func (f *fakeAuthStore) GetUserByEmail(_ context.Context, email string) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, notFoundErr("auth_users")
}

func (f *fakeAuthStore) UpsertUser(_ context.Context, u *auth.User) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *u
	f.users[u.ID] = &copied
	return u, nil
}

func (f *fakeAuthStore) CreateCredentialUser(_ context.Context, u *auth.User, passwordHash string) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *u
	f.users[u.ID] = &copied
	f.passwords[u.ID] = passwordHash
	return u, nil
}

func (f *fakeAuthStore) SetPassword(_ context.Context, userID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.passwords[userID] = passwordHash
	for id, s := range f.sessions {
		if s.UserID == userID {
			delete(f.sessions, id)
		}
	}
	return nil
}

func (f *fakeAuthStore) GetCredentialAccount(_ context.Context, userID string) (*auth.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	hash, ok := f.passwords[userID]
	if !ok {
		return nil, notFoundErr("auth_accounts")
	}
	return &auth.Account{UserID: userID, ProviderID: auth.CredentialProvider, Password: &hash}, nil
}

func (f *fakeAuthStore) UpdateUserRole(_ context.Context, email string, role user.Role) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			u.Role = role
			copied := *u
			return &copied, nil
		}
	}
	return nil, notFoundErr("auth_users")
}

func (f *fakeAuthStore) CreateSession(_ context.Context, s *auth.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *s
	f.sessions[s.ID] = &copied
	return nil
}

func (f *fakeAuthStore) GetSession(_ context.Context, id string) (*auth.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, notFoundErr("auth_sessions")
}

func (f *fakeAuthStore) DeleteSession(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, id)
	return nil
}

func (f *fakeAuthStore) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, s := range f.sessions {
		if s.Expired(now) {
			delete(f.sessions, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeAuthStore) ReplaceVerification(_ context.Context, v *auth.Verification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *v
	f.verifications[v.Identifier] = &copied
	return nil
}

func (f *fakeAuthStore) GetVerification(_ context.Context, identifier string) (*auth.Verification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.verifications[identifier]; ok {
		copied := *v
		return &copied, nil
	}
	return nil, notFoundErr("auth_verifications")
}

func (f *fakeAuthStore) DeleteVerifications(_ context.Context, identifier string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.verifications, identifier)
	return nil
}

// ------------------------------------------------------------ jobs and cache

type fakeEnqueuer struct {
	mu    sync.Mutex
	tasks []*asynq.Task
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, t *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, t)
	return &asynq.TaskInfo{ID: "task-id", Type: t.Type()}, nil
}

func (f *fakeEnqueuer) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.tasks))
	for i, t := range f.tasks {
		out[i] = t.Type()
	}
	return out
}

// fakeCache keeps JSON in memory, keyed without versions; Invalidate
// clears everything.
type fakeCache struct {
	mu            sync.Mutex
	values        map[string][]byte
	hits          int
	invalidations int
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string][]byte{}}
}

func (f *fakeCache) Key(_ context.Context, parts ...string) string {
	return strings.Join(parts, ":")
}

func (f *fakeCache) GetJSON(_ context.Context, key string, dest any) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.values[key]
	if !ok || json.Unmarshal(raw, dest) != nil {
		return false
	}
	f.hits++
	return true
}

func (f *fakeCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if raw, err := json.Marshal(value); err == nil {
		f.values[key] = raw
	}
}

func (f *fakeCache) Invalidate(_ context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidations++
	f.values = map[string][]byte{}
}
