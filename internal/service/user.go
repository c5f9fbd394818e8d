package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/panjilaras/Dashboard-PI/internal/errs"
	"github.com/panjilaras/Dashboard-PI/internal/lib/job"
	"github.com/panjilaras/Dashboard-PI/internal/lib/utils"
	"github.com/panjilaras/Dashboard-PI/internal/model/auth"
	"github.com/panjilaras/Dashboard-PI/internal/model/user"
	"github.com/panjilaras/Dashboard-PI/internal/server"
	"golang.org/x/crypto/bcrypt"
)

const defaultPasswordLength = 12

type UserService struct {
	server *server.Server
	users  UserStore
	auth   AuthStore
	jobs   Enqueuer
	cache  Cache
}

func NewUserService(s *server.Server, users UserStore, authStore AuthStore, jobs Enqueuer, cache Cache) *UserService {
	return &UserService{server: s, users: users, auth: authStore, jobs: jobs, cache: cache}
}

func (s *UserService) List(ctx context.Context, q *user.ListUsersQuery) ([]user.User, error) {
	return s.users.List(ctx, q)
}

func (s *UserService) Get(ctx context.Context, p *user.GetUserPayload) (*user.User, error) {
	return s.users.GetByID(ctx, p.ID)
}

func (s *UserService) Create(ctx context.Context, p *user.CreateUserPayload) (*user.User, error) {
	if err := s.ensureEmailFree(ctx, p.Email, 0); err != nil {
		return nil, err
	}

	u, err := s.users.Create(ctx, p)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	return u, nil
}

// Update writes the master row and, when the role changed, mirrors the new
// role onto the auth user so sessions pick it up.
func (s *UserService) Update(ctx context.Context, p *user.UpdateUserPayload) (*user.User, error) {
	current, err := s.users.GetByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	if p.Email != nil && *p.Email != current.Email {
		if err := s.ensureEmailFree(ctx, *p.Email, p.ID); err != nil {
			return nil, err
		}
	}

	updated, err := s.users.Update(ctx, p)
	if err != nil {
		return nil, err
	}

	if updated.Role != current.Role {
		s.syncAuthRole(ctx, updated.Email, updated.Role)
	}

	s.cache.Invalidate(ctx)
	return updated, nil
}

func (s *UserService) syncAuthRole(ctx context.Context, email string, role user.Role) {
	if _, err := s.auth.UpdateUserRole(ctx, email, role); err != nil && !isNotFound(err) {
		s.server.Logger.Warn().Err(err).Str("email", email).Msg("failed to sync role to auth user")
	}
}

func (s *UserService) Delete(ctx context.Context, p *user.DeleteUserPayload) error {
	if err := s.users.Delete(ctx, p.ID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	return nil
}

func (s *UserService) ensureEmailFree(ctx context.Context, email string, selfID int64) error {
	existing, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil && existing.ID != selfID:
		return errs.NewBadRequestError("User with this email already exists", true, errs.Code("USER_ALREADY_EXISTS"), nil, nil)
	case err != nil && !isNotFound(err):
		return err
	}
	return nil
}

// Sync upserts the master user of an auth identity by email.
func (s *UserService) Sync(ctx context.Context, p *user.SyncUserPayload) (*user.User, error) {
	u, err := s.users.UpsertByEmail(ctx, p.Name, p.Email, p.Role, p.Image)
	if err != nil {
		return nil, err
	}

	if p.Role != nil {
		s.syncAuthRole(ctx, u.Email, *p.Role)
	}

	s.cache.Invalidate(ctx)
	return u, nil
}

// SetDefaultPassword makes sure the master user, the auth user and a
// credential account exist, then replaces the password with a generated
// one. The plain password is returned once and mailed to the user.
func (s *UserService) SetDefaultPassword(ctx context.Context, p *user.SetDefaultPasswordPayload) (*user.SetDefaultPasswordResponse, error) {
	master, err := s.users.GetByEmail(ctx, p.Email)
	switch {
	case isNotFound(err):
		name := p.Name
		if name == "" {
			return nil, errs.NewBadRequestError("Name is required for a new user", true, nil,
				[]errs.FieldError{{Field: "name", Error: "is required"}}, nil)
		}
		master, err = s.users.UpsertByEmail(ctx, name, p.Email, p.Role, nil)
		if err != nil {
			return nil, err
		}
		s.cache.Invalidate(ctx)
	case err != nil:
		return nil, err
	}

	password, err := utils.GeneratePassword(defaultPasswordLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate password: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	authUser, err := s.auth.GetUserByEmail(ctx, master.Email)
	switch {
	case isNotFound(err):
		_, err = s.auth.CreateCredentialUser(ctx, &auth.User{
			ID:    uuid.NewString(),
			Name:  master.Name,
			Email: master.Email,
			Image: master.AvatarURL,
			Role:  master.Role,
		}, string(hash))
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if err := s.auth.SetPassword(ctx, authUser.ID, string(hash)); err != nil {
			return nil, err
		}
	}

	enqueue(ctx, s.jobs, s.server.Logger, func() (*asynq.Task, error) {
		return job.NewDefaultPasswordEmailTask(master.Email, master.Name, password)
	})

	s.server.Logger.Info().Int64("user_id", master.ID).Msg("default password set")

	return &user.SetDefaultPasswordResponse{
		Email:           master.Email,
		DefaultPassword: password,
		Message:         "Default password set. Share it with the user and ask them to change it after signing in.",
	}, nil
}
