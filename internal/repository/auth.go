package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/panjilaras/Dashboard-PI/internal/model/auth"
	"github.com/panjilaras/Dashboard-PI/internal/model/user"
	"github.com/panjilaras/Dashboard-PI/internal/server"
)

const (
	authUserColumns     = `id, name, email, email_verified, image, role, created_at, updated_at`
	sessionColumns      = `id, user_id, token_hash, expires_at, ip_address, user_agent, created_at, updated_at`
	accountColumns      = `id, account_id, provider_id, user_id, password, created_at, updated_at`
	verificationColumns = `id, identifier, value, expires_at, created_at, updated_at`
)

// AuthRepository manages the auth_* tables that shadow the master users.
type AuthRepository struct {
	server *server.Server
}

func NewAuthRepository(s *server.Server) *AuthRepository {
	return &AuthRepository{server: s}
}

func (r *AuthRepository) GetUserByID(ctx context.Context, id string) (*auth.User, error) {
	rows, err := r.server.DB.Pool.Query(ctx, `SELECT `+authUserColumns+` FROM auth_users WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to get auth user: %w", err)
	}

	u, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[auth.User])
	if err != nil {
		return nil, notFound("auth_users", err)
	}
	return u, nil
}

func (r *AuthRepository) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	rows, err := r.server.DB.Pool.Query(ctx, `SELECT `+authUserColumns+` FROM auth_users WHERE email = @email`, pgx.NamedArgs{"email": email})
	if err != nil {
		return nil, fmt.Errorf("failed to get auth user by email: %w", err)
	}

	u, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[auth.User])
	if err != nil {
		return nil, notFound("auth_users", err)
	}
	return u, nil
}

// UpsertUser inserts an auth user or refreshes its profile fields. It is
// used for identities that come from an external provider.
func (r *AuthRepository) UpsertUser(ctx context.Context, u *auth.User) (*auth.User, error) {
	rows, err := r.server.DB.Pool.Query(ctx, `
		INSERT INTO auth_users (id, name, email, email_verified, image, role)
		VALUES (@id, @name, @email, @email_verified, @image, @role)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			email_verified = EXCLUDED.email_verified,
			image = EXCLUDED.image
		RETURNING `+authUserColumns,
		pgx.NamedArgs{
			"id":             u.ID,
			"name":           u.Name,
			"email":          u.Email,
			"email_verified": u.EmailVerified,
			"image":          u.Image,
			"role":           u.Role,
		})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert auth user: %w", err)
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[auth.User])
}

// CreateCredentialUser inserts an auth user and its email/password account
// atomically.
func (r *AuthRepository) CreateCredentialUser(ctx context.Context, u *auth.User, passwordHash string) (*auth.User, error) {
	var created *auth.User

	err := r.server.DB.WithTx(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			INSERT INTO auth_users (id, name, email, email_verified, image, role)
			VALUES (@id, @name, @email, FALSE, @image, @role)
			RETURNING `+authUserColumns,
			pgx.NamedArgs{"id": u.ID, "name": u.Name, "email": u.Email, "image": u.Image, "role": u.Role})
		if err != nil {
			return fmt.Errorf("failed to insert auth user: %w", err)
		}

		created, err = pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[auth.User])
		if err != nil {
			return err
		}

		return upsertCredentialAccount(ctx, tx, created.ID, passwordHash)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func upsertCredentialAccount(ctx context.Context, tx pgx.Tx, userID, passwordHash string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO auth_accounts (id, account_id, provider_id, user_id, password)
		VALUES (@id, @user_id, @provider, @user_id, @password)
		ON CONFLICT (provider_id, user_id) DO UPDATE SET password = EXCLUDED.password
	`, pgx.NamedArgs{
		"id":       uuid.NewString(),
		"user_id":  userID,
		"provider": auth.CredentialProvider,
		"password": passwordHash,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert credential account: %w", err)
	}
	return nil
}

// SetPassword creates or replaces the credential account of userID and
// revokes all of the user's sessions.
func (r *AuthRepository) SetPassword(ctx context.Context, userID, passwordHash string) error {
	return r.server.DB.WithTx(ctx, func(tx pgx.Tx) error {
		if err := upsertCredentialAccount(ctx, tx, userID, passwordHash); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM auth_sessions WHERE user_id = @user_id`, pgx.NamedArgs{"user_id": userID}); err != nil {
			return fmt.Errorf("failed to revoke sessions: %w", err)
		}
		return nil
	})
}

func (r *AuthRepository) GetCredentialAccount(ctx context.Context, userID string) (*auth.Account, error) {
	rows, err := r.server.DB.Pool.Query(ctx,
		`SELECT `+accountColumns+` FROM auth_accounts WHERE user_id = @user_id AND provider_id = @provider`,
		pgx.NamedArgs{"user_id": userID, "provider": auth.CredentialProvider})
	if err != nil {
		return nil, fmt.Errorf("failed to get credential account: %w", err)
	}

	a, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[auth.Account])
	if err != nil {
		return nil, notFound("auth_accounts", err)
	}
	return a, nil
}

func (r *AuthRepository) UpdateUserRole(ctx context.Context, email string, role user.Role) (*auth.User, error) {
	rows, err := r.server.DB.Pool.Query(ctx,
		`UPDATE auth_users SET role = @role WHERE email = @email RETURNING `+authUserColumns,
		pgx.NamedArgs{"email": email, "role": role})
	if err != nil {
		return nil, fmt.Errorf("failed to update auth user role: %w", err)
	}

	u, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[auth.User])
	if err != nil {
		return nil, notFound("auth_users", err)
	}
	return u, nil
}

// ------------------------------------------------------------ sessions

func (r *AuthRepository) CreateSession(ctx context.Context, s *auth.Session) error {
	_, err := r.server.DB.Pool.Exec(ctx, `
		INSERT INTO auth_sessions (id, user_id, token_hash, expires_at, ip_address, user_agent)
		VALUES (@id, @user_id, @token_hash, @expires_at, @ip_address, @user_agent)
	`, pgx.NamedArgs{
		"id":         s.ID,
		"user_id":    s.UserID,
		"token_hash": s.TokenHash,
		"expires_at": s.ExpiresAt,
		"ip_address": s.IPAddress,
		"user_agent": s.UserAgent,
	})
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *AuthRepository) GetSession(ctx context.Context, id string) (*auth.Session, error) {
	rows, err := r.server.DB.Pool.Query(ctx, `SELECT `+sessionColumns+` FROM auth_sessions WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	s, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[auth.Session])
	if err != nil {
		return nil, notFound("auth_sessions", err)
	}
	return s, nil
}

func (r *AuthRepository) DeleteSession(ctx context.Context, id string) error {
	if _, err := r.server.DB.Pool.Exec(ctx, `DELETE FROM auth_sessions WHERE id = @id`, pgx.NamedArgs{"id": id}); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions purges sessions that expired before now.
func (r *AuthRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.server.DB.Pool.Exec(ctx, `DELETE FROM auth_sessions WHERE expires_at <= @now`, pgx.NamedArgs{"now": now})
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return result.RowsAffected(), nil
}

// ------------------------------------------------------------ verifications

// ReplaceVerification stores a fresh token for identifier, discarding any
// previous ones.
func (r *AuthRepository) ReplaceVerification(ctx context.Context, v *auth.Verification) error {
	return r.server.DB.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM auth_verifications WHERE identifier = @identifier`,
			pgx.NamedArgs{"identifier": v.Identifier}); err != nil {
			return fmt.Errorf("failed to clear verifications: %w", err)
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO auth_verifications (id, identifier, value, expires_at)
			VALUES (@id, @identifier, @value, @expires_at)
		`, pgx.NamedArgs{"id": v.ID, "identifier": v.Identifier, "value": v.Value, "expires_at": v.ExpiresAt})
		if err != nil {
			return fmt.Errorf("failed to insert verification: %w", err)
		}
		return nil
	})
}

func (r *AuthRepository) GetVerification(ctx context.Context, identifier string) (*auth.Verification, error) {
	rows, err := r.server.DB.Pool.Query(ctx, `
		SELECT `+verificationColumns+`
		FROM auth_verifications
		WHERE identifier = @identifier
		ORDER BY created_at DESC
		LIMIT 1
	`, pgx.NamedArgs{"identifier": identifier})
	if err != nil {
		return nil, fmt.Errorf("failed to get verification: %w", err)
	}

	v, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[auth.Verification])
	if err != nil {
		return nil, notFound("auth_verifications", err)
	}
	return v, nil
}

func (r *AuthRepository) DeleteVerifications(ctx context.Context, identifier string) error {
	if _, err := r.server.DB.Pool.Exec(ctx, `DELETE FROM auth_verifications WHERE identifier = @identifier`,
		pgx.NamedArgs{"identifier": identifier}); err != nil {
		return fmt.Errorf("failed to delete verifications: %w", err)
	}
	return nil
}
