package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/panjilaras/Dashboard-PI/internal/lib/job"
	"github.com/panjilaras/Dashboard-PI/internal/model"
	"github.com/panjilaras/Dashboard-PI/internal/model/auth"
	"github.com/panjilaras/Dashboard-PI/internal/model/user"
)

const testPassword = "Str0ng!Pass"

type authServiceFixture struct {
	svc   *AuthService
	auth  *fakeAuthStore
	users *fakeUserStore
	jobs  *fakeEnqueuer
	cache *fakeCache
}

func newAuthServiceFixture(t *testing.T) *authServiceFixture {
	t.Helper()
	f := &authServiceFixture{
		auth:  newFakeAuthStore(),
		users: newFakeUserStore(directoryUsers()...),
		jobs:  &fakeEnqueuer{},
		cache: newFakeCache(),
	}
	f.svc = NewAuthService(newTestServer(), f.auth, f.users, f.jobs, f.cache)
	f.svc.now = func() time.Time { return testNow }
	return f
}

func (f *authServiceFixture) signUp(t *testing.T, name, email string) *auth.CurrentUser {
	t.Helper()
	cu, err := f.svc.SignUp(context.Background(), &auth.SignUpPayload{Name: name, Email: email, Password: testPassword})
	if err != nil {
		t.Fatalf("sign up failed: %v", err)
	}
	return cu
}

func (f *authServiceFixture) signIn(t *testing.T, email, password string) *auth.SignInResponse {
	t.Helper()
	res, err := f.svc.SignIn(context.Background(), &auth.SignInPayload{Email: email, Password: password}, SessionMeta{IPAddress: "127.0.0.1"})
	if err != nil {
		t.Fatalf("sign in failed: %v", err)
	}
	return res
}

func TestAuthService_SignUp(t *testing.T) {
	f := newAuthServiceFixture(t)

	cu := f.signUp(t, "Jane Doe", "jane@example.com")
	if cu.UserID == 0 || cu.Role != user.RoleMember || cu.Status != user.StatusActive {
		t.Errorf("unexpected current user %+v", cu)
	}
	if types := f.jobs.types(); len(types) != 1 || types[0] != job.TaskWelcome {
		t.Errorf("expected welcome email, got %v", types)
	}

	_, err := f.svc.SignUp(context.Background(), &auth.SignUpPayload{Name: "Jane", Email: "jane@example.com", Password: testPassword})
	assertHTTPError(t, err, 400, "AUTH_USER_ALREADY_EXISTS")
}

func TestAuthService_SignUpLinksExistingMaster(t *testing.T) {
	f := newAuthServiceFixture(t)

	cu := f.signUp(t, "John Smith", "john@example.com")
	if cu.UserID != 1 || cu.Role != user.RoleAdmin {
		t.Errorf("expected link to admin master row 1, got %+v", cu)
	}
}

func TestAuthService_SessionLifecycle(t *testing.T) {
	f := newAuthServiceFixture(t)
	ctx := context.Background()
	f.signUp(t, "Jane Doe", "jane@example.com")

	res := f.signIn(t, "jane@example.com", testPassword)
	if !res.ExpiresAt.Equal(testNow.Add(24 * time.Hour)) {
		t.Errorf("unexpected expiry %s", res.ExpiresAt)
	}

	identity, err := f.svc.AuthenticateSession(ctx, res.Token)
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if identity.Email != "jane@example.com" || identity.MasterUserID == 0 || identity.SessionID == "" {
		t.Errorf("unexpected identity %+v", identity)
	}
	if stored := f.auth.sessions[identity.SessionID]; stored.TokenHash == res.Token {
		t.Error("session must not store the raw token")
	}

	if err := f.svc.SignOut(ctx, identity); err != nil {
		t.Fatalf("sign out failed: %v", err)
	}
	_, err = f.svc.AuthenticateSession(ctx, res.Token)
	assertHTTPError(t, err, 401, "INVALID_SESSION")
}

func TestAuthService_RememberMe(t *testing.T) {
	f := newAuthServiceFixture(t)
	f.signUp(t, "Jane Doe", "jane@example.com")

	res, err := f.svc.SignIn(context.Background(), &auth.SignInPayload{
		Email: "jane@example.com", Password: testPassword, RememberMe: true,
	}, SessionMeta{})
	if err != nil {
		t.Fatalf("sign in failed: %v", err)
	}
	if !res.ExpiresAt.Equal(testNow.Add(30 * 24 * time.Hour)) {
		t.Errorf("unexpected expiry %s", res.ExpiresAt)
	}
}

func TestAuthService_SignInRejected(t *testing.T) {
	f := newAuthServiceFixture(t)
	f.signUp(t, "Jane Doe", "jane@example.com")
	ctx := context.Background()

	testCases := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "jane@example.com", "Wr0ng!Pass"},
		{"unknown email", "nobody@example.com", testPassword},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.SignIn(ctx, &auth.SignInPayload{Email: tc.email, Password: tc.password}, SessionMeta{})
			assertHTTPError(t, err, 401, "INVALID_CREDENTIALS")
		})
	}
}

func TestAuthService_InactiveAccount(t *testing.T) {
	f := newAuthServiceFixture(t)
	ctx := context.Background()
	f.signUp(t, "Sarah Johnson", "sarah@example.com")
	res := f.signIn(t, "sarah@example.com", testPassword)

	if _, err := f.users.Update(ctx, &user.UpdateUserPayload{IDParam: model.IDParam{ID: 2}, Status: ptr(user.StatusInactive)}); err != nil {
		t.Fatal(err)
	}

	_, err := f.svc.AuthenticateSession(ctx, res.Token)
	assertHTTPError(t, err, 401, "ACCOUNT_INACTIVE")

	_, err = f.svc.SignIn(ctx, &auth.SignInPayload{Email: "sarah@example.com", Password: testPassword}, SessionMeta{})
	assertHTTPError(t, err, 401, "ACCOUNT_INACTIVE")
}

func TestAuthService_RoleComesFromMasterRow(t *testing.T) {
	f := newAuthServiceFixture(t)
	ctx := context.Background()
	f.signUp(t, "Sarah Johnson", "sarah@example.com")
	res := f.signIn(t, "sarah@example.com", testPassword)

	if _, err := f.users.Update(ctx, &user.UpdateUserPayload{IDParam: model.IDParam{ID: 2}, Role: ptr(user.RoleManager)}); err != nil {
		t.Fatal(err)
	}

	identity, err := f.svc.AuthenticateSession(ctx, res.Token)
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if identity.Role != user.RoleManager {
		t.Errorf("expected manager, got %s", identity.Role)
	}
}

func TestAuthService_AuthenticateSessionRejectsBadTokens(t *testing.T) {
	f := newAuthServiceFixture(t)
	ctx := context.Background()
	f.signUp(t, "Jane Doe", "jane@example.com")
	res := f.signIn(t, "jane@example.com", testPassword)

	t.Run("garbage", func(t *testing.T) {
		_, err := f.svc.AuthenticateSession(ctx, "not-a-token")
		assertHTTPError(t, err, 401, "INVALID_SESSION")
	})

	t.Run("tampered signature", func(t *testing.T) {
		parts := strings.Split(res.Token, ".")
		if strings.HasPrefix(parts[2], "A") {
			parts[2] = "B" + parts[2][1:]
		} else {
			parts[2] = "A" + parts[2][1:]
		}
		_, err := f.svc.AuthenticateSession(ctx, strings.Join(parts, "."))
		assertHTTPError(t, err, 401, "INVALID_SESSION")
	})

	t.Run("expired", func(t *testing.T) {
		f.svc.now = func() time.Time { return testNow.Add(25 * time.Hour) }
		defer func() { f.svc.now = func() time.Time { return testNow } }()

		_, err := f.svc.AuthenticateSession(ctx, res.Token)
		assertHTTPError(t, err, 401, "INVALID_SESSION")
	})
}

func TestAuthService_PasswordReset(t *testing.T) {
	f := newAuthServiceFixture(t)
	ctx := context.Background()
	f.signUp(t, "Jane Doe", "jane@example.com")
	oldSession := f.signIn(t, "jane@example.com", testPassword)

	unknown, err := f.svc.ForgotPassword(ctx, &auth.ForgotPasswordPayload{Email: "nobody@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	known, err := f.svc.ForgotPassword(ctx, &auth.ForgotPasswordPayload{Email: "jane@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if unknown.Message != known.Message {
		t.Error("responses must not reveal whether the email exists")
	}

	last := f.jobs.tasks[len(f.jobs.tasks)-1]
	if last.Type() != job.TaskPasswordReset {
		t.Fatalf("expected reset email, got %s", last.Type())
	}
	var payload job.PasswordResetEmailPayload
	if err := json.Unmarshal(last.Payload(), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.ExpiresIn != "24 hours" {
		t.Errorf("unexpected expiry text %q", payload.ExpiresIn)
	}

	_, err = f.svc.ResetPassword(ctx, &auth.ResetPasswordPayload{Email: "jane@example.com", Token: "wrong", NewPassword: "N3w!Password"})
	assertHTTPError(t, err, 400, "INVALID_RESET_TOKEN")

	if _, err := f.svc.ResetPassword(ctx, &auth.ResetPasswordPayload{
		Email: "jane@example.com", Token: payload.Token, NewPassword: "N3w!Password",
	}); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	_, err = f.svc.AuthenticateSession(ctx, oldSession.Token)
	assertHTTPError(t, err, 401, "INVALID_SESSION")

	f.signIn(t, "jane@example.com", "N3w!Password")

	_, err = f.svc.ResetPassword(ctx, &auth.ResetPasswordPayload{Email: "jane@example.com", Token: payload.Token, NewPassword: "An0ther!Pass"})
	assertHTTPError(t, err, 400, "INVALID_RESET_TOKEN")
}

func TestAuthService_ResetTokenExpires(t *testing.T) {
	f := newAuthServiceFixture(t)
	ctx := context.Background()
	f.signUp(t, "Jane Doe", "jane@example.com")

	if _, err := f.svc.ForgotPassword(ctx, &auth.ForgotPasswordPayload{Email: "jane@example.com"}); err != nil {
		t.Fatal(err)
	}
	var payload job.PasswordResetEmailPayload
	if err := json.Unmarshal(f.jobs.tasks[len(f.jobs.tasks)-1].Payload(), &payload); err != nil {
		t.Fatal(err)
	}

	f.svc.now = func() time.Time { return testNow.Add(24 * time.Hour) }
	_, err := f.svc.ResetPassword(ctx, &auth.ResetPasswordPayload{Email: "jane@example.com", Token: payload.Token, NewPassword: "N3w!Password"})
	assertHTTPError(t, err, 400, "INVALID_RESET_TOKEN")
}

func TestAuthService_CurrentUserCreatesMasterRow(t *testing.T) {
	f := newAuthServiceFixture(t)
	ctx := context.Background()
	f.auth.users["auth-9"] = &auth.User{ID: "auth-9", Name: "Late Joiner", Email: "late@example.com", Role: user.RoleViewer}

	cu, err := f.svc.CurrentUser(ctx, &auth.Identity{AuthUserID: "auth-9"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cu.UserID == 0 || cu.Role != user.RoleViewer {
		t.Errorf("master row not created from auth user: %+v", cu)
	}
	if f.cache.invalidations != 1 {
		t.Errorf("expected cache invalidation, got %d", f.cache.invalidations)
	}

	_, err = f.svc.CurrentUser(ctx, &auth.Identity{AuthUserID: "missing"})
	assertHTTPError(t, err, 404, "AUTH_USER_NOT_FOUND")
}

func TestAuthService_SyncRole(t *testing.T) {
	f := newAuthServiceFixture(t)
	ctx := context.Background()
	f.signUp(t, "Jane Doe", "jane@example.com")

	res, err := f.svc.SyncRole(ctx, &auth.SyncRolePayload{Email: "jane@example.com", Role: user.RoleManager})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success || res.User.Role != user.RoleManager {
		t.Errorf("unexpected response %+v", res)
	}

	_, err = f.svc.SyncRole(ctx, &auth.SyncRolePayload{Email: "nobody@example.com", Role: user.RoleManager})
	assertHTTPError(t, err, 404, "AUTH_USER_NOT_FOUND")
}

func TestAuthService_AuthenticateClerk(t *testing.T) {
	f := newAuthServiceFixture(t)
	calls := 0
	f.svc.fetchClerk = func(_ context.Context, id string) (*clerk.User, error) {
		calls++
		return &clerk.User{
			ID:                    id,
			FirstName:             ptr("John"),
			PrimaryEmailAddressID: ptr("idn_1"),
			EmailAddresses: []*clerk.EmailAddress{
				{ID: "idn_0", EmailAddress: "old@example.com"},
				{ID: "idn_1", EmailAddress: "John@Example.com", Verification: &clerk.Verification{Status: "verified"}},
			},
		}, nil
	}

	for range 2 {
		identity, err := f.svc.AuthenticateClerk(context.Background(), "user_123", "sess_1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if identity.Email != "john@example.com" || identity.Role != user.RoleAdmin || identity.MasterUserID != 1 {
			t.Errorf("unexpected identity %+v", identity)
		}
	}
	if calls != 1 {
		t.Errorf("clerk user should be fetched once, got %d", calls)
	}
	if !f.auth.users["user_123"].EmailVerified {
		t.Error("verified flag not copied")
	}
}

func TestClerkDisplayName(t *testing.T) {
	if got := clerkDisplayName(&clerk.User{FirstName: ptr("Ada"), LastName: ptr("Lovelace")}, "ada@example.com"); got != "Ada Lovelace" {
		t.Errorf("unexpected name %q", got)
	}
	if got := clerkDisplayName(&clerk.User{}, "ada@example.com"); got != "ada" {
		t.Errorf("unexpected fallback %q", got)
	}
}

func TestHumanizeTTL(t *testing.T) {
	testCases := map[time.Duration]string{
		time.Hour:        "1 hour",
		24 * time.Hour:   "24 hours",
		30 * time.Minute: "30 minutes",
	}
	for d, want := range testCases {
		if got := humanizeTTL(d); got != want {
			t.Errorf("%s: expected %q, got %q", d, want, got)
		}
	}
}

func TestAuthService_HandleSessionCleanup(t *testing.T) {
	f := newAuthServiceFixture(t)
	f.auth.sessions["old"] = &auth.Session{ID: "old", ExpiresAt: testNow.Add(-time.Minute)}
	f.auth.sessions["live"] = &auth.Session{ID: "live", ExpiresAt: testNow.Add(time.Hour)}

	if err := f.svc.HandleSessionCleanup(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := f.auth.sessions["old"]; ok {
		t.Error("expired session not removed")
	}
	if _, ok := f.auth.sessions["live"]; !ok {
		t.Error("live session removed")
	}
}

func TestPrimaryEmail_NoAddresses(t *testing.T) {
	email, verified := primaryEmail(&clerk.User{})
	if email != "" || verified {
		t.Errorf("expected empty result, got %q %v", email, verified)
	}
}
