package account_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/geocoder89/parkinghub/internal/auth"
	"github.com/geocoder89/parkinghub/internal/domain/role"
	"github.com/geocoder89/parkinghub/internal/domain/user"
	"github.com/geocoder89/parkinghub/internal/repo/memory"
	"github.com/geocoder89/parkinghub/internal/service/account"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

type fixture struct {
	svc    *account.Service
	repo   *memory.AccountsRepo
	tokens *auth.Manager
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	repo := memory.NewAccountsRepo()
	tokens := auth.NewManager("test-secret", time.Hour)

	svc := account.NewService(repo.Users(), repo.Roles(), tokens, account.Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	return fixture{svc: svc, repo: repo, tokens: tokens}
}

func requireKind(t *testing.T, err error, kind account.Kind, message string) {
	t.Helper()

	require.Error(t, err)
	assert.Equal(t, kind, account.KindOf(err), "kind for %v", err)

	var e *account.Error
	require.True(t, errors.As(err, &e))
	if message != "" {
		assert.Equal(t, message, e.Message)
	}
}

func TestCreateRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.svc.CreateRole(ctx, account.CreateRoleInput{Name: "admin", Description: strPtr("full access")})
	require.NoError(t, err)
	assert.Equal(t, "admin", r.Name)
	assert.NotEmpty(t, r.ID)

	_, err = f.svc.CreateRole(ctx, account.CreateRoleInput{Name: "admin"})
	requireKind(t, err, account.KindConflict, account.MsgRoleExists)

	_, err = f.svc.CreateRole(ctx, account.CreateRoleInput{Name: "   "})
	requireKind(t, err, account.KindValidation, account.MsgRoleNameRequired)
}

func TestSignUpThenLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.svc.SignUp(ctx, account.SignUpInput{Username: "alice", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.NotEqual(t, "secret123", u.PasswordHash)
	assert.Nil(t, u.RoleID)
	assert.Nil(t, u.Hint)

	session, err := f.svc.Login(ctx, account.LoginInput{Username: "alice", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Nil(t, session.Role)

	claims, err := f.tokens.Verify(session.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)

	_, err = f.svc.Login(ctx, account.LoginInput{Username: "alice", Password: "wrong"})
	requireKind(t, err, account.KindInvalidCredentials, account.MsgInvalidCredentials)

	_, err = f.svc.Login(ctx, account.LoginInput{Username: "nobody", Password: "secret123"})
	requireKind(t, err, account.KindInvalidCredentials, account.MsgInvalidCredentials)
}

func TestSignUp_ValidBoundaries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inputs := []account.SignUpInput{
		{Username: strings.Repeat("u", account.MaxUsernameLen), Password: strings.Repeat("p", account.MaxPasswordLen)},
		{Username: "ünïcødé", Password: "x", Hint: strPtr(strings.Repeat("h", account.MaxHintLen))},
		{Username: "  padded  ", Password: "padded-pass"},
	}

	for _, in := range inputs {
		_, err := f.svc.SignUp(ctx, in)
		require.NoError(t, err, "signup %q", in.Username)

		_, err = f.svc.Login(ctx, account.LoginInput{Username: in.Username, Password: in.Password})
		require.NoError(t, err, "login %q", in.Username)
	}
}

func TestSignUp_Validation(t *testing.T) {
	tests := []struct {
		name    string
		in      account.SignUpInput
		message string
	}{
		{"empty_username", account.SignUpInput{Username: "", Password: "x"}, account.MsgCredentialsMissing},
		{"blank_username", account.SignUpInput{Username: "   ", Password: "x"}, account.MsgCredentialsMissing},
		{"empty_password", account.SignUpInput{Username: "bob", Password: ""}, account.MsgCredentialsMissing},
		{"required_beats_length", account.SignUpInput{Username: strings.Repeat("u", 40), Password: ""}, account.MsgCredentialsMissing},
		{"long_username", account.SignUpInput{Username: strings.Repeat("u", account.MaxUsernameLen+1), Password: "x"}, account.MsgUsernameTooLong},
		{"long_password", account.SignUpInput{Username: "bob", Password: strings.Repeat("p", account.MaxPasswordLen+1)}, account.MsgPasswordTooLong},
		{"long_hint", account.SignUpInput{Username: "bob", Password: "x", Hint: strPtr(strings.Repeat("h", account.MaxHintLen+1))}, account.MsgHintTooLong},
		{"bad_role_id", account.SignUpInput{Username: "bob", Password: "x", RoleID: strPtr("not-a-uuid")}, account.MsgRoleIDInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.svc.SignUp(context.Background(), tt.in)
			requireKind(t, err, account.KindValidation, tt.message)
		})
	}
}

func TestSignUp_TrimsUsernameAndHint(t *testing.T) {
	f := newFixture(t)

	u, err := f.svc.SignUp(context.Background(), account.SignUpInput{
		Username: "  carol ",
		Password: "pw",
		Hint:     strPtr("  my dog  "),
	})
	require.NoError(t, err)
	assert.Equal(t, "carol", u.Username)
	require.NotNil(t, u.Hint)
	assert.Equal(t, "my dog", *u.Hint)

	blank, err := f.svc.SignUp(context.Background(), account.SignUpInput{Username: "dave", Password: "pw", Hint: strPtr("   ")})
	require.NoError(t, err)
	assert.Nil(t, blank.Hint)
}

func TestSignUp_DuplicateUsernameIsConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SignUp(ctx, account.SignUpInput{Username: "bob", Password: "first"})
	require.NoError(t, err)

	for _, in := range []account.SignUpInput{
		{Username: "bob", Password: "second"},
		{Username: " bob ", Password: "third", Hint: strPtr("other")},
	} {
		_, err := f.svc.SignUp(ctx, in)
		requireKind(t, err, account.KindConflict, account.MsgUsernameTaken)
	}
}

func TestSignUp_ConcurrentDuplicatesExactlyOneWins(t *testing.T) {
	f := newFixture(t)

	const attempts = 8

	var wg sync.WaitGroup
	errs := make([]error, attempts)

	start := make(chan struct{})
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = f.svc.SignUp(context.Background(), account.SignUpInput{Username: "bob", Password: "pw"})
		}(i)
	}
	close(start)
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		requireKind(t, err, account.KindConflict, account.MsgUsernameTaken)
	}
	assert.Equal(t, 1, ok)
}

func TestSignUp_UnknownRoleIsValidationError(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SignUp(context.Background(), account.SignUpInput{
		Username: "erin",
		Password: "pw",
		RoleID:   strPtr("7f1c3a52-2d8e-4a53-9a3e-0c8f2a9f3b11"),
	})
	requireKind(t, err, account.KindValidation, account.MsgRoleUnknown)
}

func TestLogin_CarriesRoleIntoToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.svc.CreateRole(ctx, account.CreateRoleInput{Name: "attendant"})
	require.NoError(t, err)

	_, err = f.svc.SignUp(ctx, account.SignUpInput{Username: "frank", Password: "pw", RoleID: &r.ID})
	require.NoError(t, err)

	session, err := f.svc.Login(ctx, account.LoginInput{Username: "frank", Password: "pw"})
	require.NoError(t, err)
	require.NotNil(t, session.Role)
	assert.Equal(t, "attendant", *session.Role)

	claims, err := f.tokens.Verify(session.Token)
	require.NoError(t, err)
	require.NotNil(t, claims.Role)
	assert.Equal(t, "attendant", *claims.Role)
}

func TestLogin_TrimsUsername(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SignUp(ctx, account.SignUpInput{Username: " bob", Password: "pw"})
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, account.LoginInput{Username: "bob", Password: "pw"})
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, account.LoginInput{Username: "bob  ", Password: "pw"})
	require.NoError(t, err)
}

func TestLogin_MissingFields(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Login(context.Background(), account.LoginInput{})
	requireKind(t, err, account.KindInvalidCredentials, account.MsgInvalidCredentials)
}

func TestGetCurrentUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.svc.SignUp(ctx, account.SignUpInput{Username: "gina", Password: "pw"})
	require.NoError(t, err)

	session, err := f.svc.Login(ctx, account.LoginInput{Username: "gina", Password: "pw"})
	require.NoError(t, err)

	profile, err := f.svc.GetCurrentUser(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, profile.ID)
	assert.Equal(t, "gina", profile.Username)
	assert.Nil(t, profile.Role)

	_, err = f.svc.GetCurrentUser(ctx, "")
	requireKind(t, err, account.KindUnauthorized, account.MsgUnauthorized)

	_, err = f.svc.GetCurrentUser(ctx, "garbage")
	requireKind(t, err, account.KindUnauthorized, account.MsgInvalidToken)

	foreign, _, err := auth.NewManager("other-secret", time.Hour).Generate(u.ID, nil)
	require.NoError(t, err)
	_, err = f.svc.GetCurrentUser(ctx, foreign)
	requireKind(t, err, account.KindUnauthorized, account.MsgInvalidToken)

	ghost, _, err := f.tokens.Generate("9b2f4f0e-0000-4000-8000-000000000000", nil)
	require.NoError(t, err)
	_, err = f.svc.GetCurrentUser(ctx, ghost)
	requireKind(t, err, account.KindNotFound, account.MsgUserNotFound)
}

func TestGetCurrentUser_ExpiryBoundary(t *testing.T) {
	repo := memory.NewAccountsRepo()
	issuedAt := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	now := issuedAt
	tokens := auth.NewManager("test-secret", time.Hour).WithClock(func() time.Time { return now })

	svc := account.NewService(repo.Users(), repo.Roles(), tokens, account.Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	ctx := context.Background()

	_, err := svc.SignUp(ctx, account.SignUpInput{Username: "hank", Password: "pw"})
	require.NoError(t, err)

	session, err := svc.Login(ctx, account.LoginInput{Username: "hank", Password: "pw"})
	require.NoError(t, err)

	now = issuedAt.Add(time.Hour - time.Second)
	_, err = svc.GetCurrentUser(ctx, session.Token)
	require.NoError(t, err)

	now = issuedAt.Add(time.Hour)
	_, err = svc.GetCurrentUser(ctx, session.Token)
	requireKind(t, err, account.KindUnauthorized, account.MsgInvalidToken)
}

func TestListUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.svc.CreateRole(ctx, account.CreateRoleInput{Name: "admin"})
	require.NoError(t, err)

	_, err = f.svc.SignUp(ctx, account.SignUpInput{Username: "ivy", Password: "pw", RoleID: &r.ID})
	require.NoError(t, err)
	_, err = f.svc.SignUp(ctx, account.SignUpInput{Username: "jack", Password: "pw"})
	require.NoError(t, err)

	users, err := f.svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	byName := map[string]*string{}
	for _, u := range users {
		byName[u.Name] = u.Role
	}
	require.NotNil(t, byName["ivy"])
	assert.Equal(t, "admin", *byName["ivy"])
	assert.Nil(t, byName["jack"])
}

type failingUsers struct {
	*memory.UsersView
	err error
}

func (f failingUsers) GetByUsername(context.Context, string) (user.WithRole, error) {
	return user.WithRole{}, f.err
}

func (f failingUsers) List(context.Context) ([]user.WithRole, error) { return nil, f.err }

type failingRoles struct{ err error }

func (f failingRoles) GetByName(context.Context, string) (role.Role, error) { return role.Role{}, f.err }
func (f failingRoles) Create(context.Context, role.Role) error            { return f.err }

func TestStoreFailuresAreInternal(t *testing.T) {
	boom := errors.New("connection refused")
	svc := account.NewService(failingUsers{err: boom}, failingRoles{err: boom}, auth.NewManager("s", time.Hour), account.Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	ctx := context.Background()

	_, err := svc.CreateRole(ctx, account.CreateRoleInput{Name: "admin"})
	requireKind(t, err, account.KindInternal, "")
	assert.ErrorIs(t, err, boom)

	_, err = svc.SignUp(ctx, account.SignUpInput{Username: "kim", Password: "pw"})
	requireKind(t, err, account.KindInternal, "")

	_, err = svc.Login(ctx, account.LoginInput{Username: "kim", Password: "pw"})
	requireKind(t, err, account.KindInternal, "")

	_, err = svc.ListUsers(ctx)
	requireKind(t, err, account.KindInternal, "Failed to fetch users")
}

type slowUsers struct {
	*memory.UsersView
}

func (slowUsers) GetByUsername(ctx context.Context, _ string) (user.WithRole, error) {
	<-ctx.Done()
	return user.WithRole{}, ctx.Err()
}

func TestStoreCallsAreBounded(t *testing.T) {
	svc := account.NewService(slowUsers{}, failingRoles{}, auth.NewManager("s", time.Hour), account.Options{
		StoreTimeout: 20 * time.Millisecond,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	start := time.Now()
	_, err := svc.Login(context.Background(), account.LoginInput{Username: "kim", Password: "pw"})
	requireKind(t, err, account.KindInternal, "")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}
