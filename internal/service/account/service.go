// Package account implements credential and session issuance: roles, signup,
// login, current-user lookup and user listing.
package account

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/geocoder89/parkinghub/internal/auth"
	"github.com/geocoder89/parkinghub/internal/domain/role"
	"github.com/geocoder89/parkinghub/internal/domain/user"
	"github.com/geocoder89/parkinghub/internal/observability"
	"github.com/geocoder89/parkinghub/internal/security"
)

type UserStore interface {
	GetByUsername(ctx context.Context, username string) (user.WithRole, error)
	GetByID(ctx context.Context, id string) (user.WithRole, error)
	Create(ctx context.Context, u user.User) error
	List(ctx context.Context) ([]user.WithRole, error)
}

type RoleStore interface {
	GetByName(ctx context.Context, name string) (role.Role, error)
	Create(ctx context.Context, r role.Role) error
}

type TokenCodec interface {
	Generate(userID string, role *string) (string, time.Time, error)
	Verify(token string) (*auth.Claims, error)
}

const DefaultStoreTimeout = 2 * time.Second

type Options struct {
	// StoreTimeout bounds every individual store call.
	StoreTimeout time.Duration
	Logger       *slog.Logger
	Prom         *observability.Prom
}

type Service struct {
	users        UserStore
	roles        RoleStore
	tokens       TokenCodec
	storeTimeout time.Duration
	log          *slog.Logger
	prom         *observability.Prom

	dummyOnce sync.Once
	dummyHash string
}

func NewService(users UserStore, roles RoleStore, tokens TokenCodec, opts Options) *Service {
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = DefaultStoreTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Service{
		users:        users,
		roles:        roles,
		tokens:       tokens,
		storeTimeout: opts.StoreTimeout,
		log:          opts.Logger,
		prom:         opts.Prom,
	}
}

type CreateRoleInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type SignUpInput struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	Hint     *string `json:"hint"`
	RoleID   *string `json:"roleId"`
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Session is the outcome of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Role      *string
}

func (s *Service) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.storeTimeout)
}

func (s *Service) CreateRole(ctx context.Context, in CreateRoleInput) (role.Role, error) {
	name := strings.TrimSpace(in.Name)

	if err := validate.Struct(roleFields{Name: name}); err != nil {
		return role.Role{}, newError(KindValidation, MsgRoleNameRequired, nil)
	}

	cctx, cancel := s.storeCtx(ctx)
	defer cancel()

	_, err := s.roles.GetByName(cctx, name)

	switch {
	case err == nil:
		return role.Role{}, newError(KindConflict, MsgRoleExists, nil)
	case !errors.Is(err, role.ErrNotFound):
		return role.Role{}, newError(KindInternal, "Error creating role", err)
	}

	r := role.New(name, in.Description)

	cctx2, cancel2 := s.storeCtx(ctx)
	defer cancel2()

	err = s.roles.Create(cctx2, r)

	if err != nil {
		if errors.Is(err, role.ErrNameTaken) {
			return role.Role{}, newError(KindConflict, MsgRoleExists, err)
		}
		return role.Role{}, newError(KindInternal, "Error creating role", err)
	}

	s.log.InfoContext(ctx, "role.created", "role_id", r.ID, "role_name", r.Name)

	return r, nil
}

func (s *Service) SignUp(ctx context.Context, in SignUpInput) (user.User, error) {
	username := strings.TrimSpace(in.Username)

	var hint *string
	if in.Hint != nil {
		if h := strings.TrimSpace(*in.Hint); h != "" {
			hint = &h
		}
	}

	var roleID *string
	if in.RoleID != nil && strings.TrimSpace(*in.RoleID) != "" {
		id := strings.TrimSpace(*in.RoleID)
		roleID = &id
	}

	fields := signUpFields{Username: username, Password: in.Password}
	if hint != nil {
		fields.Hint = *hint
	}
	if roleID != nil {
		fields.RoleID = *roleID
	}

	if err := validate.Struct(fields); err != nil {
		s.prom.ObserveAuth("signup", "invalid")
		return user.User{}, newError(KindValidation, signUpMessage(err), nil)
	}

	// fast path, the unique constraint below is the real guard
	cctx, cancel := s.storeCtx(ctx)
	defer cancel()

	_, err := s.users.GetByUsername(cctx, username)

	switch {
	case err == nil:
		s.prom.ObserveAuth("signup", "conflict")
		return user.User{}, newError(KindConflict, MsgUsernameTaken, nil)
	case !errors.Is(err, user.ErrNotFound):
		s.prom.ObserveAuth("signup", "error")
		return user.User{}, newError(KindInternal, "Error creating user", err)
	}

	hash, err := security.HashPassword(in.Password)

	if errors.Is(err, security.ErrPasswordTooLong) {
		s.prom.ObserveAuth("signup", "invalid")
		return user.User{}, newError(KindValidation, MsgPasswordTooLong, nil)
	}
	if err != nil {
		s.prom.ObserveAuth("signup", "error")
		return user.User{}, newError(KindInternal, "Error creating user", err)
	}

	u := user.NewFromInput(user.NewUser{
		Username:     username,
		PasswordHash: hash,
		Hint:         hint,
		RoleID:       roleID,
	})

	cctx2, cancel2 := s.storeCtx(ctx)
	defer cancel2()

	err = s.users.Create(cctx2, u)

	if err != nil {
		switch {
		case errors.Is(err, user.ErrUsernameTaken):
			s.prom.ObserveAuth("signup", "conflict")
			return user.User{}, newError(KindConflict, MsgUsernameTaken, err)
		case errors.Is(err, user.ErrUnknownRole):
			s.prom.ObserveAuth("signup", "invalid")
			return user.User{}, newError(KindValidation, MsgRoleUnknown, err)
		default:
			s.prom.ObserveAuth("signup", "error")
			return user.User{}, newError(KindInternal, "Error creating user", err)
		}
	}

	s.prom.ObserveAuth("signup", "ok")
	s.log.InfoContext(ctx, "user.signup", "user_id", u.ID)

	return u, nil
}

// Login checks credentials and mints a session token. Unknown usernames and
// wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, in LoginInput) (Session, error) {
	username := strings.TrimSpace(in.Username)

	if username == "" || in.Password == "" {
		s.prom.ObserveAuth("login", "invalid_credentials")
		return Session{}, newError(KindInvalidCredentials, MsgInvalidCredentials, nil)
	}

	cctx, cancel := s.storeCtx(ctx)
	defer cancel()

	found, err := s.users.GetByUsername(cctx, username)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// unknown usernames still pay for one bcrypt comparison
			_ = security.CheckPassword(s.dummy(), in.Password)

			s.prom.ObserveAuth("login", "invalid_credentials")
			return Session{}, newError(KindInvalidCredentials, MsgInvalidCredentials, nil)
		}

		s.prom.ObserveAuth("login", "error")
		return Session{}, newError(KindInternal, "Could not log in", err)
	}

	err = security.CheckPassword(found.PasswordHash, in.Password)

	if err != nil {
		if errors.Is(err, security.ErrPasswordMismatch) {
			s.prom.ObserveAuth("login", "invalid_credentials")
			return Session{}, newError(KindInvalidCredentials, MsgInvalidCredentials, nil)
		}

		s.prom.ObserveAuth("login", "error")
		return Session{}, newError(KindInternal, "Could not log in", err)
	}

	token, expiresAt, err := s.tokens.Generate(found.ID, found.RoleName)

	if err != nil {
		s.prom.ObserveAuth("login", "error")
		return Session{}, newError(KindInternal, "Could not generate token", err)
	}

	s.prom.ObserveAuth("login", "ok")
	s.log.InfoContext(ctx, "user.login", "user_id", found.ID)

	return Session{Token: token, ExpiresAt: expiresAt, Role: found.RoleName}, nil
}

func (s *Service) GetCurrentUser(ctx context.Context, token string) (user.Profile, error) {
	if token == "" {
		s.prom.ObserveAuth("current_user", "unauthorized")
		return user.Profile{}, newError(KindUnauthorized, MsgUnauthorized, nil)
	}

	claims, err := s.tokens.Verify(token)

	if err != nil {
		s.prom.ObserveAuth("current_user", "unauthorized")
		return user.Profile{}, newError(KindUnauthorized, MsgInvalidToken, err)
	}

	cctx, cancel := s.storeCtx(ctx)
	defer cancel()

	u, err := s.users.GetByID(cctx, claims.UserID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			s.prom.ObserveAuth("current_user", "not_found")
			return user.Profile{}, newError(KindNotFound, MsgUserNotFound, err)
		}

		s.prom.ObserveAuth("current_user", "error")
		return user.Profile{}, newError(KindInternal, "Could not fetch user", err)
	}

	s.prom.ObserveAuth("current_user", "ok")

	return user.Profile{ID: u.ID, Username: u.Username, Role: u.RoleName}, nil
}

// ListUsers returns every user with its role name. Unpaginated.
func (s *Service) ListUsers(ctx context.Context) ([]user.Summary, error) {
	cctx, cancel := s.storeCtx(ctx)
	defer cancel()

	users, err := s.users.List(cctx)

	if err != nil {
		return nil, newError(KindInternal, "Failed to fetch users", err)
	}

	out := make([]user.Summary, 0, len(users))
	for _, u := range users {
		out = append(out, user.Summary{ID: u.ID, Name: u.Username, Role: u.RoleName})
	}

	return out, nil
}

func (s *Service) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := security.HashPassword("parkinghub-timing-equaliser")
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}
