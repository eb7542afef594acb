package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/parkinghub/internal/domain/role"
	"github.com/geocoder89/parkinghub/internal/domain/user"
	"github.com/geocoder89/parkinghub/internal/http/middlewares"
	"github.com/geocoder89/parkinghub/internal/service/account"
	"github.com/gin-gonic/gin"
)

type AccountService interface {
	CreateRole(ctx context.Context, in account.CreateRoleInput) (role.Role, error)
	SignUp(ctx context.Context, in account.SignUpInput) (user.User, error)
	Login(ctx context.Context, in account.LoginInput) (account.Session, error)
	GetCurrentUser(ctx context.Context, token string) (user.Profile, error)
	ListUsers(ctx context.Context) ([]user.Summary, error)
}

type AuthHandler struct {
	accounts AccountService
	ttl      time.Duration
	secure   bool
}

// NewAuthHandler wires the account routes. ttl sets the token cookie
// lifetime; secure marks the cookie Secure (prod only).
func NewAuthHandler(accounts AccountService, ttl time.Duration, secure bool) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		ttl:      ttl,
		secure:   secure,
	}
}

type CreateRoleRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type SignUpRequest struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	Hint     *string `json:"hint"`
	RoleID   *string `json:"roleId"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) CreateRole(ctx *gin.Context) {
	var req CreateRoleRequest

	if !BindJSON(ctx, &req) {
		return
	}

	r, err := h.accounts.CreateRole(ctx.Request.Context(), account.CreateRoleInput{
		Name:        req.Name,
		Description: req.Description,
	})

	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Role created successfully",
		"role":    r,
	})
}

func (h *AuthHandler) SignUp(ctx *gin.Context) {
	var req SignUpRequest

	if !BindJSON(ctx, &req) {
		return
	}

	u, err := h.accounts.SignUp(ctx.Request.Context(), account.SignUpInput{
		Username: req.Username,
		Password: req.Password,
		Hint:     req.Hint,
		RoleID:   req.RoleID,
	})

	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"user":    u,
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	session, err := h.accounts.Login(ctx.Request.Context(), account.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})

	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	h.setTokenCookie(ctx, session.Token)

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   session.Token,
		"role":    session.Role,
	})
}

func (h *AuthHandler) CurrentUser(ctx *gin.Context) {
	profile, err := h.accounts.GetCurrentUser(ctx.Request.Context(), middlewares.TokenFromRequest(ctx))

	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.Set(middlewares.CtxUserID, profile.ID)
	ctx.JSON(http.StatusOK, profile)
}

func (h *AuthHandler) ListUsers(ctx *gin.Context) {
	users, err := h.accounts.ListUsers(ctx.Request.Context())

	if err != nil {
		RespondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, users)
}

func (h *AuthHandler) setTokenCookie(ctx *gin.Context, token string) {
	ctx.SetSameSite(http.SameSiteLaxMode)

	ctx.SetCookie(
		middlewares.TokenCookie,
		token,
		int(h.ttl.Seconds()),
		"/",
		"",
		h.secure,
		true, // HttpOnly.
	)
}
