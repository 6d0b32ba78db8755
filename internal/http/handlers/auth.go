package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/platemate/orderhub/internal/auth"
	"github.com/platemate/orderhub/internal/config"
	"github.com/platemate/orderhub/internal/domain/user"
	"github.com/platemate/orderhub/internal/repo/postgres"
	"github.com/platemate/orderhub/internal/security"
)

type UserStore interface {
	Create(ctx context.Context, username, email, passwordHash, role string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type SessionStore interface {
	Store(ctx context.Context, row postgres.RefreshTokenRow) error
	Rotate(ctx context.Context, jti, presentedHash string, newRow postgres.RefreshTokenRow) error
	RevokeByID(ctx context.Context, jti string) error
}

type AuthHandler struct {
	users    UserStore
	sessions SessionStore
	hasher   *security.Hasher
	jwt      *auth.Manager
	cfg      config.Config
	log      *slog.Logger
}

func NewAuthHandler(users UserStore, sessions SessionStore, hasher *security.Hasher, jwtManager *auth.Manager, cfg config.Config, log *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		jwt:      jwtManager,
		cfg:      cfg,
		log:      log,
	}
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	// explicit lookup first so a duplicate reads as a conflict, not a
	// blind insert failure; the unique index still backstops races
	_, err := h.users.GetByEmail(cctx, req.Email)

	if err == nil {
		RespondConflict(ctx, "User with this email already exists.")
		return
	}

	if !errors.Is(err, user.ErrNotFound) {
		RespondInternal(ctx, "Server error during registration.")
		return
	}

	hash, err := h.hasher.Hash(req.Password)

	if err != nil {
		RespondInternal(ctx, "Server error during registration.")
		return
	}

	u, err := h.users.Create(cctx, req.Username, req.Email, hash, user.RoleUser)

	if err != nil {
		switch {
		case errors.Is(err, user.ErrEmailTaken):
			RespondConflict(ctx, "User with this email already exists.")
		case errors.Is(err, user.ErrUsernameTaken):
			RespondConflict(ctx, "User with this username already exists.")
		default:
			RespondInternal(ctx, "Server error during registration.")
		}
		return
	}

	accessToken, err := h.issueSession(ctx, cctx, u)

	if err != nil {
		RespondInternal(ctx, "Server error during registration.")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message":     "User registered successfully!",
		"accessToken": accessToken,
		"userId":      u.ID,
		"username":    u.Username,
		"email":       u.Email,
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		// distinguishable internally, identical on the wire
		if errors.Is(err, user.ErrNotFound) {
			h.log.DebugContext(cctx, "login failed", "reason", "email_not_found")
		} else {
			h.log.ErrorContext(cctx, "login lookup failed", "err", err)
		}
		RespondUnAuthorized(ctx, "Invalid credentials.")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		h.log.DebugContext(cctx, "login failed", "reason", "bad_password")
		RespondUnAuthorized(ctx, "Invalid credentials.")
		return
	}

	accessToken, err := h.issueSession(ctx, cctx, foundUser)

	if err != nil {
		RespondInternal(ctx, "Server error during login.")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":     "Logged in successfully!",
		"accessToken": accessToken,
		"userId":      foundUser.ID,
		"username":    foundUser.Username,
		"email":       foundUser.Email,
		"role":        foundUser.Role,
	})
}

func (h *AuthHandler) Refresh(ctx *gin.Context) {
	raw, err := ctx.Cookie(h.refreshCookieName())

	if err != nil || raw == "" {
		RespondUnAuthorized(ctx, "Missing refresh token.")
		return
	}

	claims, err := h.jwt.VerifyRefreshToken(raw)

	if err != nil {
		RespondUnAuthorized(ctx, "Invalid refresh token.")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	newRaw, newJTI, newExpiresAt, err := h.jwt.GenerateRefreshToken(claims.UserID, claims.Username, claims.Email, claims.Role)
	if err != nil {
		RespondInternal(ctx, "Could not refresh session.")
		return
	}

	newRow := postgres.RefreshTokenRow{
		ID:        newJTI,
		UserID:    claims.UserID,
		TokenHash: h.jwt.HashRefreshToken(newRaw),
		ExpiresAt: newExpiresAt,
		CreatedAt: time.Now().UTC(),
	}

	err = h.sessions.Rotate(cctx, claims.JTI, h.jwt.HashRefreshToken(raw), newRow)

	if err != nil {
		if errors.Is(err, postgres.ErrInvalidRefreshToken) {
			RespondUnAuthorized(ctx, "Invalid refresh token.")
			return
		}
		RespondInternal(ctx, "Could not refresh session.")
		return
	}

	accessToken, err := h.jwt.GenerateAccessToken(claims.UserID, claims.Username, claims.Email, claims.Role)
	if err != nil {
		RespondInternal(ctx, "Could not refresh session.")
		return
	}

	h.setRefreshCookie(ctx, newRaw, newExpiresAt)

	ctx.JSON(http.StatusOK, gin.H{
		"message":     "Session refreshed.",
		"accessToken": accessToken,
	})
}

func (h *AuthHandler) Logout(ctx *gin.Context) {
	raw, err := ctx.Cookie(h.refreshCookieName())

	if err != nil || raw == "" {
		// still clear cookie to be safe
		h.clearRefreshCookie(ctx)
		ctx.Status(http.StatusNoContent)
		return
	}

	claims, err := h.jwt.VerifyRefreshToken(raw)
	if err != nil {
		h.clearRefreshCookie(ctx)
		ctx.Status(http.StatusNoContent)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	_ = h.sessions.RevokeByID(cctx, claims.JTI)

	h.clearRefreshCookie(ctx)
	ctx.Status(http.StatusNoContent)
}

// Helper functions

func (h *AuthHandler) issueSession(ctx *gin.Context, cctx context.Context, u user.User) (string, error) {
	accessToken, err := h.jwt.GenerateAccessToken(u.ID, u.Username, u.Email, u.Role)

	if err != nil {
		return "", err
	}

	rawRefresh, jti, expiresAt, err := h.jwt.GenerateRefreshToken(u.ID, u.Username, u.Email, u.Role)

	if err != nil {
		return "", err
	}

	err = h.sessions.Store(cctx, postgres.RefreshTokenRow{
		ID:        jti,
		UserID:    u.ID,
		TokenHash: h.jwt.HashRefreshToken(rawRefresh),
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	})

	if err != nil {
		return "", err
	}

	h.setRefreshCookie(ctx, rawRefresh, expiresAt)

	return accessToken, nil
}

func (h *AuthHandler) refreshCookieName() string {
	return "refresh_token"
}

func (h *AuthHandler) setRefreshCookie(ctx *gin.Context, raw string, expiresAt time.Time) {
	secure := h.cfg.Env == "prod"

	maxAge := int(time.Until(expiresAt).Seconds())

	ctx.SetSameSite(http.SameSiteStrictMode)

	ctx.SetCookie(
		h.refreshCookieName(),
		raw,
		maxAge,
		"/api/auth",
		"",
		secure,
		true, // HttpOnly.
	)
}

func (h *AuthHandler) clearRefreshCookie(ctx *gin.Context) {
	secure := h.cfg.Env == "prod"
	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(
		h.refreshCookieName(),
		"",
		-1,
		"/api/auth",
		"",
		secure,
		true,
	)
}
