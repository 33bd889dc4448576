package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/vehicle-parking-system/internal/config"
	"github.com/iliyamo/vehicle-parking-system/internal/repository"
	"github.com/iliyamo/vehicle-parking-system/internal/utils"
)

// rememberedTTL is the access-token lifetime when the client sets
// remember_me at login.
const rememberedTTL = 7 * 24 * time.Hour

// AuthHandler owns registration, login and the token lifecycle.
type AuthHandler struct {
	users  *repository.UserRepo
	tokens *repository.TokenRepo
	cfg    *config.Config
	log    *logrus.Logger
}

func NewAuthHandler(users *repository.UserRepo, tokens *repository.TokenRepo, cfg *config.Config, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, cfg: cfg, log: log}
}

type registerRequest struct {
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Phone    *string `json:"phone"`
}

// Register creates a user-role account. The configured admin identity is
// synthetic and its email stays reserved.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid request body")
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	switch {
	case req.Username == "" || req.Email == "" || req.Password == "":
		return respondErr(c, http.StatusBadRequest, "username, email and password are required")
	case len(req.Password) < 6:
		return respondErr(c, http.StatusBadRequest, "password must be at least 6 characters")
	case !strings.Contains(req.Email, "@"):
		return respondErr(c, http.StatusBadRequest, "invalid email address")
	case req.Email == h.cfg.AdminEmail:
		return respondErr(c, http.StatusConflict, "email already registered")
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	id, err := h.users.Create(ctx, req.Username, req.Email, req.Password, req.Phone, h.cfg.BcryptCost)
	switch {
	case errors.Is(err, repository.ErrUsernameExists):
		return respondErr(c, http.StatusConflict, "username already taken")
	case errors.Is(err, repository.ErrEmailExists):
		return respondErr(c, http.StatusConflict, "email already registered")
	case err != nil:
		h.log.WithError(err).Error("register: create user")
		return respondInternal(c)
	}

	user, err := h.users.GetByID(ctx, id)
	if err != nil {
		h.log.WithError(err).Error("register: read back user")
		return respondInternal(c)
	}
	return respondOK(c, http.StatusCreated, "registration successful", userDTO(&user))
}

type loginRequest struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

func (r loginRequest) identifier() string {
	if v := strings.TrimSpace(r.Username); v != "" {
		return v
	}
	return strings.ToLower(strings.TrimSpace(r.Email))
}

// Login issues an access and a refresh token. The configured admin
// credentials short-circuit the user lookup entirely.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid request body")
	}
	id := req.identifier()
	if id == "" || req.Password == "" {
		return respondErr(c, http.StatusBadRequest, "credentials are required")
	}

	if strings.ToLower(id) == h.cfg.AdminEmail && req.Password == h.cfg.AdminPassword {
		return h.issueTokens(c, utils.Identity{
			Subject:  utils.AdminSubject,
			Role:     "admin",
			Username: "admin",
			Email:    h.cfg.AdminEmail,
		}, req.RememberMe, nil)
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	user, err := h.users.FindByUsernameOrEmail(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return respondErr(c, http.StatusUnauthorized, "invalid credentials")
	}
	if err != nil {
		h.log.WithError(err).Error("login: lookup user")
		return respondInternal(c)
	}
	if !utils.VerifyPassword(user.PasswordHash, req.Password) {
		return respondErr(c, http.StatusUnauthorized, "invalid credentials")
	}
	if !user.IsActive {
		return respondErr(c, http.StatusForbidden, "account is deactivated")
	}

	if err := h.users.TouchLastLogin(ctx, user.ID); err != nil {
		h.log.WithError(err).WithField("user_id", user.ID).Warn("login: update last_login")
	}

	return h.issueTokens(c, utils.Identity{
		Subject:  strconv.FormatUint(user.ID, 10),
		Role:     user.Role,
		Username: user.Username,
		Email:    user.Email,
	}, req.RememberMe, userDTO(&user))
}

func (h *AuthHandler) issueTokens(c echo.Context, id utils.Identity, remember bool, user interface{}) error {
	accessTTL := time.Duration(h.cfg.AccessTTLMin) * time.Minute
	if remember {
		accessTTL = rememberedTTL
	}

	access, err := utils.NewAccessToken(h.cfg.JWTSecret, id, accessTTL)
	if err != nil {
		h.log.WithError(err).Error("issue access token")
		return respondInternal(c)
	}
	refresh, err := utils.NewRefreshToken(h.cfg.JWTSecret, id, h.cfg.RefreshTTLDays)
	if err != nil {
		h.log.WithError(err).Error("issue refresh token")
		return respondInternal(c)
	}

	data := echo.Map{
		"access_token":  access.Value,
		"refresh_token": refresh.Value,
		"token_type":    "Bearer",
		"expires_at":    access.Exp.UTC().Format(time.RFC3339),
		"role":          id.Role,
	}
	if user != nil {
		data["user"] = user
	}
	return respondOK(c, http.StatusOK, "login successful", data)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh trades a valid refresh token for a fresh access token. Revoked
// and mistyped tokens are rejected; deactivated users are cut off here too.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return respondErr(c, http.StatusBadRequest, "refresh_token is required")
	}

	parsed, err := utils.ParseToken(h.cfg.JWTSecret, req.RefreshToken)
	if err != nil || parsed.Type != utils.TokenTypeRefresh {
		return respondErr(c, http.StatusUnauthorized, "invalid refresh token")
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if revoked, err := h.tokens.IsRevoked(ctx, parsed.JTI); err != nil || revoked {
		return respondErr(c, http.StatusUnauthorized, "refresh token revoked")
	}

	id := parsed.Identity
	if id.Subject != utils.AdminSubject {
		uid, convErr := strconv.ParseUint(id.Subject, 10, 64)
		if convErr != nil {
			return respondErr(c, http.StatusUnauthorized, "invalid refresh token")
		}
		user, err := h.users.GetByID(ctx, uid)
		if errors.Is(err, repository.ErrNotFound) {
			return respondErr(c, http.StatusUnauthorized, "invalid refresh token")
		}
		if err != nil {
			h.log.WithError(err).Error("refresh: lookup user")
			return respondInternal(c)
		}
		if !user.IsActive {
			return respondErr(c, http.StatusForbidden, "account is deactivated")
		}
		id.Role = user.Role
		id.Username = user.Username
		id.Email = user.Email
	}

	access, err := utils.NewAccessToken(h.cfg.JWTSecret, id, time.Duration(h.cfg.AccessTTLMin)*time.Minute)
	if err != nil {
		h.log.WithError(err).Error("refresh: issue access token")
		return respondInternal(c)
	}

	return respondOK(c, http.StatusOK, "token refreshed", echo.Map{
		"access_token": access.Value,
		"token_type":   "Bearer",
		"expires_at":   access.Exp.UTC().Format(time.RFC3339),
	})
}

// Logout revokes the presented access token by its jti. The revocation
// entry lives in Redis for the token's remaining lifetime.
func (h *AuthHandler) Logout(c echo.Context) error {
	cl, ok := callerFrom(c)
	if !ok {
		return respondErr(c, http.StatusUnauthorized, "missing token")
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.tokens.Revoke(ctx, cl.JTI, cl.TokenExp); err != nil {
		h.log.WithError(err).Error("logout: revoke token")
		return respondInternal(c)
	}
	return respondOK(c, http.StatusOK, "logged out", nil)
}

// Me returns the authenticated identity. The synthetic admin is answered
// from the token claims alone.
func (h *AuthHandler) Me(c echo.Context) error {
	cl, ok := callerFrom(c)
	if !ok {
		return respondErr(c, http.StatusUnauthorized, "missing token")
	}

	if cl.IsAdmin {
		return respondOK(c, http.StatusOK, "profile", echo.Map{
			"id":       utils.AdminSubject,
			"username": cl.Username,
			"email":    cl.Email,
			"role":     "admin",
		})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	user, err := h.users.GetByID(ctx, cl.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return respondErr(c, http.StatusNotFound, "user not found")
	}
	if err != nil {
		h.log.WithError(err).Error("me: lookup user")
		return respondInternal(c)
	}
	return respondOK(c, http.StatusOK, "profile", userDTO(&user))
}
