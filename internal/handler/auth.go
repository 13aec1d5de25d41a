package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/supernovahq/movie-match/internal/config"
	"github.com/supernovahq/movie-match/internal/middleware"
	"github.com/supernovahq/movie-match/internal/repository"
	"github.com/supernovahq/movie-match/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints. Issued tokens
// are mirrored into Redis under "access_token:<login>" so logout can
// drop them; token validity itself is checked by the JWT middleware.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
	RDB   *redis.Client
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, rdb *redis.Client) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, RDB: rdb}
}

// ----- DTOs -----

type credentialsReq struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type tokenResp struct {
	AccessToken string `json:"access_token"`
}

// Register creates the user and returns a token immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.Create(ctx, req.Username, req.Password, h.Cfg.BcryptCost); err != nil {
		if errors.Is(err, repository.ErrLoginExists) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "login already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	return h.issueToken(c, ctx, req.Username)
}

// Login verifies credentials and returns a fresh token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByLogin(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return h.issueToken(c, ctx, u.Login)
}

// Logout drops the mirrored token for the given login.
func (h *AuthHandler) Logout(c echo.Context) error {
	login := c.Param("login")
	if h.RDB != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		_ = h.RDB.Del(ctx, "access_token:"+login).Err()
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out"})
}

// Ping returns the authenticated username; useful for the frontend to
// validate a stored token.
func (h *AuthHandler) Ping(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"username": middleware.Login(c)})
}

func (h *AuthHandler) issueToken(c echo.Context, ctx context.Context, login string) error {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, login, h.Cfg.AccessTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	if h.RDB != nil {
		// Mirror only; losing it never invalidates the JWT.
		_ = h.RDB.Set(ctx, "access_token:"+login, access.Token, time.Until(access.Exp)).Err()
	}
	return c.JSON(http.StatusOK, tokenResp{AccessToken: access.Token})
}
