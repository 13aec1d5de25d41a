package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/supernovahq/movie-match/internal/middleware"
	"github.com/supernovahq/movie-match/internal/model"
	"github.com/supernovahq/movie-match/internal/repository"
)

// ProfileHandler serves the user's own profile summary.
type ProfileHandler struct {
	Watch *repository.WatchRepo
}

func NewProfileHandler(w *repository.WatchRepo) *ProfileHandler {
	return &ProfileHandler{Watch: w}
}

type profileResp struct {
	Username       string       `json:"username"`
	WatchedCount   int          `json:"watched_count"`
	WatchlistCount int          `json:"watchlist_count"`
	WatchedFilms   []model.Film `json:"watched_films"`
}

// Get returns collection counts plus the watched films, newest first.
func (h *ProfileHandler) Get(c echo.Context) error {
	login := middleware.Login(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	watched, err := h.Watch.ListFilms(ctx, model.Watched, login)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	watchlistCount, err := h.Watch.Count(ctx, model.Watchlist, login)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if watched == nil {
		watched = []model.Film{}
	}
	return c.JSON(http.StatusOK, profileResp{
		Username:       login,
		WatchedCount:   len(watched),
		WatchlistCount: watchlistCount,
		WatchedFilms:   watched,
	})
}
