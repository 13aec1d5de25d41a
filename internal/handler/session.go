package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/supernovahq/movie-match/internal/kinopoisk"
	"github.com/supernovahq/movie-match/internal/middleware"
	"github.com/supernovahq/movie-match/internal/queue"
	queue_publisher "github.com/supernovahq/movie-match/internal/service"
	"github.com/supernovahq/movie-match/internal/session"
)

// SessionHandler exposes the matchmaking engine over HTTP.
type SessionHandler struct {
	Engine *session.Engine
}

func NewSessionHandler(e *session.Engine) *SessionHandler {
	return &SessionHandler{Engine: e}
}

type genresReq struct {
	Genres []string `json:"genres"`
}

// Create starts a session with the target user and returns the ranked
// shortlist.
func (h *SessionHandler) Create(c echo.Context) error {
	login := middleware.Login(c)
	target := c.Param("login")

	var req genresReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 60*time.Second)
	defer cancel()

	suggestions, err := h.Engine.Create(ctx, login, target, req.Genres)
	if err != nil {
		return sessionError(c, err)
	}

	event := queue.SessionCreatedEvent{
		Initiator: login,
		Target:    target,
		Genres:    req.Genres,
		FilmCount: len(suggestions),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := queue_publisher.PublishSessionCreated(ctx, event); err != nil {
		// Analytics only; the session itself succeeded.
		log.Printf("session: publish created event failed: %v", err)
	}

	out := make([]filmResponse, 0, len(suggestions))
	for _, s := range suggestions {
		out = append(out, toFilmResponse(s.Film, s.Watchlisted))
	}
	return c.JSON(http.StatusOK, out)
}

// End deactivates the session flags for the pair.
func (h *SessionHandler) End(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Engine.End(ctx, middleware.Login(c), c.Param("login")); err != nil {
		return sessionError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Session ended"})
}

func sessionError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, session.ErrTargetNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
	case errors.Is(err, session.ErrSelfTarget):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "You can't create session with yourself"})
	case errors.Is(err, session.ErrAlreadyActive):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Session already exists with this user"})
	case errors.Is(err, kinopoisk.ErrOutOfTokens):
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "catalog credentials exhausted"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session failed"})
	}
}
