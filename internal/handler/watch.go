package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/supernovahq/movie-match/internal/imagestore"
	"github.com/supernovahq/movie-match/internal/kinopoisk"
	"github.com/supernovahq/movie-match/internal/middleware"
	"github.com/supernovahq/movie-match/internal/model"
	"github.com/supernovahq/movie-match/internal/repository"
)

// WatchHandler serves both personal film collections. Every handler
// method takes the collection kind at route-registration time, so the
// watched and watchlist route groups share one implementation.
type WatchHandler struct {
	Films   *repository.FilmRepo
	Watch   *repository.WatchRepo
	Catalog *kinopoisk.Client
	Images  *imagestore.Store
}

func NewWatchHandler(f *repository.FilmRepo, w *repository.WatchRepo, cat *kinopoisk.Client, img *imagestore.Store) *WatchHandler {
	return &WatchHandler{Films: f, Watch: w, Catalog: cat, Images: img}
}

// filmAddReq carries a user-submitted film. All fields except the title
// are optional.
type filmAddReq struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ImageURL    string   `json:"image_url"`
	Genres      []string `json:"genres"`
	Year        *int     `json:"year"`
	Rating      *float64 `json:"rating"`
	FilmURL     string   `json:"film_url"`
}

func (r filmAddReq) toFilm() model.Film {
	return model.Film{
		Title:       r.Title,
		Description: r.Description,
		ImageURL:    r.ImageURL,
		Genres:      r.Genres,
		Year:        r.Year,
		Rating:      r.Rating,
		FilmURL:     r.FilmURL,
	}
}

// List returns the user's collection, most recently added first.
func (h *WatchHandler) List(kind model.WatchKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		films, err := h.Watch.ListFilms(ctx, kind, middleware.Login(c))
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		if films == nil {
			films = []model.Film{}
		}
		return c.JSON(http.StatusOK, films)
	}
}

// AddNew stores a brand-new user-submitted film and links it to the
// collection.
func (h *WatchHandler) AddNew(kind model.WatchKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req filmAddReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
		}
		if req.Title == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "title required"})
		}

		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		return h.createAndLink(c, ctx, kind, req.toFilm())
	}
}

// AddNewWithImage is the multipart variant of AddNew: the film arrives
// as a JSON form field alongside the poster file, which is stored first
// so the film record can reference it.
func (h *WatchHandler) AddNewWithImage(kind model.WatchKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req filmAddReq
		if err := json.Unmarshal([]byte(c.FormValue("film")), &req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid film payload"})
		}
		if req.Title == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "title required"})
		}
		fh, err := c.FormFile("file")
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "file required"})
		}
		src, err := fh.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable file"})
		}
		defer src.Close()

		ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
		defer cancel()

		url, err := h.Images.Save(ctx, src, fh.Size, fh.Header.Get("Content-Type"), baseURL(c))
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "upload failed"})
		}
		film := req.toFilm()
		film.ImageURL = url
		return h.createAndLink(c, ctx, kind, film)
	}
}

// AddExisting links an already-known film by id, fetching and storing
// it from the remote catalog when it is not yet local. Marking a film
// watched also drops any watchlist edge for it.
func (h *WatchHandler) AddExisting(kind model.WatchKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		login := middleware.Login(c)
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid film id"})
		}

		ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
		defer cancel()

		if _, err := h.Films.GetByID(ctx, id); err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
			}
			if id >= model.LocalIDOffset {
				// Local ids are never resolved remotely.
				return c.JSON(http.StatusNotFound, echo.Map{"error": "Film not found"})
			}
			film, err := h.Catalog.FilmByID(ctx, id)
			if errors.Is(err, kinopoisk.ErrFilmNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "Film not found"})
			}
			if err != nil {
				return catalogError(c, err)
			}
			if err := h.Films.Upsert(ctx, film); err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store film failed"})
			}
		}

		if kind == model.Watched {
			if _, err := h.Watch.Remove(ctx, model.Watchlist, login, id); err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
			}
		}
		if err := h.Watch.Add(ctx, kind, login, id); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "Film added to " + string(kind)})
	}
}

// RemoveWatchlist unlinks a film from the watchlist. Removing a film
// that is not on the list is reported, not an error.
func (h *WatchHandler) RemoveWatchlist(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid film id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	removed, err := h.Watch.Remove(ctx, model.Watchlist, middleware.Login(c), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	if !removed {
		return c.JSON(http.StatusOK, echo.Map{"message": "Film not found in watchlist"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Film removed from watchlist"})
}

func (h *WatchHandler) createAndLink(c echo.Context, ctx context.Context, kind model.WatchKind, film model.Film) error {
	id, err := h.Films.CreateLocal(ctx, film)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store film failed"})
	}
	if err := h.Watch.Add(ctx, kind, middleware.Login(c), id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Film added to " + string(kind)})
}
