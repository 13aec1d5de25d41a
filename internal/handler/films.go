package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/supernovahq/movie-match/internal/discuss"
	"github.com/supernovahq/movie-match/internal/imagestore"
	"github.com/supernovahq/movie-match/internal/kinopoisk"
	"github.com/supernovahq/movie-match/internal/middleware"
	"github.com/supernovahq/movie-match/internal/model"
	"github.com/supernovahq/movie-match/internal/repository"
)

// FilmHandler serves catalog browsing: local films merged with remote
// catalog results, single-film lookup with remote fallback, image
// uploads and discussion prompts.
type FilmHandler struct {
	Films   *repository.FilmRepo
	Watch   *repository.WatchRepo
	Catalog *kinopoisk.Client
	Images  *imagestore.Store
	Discuss *discuss.Client
}

func NewFilmHandler(f *repository.FilmRepo, w *repository.WatchRepo, cat *kinopoisk.Client, img *imagestore.Store, d *discuss.Client) *FilmHandler {
	return &FilmHandler{Films: f, Watch: w, Catalog: cat, Images: img, Discuss: d}
}

// List merges locally stored films with a remote catalog search.
// Remote results missing display essentials or duplicating a local id
// are dropped, and user-submitted films never leave the local account
// that created them, so they are excluded here as well.
func (h *FilmHandler) List(c echo.Context) error {
	login := middleware.Login(c)
	search := c.QueryParam("search")
	genres := c.QueryParams()["genres"]

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	local, err := h.Films.Search(ctx, search, genres)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}

	genreIDs, err := h.Catalog.GenreIDs(ctx, genres)
	if err != nil {
		return catalogError(c, err)
	}
	remote, err := h.Catalog.SearchByGenres(ctx, genreIDs, search)
	if err != nil {
		return catalogError(c, err)
	}

	localIDs := make(map[int64]struct{}, len(local))
	for _, f := range local {
		localIDs[f.ID] = struct{}{}
	}
	films := local
	for _, f := range remote {
		if _, dup := localIDs[f.ID]; dup || !f.Displayable() {
			continue
		}
		films = append(films, f)
	}

	watchlisted, err := h.watchlistSet(ctx, login)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	out := make([]filmResponse, 0, len(films))
	for _, f := range films {
		if f.IsLocal() {
			continue
		}
		_, ok := watchlisted[f.ID]
		out = append(out, toFilmResponse(f, ok))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one film, falling back to the remote catalog when the id
// is not stored locally.
func (h *FilmHandler) Get(c echo.Context) error {
	login := middleware.Login(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid film id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	film, err := h.Films.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		film, err = h.Catalog.FilmByID(ctx, id)
		if errors.Is(err, kinopoisk.ErrFilmNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Film not found"})
		}
	}
	if err != nil {
		return catalogError(c, err)
	}

	watchlisted, err := h.watchlistSet(ctx, login)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	_, ok := watchlisted[film.ID]
	return c.JSON(http.StatusOK, toFilmResponse(film, ok))
}

// AddImage stores an uploaded poster and returns its public URL.
func (h *FilmHandler) AddImage(c echo.Context) error {
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
	return c.JSON(http.StatusOK, echo.Map{"image_url": url})
}

// DiscussByName returns discussion themes for a film named in the path.
func (h *FilmHandler) DiscussByName(c echo.Context) error {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid year"})
	}
	themes, err := h.Discuss.Themes(c.Request().Context(), c.Param("name"), year)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "AI API error"})
	}
	return c.JSON(http.StatusOK, themes)
}

// DiscussByID looks the film up locally and generates themes from its
// stored title and year.
func (h *FilmHandler) DiscussByID(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid film id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	film, err := h.Films.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Film not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if film.Year == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "film has no release year"})
	}

	themes, err := h.Discuss.Themes(c.Request().Context(), film.Title, *film.Year)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "AI API error"})
	}
	return c.JSON(http.StatusOK, themes)
}

func (h *FilmHandler) watchlistSet(ctx context.Context, login string) (map[int64]struct{}, error) {
	ids, err := h.Watch.ListIDs(ctx, model.Watchlist, login)
	if err != nil {
		return nil, err
	}
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// catalogError maps gateway failures: exhausted credentials are an
// operational fault, everything else a generic upstream failure.
func catalogError(c echo.Context, err error) error {
	if errors.Is(err, kinopoisk.ErrOutOfTokens) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "catalog credentials exhausted"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "catalog unavailable"})
}

func baseURL(c echo.Context) string {
	return c.Scheme() + "://" + c.Request().Host
}
