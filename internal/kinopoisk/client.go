// Package kinopoisk talks to the remote film-metadata API. It hides
// pagination, the response wire shapes and the multi-credential
// rotation that kicks in when a token runs out of quota.
package kinopoisk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/supernovahq/movie-match/internal/model"
)

// ErrFilmNotFound is returned by FilmByID when the upstream reports the
// id as absent. Handlers map it to a 404.
var ErrFilmNotFound = errors.New("kinopoisk: film not found")

// Client is the remote catalog gateway. One instance is shared by all
// requests so credential rotation is visible process-wide.
type Client struct {
	baseURL string
	tokens  *tokenRing
	http    *http.Client
}

// NewClient builds a gateway for the given API base URL and ordered
// credential tokens.
func NewClient(baseURL string, tokens []string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  newTokenRing(tokens),
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// ---- wire shapes (internal, not exposed to consumers) ----

// filtersResponse is the /films/filters payload carrying the remote
// genre taxonomy.
type filtersResponse struct {
	Genres []struct {
		ID    int    `json:"id"`
		Genre string `json:"genre"`
	} `json:"genres"`
}

// searchResponse is the /films search payload.
type searchResponse struct {
	Items []filmRecord `json:"items"`
}

// filmRecord is one remote film. Field mapping to model.Film:
// kinopoiskId→ID, nameRu→Title, description→Description,
// posterUrl→ImageURL (coverUrl preferred on detail lookups),
// genres[].genre→Genres, year→Year, ratingKinopoisk→Rating,
// webUrl→FilmURL.
type filmRecord struct {
	KinopoiskID int64    `json:"kinopoiskId"`
	NameRu      string   `json:"nameRu"`
	Description string   `json:"description"`
	PosterURL   string   `json:"posterUrl"`
	CoverURL    string   `json:"coverUrl"`
	WebURL      string   `json:"webUrl"`
	Year        *int     `json:"year"`
	Rating      *float64 `json:"ratingKinopoisk"`
	Genres      []struct {
		Genre string `json:"genre"`
	} `json:"genres"`
}

func (rec filmRecord) toFilm() model.Film {
	genres := make(model.GenreList, 0, len(rec.Genres))
	for _, g := range rec.Genres {
		genres = append(genres, g.Genre)
	}
	image := rec.CoverURL
	if image == "" {
		image = rec.PosterURL
	}
	return model.Film{
		ID:          rec.KinopoiskID,
		Title:       rec.NameRu,
		Description: rec.Description,
		ImageURL:    image,
		Genres:      genres,
		Year:        rec.Year,
		Rating:      rec.Rating,
		FilmURL:     rec.WebURL,
	}
}

// ---- gateway operations ----

// GenreIDs resolves genre names to the remote taxonomy's ids. Names the
// upstream does not know are silently dropped.
func (c *Client) GenreIDs(ctx context.Context, names []string) ([]int, error) {
	body, _, err := c.get(ctx, "/films/filters", nil)
	if err != nil {
		return nil, err
	}
	var filters filtersResponse
	if err := json.Unmarshal(body, &filters); err != nil {
		return nil, fmt.Errorf("kinopoisk: decode filters: %w", err)
	}
	want := make(map[string]struct{}, len(names))
	for _, n := range names {
		want[n] = struct{}{}
	}
	var ids []int
	for _, g := range filters.Genres {
		if _, ok := want[g.Genre]; ok {
			ids = append(ids, g.ID)
		}
	}
	return ids, nil
}

// SearchByGenres issues a single-page film search filtered by remote
// genre ids and an optional keyword.
func (c *Client) SearchByGenres(ctx context.Context, genreIDs []int, keyword string) ([]model.Film, error) {
	idStrs := make([]string, len(genreIDs))
	for i, id := range genreIDs {
		idStrs[i] = strconv.Itoa(id)
	}
	params := url.Values{
		"genres":  {strings.Join(idStrs, ",")},
		"page":    {"1"},
		"keyword": {keyword},
	}
	body, _, err := c.get(ctx, "/films", params)
	if err != nil {
		return nil, err
	}
	var search searchResponse
	if err := json.Unmarshal(body, &search); err != nil {
		return nil, fmt.Errorf("kinopoisk: decode search: %w", err)
	}
	films := make([]model.Film, 0, len(search.Items))
	for _, rec := range search.Items {
		films = append(films, rec.toFilm())
	}
	return films, nil
}

// FilmByID fetches a single film record by its remote id.
func (c *Client) FilmByID(ctx context.Context, id int64) (model.Film, error) {
	body, status, err := c.get(ctx, fmt.Sprintf("/films/%d", id), nil)
	if err != nil {
		return model.Film{}, err
	}
	if status == http.StatusNotFound {
		return model.Film{}, ErrFilmNotFound
	}
	var rec filmRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return model.Film{}, fmt.Errorf("kinopoisk: decode film %d: %w", id, err)
	}
	return rec.toFilm(), nil
}

// get performs one upstream call with the current credential, rotating
// and retrying transparently on 402 Payment Required. Callers never
// observe the quota error; exhausting the last token surfaces as
// ErrOutOfTokens.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, int, error) {
	full := c.baseURL + path
	if len(params) > 0 {
		full += "?" + params.Encode()
	}
	for {
		token, pos := c.tokens.current()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
		if err != nil {
			return nil, 0, err
		}
		req.Header.Set("X-API-KEY", token)

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, 0, fmt.Errorf("kinopoisk: request %s: %w", path, err)
		}

		if resp.StatusCode == http.StatusPaymentRequired {
			resp.Body.Close()
			log.Printf("kinopoisk: token %d out of quota, rotating", pos)
			if err := c.tokens.advance(pos); err != nil {
				return nil, 0, err
			}
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, 0, fmt.Errorf("kinopoisk: read %s: %w", path, err)
		}
		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
			return nil, resp.StatusCode, fmt.Errorf("kinopoisk: %s returned status %d: %s", path, resp.StatusCode, body)
		}
		return body, resp.StatusCode, nil
	}
}
