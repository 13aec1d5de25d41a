package handler

import "github.com/supernovahq/movie-match/internal/model"

// filmResponse is the film payload returned by catalog and session
// endpoints. It mirrors model.Film plus the per-caller watchlist flag.
type filmResponse struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
	Genres      []string `json:"genres"`
	Year        *int     `json:"year,omitempty"`
	Rating      *float64 `json:"rating"`
	FilmURL     string   `json:"film_url,omitempty"`
	Watchlisted bool     `json:"is_watchlisted"`
}

func toFilmResponse(f model.Film, watchlisted bool) filmResponse {
	return filmResponse{
		ID:          f.ID,
		Title:       f.Title,
		Description: f.Description,
		ImageURL:    f.ImageURL,
		Genres:      f.Genres,
		Year:        f.Year,
		Rating:      f.Rating,
		FilmURL:     f.FilmURL,
		Watchlisted: watchlisted,
	}
}
