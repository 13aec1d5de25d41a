package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// LocalIDOffset is added to auto-generated ids of films submitted by
// users. Ids at or above this threshold belong to local films only and
// are never resolved against the remote catalog.
const LocalIDOffset int64 = 500_000_000

// Film represents a row in the `films` table. Films come from two
// sources: the remote catalog (id below LocalIDOffset, refreshed on
// re-fetch) and user submissions (id at or above LocalIDOffset).
//
// Fields:
//  ID          – films.id (remote catalog id or shifted local id).
//  Title       – films.title.
//  Description – films.description (empty when absent).
//  ImageURL    – films.image_url (empty when absent).
//  Genres      – films.genres, a JSON array of genre labels.
//  Year        – films.year (nil when unknown).
//  Rating      – films.rating on a 0–10 scale (nil when absent).
//  FilmURL     – films.film_url, external detail page (empty when absent).
type Film struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	Genres      GenreList `json:"genres"`
	Year        *int      `json:"year,omitempty"`
	Rating      *float64  `json:"rating"`
	FilmURL     string    `json:"film_url,omitempty"`
}

// IsLocal reports whether the film was submitted by a user rather than
// sourced from the remote catalog.
func (f Film) IsLocal() bool { return f.ID >= LocalIDOffset }

// Displayable reports whether the film carries the essentials needed to
// show it to users. Films without a title or poster are filtered out of
// search results and session shortlists.
func (f Film) Displayable() bool { return f.Title != "" && f.ImageURL != "" }

// HasAnyGenre reports whether at least one of the film's genres is
// present in the given set.
func (f Film) HasAnyGenre(set map[string]struct{}) bool {
	for _, g := range f.Genres {
		if _, ok := set[g]; ok {
			return true
		}
	}
	return false
}

// GenreList is a list of genre labels stored as a JSON array in MySQL.
type GenreList []string

// Value marshals the list for storage. An empty list is stored as `[]`
// rather than NULL so genre filters behave uniformly.
func (g GenreList) Value() (driver.Value, error) {
	if g == nil {
		g = GenreList{}
	}
	return json.Marshal(g)
}

// Scan decodes the JSON column back into the list.
func (g *GenreList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*g = GenreList{}
		return nil
	case []byte:
		return json.Unmarshal(v, g)
	case string:
		return json.Unmarshal([]byte(v), g)
	default:
		return fmt.Errorf("genres: cannot scan %T", src)
	}
}
