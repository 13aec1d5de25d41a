package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/supernovahq/movie-match/internal/model"
)

const filmColumns = "id,title,description,image_url,genres,year,rating,film_url"

type FilmRepo struct{ DB *sql.DB }

func NewFilmRepo(db *sql.DB) *FilmRepo { return &FilmRepo{DB: db} }

// GetByID fetches a film by id. Returns ErrNotFound when absent.
func (r *FilmRepo) GetByID(ctx context.Context, id int64) (model.Film, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+filmColumns+" FROM films WHERE id=? LIMIT 1", id)
	f, err := scanFilm(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Film{}, ErrNotFound
	}
	return f, err
}

// GetByIDs fetches the films for the given ids, preserving the order of
// the input slice. Ids with no matching row are skipped.
func (r *FilmRepo) GetByIDs(ctx context.Context, ids []int64) ([]model.Film, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+filmColumns+" FROM films WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[int64]model.Film, len(ids))
	for rows.Next() {
		f, err := scanFilm(rows)
		if err != nil {
			return nil, err
		}
		byID[f.ID] = f
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]model.Film, 0, len(byID))
	for _, id := range ids {
		if f, ok := byID[id]; ok {
			out = append(out, f)
		}
	}
	return out, nil
}

// Search returns catalog films matching an optional case-insensitive
// title fragment and an optional genre-overlap filter.
func (r *FilmRepo) Search(ctx context.Context, title string, genres []string) ([]model.Film, error) {
	where := []string{}
	args := []any{}

	if title != "" {
		where = append(where, "LOWER(title) LIKE ?")
		args = append(args, "%"+strings.ToLower(title)+"%")
	}
	if len(genres) > 0 {
		// genres is a JSON array column; overlap with the requested set.
		val, err := model.GenreList(genres).Value()
		if err != nil {
			return nil, err
		}
		where = append(where, "JSON_OVERLAPS(genres, CAST(? AS JSON))")
		args = append(args, val)
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+filmColumns+" FROM films WHERE "+cond+" ORDER BY id", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Film
	for rows.Next() {
		f, err := scanFilm(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Upsert stores a catalog-sourced film under its remote id, refreshing
// all fields when the row already exists.
func (r *FilmRepo) Upsert(ctx context.Context, f model.Film) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO films (id,title,description,image_url,genres,year,rating,film_url)
		VALUES (?,?,?,?,?,?,?,?)
		ON DUPLICATE KEY UPDATE
			title=VALUES(title), description=VALUES(description),
			image_url=VALUES(image_url), genres=VALUES(genres),
			year=VALUES(year), rating=VALUES(rating), film_url=VALUES(film_url)`,
		f.ID, f.Title, nullStr(f.Description), nullStr(f.ImageURL),
		f.Genres, f.Year, f.Rating, nullStr(f.FilmURL))
	return err
}

// CreateLocal inserts a user-submitted film and shifts its generated id
// above model.LocalIDOffset so it can never collide with, or be looked
// up against, the remote catalog. Returns the shifted id.
func (r *FilmRepo) CreateLocal(ctx context.Context, f model.Film) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO films (title,description,image_url,genres,year,rating,film_url)
		VALUES (?,?,?,?,?,?,?)`,
		f.Title, nullStr(f.Description), nullStr(f.ImageURL),
		f.Genres, f.Year, f.Rating, nullStr(f.FilmURL))
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	shifted := id + model.LocalIDOffset
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE films SET id=? WHERE id=?", shifted, id); err != nil {
		return 0, err
	}
	return shifted, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface{ Scan(dest ...any) error }

func scanFilm(rs rowScanner) (model.Film, error) {
	var (
		f                       model.Film
		desc, imageURL, filmURL sql.NullString
	)
	err := rs.Scan(&f.ID, &f.Title, &desc, &imageURL, &f.Genres, &f.Year, &f.Rating, &filmURL)
	if err != nil {
		return model.Film{}, err
	}
	f.Description = desc.String
	f.ImageURL = imageURL.String
	f.FilmURL = filmURL.String
	return f, nil
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
