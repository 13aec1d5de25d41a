package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/supernovahq/movie-match/internal/model"
)

// WatchRepo manages the two watch-edge tables. Both share a schema;
// model.WatchKind selects the table through a fixed mapping so no user
// input ever reaches the SQL text.
type WatchRepo struct{ DB *sql.DB }

func NewWatchRepo(db *sql.DB) *WatchRepo { return &WatchRepo{DB: db} }

func tableFor(kind model.WatchKind) (string, error) {
	switch kind {
	case model.Watched:
		return "film_watched", nil
	case model.Watchlist:
		return "film_watchlist", nil
	}
	return "", fmt.Errorf("unknown watch kind %q", kind)
}

// ListFilms returns the full film records of a user's list, most
// recently added first.
func (r *WatchRepo) ListFilms(ctx context.Context, kind model.WatchKind, login string) ([]model.Film, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT f.id,f.title,f.description,f.image_url,f.genres,f.year,f.rating,f.film_url
		FROM films f JOIN `+table+` w ON w.film_id = f.id
		WHERE w.user_login=? ORDER BY w.added DESC`, login)
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

// ListIDs returns the film ids of a user's list in insertion order.
// The stable ordering keeps session matchmaking deterministic for a
// fixed storage snapshot.
func (r *WatchRepo) ListIDs(ctx context.Context, kind model.WatchKind, login string) ([]int64, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT film_id FROM "+table+" WHERE user_login=? ORDER BY added ASC", login)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Add records a watch edge. INSERT IGNORE makes the operation
// idempotent on the composite key, so re-adding an existing edge is a
// no-op rather than a check-then-insert race.
func (r *WatchRepo) Add(ctx context.Context, kind model.WatchKind, login string, filmID int64) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT IGNORE INTO "+table+" (user_login, film_id) VALUES (?,?)",
		login, filmID)
	return err
}

// Remove deletes a watch edge and reports whether a row was removed.
func (r *WatchRepo) Remove(ctx context.Context, kind model.WatchKind, login string, filmID int64) (bool, error) {
	table, err := tableFor(kind)
	if err != nil {
		return false, err
	}
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM "+table+" WHERE user_login=? AND film_id=?", login, filmID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Count returns the number of edges in a user's list.
func (r *WatchRepo) Count(ctx context.Context, kind model.WatchKind, login string) (int, error) {
	table, err := tableFor(kind)
	if err != nil {
		return 0, err
	}
	var n int
	err = r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM "+table+" WHERE user_login=?", login).Scan(&n)
	return n, err
}
