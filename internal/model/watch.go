package model

import "time"

// WatchKind selects one of the two watch-edge tables. The two relations
// share a schema and differ only in meaning: films a user has seen
// versus films they intend to see. A film may appear in both.
type WatchKind string

const (
	// Watched marks films the user has already seen (film_watched).
	Watched WatchKind = "watched"
	// Watchlist marks films the user intends to see (film_watchlist).
	Watchlist WatchKind = "watchlist"
)

// WatchEdge represents a row in `film_watched` or `film_watchlist`.
// The composite (UserLogin, FilmID) is the primary key; Added drives
// recency ordering of a user's lists.
type WatchEdge struct {
	UserLogin string    // film_*.user_login
	FilmID    int64     // film_*.film_id
	Added     time.Time // film_*.added
}
