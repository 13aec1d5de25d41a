// Package session implements the matchmaking engine behind shared
// viewing sessions: given two users and a genre filter it produces a
// ranked, deduplicated shortlist of candidate films, topping up from
// the remote catalog when the users' own watchlists fall short.
package session

import (
	"context"
	"errors"
	"sort"

	"github.com/supernovahq/movie-match/internal/model"
)

// FilmsPerSession bounds the shortlist length.
const FilmsPerSession = 10

var (
	// ErrTargetNotFound is returned when the target login does not exist.
	ErrTargetNotFound = errors.New("session: target user not found")
	// ErrSelfTarget is returned when a user targets themselves.
	ErrSelfTarget = errors.New("session: cannot create session with yourself")
	// ErrAlreadyActive is returned when either participant already has
	// an active session flag.
	ErrAlreadyActive = errors.New("session: session already active")
)

// Store is the slice of durable storage the engine needs.
type Store interface {
	UserExists(ctx context.Context, login string) (bool, error)
	WatchlistIDs(ctx context.Context, login string) ([]int64, error)
	FilmsByIDs(ctx context.Context, ids []int64) ([]model.Film, error)
}

// Catalog is the remote catalog gateway surface used for fallback
// candidates.
type Catalog interface {
	GenreIDs(ctx context.Context, names []string) ([]int, error)
	SearchByGenres(ctx context.Context, genreIDs []int, keyword string) ([]model.Film, error)
}

// Suggestion is one ranked shortlist entry. Watchlisted reflects the
// initiator's watchlist at response time, re-read from storage rather
// than taken from the matching snapshot.
type Suggestion struct {
	Film        model.Film
	Watchlisted bool
}

// Engine runs the one-shot matchmaking computation. It holds no state
// of its own beyond its collaborators; every Create call is computed
// fresh.
type Engine struct {
	store   Store
	catalog Catalog
	flags   FlagStore
}

func NewEngine(store Store, catalog Catalog, flags FlagStore) *Engine {
	return &Engine{store: store, catalog: catalog, flags: flags}
}

// Create validates the pair, activates the session flags and computes
// the ranked shortlist.
//
// Note the flags are plain reads followed by plain writes: two
// concurrent Create calls for the same pair can both pass the
// already-active check. That window is accepted behavior, not a bug to
// fix here; End clears the flags regardless of how many creates raced.
func (e *Engine) Create(ctx context.Context, initiator, targetLogin string, genres []string) ([]Suggestion, error) {
	if targetLogin == initiator {
		return nil, ErrSelfTarget
	}
	exists, err := e.store.UserExists(ctx, targetLogin)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrTargetNotFound
	}

	for _, login := range []string{initiator, targetLogin} {
		v, err := e.flags.Get(ctx, userFlagKey(login))
		if err != nil {
			return nil, err
		}
		if v == flagActive {
			return nil, ErrAlreadyActive
		}
	}

	// Best effort, no transaction across the three keys.
	for _, key := range []string{
		userFlagKey(targetLogin),
		userFlagKey(initiator),
		pairFlagKey(initiator, targetLogin),
	} {
		if err := e.flags.Set(ctx, key, flagActive); err != nil {
			return nil, err
		}
	}

	ranked, err := e.rank(ctx, initiator, targetLogin, genres)
	if err != nil {
		return nil, err
	}

	watchlisted, err := e.store.WatchlistIDs(ctx, initiator)
	if err != nil {
		return nil, err
	}
	onList := make(map[int64]struct{}, len(watchlisted))
	for _, id := range watchlisted {
		onList[id] = struct{}{}
	}

	out := make([]Suggestion, 0, len(ranked))
	for _, f := range ranked {
		_, ok := onList[f.ID]
		out = append(out, Suggestion{Film: f, Watchlisted: ok})
	}
	return out, nil
}

// End resets both participant flags and the pair flag to inactive. It
// never touches a computed ranking; there is nothing stored to clear.
func (e *Engine) End(ctx context.Context, initiator, targetLogin string) error {
	if targetLogin == initiator {
		return ErrSelfTarget
	}
	exists, err := e.store.UserExists(ctx, targetLogin)
	if err != nil {
		return err
	}
	if !exists {
		return ErrTargetNotFound
	}
	for _, key := range []string{
		userFlagKey(targetLogin),
		userFlagKey(initiator),
		pairFlagKey(initiator, targetLogin),
	} {
		if err := e.flags.Set(ctx, key, flagInactive); err != nil {
			return err
		}
	}
	return nil
}

// rank performs the matching algorithm proper: load, filter, partition
// into shared and exclusive, top up from the remote catalog when short,
// truncate.
func (e *Engine) rank(ctx context.Context, initiator, targetLogin string, genres []string) ([]model.Film, error) {
	genreSet := make(map[string]struct{}, len(genres))
	for _, g := range genres {
		genreSet[g] = struct{}{}
	}

	mine, err := e.loadQualifying(ctx, initiator, genreSet)
	if err != nil {
		return nil, err
	}
	theirs, err := e.loadQualifying(ctx, targetLogin, genreSet)
	if err != nil {
		return nil, err
	}

	// Shared films first, in the initiator's order, then each side's
	// exclusives: initiator's before the target's, original relative
	// order preserved throughout.
	theirIDs := make(map[int64]struct{}, len(theirs))
	for _, f := range theirs {
		theirIDs[f.ID] = struct{}{}
	}

	var shared, exclusive []model.Film
	placed := make(map[int64]struct{})
	for _, f := range mine {
		if _, ok := theirIDs[f.ID]; ok {
			shared = append(shared, f)
		} else {
			exclusive = append(exclusive, f)
		}
		placed[f.ID] = struct{}{}
	}
	for _, f := range theirs {
		if _, ok := placed[f.ID]; !ok {
			exclusive = append(exclusive, f)
			placed[f.ID] = struct{}{}
		}
	}
	res := append(shared, exclusive...)

	if len(res) < FilmsPerSession {
		fallback, err := e.fallbackCandidates(ctx, res, genres)
		if err != nil {
			return nil, err
		}
		res = append(res, fallback...)
	}

	if len(res) > FilmsPerSession {
		res = res[:FilmsPerSession]
	}
	return res, nil
}

// loadQualifying returns a user's watchlist films that match the genre
// filter and are usable in a shortlist: at least one requested genre,
// title and image present, and not a user-submitted local film.
func (e *Engine) loadQualifying(ctx context.Context, login string, genreSet map[string]struct{}) ([]model.Film, error) {
	ids, err := e.store.WatchlistIDs(ctx, login)
	if err != nil {
		return nil, err
	}
	films, err := e.store.FilmsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]model.Film, 0, len(films))
	for _, f := range films {
		if f.IsLocal() || !f.Displayable() {
			continue
		}
		if !f.HasAnyGenre(genreSet) {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

// fallbackCandidates queries the remote catalog one genre id at a time,
// deduplicates by title against everything already collected, scores
// and sorts the result. Sequential issuance keeps discovery order, and
// therefore tie-breaks, deterministic.
func (e *Engine) fallbackCandidates(ctx context.Context, have []model.Film, genres []string) ([]model.Film, error) {
	genreIDs, err := e.catalog.GenreIDs(ctx, genres)
	if err != nil {
		return nil, err
	}

	seenTitles := make(map[string]struct{}, len(have))
	for _, f := range have {
		seenTitles[f.Title] = struct{}{}
	}

	var collected []model.Film
	for _, id := range genreIDs {
		films, err := e.catalog.SearchByGenres(ctx, []int{id}, "")
		if err != nil {
			return nil, err
		}
		for _, f := range films {
			if !f.Displayable() {
				continue
			}
			if _, dup := seenTitles[f.Title]; dup {
				continue
			}
			seenTitles[f.Title] = struct{}{}
			collected = append(collected, f)
		}
	}

	sort.SliceStable(collected, func(i, j int) bool {
		return scoreFilm(collected[i], genres) > scoreFilm(collected[j], genres)
	})
	return collected, nil
}

// scoreFilm weighs a fallback candidate: 60% genre coverage of the
// requested set, 40% normalized rating. An empty genre set contributes
// zero to the coverage term so the ratio never divides by zero.
func scoreFilm(f model.Film, genres []string) float64 {
	var genreTerm float64
	if len(genres) > 0 {
		matches := 0
		for _, want := range genres {
			for _, g := range f.Genres {
				if g == want {
					matches++
					break
				}
			}
		}
		genreTerm = float64(matches) / float64(len(genres))
	}
	var rating float64
	if f.Rating != nil {
		rating = *f.Rating
	}
	return genreTerm*0.6 + rating/10*0.4
}
