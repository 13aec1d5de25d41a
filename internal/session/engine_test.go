package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/supernovahq/movie-match/internal/model"
)

// ---- fakes ----

type fakeStore struct {
	users      map[string]bool
	watchlists map[string][]int64
	films      map[int64]model.Film
}

func (s *fakeStore) UserExists(_ context.Context, login string) (bool, error) {
	return s.users[login], nil
}

func (s *fakeStore) WatchlistIDs(_ context.Context, login string) ([]int64, error) {
	return s.watchlists[login], nil
}

func (s *fakeStore) FilmsByIDs(_ context.Context, ids []int64) ([]model.Film, error) {
	out := make([]model.Film, 0, len(ids))
	for _, id := range ids {
		if f, ok := s.films[id]; ok {
			out = append(out, f)
		}
	}
	return out, nil
}

type taxonomyEntry struct {
	id   int
	name string
}

type fakeCatalog struct {
	taxonomy []taxonomyEntry
	results  map[int][]model.Film
	calls    int
}

func (c *fakeCatalog) GenreIDs(_ context.Context, names []string) ([]int, error) {
	c.calls++
	want := make(map[string]struct{}, len(names))
	for _, n := range names {
		want[n] = struct{}{}
	}
	var ids []int
	for _, e := range c.taxonomy {
		if _, ok := want[e.name]; ok {
			ids = append(ids, e.id)
		}
	}
	return ids, nil
}

func (c *fakeCatalog) SearchByGenres(_ context.Context, genreIDs []int, _ string) ([]model.Film, error) {
	c.calls++
	var out []model.Film
	for _, id := range genreIDs {
		out = append(out, c.results[id]...)
	}
	return out, nil
}

type fakeFlags struct{ m map[string]string }

func newFakeFlags() *fakeFlags { return &fakeFlags{m: map[string]string{}} }

func (f *fakeFlags) Get(_ context.Context, key string) (string, error) { return f.m[key], nil }
func (f *fakeFlags) Set(_ context.Context, key, value string) error {
	f.m[key] = value
	return nil
}
func (f *fakeFlags) Delete(_ context.Context, key string) error {
	delete(f.m, key)
	return nil
}

// ---- helpers ----

func remoteFilm(id int64, title string, rating float64, genres ...string) model.Film {
	r := rating
	return model.Film{
		ID:       id,
		Title:    title,
		ImageURL: fmt.Sprintf("https://img.test/%d.jpg", id),
		Genres:   genres,
		Rating:   &r,
	}
}

func titles(out []Suggestion) []string {
	var ts []string
	for _, s := range out {
		ts = append(ts, s.Film.Title)
	}
	return ts
}

func newStore(films ...model.Film) *fakeStore {
	s := &fakeStore{
		users:      map[string]bool{"alice": true, "bob": true},
		watchlists: map[string][]int64{},
		films:      map[int64]model.Film{},
	}
	for _, f := range films {
		s.films[f.ID] = f
	}
	return s
}

// ---- tests ----

func TestCreateSharedThenExclusiveOrdering(t *testing.T) {
	a := remoteFilm(1, "A", 7, "drama")
	b := remoteFilm(2, "B", 7, "comedy")
	cf := remoteFilm(3, "C", 7, "drama")

	store := newStore(a, b, cf)
	store.watchlists["alice"] = []int64{1, 2}
	store.watchlists["bob"] = []int64{1, 3}

	// Enough remote padding that the fallback does not matter for the head.
	catalog := &fakeCatalog{}
	engine := NewEngine(store, catalog, newFakeFlags())

	out, err := engine.Create(context.Background(), "alice", "bob", []string{"drama"})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(out), 2)
	require.Equal(t, []string{"A", "C"}, titles(out)[:2], "shared film first, then target-exclusive")
	for _, s := range out {
		require.NotEqual(t, "B", s.Film.Title, "B has no requested genre and must be excluded")
	}
}

func TestCreateSkipsFallbackWhenLocalSupplyIsSufficient(t *testing.T) {
	store := newStore()
	var ids []int64
	for i := int64(1); i <= 12; i++ {
		f := remoteFilm(i, fmt.Sprintf("film-%d", i), 6, "drama")
		store.films[i] = f
		ids = append(ids, i)
	}
	store.watchlists["alice"] = ids
	store.watchlists["bob"] = ids

	catalog := &fakeCatalog{}
	engine := NewEngine(store, catalog, newFakeFlags())

	out, err := engine.Create(context.Background(), "alice", "bob", []string{"drama"})
	require.NoError(t, err)
	require.Len(t, out, FilmsPerSession, "output is always truncated to the target size")
	require.Zero(t, catalog.calls, "no gateway call when local lists already reach the target")
}

func TestCreateExcludesLocalFilmsAndUndisplayable(t *testing.T) {
	local := remoteFilm(model.LocalIDOffset+1, "homemade", 9, "drama")
	noImage := model.Film{ID: 5, Title: "bare", Genres: model.GenreList{"drama"}}
	ok := remoteFilm(6, "fine", 5, "drama")

	store := newStore(local, noImage, ok)
	store.watchlists["alice"] = []int64{local.ID, 5, 6}
	store.watchlists["bob"] = []int64{local.ID, 5, 6}

	engine := NewEngine(store, &fakeCatalog{}, newFakeFlags())
	out, err := engine.Create(context.Background(), "alice", "bob", []string{"drama"})
	require.NoError(t, err)
	require.Equal(t, []string{"fine"}, titles(out))
	for _, s := range out {
		require.Less(t, s.Film.ID, model.LocalIDOffset)
	}
}

func TestFallbackFilterScoreAndDedup(t *testing.T) {
	a := remoteFilm(1, "A", 7, "drama")
	store := newStore(a)
	store.watchlists["alice"] = []int64{1}
	store.watchlists["bob"] = []int64{1}

	catalog := &fakeCatalog{
		taxonomy: []taxonomyEntry{{10, "drama"}, {20, "comedy"}},
		results: map[int][]model.Film{
			10: {
				remoteFilm(100, "A", 9, "drama"),               // duplicate of a local pick, by title
				remoteFilm(101, "both", 8, "drama", "comedy"),  // matches both genres
				remoteFilm(102, "low", 2, "drama"),             // weak rating
				{ID: 103, Title: "no-image", Genres: model.GenreList{"drama"}},
			},
			20: {
				remoteFilm(101, "both", 8, "drama", "comedy"), // seen in the first batch
				remoteFilm(104, "funny", 8, "comedy"),
			},
		},
	}
	engine := NewEngine(store, catalog, newFakeFlags())

	out, err := engine.Create(context.Background(), "alice", "bob", []string{"drama", "comedy"})
	require.NoError(t, err)

	// Local pick first, then fallback by descending score:
	// both  = 2/2*0.6 + 0.8*0.4 = 0.92
	// funny = 1/2*0.6 + 0.8*0.4 = 0.62
	// low   = 1/2*0.6 + 0.2*0.4 = 0.38
	require.Equal(t, []string{"A", "both", "funny", "low"}, titles(out))

	genreSet := map[string]struct{}{"drama": {}, "comedy": {}}
	for _, s := range out {
		require.True(t, s.Film.HasAnyGenre(genreSet),
			"fallback film %q must match a requested genre", s.Film.Title)
	}
}

func TestFallbackScoringIsStableAcrossRuns(t *testing.T) {
	store := newStore()
	store.watchlists["alice"] = nil
	store.watchlists["bob"] = nil

	// All candidates tie: same genre coverage, same rating. Discovery
	// order must survive the sort every time.
	catalog := &fakeCatalog{
		taxonomy: []taxonomyEntry{{10, "drama"}},
		results: map[int][]model.Film{
			10: {
				remoteFilm(200, "first", 7, "drama"),
				remoteFilm(201, "second", 7, "drama"),
				remoteFilm(202, "third", 7, "drama"),
			},
		},
	}

	var runs [][]string
	for i := 0; i < 3; i++ {
		engine := NewEngine(store, catalog, newFakeFlags())
		out, err := engine.Create(context.Background(), "alice", "bob", []string{"drama"})
		require.NoError(t, err)
		runs = append(runs, titles(out))
	}
	require.Equal(t, runs[0], runs[1])
	require.Equal(t, runs[1], runs[2])
	require.Equal(t, []string{"first", "second", "third"}, runs[0])
}

func TestCreateValidation(t *testing.T) {
	store := newStore()
	engine := NewEngine(store, &fakeCatalog{}, newFakeFlags())

	_, err := engine.Create(context.Background(), "alice", "alice", nil)
	require.ErrorIs(t, err, ErrSelfTarget)

	_, err = engine.Create(context.Background(), "alice", "nobody", nil)
	require.ErrorIs(t, err, ErrTargetNotFound)
}

func TestCreateConflictsUntilEnded(t *testing.T) {
	store := newStore()
	store.watchlists["alice"] = nil
	store.watchlists["bob"] = nil
	flags := newFakeFlags()
	engine := NewEngine(store, &fakeCatalog{}, flags)

	_, err := engine.Create(context.Background(), "alice", "bob", nil)
	require.NoError(t, err)

	_, err = engine.Create(context.Background(), "alice", "bob", nil)
	require.ErrorIs(t, err, ErrAlreadyActive)

	// The flag is per participant, so bob cannot start one either.
	_, err = engine.Create(context.Background(), "bob", "alice", nil)
	require.ErrorIs(t, err, ErrAlreadyActive)

	require.NoError(t, engine.End(context.Background(), "alice", "bob"))
	require.Equal(t, "inactive", flags.m["session:alice"])
	require.Equal(t, "inactive", flags.m["session:bob"])
	require.Equal(t, "inactive", flags.m["session:alice:bob"])

	_, err = engine.Create(context.Background(), "alice", "bob", nil)
	require.NoError(t, err)
}

func TestCreateEmptyGenreSet(t *testing.T) {
	a := remoteFilm(1, "A", 7, "drama")
	store := newStore(a)
	store.watchlists["alice"] = []int64{1}
	store.watchlists["bob"] = []int64{1}

	catalog := &fakeCatalog{taxonomy: []taxonomyEntry{{10, "drama"}}}
	engine := NewEngine(store, catalog, newFakeFlags())

	// No genres requested: nothing qualifies locally, the taxonomy
	// resolves no ids, and scoring must not divide by zero.
	out, err := engine.Create(context.Background(), "alice", "bob", nil)
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestSuggestionsMarkInitiatorWatchlist(t *testing.T) {
	a := remoteFilm(1, "A", 7, "drama")
	cf := remoteFilm(3, "C", 7, "drama")
	store := newStore(a, cf)
	store.watchlists["alice"] = []int64{1}
	store.watchlists["bob"] = []int64{1, 3}

	engine := NewEngine(store, &fakeCatalog{}, newFakeFlags())
	out, err := engine.Create(context.Background(), "alice", "bob", []string{"drama"})
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.True(t, out[0].Watchlisted, "A is on alice's watchlist")
	require.False(t, out[1].Watchlisted, "C is only on bob's watchlist")
}

func TestScoreFilm(t *testing.T) {
	f := remoteFilm(1, "x", 8, "drama", "comedy")
	require.InDelta(t, 1.0*0.6+0.8*0.4, scoreFilm(f, []string{"drama", "comedy"}), 1e-9)
	require.InDelta(t, 0.5*0.6+0.8*0.4, scoreFilm(f, []string{"drama", "western"}), 1e-9)
	// Empty genre set contributes nothing; only the rating term remains.
	require.InDelta(t, 0.8*0.4, scoreFilm(f, nil), 1e-9)

	noRating := model.Film{ID: 2, Title: "y", ImageURL: "i", Genres: model.GenreList{"drama"}}
	require.InDelta(t, 0.6, scoreFilm(noRating, []string{"drama"}), 1e-9)
}
