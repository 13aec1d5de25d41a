package session

import (
	"context"
	"errors"

	"github.com/supernovahq/movie-match/internal/model"
	"github.com/supernovahq/movie-match/internal/repository"
)

// RepoStore adapts the SQL repositories to the engine's Store surface.
type RepoStore struct {
	Users *repository.UserRepo
	Films *repository.FilmRepo
	Watch *repository.WatchRepo
}

func NewRepoStore(u *repository.UserRepo, f *repository.FilmRepo, w *repository.WatchRepo) *RepoStore {
	return &RepoStore{Users: u, Films: f, Watch: w}
}

func (s *RepoStore) UserExists(ctx context.Context, login string) (bool, error) {
	_, err := s.Users.GetByLogin(ctx, login)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *RepoStore) WatchlistIDs(ctx context.Context, login string) ([]int64, error) {
	return s.Watch.ListIDs(ctx, model.Watchlist, login)
}

func (s *RepoStore) FilmsByIDs(ctx context.Context, ids []int64) ([]model.Film, error) {
	return s.Films.GetByIDs(ctx, ids)
}
