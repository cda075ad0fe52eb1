// Package memstore keeps users and movies in process memory.
// It backs the "memory" store driver and the router tests.
package memstore

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/abduss/flickpick/internal/models"
	"github.com/abduss/flickpick/internal/movie"
	"github.com/google/uuid"
)

// Store is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	users  map[string]models.User
	movies map[uuid.UUID]models.Movie
}

func New() *Store {
	return &Store{
		users:  make(map[string]models.User),
		movies: make(map[uuid.UUID]models.Movie),
	}
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.Name]; ok {
		return models.User{}, models.ErrUserExists
	}
	user.FavoriteMovies = []uuid.UUID{}
	s.users[user.Name] = user
	return cloneUser(user), nil
}

func (s *Store) FindUserByName(ctx context.Context, name string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[name]
	if !ok {
		return models.User{}, models.ErrUserNotFound
	}
	return cloneUser(user), nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, cloneUser(u))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

func (s *Store) UpdateUser(ctx context.Context, name string, update models.UserUpdate) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[name]
	if !ok {
		return models.User{}, models.ErrUserNotFound
	}
	if update.Name != name {
		if _, taken := s.users[update.Name]; taken {
			return models.User{}, models.ErrUserExists
		}
	}

	user.Name = update.Name
	user.Email = update.Email
	user.PasswordHash = update.PasswordHash
	user.Birthday = update.Birthday
	delete(s.users, name)
	s.users[user.Name] = user
	return cloneUser(user), nil
}

func (s *Store) DeleteUser(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[name]; !ok {
		return models.ErrUserNotFound
	}
	delete(s.users, name)
	return nil
}

func (s *Store) AddFavorite(ctx context.Context, name string, movieID uuid.UUID) (models.User, error) {
	return s.updateFavorites(name, func(favorites []uuid.UUID) []uuid.UUID {
		if slices.Contains(favorites, movieID) {
			return favorites
		}
		return append(favorites, movieID)
	})
}

func (s *Store) RemoveFavorite(ctx context.Context, name string, movieID uuid.UUID) (models.User, error) {
	return s.updateFavorites(name, func(favorites []uuid.UUID) []uuid.UUID {
		return slices.DeleteFunc(favorites, func(id uuid.UUID) bool { return id == movieID })
	})
}

func (s *Store) updateFavorites(name string, fn func([]uuid.UUID) []uuid.UUID) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[name]
	if !ok {
		return models.User{}, models.ErrUserNotFound
	}
	user.FavoriteMovies = fn(slices.Clone(user.FavoriteMovies))
	s.users[name] = user
	return cloneUser(user), nil
}

func (s *Store) ListMovies(ctx context.Context) ([]models.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	movies := make([]models.Movie, 0, len(s.movies))
	for _, m := range s.movies {
		movies = append(movies, cloneMovie(m))
	}
	sort.Slice(movies, func(i, j int) bool { return movies[i].Title < movies[j].Title })
	return movies, nil
}

func (s *Store) FindMovieByTitle(ctx context.Context, title string) (models.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if m, ok := s.movieByTitle(title); ok {
		return cloneMovie(m), nil
	}
	return models.Movie{}, models.ErrMovieNotFound
}

func (s *Store) FindMovieByID(ctx context.Context, id uuid.UUID) (models.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.movies[id]
	if !ok {
		return models.Movie{}, models.ErrMovieNotFound
	}
	return cloneMovie(m), nil
}

func (s *Store) FindGenre(ctx context.Context, name string) (models.Genre, error) {
	movies, _ := s.ListMovies(ctx)
	for _, m := range movies {
		if m.Genre.Name == name {
			return m.Genre, nil
		}
	}
	return models.Genre{}, movie.ErrGenreNotFound
}

func (s *Store) FindDirector(ctx context.Context, name string) (models.Director, error) {
	movies, _ := s.ListMovies(ctx)
	for _, m := range movies {
		if m.Director.Name == name {
			return m.Director, nil
		}
	}
	return models.Director{}, movie.ErrDirectorNotFound
}

// UpsertMovie replaces the movie sharing m.Title, keeping its id.
func (s *Store) UpsertMovie(ctx context.Context, m models.Movie) (models.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.movieByTitle(m.Title); ok {
		m.ID = existing.ID
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Actors == nil {
		m.Actors = []string{}
	}
	s.movies[m.ID] = cloneMovie(m)
	return cloneMovie(m), nil
}

func (s *Store) movieByTitle(title string) (models.Movie, bool) {
	for _, m := range s.movies {
		if m.Title == title {
			return m, true
		}
	}
	return models.Movie{}, false
}

func cloneUser(u models.User) models.User {
	u.FavoriteMovies = slices.Clone(u.FavoriteMovies)
	if u.FavoriteMovies == nil {
		u.FavoriteMovies = []uuid.UUID{}
	}
	return u
}

func cloneMovie(m models.Movie) models.Movie {
	m.Actors = slices.Clone(m.Actors)
	return m
}
