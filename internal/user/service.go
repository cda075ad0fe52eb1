package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abduss/flickpick/internal/models"
	"github.com/google/uuid"
)

type repository interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	FindUserByName(ctx context.Context, name string) (models.User, error)
	UpdateUser(ctx context.Context, name string, update models.UserUpdate) (models.User, error)
	DeleteUser(ctx context.Context, name string) error
	AddFavorite(ctx context.Context, name string, movieID uuid.UUID) (models.User, error)
	RemoveFavorite(ctx context.Context, name string, movieID uuid.UUID) (models.User, error)
}

// MovieIndex resolves movie references stored in favorites.
type MovieIndex interface {
	FindMovieByID(ctx context.Context, id uuid.UUID) (models.Movie, error)
}

type passwordHasher interface {
	Hash(password string) (string, error)
}

// Service orchestrates profile and favorites operations.
type Service struct {
	repo   repository
	movies MovieIndex
	hasher passwordHasher
}

// NewService constructs a user service.
func NewService(repo repository, movies MovieIndex, hasher passwordHasher) *Service {
	return &Service{
		repo:   repo,
		movies: movies,
		hasher: hasher,
	}
}

// UpdateInput carries the replacement profile.
type UpdateInput struct {
	Name     string
	Email    string
	Password string
	Birthday time.Time
}

// ListUsers returns every user with password hashes removed.
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	safe := make([]models.User, 0, len(users))
	for _, u := range users {
		safe = append(safe, u.SafeUser())
	}
	return safe, nil
}

// GetUser returns a single user by name.
func (s *Service) GetUser(ctx context.Context, name string) (models.User, error) {
	u, err := s.repo.FindUserByName(ctx, name)
	if err != nil {
		return models.User{}, err
	}
	return u.SafeUser(), nil
}

// UpdateUser replaces the profile of name; only the account owner may do so.
func (s *Service) UpdateUser(ctx context.Context, actor, name string, input UpdateInput) (models.User, error) {
	if actor != name {
		return models.User{}, ErrForbidden
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	updated, err := s.repo.UpdateUser(ctx, name, models.UserUpdate{
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.TrimSpace(input.Email),
		PasswordHash: hash,
		Birthday:     input.Birthday.UTC(),
	})
	if err != nil {
		return models.User{}, err
	}
	return updated.SafeUser(), nil
}

// DeleteUser deregisters name; only the account owner may do so.
func (s *Service) DeleteUser(ctx context.Context, actor, name string) error {
	if actor != name {
		return ErrForbidden
	}
	return s.repo.DeleteUser(ctx, name)
}

// AddFavorite records movieID in name's favorites. Adding twice is a no-op.
func (s *Service) AddFavorite(ctx context.Context, actor, name string, movieID uuid.UUID) (models.User, error) {
	if actor != name {
		return models.User{}, ErrForbidden
	}
	if _, err := s.movies.FindMovieByID(ctx, movieID); err != nil {
		if errors.Is(err, models.ErrMovieNotFound) {
			return models.User{}, models.ErrMovieNotFound
		}
		return models.User{}, fmt.Errorf("find movie: %w", err)
	}

	updated, err := s.repo.AddFavorite(ctx, name, movieID)
	if err != nil {
		return models.User{}, err
	}
	return updated.SafeUser(), nil
}

// RemoveFavorite drops movieID from name's favorites.
func (s *Service) RemoveFavorite(ctx context.Context, actor, name string, movieID uuid.UUID) (models.User, error) {
	if actor != name {
		return models.User{}, ErrForbidden
	}
	updated, err := s.repo.RemoveFavorite(ctx, name, movieID)
	if err != nil {
		return models.User{}, err
	}
	return updated.SafeUser(), nil
}
