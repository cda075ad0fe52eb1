package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abduss/flickpick/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultQueryTimeout = 5 * time.Second

const userColumns = `name, password_hash, email, birthday, favorite_movies`

// Repository provides PostgreSQL access for user records.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a new Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateUser persists a new user record.
func (r *Repository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	query := `
INSERT INTO users (name, password_hash, email, birthday)
VALUES ($1, $2, $3, $4)
RETURNING ` + userColumns + `;`

	created, err := scanUser(r.pool.QueryRow(ctx, query, user.Name, user.PasswordHash, user.Email, user.Birthday))
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, models.ErrUserExists
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

// FindUserByName fetches a user by name.
func (r *Repository) FindUserByName(ctx context.Context, name string) (models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE name = $1;`

	user, err := scanUser(r.pool.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, models.ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// ListUsers returns all users ordered by name.
func (r *Repository) ListUsers(ctx context.Context) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY name;`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// UpdateUser replaces the profile fields of name.
func (r *Repository) UpdateUser(ctx context.Context, name string, update models.UserUpdate) (models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	query := `
UPDATE users
SET name = $2, password_hash = $3, email = $4, birthday = $5, updated_at = NOW()
WHERE name = $1
RETURNING ` + userColumns + `;`

	user, err := scanUser(r.pool.QueryRow(ctx, query, name, update.Name, update.PasswordHash, update.Email, update.Birthday))
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return models.User{}, models.ErrUserNotFound
		case isUniqueViolation(err):
			return models.User{}, models.ErrUserExists
		}
		return models.User{}, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// DeleteUser removes the user named name.
func (r *Repository) DeleteUser(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE name = $1;`, name)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// AddFavorite appends movieID to the favorites unless already present.
func (r *Repository) AddFavorite(ctx context.Context, name string, movieID uuid.UUID) (models.User, error) {
	return r.updateFavorites(ctx, `
UPDATE users
SET favorite_movies = CASE
        WHEN $2::uuid = ANY(favorite_movies) THEN favorite_movies
        ELSE array_append(favorite_movies, $2::uuid)
    END,
    updated_at = NOW()
WHERE name = $1
RETURNING `+userColumns+`;`, name, movieID)
}

// RemoveFavorite removes movieID from the favorites.
func (r *Repository) RemoveFavorite(ctx context.Context, name string, movieID uuid.UUID) (models.User, error) {
	return r.updateFavorites(ctx, `
UPDATE users
SET favorite_movies = array_remove(favorite_movies, $2::uuid), updated_at = NOW()
WHERE name = $1
RETURNING `+userColumns+`;`, name, movieID)
}

func (r *Repository) updateFavorites(ctx context.Context, query, name string, movieID uuid.UUID) (models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	user, err := scanUser(r.pool.QueryRow(ctx, query, name, movieID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, models.ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("update favorites: %w", err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var (
		user     models.User
		birthday *time.Time
	)
	if err := row.Scan(&user.Name, &user.PasswordHash, &user.Email, &birthday, &user.FavoriteMovies); err != nil {
		return models.User{}, err
	}
	if birthday != nil {
		user.Birthday = birthday.UTC()
	}
	return user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
