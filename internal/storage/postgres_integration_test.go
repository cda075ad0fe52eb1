//go:build integration

package storage_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/abduss/flickpick/internal/models"
	"github.com/abduss/flickpick/internal/movie"
	"github.com/abduss/flickpick/internal/storage"
	"github.com/abduss/flickpick/internal/user"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var pool *pgxpool.Pool

func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("flickpick"),
		postgres.WithUsername("flickpick"),
		postgres.WithPassword("flickpick"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		panic(err)
	}

	connString, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		panic(err)
	}

	pool, err = pgxpool.New(ctx, connString)
	if err != nil {
		panic(err)
	}
	if err := storage.Migrate(ctx, pool); err != nil {
		panic(err)
	}

	code := m.Run()

	pool.Close()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func TestPostgresUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := user.NewRepository(pool)
	favorite := uuid.New()

	t.Run("CreateUser", func(t *testing.T) {
		created, err := repo.CreateUser(ctx, models.User{
			Name:         "Kim",
			PasswordHash: "$2a$10$hash",
			Email:        "kim@example.com",
			Birthday:     time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		assert.Equal(t, "Kim", created.Name)
		assert.Empty(t, created.FavoriteMovies)
	})

	t.Run("CreateUser_Duplicate", func(t *testing.T) {
		_, err := repo.CreateUser(ctx, models.User{Name: "Kim", PasswordHash: "x", Email: "x@example.com"})
		assert.ErrorIs(t, err, models.ErrUserExists)
	})

	t.Run("AddFavorite_Idempotent", func(t *testing.T) {
		_, err := repo.AddFavorite(ctx, "Kim", favorite)
		require.NoError(t, err)
		u, err := repo.AddFavorite(ctx, "Kim", favorite)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{favorite}, u.FavoriteMovies)
	})

	t.Run("RemoveFavorite", func(t *testing.T) {
		u, err := repo.RemoveFavorite(ctx, "Kim", favorite)
		require.NoError(t, err)
		assert.Empty(t, u.FavoriteMovies)
	})

	t.Run("UpdateUser_Rename", func(t *testing.T) {
		u, err := repo.UpdateUser(ctx, "Kim", models.UserUpdate{
			Name: "Kimberly", Email: "kimberly@example.com", PasswordHash: "$2a$10$new",
			Birthday: time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		assert.Equal(t, "Kimberly", u.Name)

		_, err = repo.FindUserByName(ctx, "Kim")
		assert.ErrorIs(t, err, models.ErrUserNotFound)
	})

	t.Run("DeleteUser", func(t *testing.T) {
		require.NoError(t, repo.DeleteUser(ctx, "Kimberly"))
		assert.ErrorIs(t, repo.DeleteUser(ctx, "Kimberly"), models.ErrUserNotFound)
	})
}

func TestPostgresMovieRepository(t *testing.T) {
	ctx := context.Background()
	repo := movie.NewRepository(pool)
	born := time.Date(1943, 2, 5, 0, 0, 0, 0, time.UTC)

	first, err := repo.UpsertMovie(ctx, models.Movie{
		Title:    "Heat",
		Genre:    models.Genre{Name: "Crime", Description: "Heists"},
		Director: models.Director{Name: "Michael Mann", Bio: "Director", Birth: &born},
		Actors:   []string{"Al Pacino", "Robert De Niro"},
	})
	require.NoError(t, err)

	second, err := repo.UpsertMovie(ctx, models.Movie{Title: "Heat", Description: "Updated"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Updated", second.Description)

	_, err = repo.UpsertMovie(ctx, models.Movie{
		Title:    "Collateral",
		Genre:    models.Genre{Name: "Thriller"},
		Director: models.Director{Name: "Michael Mann", Bio: "Director", Birth: &born},
	})
	require.NoError(t, err)

	movies, err := repo.ListMovies(ctx)
	require.NoError(t, err)
	require.Len(t, movies, 2)
	assert.Equal(t, "Collateral", movies[0].Title)

	director, err := repo.FindDirector(ctx, "Michael Mann")
	require.NoError(t, err)
	require.NotNil(t, director.Birth)
	assert.True(t, director.Birth.Equal(born))

	_, err = repo.FindGenre(ctx, "Musical")
	assert.ErrorIs(t, err, movie.ErrGenreNotFound)

	byID, err := repo.FindMovieByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Heat", byID.Title)
}
