package movie

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abduss/flickpick/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultQueryTimeout = 5 * time.Second

const movieColumns = `id, title, description, genre_name, genre_description,
director_name, director_bio, director_birth, director_death, actors, image_path, featured`

// Repository provides PostgreSQL access for the movie catalog.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a new Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListMovies returns all movies ordered by title.
func (r *Repository) ListMovies(ctx context.Context) ([]models.Movie, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT `+movieColumns+` FROM movies ORDER BY title;`)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	defer rows.Close()

	movies := []models.Movie{}
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		movies = append(movies, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movies: %w", err)
	}
	return movies, nil
}

// FindMovieByTitle fetches a movie by its exact title.
func (r *Repository) FindMovieByTitle(ctx context.Context, title string) (models.Movie, error) {
	return r.findOne(ctx, `SELECT `+movieColumns+` FROM movies WHERE title = $1;`, title)
}

// FindMovieByID fetches a movie by id.
func (r *Repository) FindMovieByID(ctx context.Context, id uuid.UUID) (models.Movie, error) {
	return r.findOne(ctx, `SELECT `+movieColumns+` FROM movies WHERE id = $1;`, id)
}

func (r *Repository) findOne(ctx context.Context, query string, arg any) (models.Movie, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	movie, err := scanMovie(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Movie{}, models.ErrMovieNotFound
		}
		return models.Movie{}, fmt.Errorf("find movie: %w", err)
	}
	return movie, nil
}

// FindGenre returns the genre of the first movie whose genre is named name.
func (r *Repository) FindGenre(ctx context.Context, name string) (models.Genre, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	var genre models.Genre
	err := r.pool.QueryRow(ctx, `
SELECT genre_name, genre_description FROM movies
WHERE genre_name = $1
ORDER BY title
LIMIT 1;`, name).Scan(&genre.Name, &genre.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Genre{}, ErrGenreNotFound
		}
		return models.Genre{}, fmt.Errorf("find genre: %w", err)
	}
	return genre, nil
}

// FindDirector returns the director of the first movie directed by name.
func (r *Repository) FindDirector(ctx context.Context, name string) (models.Director, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	var director models.Director
	err := r.pool.QueryRow(ctx, `
SELECT director_name, director_bio, director_birth, director_death FROM movies
WHERE director_name = $1
ORDER BY title
LIMIT 1;`, name).Scan(&director.Name, &director.Bio, &director.Birth, &director.Death)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Director{}, ErrDirectorNotFound
		}
		return models.Director{}, fmt.Errorf("find director: %w", err)
	}
	return director, nil
}

// UpsertMovie inserts movie or replaces the row sharing its title.
func (r *Repository) UpsertMovie(ctx context.Context, movie models.Movie) (models.Movie, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	if movie.ID == uuid.Nil {
		movie.ID = uuid.New()
	}
	if movie.Actors == nil {
		movie.Actors = []string{}
	}

	query := `
INSERT INTO movies (` + movieColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (title) DO UPDATE SET
    description = EXCLUDED.description,
    genre_name = EXCLUDED.genre_name,
    genre_description = EXCLUDED.genre_description,
    director_name = EXCLUDED.director_name,
    director_bio = EXCLUDED.director_bio,
    director_birth = EXCLUDED.director_birth,
    director_death = EXCLUDED.director_death,
    actors = EXCLUDED.actors,
    image_path = EXCLUDED.image_path,
    featured = EXCLUDED.featured
RETURNING ` + movieColumns + `;`

	stored, err := scanMovie(r.pool.QueryRow(ctx, query,
		movie.ID, movie.Title, movie.Description,
		movie.Genre.Name, movie.Genre.Description,
		movie.Director.Name, movie.Director.Bio, movie.Director.Birth, movie.Director.Death,
		movie.Actors, movie.ImagePath, movie.Featured,
	))
	if err != nil {
		return models.Movie{}, fmt.Errorf("upsert movie: %w", err)
	}
	return stored, nil
}

func scanMovie(row pgx.Row) (models.Movie, error) {
	var movie models.Movie
	err := row.Scan(
		&movie.ID, &movie.Title, &movie.Description,
		&movie.Genre.Name, &movie.Genre.Description,
		&movie.Director.Name, &movie.Director.Bio, &movie.Director.Birth, &movie.Director.Death,
		&movie.Actors, &movie.ImagePath, &movie.Featured,
	)
	if err != nil {
		return models.Movie{}, err
	}
	return movie, nil
}
