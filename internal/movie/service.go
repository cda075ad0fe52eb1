package movie

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/abduss/flickpick/internal/models"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

const defaultPosterContentType = "application/octet-stream"

type repository interface {
	ListMovies(ctx context.Context) ([]models.Movie, error)
	FindMovieByTitle(ctx context.Context, title string) (models.Movie, error)
	FindMovieByID(ctx context.Context, id uuid.UUID) (models.Movie, error)
	FindGenre(ctx context.Context, name string) (models.Genre, error)
	FindDirector(ctx context.Context, name string) (models.Director, error)
	UpsertMovie(ctx context.Context, movie models.Movie) (models.Movie, error)
}

type objectStore interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, minio.ObjectInfo, error)
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
}

// Service serves catalog queries and poster objects.
type Service struct {
	repo         repository
	objectStore  objectStore
	posterBucket string
	presignTTL   time.Duration
	nowFunc      func() time.Time
}

// NewService constructs a movie service. store may be nil when posters are disabled.
func NewService(repo repository, store objectStore, posterBucket string, presignTTL time.Duration) *Service {
	return &Service{
		repo:         repo,
		objectStore:  store,
		posterBucket: posterBucket,
		presignTTL:   presignTTL,
		nowFunc:      time.Now,
	}
}

// Poster is an open poster object. Callers must close Body.
type Poster struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// PosterURL is a time-limited direct link to a poster.
type PosterURL struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PosterUpload is a poster image to store alongside an imported movie.
type PosterUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ListMovies returns the whole catalog.
func (s *Service) ListMovies(ctx context.Context) ([]models.Movie, error) {
	return s.repo.ListMovies(ctx)
}

// GetMovie returns the movie with the given title.
func (s *Service) GetMovie(ctx context.Context, title string) (models.Movie, error) {
	return s.repo.FindMovieByTitle(ctx, title)
}

// FindMovieByID resolves a movie reference.
func (s *Service) FindMovieByID(ctx context.Context, id uuid.UUID) (models.Movie, error) {
	return s.repo.FindMovieByID(ctx, id)
}

// GetGenre returns the genre description shared by movies named name.
func (s *Service) GetGenre(ctx context.Context, name string) (models.Genre, error) {
	return s.repo.FindGenre(ctx, name)
}

// GetDirector returns the director details.
func (s *Service) GetDirector(ctx context.Context, name string) (models.Director, error) {
	return s.repo.FindDirector(ctx, name)
}

// OpenPoster streams the poster of the movie titled title.
func (s *Service) OpenPoster(ctx context.Context, title string) (Poster, error) {
	object, err := s.posterObject(ctx, title)
	if err != nil {
		return Poster{}, err
	}

	body, info, err := s.objectStore.GetObject(ctx, s.posterBucket, object, minio.GetObjectOptions{})
	if err != nil {
		return Poster{}, err
	}

	contentType := info.ContentType
	if contentType == "" {
		contentType = defaultPosterContentType
	}
	return Poster{Body: body, ContentType: contentType, Size: info.Size}, nil
}

// PresignPoster returns a presigned GET URL for the poster of title.
func (s *Service) PresignPoster(ctx context.Context, title string) (PosterURL, error) {
	object, err := s.posterObject(ctx, title)
	if err != nil {
		return PosterURL{}, err
	}

	u, err := s.objectStore.PresignedGetObject(ctx, s.posterBucket, object, s.presignTTL, url.Values{})
	if err != nil {
		return PosterURL{}, fmt.Errorf("presign poster: %w", err)
	}
	return PosterURL{URL: u.String(), ExpiresAt: s.nowFunc().Add(s.presignTTL).UTC()}, nil
}

// ImportMovie stores poster (if any) and upserts the movie by title.
func (s *Service) ImportMovie(ctx context.Context, movie models.Movie, poster *PosterUpload) (models.Movie, error) {
	movie.Title = strings.TrimSpace(movie.Title)
	if movie.Title == "" {
		return models.Movie{}, ErrTitleRequired
	}

	if poster != nil {
		if s.objectStore == nil {
			return models.Movie{}, fmt.Errorf("import %q: poster storage not configured", movie.Title)
		}
		objectName := posterObjectName(movie.Title, poster.Filename)
		contentType := poster.ContentType
		if contentType == "" {
			contentType = defaultPosterContentType
		}
		if _, err := s.objectStore.PutObject(ctx, s.posterBucket, objectName, poster.Body, poster.Size, minio.PutObjectOptions{
			ContentType: contentType,
		}); err != nil {
			return models.Movie{}, fmt.Errorf("store poster: %w", err)
		}
		movie.ImagePath = objectName
	}

	stored, err := s.repo.UpsertMovie(ctx, movie)
	if err != nil {
		return models.Movie{}, fmt.Errorf("upsert movie: %w", err)
	}
	return stored, nil
}

func (s *Service) posterObject(ctx context.Context, title string) (string, error) {
	if s.objectStore == nil {
		return "", ErrPosterNotFound
	}
	movie, err := s.repo.FindMovieByTitle(ctx, title)
	if err != nil {
		return "", err
	}
	if movie.ImagePath == "" {
		return "", ErrPosterNotFound
	}
	return movie.ImagePath, nil
}

func posterObjectName(title, filename string) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, title)
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "movie"
	}
	return "posters/" + slug + strings.ToLower(path.Ext(filename))
}
