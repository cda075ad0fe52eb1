// Command flickpick-seed imports a movie catalog and its posters.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime"
	"os"
	"path/filepath"

	"github.com/abduss/flickpick/internal/config"
	"github.com/abduss/flickpick/internal/logger"
	"github.com/abduss/flickpick/internal/models"
	"github.com/abduss/flickpick/internal/movie"
	"github.com/abduss/flickpick/internal/storage"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// catalogEntry is one movie in the seed file. PosterFile is resolved against --posters.
type catalogEntry struct {
	models.Movie
	PosterFile string `json:"PosterFile"`
}

type options struct {
	file       string
	postersDir string
}

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := options{}
	cmd := &cobra.Command{
		Use:          "flickpick-seed",
		Short:        "Import movies and posters into the configured store",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.file, "file", "f", "movies.json", "JSON file holding an array of movies")
	cmd.Flags().StringVar(&opts.postersDir, "posters", "", "directory holding poster images referenced by PosterFile")
	return cmd
}

func run(ctx context.Context, opts options) error {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	zl, err := logger.New(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer zl.Sync() //nolint:errcheck

	f, err := os.Open(opts.file)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	entries, err := loadCatalog(f)
	if err != nil {
		return err
	}

	service, closeStore, err := openMovieService(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	imported := 0
	for _, entry := range entries {
		stored, err := importEntry(ctx, service, entry, opts.postersDir)
		if err != nil {
			zl.Error("import movie", zap.String("title", entry.Title), zap.Error(err))
			continue
		}
		imported++
		zl.Info("imported movie", zap.String("title", stored.Title), zap.String("id", stored.ID.String()))
	}

	zl.Info("seed finished", zap.Int("imported", imported), zap.Int("total", len(entries)))
	if imported != len(entries) {
		return fmt.Errorf("imported %d of %d movies", imported, len(entries))
	}
	return nil
}

func loadCatalog(r io.Reader) ([]catalogEntry, error) {
	var entries []catalogEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return entries, nil
}

type importer interface {
	ImportMovie(ctx context.Context, m models.Movie, poster *movie.PosterUpload) (models.Movie, error)
}

func importEntry(ctx context.Context, svc importer, entry catalogEntry, postersDir string) (models.Movie, error) {
	if entry.PosterFile == "" || postersDir == "" {
		return svc.ImportMovie(ctx, entry.Movie, nil)
	}

	path := filepath.Join(postersDir, filepath.Base(entry.PosterFile))
	f, err := os.Open(path)
	if err != nil {
		return models.Movie{}, fmt.Errorf("open poster: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return models.Movie{}, fmt.Errorf("stat poster: %w", err)
	}

	return svc.ImportMovie(ctx, entry.Movie, &movie.PosterUpload{
		Filename:    entry.PosterFile,
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Size:        info.Size(),
		Body:        f,
	})
}

type movieRepository interface {
	ListMovies(ctx context.Context) ([]models.Movie, error)
	FindMovieByTitle(ctx context.Context, title string) (models.Movie, error)
	FindMovieByID(ctx context.Context, id uuid.UUID) (models.Movie, error)
	FindGenre(ctx context.Context, name string) (models.Genre, error)
	FindDirector(ctx context.Context, name string) (models.Director, error)
	UpsertMovie(ctx context.Context, movie models.Movie) (models.Movie, error)
}

func openMovieService(ctx context.Context, cfg config.Config) (*movie.Service, func(), error) {
	var (
		repo      movieRepository
		closeFunc func()
	)

	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pool, err := storage.NewPostgresPool(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		if err := storage.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		repo, closeFunc = movie.NewRepository(pool), pool.Close

	case config.StoreDriverMongo:
		mongoStore, err := storage.NewMongoStore(ctx, cfg.Mongo)
		if err != nil {
			return nil, nil, err
		}
		closeFunc = func() { _ = mongoStore.Close(context.Background()) }
		movies := movie.NewMongoRepository(mongoStore.Database)
		if err := movies.EnsureIndexes(ctx); err != nil {
			closeFunc()
			return nil, nil, err
		}
		repo = movies

	default:
		return nil, nil, fmt.Errorf("seeding needs a persistent store, got %q", cfg.Store.Driver)
	}

	if !cfg.MinIO.Enabled {
		return movie.NewService(repo, nil, cfg.MinIO.Bucket, cfg.MinIO.PresignTTL), closeFunc, nil
	}

	client, err := storage.NewMinIOClient(cfg.MinIO)
	if err == nil {
		err = storage.EnsureBucket(ctx, client, cfg.MinIO.Bucket, cfg.MinIO.Region)
	}
	if err != nil {
		closeFunc()
		return nil, nil, err
	}
	return movie.NewService(repo, movie.NewMinIOStore(client), cfg.MinIO.Bucket, cfg.MinIO.PresignTTL), closeFunc, nil
}
