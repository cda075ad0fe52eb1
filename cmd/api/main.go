package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/abduss/flickpick/internal/auth"
	"github.com/abduss/flickpick/internal/config"
	"github.com/abduss/flickpick/internal/logger"
	"github.com/abduss/flickpick/internal/memstore"
	"github.com/abduss/flickpick/internal/metrics"
	"github.com/abduss/flickpick/internal/models"
	"github.com/abduss/flickpick/internal/movie"
	"github.com/abduss/flickpick/internal/server"
	"github.com/abduss/flickpick/internal/storage"
	"github.com/abduss/flickpick/internal/user"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// userStore is what the auth and user services need from a backend.
type userStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByName(ctx context.Context, name string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, name string, update models.UserUpdate) (models.User, error)
	DeleteUser(ctx context.Context, name string) error
	AddFavorite(ctx context.Context, name string, movieID uuid.UUID) (models.User, error)
	RemoveFavorite(ctx context.Context, name string, movieID uuid.UUID) (models.User, error)
}

type movieStore interface {
	ListMovies(ctx context.Context) ([]models.Movie, error)
	FindMovieByTitle(ctx context.Context, title string) (models.Movie, error)
	FindMovieByID(ctx context.Context, id uuid.UUID) (models.Movie, error)
	FindGenre(ctx context.Context, name string) (models.Genre, error)
	FindDirector(ctx context.Context, name string) (models.Director, error)
	UpsertMovie(ctx context.Context, movie models.Movie) (models.Movie, error)
}

type backend struct {
	users  userStore
	movies movieStore
	pinger server.Pinger
	close  func()
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zl.Sync() //nolint:errcheck

	metrics.InitMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openBackend(ctx, cfg)
	if err != nil {
		zl.Fatal("open store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer store.close()

	deps := server.Dependencies{
		Config: cfg,
		Logger: zl,
		Store:  store.pinger,
	}

	var movieService *movie.Service
	if cfg.MinIO.Enabled {
		minioClient, err := storage.NewMinIOClient(cfg.MinIO)
		if err != nil {
			zl.Fatal("connect minio", zap.Error(err))
		}
		if err := storage.EnsureBucket(ctx, minioClient, cfg.MinIO.Bucket, cfg.MinIO.Region); err != nil {
			zl.Fatal("ensure bucket", zap.Error(err))
		}
		deps.ObjectStore = minioClient
		movieService = movie.NewService(store.movies, movie.NewMinIOStore(minioClient), cfg.MinIO.Bucket, cfg.MinIO.PresignTTL)
	} else {
		movieService = movie.NewService(store.movies, nil, cfg.MinIO.Bucket, cfg.MinIO.PresignTTL)
	}

	hasher := auth.NewHasher(cfg.Auth.BcryptCost)
	tokens := auth.NewTokenManager(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)
	deps.AuthService = auth.NewService(store.users, hasher, tokens)
	deps.UserService = user.NewService(store.users, movieService, hasher)
	deps.MovieService = movieService

	router := server.NewRouter(deps)

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		zl.Info("FlickPick API listening",
			zap.String("addr", cfg.Server.Address()),
			zap.String("store", cfg.Store.Driver),
			zap.Bool("posters", cfg.MinIO.Enabled),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	zl.Info("shutting down gracefully")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zl.Error("shutdown", zap.Error(err))
	}
}

func openBackend(ctx context.Context, cfg config.Config) (backend, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pool, err := storage.NewPostgresPool(ctx, cfg.Postgres)
		if err != nil {
			return backend{}, err
		}
		if err := storage.Migrate(ctx, pool); err != nil {
			pool.Close()
			return backend{}, err
		}
		return backend{
			users:  user.NewRepository(pool),
			movies: movie.NewRepository(pool),
			pinger: pool,
			close:  pool.Close,
		}, nil

	case config.StoreDriverMemory:
		store := memstore.New()
		return backend{users: store, movies: store, pinger: store, close: func() {}}, nil

	default:
		mongoStore, err := storage.NewMongoStore(ctx, cfg.Mongo)
		if err != nil {
			return backend{}, err
		}
		closeMongo := func() { _ = mongoStore.Close(context.Background()) }

		users := user.NewMongoRepository(mongoStore.Database)
		movies := movie.NewMongoRepository(mongoStore.Database)
		if err := users.EnsureIndexes(ctx); err != nil {
			closeMongo()
			return backend{}, err
		}
		if err := movies.EnsureIndexes(ctx); err != nil {
			closeMongo()
			return backend{}, err
		}
		return backend{users: users, movies: movies, pinger: mongoStore, close: closeMongo}, nil
	}
}
