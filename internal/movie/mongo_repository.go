package movie

import (
	"context"
	"errors"
	"fmt"

	"github.com/abduss/flickpick/internal/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// CollectionName is the MongoDB collection holding movie documents.
const CollectionName = "movies"

type movieDocument struct {
	ID          string          `bson:"_id"`
	Title       string          `bson:"Title"`
	Description string          `bson:"Description"`
	Genre       models.Genre    `bson:"Genre"`
	Director    models.Director `bson:"Director"`
	Actors      []string        `bson:"Actors"`
	ImagePath   string          `bson:"ImagePath"`
	Featured    bool            `bson:"Featured"`
}

func (d movieDocument) toModel() (models.Movie, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return models.Movie{}, fmt.Errorf("movie %q: bad id %q: %w", d.Title, d.ID, err)
	}
	actors := d.Actors
	if actors == nil {
		actors = []string{}
	}
	return models.Movie{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		Genre:       d.Genre,
		Director:    d.Director,
		Actors:      actors,
		ImagePath:   d.ImagePath,
		Featured:    d.Featured,
	}, nil
}

// MongoRepository stores the movie catalog in a MongoDB collection.
type MongoRepository struct {
	coll *mongo.Collection
}

// NewMongoRepository constructs a MongoRepository over db.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName)}
}

// EnsureIndexes creates the unique title index and lookup indexes for genre and director.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "Title", Value: 1}}, Options: options.Index().SetUnique(true).SetName("movies_title_unique")},
		{Keys: bson.D{{Key: "Genre.Name", Value: 1}}, Options: options.Index().SetName("movies_genre_name")},
		{Keys: bson.D{{Key: "Director.Name", Value: 1}}, Options: options.Index().SetName("movies_director_name")},
	})
	if err != nil {
		return fmt.Errorf("create movies indexes: %w", err)
	}
	return nil
}

// ListMovies returns all movies ordered by title.
func (r *MongoRepository) ListMovies(ctx context.Context) ([]models.Movie, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "Title", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []movieDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode movies: %w", err)
	}

	movies := make([]models.Movie, 0, len(docs))
	for _, doc := range docs {
		movie, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		movies = append(movies, movie)
	}
	return movies, nil
}

// FindMovieByTitle fetches a movie by its exact title.
func (r *MongoRepository) FindMovieByTitle(ctx context.Context, title string) (models.Movie, error) {
	return r.findOne(ctx, bson.D{{Key: "Title", Value: title}})
}

// FindMovieByID fetches a movie by id.
func (r *MongoRepository) FindMovieByID(ctx context.Context, id uuid.UUID) (models.Movie, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id.String()}})
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.D) (models.Movie, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	var doc movieDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Movie{}, models.ErrMovieNotFound
		}
		return models.Movie{}, fmt.Errorf("find movie: %w", err)
	}
	return doc.toModel()
}

// FindGenre returns the genre of the first movie whose genre is named name.
func (r *MongoRepository) FindGenre(ctx context.Context, name string) (models.Genre, error) {
	doc, err := r.findEmbedded(ctx, "Genre.Name", name, "Genre")
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Genre{}, ErrGenreNotFound
		}
		return models.Genre{}, fmt.Errorf("find genre: %w", err)
	}
	return doc.Genre, nil
}

// FindDirector returns the director of the first movie directed by name.
func (r *MongoRepository) FindDirector(ctx context.Context, name string) (models.Director, error) {
	doc, err := r.findEmbedded(ctx, "Director.Name", name, "Director")
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Director{}, ErrDirectorNotFound
		}
		return models.Director{}, fmt.Errorf("find director: %w", err)
	}
	return doc.Director, nil
}

func (r *MongoRepository) findEmbedded(ctx context.Context, key, value, projection string) (movieDocument, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	opts := options.FindOne().
		SetProjection(bson.D{{Key: projection, Value: 1}}).
		SetSort(bson.D{{Key: "Title", Value: 1}})

	var doc movieDocument
	err := r.coll.FindOne(ctx, bson.D{{Key: key, Value: value}}, opts).Decode(&doc)
	return doc, err
}

// UpsertMovie inserts movie or replaces the document sharing its title.
// An existing document keeps its id.
func (r *MongoRepository) UpsertMovie(ctx context.Context, movie models.Movie) (models.Movie, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	if movie.ID == uuid.Nil {
		movie.ID = uuid.New()
	}
	if movie.Actors == nil {
		movie.Actors = []string{}
	}

	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "Description", Value: movie.Description},
			{Key: "Genre", Value: movie.Genre},
			{Key: "Director", Value: movie.Director},
			{Key: "Actors", Value: movie.Actors},
			{Key: "ImagePath", Value: movie.ImagePath},
			{Key: "Featured", Value: movie.Featured},
		}},
		{Key: "$setOnInsert", Value: bson.D{{Key: "_id", Value: movie.ID.String()}}},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc movieDocument
	if err := r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "Title", Value: movie.Title}}, update, opts).Decode(&doc); err != nil {
		return models.Movie{}, fmt.Errorf("upsert movie: %w", err)
	}
	return doc.toModel()
}
