package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abduss/flickpick/internal/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// CollectionName is the MongoDB collection holding user documents.
const CollectionName = "users"

type userDocument struct {
	ID             bson.ObjectID `bson:"_id,omitempty"`
	Name           string        `bson:"Name"`
	Password       string        `bson:"Password"`
	Email          string        `bson:"Email"`
	Birthday       time.Time     `bson:"Birthday"`
	FavoriteMovies []string      `bson:"FavoriteMovies"`
}

func (d userDocument) toModel() models.User {
	favorites := make([]uuid.UUID, 0, len(d.FavoriteMovies))
	for _, raw := range d.FavoriteMovies {
		if id, err := uuid.Parse(raw); err == nil {
			favorites = append(favorites, id)
		}
	}
	return models.User{
		Name:           d.Name,
		PasswordHash:   d.Password,
		Email:          d.Email,
		Birthday:       d.Birthday.UTC(),
		FavoriteMovies: favorites,
	}
}

// MongoRepository stores user records in a MongoDB collection.
type MongoRepository struct {
	coll *mongo.Collection
}

// NewMongoRepository constructs a MongoRepository over db.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName)}
}

// EnsureIndexes creates the unique index that enforces name uniqueness.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "Name", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("users_name_unique"),
	})
	if err != nil {
		return fmt.Errorf("create users index: %w", err)
	}
	return nil
}

// CreateUser persists a new user record.
func (r *MongoRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	doc := userDocument{
		Name:           user.Name,
		Password:       user.PasswordHash,
		Email:          user.Email,
		Birthday:       user.Birthday,
		FavoriteMovies: []string{},
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, models.ErrUserExists
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return doc.toModel(), nil
}

// FindUserByName fetches a user by name.
func (r *MongoRepository) FindUserByName(ctx context.Context, name string) (models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	var doc userDocument
	if err := r.coll.FindOne(ctx, byName(name)).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, models.ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	return doc.toModel(), nil
}

// ListUsers returns all users ordered by name.
func (r *MongoRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "Name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	users := make([]models.User, 0, len(docs))
	for _, doc := range docs {
		users = append(users, doc.toModel())
	}
	return users, nil
}

// UpdateUser replaces the profile fields of name.
func (r *MongoRepository) UpdateUser(ctx context.Context, name string, update models.UserUpdate) (models.User, error) {
	return r.findOneAndUpdate(ctx, name, bson.D{{Key: "$set", Value: bson.D{
		{Key: "Name", Value: update.Name},
		{Key: "Password", Value: update.PasswordHash},
		{Key: "Email", Value: update.Email},
		{Key: "Birthday", Value: update.Birthday},
	}}})
}

// DeleteUser removes the user named name.
func (r *MongoRepository) DeleteUser(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, byName(name))
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// AddFavorite adds movieID to the favorites set.
func (r *MongoRepository) AddFavorite(ctx context.Context, name string, movieID uuid.UUID) (models.User, error) {
	return r.findOneAndUpdate(ctx, name, bson.D{{Key: "$addToSet", Value: bson.D{
		{Key: "FavoriteMovies", Value: movieID.String()},
	}}})
}

// RemoveFavorite removes movieID from the favorites set.
func (r *MongoRepository) RemoveFavorite(ctx context.Context, name string, movieID uuid.UUID) (models.User, error) {
	return r.findOneAndUpdate(ctx, name, bson.D{{Key: "$pull", Value: bson.D{
		{Key: "FavoriteMovies", Value: movieID.String()},
	}}})
}

func (r *MongoRepository) findOneAndUpdate(ctx context.Context, name string, update bson.D) (models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	var doc userDocument
	err := r.coll.FindOneAndUpdate(ctx, byName(name), update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return models.User{}, models.ErrUserNotFound
		case mongo.IsDuplicateKeyError(err):
			return models.User{}, models.ErrUserExists
		}
		return models.User{}, fmt.Errorf("update user: %w", err)
	}
	return doc.toModel(), nil
}

func byName(name string) bson.D {
	return bson.D{{Key: "Name", Value: name}}
}
