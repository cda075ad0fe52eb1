package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abduss/flickpick/internal/models"
)

// credentialStore abstracts the persistence layer holding user records.
type credentialStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByName(ctx context.Context, name string) (models.User, error)
}

// Service encapsulates registration, credential verification and token issuance.
type Service struct {
	store     credentialStore
	hasher    *Hasher
	tokens    *TokenManager
	dummyHash string
}

// NewService creates a Service with dependencies.
func NewService(store credentialStore, hasher *Hasher, tokens *TokenManager) *Service {
	s := &Service{
		store:  store,
		hasher: hasher,
		tokens: tokens,
	}
	// Compared against when the name is unknown so both failure paths cost one bcrypt check.
	if hash, err := hasher.Hash("flickpick-unknown-user"); err == nil {
		s.dummyHash = hash
	}
	return s
}

// RegisterInput carries data for user registration.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Birthday time.Time
}

// LoginResult contains the authenticated user and the issued token.
type LoginResult struct {
	User  models.User
	Token Token
}

// Register hashes the password and persists a new user.
func (s *Service) Register(ctx context.Context, input RegisterInput) (models.User, error) {
	hashedPassword, err := s.hasher.Hash(input.Password)
	if err != nil {
		if errors.Is(err, ErrPasswordTooLong) {
			return models.User{}, err
		}
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, models.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.TrimSpace(input.Email),
		PasswordHash: hashedPassword,
		Birthday:     input.Birthday.UTC(),
	})
	if err != nil {
		if errors.Is(err, models.ErrUserExists) {
			return models.User{}, models.ErrUserExists
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}

	return user.SafeUser(), nil
}

// Authenticate confirms name and password against the stored record.
// Unknown names and wrong passwords both yield ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, name, password string) (models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" || password == "" {
		return models.User{}, ErrInvalidCredentials
	}

	user, err := s.store.FindUserByName(ctx, name)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, fmt.Errorf("find user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return models.User{}, ErrInvalidCredentials
	}

	return user.SafeUser(), nil
}

// Login authenticates credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, name, password string) (LoginResult, error) {
	user, err := s.Authenticate(ctx, name, password)
	if err != nil {
		return LoginResult{}, err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}

	return LoginResult{User: user, Token: token}, nil
}

// Tokens exposes the token manager used by the route guard.
func (s *Service) Tokens() *TokenManager {
	return s.tokens
}
