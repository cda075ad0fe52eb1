package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/abduss/flickpick/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(store credentialStore) *Service {
	return NewService(store, NewHasher(4), NewTokenManager(testSecret, 7*24*time.Hour))
}

func registerKim(t *testing.T, service *Service) models.User {
	t.Helper()
	user, err := service.Register(context.Background(), RegisterInput{
		Name:     "Kim",
		Email:    "kim@example.com",
		Password: "s3cret!",
		Birthday: time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return user
}

func TestRegisterSuccess(t *testing.T) {
	store := newMemoryStore()
	service := newTestService(store)

	user := registerKim(t, service)

	assert.Empty(t, user.PasswordHash, "password hash must be stripped from the result")
	assert.Equal(t, "Kim", user.Name)
	require.Len(t, store.users, 1)

	stored := store.users["Kim"]
	assert.NotEqual(t, "s3cret!", stored.PasswordHash)
	assert.NotEmpty(t, stored.PasswordHash)
}

func TestRegisterDuplicateName(t *testing.T) {
	service := newTestService(newMemoryStore())
	registerKim(t, service)

	_, err := service.Register(context.Background(), RegisterInput{
		Name:     "Kim",
		Email:    "other@example.com",
		Password: "another",
	})
	assert.ErrorIs(t, err, models.ErrUserExists)
}

func TestAuthenticateTrimsName(t *testing.T) {
	service := newTestService(newMemoryStore())
	registerKim(t, service)

	user, err := service.Authenticate(context.Background(), "  Kim\t", "s3cret!")
	require.NoError(t, err)
	assert.Equal(t, "Kim", user.Name)

	_, err = service.Authenticate(context.Background(), "   ", "s3cret!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterStoreFailure(t *testing.T) {
	store := newMemoryStore()
	store.err = errors.New("connection refused")

	_, err := newTestService(store).Register(context.Background(), RegisterInput{Name: "Kim", Password: "s3cret!"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrUserExists)
}

func TestAuthenticateSuccess(t *testing.T) {
	service := newTestService(newMemoryStore())
	registerKim(t, service)

	user, err := service.Authenticate(context.Background(), "Kim", "s3cret!")
	require.NoError(t, err)
	assert.Equal(t, "Kim", user.Name)
	assert.Empty(t, user.PasswordHash)
}

func TestAuthenticateFailuresAreIndistinguishable(t *testing.T) {
	service := newTestService(newMemoryStore())
	registerKim(t, service)

	_, wrongSecret := service.Authenticate(context.Background(), "Kim", "wrong")
	_, unknownUser := service.Authenticate(context.Background(), "Nobody", "s3cret!")

	require.Error(t, wrongSecret)
	require.Error(t, unknownUser)
	assert.ErrorIs(t, wrongSecret, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUser, ErrInvalidCredentials)
	assert.Equal(t, wrongSecret.Error(), unknownUser.Error())
}

func TestAuthenticateEmptyCredentials(t *testing.T) {
	service := newTestService(newMemoryStore())

	_, err := service.Authenticate(context.Background(), "", "s3cret!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = service.Authenticate(context.Background(), "Kim", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateStoreFailure(t *testing.T) {
	store := newMemoryStore()
	service := newTestService(store)
	store.err = errors.New("timeout")

	_, err := service.Authenticate(context.Background(), "Kim", "s3cret!")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	service := newTestService(newMemoryStore())
	registerKim(t, service)

	result, err := service.Login(context.Background(), "Kim", "s3cret!")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token.Value)

	principal, err := service.Tokens().Verify(result.Token.Value)
	require.NoError(t, err)
	assert.Equal(t, "Kim", principal.Name)
}

func TestLoginInvalidPassword(t *testing.T) {
	service := newTestService(newMemoryStore())
	registerKim(t, service)

	_, err := service.Login(context.Background(), "Kim", "WrongPass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

// memoryStore implements credentialStore for tests.
type memoryStore struct {
	mu    sync.Mutex
	users map[string]models.User
	err   error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{users: make(map[string]models.User)}
}

func (m *memoryStore) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return models.User{}, m.err
	}
	if _, ok := m.users[user.Name]; ok {
		return models.User{}, models.ErrUserExists
	}
	m.users[user.Name] = user
	return user, nil
}

func (m *memoryStore) FindUserByName(ctx context.Context, name string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return models.User{}, m.err
	}
	user, ok := m.users[name]
	if !ok {
		return models.User{}, models.ErrUserNotFound
	}
	return user, nil
}
