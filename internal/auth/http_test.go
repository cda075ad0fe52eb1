package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/abduss/flickpick/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockStore is a testify mock of credentialStore.
type mockStore struct {
	mock.Mock
}

func (m *mockStore) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *mockStore) FindUserByName(ctx context.Context, name string) (models.User, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(models.User), args.Error(1)
}

func newAuthRouter(store credentialStore, loginMiddleware ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, newTestService(store), loginMiddleware...)
	return r
}

func postJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestRegisterHandlerCreatesUser(t *testing.T) {
	store := new(mockStore)
	store.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Name == "Kim" && u.Email == "kim@example.com" && u.PasswordHash != "" && u.PasswordHash != "s3cret!"
	})).Return(models.User{
		Name:         "Kim",
		Email:        "kim@example.com",
		PasswordHash: "$2a$04$stored",
		Birthday:     time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC),
	}, nil).Once()

	rr := postJSON(newAuthRouter(store), "/users",
		`{"Name":"Kim","Email":"kim@example.com","Password":"s3cret!","Birthday":"1990-05-17"}`)

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.NotContains(t, rr.Body.String(), "$2a$")
	assert.NotContains(t, rr.Body.String(), "Password")

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "Kim", body["Name"])
	store.AssertExpectations(t)
}

func TestRegisterHandlerValidation(t *testing.T) {
	store := new(mockStore)

	rr := postJSON(newAuthRouter(store), "/users", `{"Name":"","Email":"nope","Password":"","Birthday":""}`)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	var body struct {
		Errors []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))

	fields := map[string]string{}
	for _, e := range body.Errors {
		fields[e.Field] = e.Message
	}
	assert.Equal(t, "Name is required", fields["Name"])
	assert.Equal(t, "Email does not appear to be valid", fields["Email"])
	assert.Equal(t, "Password is required", fields["Password"])
	assert.Equal(t, "Birthday is required", fields["Birthday"])
	store.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestRegisterHandlerRejectsBlankName(t *testing.T) {
	store := new(mockStore)

	rr := postJSON(newAuthRouter(store), "/users",
		`{"Name":"   ","Email":"a@b.co","Password":"s3cret!","Birthday":"1990-05-17"}`)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "Name is required")
	store.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestRegisterHandlerRejectsPasswordOverByteLimit(t *testing.T) {
	store := new(mockStore)

	rr := postJSON(newAuthRouter(store), "/users",
		`{"Name":"Kim","Email":"kim@example.com","Password":"`+strings.Repeat("é", 40)+`","Birthday":"1990-05-17"}`)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "Password must be at most 72 bytes")
	store.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestRegisterHandlerTrimsName(t *testing.T) {
	store := new(mockStore)
	store.On("CreateUser", mock.Anything, mock.Anything).Return(models.User{}, models.ErrUserExists).Once()

	rr := postJSON(newAuthRouter(store), "/users",
		`{"Name":"  Kim ","Email":"kim@example.com","Password":"s3cret!","Birthday":"1990-05-17"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"message":"Kim already exists"}`, rr.Body.String())
}

func TestRegisterHandlerRejectsUnparseableBirthday(t *testing.T) {
	store := new(mockStore)

	rr := postJSON(newAuthRouter(store), "/users",
		`{"Name":"Kim","Email":"kim@example.com","Password":"s3cret!","Birthday":"someday"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "Birthday")
}

func TestRegisterHandlerDuplicate(t *testing.T) {
	store := new(mockStore)
	store.On("CreateUser", mock.Anything, mock.Anything).Return(models.User{}, models.ErrUserExists).Once()

	rr := postJSON(newAuthRouter(store), "/users",
		`{"Name":"Kim","Email":"kim@example.com","Password":"s3cret!","Birthday":"1990-05-17"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"message":"Kim already exists"}`, rr.Body.String())
}

func TestRegisterHandlerHidesStoreErrors(t *testing.T) {
	store := new(mockStore)
	store.On("CreateUser", mock.Anything, mock.Anything).Return(models.User{}, errors.New("dial tcp 10.0.0.5:27017")).Once()

	rr := postJSON(newAuthRouter(store), "/users",
		`{"Name":"Kim","Email":"kim@example.com","Password":"s3cret!","Birthday":"1990-05-17"}`)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "10.0.0.5")
}

func TestLoginHandler(t *testing.T) {
	hash, err := NewHasher(4).Hash("s3cret!")
	require.NoError(t, err)

	store := new(mockStore)
	store.On("FindUserByName", mock.Anything, "Kim").Return(models.User{Name: "Kim", PasswordHash: hash}, nil)
	store.On("FindUserByName", mock.Anything, "Nobody").Return(models.User{}, models.ErrUserNotFound)
	router := newAuthRouter(store)

	t.Run("success", func(t *testing.T) {
		rr := postJSON(router, "/login", `{"Name":"Kim","Password":"s3cret!"}`)
		require.Equal(t, http.StatusOK, rr.Code)

		var body struct {
			User  map[string]any `json:"user"`
			Token string         `json:"token"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "Kim", body.User["Name"])
		assert.NotEmpty(t, body.Token)
		assert.NotContains(t, rr.Body.String(), hash)
	})

	t.Run("query parameters", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/login?Name=Kim&Password=s3cret!", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("wrong password and unknown user look the same", func(t *testing.T) {
		wrong := postJSON(router, "/login", `{"Name":"Kim","Password":"nope"}`)
		unknown := postJSON(router, "/login", `{"Name":"Nobody","Password":"s3cret!"}`)

		assert.Equal(t, http.StatusBadRequest, wrong.Code)
		assert.Equal(t, http.StatusBadRequest, unknown.Code)
		assert.JSONEq(t, wrong.Body.String(), unknown.Body.String())
		assert.JSONEq(t, `{"message":"invalid username or password","user":null}`, wrong.Body.String())
	})

	t.Run("name is trimmed", func(t *testing.T) {
		rr := postJSON(router, "/login", `{"Name":" Kim ","Password":"s3cret!"}`)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("missing credentials", func(t *testing.T) {
		rr := postJSON(router, "/login", `{}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestLoginHandlerStoreFailure(t *testing.T) {
	store := new(mockStore)
	store.On("FindUserByName", mock.Anything, "Kim").Return(models.User{}, errors.New("server selection timeout"))

	rr := postJSON(newAuthRouter(store), "/login", `{"Name":"Kim","Password":"s3cret!"}`)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "selection")
}

func TestLoginMiddlewareRunsBeforeHandler(t *testing.T) {
	store := new(mockStore)
	blocked := func(c *gin.Context) { c.AbortWithStatus(http.StatusTooManyRequests) }

	rr := postJSON(newAuthRouter(store, blocked), "/login", `{"Name":"Kim","Password":"s3cret!"}`)

	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	store.AssertNotCalled(t, "FindUserByName", mock.Anything, mock.Anything)
}
