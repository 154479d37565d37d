package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"reviewhub/database"
	"reviewhub/internal/api/handler"
	"reviewhub/internal/api/middleware"
	"reviewhub/internal/api/models"
	"reviewhub/internal/api/repository"
	"reviewhub/internal/api/service"
	"reviewhub/internal/mail"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSecret = "test-secret-0123456789-0123456789"

type testApp struct {
	router *gin.Engine
	db     *gorm.DB
	auth   service.AuthService
}

// newTestApp wires the full HTTP stack against an in-memory database,
// mirroring the wiring in cmd/api-server.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, database.Migrate(db))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepo(db)
	genreRepo := repository.NewGenreRepo(db)
	titleRepo := repository.NewTitleRepo(db)
	reviewRepo := repository.NewReviewRepository(db)
	commentRepo := repository.NewCommentRepo(db)

	authService := service.NewAuthService(userRepo, mail.NewLogMailer(logger), nil, logger,
		testSecret, time.Hour, 0)

	r := gin.New()
	r.Use(middleware.Identify(authService, userRepo))

	auth := r.Group("/auth", middleware.AuthRateLimit(rate.Limit(100), 100))
	handler.NewAuthHandler(authService).RegisterRoutes(auth)

	v1 := r.Group("/api/v1")
	handler.NewUserHandler(service.NewUserService(userRepo)).RegisterRoutes(v1.Group("/users"))
	handler.NewCategoryHandler(service.NewCategoryService(categoryRepo)).RegisterRoutes(v1.Group("/categories"))
	handler.NewGenreHandler(service.NewGenreService(genreRepo)).RegisterRoutes(v1.Group("/genres"))
	handler.NewTitleHandler(service.NewTitleService(titleRepo, categoryRepo, genreRepo)).RegisterRoutes(v1.Group("/titles"))
	handler.NewReviewHandler(service.NewReviewService(reviewRepo, titleRepo)).RegisterRoutes(v1.Group("/titles/:title_id/reviews"))
	handler.NewCommentHandler(service.NewCommentService(commentRepo, reviewRepo)).RegisterRoutes(v1.Group("/titles/:title_id/reviews/:review_id/comments"))

	return &testApp{router: r, db: db, auth: authService}
}

// newUser creates a user directly and returns a valid bearer token.
func (a *testApp) newUser(t *testing.T, username, role string) (user *models.User, token string) {
	t.Helper()
	user = &models.User{
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
	}
	require.NoError(t, a.db.Create(user).Error)

	code := service.ConfirmationCode(testSecret, user)
	token, err := a.auth.IssueToken(context.Background(), username, code)
	require.NoError(t, err)

	// Reload: the token exchange updated last_login.
	require.NoError(t, a.db.First(user, "id = ?", user.ID).Error)
	return user, token
}

func (a *testApp) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func TestTitlesPermissionMatrix(t *testing.T) {
	app := newTestApp(t)
	_, userToken := app.newUser(t, "alice", models.RoleUser)
	_, adminToken := app.newUser(t, "root", models.RoleAdmin)

	payload := gin.H{"name": "Amadeus", "year": 1984}

	// Anyone can list.
	assert.Equal(t, http.StatusOK, app.request(t, http.MethodGet, "/api/v1/titles", "", nil).Code)

	// Writes are admin-only: 401 for anonymous, 403 for plain users.
	assert.Equal(t, http.StatusUnauthorized, app.request(t, http.MethodPost, "/api/v1/titles", "", payload).Code)
	assert.Equal(t, http.StatusForbidden, app.request(t, http.MethodPost, "/api/v1/titles", userToken, payload).Code)
	assert.Equal(t, http.StatusCreated, app.request(t, http.MethodPost, "/api/v1/titles", adminToken, payload).Code)
}

func TestNoPutRoutes(t *testing.T) {
	app := newTestApp(t)
	_, adminToken := app.newUser(t, "root", models.RoleAdmin)

	w := app.request(t, http.MethodPost, "/api/v1/titles", adminToken, gin.H{"name": "Amadeus", "year": 1984})
	require.Equal(t, http.StatusCreated, w.Code)

	assert.Equal(t, http.StatusNotFound,
		app.request(t, http.MethodPut, "/api/v1/titles/1", adminToken, gin.H{"name": "X", "year": 2000}).Code)
}

func TestInvalidBearerToken(t *testing.T) {
	app := newTestApp(t)

	// A presented but invalid token is rejected even on open routes.
	assert.Equal(t, http.StatusUnauthorized,
		app.request(t, http.MethodGet, "/api/v1/titles", "garbage", nil).Code)
}

func TestAuthFlow(t *testing.T) {
	app := newTestApp(t)

	w := app.request(t, http.MethodPost, "/auth/signup", "", gin.H{
		"username": "alice", "email": "alice@example.com",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// Signup again with the same pair still answers 200.
	w = app.request(t, http.MethodPost, "/auth/signup", "", gin.H{
		"username": "alice", "email": "alice@example.com",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var user models.User
	require.NoError(t, app.db.First(&user, "username = ?", "alice").Error)
	code := service.ConfirmationCode(testSecret, &user)

	w = app.request(t, http.MethodPost, "/auth/token", "", gin.H{
		"username": "alice", "confirmation_code": code,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	w = app.request(t, http.MethodGet, "/api/v1/users/me", resp.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"alice"`)
}

func TestTokenWrongCode(t *testing.T) {
	app := newTestApp(t)
	app.newUser(t, "alice", models.RoleUser)

	w := app.request(t, http.MethodPost, "/auth/token", "", gin.H{
		"username": "alice", "confirmation_code": "wrong",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "confirmation_code")
}

func TestTokenUnknownUser(t *testing.T) {
	app := newTestApp(t)

	w := app.request(t, http.MethodPost, "/auth/token", "", gin.H{
		"username": "nobody", "confirmation_code": "whatever",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReviewEndpoints(t *testing.T) {
	app := newTestApp(t)
	_, userToken := app.newUser(t, "alice", models.RoleUser)
	_, otherToken := app.newUser(t, "bob", models.RoleUser)
	_, adminToken := app.newUser(t, "root", models.RoleAdmin)

	w := app.request(t, http.MethodPost, "/api/v1/titles", adminToken, gin.H{"name": "Amadeus", "year": 1984})
	require.Equal(t, http.StatusCreated, w.Code)
	var title struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &title))

	base := fmt.Sprintf("/api/v1/titles/%d/reviews", title.ID)

	// Creating needs authentication.
	assert.Equal(t, http.StatusUnauthorized,
		app.request(t, http.MethodPost, base, "", gin.H{"text": "great", "score": 8}).Code)

	w = app.request(t, http.MethodPost, base, userToken, gin.H{"text": "great", "score": 8})
	require.Equal(t, http.StatusCreated, w.Code)
	var review struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &review))

	// Second review by the same author is rejected.
	assert.Equal(t, http.StatusBadRequest,
		app.request(t, http.MethodPost, base, userToken, gin.H{"text": "again", "score": 9}).Code)

	// Anyone can read.
	assert.Equal(t, http.StatusOK, app.request(t, http.MethodGet, base, "", nil).Code)
	itemPath := fmt.Sprintf("%s/%d", base, review.ID)
	assert.Equal(t, http.StatusOK, app.request(t, http.MethodGet, itemPath, "", nil).Code)

	// Only the author (or staff) can modify.
	assert.Equal(t, http.StatusForbidden,
		app.request(t, http.MethodPatch, itemPath, otherToken, gin.H{"text": "no"}).Code)
	assert.Equal(t, http.StatusOK,
		app.request(t, http.MethodPatch, itemPath, userToken, gin.H{"text": "edited"}).Code)
	assert.Equal(t, http.StatusNoContent,
		app.request(t, http.MethodDelete, itemPath, adminToken, nil).Code)
}

func TestReviewUnknownTitle404(t *testing.T) {
	app := newTestApp(t)
	_, userToken := app.newUser(t, "alice", models.RoleUser)

	assert.Equal(t, http.StatusNotFound,
		app.request(t, http.MethodPost, "/api/v1/titles/9999/reviews", userToken, gin.H{"text": "x", "score": 5}).Code)
	assert.Equal(t, http.StatusNotFound,
		app.request(t, http.MethodGet, "/api/v1/titles/9999/reviews", "", nil).Code)
	assert.Equal(t, http.StatusNotFound,
		app.request(t, http.MethodGet, "/api/v1/titles/abc/reviews", "", nil).Code)
}

func TestCategoryRoutes(t *testing.T) {
	app := newTestApp(t)
	_, adminToken := app.newUser(t, "root", models.RoleAdmin)

	w := app.request(t, http.MethodPost, "/api/v1/categories", adminToken, gin.H{"name": "Movies", "slug": "movies"})
	require.Equal(t, http.StatusCreated, w.Code)

	assert.Equal(t, http.StatusOK, app.request(t, http.MethodGet, "/api/v1/categories", "", nil).Code)

	// Categories have no per-item retrieve or update.
	assert.Equal(t, http.StatusNotFound, app.request(t, http.MethodGet, "/api/v1/categories/movies", "", nil).Code)
	assert.Equal(t, http.StatusNotFound,
		app.request(t, http.MethodPatch, "/api/v1/categories/movies", adminToken, gin.H{"name": "X"}).Code)

	assert.Equal(t, http.StatusNoContent,
		app.request(t, http.MethodDelete, "/api/v1/categories/movies", adminToken, nil).Code)
	assert.Equal(t, http.StatusNotFound,
		app.request(t, http.MethodDelete, "/api/v1/categories/movies", adminToken, nil).Code)
}

func TestUsersAdminOnly(t *testing.T) {
	app := newTestApp(t)
	_, userToken := app.newUser(t, "alice", models.RoleUser)
	_, adminToken := app.newUser(t, "root", models.RoleAdmin)

	assert.Equal(t, http.StatusUnauthorized, app.request(t, http.MethodGet, "/api/v1/users", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, app.request(t, http.MethodGet, "/api/v1/users", userToken, nil).Code)
	assert.Equal(t, http.StatusOK, app.request(t, http.MethodGet, "/api/v1/users", adminToken, nil).Code)

	w := app.request(t, http.MethodPost, "/api/v1/users", adminToken, gin.H{
		"username": "maud", "email": "maud@example.com", "role": "moderator",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	assert.Equal(t, http.StatusOK, app.request(t, http.MethodGet, "/api/v1/users/maud", adminToken, nil).Code)
	assert.Equal(t, http.StatusNoContent, app.request(t, http.MethodDelete, "/api/v1/users/maud", adminToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, app.request(t, http.MethodGet, "/api/v1/users/maud", adminToken, nil).Code)
}

func TestMePatchKeepsRole(t *testing.T) {
	app := newTestApp(t)
	_, userToken := app.newUser(t, "alice", models.RoleUser)

	w := app.request(t, http.MethodPatch, "/api/v1/users/me", userToken, gin.H{
		"role": "admin", "bio": "hello",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"user"`)
	assert.Contains(t, w.Body.String(), `"bio":"hello"`)
}
