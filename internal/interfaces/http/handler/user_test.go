package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	appgam "github.com/wikiboard/backend/internal/application/gamification"
	appidentity "github.com/wikiboard/backend/internal/application/identity"
	domaingam "github.com/wikiboard/backend/internal/domain/gamification"
	"github.com/wikiboard/backend/internal/infrastructure/auth"
	"github.com/wikiboard/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// MockObjectStorage is a testify mock of appidentity.ObjectStorageService
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) GenerateUploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, key, contentType, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorage) GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, key, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorage) DeleteObject(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockObjectStorage) ObjectExists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func newUserRouter(userRepo *MockUserRepository, xpRepo *MockXPEventRepository, storage appidentity.ObjectStorageService, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)

	userService := appidentity.NewUserService(userRepo, storage, zap.NewNop())
	xpService := appgam.NewXPService(
		appgam.NewNoOpTransactionScope(userRepo, xpRepo),
		userRepo,
		xpRepo,
		domaingam.DefaultThresholdTable(),
	)
	h := NewUserHandler(userService, xpService, zap.NewNop())

	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		claims := &auth.Claims{UserID: userID.String(), Role: "member"}
		c.Set(middleware.ContextKeyJWTClaims, claims)
		c.Set(middleware.ContextKeyUserID, claims.UserID)
		c.Next()
	})

	api := engine.Group("/api/v1")
	h.RegisterRoutes(api)
	return engine
}

func TestUserHandler_GetProgress(t *testing.T) {
	userRepo := new(MockUserRepository)
	user := newHandlerTestUser(uuid.New(), 350, 3)
	userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	engine := newUserRouter(userRepo, new(MockXPEventRepository), nil, user.ID)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me/progress", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"xp":350`)
	assert.Contains(t, w.Body.String(), `"xp_to_next":250`)
	assert.Contains(t, w.Body.String(), `"next_level_at":600`)
}

func TestUserHandler_UpdateProfile(t *testing.T) {
	t.Run("renames the user", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		user := newHandlerTestUser(uuid.New(), 0, 1)
		userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		userRepo.On("Update", mock.Anything, user).Return(nil)

		engine := newUserRouter(userRepo, new(MockXPEventRepository), nil, user.ID)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/me", bytes.NewBufferString(`{"name":"Renamed"}`))
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"name":"Renamed"`)
	})

	t.Run("blank name fails binding", func(t *testing.T) {
		engine := newUserRouter(new(MockUserRepository), new(MockXPEventRepository), nil, uuid.New())

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/me", bytes.NewBufferString(`{"name":""}`))
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUserHandler_RequestAvatarUpload(t *testing.T) {
	t.Run("issues a presigned upload URL", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		storage := new(MockObjectStorage)
		user := newHandlerTestUser(uuid.New(), 0, 1)

		userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		storage.On("GenerateUploadURL", mock.Anything, mock.AnythingOfType("string"), "image/png", mock.Anything).
			Return("https://storage.example.com/presigned", time.Now().Add(15*time.Minute), nil)

		engine := newUserRouter(userRepo, new(MockXPEventRepository), storage, user.ID)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/me/avatar", bytes.NewBufferString(`{"content_type":"image/png"}`))
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "presigned")
		assert.Contains(t, w.Body.String(), "avatars/"+user.ID.String()+"/")
	})

	t.Run("unsupported content type gets 400", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		storage := new(MockObjectStorage)
		userID := uuid.New()

		engine := newUserRouter(userRepo, new(MockXPEventRepository), storage, userID)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/me/avatar", bytes.NewBufferString(`{"content_type":"application/pdf"}`))
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("no storage configured gets 503", func(t *testing.T) {
		engine := newUserRouter(new(MockUserRepository), new(MockXPEventRepository), nil, uuid.New())

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/me/avatar", bytes.NewBufferString(`{"content_type":"image/png"}`))
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
