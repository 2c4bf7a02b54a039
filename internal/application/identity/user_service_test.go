package identity

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wikiboard/backend/internal/domain/identity"
	"github.com/wikiboard/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// MockObjectStorage is a mock implementation of ObjectStorageService
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, contentType, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorage) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorage) DeleteObject(ctx context.Context, storageKey string) error {
	args := m.Called(ctx, storageKey)
	return args.Error(0)
}

func (m *MockObjectStorage) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	args := m.Called(ctx, storageKey)
	return args.Bool(0), args.Error(1)
}

func newTestUserService(userRepo *MockUserRepository, storage *MockObjectStorage) *UserService {
	var objectStorage ObjectStorageService
	if storage != nil {
		objectStorage = storage
	}
	return NewUserService(userRepo, objectStorage, zap.NewNop())
}

func TestUserService_List(t *testing.T) {
	t.Run("passes filters through and computes pages", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := newTestUserService(userRepo, nil)

		user := mustNewUser(t, "reader@example.com", "Reader", "secret123")

		expectedFilter := identity.NewUserFilter().
			WithKeyword("read").
			WithRole(identity.UserRoleMember)
		userRepo.On("FindAll", mock.Anything, expectedFilter).
			Return([]*identity.User{user}, int64(41), nil)

		result, err := svc.List(context.Background(), ListUsersInput{
			Search: "read",
			Role:   "member",
		})

		require.NoError(t, err)
		assert.Equal(t, int64(41), result.Total)
		assert.Equal(t, 1, result.Page)
		assert.Equal(t, 20, result.PageSize)
		assert.Equal(t, 3, result.TotalPages)
		require.Len(t, result.Users, 1)
		assert.Equal(t, "reader@example.com", result.Users[0].Email)
	})

	t.Run("rejects a one-character search term", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := newTestUserService(userRepo, nil)

		_, err := svc.List(context.Background(), ListUsersInput{Search: "a"})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_INPUT", domainErr.Code)
		userRepo.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything)
	})

	t.Run("rejects an overlong search term", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := newTestUserService(userRepo, nil)

		_, err := svc.List(context.Background(), ListUsersInput{Search: strings.Repeat("x", 101)})

		require.Error(t, err)
		userRepo.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything)
	})

	t.Run("rejects unknown role and status filters", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := newTestUserService(userRepo, nil)

		_, err := svc.List(context.Background(), ListUsersInput{Role: "superuser"})
		require.Error(t, err)

		_, err = svc.List(context.Background(), ListUsersInput{Status: "banned"})
		require.Error(t, err)
	})
}

func TestUserService_Update(t *testing.T) {
	t.Run("changes role and status", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := newTestUserService(userRepo, nil)

		user := mustNewUser(t, "reader@example.com", "Reader", "secret123")
		userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		userRepo.On("Update", mock.Anything, user).Return(nil)

		role := "admin"
		status := "suspended"
		result, err := svc.Update(context.Background(), UpdateUserInput{
			ActorID:  uuid.New(),
			TargetID: user.ID,
			Role:     &role,
			Status:   &status,
		})

		require.NoError(t, err)
		assert.Equal(t, "admin", result.Role)
		assert.Equal(t, "suspended", result.Status)
	})

	t.Run("rejects an empty update", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := newTestUserService(userRepo, nil)

		_, err := svc.Update(context.Background(), UpdateUserInput{
			ActorID:  uuid.New(),
			TargetID: uuid.New(),
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_INPUT", domainErr.Code)
	})

	t.Run("admins cannot change their own role", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := newTestUserService(userRepo, nil)

		adminID := uuid.New()
		role := "member"
		_, err := svc.Update(context.Background(), UpdateUserInput{
			ActorID:  adminID,
			TargetID: adminID,
			Role:     &role,
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "SELF_ROLE_CHANGE", domainErr.Code)
		userRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("admins can suspend themselves", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := newTestUserService(userRepo, nil)

		user := mustNewUser(t, "admin@example.com", "Admin", "secret123")
		require.NoError(t, user.ChangeRole(identity.UserRoleAdmin))
		user.ClearDomainEvents()

		userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		userRepo.On("Update", mock.Anything, user).Return(nil)

		status := "suspended"
		result, err := svc.Update(context.Background(), UpdateUserInput{
			ActorID:  user.ID,
			TargetID: user.ID,
			Status:   &status,
		})

		require.NoError(t, err)
		assert.Equal(t, "suspended", result.Status)
	})

	t.Run("rejects an invalid role value", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := newTestUserService(userRepo, nil)

		user := mustNewUser(t, "reader@example.com", "Reader", "secret123")
		userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

		role := "superuser"
		_, err := svc.Update(context.Background(), UpdateUserInput{
			ActorID:  uuid.New(),
			TargetID: user.ID,
			Role:     &role,
		})

		require.Error(t, err)
		userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("propagates ErrNotFound for unknown users", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := newTestUserService(userRepo, nil)

		targetID := uuid.New()
		userRepo.On("FindByID", mock.Anything, targetID).Return(nil, shared.ErrNotFound)

		status := "active"
		_, err := svc.Update(context.Background(), UpdateUserInput{
			ActorID:  uuid.New(),
			TargetID: targetID,
			Status:   &status,
		})

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestUserService_RequestAvatarUpload(t *testing.T) {
	t.Run("returns a presigned URL with a user-scoped key", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		storage := new(MockObjectStorage)
		svc := newTestUserService(userRepo, storage)

		user := mustNewUser(t, "reader@example.com", "Reader", "secret123")
		expiresAt := time.Now().Add(AvatarURLExpiry)

		userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		storage.On("GenerateUploadURL", mock.Anything, mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, "avatars/"+user.ID.String()+"/") && strings.HasSuffix(key, ".png")
		}), "image/png", AvatarURLExpiry).Return("https://storage.example.com/upload", expiresAt, nil)

		result, err := svc.RequestAvatarUpload(context.Background(), AvatarUploadInput{
			UserID:      user.ID,
			ContentType: "image/png",
		})

		require.NoError(t, err)
		assert.Equal(t, "https://storage.example.com/upload", result.UploadURL)
		assert.Contains(t, result.Key, "avatars/"+user.ID.String()+"/")
	})

	t.Run("rejects unsupported content types", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		storage := new(MockObjectStorage)
		svc := newTestUserService(userRepo, storage)

		_, err := svc.RequestAvatarUpload(context.Background(), AvatarUploadInput{
			UserID:      uuid.New(),
			ContentType: "application/pdf",
		})

		require.Error(t, err)
		storage.AssertNotCalled(t, "GenerateUploadURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("fails when storage is not configured", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := newTestUserService(userRepo, nil)

		_, err := svc.RequestAvatarUpload(context.Background(), AvatarUploadInput{
			UserID:      uuid.New(),
			ContentType: "image/png",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "STORAGE_UNAVAILABLE", domainErr.Code)
	})
}

func TestUserService_ConfirmAvatarUpload(t *testing.T) {
	t.Run("records the key and deletes the previous avatar", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		storage := new(MockObjectStorage)
		svc := newTestUserService(userRepo, storage)

		user := mustNewUser(t, "reader@example.com", "Reader", "secret123")
		previousKey := "avatars/" + user.ID.String() + "/old.png"
		require.NoError(t, user.SetImage(previousKey))
		newKey := "avatars/" + user.ID.String() + "/new.png"

		userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		userRepo.On("Update", mock.Anything, user).Return(nil)
		storage.On("ObjectExists", mock.Anything, newKey).Return(true, nil)
		storage.On("DeleteObject", mock.Anything, previousKey).Return(nil)

		result, err := svc.ConfirmAvatarUpload(context.Background(), ConfirmAvatarInput{
			UserID: user.ID,
			Key:    newKey,
		})

		require.NoError(t, err)
		assert.Equal(t, newKey, result.Image)
		storage.AssertExpectations(t)
	})

	t.Run("rejects keys belonging to other users", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		storage := new(MockObjectStorage)
		svc := newTestUserService(userRepo, storage)

		_, err := svc.ConfirmAvatarUpload(context.Background(), ConfirmAvatarInput{
			UserID: uuid.New(),
			Key:    "avatars/" + uuid.New().String() + "/sneaky.png",
		})

		require.Error(t, err)
		userRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("rejects keys that were never uploaded", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		storage := new(MockObjectStorage)
		svc := newTestUserService(userRepo, storage)

		user := mustNewUser(t, "reader@example.com", "Reader", "secret123")
		key := "avatars/" + user.ID.String() + "/ghost.png"

		userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		storage.On("ObjectExists", mock.Anything, key).Return(false, nil)

		_, err := svc.ConfirmAvatarUpload(context.Background(), ConfirmAvatarInput{
			UserID: user.ID,
			Key:    key,
		})

		require.Error(t, err)
		userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestUserService_GetAvatarURL(t *testing.T) {
	t.Run("returns empty for users without an avatar", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		storage := new(MockObjectStorage)
		svc := newTestUserService(userRepo, storage)

		user := mustNewUser(t, "reader@example.com", "Reader", "secret123")
		userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

		url, err := svc.GetAvatarURL(context.Background(), user.ID)

		require.NoError(t, err)
		assert.Empty(t, url)
	})

	t.Run("presigns the stored key", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		storage := new(MockObjectStorage)
		svc := newTestUserService(userRepo, storage)

		user := mustNewUser(t, "reader@example.com", "Reader", "secret123")
		key := "avatars/" + user.ID.String() + "/current.png"
		require.NoError(t, user.SetImage(key))

		userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		storage.On("GenerateDownloadURL", mock.Anything, key, AvatarURLExpiry).
			Return("https://storage.example.com/current.png", time.Now().Add(AvatarURLExpiry), nil)

		url, err := svc.GetAvatarURL(context.Background(), user.ID)

		require.NoError(t, err)
		assert.Equal(t, "https://storage.example.com/current.png", url)
	})
}
