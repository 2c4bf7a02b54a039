package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wikiboard/backend/internal/domain/identity"
	"github.com/wikiboard/backend/internal/domain/shared"
	"github.com/wikiboard/backend/internal/infrastructure/auth"
	"github.com/wikiboard/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter identity.UserFilter) ([]*identity.User, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*identity.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func testJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-32-characters-long",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "wikiboard-test",
		MaxRefreshCount:        10,
	})
}

func newTestAuthService(userRepo *MockUserRepository) (*AuthService, *auth.InMemoryTokenBlacklist) {
	blacklist := auth.NewInMemoryTokenBlacklist()
	svc := NewAuthService(userRepo, testJWTService(), blacklist, zap.NewNop())
	return svc, blacklist
}

func mustNewUser(t *testing.T, email, name, password string) *identity.User {
	t.Helper()
	user, err := identity.NewUser(email, name, password)
	require.NoError(t, err)
	user.ClearDomainEvents()
	return user
}

func TestAuthService_Register(t *testing.T) {
	t.Run("creates a member account and returns tokens", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc, _ := newTestAuthService(userRepo)

		userRepo.On("ExistsByEmail", mock.Anything, "new@example.com").Return(false, nil)
		userRepo.On("Create", mock.Anything, mock.AnythingOfType("*identity.User")).Return(nil)

		result, err := svc.Register(context.Background(), RegisterInput{
			Email:    "new@example.com",
			Name:     "New Reader",
			Password: "secret123",
		})

		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
		assert.Equal(t, "new@example.com", result.User.Email)
		assert.Equal(t, "member", result.User.Role)
		assert.Equal(t, int64(0), result.User.XP)
		assert.Equal(t, 1, result.User.Level)
		userRepo.AssertExpectations(t)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc, _ := newTestAuthService(userRepo)

		userRepo.On("ExistsByEmail", mock.Anything, "taken@example.com").Return(true, nil)

		_, err := svc.Register(context.Background(), RegisterInput{
			Email:    "taken@example.com",
			Name:     "Reader",
			Password: "secret123",
		})

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "EMAIL_EXISTS", domainErr.Code)
		userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects a weak password", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc, _ := newTestAuthService(userRepo)

		userRepo.On("ExistsByEmail", mock.Anything, mock.Anything).Return(false, nil)

		_, err := svc.Register(context.Background(), RegisterInput{
			Email:    "new@example.com",
			Name:     "Reader",
			Password: "onlyletters",
		})

		require.Error(t, err)
		userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestAuthService_Login(t *testing.T) {
	t.Run("returns tokens with the profile snapshot", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc, _ := newTestAuthService(userRepo)

		user := mustNewUser(t, "reader@example.com", "Reader", "secret123")
		user.XP = 650
		user.Level = 4

		userRepo.On("FindByEmail", mock.Anything, "reader@example.com").Return(user, nil)
		userRepo.On("Update", mock.Anything, user).Return(nil)

		result, err := svc.Login(context.Background(), LoginInput{
			Email:    "reader@example.com",
			Password: "secret123",
		})

		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
		assert.NotEmpty(t, result.RefreshToken)
		assert.Equal(t, int64(650), result.User.XP)
		assert.Equal(t, 4, result.User.Level)
		assert.NotNil(t, user.LastLoginAt)

		claims, err := testJWTService().ValidateAccessToken(result.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "member", claims.Role)
		assert.Equal(t, 4, claims.Level)
		assert.Equal(t, int64(650), claims.XP)
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc, _ := newTestAuthService(userRepo)

		user := mustNewUser(t, "reader@example.com", "Reader", "secret123")
		userRepo.On("FindByEmail", mock.Anything, "missing@example.com").Return(nil, shared.ErrNotFound)
		userRepo.On("FindByEmail", mock.Anything, "reader@example.com").Return(user, nil)

		_, errMissing := svc.Login(context.Background(), LoginInput{Email: "missing@example.com", Password: "secret123"})
		_, errWrongPw := svc.Login(context.Background(), LoginInput{Email: "reader@example.com", Password: "wrong1234"})

		var missingErr, wrongPwErr *shared.DomainError
		require.ErrorAs(t, errMissing, &missingErr)
		require.ErrorAs(t, errWrongPw, &wrongPwErr)
		assert.Equal(t, missingErr.Code, wrongPwErr.Code)
		assert.Equal(t, missingErr.Message, wrongPwErr.Message)
	})

	t.Run("suspended accounts cannot log in", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc, _ := newTestAuthService(userRepo)

		user := mustNewUser(t, "banned@example.com", "Banned", "secret123")
		require.NoError(t, user.ChangeStatus(identity.UserStatusSuspended))

		userRepo.On("FindByEmail", mock.Anything, "banned@example.com").Return(user, nil)

		_, err := svc.Login(context.Background(), LoginInput{
			Email:    "banned@example.com",
			Password: "secret123",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ACCOUNT_SUSPENDED", domainErr.Code)
	})
}

func TestAuthService_RefreshToken(t *testing.T) {
	t.Run("new access token reflects the current profile", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc, _ := newTestAuthService(userRepo)

		user := mustNewUser(t, "reader@example.com", "Reader", "secret123")
		userRepo.On("FindByEmail", mock.Anything, "reader@example.com").Return(user, nil)
		userRepo.On("Update", mock.Anything, user).Return(nil)
		userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

		login, err := svc.Login(context.Background(), LoginInput{Email: "reader@example.com", Password: "secret123"})
		require.NoError(t, err)

		// The profile moved since login
		user.XP = 1200
		user.Level = 5

		refreshed, err := svc.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: login.RefreshToken})
		require.NoError(t, err)

		claims, err := testJWTService().ValidateAccessToken(refreshed.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, 5, claims.Level)
		assert.Equal(t, int64(1200), claims.XP)
	})

	t.Run("rejects a suspended user's refresh token", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc, _ := newTestAuthService(userRepo)

		user := mustNewUser(t, "reader@example.com", "Reader", "secret123")
		userRepo.On("FindByEmail", mock.Anything, "reader@example.com").Return(user, nil)
		userRepo.On("Update", mock.Anything, user).Return(nil)
		userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

		login, err := svc.Login(context.Background(), LoginInput{Email: "reader@example.com", Password: "secret123"})
		require.NoError(t, err)

		require.NoError(t, user.ChangeStatus(identity.UserStatusSuspended))

		_, err = svc.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: login.RefreshToken})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ACCOUNT_SUSPENDED", domainErr.Code)
	})

	t.Run("rejects garbage tokens", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc, _ := newTestAuthService(userRepo)

		_, err := svc.RefreshToken(context.Background(), RefreshTokenInput{RefreshToken: "not-a-token"})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "TOKEN_INVALID", domainErr.Code)
	})
}

func TestAuthService_Logout(t *testing.T) {
	t.Run("blacklists the token JTI for its remaining lifetime", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc, blacklist := newTestAuthService(userRepo)

		err := svc.Logout(context.Background(), LogoutInput{
			UserID:   uuid.New(),
			TokenJTI: "jti-abc",
			TokenTTL: 10 * time.Minute,
		})
		require.NoError(t, err)

		blacklisted, err := blacklist.IsBlacklisted(context.Background(), "jti-abc")
		require.NoError(t, err)
		assert.True(t, blacklisted)
	})

	t.Run("expired tokens are not blacklisted", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc, blacklist := newTestAuthService(userRepo)

		err := svc.Logout(context.Background(), LogoutInput{
			UserID:   uuid.New(),
			TokenJTI: "jti-old",
			TokenTTL: 0,
		})
		require.NoError(t, err)

		blacklisted, err := blacklist.IsBlacklisted(context.Background(), "jti-old")
		require.NoError(t, err)
		assert.False(t, blacklisted)
	})
}

func TestAuthService_ChangePassword(t *testing.T) {
	t.Run("changes the password and invalidates sessions", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc, blacklist := newTestAuthService(userRepo)

		user := mustNewUser(t, "reader@example.com", "Reader", "secret123")
		issuedAt := time.Now().Add(-time.Minute)

		userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		userRepo.On("Update", mock.Anything, user).Return(nil)

		err := svc.ChangePassword(context.Background(), ChangePasswordInput{
			UserID:      user.ID,
			OldPassword: "secret123",
			NewPassword: "newsecret456",
		})
		require.NoError(t, err)
		assert.True(t, user.VerifyPassword("newsecret456"))

		invalidated, err := blacklist.IsUserTokenInvalidated(context.Background(), user.ID.String(), issuedAt)
		require.NoError(t, err)
		assert.True(t, invalidated)
	})

	t.Run("rejects a wrong old password", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc, _ := newTestAuthService(userRepo)

		user := mustNewUser(t, "reader@example.com", "Reader", "secret123")
		userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

		err := svc.ChangePassword(context.Background(), ChangePasswordInput{
			UserID:      user.ID,
			OldPassword: "wrong1234",
			NewPassword: "newsecret456",
		})

		require.Error(t, err)
		userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}
