package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/wikiboard/backend/internal/domain/identity"
)

// RegisterInput contains the input for user registration
type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

// LoginInput contains the input for user login
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
	User                  UserInfo
}

// UserInfo contains the user profile returned with authentication results
type UserInfo struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Image       string     `json:"image,omitempty"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	XP          int64      `json:"xp"`
	Level       int        `json:"level"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ToUserInfo converts a domain User to its profile form
func ToUserInfo(user *identity.User) UserInfo {
	return UserInfo{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		Image:       user.Image,
		Role:        string(user.Role),
		Status:      string(user.Status),
		XP:          user.XP,
		Level:       user.Level,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}

// RefreshTokenInput contains the input for token refresh
type RefreshTokenInput struct {
	RefreshToken string
}

// RefreshTokenResult contains the result of a token refresh
type RefreshTokenResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
}

// LogoutInput contains the input for user logout
type LogoutInput struct {
	UserID   uuid.UUID
	TokenJTI string
	TokenTTL time.Duration
}

// ChangePasswordInput contains the input for password change
type ChangePasswordInput struct {
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}

// ListUsersInput contains the input for the admin user listing
type ListUsersInput struct {
	Search   string
	Role     string
	Status   string
	Page     int
	PageSize int
	SortBy   string
	SortDir  string
}

// UserListResult represents a paginated user list result
type UserListResult struct {
	Users      []UserInfo `json:"users"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
}

// UpdateUserInput contains the admin-editable user fields. Nil fields are
// left unchanged.
type UpdateUserInput struct {
	ActorID  uuid.UUID
	TargetID uuid.UUID
	Role     *string
	Status   *string
}

// UpdateProfileInput contains the self-service profile fields
type UpdateProfileInput struct {
	UserID uuid.UUID
	Name   *string
}

// AvatarUploadInput contains the input for requesting an avatar upload URL
type AvatarUploadInput struct {
	UserID      uuid.UUID
	ContentType string
}

// AvatarUploadResult contains a presigned upload URL and the storage key
// the client must confirm after uploading.
type AvatarUploadResult struct {
	UploadURL string    `json:"upload_url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ConfirmAvatarInput contains the input for confirming an avatar upload
type ConfirmAvatarInput struct {
	UserID uuid.UUID
	Key    string
}
