package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wikiboard/backend/internal/domain/identity"
	"github.com/wikiboard/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	minSearchLength = 2
	maxSearchLength = 100

	// AvatarURLExpiry is how long presigned avatar URLs stay valid
	AvatarURLExpiry = 15 * time.Minute
)

// allowedAvatarContentTypes lists the content types accepted for avatar uploads
var allowedAvatarContentTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

// UserService handles user management operations
type UserService struct {
	userRepo       identity.UserRepository
	storage        ObjectStorageService
	logger         *zap.Logger
	eventPublisher shared.EventPublisher
}

// NewUserService creates a new user service
func NewUserService(
	userRepo identity.UserRepository,
	storage ObjectStorageService,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo: userRepo,
		storage:  storage,
		logger:   logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *UserService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// List returns a page of users for the admin user listing.
// A search keyword, when present, must be between 2 and 100 characters.
func (s *UserService) List(ctx context.Context, input ListUsersInput) (*UserListResult, error) {
	search := strings.TrimSpace(input.Search)
	if search != "" {
		if len(search) < minSearchLength {
			return nil, shared.NewDomainError("INVALID_INPUT", "search term must be at least 2 characters")
		}
		if len(search) > maxSearchLength {
			return nil, shared.NewDomainError("INVALID_INPUT", "search term must be at most 100 characters")
		}
	}

	filter := identity.NewUserFilter().WithKeyword(search)

	if input.Role != "" {
		role := identity.UserRole(input.Role)
		if !role.IsValid() {
			return nil, shared.NewDomainError("INVALID_INPUT", "invalid role filter")
		}
		filter = filter.WithRole(role)
	}
	if input.Status != "" {
		status := identity.UserStatus(input.Status)
		if !status.IsValid() {
			return nil, shared.NewDomainError("INVALID_INPUT", "invalid status filter")
		}
		filter = filter.WithStatus(status)
	}
	if input.Page > 0 {
		filter.Page = input.Page
	}
	if input.PageSize > 0 {
		filter.PageSize = input.PageSize
	}
	if input.SortBy != "" {
		filter.SortBy = input.SortBy
	}
	if input.SortDir != "" {
		filter.SortOrder = input.SortDir
	}

	users, total, err := s.userRepo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list users", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list users")
	}

	infos := make([]UserInfo, len(users))
	for i, user := range users {
		infos[i] = ToUserInfo(user)
	}

	pageSize := filter.Limit()
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	return &UserListResult{
		Users:      infos,
		Total:      total,
		Page:       filter.Page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// Get returns a single user's profile
func (s *UserService) Get(ctx context.Context, userID uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	info := ToUserInfo(user)
	return &info, nil
}

// Update applies admin changes to a user's role and/or status.
// An admin cannot change their own role; demoting the last admin by
// accident would lock everyone out of user management entirely.
func (s *UserService) Update(ctx context.Context, input UpdateUserInput) (*UserInfo, error) {
	if input.Role == nil && input.Status == nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "at least one of role or status is required")
	}

	if input.Role != nil && input.ActorID == input.TargetID {
		return nil, shared.NewDomainError("SELF_ROLE_CHANGE", "you cannot change your own role")
	}

	user, err := s.userRepo.FindByID(ctx, input.TargetID)
	if err != nil {
		return nil, err
	}

	if input.Role != nil {
		if err := user.ChangeRole(identity.UserRole(*input.Role)); err != nil {
			return nil, err
		}
	}
	if input.Status != nil {
		if err := user.ChangeStatus(identity.UserStatus(*input.Status)); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to update user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update user")
	}

	s.publishDomainEvents(ctx, user)

	s.logger.Info("User updated by admin",
		zap.String("actor_id", input.ActorID.String()),
		zap.String("user_id", user.ID.String()))

	info := ToUserInfo(user)
	return &info, nil
}

// UpdateProfile applies self-service profile changes
func (s *UserService) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if err := user.SetName(*input.Name); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to update profile", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update profile")
	}

	info := ToUserInfo(user)
	return &info, nil
}

// RequestAvatarUpload generates a presigned upload URL for a new avatar.
// The client uploads directly to object storage and then confirms the key.
func (s *UserService) RequestAvatarUpload(ctx context.Context, input AvatarUploadInput) (*AvatarUploadResult, error) {
	if s.storage == nil {
		return nil, shared.NewDomainError("STORAGE_UNAVAILABLE", "Avatar storage is not configured")
	}

	ext, ok := allowedAvatarContentTypes[input.ContentType]
	if !ok {
		return nil, shared.NewDomainError("INVALID_INPUT", "unsupported avatar content type")
	}

	if _, err := s.userRepo.FindByID(ctx, input.UserID); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("avatars/%s/%s.%s", input.UserID, uuid.New(), ext)

	uploadURL, expiresAt, err := s.storage.GenerateUploadURL(ctx, key, input.ContentType, AvatarURLExpiry)
	if err != nil {
		s.logger.Error("Failed to generate avatar upload URL", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate upload URL")
	}

	return &AvatarUploadResult{
		UploadURL: uploadURL,
		Key:       key,
		ExpiresAt: expiresAt,
	}, nil
}

// ConfirmAvatarUpload records an uploaded avatar key on the user's profile
// after verifying the object actually landed in storage. The previous
// avatar object, if any, is deleted.
func (s *UserService) ConfirmAvatarUpload(ctx context.Context, input ConfirmAvatarInput) (*UserInfo, error) {
	if s.storage == nil {
		return nil, shared.NewDomainError("STORAGE_UNAVAILABLE", "Avatar storage is not configured")
	}

	expectedPrefix := fmt.Sprintf("avatars/%s/", input.UserID)
	if !strings.HasPrefix(input.Key, expectedPrefix) {
		return nil, shared.NewDomainError("INVALID_INPUT", "avatar key does not belong to this user")
	}

	user, err := s.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	exists, err := s.storage.ObjectExists(ctx, input.Key)
	if err != nil {
		s.logger.Error("Failed to check avatar object", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to verify upload")
	}
	if !exists {
		return nil, shared.NewDomainError("INVALID_INPUT", "avatar object was not uploaded")
	}

	previousKey := user.Image
	if err := user.SetImage(input.Key); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to save avatar key", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update avatar")
	}

	if previousKey != "" && previousKey != input.Key {
		if err := s.storage.DeleteObject(ctx, previousKey); err != nil {
			// Orphaned object only; nothing user-visible depends on it
			s.logger.Warn("Failed to delete previous avatar",
				zap.String("key", previousKey),
				zap.Error(err))
		}
	}

	info := ToUserInfo(user)
	return &info, nil
}

// GetAvatarURL returns a presigned download URL for the user's avatar.
// Returns an empty URL when the user has no avatar.
func (s *UserService) GetAvatarURL(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.Image == "" || s.storage == nil {
		return "", nil
	}

	url, _, err := s.storage.GenerateDownloadURL(ctx, user.Image, AvatarURLExpiry)
	if err != nil {
		s.logger.Error("Failed to generate avatar download URL", zap.Error(err))
		return "", shared.NewDomainError("INTERNAL_ERROR", "Failed to generate avatar URL")
	}
	return url, nil
}

// publishDomainEvents publishes the user's pending domain events
func (s *UserService) publishDomainEvents(ctx context.Context, user *identity.User) {
	if s.eventPublisher == nil {
		return
	}
	events := user.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	user.ClearDomainEvents()
}
