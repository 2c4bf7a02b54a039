package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/wikiboard/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// UserRole represents the role of a user
type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleMember UserRole = "member"
)

// IsValid reports whether the role is a known value
func (r UserRole) IsValid() bool {
	return r == UserRoleAdmin || r == UserRoleMember
}

// UserStatus represents the status of a user
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

// IsValid reports whether the status is a known value
func (s UserStatus) IsValid() bool {
	return s == UserStatusActive || s == UserStatusSuspended
}

// AuthMode indicates how the account authenticates
type AuthMode string

const (
	AuthModeLocal AuthMode = "local"
	AuthModeOAuth AuthMode = "oauth"
)

// Password cost for bcrypt
const bcryptCost = 12

// User represents a wiki member account.
// It is the aggregate root for identity operations. XP and Level belong to
// the user row but are only ever mutated through the XP ledger, which keeps
// Level == LevelOf(XP) for the configured threshold table.
type User struct {
	shared.BaseAggregateRoot
	Email        string
	Name         string
	PasswordHash string
	Image        string // object storage key of the avatar, empty when unset
	Role         UserRole
	Status       UserStatus
	AuthMode     AuthMode
	XP           int64
	Level        int
	LastLoginAt  *time.Time
}

// NewUser creates a new member account with a freshly hashed password.
func NewUser(email, name, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		Name:              name,
		PasswordHash:      passwordHash,
		Role:              UserRoleMember,
		Status:            UserStatusActive,
		AuthMode:          AuthModeLocal,
		XP:                0,
		Level:             1,
	}

	user.AddDomainEvent(NewUserRegisteredEvent(user))

	return user, nil
}

// SetName updates the user's display name
func (u *User) SetName(name string) error {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return err
	}

	u.Name = name
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// SetImage stores the avatar object key
func (u *User) SetImage(key string) error {
	if len(key) > 500 {
		return shared.NewDomainError("INVALID_IMAGE", "Image key cannot exceed 500 characters")
	}

	u.Image = key
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// ChangeRole changes the user's role
func (u *User) ChangeRole(role UserRole) error {
	if !role.IsValid() {
		return shared.NewDomainError("INVALID_ROLE", "Role must be admin or member")
	}
	if u.Role == role {
		return nil
	}

	oldRole := u.Role
	u.Role = role
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	u.AddDomainEvent(NewUserRoleChangedEvent(u, oldRole, role))

	return nil
}

// ChangeStatus changes the user's status
func (u *User) ChangeStatus(status UserStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Status must be active or suspended")
	}
	if u.Status == status {
		return nil
	}

	oldStatus := u.Status
	u.Status = status
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	u.AddDomainEvent(NewUserStatusChangedEvent(u, oldStatus, status))

	return nil
}

// ApplyXPAdjustment records the outcome of a ledger adjustment on the
// aggregate. The caller computes newXP/newLevel against the threshold
// table; this method never derives them itself.
func (u *User) ApplyXPAdjustment(newXP int64, newLevel int) error {
	if newXP < 0 {
		return shared.NewDomainError("INVALID_XP", "XP cannot be negative")
	}
	if newLevel < 1 {
		return shared.NewDomainError("INVALID_LEVEL", "Level must be at least 1")
	}

	oldLevel := u.Level
	u.XP = newXP
	u.Level = newLevel
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	if newLevel != oldLevel {
		u.AddDomainEvent(NewUserLevelChangedEvent(u, oldLevel, newLevel))
	}

	return nil
}

// ChangePassword changes the user's password after verifying the current one
func (u *User) ChangePassword(oldPassword, newPassword string) error {
	if !u.VerifyPassword(oldPassword) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}

	return u.SetPassword(newPassword)
}

// SetPassword sets a new password (admin reset, no old password check)
func (u *User) SetPassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := hashPassword(newPassword)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// RecordLoginSuccess records a successful login
func (u *User) RecordLoginSuccess() {
	now := time.Now()
	u.LastLoginAt = &now
	u.UpdatedAt = now
	u.IncrementVersion()
}

// IsAdmin returns true if the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// IsActive returns true if user is active
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// IsSuspended returns true if user is suspended
func (u *User) IsSuspended() bool {
	return u.Status == UserStatusSuspended
}

// CanLogin returns true if user can login
func (u *User) CanLogin() bool {
	return u.Status == UserStatusActive
}

// Validation functions

func validateName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Name cannot exceed 100 characters")
	}

	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot be empty")
	}
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 128 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 128 characters")
	}

	// Check for at least one letter and one number
	hasLetter := regexp.MustCompile(`[a-zA-Z]`).MatchString(password)
	hasNumber := regexp.MustCompile(`[0-9]`).MatchString(password)
	if !hasLetter || !hasNumber {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}

	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}

	// Basic email validation
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}

	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
