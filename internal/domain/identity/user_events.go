package identity

import (
	"github.com/wikiboard/backend/internal/domain/shared"
)

// Aggregate type constant for User
const AggregateTypeUser = "User"

// User domain event types
const (
	EventTypeUserRegistered    = "UserRegistered"
	EventTypeUserRoleChanged   = "UserRoleChanged"
	EventTypeUserStatusChanged = "UserStatusChanged"
	EventTypeUserLevelChanged  = "UserLevelChanged"
)

// UserRegisteredEvent is published when an account is created
type UserRegisteredEvent struct {
	shared.BaseDomainEvent
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Role  UserRole `json:"role"`
}

// NewUserRegisteredEvent creates a new UserRegisteredEvent
func NewUserRegisteredEvent(user *User) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserRegistered, AggregateTypeUser, user.ID),
		Email:           user.Email,
		Name:            user.Name,
		Role:            user.Role,
	}
}

// UserRoleChangedEvent is published when a user's role changes
type UserRoleChangedEvent struct {
	shared.BaseDomainEvent
	Email   string   `json:"email"`
	OldRole UserRole `json:"old_role"`
	NewRole UserRole `json:"new_role"`
}

// NewUserRoleChangedEvent creates a new UserRoleChangedEvent
func NewUserRoleChangedEvent(user *User, oldRole, newRole UserRole) *UserRoleChangedEvent {
	return &UserRoleChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserRoleChanged, AggregateTypeUser, user.ID),
		Email:           user.Email,
		OldRole:         oldRole,
		NewRole:         newRole,
	}
}

// UserStatusChangedEvent is published when a user's status changes
type UserStatusChangedEvent struct {
	shared.BaseDomainEvent
	Email     string     `json:"email"`
	OldStatus UserStatus `json:"old_status"`
	NewStatus UserStatus `json:"new_status"`
}

// NewUserStatusChangedEvent creates a new UserStatusChangedEvent
func NewUserStatusChangedEvent(user *User, oldStatus, newStatus UserStatus) *UserStatusChangedEvent {
	return &UserStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserStatusChanged, AggregateTypeUser, user.ID),
		Email:           user.Email,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}

// UserLevelChangedEvent is published when a ledger adjustment moves a user
// across a level boundary
type UserLevelChangedEvent struct {
	shared.BaseDomainEvent
	Email    string `json:"email"`
	OldLevel int    `json:"old_level"`
	NewLevel int    `json:"new_level"`
	XP       int64  `json:"xp"`
}

// NewUserLevelChangedEvent creates a new UserLevelChangedEvent
func NewUserLevelChangedEvent(user *User, oldLevel, newLevel int) *UserLevelChangedEvent {
	return &UserLevelChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserLevelChanged, AggregateTypeUser, user.ID),
		Email:           user.Email,
		OldLevel:        oldLevel,
		NewLevel:        newLevel,
		XP:              user.XP,
	}
}
