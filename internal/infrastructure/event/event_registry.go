package event

import (
	"github.com/wikiboard/backend/internal/domain/identity"
)

// RegisterAllEvents registers all domain event types with the serializer.
// The audit log handler derives its subscription list from this registry,
// and logged payloads can be decoded back by type name.
func RegisterAllEvents(serializer *EventSerializer) {
	serializer.Register(identity.EventTypeUserRegistered, &identity.UserRegisteredEvent{})
	serializer.Register(identity.EventTypeUserRoleChanged, &identity.UserRoleChangedEvent{})
	serializer.Register(identity.EventTypeUserStatusChanged, &identity.UserStatusChangedEvent{})
	serializer.Register(identity.EventTypeUserLevelChanged, &identity.UserLevelChangedEvent{})
}
