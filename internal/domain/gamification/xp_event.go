package gamification

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wikiboard/backend/internal/domain/shared"
)

const (
	maxActionLength      = 100
	maxDescriptionLength = 500
)

// XPEvent is one row of the append-only XP ledger. Events are immutable:
// there are no update or delete operations on them anywhere in the system.
// The ID is assigned by the database on insert.
type XPEvent struct {
	ID          int64
	UserID      uuid.UUID
	Action      string
	Amount      int64
	Description string
	CreatedAt   time.Time
}

// NewXPEvent creates a ledger entry for a signed XP delta.
// The action labels what earned (or cost) the XP and is free-form.
func NewXPEvent(userID uuid.UUID, action string, amount int64, description string) (*XPEvent, error) {
	action = strings.TrimSpace(action)
	if action == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "action is required")
	}
	if len(action) > maxActionLength {
		return nil, shared.NewDomainError("INVALID_INPUT", "action must be at most 100 characters")
	}
	if amount == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "XP amount must not be zero")
	}
	if len(description) > maxDescriptionLength {
		return nil, shared.NewDomainError("INVALID_INPUT", "description must be at most 500 characters")
	}
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "user ID is required")
	}

	return &XPEvent{
		UserID:      userID,
		Action:      action,
		Amount:      amount,
		Description: description,
		CreatedAt:   time.Now(),
	}, nil
}
