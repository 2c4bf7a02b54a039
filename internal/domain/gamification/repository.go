package gamification

import (
	"context"

	"github.com/google/uuid"
)

// EventFilter narrows ledger queries. Results are always ordered
// newest first.
type EventFilter struct {
	Action   string
	Page     int
	PageSize int
}

// XPEventRepository persists the append-only XP ledger.
type XPEventRepository interface {
	// Create appends one ledger entry. The database assigns event.ID.
	Create(ctx context.Context, event *XPEvent) error

	// FindByUser returns a page of a user's ledger plus the total count.
	FindByUser(ctx context.Context, userID uuid.UUID, filter EventFilter) ([]*XPEvent, int64, error)
}
