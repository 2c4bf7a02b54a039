package gamification

import (
	"time"

	"github.com/google/uuid"
	"github.com/wikiboard/backend/internal/domain/gamification"
)

// RecordAdjustmentInput carries a signed XP delta to apply to a user.
type RecordAdjustmentInput struct {
	UserID      uuid.UUID
	Amount      int64
	Action      string
	Description string
}

// AdjustmentResponse is the outcome of an XP adjustment.
type AdjustmentResponse struct {
	UserID       uuid.UUID       `json:"user_id"`
	NewXP        int64           `json:"new_xp"`
	NewLevel     int             `json:"new_level"`
	LevelChanged bool            `json:"level_changed"`
	Event        XPEventResponse `json:"event"`
}

// XPEventResponse represents one ledger entry in API responses.
type XPEventResponse struct {
	ID          int64     `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Action      string    `json:"action"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToXPEventResponse converts a domain XPEvent to its response form.
func ToXPEventResponse(event *gamification.XPEvent) XPEventResponse {
	return XPEventResponse{
		ID:          event.ID,
		UserID:      event.UserID,
		Action:      event.Action,
		Amount:      event.Amount,
		Description: event.Description,
		CreatedAt:   event.CreatedAt,
	}
}

// XPEventListFilter represents filter options for a user's ledger history.
type XPEventListFilter struct {
	Action   string `form:"action"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ProgressResponse describes a user's position within the level curve.
type ProgressResponse struct {
	UserID      uuid.UUID `json:"user_id"`
	XP          int64     `json:"xp"`
	Level       int       `json:"level"`
	MaxLevel    int       `json:"max_level"`
	XPToNext    *int64    `json:"xp_to_next,omitempty"`
	NextLevelAt *int64    `json:"next_level_at,omitempty"`
	Progress    float64   `json:"progress"`
}

// LevelResponse describes one entry of the level curve. Span is the XP
// width of the band, absent for the final level.
type LevelResponse struct {
	Level     int    `json:"level"`
	Threshold int64  `json:"threshold"`
	Span      *int64 `json:"span,omitempty"`
}
