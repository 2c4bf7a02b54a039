package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/wikiboard/backend/internal/domain/gamification"
)

// XPEventModel is the GORM persistence model for XPEvent.
// Ledger rows are append-only, so there is no updated_at column.
type XPEventModel struct {
	ID          int64     `gorm:"primary_key;autoIncrement"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index:idx_xp_events_user_created,priority:1"`
	Action      string    `gorm:"type:varchar(100);not null;index"`
	Amount      int64     `gorm:"not null"`
	Description string    `gorm:"type:varchar(500);not null;default:''"`
	CreatedAt   time.Time `gorm:"not null;index:idx_xp_events_user_created,priority:2,sort:desc"`
}

// TableName specifies the table name for XPEventModel
func (XPEventModel) TableName() string {
	return "xp_events"
}

// ToDomain converts XPEventModel to domain XPEvent entity
func (m *XPEventModel) ToDomain() *gamification.XPEvent {
	return &gamification.XPEvent{
		ID:          m.ID,
		UserID:      m.UserID,
		Action:      m.Action,
		Amount:      m.Amount,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
	}
}

// XPEventModelFromDomain converts domain XPEvent entity to XPEventModel
func XPEventModelFromDomain(event *gamification.XPEvent) *XPEventModel {
	return &XPEventModel{
		ID:          event.ID,
		UserID:      event.UserID,
		Action:      event.Action,
		Amount:      event.Amount,
		Description: event.Description,
		CreatedAt:   event.CreatedAt,
	}
}
