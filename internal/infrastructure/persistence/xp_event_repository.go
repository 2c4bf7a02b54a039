package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/wikiboard/backend/internal/domain/gamification"
	"github.com/wikiboard/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormXPEventRepository implements XPEventRepository using GORM
type GormXPEventRepository struct {
	db *gorm.DB
}

// NewGormXPEventRepository creates a new GormXPEventRepository
func NewGormXPEventRepository(db *gorm.DB) *GormXPEventRepository {
	return &GormXPEventRepository{db: db}
}

// Create appends one ledger entry and writes the database-assigned ID
// back to the domain event.
func (r *GormXPEventRepository) Create(ctx context.Context, event *gamification.XPEvent) error {
	model := models.XPEventModelFromDomain(event)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	event.ID = model.ID
	return nil
}

// FindByUser returns a page of a user's ledger entries, newest first,
// plus the total count of matching entries.
func (r *GormXPEventRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter gamification.EventFilter) ([]*gamification.XPEvent, int64, error) {
	var eventModels []*models.XPEventModel
	var total int64

	query := r.db.WithContext(ctx).
		Model(&models.XPEventModel{}).
		Where("user_id = ?", userID)

	if action := strings.TrimSpace(filter.Action); action != "" {
		query = query.Where("action = ?", action)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	if err := query.
		Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&eventModels).Error; err != nil {
		return nil, 0, err
	}

	events := make([]*gamification.XPEvent, len(eventModels))
	for i, model := range eventModels {
		events[i] = model.ToDomain()
	}

	return events, total, nil
}

// Ensure GormXPEventRepository implements XPEventRepository
var _ gamification.XPEventRepository = (*GormXPEventRepository)(nil)
