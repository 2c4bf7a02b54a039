package gamification

import (
	"context"

	"github.com/google/uuid"
	"github.com/wikiboard/backend/internal/domain/gamification"
	"github.com/wikiboard/backend/internal/domain/identity"
	"github.com/wikiboard/backend/internal/domain/shared"
	"github.com/wikiboard/backend/internal/infrastructure/telemetry"
)

// DefaultAdjustmentAction labels ledger entries created through the admin
// adjustment endpoint when the caller does not provide one.
const DefaultAdjustmentAction = "admin_adjustment"

// XPService handles XP ledger operations. All writes go through a
// TransactionScope so the ledger entry and the user's running total
// commit or roll back together.
type XPService struct {
	scope          TransactionScope
	userRepo       identity.UserRepository
	xpEventRepo    gamification.XPEventRepository
	table          gamification.ThresholdTable
	eventPublisher shared.EventPublisher
	metrics        *telemetry.GamificationMetrics
}

// NewXPService creates a new XPService
func NewXPService(
	scope TransactionScope,
	userRepo identity.UserRepository,
	xpEventRepo gamification.XPEventRepository,
	table gamification.ThresholdTable,
) *XPService {
	return &XPService{
		scope:       scope,
		userRepo:    userRepo,
		xpEventRepo: xpEventRepo,
		table:       table,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *XPService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the gamification metrics collector
func (s *XPService) SetMetrics(gm *telemetry.GamificationMetrics) {
	s.metrics = gm
}

// RecordAdjustment applies a signed XP delta to a user. It appends one
// immutable ledger entry and updates the user's XP total and level in a
// single transaction. A zero delta is rejected before any transaction is
// opened; it would record a ledger entry that changes nothing.
func (s *XPService) RecordAdjustment(ctx context.Context, input RecordAdjustmentInput) (*AdjustmentResponse, error) {
	if input.Amount == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "XP amount must not be zero")
	}
	if input.Action == "" {
		input.Action = DefaultAdjustmentAction
	}

	var (
		user          *identity.User
		event         *gamification.XPEvent
		previousLevel int
	)

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error

		// The row lock serializes concurrent adjustments for the same
		// user, so the read-modify-write below cannot lose updates.
		user, err = repos.UserRepo().FindByIDForUpdate(ctx, input.UserID)
		if err != nil {
			return err
		}

		previousLevel = user.Level
		newXP, newLevel := s.table.Adjust(user.XP, input.Amount)

		event, err = gamification.NewXPEvent(input.UserID, input.Action, input.Amount, input.Description)
		if err != nil {
			return err
		}
		if err := repos.XPEventRepo().Create(ctx, event); err != nil {
			return err
		}

		if err := user.ApplyXPAdjustment(newXP, newLevel); err != nil {
			return err
		}
		return repos.UserRepo().Update(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, user)

	if s.metrics != nil {
		s.metrics.RecordXPAdjustment(ctx, input.Action, input.Amount, previousLevel != user.Level)
	}

	resp := &AdjustmentResponse{
		UserID:       user.ID,
		NewXP:        user.XP,
		NewLevel:     user.Level,
		LevelChanged: previousLevel != user.Level,
		Event:        ToXPEventResponse(event),
	}
	return resp, nil
}

// ListEvents returns a page of a user's ledger history, newest first.
// Returns shared.ErrNotFound when the user does not exist.
func (s *XPService) ListEvents(ctx context.Context, userID uuid.UUID, filter XPEventListFilter) ([]XPEventResponse, int64, error) {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, 0, err
	}

	events, total, err := s.xpEventRepo.FindByUser(ctx, userID, gamification.EventFilter{
		Action:   filter.Action,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	})
	if err != nil {
		return nil, 0, err
	}

	responses := make([]XPEventResponse, len(events))
	for i, event := range events {
		responses[i] = ToXPEventResponse(event)
	}
	return responses, total, nil
}

// GetProgress returns a user's position within the level curve.
func (s *XPService) GetProgress(ctx context.Context, userID uuid.UUID) (*ProgressResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &ProgressResponse{
		UserID:   user.ID,
		XP:       user.XP,
		Level:    user.Level,
		MaxLevel: s.table.MaxLevel(),
		Progress: s.table.ProgressToNext(user.XP),
	}
	if toNext, ok := s.table.XPToNext(user.XP); ok {
		resp.XPToNext = &toNext
		if nextAt, ok := s.table.ThresholdForLevel(user.Level + 1); ok {
			resp.NextLevelAt = &nextAt
		}
	}
	return resp, nil
}

// Levels returns the full level curve.
func (s *XPService) Levels() []LevelResponse {
	thresholds := s.table.Thresholds()
	levels := make([]LevelResponse, len(thresholds))
	for i, threshold := range thresholds {
		levels[i] = LevelResponse{Level: i + 1, Threshold: threshold}
		if i+1 < len(thresholds) {
			span := thresholds[i+1] - threshold
			levels[i].Span = &span
		}
	}
	return levels
}

// publishDomainEvents publishes the user's pending domain events
// (level changes) after the transaction has committed.
func (s *XPService) publishDomainEvents(ctx context.Context, user *identity.User) {
	if s.eventPublisher == nil {
		return
	}
	events := user.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	// Best effort: the adjustment itself is already durable.
	_ = s.eventPublisher.Publish(ctx, events...)
	user.ClearDomainEvents()
}
