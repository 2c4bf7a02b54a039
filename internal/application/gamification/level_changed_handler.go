package gamification

import (
	"context"
	"fmt"

	"github.com/wikiboard/backend/internal/domain/identity"
	"github.com/wikiboard/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LevelChangedHandler handles UserLevelChangedEvent and writes an audit
// log entry for every level boundary crossing. Notification fan-out can
// hang off this handler later without touching the ledger path.
type LevelChangedHandler struct {
	logger *zap.Logger
}

// NewLevelChangedHandler creates a new handler for level change events
func NewLevelChangedHandler(logger *zap.Logger) *LevelChangedHandler {
	return &LevelChangedHandler{logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *LevelChangedHandler) EventTypes() []string {
	return []string{identity.EventTypeUserLevelChanged}
}

// Handle processes a UserLevelChangedEvent
func (h *LevelChangedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	levelEvent, ok := event.(*identity.UserLevelChangedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", identity.EventTypeUserLevelChanged),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			identity.EventTypeUserLevelChanged, event.EventType())
	}

	direction := "up"
	if levelEvent.NewLevel < levelEvent.OldLevel {
		direction = "down"
	}

	h.logger.Info("user crossed a level boundary",
		zap.String("user_id", levelEvent.AggregateID().String()),
		zap.Int("old_level", levelEvent.OldLevel),
		zap.Int("new_level", levelEvent.NewLevel),
		zap.Int64("xp", levelEvent.XP),
		zap.String("direction", direction),
	)
	return nil
}
