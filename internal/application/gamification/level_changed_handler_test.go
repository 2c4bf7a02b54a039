package gamification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wikiboard/backend/internal/domain/identity"
	"github.com/wikiboard/backend/internal/domain/shared"
	"go.uber.org/zap"
)

func TestLevelChangedHandler(t *testing.T) {
	handler := NewLevelChangedHandler(zap.NewNop())

	t.Run("subscribes to level change events only", func(t *testing.T) {
		assert.Equal(t, []string{identity.EventTypeUserLevelChanged}, handler.EventTypes())
	})

	t.Run("accepts a level change event", func(t *testing.T) {
		user, err := identity.NewUser("climber@example.com", "Climber", "secret123")
		require.NoError(t, err)

		event := identity.NewUserLevelChangedEvent(user, 2, 3)
		assert.NoError(t, handler.Handle(context.Background(), event))
	})

	t.Run("rejects an event of the wrong type", func(t *testing.T) {
		user, err := identity.NewUser("other@example.com", "Other", "secret123")
		require.NoError(t, err)

		event := identity.NewUserRegisteredEvent(user)
		assert.Error(t, handler.Handle(context.Background(), event))
	})
}

var _ shared.EventHandler = (*LevelChangedHandler)(nil)
