package gamification

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewXPEvent(t *testing.T) {
	userID := uuid.New()

	t.Run("valid event", func(t *testing.T) {
		event, err := NewXPEvent(userID, "term_approved", 25, "Term 'goroutine' approved")
		require.NoError(t, err)
		assert.Equal(t, userID, event.UserID)
		assert.Equal(t, "term_approved", event.Action)
		assert.Equal(t, int64(25), event.Amount)
		assert.False(t, event.CreatedAt.IsZero())
	})

	t.Run("negative amount allowed", func(t *testing.T) {
		event, err := NewXPEvent(userID, "moderation_penalty", -50, "")
		require.NoError(t, err)
		assert.Equal(t, int64(-50), event.Amount)
	})

	t.Run("zero amount rejected", func(t *testing.T) {
		_, err := NewXPEvent(userID, "noop", 0, "")
		assert.Error(t, err)
	})

	t.Run("empty action rejected", func(t *testing.T) {
		_, err := NewXPEvent(userID, "   ", 10, "")
		assert.Error(t, err)
	})

	t.Run("action too long rejected", func(t *testing.T) {
		_, err := NewXPEvent(userID, strings.Repeat("a", 101), 10, "")
		assert.Error(t, err)
	})

	t.Run("description too long rejected", func(t *testing.T) {
		_, err := NewXPEvent(userID, "bonus", 10, strings.Repeat("d", 501))
		assert.Error(t, err)
	})

	t.Run("nil user rejected", func(t *testing.T) {
		_, err := NewXPEvent(uuid.Nil, "bonus", 10, "")
		assert.Error(t, err)
	})
}
