package integration

import (
	"context"
	"sync"
	"testing"

	appgam "github.com/wikiboard/backend/internal/application/gamification"
	"github.com/wikiboard/backend/internal/domain/gamification"
	"github.com/wikiboard/backend/internal/domain/identity"
	"github.com/wikiboard/backend/internal/domain/shared"
	"github.com/wikiboard/backend/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newXPService(testDB *TestDB) (*appgam.XPService, *persistence.GormUserRepository, *persistence.GormXPEventRepository) {
	userRepo := persistence.NewGormUserRepository(testDB.DB)
	xpEventRepo := persistence.NewGormXPEventRepository(testDB.DB)
	scope := persistence.NewGormTransactionScope(testDB.DB)
	svc := appgam.NewXPService(scope, userRepo, xpEventRepo, gamification.DefaultThresholdTable())
	return svc, userRepo, xpEventRepo
}

func createLedgerUser(t *testing.T, repo *persistence.GormUserRepository, email string) *identity.User {
	t.Helper()

	user, err := identity.NewUser(email, "Ledger User", "secret123")
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), user))
	user.ClearDomainEvents()
	return user
}

// TestXPLedger_Integration exercises the XP ledger against a real PostgreSQL database
func TestXPLedger_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	svc, userRepo, xpEventRepo := newXPService(testDB)
	ctx := context.Background()

	t.Run("adjustment updates ledger and running total", func(t *testing.T) {
		user := createLedgerUser(t, userRepo, "total@example.com")

		resp, err := svc.RecordAdjustment(ctx, appgam.RecordAdjustmentInput{
			UserID: user.ID,
			Amount: 50,
			Action: "article_created",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(50), resp.NewXP)
		assert.Equal(t, 1, resp.NewLevel)
		assert.False(t, resp.LevelChanged)

		stored, err := userRepo.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(50), stored.XP)

		events, total, err := xpEventRepo.FindByUser(ctx, user.ID, gamification.EventFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, events, 1)
		assert.Equal(t, "article_created", events[0].Action)
		assert.Equal(t, int64(50), events[0].Amount)
	})

	t.Run("crossing a threshold raises the level", func(t *testing.T) {
		user := createLedgerUser(t, userRepo, "levelup@example.com")

		resp, err := svc.RecordAdjustment(ctx, appgam.RecordAdjustmentInput{
			UserID: user.ID,
			Amount: 150,
			Action: "bonus",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(150), resp.NewXP)
		assert.Equal(t, 2, resp.NewLevel)
		assert.True(t, resp.LevelChanged)
	})

	t.Run("negative adjustment clamps at zero", func(t *testing.T) {
		user := createLedgerUser(t, userRepo, "clamp@example.com")

		_, err := svc.RecordAdjustment(ctx, appgam.RecordAdjustmentInput{
			UserID: user.ID,
			Amount: 30,
		})
		require.NoError(t, err)

		resp, err := svc.RecordAdjustment(ctx, appgam.RecordAdjustmentInput{
			UserID: user.ID,
			Amount: -100,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(0), resp.NewXP)
		assert.Equal(t, 1, resp.NewLevel)

		// Both entries remain in the ledger with their original deltas
		events, total, err := xpEventRepo.FindByUser(ctx, user.ID, gamification.EventFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, events, 2)
		assert.Equal(t, int64(-100), events[0].Amount)
		assert.Equal(t, int64(30), events[1].Amount)
	})

	t.Run("zero delta is rejected without a ledger entry", func(t *testing.T) {
		user := createLedgerUser(t, userRepo, "zero@example.com")

		_, err := svc.RecordAdjustment(ctx, appgam.RecordAdjustmentInput{
			UserID: user.ID,
			Amount: 0,
		})
		require.Error(t, err)

		_, total, err := xpEventRepo.FindByUser(ctx, user.ID, gamification.EventFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
	})

	t.Run("unknown user leaves no ledger rows behind", func(t *testing.T) {
		missingID := uuid.New()

		_, err := svc.RecordAdjustment(ctx, appgam.RecordAdjustmentInput{
			UserID: missingID,
			Amount: 25,
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)

		_, total, err := xpEventRepo.FindByUser(ctx, missingID, gamification.EventFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
	})

	t.Run("ledger history is newest first and pageable", func(t *testing.T) {
		user := createLedgerUser(t, userRepo, "history@example.com")

		actions := []string{"first", "second", "third"}
		for _, action := range actions {
			_, err := svc.RecordAdjustment(ctx, appgam.RecordAdjustmentInput{
				UserID: user.ID,
				Amount: 10,
				Action: action,
			})
			require.NoError(t, err)
		}

		events, total, err := svc.ListEvents(ctx, user.ID, appgam.XPEventListFilter{Page: 1, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, events, 2)
		assert.Equal(t, "third", events[0].Action)
		assert.Equal(t, "second", events[1].Action)

		filtered, total, err := svc.ListEvents(ctx, user.ID, appgam.XPEventListFilter{Action: "first"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, filtered, 1)
	})
}

// TestXPLedger_ConcurrentAdjustments verifies that the row lock serializes
// concurrent writes so no adjustment is lost
func TestXPLedger_ConcurrentAdjustments(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	svc, userRepo, xpEventRepo := newXPService(testDB)
	ctx := context.Background()

	user := createLedgerUser(t, userRepo, "concurrent@example.com")

	const workers = 10
	const delta = int64(10)

	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RecordAdjustment(ctx, appgam.RecordAdjustmentInput{
				UserID: user.ID,
				Amount: delta,
				Action: "concurrent_test",
			})
			errs <- err
		}()
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stored, err := userRepo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, delta*workers, stored.XP)

	_, total, err := xpEventRepo.FindByUser(ctx, user.ID, gamification.EventFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(workers), total)
}
