package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wikiboard/backend/internal/domain/gamification"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockXPEventRepository creates a GormXPEventRepository with a mocked SQL connection
func newMockXPEventRepository(t *testing.T) (*GormXPEventRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormXPEventRepository(gormDB), mock, mockDB
}

func TestGormXPEventRepository_Create(t *testing.T) {
	t.Run("assigns the database ID back to the event", func(t *testing.T) {
		repo, mock, mockDB := newMockXPEventRepository(t)
		defer mockDB.Close()

		userID := uuid.New()
		event, err := gamification.NewXPEvent(userID, "article_created", 50, "first article")
		require.NoError(t, err)

		mock.ExpectQuery(`INSERT INTO "xp_events"`).
			WithArgs(userID, "article_created", int64(50), "first article", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

		err = repo.Create(context.Background(), event)

		assert.NoError(t, err)
		assert.Equal(t, int64(42), event.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormXPEventRepository_FindByUser(t *testing.T) {
	t.Run("returns newest entries first with total count", func(t *testing.T) {
		repo, mock, mockDB := newMockXPEventRepository(t)
		defer mockDB.Close()

		userID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "xp_events" WHERE user_id = \$1`).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

		rows := sqlmock.NewRows([]string{"id", "user_id", "action", "amount", "description", "created_at"}).
			AddRow(int64(2), userID, "comment_added", int64(5), "", now).
			AddRow(int64(1), userID, "article_created", int64(50), "", now.Add(-time.Hour))

		mock.ExpectQuery(`SELECT \* FROM "xp_events" WHERE user_id = \$1 ORDER BY created_at DESC, id DESC LIMIT .*`).
			WithArgs(userID, 20).
			WillReturnRows(rows)

		events, total, err := repo.FindByUser(context.Background(), userID, gamification.EventFilter{})

		assert.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, events, 2)
		assert.Equal(t, "comment_added", events[0].Action)
		assert.Equal(t, int64(5), events[0].Amount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("filters by action", func(t *testing.T) {
		repo, mock, mockDB := newMockXPEventRepository(t)
		defer mockDB.Close()

		userID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "xp_events" WHERE user_id = \$1 AND action = \$2`).
			WithArgs(userID, "admin_adjustment").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		mock.ExpectQuery(`SELECT \* FROM "xp_events" WHERE user_id = \$1 AND action = \$2 ORDER BY created_at DESC, id DESC LIMIT .*`).
			WithArgs(userID, "admin_adjustment", 20).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "action", "amount", "description", "created_at"}))

		events, total, err := repo.FindByUser(context.Background(), userID, gamification.EventFilter{Action: "admin_adjustment"})

		assert.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, events)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("caps page size at 100", func(t *testing.T) {
		repo, mock, mockDB := newMockXPEventRepository(t)
		defer mockDB.Close()

		userID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "xp_events" WHERE user_id = \$1`).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		mock.ExpectQuery(`SELECT \* FROM "xp_events" WHERE user_id = \$1 ORDER BY created_at DESC, id DESC LIMIT .*`).
			WithArgs(userID, 100).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "action", "amount", "description", "created_at"}))

		_, _, err := repo.FindByUser(context.Background(), userID, gamification.EventFilter{PageSize: 500})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
