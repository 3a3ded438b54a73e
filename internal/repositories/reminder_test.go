package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/dkozyrev/voicedesk/internal/models"
)

func TestReminderReadRepository_Exists(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	repo := NewReminderReadRepository(sqlxDB)
	ctx := context.Background()

	userID := uuid.New()

	t.Run("duplicate triple", func(t *testing.T) {
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(userID, "call Bob", "2026-09-02 10:00").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		exists, err := repo.Exists(ctx, userID, "call Bob", "2026-09-02 10:00")
		assert.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("fresh triple", func(t *testing.T) {
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(userID, "call Carol", "2026-09-02 10:00").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		exists, err := repo.Exists(ctx, userID, "call Carol", "2026-09-02 10:00")
		assert.NoError(t, err)
		assert.False(t, exists)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReminderWriteRepository_Save(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	repo := NewReminderWriteRepository(sqlxDB)
	ctx := context.Background()

	rem := models.ReminderDB{
		ReminderID: uuid.New(),
		UserID:     uuid.New(),
		Message:    "call Bob",
		RemindAt:   "2026-09-02 10:00",
		CreatedAt:  time.Now(),
	}

	mock.ExpectExec("INSERT INTO reminders").
		WithArgs(rem.ReminderID, rem.UserID, rem.Message, rem.RemindAt, rem.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Save(ctx, rem))
	assert.NoError(t, mock.ExpectationsWereMet())
}
