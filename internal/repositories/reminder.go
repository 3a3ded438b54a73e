package repositories

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dkozyrev/voicedesk/internal/logger"
	"github.com/dkozyrev/voicedesk/internal/models"
)

type ReminderReadRepository struct {
	db *sqlx.DB
}

func NewReminderReadRepository(db *sqlx.DB) *ReminderReadRepository {
	return &ReminderReadRepository{db: db}
}

// Exists reports whether a reminder with the identical
// (user, message, remind_at) triple is already stored.
func (r *ReminderReadRepository) Exists(ctx context.Context, userID uuid.UUID, message, remindAt string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM reminders
			WHERE user_id = $1 AND message = $2 AND remind_at = $3
		)
	`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, userID, message, remindAt)

	logger.Log.Debugw("reminder exists",
		"query", strings.Join(strings.Fields(query), " "),
		"user_id", userID,
		"remind_at", remindAt,
		"result", exists,
		"error", err,
	)

	return exists, err
}

type ReminderWriteRepository struct {
	db *sqlx.DB
}

func NewReminderWriteRepository(db *sqlx.DB) *ReminderWriteRepository {
	return &ReminderWriteRepository{db: db}
}

// Save appends one reminder row. Reminders are never updated or deleted.
func (r *ReminderWriteRepository) Save(ctx context.Context, rem models.ReminderDB) error {
	const query = `
		INSERT INTO reminders (reminder_id, user_id, message, remind_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	args := []any{rem.ReminderID, rem.UserID, rem.Message, rem.RemindAt, rem.CreatedAt}

	_, err := r.db.ExecContext(ctx, query, args...)

	logger.Log.Debugw("reminder save",
		"query", strings.Join(strings.Fields(query), " "),
		"reminder_id", rem.ReminderID,
		"user_id", rem.UserID,
		"error", err,
	)

	return err
}
