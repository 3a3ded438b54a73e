package repositories

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/dkozyrev/voicedesk/internal/logger"
	"github.com/dkozyrev/voicedesk/internal/models"
)

type RecordWriteRepository struct {
	db *sqlx.DB
}

func NewRecordWriteRepository(db *sqlx.DB) *RecordWriteRepository {
	return &RecordWriteRepository{db: db}
}

// Save appends one record row. Records are never updated or deleted.
func (r *RecordWriteRepository) Save(ctx context.Context, rec models.RecordDB) error {
	const query = `
		INSERT INTO records (record_id, user_id, department, transcript, summary, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	args := []any{rec.RecordID, rec.UserID, rec.Department, rec.Transcript, rec.Summary, rec.CreatedAt}

	_, err := r.db.ExecContext(ctx, query, args...)

	logger.Log.Debugw("record save",
		"query", strings.Join(strings.Fields(query), " "),
		"record_id", rec.RecordID,
		"user_id", rec.UserID,
		"error", err,
	)

	return err
}
