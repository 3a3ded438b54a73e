package repositories

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/dkozyrev/voicedesk/internal/logger"
	"github.com/dkozyrev/voicedesk/internal/models"
)

type VoiceprintWriteRepository struct {
	db *sqlx.DB
}

func NewVoiceprintWriteRepository(db *sqlx.DB) *VoiceprintWriteRepository {
	return &VoiceprintWriteRepository{db: db}
}

// Save appends one voiceprint row. A nil embedding is stored as SQL NULL.
func (r *VoiceprintWriteRepository) Save(ctx context.Context, vp models.VoiceprintDB) error {
	const query = `
		INSERT INTO voiceprints (user_id, embedding, created_at)
		VALUES ($1, $2, $3)
	`

	var embedding any
	if vp.Embedding != nil {
		data, err := json.Marshal(vp.Embedding)
		if err != nil {
			return err
		}
		embedding = data
	}

	_, err := r.db.ExecContext(ctx, query, vp.UserID, embedding, vp.CreatedAt)

	logger.Log.Debugw("voiceprint save",
		"query", strings.Join(strings.Fields(query), " "),
		"user_id", vp.UserID,
		"has_embedding", vp.Embedding != nil,
		"error", err,
	)

	return err
}
