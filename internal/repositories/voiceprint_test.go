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

func TestVoiceprintWriteRepository_Save(t *testing.T) {
	sqlxDB, mock := newMockDB(t)
	repo := NewVoiceprintWriteRepository(sqlxDB)
	ctx := context.Background()

	t.Run("with embedding", func(t *testing.T) {
		vp := models.VoiceprintDB{
			UserID:    uuid.New(),
			Embedding: []float64{0.1, -0.2, 0.3},
			CreatedAt: time.Now(),
		}

		mock.ExpectExec("INSERT INTO voiceprints").
			WithArgs(vp.UserID, []byte(`[0.1,-0.2,0.3]`), vp.CreatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Save(ctx, vp))
	})

	t.Run("absent embedding stored as NULL", func(t *testing.T) {
		vp := models.VoiceprintDB{
			UserID:    uuid.New(),
			CreatedAt: time.Now(),
		}

		mock.ExpectExec("INSERT INTO voiceprints").
			WithArgs(vp.UserID, nil, vp.CreatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Save(ctx, vp))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
