package models

import (
	"time"

	"github.com/google/uuid"
)

// VoiceprintDB represents a speaker embedding captured at registration.
// Embedding is nil when the registration audio was not in an accepted
// uncompressed format or the encoder failed.
type VoiceprintDB struct {
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Embedding []float64 `json:"embedding" db:"embedding"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
