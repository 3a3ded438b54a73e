package models

import (
	"time"

	"github.com/google/uuid"
)

// RecordDB represents one processed upload. Rows are append-only and
// immutable once written.
type RecordDB struct {
	RecordID   uuid.UUID `json:"id" db:"record_id"`          // Primary key
	UserID     uuid.UUID `json:"user_id" db:"user_id"`       // Owning user
	Department string    `json:"department" db:"department"` // Free-text department label
	Transcript string    `json:"transcript" db:"transcript"`
	Summary    string    `json:"summary" db:"summary"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// RecordProcessedEvent is published to Kafka after a record is persisted.
type RecordProcessedEvent struct {
	RecordID   string    `json:"record_id"`
	UserID     string    `json:"user_id"`
	Department string    `json:"department"`
	CreatedAt  time.Time `json:"created_at"`
}
