package models

import (
	"time"

	"github.com/google/uuid"
)

// RemindAtLayout is the wire format reminder times are detected in and
// stored as. Dedup compares this string form, not parsed instants.
const RemindAtLayout = "2006-01-02 15:04"

// ReminderDB represents a persisted reminder. Rows are append-only and
// immutable once written.
type ReminderDB struct {
	ReminderID uuid.UUID `json:"id" db:"reminder_id"` // Primary key
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	Message    string    `json:"message" db:"message"`
	RemindAt   string    `json:"remind_at" db:"remind_at"` // RemindAtLayout string
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// ReminderDetection is the raw reminder-extraction result. It is returned
// to the caller as detected, independent of whether a row was stored.
type ReminderDetection struct {
	Found    bool   `json:"found"`
	RemindAt string `json:"remind_at,omitempty"`
	Message  string `json:"message,omitempty"`
}
