package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dkozyrev/voicedesk/internal/logger"
	"github.com/dkozyrev/voicedesk/internal/models"
)

type UserReadRepository struct {
	db *sqlx.DB
}

func NewUserReadRepository(db *sqlx.DB) *UserReadRepository {
	return &UserReadRepository{db: db}
}

// GetByEmail returns the user with the given email, or nil if none exists.
// Matching is case-sensitive, as stored.
func (r *UserReadRepository) GetByEmail(ctx context.Context, email string) (*models.UserDB, error) {
	const query = `
		SELECT user_id, name, email, password_hash, token, created_at
		FROM users
		WHERE email = $1
		LIMIT 1
	`

	var user models.UserDB
	err := r.db.GetContext(ctx, &user, query, email)

	logger.Log.Debugw("user get by email",
		"query", strings.Join(strings.Fields(query), " "),
		"args", email,
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByID returns the user with the given id, or nil if none exists.
func (r *UserReadRepository) GetByID(ctx context.Context, userID uuid.UUID) (*models.UserDB, error) {
	const query = `
		SELECT user_id, name, email, password_hash, token, created_at
		FROM users
		WHERE user_id = $1
		LIMIT 1
	`

	var user models.UserDB
	err := r.db.GetContext(ctx, &user, query, userID)

	logger.Log.Debugw("user get by id",
		"query", strings.Join(strings.Fields(query), " "),
		"args", userID,
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByToken returns the user whose current session token equals the given
// token, or nil if none matches. Empty tokens never match.
func (r *UserReadRepository) GetByToken(ctx context.Context, token string) (*models.UserDB, error) {
	if token == "" {
		return nil, nil
	}

	const query = `
		SELECT user_id, name, email, password_hash, token, created_at
		FROM users
		WHERE token = $1
		LIMIT 1
	`

	var user models.UserDB
	err := r.db.GetContext(ctx, &user, query, token)

	logger.Log.Debugw("user get by token",
		"query", strings.Join(strings.Fields(query), " "),
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

type UserWriteRepository struct {
	db *sqlx.DB
}

func NewUserWriteRepository(db *sqlx.DB) *UserWriteRepository {
	return &UserWriteRepository{db: db}
}

// Save appends one user row. The row is created with an empty session token.
func (r *UserWriteRepository) Save(ctx context.Context, user models.UserDB) error {
	const query = `
		INSERT INTO users (user_id, name, email, password_hash, token, created_at)
		VALUES ($1, $2, $3, $4, '', $5)
	`
	args := []any{user.UserID, user.Name, user.Email, user.PasswordHash, user.CreatedAt}

	_, err := r.db.ExecContext(ctx, query, args...)

	logger.Log.Debugw("user save",
		"query", strings.Join(strings.Fields(query), " "),
		"user_id", user.UserID,
		"error", err,
	)

	return err
}

// UpdateToken replaces the user's session token in a single row update.
// The last writer wins; there is no multi-session support.
func (r *UserWriteRepository) UpdateToken(ctx context.Context, userID uuid.UUID, token string) error {
	const query = `
		UPDATE users
		SET token = $2
		WHERE user_id = $1
	`

	_, err := r.db.ExecContext(ctx, query, userID, token)

	logger.Log.Debugw("user update token",
		"query", strings.Join(strings.Fields(query), " "),
		"user_id", userID,
		"error", err,
	)

	return err
}
