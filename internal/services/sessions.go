package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/dkozyrev/voicedesk/internal/logger"
	"github.com/dkozyrev/voicedesk/internal/models"
)

// ErrUnauthenticated is returned when a session token does not identify a
// user; callers must treat it as "require login".
var ErrUnauthenticated = errors.New("login required")

// SessionUserReader defines the user lookups needed for token validation.
type SessionUserReader interface {
	GetByID(ctx context.Context, userID uuid.UUID) (*models.UserDB, error)
	GetByToken(ctx context.Context, token string) (*models.UserDB, error)
}

// SessionCache caches token -> user id lookups.
type SessionCache interface {
	Get(ctx context.Context, token string) (uuid.UUID, error)
	Set(ctx context.Context, token string, userID uuid.UUID) error
}

// SessionService validates opaque bearer tokens against the users table.
type SessionService struct {
	reader SessionUserReader
	cache  SessionCache
}

// NewSessionService creates a new service instance. The cache is optional.
func NewSessionService(reader SessionUserReader, cache SessionCache) *SessionService {
	return &SessionService{
		reader: reader,
		cache:  cache,
	}
}

// Validate returns the user whose current token equals the given token,
// case-sensitive. Empty tokens never match. The cache only short-circuits
// the token scan; the cached id is always re-checked against the user row,
// so a stale entry from before a re-login cannot validate.
func (svc *SessionService) Validate(ctx context.Context, tok string) (*models.UserDB, error) {
	if tok == "" {
		return nil, ErrUnauthenticated
	}

	if svc.cache != nil {
		if userID, err := svc.cache.Get(ctx, tok); err == nil {
			user, err := svc.reader.GetByID(ctx, userID)
			if err == nil && user != nil && user.Token == tok {
				return user, nil
			}
			// Stale or broken cache entry: fall through to the table scan.
		}
	}

	user, err := svc.reader.GetByToken(ctx, tok)
	if err != nil {
		logger.Log.Errorw("failed to look up session token", "err", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthenticated
	}

	if svc.cache != nil {
		if err := svc.cache.Set(ctx, tok, user.UserID); err != nil {
			logger.Log.Warnw("failed to cache session", "err", err)
		}
	}

	return user, nil
}
