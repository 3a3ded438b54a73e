package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dkozyrev/voicedesk/internal/logger"
	"github.com/dkozyrev/voicedesk/internal/models"
)

// Error variables
var (
	ErrUserAlreadyExists  = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// bcrypt rejects passwords longer than 72 bytes; input is bounded to that
// limit before hashing and verification.
const maxPasswordBytes = 72

// UserReader defines read-only operations for users.
type UserReader interface {
	GetByEmail(ctx context.Context, email string) (*models.UserDB, error)
}

// UserWriter defines write operations for users.
type UserWriter interface {
	Save(ctx context.Context, user models.UserDB) error
	UpdateToken(ctx context.Context, userID uuid.UUID, token string) error
}

// VoiceprintWriter persists speaker embeddings captured at registration.
type VoiceprintWriter interface {
	Save(ctx context.Context, vp models.VoiceprintDB) error
}

// VoiceprintEncoder computes a speaker embedding from raw audio.
type VoiceprintEncoder interface {
	Embed(ctx context.Context, audio []byte) ([]float64, error)
}

// TokenGenerator issues opaque session tokens.
type TokenGenerator interface {
	NewToken(ctx context.Context) string
}

// Notifier delivers a freshly issued token to the user.
type Notifier interface {
	Send(ctx context.Context, recipient, token string) error
}

// AuthService handles registration and login.
type AuthService struct {
	reader      UserReader
	writer      UserWriter
	voiceprints VoiceprintWriter
	encoder     VoiceprintEncoder
	tokens      TokenGenerator
	notifier    Notifier
}

// NewAuthService creates a new AuthService instance. encoder may be nil, in
// which case every voiceprint is stored with an absent embedding.
func NewAuthService(
	reader UserReader,
	writer UserWriter,
	voiceprints VoiceprintWriter,
	encoder VoiceprintEncoder,
	tokens TokenGenerator,
	notifier Notifier,
) *AuthService {
	return &AuthService{
		reader:      reader,
		writer:      writer,
		voiceprints: voiceprints,
		encoder:     encoder,
		tokens:      tokens,
		notifier:    notifier,
	}
}

func boundPassword(password string) []byte {
	b := []byte(password)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}

// Register creates a user row and exactly one voiceprint row. The user row
// is committed before the embedding step; embedding failure or a non-wav
// voice file records the embedding as absent but never fails registration.
func (svc *AuthService) Register(ctx context.Context, name, email, password string, voice []byte, voiceFilename string) error {
	existing, err := svc.reader.GetByEmail(ctx, email)
	if err != nil {
		logger.Log.Errorw("failed to check user exists", "err", err)
		return err
	}
	if existing != nil {
		logger.Log.Errorw("user already exists", "email", email)
		return ErrUserAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword(boundPassword(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return err
	}

	user := models.UserDB{
		UserID:       uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    time.Now(),
	}
	if err := svc.writer.Save(ctx, user); err != nil {
		logger.Log.Errorw("failed to save user", "err", err)
		return err
	}

	var embedding []float64
	if svc.encoder != nil && strings.HasSuffix(strings.ToLower(voiceFilename), ".wav") {
		embedding, err = svc.encoder.Embed(ctx, voice)
		if err != nil {
			logger.Log.Warnw("voiceprint embedding failed, storing as absent", "user_id", user.UserID, "err", err)
			embedding = nil
		}
	}

	vp := models.VoiceprintDB{
		UserID:    user.UserID,
		Embedding: embedding,
		CreatedAt: time.Now(),
	}
	if err := svc.voiceprints.Save(ctx, vp); err != nil {
		logger.Log.Errorw("failed to save voiceprint", "user_id", user.UserID, "err", err)
		return err
	}

	return nil
}

// Login authenticates a user and returns a fresh opaque session token.
// Issuing a new token invalidates the previous one (last writer wins).
// Token email delivery is best-effort and never fails the login.
func (svc *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := svc.reader.GetByEmail(ctx, email)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return "", err
	}
	if user == nil {
		logger.Log.Errorw("user does not exist", "email", email)
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), boundPassword(password)); err != nil {
		logger.Log.Errorw("invalid credentials", "email", email)
		return "", ErrInvalidCredentials
	}

	tok := svc.tokens.NewToken(ctx)
	if err := svc.writer.UpdateToken(ctx, user.UserID, tok); err != nil {
		logger.Log.Errorw("failed to persist session token", "err", err)
		return "", err
	}

	if svc.notifier != nil {
		if err := svc.notifier.Send(ctx, user.Email, tok); err != nil {
			logger.Log.Warnw("failed to email login token", "email", user.Email, "err", err)
		}
	}

	return tok, nil
}
