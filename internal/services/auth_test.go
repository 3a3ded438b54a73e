package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"github.com/dkozyrev/voicedesk/internal/models"
	"github.com/dkozyrev/voicedesk/internal/services"
)

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		voiceFilename string
		existingUser  *models.UserDB
		readerErr     error
		saveErr       error
		embedResult   []float64
		embedErr      error
		expectEmbed   bool
		wantErr       error
	}{
		{
			name:          "successful registration with wav voice",
			email:         "alice@example.com",
			voiceFilename: "voice.wav",
			embedResult:   []float64{0.1, 0.2},
			expectEmbed:   true,
		},
		{
			name:          "non-wav voice skips embedding",
			email:         "bob@example.com",
			voiceFilename: "voice.mp3",
			expectEmbed:   false,
		},
		{
			name:          "embedding failure still registers",
			email:         "carol@example.com",
			voiceFilename: "voice.wav",
			embedErr:      errors.New("encoder down"),
			expectEmbed:   true,
		},
		{
			name:          "user already exists",
			email:         "dup@example.com",
			voiceFilename: "voice.wav",
			existingUser:  &models.UserDB{UserID: uuid.New()},
			wantErr:       services.ErrUserAlreadyExists,
		},
		{
			name:      "reader error",
			email:     "eve@example.com",
			readerErr: errors.New("db error"),
			wantErr:   errors.New("db error"),
		},
		{
			name:          "user save error",
			email:         "frank@example.com",
			voiceFilename: "voice.wav",
			saveErr:       errors.New("save error"),
			wantErr:       errors.New("save error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockReader := services.NewMockUserReader(ctrl)
			mockWriter := services.NewMockUserWriter(ctrl)
			mockVoiceprints := services.NewMockVoiceprintWriter(ctrl)
			mockEncoder := services.NewMockVoiceprintEncoder(ctrl)
			mockTokens := services.NewMockTokenGenerator(ctrl)
			mockNotifier := services.NewMockNotifier(ctrl)

			svc := services.NewAuthService(mockReader, mockWriter, mockVoiceprints, mockEncoder, mockTokens, mockNotifier)

			mockReader.EXPECT().
				GetByEmail(gomock.Any(), tt.email).
				Return(tt.existingUser, tt.readerErr)

			var savedUser models.UserDB
			if tt.existingUser == nil && tt.readerErr == nil {
				mockWriter.EXPECT().
					Save(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, u models.UserDB) error {
						savedUser = u
						return tt.saveErr
					})
			}

			if tt.saveErr == nil && tt.wantErr == nil {
				if tt.expectEmbed {
					mockEncoder.EXPECT().
						Embed(gomock.Any(), []byte("audio-bytes")).
						Return(tt.embedResult, tt.embedErr)
				}
				mockVoiceprints.EXPECT().
					Save(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, vp models.VoiceprintDB) error {
						assert.Equal(t, savedUser.UserID, vp.UserID)
						if tt.embedErr != nil || !tt.expectEmbed {
							assert.Nil(t, vp.Embedding)
						} else {
							assert.Equal(t, tt.embedResult, vp.Embedding)
						}
						return nil
					})
			}

			err := svc.Register(context.Background(), "Name", tt.email, "pw123", []byte("audio-bytes"), tt.voiceFilename)
			if tt.wantErr != nil {
				assert.EqualError(t, err, tt.wantErr.Error())
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.email, savedUser.Email)
			assert.NotEqual(t, uuid.Nil, savedUser.UserID)
			assert.Empty(t, savedUser.Token)

			// Password is stored hashed, bounded to bcrypt's input limit.
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(savedUser.PasswordHash), []byte("pw123")))
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("pw123"), bcrypt.DefaultCost)
	assert.NoError(t, err)

	userID := uuid.New()
	user := &models.UserDB{
		UserID:       userID,
		Email:        "alice@example.com",
		PasswordHash: string(hash),
	}

	t.Run("success issues and persists fresh token", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockReader := services.NewMockUserReader(ctrl)
		mockWriter := services.NewMockUserWriter(ctrl)
		mockTokens := services.NewMockTokenGenerator(ctrl)
		mockNotifier := services.NewMockNotifier(ctrl)

		svc := services.NewAuthService(mockReader, mockWriter, nil, nil, mockTokens, mockNotifier)

		mockReader.EXPECT().GetByEmail(gomock.Any(), "alice@example.com").Return(user, nil)
		mockTokens.EXPECT().NewToken(gomock.Any()).Return("fresh-token")
		mockWriter.EXPECT().UpdateToken(gomock.Any(), userID, "fresh-token").Return(nil)
		mockNotifier.EXPECT().Send(gomock.Any(), "alice@example.com", "fresh-token").Return(nil)

		tok, err := svc.Login(context.Background(), "alice@example.com", "pw123")
		assert.NoError(t, err)
		assert.Equal(t, "fresh-token", tok)
	})

	t.Run("notifier failure does not block login", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockReader := services.NewMockUserReader(ctrl)
		mockWriter := services.NewMockUserWriter(ctrl)
		mockTokens := services.NewMockTokenGenerator(ctrl)
		mockNotifier := services.NewMockNotifier(ctrl)

		svc := services.NewAuthService(mockReader, mockWriter, nil, nil, mockTokens, mockNotifier)

		mockReader.EXPECT().GetByEmail(gomock.Any(), "alice@example.com").Return(user, nil)
		mockTokens.EXPECT().NewToken(gomock.Any()).Return("fresh-token")
		mockWriter.EXPECT().UpdateToken(gomock.Any(), userID, "fresh-token").Return(nil)
		mockNotifier.EXPECT().Send(gomock.Any(), "alice@example.com", "fresh-token").Return(errors.New("smtp down"))

		tok, err := svc.Login(context.Background(), "alice@example.com", "pw123")
		assert.NoError(t, err)
		assert.Equal(t, "fresh-token", tok)
	})

	t.Run("unknown email", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockReader := services.NewMockUserReader(ctrl)

		svc := services.NewAuthService(mockReader, nil, nil, nil, nil, nil)

		mockReader.EXPECT().GetByEmail(gomock.Any(), "nobody@example.com").Return(nil, nil)

		_, err := svc.Login(context.Background(), "nobody@example.com", "pw123")
		assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockReader := services.NewMockUserReader(ctrl)

		svc := services.NewAuthService(mockReader, nil, nil, nil, nil, nil)

		mockReader.EXPECT().GetByEmail(gomock.Any(), "alice@example.com").Return(user, nil)

		_, err := svc.Login(context.Background(), "alice@example.com", "wrong")
		assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	})

	t.Run("token persist error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockReader := services.NewMockUserReader(ctrl)
		mockWriter := services.NewMockUserWriter(ctrl)
		mockTokens := services.NewMockTokenGenerator(ctrl)

		svc := services.NewAuthService(mockReader, mockWriter, nil, nil, mockTokens, nil)

		mockReader.EXPECT().GetByEmail(gomock.Any(), "alice@example.com").Return(user, nil)
		mockTokens.EXPECT().NewToken(gomock.Any()).Return("fresh-token")
		mockWriter.EXPECT().UpdateToken(gomock.Any(), userID, "fresh-token").Return(errors.New("db error"))

		_, err := svc.Login(context.Background(), "alice@example.com", "pw123")
		assert.EqualError(t, err, "db error")
	})
}
