package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/dkozyrev/voicedesk/internal/services"
)

func TestLoginHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := NewMockLoginer(ctrl)

	tests := []struct {
		name         string
		email        string
		password     string
		mockSetup    func()
		expectedCode int
		expectedBody interface{}
	}{
		{
			name:     "success",
			email:    "alice@example.com",
			password: "pw123",
			mockSetup: func() {
				mockSvc.EXPECT().
					Login(gomock.Any(), "alice@example.com", "pw123").
					Return("SESSION_TOKEN", nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: &LoginResponse{Token: "SESSION_TOKEN"},
		},
		{
			name:     "invalid credentials",
			email:    "alice@example.com",
			password: "wrong",
			mockSetup: func() {
				mockSvc.EXPECT().
					Login(gomock.Any(), "alice@example.com", "wrong").
					Return("", services.ErrInvalidCredentials)
			},
			expectedCode: http.StatusUnauthorized,
			expectedBody: &LoginErrorResponse{Error: "Invalid credentials"},
		},
		{
			name:     "internal error",
			email:    "alice@example.com",
			password: "pw123",
			mockSetup: func() {
				mockSvc.EXPECT().
					Login(gomock.Any(), "alice@example.com", "pw123").
					Return("", assert.AnError)
			},
			expectedCode: http.StatusInternalServerError,
			expectedBody: &LoginErrorResponse{Error: "Internal server error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()

			form := url.Values{}
			form.Set("email", tt.email)
			form.Set("password", tt.password)

			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			rec := httptest.NewRecorder()

			NewLoginHandler(mockSvc)(rec, req)

			assert.Equal(t, tt.expectedCode, rec.Code)

			expected, err := json.Marshal(tt.expectedBody)
			assert.NoError(t, err)
			assert.JSONEq(t, string(expected), rec.Body.String())
		})
	}
}
