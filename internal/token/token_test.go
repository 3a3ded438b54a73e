package token

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewToken_UniqueAndOpaque(t *testing.T) {
	g := New()
	ctx := context.Background()

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		tok := g.NewToken(ctx)
		assert.Len(t, tok, 32)
		assert.NotContains(t, tok, "-")
		_, dup := seen[tok]
		assert.False(t, dup, "token %s generated twice", tok)
		seen[tok] = struct{}{}
	}
}

func TestGetTokenFromRequest(t *testing.T) {
	g := New()
	ctx := context.Background()

	tests := []struct {
		name      string
		authValue string
		formToken string
		want      string
		wantErr   bool
	}{
		{
			name:      "bearer header",
			authValue: "Bearer abc123",
			want:      "abc123",
		},
		{
			name:      "bearer header case-insensitive scheme",
			authValue: "bearer abc123",
			want:      "abc123",
		},
		{
			name:      "malformed header",
			authValue: "abc123",
			wantErr:   true,
		},
		{
			name:      "form token fallback",
			formToken: "tok-from-form",
			want:      "tok-from-form",
		},
		{
			name:    "missing everywhere",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := url.Values{}
			if tt.formToken != "" {
				form.Set("token", tt.formToken)
			}
			req, err := http.NewRequest(http.MethodPost, "/business/upload", strings.NewReader(form.Encode()))
			assert.NoError(t, err)
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			if tt.authValue != "" {
				req.Header.Set("Authorization", tt.authValue)
			}

			got, err := g.GetTokenFromRequest(ctx, req)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
