package token

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// Generator issues opaque session tokens. Tokens carry no claims; the
// users table is the single source of truth for which token is active.
type Generator struct{}

// New creates a new Generator instance
func New() *Generator {
	return &Generator{}
}

// NewToken returns a high-entropy opaque token string.
func (g *Generator) NewToken(ctx context.Context) string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// GetTokenFromRequest extracts the session token from the Authorization
// header (Bearer scheme) or, failing that, from the "token" form field.
func (g *Generator) GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return "", errors.New("invalid authorization header format")
		}
		return parts[1], nil
	}

	if tok := r.FormValue("token"); tok != "" {
		return tok, nil
	}

	return "", errors.New("session token missing")
}
