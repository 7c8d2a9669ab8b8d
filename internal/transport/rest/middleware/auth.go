package middleware

import (
	"context"
	"net/http"
	"strings"

	"studybuilder/internal/model"
)

type contextKey string

const AuthorIDKey contextKey = "authorId"

// TokenValidator validates author bearer tokens
type TokenValidator interface {
	ValidateToken(token string) (*model.AuthorClaims, error)
}

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	authSvc TokenValidator
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authSvc TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// RequireAuthor validates the author JWT from the Authorization header
func (m *AuthMiddleware) RequireAuthor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.authSvc.ValidateToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), AuthorIDKey, claims.AuthorID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetAuthorID extracts the author ID from context
func GetAuthorID(ctx context.Context) string {
	if v, ok := ctx.Value(AuthorIDKey).(string); ok {
		return v
	}
	return ""
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
