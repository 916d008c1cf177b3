package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/lebanesebrotherhood/brotherhood/internal/auth"
)

type contextKey string

const (
	ContextKeyUserID      contextKey = "user_id"
	ContextKeyGlobalAdmin contextKey = "global_admin"
)

// Auth validates the bearer token and stores the caller in the context.
func Auth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeError(w, http.StatusUnauthorized, "Unauthenticated.")
				return
			}

			claims, err := jwtManager.ParseAndValidate(strings.TrimSpace(parts[1]))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Unauthenticated.")
				return
			}

			userID, err := claims.UserID()
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Unauthenticated.")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUserID, userID)
			ctx = context.WithValue(ctx, ContextKeyGlobalAdmin, claims.GlobalAdmin)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID returns the authenticated user id, zero when absent.
func GetUserID(ctx context.Context) int64 {
	val, _ := ctx.Value(ContextKeyUserID).(int64)
	return val
}

// IsGlobalAdmin reports the admin claim of the token.
func IsGlobalAdmin(ctx context.Context) bool {
	val, _ := ctx.Value(ContextKeyGlobalAdmin).(bool)
	return val
}
