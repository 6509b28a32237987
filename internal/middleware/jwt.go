package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Dev-2427/Dev-MyTodo/internal/session"
)

// JWTAuth validates the Bearer token on protected routes and stores the
// resolved user id and claims in the request context.
func JWTAuth(sessions *session.Manager, logger *zap.Logger) func(http.Handler) http.Handler {
	log := logger.Named("JWTAuth")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header is required", http.StatusUnauthorized)
				return
			}
			tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || tokenString == "" {
				http.Error(w, "Authorization header must be a Bearer token", http.StatusUnauthorized)
				return
			}

			claims, err := sessions.Parse(tokenString)
			if err != nil {
				log.Warn("Rejected session token", zap.Error(err))
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDCtxKey, claims.UserID())
			ctx = context.WithValue(ctx, ClaimsCtxKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext extracts the authenticated user id set by JWTAuth.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(string)
	return userID, ok && userID != ""
}

// ClaimsFromContext extracts the full session claims set by JWTAuth.
func ClaimsFromContext(ctx context.Context) (*session.Claims, bool) {
	claims, ok := ctx.Value(ClaimsCtxKey).(*session.Claims)
	return claims, ok
}
