// Package middleware holds the request-level auth plumbing for the
// token deployment.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"todoservice/internal/token"
)

type contextKey string

// userIDKey carries the authenticated caller's user id through the
// request context.
const userIDKey contextKey = "userID"

// AuthMiddleware rejects requests without a valid bearer token and
// stores the verified user id in the request context.
func AuthMiddleware(signer *token.Signer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				unauthorized(w, "missing bearer token")
				return
			}

			userID, err := signer.Verify(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				unauthorized(w, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID extracts the authenticated user id placed by AuthMiddleware.
func UserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   "auth",
		"message": message,
	})
}
