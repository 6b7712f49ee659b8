// Package middleware provides HTTP middleware for caller identification.
package middleware

import (
	"context"
	"net/http"
	"strings"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// callerIDKey is the context key for storing the caller ID.
const callerIDKey ContextKey = "callerID"

// TokenValidator is an interface for validating JWT tokens.
// This allows the middleware to work with any JWT service implementation.
type TokenValidator interface {
	ValidateToken(tokenString string) (CallerIDGetter, error)
}

// CallerIDGetter is an interface for extracting the caller ID from token claims.
type CallerIDGetter interface {
	GetCallerID() string
}

// CallerMiddleware attaches the caller ID from a Bearer token to the request context.
// Requests without an Authorization header pass through as anonymous; a header that is
// present but invalid is rejected with 401. A nil validator makes every caller anonymous.
func CallerMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if validator == nil || authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			// Handle case-insensitive "Bearer" prefix
			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := validator.ValidateToken(parts[1])
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := WithCallerID(r.Context(), claims.GetCallerID())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithCallerID returns a context carrying callerID.
func WithCallerID(ctx context.Context, callerID string) context.Context {
	return context.WithValue(ctx, callerIDKey, callerID)
}

// CallerID returns the caller ID from the request context, or "" for anonymous callers.
func CallerID(r *http.Request) string {
	id, _ := r.Context().Value(callerIDKey).(string)
	return id
}
