package auth

import (
	"context"
	"net/http"
	"strings"
)

// contextKey is an unexported type for context keys in this package, so no
// other package can read or shadow the identity value.
type contextKey string

const userIDKey contextKey = "userID"

// Identify resolves the caller's identity from the Authorization header and
// stores it in the request context.
//
// It never rejects a request. A missing header, a malformed token, a bad
// signature, or an expired token all degrade to anonymous; each operation
// decides for itself whether anonymous access is acceptable. Write
// operations reject anonymous callers in the service layer.
func Identify(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			tokenStr := strings.TrimPrefix(header, "Bearer ")
			userID, err := tokens.Validate(tokenStr)
			if err != nil || userID == "" {
				// Invalid token degrades to anonymous, same as no token.
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext retrieves the authenticated user's ID from the request
// context. Returns ("", false) for anonymous requests.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// WithUserID returns a context carrying the given user ID. Used by tests to
// simulate an authenticated request without running the middleware.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}
