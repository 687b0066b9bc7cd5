package auth

import (
	"context"
	"net/http"
	"strings"
)

// contextKey is an unexported type for context keys in this package, so only
// this package can read or write the authenticated user id.
type contextKey string

const userIDKey contextKey = "userID"

// TokenCookie is the cookie the GitHub callback sets for browser clients.
// API clients send the same token in the Authorization header instead.
const TokenCookie = "token"

// RequireAuth enforces authentication on protected routes. The token is read
// from the "Authorization: Bearer <token>" header, falling back to the token
// cookie. On success the userID is stored in the request context; otherwise
// the chain stops with a 401 envelope.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := extractToken(r)
			if !ok {
				writeUnauthorized(w, "Authorization token required")
				return
			}

			userID, err := tokens.Validate(raw)
			if err != nil {
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext retrieves the authenticated user's id from the request
// context. Returns ("", false) when the request carried no valid token.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// extractToken finds the raw token string: Authorization header first, then
// the cookie set for browser sessions.
func extractToken(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || raw == "" {
			return "", false
		}
		return raw, true
	}

	cookie, err := r.Cookie(TokenCookie)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// writeUnauthorized emits the standard error envelope without importing the
// handler package, which sits above this one.
func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"status":"error","message":"` + message + `","data":{}}`))
}
