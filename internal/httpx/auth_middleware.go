package httpx

import (
	"net/http"
	"strings"

	"bookcatalog/internal/platform/crypto"
)

// AuthMiddleware rejects requests without a valid bearer token and stores the
// token subject in the request context.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Missing bearer token", nil)
				return
			}

			claims, err := crypto.ParseToken(secret, token)
			if err != nil {
				JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token", nil)
				return
			}

			ctx := ContextWithUser(r.Context(), claims.Sub, claims.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
