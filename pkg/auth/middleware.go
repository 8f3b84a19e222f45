package auth

import (
	"context"
	"encoding/json"
	"net/http"
)

// SessionValidator resolves a session cookie value to the signed-in admin.
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (*Principal, error)
}

// RequireAuth is the API variant of the session check: it answers 401 JSON
// instead of redirecting, and sets the principal in the context.
func RequireAuth(sv SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName())
			if err != nil || cookie.Value == "" {
				writeUnauthorized(w, "unauthorized")
				return
			}

			p, err := sv.ValidateSession(r.Context(), cookie.Value)
			if err != nil {
				writeUnauthorized(w, "invalid_session")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}
