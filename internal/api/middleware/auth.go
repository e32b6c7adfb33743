package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/clauselens/clauselens/internal/api"
)

type contextKey string

// BearerAuth validates a static bearer token on every request. An empty
// token disables authentication, which is the local development default.
func BearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			presented, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				api.Error(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				api.Error(w, http.StatusUnauthorized, "invalid bearer token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
