package transport

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
)

// ErrUnauthorized indicates invalid or missing credentials.
var ErrUnauthorized = errors.New("unauthorized")

// checkToken reports whether the Authorization header carries token as a
// bearer credential.
func checkToken(header, token string) error {
	presented := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if presented == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
		return ErrUnauthorized
	}
	return nil
}

// AuthMiddleware enforces static bearer token authentication.
func AuthMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")) == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			if err := checkToken(auth, token); err != nil {
				http.Error(w, "invalid bearer token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
