package httpapi

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// BCryptCost is the cost factor used when hashing the admin key.
const BCryptCost = 12

// HashAdminKey bcrypt-hashes a plaintext admin key for storage in
// configuration, grounded on the reference service's API key hashing.
func HashAdminKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), BCryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func extractBearerToken(header string) string {
	token := strings.TrimSpace(header)
	if len(token) >= 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}

// requireAdmin wraps a handler to reject requests whose bearer token does
// not match the configured, bcrypt-hashed admin key.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, "missing bearer token")
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(s.adminKeyHash), []byte(token)) != nil {
			writeError(w, r, http.StatusForbidden, ErrCodeForbidden, "invalid admin key")
			return
		}
		next.ServeHTTP(w, r)
	}
}
