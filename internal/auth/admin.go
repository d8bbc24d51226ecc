package auth

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// AdminOnly gates admin routes behind the shared secret, supplied either as
// the x-admin-password header or an admin_password field in a JSON body.
// The configured secret may be plaintext (compared in constant time) or a
// bcrypt hash.
func AdminOnly(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				writeAuthError(w, http.StatusInternalServerError, "Admin password not configured")
				return
			}
			provided := r.Header.Get("x-admin-password")
			if provided == "" {
				provided = adminPasswordFromBody(r)
			}
			if provided == "" || !secretMatches(secret, provided) {
				writeAuthError(w, http.StatusUnauthorized, "Invalid admin credentials")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func secretMatches(secret, provided string) bool {
	if strings.HasPrefix(secret, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(secret), []byte(provided)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(provided)) == 1
}

// adminPasswordFromBody peeks at a JSON body for admin_password and restores
// the body for the downstream handler.
func adminPasswordFromBody(r *http.Request) string {
	if r.Body == nil {
		return ""
	}
	ct := r.Header.Get("Content-Type")
	if ct != "" && !strings.HasPrefix(ct, "application/json") {
		return ""
	}
	body, err := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	var probe struct {
		AdminPassword string `json:"admin_password"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return ""
	}
	return probe.AdminPassword
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
