package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/mathathon/mathathon-server/internal/auth"
	"github.com/mathathon/mathathon-server/internal/logger"
	"github.com/mathathon/mathathon-server/internal/quiz"
)

// POST /api/auth/login {username}
func LoginHandler(store quiz.Store, sessions *auth.SessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		username := strings.TrimSpace(req.Username)
		if username == "" {
			writeError(w, http.StatusBadRequest, "Username is required")
			return
		}
		if _, err := store.UpsertUser(r.Context(), username); err != nil {
			logger.Log.Error("login failed", zap.String("username", username), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Login failed")
			return
		}
		token, err := sessions.Issue(username)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Login failed")
			return
		}
		sessions.SetCookie(w, token)
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "username": username})
	}
}

// GET /api/auth/session
func SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := auth.UsernameFromContext(r.Context())
		if username == "" {
			writeJSON(w, http.StatusOK, map[string]any{"username": nil})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"username": username})
	}
}

// POST /api/auth/logout
func LogoutHandler(sessions *auth.SessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions.ClearCookie(w)
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "message": "Logged out successfully"})
	}
}
