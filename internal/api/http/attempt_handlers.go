package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mathathon/mathathon-server/internal/logger"
	"github.com/mathathon/mathathon-server/internal/quiz"
)

// POST /api/attempts
func CreateAttemptHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username         string          `json:"username"`
			ModuleID         string          `json:"module_id"`
			Type             string          `json:"type"`
			DatetimeISO      string          `json:"datetime_iso"`
			Score            *float64        `json:"score"`
			TimeTakenSeconds *int            `json:"time_taken_seconds"`
			Details          json.RawMessage `json:"details"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		if req.Username == "" || req.ModuleID == "" || req.Type == "" || req.DatetimeISO == "" {
			writeError(w, http.StatusBadRequest, "Username, module_id, type, and datetime_iso are required")
			return
		}
		if !quiz.ValidType(req.Type) {
			writeError(w, http.StatusBadRequest, `Type must be "revision" or "mock"`)
			return
		}
		if !quiz.ValidISODatetime(req.DatetimeISO) {
			writeError(w, http.StatusBadRequest, "datetime_iso must be in ISO 8601 format")
			return
		}
		if req.Type == quiz.TypeMock && (req.Score == nil || req.TimeTakenSeconds == nil) {
			writeError(w, http.StatusBadRequest, "Mock attempts require score and time_taken_seconds")
			return
		}

		a, err := store.CreateAttempt(r.Context(), quiz.Attempt{
			Username:         req.Username,
			ModuleID:         quiz.RecordID(req.ModuleID),
			Type:             req.Type,
			DatetimeISO:      req.DatetimeISO,
			Score:            req.Score,
			TimeTakenSeconds: req.TimeTakenSeconds,
			Details:          detailsString(req.Details),
		})
		if err != nil {
			logger.Log.Error("create attempt", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to create attempt")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "attemptId": a.ID})
	}
}

// detailsString serializes the opaque details document to the string form
// both backends store: a JSON string literal keeps its inner value, anything
// else is stored as its JSON text, absent becomes "{}".
func detailsString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// GET /api/attempts
func ListAttemptsHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attempts, err := store.ListAttempts(r.Context())
		if err != nil {
			logger.Log.Error("list attempts", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to fetch attempts")
			return
		}
		writeJSON(w, http.StatusOK, attempts)
	}
}

// GET /api/attempts/user/{username}
func ListAttemptsByUserHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attempts, err := store.ListAttemptsByUser(r.Context(), chi.URLParam(r, "username"))
		if err != nil {
			logger.Log.Error("list user attempts", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to fetch user attempts")
			return
		}
		writeJSON(w, http.StatusOK, attempts)
	}
}

// GET /api/attempts/module/{moduleID}
func ListAttemptsByModuleHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attempts, err := store.ListAttemptsByModule(r.Context(), quiz.RecordID(chi.URLParam(r, "moduleID")))
		if err != nil {
			logger.Log.Error("list module attempts", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to fetch module attempts")
			return
		}
		writeJSON(w, http.StatusOK, attempts)
	}
}
