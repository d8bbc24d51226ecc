package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mathathon/mathathon-server/internal/logger"
	"github.com/mathathon/mathathon-server/internal/quiz"
)

// GET /api/modules
func ListModulesHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		modules, err := store.ListModules(r.Context())
		if err != nil {
			logger.Log.Error("list modules", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to fetch modules")
			return
		}
		writeJSON(w, http.StatusOK, modules)
	}
}

// GET /api/modules/{moduleID}
func GetModuleHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := quiz.RecordID(chi.URLParam(r, "moduleID"))
		m, err := store.GetModuleByID(r.Context(), id)
		if errors.Is(err, quiz.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Module not found")
			return
		}
		if err != nil {
			logger.Log.Error("get module", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to fetch module")
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

// POST /api/modules {name}
func CreateModuleHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name string `json:"name"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "Module name is required")
			return
		}
		m, err := store.CreateModule(r.Context(), req.Name, quiz.Slugify(req.Name))
		if err != nil {
			logger.Log.Error("create module", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to create module")
			return
		}
		writeJSON(w, http.StatusCreated, m)
	}
}
