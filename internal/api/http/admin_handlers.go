package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/mathathon/mathathon-server/internal/logger"
	"github.com/mathathon/mathathon-server/internal/quiz"
)

// POST /api/admin/add-question
// Finds or creates the module named in the payload, then creates the question
// against it.
func AddQuestionHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ModuleName string `json:"module_name"`
			questionPayload
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		if req.ModuleName == "" || req.Type == "" || req.QuestionText == "" {
			writeError(w, http.StatusBadRequest, "Module name, type, and question text are required")
			return
		}
		if !quiz.ValidType(req.Type) {
			writeError(w, http.StatusBadRequest, `Type must be "revision" or "mock"`)
			return
		}

		mod, err := store.CreateModule(r.Context(), req.ModuleName, quiz.Slugify(req.ModuleName))
		if err != nil {
			logger.Log.Error("add question: module", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to add question: "+err.Error())
			return
		}

		q := req.questionPayload.question()
		q.ModuleID = mod.ID
		if err := quiz.ValidateQuestion(q); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		created, err := store.CreateQuestion(r.Context(), quiz.NormalizeQuestion(q))
		if err != nil {
			logger.Log.Error("add question", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to add question: "+err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"ok":       true,
			"question": created,
			"module":   mod,
		})
	}
}

type adminAttempt struct {
	quiz.Attempt
	ModuleName string          `json:"module_name"`
	DetailsDoc json.RawMessage `json:"details"`
}

// GET /api/admin/attempts
// Attempt log enhanced with module names and deserialized details.
func AdminAttemptsHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attempts, err := store.ListAttempts(r.Context())
		if err != nil {
			logger.Log.Error("admin attempts", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to fetch attempts")
			return
		}
		modules, err := store.ListModules(r.Context())
		if err != nil {
			logger.Log.Error("admin attempts: modules", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to fetch attempts")
			return
		}
		names := make(map[quiz.RecordID]string, len(modules))
		for _, m := range modules {
			names[m.ID] = m.Name
		}

		out := make([]adminAttempt, 0, len(attempts))
		for _, a := range attempts {
			name, ok := names[a.ModuleID]
			if !ok {
				name = "Unknown Module"
			}
			out = append(out, adminAttempt{
				Attempt:    a,
				ModuleName: name,
				DetailsDoc: detailsDocument(a.Details),
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func detailsDocument(details string) json.RawMessage {
	if json.Valid([]byte(details)) {
		return json.RawMessage(details)
	}
	quoted, _ := json.Marshal(details)
	return quoted
}

// GET /api/admin/stats
func AdminStatsHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := quiz.ComputeStats(r.Context(), store)
		if err != nil {
			logger.Log.Error("admin stats", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to fetch stats")
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

// POST /api/admin/import-csv
// Accepts a multipart "file" field or a raw CSV body.
func ImportCSVHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var src io.Reader = r.Body
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			f, _, err := r.FormFile("file")
			if err != nil {
				writeError(w, http.StatusBadRequest, "file required")
				return
			}
			defer f.Close()
			src = f
		}
		res, err := quiz.ImportCSV(r.Context(), store, src)
		if err != nil {
			if errors.Is(err, quiz.ErrBadCSV) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			logger.Log.Error("import csv", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to import CSV")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":       true,
			"imported": res.Imported,
			"skipped":  res.Skipped,
		})
	}
}
