package http

import (
	"net/http"
	"time"
)

// GET /health
func HealthHandler(databaseKind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "OK",
			"timestamp": time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
			"database":  databaseKind,
		})
	}
}

// GET /
func RootHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Mathathon API Server",
			"version": "1.0.0",
			"endpoints": map[string]string{
				"auth":      "/api/auth",
				"modules":   "/api/modules",
				"questions": "/api/questions",
				"attempts":  "/api/attempts",
				"admin":     "/api/admin",
			},
		})
	}
}
