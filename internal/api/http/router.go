package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mathathon/mathathon-server/internal/auth"
	"github.com/mathathon/mathathon-server/internal/quiz"
)

// Deps carries everything the router needs, injected at startup.
type Deps struct {
	Store         quiz.Store
	Sessions      *auth.SessionService
	AdminPassword string
	DatabaseKind  string
	CORSOrigins   []string
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "x-admin-password"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", RootHandler())
	r.Get("/health", HealthHandler(d.DatabaseKind))

	r.Route("/api", func(api chi.Router) {
		api.Use(auth.SessionMiddleware(d.Sessions))

		api.Post("/auth/login", LoginHandler(d.Store, d.Sessions))
		api.Get("/auth/session", SessionHandler())
		api.Post("/auth/logout", LogoutHandler(d.Sessions))

		api.Get("/modules", ListModulesHandler(d.Store))
		api.Get("/modules/{moduleID}", GetModuleHandler(d.Store))
		api.Post("/modules", CreateModuleHandler(d.Store))

		api.Get("/questions/{moduleID}/{qtype}", ListQuestionsHandler(d.Store))
		api.Get("/questions/{questionID}", GetQuestionHandler(d.Store))
		api.Post("/questions", CreateQuestionHandler(d.Store))

		api.Post("/attempts", CreateAttemptHandler(d.Store))
		api.Get("/attempts", ListAttemptsHandler(d.Store))
		api.Get("/attempts/user/{username}", ListAttemptsByUserHandler(d.Store))
		api.Get("/attempts/module/{moduleID}", ListAttemptsByModuleHandler(d.Store))

		api.Route("/admin", func(ar chi.Router) {
			ar.Use(auth.AdminOnly(d.AdminPassword))
			ar.Post("/add-question", AddQuestionHandler(d.Store))
			ar.Get("/attempts", AdminAttemptsHandler(d.Store))
			ar.Get("/stats", AdminStatsHandler(d.Store))
			ar.Post("/import-csv", ImportCSVHandler(d.Store))
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Endpoint not found")
	})

	return r
}
