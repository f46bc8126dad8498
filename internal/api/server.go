// Package api exposes the application services as a REST/JSON API.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/potluckapp/potluck/internal/auth"
	"github.com/potluckapp/potluck/internal/middleware"
	"github.com/potluckapp/potluck/internal/service"
	"github.com/potluckapp/potluck/internal/uploads"
)

// Server holds the services the handlers delegate to.
type Server struct {
	auth    *service.AuthService
	groups  *service.GroupService
	recipes *service.RecipeService
	tokens  *auth.JWTManager
	images  *uploads.ImageStore
	origin  string
}

// New creates a Server wired to the given services.
func New(
	authSvc *service.AuthService,
	groupSvc *service.GroupService,
	recipeSvc *service.RecipeService,
	tokens *auth.JWTManager,
	images *uploads.ImageStore,
	origin string,
) *Server {
	return &Server{
		auth:    authSvc,
		groups:  groupSvc,
		recipes: recipeSvc,
		tokens:  tokens,
		images:  images,
		origin:  origin,
	}
}

// Router builds the HTTP routing table. Everything except register,
// login, health, metrics and uploaded images requires a bearer token.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.CORS(s.origin))
	r.Use(middleware.Metrics)
	r.Use(middleware.RequestLogger)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.images.Dir()))))

	r.Post("/auth/register", s.handleRegister)
	r.Post("/auth/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(s.tokens))

		r.Get("/auth/me", s.handleCurrentUser)

		r.Get("/groups", s.handleListGroups)
		r.Post("/groups", s.handleCreateGroup)
		r.Post("/groups/join", s.handleJoinGroup)
		r.Get("/groups/{id}", s.handleGroupDetail)
		r.Put("/groups/{id}", s.handleUpdateGroup)
		r.Post("/groups/{id}/leave", s.handleLeaveGroup)
		r.Post("/groups/{id}/regenerate-invite", s.handleRegenerateInvite)

		r.Get("/recipes", s.handleFeed)
		r.Post("/recipes", s.handleCreateRecipe)
		r.Get("/recipes/{id}", s.handleRecipeDetail)
		r.Put("/recipes/{id}", s.handleUpdateRecipe)
		r.Delete("/recipes/{id}", s.handleDeleteRecipe)
		r.Post("/recipes/{id}/comments", s.handleAddComment)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
