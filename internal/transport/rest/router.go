package rest

import (
	"net/http"
	"os"

	"studybuilder/internal/service"
	"studybuilder/internal/transport/rest/handler"
	"studybuilder/internal/transport/rest/middleware"
	"studybuilder/internal/transport/ws"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService  *service.AuthService
	StudyService *service.StudyService
	WSHub        *ws.Hub
	Logger       *zap.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	authHandler := handler.NewAuthHandler(c.AuthService)
	studyHandler := handler.NewStudyHandler(c.StudyService, c.Logger)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.StudyService, c.Logger)

	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// WebSocket routes (token in query param)
	v1.HandleFunc("/ws/studies/{studyId}", wsHandler.StudyWS).Methods("GET")

	// Author routes
	authorRoutes := v1.NewRoute().Subrouter()
	authorRoutes.Use(authMW.RequireAuthor)

	authorRoutes.HandleFunc("/studies", studyHandler.Create).Methods("POST", "OPTIONS")
	authorRoutes.HandleFunc("/studies/{studyId}", studyHandler.Get).Methods("GET", "OPTIONS")
	authorRoutes.HandleFunc("/studies/{studyId}/questionnaire", studyHandler.ApplyTemplate).Methods("POST", "OPTIONS")
	authorRoutes.HandleFunc("/studies/{studyId}/questionnaire", studyHandler.Questionnaire).Methods("GET", "OPTIONS")
	authorRoutes.HandleFunc("/templates/{templateId}/preview", studyHandler.Preview).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
