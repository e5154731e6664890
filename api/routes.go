package api

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/segtrack/carnets/internal/config"
	"github.com/segtrack/carnets/pkg/repository"
)

func SetupRoutes(cfg *config.Config, version, buildTime string, repo repository.CarnetRepo) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)
	r.Use(MetricsMiddleware)

	// Create handlers
	systemHandler := &SystemHandler{}
	carnetsHandler := NewCarnetsHandler(repo, nil)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	if cfg.Auth.Enabled {
		authHandler := NewAuthHandler(cfg.Auth)
		r.HandleFunc("/v1/auth/signin", authHandler.Signin).Methods("POST")
	}

	// API v1 routes; token-protected only when an admin account is configured
	apiV1 := r.PathPrefix("/v1").Subrouter()
	if cfg.Auth.Enabled {
		apiV1.Use(JWTAuthMiddlewareWithSecret(cfg.Auth.JWTSecret))
	}

	apiV1.HandleFunc("/carnets", carnetsHandler.List).Methods("GET")
	apiV1.HandleFunc("/carnets", carnetsHandler.Create).Methods("POST")
	apiV1.HandleFunc("/carnets/alerts", carnetsHandler.Alerts).Methods("GET")
	apiV1.HandleFunc("/carnets/search", carnetsHandler.Search).Methods("GET")
	apiV1.HandleFunc("/carnets/import-excel", carnetsHandler.ImportExcel).Methods("POST")
	apiV1.HandleFunc("/carnets/export-excel", carnetsHandler.ExportExcel).Methods("GET")
	apiV1.HandleFunc("/carnets/{id:[0-9]+}", carnetsHandler.Get).Methods("GET")
	apiV1.HandleFunc("/carnets/{id:[0-9]+}", carnetsHandler.Update).Methods("PUT")
	apiV1.HandleFunc("/carnets/{id:[0-9]+}", carnetsHandler.Delete).Methods("DELETE")
	apiV1.HandleFunc("/statistics", carnetsHandler.Statistics).Methods("GET")

	return r
}
