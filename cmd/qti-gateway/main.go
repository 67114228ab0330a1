package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/artpromedia/aivo-qti/internal/api/http"
	"github.com/artpromedia/aivo-qti/internal/auth"
	"github.com/artpromedia/aivo-qti/internal/bank"
	"github.com/artpromedia/aivo-qti/internal/config"
	"github.com/artpromedia/aivo-qti/internal/qti/processor"
)

func main() {
	cfg := config.FromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := bank.Open(ctx, bank.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := bank.NewSQLStore(dbh, cfg.DBDriver)
	proc := processor.New()
	authSvc := auth.NewAuthService(cfg.AuthSecret)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", api.MetricsHandler())
	r.Post("/auth/login", auth.LoginHandler(authSvc, cfg.AdminUser, cfg.AdminPassHash))

	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.Post("/qti/items", api.ParseItemHandler(store))
		pr.Post("/qti/import", api.ImportPackageHandler(store))
		pr.Get("/qti/items/{itemID}", api.GetItemHandler(store))
		pr.Get("/qti/items/{itemID}/export", api.ExportItemHandler(store))
		pr.Post("/qti/items/{itemID}/score", api.ScoreHandler(store, proc))
		pr.Get("/qti/results/{resultID}", api.GetResultHandler(store))
	})

	log.Printf("qti-gateway listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Fatal(err)
	}
}
