package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Simplici0/fabestimate/internal/config"
	"github.com/Simplici0/fabestimate/internal/db"
	"github.com/Simplici0/fabestimate/internal/document"
	"github.com/Simplici0/fabestimate/internal/migrations"
	"github.com/Simplici0/fabestimate/internal/seed"
	"github.com/Simplici0/fabestimate/internal/store"
)

type server struct {
	store    *store.Store
	renderer *document.Renderer
}

func newServer(database *sql.DB, renderer *document.Renderer) *server {
	return &server{
		store:    store.New(database),
		renderer: renderer,
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := config.InitLogger(cfg.Log); err != nil {
		panic(err)
	}
	defer zap.L().Sync() //nolint:errcheck

	log := zap.L()
	ctx := context.Background()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatal("failed to open database", zap.String("path", cfg.DBPath), zap.Error(err))
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(ctx, database); err != nil {
			log.Fatal("failed to run database migrations", zap.Error(err))
		}
	}

	if _, err := seed.Run(ctx, database); err != nil {
		log.Fatal("failed to seed database", zap.Error(err))
	}

	srv := newServer(database, document.NewRenderer(document.Options{
		BusinessName:   cfg.BusinessName,
		CurrencySymbol: cfg.CurrencySymbol,
		CurrencyCode:   cfg.CurrencyCode,
	}))

	addr := ":" + cfg.Port
	log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := http.ListenAndServe(addr, srv.routes()); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/settings", s.handleSettings)
	r.Get("/staff-roles", s.handleStaffRoles)
	r.Get("/inventory", s.handleInventory)

	r.Post("/estimates/calculate", s.handleCalculate)
	r.Post("/estimates/document", s.handleDocument)

	r.Get("/projects", s.handleProjectsList)
	r.Get("/projects/{id}/estimate", s.handleProjectEstimate)
	r.Put("/projects/{id}/estimate", s.handleProjectEstimateSave)
	r.Get("/projects/{id}/document", s.handleProjectDocument)

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		zap.L().Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
