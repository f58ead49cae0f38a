package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/docrag/semantic-chunker/internal/api/handlers"
	appMiddleware "github.com/docrag/semantic-chunker/internal/api/middlewares"
	"github.com/docrag/semantic-chunker/internal/config"
	"github.com/docrag/semantic-chunker/internal/core"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	log        *slog.Logger
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, dbc core.DbClient, engine handlers.Enqueuer, embedder core.EmbeddingProvider, log *slog.Logger) *Server {
	chunkingHandler := handlers.NewChunkingHandler(dbc, engine, embedder, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// public endpoints
	r.Get("/api/healthz", chunkingHandler.Healthz)

	// protected endpoints
	r.Group(func(protected chi.Router) {
		protected.Use(appMiddleware.JWTMiddleware(cfg.JWTSecret))
		protected.Post("/api/chunking/jobs", chunkingHandler.SubmitJob)
		protected.Get("/api/documents/{documentID}/chunks", chunkingHandler.GetDocumentChunks)
		protected.Post("/api/search", chunkingHandler.SearchChunks)
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv, log: log}
}

// Start runs the HTTP server.
func (s *Server) Start() {
	s.log.Info("http server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.log.Error("server error", "error", err)
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down http server")
	return s.httpServer.Shutdown(ctx)
}
