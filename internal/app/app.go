package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/docrag/semantic-chunker/internal/config"
	"github.com/docrag/semantic-chunker/internal/core"
	"github.com/docrag/semantic-chunker/internal/core/chunker"
	"github.com/docrag/semantic-chunker/internal/core/chunking_engine"
	db "github.com/docrag/semantic-chunker/internal/core/database"
	"github.com/docrag/semantic-chunker/internal/core/llm"
)

type App struct {
	DBClient core.DbClient
	Engine   *chunking_engine.Engine
	Server   *Server

	closeEmbedder func() error
}

func NewApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info("database initialized and ready")

	app := &App{DBClient: dbClient}

	var embedder core.EmbeddingProvider
	embedAvailable := false
	switch cfg.EmbedProvider {
	case "ollama":
		ollama := llm.NewOllamaEmbedder(cfg.OllamaBaseURL, cfg.EmbeddingModel)
		embedder = ollama
		embedAvailable = ollama.CheckConnection(appCtx)
		if embedAvailable {
			log.Info("embedding service is available", "model", cfg.EmbeddingModel)
		} else {
			log.Warn("embedding service not available, chunks will be stored without embeddings")
		}
	case "gemini":
		gemini, err := llm.NewGeminiEmbedder(appCtx, cfg.GeminiAPIKey, cfg.GeminiEmbedModel)
		if err != nil {
			_ = dbClient.Close()
			return nil, fmt.Errorf("couldn't initialize the embedder: %w", err)
		}
		embedder = gemini
		embedAvailable = true
		app.closeEmbedder = gemini.Close
	case "none":
		log.Info("embedding disabled by configuration")
	default:
		_ = dbClient.Close()
		return nil, fmt.Errorf("unknown EMBED_PROVIDER %q", cfg.EmbedProvider)
	}

	counter := chunker.NewTokenCounter(cfg.CharsPerToken)
	docChunker := chunker.New(chunker.Config{
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
	}, counter)

	engine := chunking_engine.NewEngine(
		dbClient,
		embedder,
		docChunker,
		chunking_engine.NewLogPublisher(log),
		chunking_engine.EngineConfig{EmbedBatchSize: cfg.EmbedBatchSize},
		log,
	)
	engine.SetEmbeddingAvailable(embedAvailable)

	app.Engine = engine
	app.Server = NewServer(cfg, dbClient, engine, embedder, log)

	return app, nil
}

func (a *App) Close() {
	if a.closeEmbedder != nil {
		_ = a.closeEmbedder()
	}
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
