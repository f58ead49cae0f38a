// Package chunking_engine runs the per-document pipeline: fetch fulltext,
// chunk, embed, persist, publish a completion event. The chunking itself is
// pure and lives in the chunker package; this package owns the plumbing.
package chunking_engine

import (
	"context"
	"log/slog"

	"github.com/docrag/semantic-chunker/internal/core"
	"github.com/docrag/semantic-chunker/internal/core/chunker"
)

// ChunkRequest asks for one document to be chunked. It mirrors the fields
// of the upstream recognition-stage completion event.
type ChunkRequest struct {
	DocumentID string `json:"document_id"`
	ClientID   string `json:"client_id"`
}

// EngineConfig tunes the pipeline.
//
// EmbedBatchSize: chunks embedded per provider call.
// EmbedWorkers:   concurrent embedding batches per document.
type EngineConfig struct {
	EmbedBatchSize int
	EmbedWorkers   int
}

// Engine consumes chunk requests from a bounded in-memory queue. The queue
// stands in for the broker subscription, which is owned by the deployment,
// not this service.
type Engine struct {
	db        core.DbClient
	embedder  core.EmbeddingProvider // nil disables embedding
	chunker   *chunker.Chunker
	publisher core.ResultPublisher
	cfg       EngineConfig
	log       *slog.Logger

	embedAvailable bool
	jobs           chan ChunkRequest
}

// NewEngine constructs the engine with a bounded job queue (64).
func NewEngine(dbc core.DbClient, emb core.EmbeddingProvider, ch *chunker.Chunker, pub core.ResultPublisher, cfg EngineConfig, log *slog.Logger) *Engine {
	if cfg.EmbedBatchSize <= 0 {
		cfg.EmbedBatchSize = 16
	}
	if cfg.EmbedWorkers <= 0 {
		cfg.EmbedWorkers = 2
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		db: dbc, embedder: emb, chunker: ch, publisher: pub, cfg: cfg,
		log:            log.With("component", "chunking_engine"),
		embedAvailable: emb != nil,
		jobs:           make(chan ChunkRequest, 64),
	}
}

// SetEmbeddingAvailable toggles embedding after a startup health check.
// Chunks are still persisted without vectors when disabled.
func (e *Engine) SetEmbeddingAvailable(ok bool) {
	e.embedAvailable = ok && e.embedder != nil
}

// Start runs numWorkers goroutines reading from the job queue until ctx is
// cancelled.
func (e *Engine) Start(ctx context.Context, numWorkers int) {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	for w := 1; w <= numWorkers; w++ {
		go func(w int) {
			for {
				select {
				case <-ctx.Done():
					e.log.Info("worker shutting down", "worker", w)
					return
				case req := <-e.jobs:
					if err := e.ProcessOne(ctx, req); err != nil {
						e.log.Error("chunking failed", "worker", w, "document_id", req.DocumentID, "error", err)
					}
				}
			}
		}(w)
	}
}

// Enqueue schedules a chunk request. Blocks while the queue is full.
func (e *Engine) Enqueue(req ChunkRequest) {
	e.jobs <- req
}
