package core

import (
	"context"

	"github.com/docrag/semantic-chunker/internal/models"
)

// DbClient defines all persistence operations the chunking pipeline needs.
// It abstracts Postgres/pgvector so higher layers never depend on a specific DB.
type DbClient interface {
	GetDocumentFulltext(ctx context.Context, documentID string) (*models.Document, error)

	UpsertChunks(ctx context.Context, chunks []models.Chunk) (int, error)
	GetChunksByDocument(ctx context.Context, documentID string) ([]models.Chunk, error)
	SearchChunks(ctx context.Context, clientID string, queryVec []float32, limit int) ([]models.Chunk, error)
	MarkDocumentChunked(ctx context.Context, documentID string, chunkCount int) error

	Ping(ctx context.Context) error
	Close() error
}

// ResultPublisher delivers chunking completion events to the rest of the
// pipeline. The broker transport behind it is external to this service.
type ResultPublisher interface {
	PublishResult(ctx context.Context, result models.ChunkingResult) error
}
