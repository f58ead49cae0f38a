package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/docrag/semantic-chunker/internal/config"
	"github.com/docrag/semantic-chunker/internal/core"
	"github.com/docrag/semantic-chunker/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (core.DbClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	sqlDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Pool sized for a small worker service.
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, sqlDB, cfg.EmbeddingDim); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: sqlDB}, nil
}

func (c *DatabaseClient) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// GetDocumentFulltext returns the document row for a document_id, or
// (nil, nil) when no such document exists.
func (c *DatabaseClient) GetDocumentFulltext(ctx context.Context, documentID string) (*models.Document, error) {
	const q = `
		SELECT id, document_id, client_id, filename, fulltext, created_at
		FROM documents
		WHERE document_id = $1
	`
	var d models.Document
	err := c.db.QueryRowContext(ctx, q, documentID).Scan(
		&d.ID, &d.DocumentID, &d.ClientID, &d.Filename, &d.Fulltext, &d.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// UpsertChunks writes chunks in one transaction, keyed on chunk_id so that
// re-chunking the same document replaces rows instead of duplicating them.
// Returns the number of chunks written.
func (c *DatabaseClient) UpsertChunks(ctx context.Context, chunks []models.Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, err
	}

	const q = `
		INSERT INTO chunks
			(chunk_id, document_id, client_id, chunk_index,
			 text, heading, heading_level, chunk_type, token_count, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
		ON CONFLICT (chunk_id) DO UPDATE SET
			text = EXCLUDED.text,
			heading = EXCLUDED.heading,
			heading_level = EXCLUDED.heading_level,
			chunk_type = EXCLUDED.chunk_type,
			token_count = EXCLUDED.token_count,
			embedding = EXCLUDED.embedding,
			updated_at = now()
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	defer stmt.Close()

	for i := range chunks {
		ch := &chunks[i]
		var vec any
		if len(ch.Embedding) > 0 {
			vec = pgvector.NewVector(ch.Embedding)
		}
		if _, err := stmt.ExecContext(ctx,
			ch.ChunkID, ch.DocumentID, ch.ClientID, ch.ChunkIndex,
			ch.Text, ch.Heading, ch.HeadingLevel, ch.ChunkType, ch.TokenCount, vec,
		); err != nil {
			_ = tx.Rollback()
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(chunks), nil
}

func (c *DatabaseClient) GetChunksByDocument(ctx context.Context, documentID string) ([]models.Chunk, error) {
	const q = `
		SELECT chunk_id, document_id, client_id, chunk_index,
		       text, heading, heading_level, chunk_type, token_count, created_at
		FROM chunks
		WHERE document_id = $1
		ORDER BY chunk_index ASC
	`
	rows, err := c.db.QueryContext(ctx, q, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Chunk
	for rows.Next() {
		var ch models.Chunk
		if err := rows.Scan(
			&ch.ChunkID, &ch.DocumentID, &ch.ClientID, &ch.ChunkIndex,
			&ch.Text, &ch.Heading, &ch.HeadingLevel, &ch.ChunkType, &ch.TokenCount, &ch.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

// SearchChunks finds the top-k chunks for a client nearest to the query
// embedding, for the downstream retrieval path.
func (c *DatabaseClient) SearchChunks(ctx context.Context, clientID string, queryVec []float32, limit int) ([]models.Chunk, error) {
	const q = `
		SELECT chunk_id, document_id, client_id, chunk_index,
		       text, heading, heading_level, chunk_type, token_count, embedding
		FROM chunks
		WHERE client_id = $1 AND embedding IS NOT NULL
		ORDER BY embedding <-> $2
		LIMIT $3
	`
	vec := pgvector.NewVector(queryVec)
	rows, err := c.db.QueryContext(ctx, q, clientID, vec, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Chunk
	for rows.Next() {
		var (
			ch  models.Chunk
			emb pgvector.Vector
		)
		if err := rows.Scan(
			&ch.ChunkID, &ch.DocumentID, &ch.ClientID, &ch.ChunkIndex,
			&ch.Text, &ch.Heading, &ch.HeadingLevel, &ch.ChunkType, &ch.TokenCount, &emb,
		); err != nil {
			return nil, err
		}
		ch.Embedding = emb.Slice()
		out = append(out, ch)
	}
	return out, rows.Err()
}

// MarkDocumentChunked merges chunking status into the document's metadata.
func (c *DatabaseClient) MarkDocumentChunked(ctx context.Context, documentID string, chunkCount int) error {
	const q = `
		UPDATE documents
		SET metadata = COALESCE(metadata, '{}'::jsonb) || $2::jsonb,
		    updated_at = now()
		WHERE document_id = $1
	`
	meta, err := json.Marshal(map[string]any{
		"chunked":     true,
		"chunk_count": chunkCount,
	})
	if err != nil {
		return err
	}
	res, err := c.db.ExecContext(ctx, q, documentID, string(meta))
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("document not found: %s", documentID)
	}
	return nil
}
