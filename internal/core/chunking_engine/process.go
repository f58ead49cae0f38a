package chunking_engine

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/docrag/semantic-chunker/internal/models"
)

// ProcessOne runs the whole pipeline for a single document. Conditions the
// upstream must hear about (missing document, empty text, zero chunks,
// failed persistence) are published as error events; embedding trouble is
// not fatal and only costs the vectors.
func (e *Engine) ProcessOne(ctx context.Context, req ChunkRequest) error {
	log := e.log.With("document_id", req.DocumentID)

	doc, err := e.db.GetDocumentFulltext(ctx, req.DocumentID)
	if err != nil {
		e.publishError(ctx, req, fmt.Sprintf("fetch document: %v", err))
		return fmt.Errorf("fetch document: %w", err)
	}
	if doc == nil {
		log.Error("document not found")
		e.publishError(ctx, req, "Document not found")
		return nil
	}

	clientID := req.ClientID
	if clientID == "" {
		clientID = doc.ClientID
	}

	if doc.Fulltext == "" {
		log.Warn("empty fulltext")
		e.publishError(ctx, req, "Empty document text")
		return nil
	}

	log.Info("chunking document", "chars", len(doc.Fulltext))
	chunks := e.chunker.ChunkDocument(doc.Fulltext, req.DocumentID, clientID)
	if len(chunks) == 0 {
		log.Warn("no chunks created")
		e.publishError(ctx, req, "No chunks created")
		return nil
	}

	if e.embedAvailable {
		if err := e.embedChunks(ctx, chunks); err != nil {
			return err
		}
	} else {
		log.Info("skipping embedding generation", "chunks", len(chunks))
	}

	saved, err := e.db.UpsertChunks(ctx, chunks)
	if err != nil {
		e.publishError(ctx, req, fmt.Sprintf("save chunks: %v", err))
		return fmt.Errorf("save chunks: %w", err)
	}

	if err := e.db.MarkDocumentChunked(ctx, req.DocumentID, saved); err != nil {
		log.Warn("mark chunked failed", "error", err)
	}

	log.Info("saved chunks", "count", saved)

	return e.publisher.PublishResult(ctx, models.ChunkingResult{
		Status:      "success",
		DocumentID:  req.DocumentID,
		ClientID:    clientID,
		ChunksCount: saved,
		ChunkTypes:  chunkTypeSummary(chunks),
		ProcessedAt: time.Now().UTC(),
	})
}

// embedChunks fills in Embedding for each chunk, batching provider calls
// and running batches concurrently. A failed batch logs and leaves its
// chunks without vectors.
func (e *Engine) embedChunks(ctx context.Context, chunks []models.Chunk) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.EmbedWorkers)

	for start := 0; start < len(chunks); start += e.cfg.EmbedBatchSize {
		end := min(start+e.cfg.EmbedBatchSize, len(chunks))
		batch := chunks[start:end]

		g.Go(func() error {
			texts := make([]string, len(batch))
			for i := range batch {
				texts[i] = batch[i].Text
			}
			vecs, err := e.embedder.EmbedTexts(gctx, texts)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				e.log.Warn("embedding batch failed", "size", len(batch), "error", err)
				return nil
			}
			if len(vecs) != len(batch) {
				e.log.Warn("embedding size mismatch", "got", len(vecs), "want", len(batch))
				return nil
			}
			for i := range batch {
				batch[i].Embedding = vecs[i]
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}

	embedded := 0
	for i := range chunks {
		if len(chunks[i].Embedding) > 0 {
			embedded++
		}
	}
	e.log.Info("generated embeddings", "embedded", embedded, "chunks", len(chunks))
	return nil
}

func (e *Engine) publishError(ctx context.Context, req ChunkRequest, msg string) {
	result := models.ChunkingResult{
		Status:      "error",
		DocumentID:  req.DocumentID,
		ClientID:    req.ClientID,
		Error:       msg,
		ProcessedAt: time.Now().UTC(),
	}
	if err := e.publisher.PublishResult(ctx, result); err != nil {
		e.log.Error("publish error event failed", "document_id", req.DocumentID, "error", err)
	}
}

func chunkTypeSummary(chunks []models.Chunk) map[string]int {
	summary := make(map[string]int)
	for i := range chunks {
		summary[chunks[i].ChunkType]++
	}
	return summary
}
