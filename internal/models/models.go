package models

import (
	"time"
)

// Document is a row in the documents table, written by the upstream
// recognition stage. The chunker only ever reads it.
type Document struct {
	ID         int64     `db:"id" json:"id"`
	DocumentID string    `db:"document_id" json:"document_id"`
	ClientID   string    `db:"client_id" json:"client_id"`
	Filename   string    `db:"filename" json:"filename"`
	Fulltext   string    `db:"fulltext" json:"fulltext"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Chunk is one token-bounded unit of document text prepared for
// embedding and retrieval.
//
// ChunkID is derived from the document id and the chunk index
// ("c_{document_id}_{chunk_index}"), so re-chunking the same document
// upserts in place instead of duplicating rows.
type Chunk struct {
	ChunkID      string    `db:"chunk_id" json:"chunk_id"`
	DocumentID   string    `db:"document_id" json:"document_id"`
	ClientID     string    `db:"client_id" json:"client_id"`
	ChunkIndex   int       `db:"chunk_index" json:"chunk_index"`
	Text         string    `db:"text" json:"text"`
	Heading      *string   `db:"heading" json:"heading,omitempty"`
	HeadingLevel int       `db:"heading_level" json:"heading_level"`
	ChunkType    string    `db:"chunk_type" json:"chunk_type"`
	TokenCount   int       `db:"token_count" json:"token_count"`
	Embedding    []float32 `db:"embedding" json:"embedding,omitempty"` // pgvector column, nil when embedding was skipped
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ChunkingResult is the completion event published after a document has
// been processed. Status is "success" or "error".
type ChunkingResult struct {
	Status      string         `json:"status"`
	DocumentID  string         `json:"document_id"`
	ClientID    string         `json:"client_id,omitempty"`
	ChunksCount int            `json:"chunks_count,omitempty"`
	ChunkTypes  map[string]int `json:"chunk_types,omitempty"`
	Error       string         `json:"error,omitempty"`
	ProcessedAt time.Time      `json:"processed_at"`
}
