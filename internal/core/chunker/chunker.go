// Package chunker partitions noisy markdown-ish document text into
// token-bounded, heading-aware, semantically typed chunks for embedding and
// retrieval. ChunkDocument is a pure function of its inputs and the
// configured budget/overlap: no I/O, no shared state, safe to call
// concurrently for different documents.
package chunker

import (
	"strings"

	"github.com/docrag/semantic-chunker/internal/models"
)

// Config carries the two chunking knobs.
type Config struct {
	ChunkSize    int // token budget per chunk
	ChunkOverlap int // tokens duplicated into the next chunk
}

func DefaultConfig() Config {
	return Config{ChunkSize: 500, ChunkOverlap: 50}
}

// Chunker is the assembler: heading parse, token-bounded split, type
// inference, stable per-document ids and contiguous indices.
type Chunker struct {
	splitter *Splitter
}

// New builds a Chunker. A nil counter gets the default tokenizer with its
// heuristic fallback; non-positive config values fall back to defaults.
func New(cfg Config, counter TokenCounter) *Chunker {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 500
	}
	if cfg.ChunkOverlap < 0 {
		cfg.ChunkOverlap = 0
	}
	if counter == nil {
		counter = NewTokenCounter(0)
	}
	return &Chunker{splitter: NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap, counter)}
}

// ChunkDocument returns the ordered chunk list for a document. Empty or
// whitespace-only text yields nil; the caller decides whether that is worth
// reporting. Chunk indices are contiguous from 0 across all sections.
func (c *Chunker) ChunkDocument(text, documentID, clientID string) []models.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	sections := ParseSections(text)
	if len(sections) == 0 {
		// ParseSections always emits at least one section for non-blank
		// input, but guard anyway.
		sections = []Section{{Content: text}}
	}

	var chunks []models.Chunk
	index := 0
	for _, sec := range sections {
		var out []models.Chunk
		out, index = c.splitter.SplitSection(sec, documentID, clientID, index)
		chunks = append(chunks, out...)
	}
	return chunks
}
