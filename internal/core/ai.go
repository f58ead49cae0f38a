package core

import "context"

// EmbeddingProvider turns chunk texts into vectors for pgvector storage.
// Implementations: Ollama (default) and Gemini.
type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
