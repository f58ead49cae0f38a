package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	Port        string
	JWTSecret   string

	// Chunking
	ChunkSize     int // token budget per chunk
	ChunkOverlap  int // tokens carried into the next chunk
	CharsPerToken int // heuristic divisor when the tokenizer is unavailable

	// Embeddings
	EmbedProvider    string // "ollama", "gemini" or "none"
	OllamaBaseURL    string
	EmbeddingModel   string
	EmbeddingDim     int
	GeminiAPIKey     string
	GeminiEmbedModel string

	// Worker pool
	WorkerCount    int
	EmbedBatchSize int
}

// LoadConfig loads the environment variables and returns the config.
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		Port:        getEnv("PORT", "8080"),
		JWTSecret:   getEnv("JWT_SECRET", ""),

		ChunkSize:     getEnvInt("CHUNK_SIZE", 500),
		ChunkOverlap:  getEnvInt("CHUNK_OVERLAP", 50),
		CharsPerToken: getEnvInt("TOKENIZER_CHARS_PER_TOKEN", 4),

		EmbedProvider:    getEnv("EMBED_PROVIDER", "ollama"),
		OllamaBaseURL:    getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		EmbeddingModel:   getEnv("EMBEDDING_MODEL", "evilfreelancer/enbeddrus"),
		EmbeddingDim:     getEnvInt("EMBEDDING_DIMENSION", 768),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiEmbedModel: getEnv("GEMINI_EMBED_MODEL", "text-embedding-004"),

		WorkerCount:    getEnvInt("WORKER_COUNT", 2),
		EmbedBatchSize: getEnvInt("EMBED_BATCH_SIZE", 16),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}
