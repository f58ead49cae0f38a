package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	appMiddleware "github.com/docrag/semantic-chunker/internal/api/middlewares"
	"github.com/docrag/semantic-chunker/internal/core"
	"github.com/docrag/semantic-chunker/internal/core/chunking_engine"
)

// Enqueuer is the slice of the engine the handler needs.
type Enqueuer interface {
	Enqueue(req chunking_engine.ChunkRequest)
}

type ChunkingHandler struct {
	dbclient core.DbClient
	engine   Enqueuer
	embedder core.EmbeddingProvider // nil disables /api/search
	log      *slog.Logger
}

func NewChunkingHandler(dbclient core.DbClient, engine Enqueuer, embedder core.EmbeddingProvider, log *slog.Logger) *ChunkingHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ChunkingHandler{dbclient: dbclient, engine: engine, embedder: embedder, log: log.With("component", "api")}
}

type submitJobRequest struct {
	DocumentID string `json:"document_id"`
	ClientID   string `json:"client_id"`
}

type submitJobResponse struct {
	JobID      string `json:"job_id"`
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
}

// SubmitJob enqueues a document for chunking and returns 202. The document
// text itself must already be in the documents table.
func (h *ChunkingHandler) SubmitJob(w http.ResponseWriter, r *http.Request) {
	var req submitJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.DocumentID) == "" {
		http.Error(w, "document_id is required", http.StatusBadRequest)
		return
	}

	clientID := req.ClientID
	if authClient, ok := appMiddleware.ClientIDFromContext(r.Context()); ok && clientID == "" {
		clientID = authClient
	}

	jobID := uuid.NewString()
	h.engine.Enqueue(chunking_engine.ChunkRequest{
		DocumentID: req.DocumentID,
		ClientID:   clientID,
	})
	h.log.Info("chunking job accepted", "job_id", jobID, "document_id", req.DocumentID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(submitJobResponse{
		JobID:      jobID,
		DocumentID: req.DocumentID,
		Status:     "queued",
	})
}

// GetDocumentChunks returns the persisted chunks of a document in index order.
func (h *ChunkingHandler) GetDocumentChunks(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "documentID")
	if documentID == "" {
		http.Error(w, "documentID is required", http.StatusBadRequest)
		return
	}

	chunks, err := h.dbclient.GetChunksByDocument(r.Context(), documentID)
	if err != nil {
		h.log.Error("list chunks failed", "document_id", documentID, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(chunks)
}

type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

// SearchChunks embeds the query text and returns the authenticated client's
// nearest chunks by vector distance.
func (h *ChunkingHandler) SearchChunks(w http.ResponseWriter, r *http.Request) {
	if h.embedder == nil {
		http.Error(w, "search requires an embedding provider", http.StatusServiceUnavailable)
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}
	if req.TopK <= 0 {
		req.TopK = 10
	}

	clientID, ok := appMiddleware.ClientIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing client identity", http.StatusUnauthorized)
		return
	}

	vecs, err := h.embedder.EmbedTexts(r.Context(), []string{req.Query})
	if err != nil || len(vecs) != 1 || len(vecs[0]) == 0 {
		h.log.Error("query embedding failed", "error", err)
		http.Error(w, "could not embed query", http.StatusServiceUnavailable)
		return
	}

	chunks, err := h.dbclient.SearchChunks(r.Context(), clientID, vecs[0], req.TopK)
	if err != nil {
		h.log.Error("search failed", "client_id", clientID, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(chunks)
}

// Healthz reports DB reachability.
func (h *ChunkingHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.dbclient.Ping(r.Context()); err != nil {
		http.Error(w, "db unreachable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
