package chunking_engine

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/docrag/semantic-chunker/internal/core"
	"github.com/docrag/semantic-chunker/internal/models"
)

// LogPublisher writes completion events to the structured log. Deployments
// with a broker replace it with a publisher bound to the chunking results
// queue; the engine only sees the core.ResultPublisher contract.
type LogPublisher struct {
	log *slog.Logger
}

func NewLogPublisher(log *slog.Logger) *LogPublisher {
	if log == nil {
		log = slog.Default()
	}
	return &LogPublisher{log: log.With("component", "result_publisher")}
}

func (p *LogPublisher) PublishResult(_ context.Context, result models.ChunkingResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}
	p.log.Info("chunking result", "status", result.Status, "document_id", result.DocumentID, "event", string(payload))
	return nil
}

var _ core.ResultPublisher = (*LogPublisher)(nil)
