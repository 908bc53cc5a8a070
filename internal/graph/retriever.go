package graph

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/muzammilx07/AuraFlow/internal/llm"
	"github.com/muzammilx07/AuraFlow/internal/storage"
)

// ingestNode handles a knowledgeBase node. Without a document it does
// nothing. The run context becomes the raw extracted text, not a retrieval.
func (e *Engine) ingestNode(ctx context.Context, s *State, n Node) error {
	if s.docText == nil {
		if s.Request.Document == nil {
			e.rt.Logger.Debug("engine", "knowledge base without document", map[string]interface{}{
				"run_id": s.RunID, "node_id": n.ID,
			})
			return nil
		}
		text, err := e.rt.Extractor.Extract(ctx, s.Request.Document)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrExtractionFailed, err)
		}
		s.docText = &text
	}

	chunks, err := e.IngestText(ctx, s.Request.WorkflowID, *s.docText)
	if err != nil {
		return err
	}
	e.rt.Logger.Info("engine", "document ingested", map[string]interface{}{
		"run_id": s.RunID, "node_id": n.ID, "chunks": len(chunks), "chars": len(*s.docText),
	})
	s.Context = *s.docText
	return nil
}

// Ingest extracts r and stores it under workflowID.
func (e *Engine) Ingest(ctx context.Context, workflowID string, r io.Reader) ([]storage.Chunk, error) {
	if workflowID == "" {
		return nil, ErrMissingWorkflowID
	}
	text, err := e.rt.Extractor.Extract(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}
	return e.IngestText(ctx, workflowID, text)
}

// IngestText chunks and embeds text, then upserts it under workflowID.
// A chunk whose embedding fails is stored with the error message instead
// of a vector and the ingestion carries on.
func (e *Engine) IngestText(ctx context.Context, workflowID, text string) ([]storage.Chunk, error) {
	if workflowID == "" {
		return nil, ErrMissingWorkflowID
	}
	pieces := e.rt.Chunker(text)
	inputs := make([]storage.ChunkInput, len(pieces))
	for i, piece := range pieces {
		inputs[i].Text = piece
		vec, err := e.rt.Embedder.Embed(ctx, piece)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			e.rt.Logger.Warn("engine", "embedding failed", map[string]interface{}{
				"workflow_id": workflowID, "chunk": storage.ChunkID(i), "error": err.Error(),
			})
			inputs[i].EmbeddingError = err.Error()
			continue
		}
		inputs[i].Embedding = vec
	}

	chunks, err := e.rt.Store.Upsert(ctx, workflowID, inputs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreFailed, err)
	}
	return chunks, nil
}

// Chat answers query with the nearest stored chunks of workflowID as
// context. A failed query embedding or a missing collection gives an empty
// context rather than an error.
func (e *Engine) Chat(ctx context.Context, workflowID, query string, p llm.Params) (string, error) {
	if workflowID == "" {
		return "", ErrMissingWorkflowID
	}

	var contextText string
	vec, err := e.rt.Embedder.Embed(ctx, query)
	if err != nil {
		e.rt.Logger.Warn("engine", "query embedding failed", map[string]interface{}{
			"workflow_id": workflowID, "error": err.Error(),
		})
	} else {
		contextText, err = e.rt.Store.Query(ctx, workflowID, vec, e.rt.TopK)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrStoreFailed, err)
		}
	}
	return e.rt.Dispatcher.Respond(ctx, query, contextText, p), nil
}

// Collection returns what is stored for workflowID.
func (e *Engine) Collection(ctx context.Context, workflowID string) (*storage.Collection, error) {
	coll, err := e.rt.Store.Get(ctx, workflowID)
	if err != nil && !errors.Is(err, storage.ErrCollectionNotFound) {
		return nil, fmt.Errorf("%w: %w", ErrStoreFailed, err)
	}
	return coll, err
}
