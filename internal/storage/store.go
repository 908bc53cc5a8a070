package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
)

var ErrCollectionNotFound = errors.New("collection not found")

// ChunkInput is one piece of ingested text and either its embedding or the
// reason the embedding failed.
type ChunkInput struct {
	Text           string
	Embedding      []float32
	EmbeddingError string
}

type Chunk struct {
	ID             string    `json:"id"`
	Index          int       `json:"index"`
	Text           string    `json:"text"`
	Embedding      []float32 `json:"embedding,omitempty"`
	EmbeddingError string    `json:"embedding_error,omitempty"`
}

// Collection is everything stored for one workflow id, ordered by chunk index.
type Collection struct {
	WorkflowID string  `json:"workflow_id"`
	Chunks     []Chunk `json:"chunks"`
}

// Store is the vector store keyed by workflow id.
//
// Upsert numbers the given chunks chunk-0..chunk-(n-1) for that call. Chunks
// already stored under the same ids are overwritten; chunks beyond n are kept.
// Query returns the texts of the topK nearest chunks joined by a blank line,
// or "" when the workflow has no collection.
type Store interface {
	Upsert(ctx context.Context, workflowID string, chunks []ChunkInput) ([]Chunk, error)
	Get(ctx context.Context, workflowID string) (*Collection, error)
	Query(ctx context.Context, workflowID string, vector []float32, topK int) (string, error)
}

func ChunkID(i int) string {
	return fmt.Sprintf("chunk-%d", i)
}

func buildChunks(inputs []ChunkInput) []Chunk {
	out := make([]Chunk, len(inputs))
	for i, in := range inputs {
		out[i] = Chunk{
			ID:             ChunkID(i),
			Index:          i,
			Text:           in.Text,
			Embedding:      slices.Clone(in.Embedding),
			EmbeddingError: in.EmbeddingError,
		}
	}
	return out
}

// merge overlays incoming on existing. Both are index-ordered and start at 0.
func merge(existing, incoming []Chunk) []Chunk {
	out := make([]Chunk, 0, max(len(existing), len(incoming)))
	out = append(out, incoming...)
	if len(existing) > len(incoming) {
		out = append(out, existing[len(incoming):]...)
	}
	return out
}

func cloneChunks(chunks []Chunk) []Chunk {
	out := make([]Chunk, len(chunks))
	for i, c := range chunks {
		c.Embedding = slices.Clone(c.Embedding)
		out[i] = c
	}
	return out
}

func joinTexts(chunks []Chunk) string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return strings.Join(texts, "\n\n")
}
