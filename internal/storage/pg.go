package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

const schema = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS workflow_collections (
	workflow_id TEXT PRIMARY KEY,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS workflow_chunks (
	workflow_id     TEXT NOT NULL REFERENCES workflow_collections (workflow_id) ON DELETE CASCADE,
	chunk_id        TEXT NOT NULL,
	chunk_index     INT  NOT NULL,
	content         TEXT NOT NULL,
	embedding       vector,
	embedding_error TEXT NOT NULL DEFAULT '',
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (workflow_id, chunk_id)
);
`

// ConnectPG opens a pool and checks the database answers.
func ConnectPG(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	return pool, nil
}

// PGStore persists collections in Postgres with pgvector embeddings.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *PGStore) Upsert(ctx context.Context, workflowID string, inputs []ChunkInput) ([]Chunk, error) {
	chunks := buildChunks(inputs)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// serialises upserts of one workflow id across every process sharing the database
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", workflowID); err != nil {
		return nil, fmt.Errorf("lock collection: %w", err)
	}
	if _, err := tx.Exec(ctx,
		"INSERT INTO workflow_collections (workflow_id) VALUES ($1) ON CONFLICT DO NOTHING",
		workflowID); err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	batch := &pgx.Batch{}
	for _, c := range chunks {
		var embedding any
		if len(c.Embedding) > 0 {
			embedding = pgvector.NewVector(c.Embedding)
		}
		batch.Queue(`
			INSERT INTO workflow_chunks (workflow_id, chunk_id, chunk_index, content, embedding, embedding_error)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (workflow_id, chunk_id) DO UPDATE
			SET chunk_index = EXCLUDED.chunk_index,
			    content = EXCLUDED.content,
			    embedding = EXCLUDED.embedding,
			    embedding_error = EXCLUDED.embedding_error,
			    updated_at = now()`,
			workflowID, c.ID, c.Index, c.Text, embedding, c.EmbeddingError)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return nil, fmt.Errorf("insert chunks: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return chunks, nil
}

func (s *PGStore) Get(ctx context.Context, workflowID string) (*Collection, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM workflow_collections WHERE workflow_id = $1)", workflowID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	if !exists {
		return nil, ErrCollectionNotFound
	}

	rows, err := s.pool.Query(ctx, `
		SELECT chunk_id, chunk_index, content, embedding::text, embedding_error
		FROM workflow_chunks WHERE workflow_id = $1 ORDER BY chunk_index`, workflowID)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	coll := &Collection{WorkflowID: workflowID, Chunks: []Chunk{}}
	for rows.Next() {
		var (
			c   Chunk
			raw *string
		)
		if err := rows.Scan(&c.ID, &c.Index, &c.Text, &raw, &c.EmbeddingError); err != nil {
			return nil, err
		}
		if raw != nil {
			var v pgvector.Vector
			if err := v.Scan(*raw); err != nil {
				return nil, fmt.Errorf("decode embedding of %s: %w", c.ID, err)
			}
			c.Embedding = v.Slice()
		}
		coll.Chunks = append(coll.Chunks, c)
	}
	return coll, rows.Err()
}

func (s *PGStore) Query(ctx context.Context, workflowID string, vector []float32, topK int) (string, error) {
	// LIMIT NULL means no limit
	var limit any
	if topK > 0 {
		limit = topK
	}
	rows, err := s.pool.Query(ctx, `
		SELECT chunk_id, chunk_index, content FROM workflow_chunks
		WHERE workflow_id = $1 AND embedding IS NOT NULL AND vector_dims(embedding) = $3
		ORDER BY embedding <=> $2 LIMIT $4`,
		workflowID, pgvector.NewVector(vector), len(vector), limit)
	if err != nil {
		return "", fmt.Errorf("query failed: %w", err)
	}
	chunks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Chunk, error) {
		var c Chunk
		err := row.Scan(&c.ID, &c.Index, &c.Text)
		return c, err
	})
	if err != nil {
		return "", err
	}
	return joinTexts(chunks), nil
}
