package storage

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps collections in process memory. Without WithTTL nothing is
// ever evicted, so the store lives exactly as long as the process.
type MemoryStore struct {
	cache *cache.Cache
	locks *keyedMutex
	ttl   time.Duration
}

type MemoryOption func(*MemoryStore)

// WithTTL evicts a collection ttl after its last upsert.
func WithTTL(ttl time.Duration) MemoryOption {
	return func(s *MemoryStore) {
		s.ttl = ttl
	}
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{locks: newKeyedMutex()}
	for _, opt := range opts {
		opt(s)
	}
	if s.ttl > 0 {
		s.cache = cache.New(s.ttl, s.ttl)
	} else {
		s.cache = cache.New(cache.NoExpiration, 0)
	}
	return s
}

func (s *MemoryStore) Upsert(ctx context.Context, workflowID string, inputs []ChunkInput) ([]Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(workflowID)
	defer unlock()

	incoming := buildChunks(inputs)
	var existing []Chunk
	if v, ok := s.cache.Get(workflowID); ok {
		existing = v.([]Chunk)
	}
	s.cache.Set(workflowID, merge(existing, incoming), cache.DefaultExpiration)
	return cloneChunks(incoming), nil
}

func (s *MemoryStore) Get(ctx context.Context, workflowID string) (*Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, ok := s.cache.Get(workflowID)
	if !ok {
		return nil, ErrCollectionNotFound
	}
	return &Collection{WorkflowID: workflowID, Chunks: cloneChunks(v.([]Chunk))}, nil
}

func (s *MemoryStore) Query(ctx context.Context, workflowID string, vector []float32, topK int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	v, ok := s.cache.Get(workflowID)
	if !ok {
		return "", nil
	}
	return joinTexts(nearest(v.([]Chunk), vector, topK)), nil
}
