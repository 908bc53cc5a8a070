package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"
)

// workflowField marks a collection that exists but may hold no chunks.
const workflowField = "__workflow"

// RedisStore keeps one hash per workflow id, chunk id -> JSON chunk.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	locks  *keyedMutex
}

type RedisOption func(*RedisStore)

// WithRedisTTL expires a collection ttl after its last upsert.
func WithRedisTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

func WithRedisPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// DialRedis connects and pings, failing fast when Redis is unreachable.
func DialRedis(ctx context.Context, addr, password string, db int, opts ...RedisOption) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return NewRedisStore(client, opts...), nil
}

func NewRedisStore(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client: client,
		prefix: "auraflow:collection:",
		locks:  newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(workflowID string) string {
	return s.prefix + workflowID
}

func (s *RedisStore) Upsert(ctx context.Context, workflowID string, inputs []ChunkInput) ([]Chunk, error) {
	unlock := s.locks.Lock(workflowID)
	defer unlock()

	chunks := buildChunks(inputs)
	values := make([]interface{}, 0, 2*len(chunks)+2)
	values = append(values, workflowField, workflowID)
	for _, c := range chunks {
		data, err := json.Marshal(c)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal chunk: %w", err)
		}
		values = append(values, c.ID, data)
	}

	key := s.key(workflowID)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, values...)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save to redis: %w", err)
	}
	return chunks, nil
}

func (s *RedisStore) Get(ctx context.Context, workflowID string) (*Collection, error) {
	chunks, found, err := s.load(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrCollectionNotFound
	}
	return &Collection{WorkflowID: workflowID, Chunks: chunks}, nil
}

func (s *RedisStore) Query(ctx context.Context, workflowID string, vector []float32, topK int) (string, error) {
	chunks, _, err := s.load(ctx, workflowID)
	if err != nil {
		return "", err
	}
	return joinTexts(nearest(chunks, vector, topK)), nil
}

func (s *RedisStore) load(ctx context.Context, workflowID string) ([]Chunk, bool, error) {
	fields, err := s.client.HGetAll(ctx, s.key(workflowID)).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get from redis: %w", err)
	}
	if len(fields) == 0 {
		return nil, false, nil
	}

	chunks := make([]Chunk, 0, len(fields))
	for field, raw := range fields {
		if field == workflowField {
			continue
		}
		var c Chunk
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return nil, false, fmt.Errorf("failed to unmarshal chunk %s: %w", field, err)
		}
		chunks = append(chunks, c)
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Index < chunks[j].Index })
	return chunks, true, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
