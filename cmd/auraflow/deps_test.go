package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muzammilx07/AuraFlow/internal/config"
	"github.com/muzammilx07/AuraFlow/internal/storage"
)

func TestOpenStoreMemory(t *testing.T) {
	s, closeFn, err := openStore(context.Background(), config.StoreConfig{Kind: config.StoreMemory, TTL: time.Minute})

	require.NoError(t, err)
	assert.Nil(t, closeFn)
	assert.IsType(t, &storage.MemoryStore{}, s)
}

func TestOpenStoreRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	s, closeFn, err := openStore(context.Background(), config.StoreConfig{Kind: config.StoreRedis, RedisAddr: mr.Addr()})
	require.NoError(t, err)
	require.NotNil(t, closeFn)
	defer closeFn()

	_, err = s.Upsert(context.Background(), "wf", []storage.ChunkInput{{Text: "hello", Embedding: []float32{1}}})
	require.NoError(t, err)
	assert.Len(t, mr.Keys(), 1)
}

func TestOpenStoreRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, _, err := openStore(context.Background(), config.StoreConfig{Kind: config.StoreRedis, RedisAddr: addr})
	assert.Error(t, err)
}

func TestEmbeddingOptionsFollowProvider(t *testing.T) {
	cfg := &config.Config{
		LLM: config.LLMConfig{
			OpenAIAPIKey: "sk-test", OpenAIBaseURL: "http://openai.local/v1",
			GeminiAPIKey: "g-test", GeminiEndpoint: "http://gemini.local/", GeminiUseADC: true,
		},
		Embedding: config.EmbeddingConfig{Provider: "openai", Dim: 3, OllamaBaseURL: "http://ollama.local"},
	}

	o := embeddingOptions(cfg)
	assert.Equal(t, "sk-test", o.APIKey)
	assert.Equal(t, "http://openai.local/v1", o.BaseURL)
	assert.Equal(t, 3, o.Dim)

	cfg.Embedding.Provider = "gemini"
	o = embeddingOptions(cfg)
	assert.Equal(t, "g-test", o.APIKey)
	assert.Equal(t, "http://gemini.local/", o.BaseURL)
	assert.True(t, o.UseADC)

	cfg.Embedding.Provider = "ollama"
	o = embeddingOptions(cfg)
	assert.Empty(t, o.APIKey)
	assert.Equal(t, "http://ollama.local", o.BaseURL)
}

func TestRequirePersistentStore(t *testing.T) {
	assert.ErrorIs(t, requirePersistentStore(&config.Config{Store: config.StoreConfig{Kind: config.StoreMemory}}), errEphemeralStore)
	assert.NoError(t, requirePersistentStore(&config.Config{Store: config.StoreConfig{Kind: config.StoreRedis}}))
	assert.NoError(t, requirePersistentStore(&config.Config{Store: config.StoreConfig{Kind: config.StorePostgres}}))
}

func TestIndexRefusesMemoryStore(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("apples are red"), 0o644))
	t.Setenv("VECTOR_STORE", config.StoreMemory)
	t.Setenv("EMBEDDING_PROVIDER", "openai")

	rootCmd.SetArgs([]string{"index", "--workflow-id", "wf-1", "--path", dir})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	assert.ErrorIs(t, err, errEphemeralStore)
}
