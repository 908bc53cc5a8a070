package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("VECTOR_STORE", StoreMemory)
	t.Setenv("EMBEDDING_PROVIDER", "openai")

	cfg := Load()

	assert.Equal(t, StoreMemory, cfg.Store.Kind)
	assert.Equal(t, 4, cfg.LLM.RetrievalTopK)
	assert.Equal(t, "gpt-3.5-turbo", cfg.LLM.ChatModel)
	assert.Contains(t, cfg.LLM.ChatPrompt, "{context}")
	assert.Contains(t, cfg.LLM.ChatPrompt, "{query}")
	assert.Equal(t, int64(50<<20), cfg.App.MaxUploadBytes)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("VECTOR_STORE", StoreRedis)
	t.Setenv("VECTOR_STORE_TTL", "2h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, https://b.test ,")
	t.Setenv("CORS_ALLOWED_METHODS", "GET,POST")
	t.Setenv("CORS_ALLOW_CREDENTIALS", "false")
	t.Setenv("CORS_MAX_AGE", "120")
	t.Setenv("GEMINI_USE_ADC", "true")
	t.Setenv("EMBEDDING_DIM", "3072")
	t.Setenv("CHAT_TEMPERATURE", "0.2")

	cfg := Load()

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, StoreRedis, cfg.Store.Kind)
	assert.Equal(t, 2*time.Hour, cfg.Store.TTL)
	assert.Equal(t, []string{"http://a.test", "https://b.test"}, cfg.App.CorsAllowedOrigins)
	assert.Equal(t, []string{"GET", "POST"}, cfg.App.CorsAllowedMethods)
	assert.False(t, cfg.App.CorsAllowCreds)
	assert.Equal(t, 120, cfg.App.CorsMaxAge)
	assert.True(t, cfg.LLM.GeminiUseADC)
	assert.Equal(t, 3072, cfg.Embedding.Dim)
	assert.InDelta(t, 0.2, cfg.LLM.ChatTemperature, 1e-9)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("RETRIEVAL_TOP_K", "many")
	t.Setenv("HTTP_READ_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 4, cfg.LLM.RetrievalTopK)
	assert.Equal(t, time.Minute, cfg.App.ReadTimeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown store", mutate: func(c *Config) { c.Store.Kind = "chroma" }, wantErr: "VECTOR_STORE"},
		{name: "unknown embedding provider", mutate: func(c *Config) { c.Embedding.Provider = "cohere" }, wantErr: "EMBEDDING_PROVIDER"},
		{name: "negative dim", mutate: func(c *Config) { c.Embedding.Dim = -1 }, wantErr: "EMBEDDING_DIM"},
		{name: "zero top k", mutate: func(c *Config) { c.LLM.RetrievalTopK = 0 }, wantErr: "RETRIEVAL_TOP_K"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Store:     StoreConfig{Kind: StoreMemory},
				Embedding: EmbeddingConfig{Provider: "openai"},
				LLM:       LLMConfig{RetrievalTopK: 4},
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
