package processing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIEmbedder(t *testing.T) {
	var gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotModel, _ = body["model"].(string)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"object":"embedding","index":0,"embedding":[0.1,0.2,0.3]}],"model":"text-embedding-3-large"}`))
	}))
	defer srv.Close()

	g, err := NewEmbedder(context.Background(), Options{Provider: ProviderOpenAI, APIKey: "sk-test", BaseURL: srv.URL + "/v1", Dim: 3})
	require.NoError(t, err)

	vec, err := g.Embed(context.Background(), "hello")

	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	assert.Equal(t, "text-embedding-3-large", gotModel)
}

func TestOpenAIEmbedderAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`))
	}))
	defer srv.Close()

	g, err := NewEmbedder(context.Background(), Options{APIKey: "bad", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)

	_, err = g.Embed(context.Background(), "hello")

	var embErr *EmbeddingError
	require.ErrorAs(t, err, &embErr)
	assert.Equal(t, ProviderOpenAI, embErr.Provider)
	assert.True(t, strings.HasPrefix(err.Error(), "Embedding Error: "))
	assert.Contains(t, err.Error(), "Incorrect API key provided")
}

func TestGeminiEmbedder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1beta/models/text-embedding-004:embedContent", r.URL.Path)
		assert.Equal(t, "gm-key", apiKey(r))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"embedding":{"values":[0.5,-0.25]}}`))
	}))
	defer srv.Close()

	g, err := NewEmbedder(context.Background(), Options{Provider: ProviderGemini, APIKey: "gm-key", BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	vec, err := g.Embed(context.Background(), "hello")

	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, -0.25}, vec)
}

// apiKey accepts both ways the Google client transports attach a key.
func apiKey(r *http.Request) string {
	if k := r.URL.Query().Get("key"); k != "" {
		return k
	}
	return r.Header.Get("X-Goog-Api-Key")
}

func TestGeminiEmbedderRequiresCredentials(t *testing.T) {
	_, err := NewEmbedder(context.Background(), Options{Provider: ProviderGemini})
	assert.Error(t, err)
}

func TestOllamaEmbedder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/embeddings", r.URL.Path)
		var req ollamaRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nomic-embed-text", req.Model)
		assert.Equal(t, "hello", req.Prompt)
		_, _ = w.Write([]byte(`{"embedding":[1,2,3,4]}`))
	}))
	defer srv.Close()

	g, err := NewEmbedder(context.Background(), Options{Provider: ProviderOllama, BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	vec, err := g.Embed(context.Background(), "hello")

	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4}, vec)
}

func TestOllamaEmbedderServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	g, err := NewEmbedder(context.Background(), Options{Provider: ProviderOllama, BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = g.Embed(context.Background(), "hello")

	assert.EqualError(t, err, "Embedding Error: ollama error: model not loaded")
}

type stubEmbedder struct {
	vec []float32
	err error
}

func (s stubEmbedder) Embed(context.Context, string) ([]float32, error) { return s.vec, s.err }

func TestGeneratorChecksDimension(t *testing.T) {
	g := Wrap("stub", 4, stubEmbedder{vec: []float32{1, 2}})

	_, err := g.Embed(context.Background(), "x")

	assert.EqualError(t, err, "Embedding Error: expected embedding dim 4, got 2")
}

func TestGeneratorRejectsEmptyVector(t *testing.T) {
	_, err := Wrap("stub", 0, stubEmbedder{}).Embed(context.Background(), "x")

	var embErr *EmbeddingError
	assert.ErrorAs(t, err, &embErr)
}

func TestGeneratorKeepsCause(t *testing.T) {
	cause := errors.New("quota exhausted")

	_, err := Wrap("stub", 0, stubEmbedder{err: cause}).Embed(context.Background(), "x")

	assert.ErrorIs(t, err, cause)
	assert.EqualError(t, err, "Embedding Error: quota exhausted")
}

func TestNewEmbedderUnknownProvider(t *testing.T) {
	_, err := NewEmbedder(context.Background(), Options{Provider: "cohere"})
	assert.Error(t, err)
}
