package processing

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/muzammilx07/AuraFlow/internal/metrics"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

// Embedder turns a piece of text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// EmbeddingError carries the backend's message for a failed embedding.
type EmbeddingError struct {
	Provider string
	Message  string
	Err      error
}

func (e *EmbeddingError) Error() string { return "Embedding Error: " + e.Message }

func (e *EmbeddingError) Unwrap() error { return e.Err }

type Options struct {
	Provider   string
	Model      string
	APIKey     string
	BaseURL    string // OpenAI base URL, Gemini endpoint or Ollama host
	UseADC     bool
	Dim        int // expected vector length, 0 accepts any
	HTTPClient *http.Client
}

// Generator wraps a provider with the dimension check, error normalisation
// and metrics every embedding goes through.
type Generator struct {
	provider string
	dim      int
	backend  Embedder
}

func NewEmbedder(ctx context.Context, o Options) (*Generator, error) {
	if o.HTTPClient == nil {
		o.HTTPClient = http.DefaultClient
	}

	var backend Embedder
	switch o.Provider {
	case ProviderOpenAI, "":
		o.Provider = ProviderOpenAI
		backend = NewOpenAIEmbedder(o.APIKey, o.BaseURL, o.Model, o.HTTPClient)
	case ProviderGemini:
		g, err := NewGeminiEmbedder(ctx, o.APIKey, o.BaseURL, o.Model, o.UseADC, o.HTTPClient)
		if err != nil {
			return nil, err
		}
		backend = g
	case ProviderOllama:
		backend = NewOllamaEmbedder(o.BaseURL, o.Model, o.HTTPClient)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", o.Provider)
	}
	return Wrap(o.Provider, o.Dim, backend), nil
}

// Wrap instruments an arbitrary backend.
func Wrap(provider string, dim int, backend Embedder) *Generator {
	return &Generator{provider: provider, dim: dim, backend: backend}
}

func (g *Generator) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := g.backend.Embed(ctx, text)
	if err == nil {
		switch {
		case len(vec) == 0:
			err = errors.New("empty embedding returned")
		case g.dim > 0 && len(vec) != g.dim:
			err = fmt.Errorf("expected embedding dim %d, got %d", g.dim, len(vec))
		}
	}
	if err != nil {
		metrics.EmbeddingsTotal.WithLabelValues(g.provider, "error").Inc()
		return nil, &EmbeddingError{Provider: g.provider, Message: err.Error(), Err: err}
	}
	metrics.EmbeddingsTotal.WithLabelValues(g.provider, "ok").Inc()
	return vec, nil
}
