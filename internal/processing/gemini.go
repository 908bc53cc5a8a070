package processing

import (
	"context"
	"errors"
	"net/http"

	"github.com/muzammilx07/AuraFlow/internal/gemini"
)

const defaultGeminiEmbeddingModel = "text-embedding-004"

type GeminiEmbedder struct {
	client *gemini.Client
	model  string
}

func NewGeminiEmbedder(ctx context.Context, apiKey, endpoint, model string, useADC bool, httpClient *http.Client) (*GeminiEmbedder, error) {
	client, err := gemini.NewClient(ctx, gemini.Options{
		APIKey:     apiKey,
		Endpoint:   endpoint,
		UseADC:     useADC,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = defaultGeminiEmbeddingModel
	}
	return &GeminiEmbedder{client: client, model: model}, nil
}

func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.EmbedContent(ctx, e.model, text)
	if err != nil {
		return nil, err
	}
	if resp.Embedding == nil {
		return nil, errors.New("no embedding in response")
	}
	return resp.Embedding.Values, nil
}
