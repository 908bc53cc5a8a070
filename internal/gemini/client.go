// Package gemini is a small REST client for the Generative Language API,
// shared by the chat backend and the embedding provider.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
)

const (
	DefaultEndpoint = "https://generativelanguage.googleapis.com/"
	apiVersion      = "v1beta"

	scopeGenerativeLanguage = "https://www.googleapis.com/auth/generative-language"
	scopeCloudPlatform      = "https://www.googleapis.com/auth/cloud-platform"
)

var ErrNoCredentials = errors.New("no Gemini API key configured")

type Options struct {
	APIKey     string
	Endpoint   string // overrides DefaultEndpoint
	UseADC     bool   // fall back to application default credentials when APIKey is empty
	HTTPClient *http.Client
}

type Part struct {
	Text string `json:"text,omitempty"`
}

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

type GenerateContentRequest struct {
	Contents []Content `json:"contents"`
}

type Candidate struct {
	Content      *Content `json:"content,omitempty"`
	FinishReason string   `json:"finishReason,omitempty"`
}

type PromptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}

type GenerateContentResponse struct {
	Candidates     []Candidate     `json:"candidates"`
	PromptFeedback *PromptFeedback `json:"promptFeedback,omitempty"`
}

type EmbedContentRequest struct {
	Model   string  `json:"model"`
	Content Content `json:"content"`
}

type ContentEmbedding struct {
	Values []float32 `json:"values"`
}

type EmbedContentResponse struct {
	Embedding *ContentEmbedding `json:"embedding,omitempty"`
}

type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
}

// NewClient authenticates with the API key, or with application default
// credentials when UseADC is set and no key is given.
func NewClient(ctx context.Context, o Options) (*Client, error) {
	httpClient := o.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}

	switch {
	case o.APIKey != "":
	case o.UseADC:
		ts, err := google.DefaultTokenSource(ctx, scopeGenerativeLanguage, scopeCloudPlatform)
		if err != nil {
			return nil, fmt.Errorf("application default credentials: %w", err)
		}
		httpClient = &http.Client{
			Timeout:   httpClient.Timeout,
			Transport: &oauth2.Transport{Source: ts, Base: httpClient.Transport},
		}
	default:
		return nil, ErrNoCredentials
	}

	endpoint := o.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}
	return &Client{httpClient: httpClient, endpoint: endpoint, apiKey: o.APIKey}, nil
}

// GenerateContent sends prompt as a single user turn.
func (c *Client) GenerateContent(ctx context.Context, model, prompt string) (*GenerateContentResponse, error) {
	req := GenerateContentRequest{Contents: []Content{{Role: "user", Parts: []Part{{Text: prompt}}}}}
	var resp GenerateContentResponse
	if err := c.post(ctx, ModelName(model)+":generateContent", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) EmbedContent(ctx context.Context, model, text string) (*EmbedContentResponse, error) {
	name := ModelName(model)
	req := EmbedContentRequest{Model: name, Content: Content{Parts: []Part{{Text: text}}}}
	var resp EmbedContentResponse
	if err := c.post(ctx, name+":embedContent", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// post returns *googleapi.Error for any non-2xx answer.
func (c *Client) post(ctx context.Context, method string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+apiVersion+"/"+method, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-goog-api-key", c.apiKey)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if err := googleapi.CheckResponse(res); err != nil {
		return err
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gemini response: %w", err)
	}
	return nil
}

// ModelName adds the "models/" resource prefix the API expects.
func ModelName(model string) string {
	if strings.HasPrefix(model, "models/") {
		return model
	}
	return "models/" + model
}
