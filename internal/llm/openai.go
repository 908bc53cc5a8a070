package llm

import (
	"context"
	"errors"
	"math"
	"net"
	"net/http"
	"net/url"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const DefaultOpenAIModel = "gpt-3.5-turbo"

type OpenAIBackend struct {
	defaultKey string
	baseURL    string
	httpClient *http.Client
}

// NewOpenAIBackend uses defaultKey when a request carries no key of its own.
// baseURL may be empty for the public API.
func NewOpenAIBackend(defaultKey, baseURL string, httpClient *http.Client) *OpenAIBackend {
	return &OpenAIBackend{defaultKey: defaultKey, baseURL: baseURL, httpClient: httpClient}
}

func (b *OpenAIBackend) Name() string { return BackendOpenAI }

func (b *OpenAIBackend) Generate(ctx context.Context, req Request) (string, error) {
	model := req.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	key := req.APIKey
	if key == "" {
		key = b.defaultKey
	}

	cfg := openai.DefaultConfig(key)
	if b.baseURL != "" {
		cfg.BaseURL = b.baseURL
	}
	if b.httpClient != nil {
		cfg.HTTPClient = b.httpClient
	}
	client := openai.NewClientWithConfig(cfg)

	// Temperature is omitempty in the request struct; a zero would fall back
	// to the server default of 1.
	temperature := float32(req.Temperature)
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.Prompt},
			{Role: openai.ChatMessageRoleUser, Content: req.Query},
		},
		Temperature: temperature,
	})
	if err != nil {
		return "", classifyOpenAI(err)
	}
	if len(resp.Choices) == 0 {
		return "", &Fault{Backend: BackendOpenAI, Kind: FaultUnexpected, Detail: "no choices in response"}
	}
	return resp.Choices[0].Message.Content, nil
}

func classifyOpenAI(err error) *Fault {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return openAIStatusFault(apiErr.HTTPStatusCode, apiErr.Message, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := strings.TrimSpace(string(reqErr.Body))
		if detail == "" && reqErr.Err != nil {
			detail = reqErr.Err.Error()
		}
		return openAIStatusFault(reqErr.HTTPStatusCode, detail, err)
	}
	if isConnectionError(err) {
		return &Fault{Backend: BackendOpenAI, Kind: FaultConnection, Detail: err.Error(), Err: err}
	}
	return &Fault{Backend: BackendOpenAI, Kind: FaultUnexpected, Detail: err.Error(), Err: err}
}

func openAIStatusFault(status int, detail string, err error) *Fault {
	f := &Fault{Backend: BackendOpenAI, Detail: detail, Err: err}
	switch {
	case status == http.StatusUnauthorized:
		f.Kind = FaultAuth
	case status == http.StatusTooManyRequests:
		f.Kind = FaultRateLimit
	case status == http.StatusBadRequest:
		f.Kind = FaultBadRequest
	case status == 0:
		f.Kind = FaultOther
	default:
		f.Kind = FaultServer
	}
	return f
}

func isConnectionError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
