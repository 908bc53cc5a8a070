package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"

	"github.com/muzammilx07/AuraFlow/internal/gemini"
)

const DefaultGeminiModel = "gemini-1.5-flash"

type GeminiBackend struct {
	opts gemini.Options
}

// NewGeminiBackend uses opts.APIKey when a request carries no key of its
// own, then application default credentials if opts.UseADC is set.
func NewGeminiBackend(opts gemini.Options) *GeminiBackend {
	return &GeminiBackend{opts: opts}
}

func (b *GeminiBackend) Name() string { return BackendGemini }

// Generate sends the assembled prompt as the only input; the query is
// already part of it.
func (b *GeminiBackend) Generate(ctx context.Context, req Request) (string, error) {
	model := req.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	opts := b.opts
	if req.APIKey != "" {
		opts.APIKey = req.APIKey
	}

	client, err := gemini.NewClient(ctx, opts)
	if err != nil {
		if errors.Is(err, gemini.ErrNoCredentials) {
			return "", &Fault{Backend: BackendGemini, Kind: FaultPermission, Detail: err.Error(), Err: err}
		}
		return "", classifyGemini(err)
	}

	resp, err := client.GenerateContent(ctx, model, req.Prompt)
	if err != nil {
		return "", classifyGemini(err)
	}
	return responseText(resp)
}

func responseText(resp *gemini.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		detail := "no candidates returned"
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			detail = "prompt blocked: " + resp.PromptFeedback.BlockReason
		}
		return "", &Fault{Backend: BackendGemini, Kind: FaultOther, Detail: detail}
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}

func classifyGemini(err error) *Fault {
	f := &Fault{Backend: BackendGemini, Kind: FaultOther, Detail: err.Error(), Err: err}
	var gErr *googleapi.Error
	if !errors.As(err, &gErr) {
		return f
	}
	if gErr.Message != "" {
		f.Detail = gErr.Message
	}
	switch gErr.Code {
	case http.StatusTooManyRequests:
		f.Kind = FaultQuota
	case http.StatusForbidden:
		f.Kind = FaultPermission
	case http.StatusBadRequest:
		f.Kind = FaultInvalidArgument
	case http.StatusNotFound:
		f.Kind = FaultNotFound
	}
	return f
}
