package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/muzammilx07/AuraFlow/internal/logger"
	"github.com/muzammilx07/AuraFlow/internal/metrics"
)

// NoModelSelected is returned when the model name matches no backend.
const NoModelSelected = "Error: No valid LLM model selected."

type Request struct {
	Model       string
	APIKey      string
	Prompt      string
	Query       string
	Temperature float64
}

// Backend performs one model call. Errors should be *Fault; anything else is
// reported as an unexpected failure of that backend.
type Backend interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

// Dispatcher routes a model call by name prefix and always answers with text.
type Dispatcher struct {
	openai Backend
	gemini Backend
	log    logger.Logger
}

func NewDispatcher(openai, gemini Backend, log logger.Logger) *Dispatcher {
	return &Dispatcher{openai: openai, gemini: gemini, log: log}
}

// Respond never fails: backend faults come back as their fixed messages.
// Models starting with "gpt" go to OpenAI and "gemini" to Gemini. The check
// runs on the name as given, so an empty model selects nothing.
func (d *Dispatcher) Respond(ctx context.Context, query, contextText string, p Params) string {
	var backend Backend
	switch {
	case strings.HasPrefix(p.Model, "gpt"):
		backend = d.openai
	case strings.HasPrefix(p.Model, "gemini"):
		backend = d.gemini
	}
	if backend == nil {
		metrics.LLMCallsTotal.WithLabelValues("none", "unrouted").Inc()
		d.log.Warn("dispatcher", "no backend for model", map[string]interface{}{"model": p.Model})
		return NoModelSelected
	}

	text, err := backend.Generate(ctx, Request{
		Model:       p.Model,
		APIKey:      p.APIKey,
		Prompt:      BuildPrompt(p.Prompt, query, contextText),
		Query:       query,
		Temperature: p.Temperature,
	})
	if err != nil {
		var fault *Fault
		if !errors.As(err, &fault) {
			fault = &Fault{Backend: backend.Name(), Kind: FaultUnexpected, Detail: err.Error(), Err: err}
		}
		metrics.LLMCallsTotal.WithLabelValues(backend.Name(), fault.Kind.String()).Inc()
		d.log.Warn("dispatcher", "model call failed", map[string]interface{}{
			"backend": backend.Name(),
			"model":   p.Model,
			"kind":    fault.Kind.String(),
			"detail":  fault.Detail,
		})
		return fault.Message()
	}

	metrics.LLMCallsTotal.WithLabelValues(backend.Name(), "ok").Inc()
	return text
}
