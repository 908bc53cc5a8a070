package llm

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

const DefaultTemperature = 0.7

// Params are the model-call settings carried in an llm node's data.
type Params struct {
	Prompt      string  `mapstructure:"prompt" json:"prompt"`
	Model       string  `mapstructure:"model" json:"model"`
	APIKey      string  `mapstructure:"apiKey" json:"apiKey,omitempty"`
	Temperature float64 `mapstructure:"temperature" json:"temperature"`
}

// DecodeParams reads node data. Unknown keys are ignored, numbers sent as
// strings are accepted and a missing temperature means DefaultTemperature.
func DecodeParams(data map[string]interface{}) (Params, error) {
	p := Params{Temperature: DefaultTemperature}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &p,
	})
	if err != nil {
		return Params{}, err
	}
	if err := dec.Decode(data); err != nil {
		return Params{}, fmt.Errorf("decode llm params: %w", err)
	}
	return p, nil
}

// BuildPrompt substitutes every {context} and then every {query}.
func BuildPrompt(template, query, context string) string {
	out := strings.ReplaceAll(template, "{context}", context)
	return strings.ReplaceAll(out, "{query}", query)
}
