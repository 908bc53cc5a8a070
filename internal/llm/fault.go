package llm

import "fmt"

const (
	BackendOpenAI = "openai"
	BackendGemini = "gemini"
)

// FaultKind is the closed set of ways a model call can fail.
type FaultKind int

const (
	// OpenAI
	FaultAuth FaultKind = iota
	FaultRateLimit
	FaultBadRequest
	FaultConnection
	FaultServer
	FaultOther
	FaultUnexpected

	// Gemini
	FaultQuota
	FaultPermission
	FaultInvalidArgument
	FaultNotFound
)

var faultKindNames = map[FaultKind]string{
	FaultAuth:            "auth",
	FaultRateLimit:       "rate_limit",
	FaultBadRequest:      "bad_request",
	FaultConnection:      "connection",
	FaultServer:          "server",
	FaultOther:           "other",
	FaultUnexpected:      "unexpected",
	FaultQuota:           "quota",
	FaultPermission:      "permission",
	FaultInvalidArgument: "invalid_argument",
	FaultNotFound:        "not_found",
}

func (k FaultKind) String() string {
	if s, ok := faultKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("fault(%d)", int(k))
}

// Fault is a classified backend failure. Its Message is what the caller of
// the dispatcher sees in place of a model answer.
type Fault struct {
	Backend string
	Kind    FaultKind
	Detail  string
	Err     error
}

func (f *Fault) Error() string { return f.Message() }

func (f *Fault) Unwrap() error { return f.Err }

func (f *Fault) Message() string {
	switch f.Backend {
	case BackendOpenAI:
		switch f.Kind {
		case FaultAuth:
			return "OpenAI Error: Invalid API key."
		case FaultRateLimit:
			return "OpenAI Error: Rate limit exceeded."
		case FaultBadRequest:
			return "OpenAI Error: Bad request – " + f.Detail
		case FaultConnection:
			return "OpenAI Error: Connection failed."
		case FaultServer:
			return "OpenAI Error: Server error – " + f.Detail
		case FaultOther:
			return "OpenAI Error: " + f.Detail
		default:
			return "Unexpected OpenAI Error: " + f.Detail
		}
	case BackendGemini:
		switch f.Kind {
		case FaultQuota:
			return "Gemini Error: Quota exceeded. Try again later."
		case FaultPermission:
			return "Gemini Error: Invalid API key or billing disabled."
		case FaultInvalidArgument:
			return "Gemini Error: Bad input or unsupported model."
		case FaultNotFound:
			return "Gemini Error: Model not found. Check model name."
		default:
			return "Gemini Error: " + f.Detail
		}
	default:
		return fmt.Sprintf("%s Error: %s", f.Backend, f.Detail)
	}
}
