package graph

import "context"

// respond calls the model once when an llm node was seen.
func (e *Engine) respond(ctx context.Context, s *State) error {
	if s.LLM == nil {
		return nil
	}
	text := e.rt.Dispatcher.Respond(ctx, s.Query, s.Context, *s.LLM)
	s.Result.LLMResponse = &text
	return nil
}

// assembleOutputs copies the model response (or "") into final_output when
// the workflow has an output node.
func (e *Engine) assembleOutputs(_ context.Context, s *State) error {
	for _, n := range s.Request.Nodes {
		if n.Type != NodeOutput {
			continue
		}
		out := ""
		if s.Result.LLMResponse != nil {
			out = *s.Result.LLMResponse
		}
		s.Result.FinalOutput = &out
	}
	return nil
}
