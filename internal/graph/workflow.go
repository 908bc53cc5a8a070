package graph

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/muzammilx07/AuraFlow/internal/llm"
	"github.com/muzammilx07/AuraFlow/internal/logger"
	"github.com/muzammilx07/AuraFlow/internal/metrics"
	"github.com/muzammilx07/AuraFlow/internal/processing"
	"github.com/muzammilx07/AuraFlow/internal/storage"
)

type NodeType string

const (
	NodeUserQuery     NodeType = "userQuery"
	NodeKnowledgeBase NodeType = "knowledgeBase"
	NodeLLM           NodeType = "llm"
	NodeOutput        NodeType = "output"
)

var (
	ErrMissingWorkflowID = errors.New("workflow id is required")
	ErrMalformedNode     = errors.New("malformed node")
	ErrExtractionFailed  = errors.New("document extraction failed")
	ErrStoreFailed       = errors.New("vector store failure")
)

type Node struct {
	ID   string                 `json:"id"`
	Type NodeType               `json:"type"`
	Data map[string]interface{} `json:"data"`
}

// Edge is carried through untouched; execution does not follow edges.
type Edge struct {
	Source       string  `json:"source"`
	Target       string  `json:"target"`
	SourceHandle *string `json:"sourceHandle,omitempty"`
	TargetHandle *string `json:"targetHandle,omitempty"`
}

type Request struct {
	WorkflowID string
	Nodes      []Node
	Edges      []Edge
	Document   io.Reader // optional
}

type Result struct {
	LLMResponse *string `json:"llm_response,omitempty"`
	FinalOutput *string `json:"final_output,omitempty"`
}

type Extractor interface {
	Extract(ctx context.Context, r io.Reader) (string, error)
}

type Responder interface {
	Respond(ctx context.Context, query, contextText string, p llm.Params) string
}

// Runtime bundles what the engine calls out to.
type Runtime struct {
	Extractor  Extractor
	Embedder   processing.Embedder
	Store      storage.Store
	Dispatcher Responder
	Chunker    func(string) []string // defaults to processing.ChunkText
	Logger     logger.Logger         // defaults to a no-op logger
	TopK       int                   // chunks retrieved by Chat, defaults to 4
}

type Engine struct {
	rt Runtime
}

func NewEngine(rt Runtime) *Engine {
	if rt.Chunker == nil {
		rt.Chunker = processing.ChunkText
	}
	if rt.Logger == nil {
		rt.Logger = logger.NewNop()
	}
	if rt.TopK <= 0 {
		rt.TopK = 4
	}
	return &Engine{rt: rt}
}

// State is what one run accumulates while the steps execute.
type State struct {
	RunID     string
	Request   Request
	NodesByID map[string]Node
	Query     string
	Context   string
	LLM       *llm.Params
	Result    Result

	docText *string // extracted once, reused by later knowledgeBase nodes
}

type step func(context.Context, *State) error

// Execute classifies nodes by type and assembles the result in two passes
// over the node list. Node order matters and edges are ignored: the last
// userQuery and llm node win, the document is ingested at the first
// knowledgeBase node, and every output node receives the model response.
func (e *Engine) Execute(ctx context.Context, req Request) (*Result, error) {
	if req.WorkflowID == "" {
		return nil, ErrMissingWorkflowID
	}

	s := &State{RunID: uuid.NewString(), Request: req}
	start := time.Now()
	e.rt.Logger.Info("engine", "workflow started", map[string]interface{}{
		"run_id":      s.RunID,
		"workflow_id": req.WorkflowID,
		"nodes":       len(req.Nodes),
		"edges":       len(req.Edges),
		"document":    req.Document != nil,
	})

	steps := []step{
		e.indexNodes,
		e.scanNodes,
		e.respond,
		e.assembleOutputs,
	}
	for _, st := range steps {
		if err := st(ctx, s); err != nil {
			metrics.WorkflowRunsTotal.WithLabelValues("error").Inc()
			e.rt.Logger.Error("engine", "workflow failed", map[string]interface{}{
				"run_id":      s.RunID,
				"workflow_id": req.WorkflowID,
				"error":       err,
			})
			return nil, err
		}
	}

	metrics.WorkflowRunsTotal.WithLabelValues("ok").Inc()
	metrics.WorkflowRunDuration.Observe(time.Since(start).Seconds())
	e.rt.Logger.Info("engine", "workflow finished", map[string]interface{}{
		"run_id":       s.RunID,
		"workflow_id":  req.WorkflowID,
		"has_response": s.Result.LLMResponse != nil,
		"duration_ms":  time.Since(start).Milliseconds(),
	})
	return &s.Result, nil
}

func (e *Engine) indexNodes(_ context.Context, s *State) error {
	s.NodesByID = make(map[string]Node, len(s.Request.Nodes))
	for _, n := range s.Request.Nodes {
		s.NodesByID[n.ID] = n
	}
	return nil
}

func (e *Engine) scanNodes(ctx context.Context, s *State) error {
	for _, n := range s.Request.Nodes {
		switch n.Type {
		case NodeUserQuery:
			q, ok := n.Data["query"].(string)
			if !ok {
				return fmt.Errorf("%w: %s: userQuery needs a string query", ErrMalformedNode, n.ID)
			}
			s.Query = q
		case NodeKnowledgeBase:
			if err := e.ingestNode(ctx, s, n); err != nil {
				return err
			}
		case NodeLLM:
			p, err := llm.DecodeParams(n.Data)
			if err != nil {
				return fmt.Errorf("%w: %s: %w", ErrMalformedNode, n.ID, err)
			}
			s.LLM = &p
		default:
			e.rt.Logger.Debug("engine", "node skipped in scan", map[string]interface{}{
				"run_id": s.RunID, "node_id": n.ID, "type": string(n.Type),
			})
		}
	}
	return nil
}
