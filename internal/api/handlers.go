package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/muzammilx07/AuraFlow/internal/graph"
	"github.com/muzammilx07/AuraFlow/internal/llm"
	"github.com/muzammilx07/AuraFlow/internal/storage"
)

// Multipart parts beyond this stay on disk while the request is handled.
const multipartMemory = 32 << 20

const maxChatBody = 1 << 20

type chatRequest struct {
	Query   string                 `json:"query"`
	StackID string                 `json:"stack_id"`
	LLM     map[string]interface{} `json:"llm,omitempty"`
}

type chatResponse struct {
	Response string `json:"response"`
}

func (s *Server) handleExecuteWorkflow(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("invalid multipart form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	req := graph.Request{WorkflowID: r.FormValue("stack_id")}
	if req.WorkflowID == "" {
		writeErrorResponse(w, http.StatusBadRequest, "stack_id is required")
		return
	}
	if err := decodeFormJSON(r, "nodes", &req.Nodes); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := decodeFormJSON(r, "edges", &req.Edges); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		writeErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("invalid file part: %v", err))
		return
	default:
		defer file.Close()
		req.Document = file
		s.log.Debug("api", "document received", map[string]interface{}{
			"stack_id": req.WorkflowID, "filename": header.Filename, "size": header.Size,
		})
	}

	res, err := s.engine.Execute(r.Context(), req)
	if err != nil {
		s.writeEngineError(w, req.WorkflowID, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, res)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxChatBody)
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.StackID == "" {
		writeErrorResponse(w, http.StatusBadRequest, "stack_id is required")
		return
	}
	if req.Query == "" {
		writeErrorResponse(w, http.StatusBadRequest, "query is required")
		return
	}

	params, err := s.chatParams(req.LLM)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	answer, err := s.engine.Chat(r.Context(), req.StackID, req.Query, params)
	if err != nil {
		s.writeEngineError(w, req.StackID, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, chatResponse{Response: answer})
}

// chatParams lays the caller's llm block over the configured defaults.
func (s *Server) chatParams(block map[string]interface{}) (llm.Params, error) {
	p := s.chatDefaults
	if len(block) == 0 {
		return p, nil
	}
	given, err := llm.DecodeParams(block)
	if err != nil {
		return llm.Params{}, err
	}
	if given.Prompt != "" {
		p.Prompt = given.Prompt
	}
	if given.Model != "" {
		p.Model = given.Model
	}
	if given.APIKey != "" {
		p.APIKey = given.APIKey
	}
	if _, ok := block["temperature"]; ok {
		p.Temperature = given.Temperature
	}
	return p, nil
}

func (s *Server) handleChunks(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	coll, err := s.engine.Collection(r.Context(), id)
	if errors.Is(err, storage.ErrCollectionNotFound) {
		writeErrorResponse(w, http.StatusNotFound, fmt.Sprintf("no collection for %q", id))
		return
	}
	if err != nil {
		s.writeEngineError(w, id, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, coll)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) writeEngineError(w http.ResponseWriter, workflowID string, err error) {
	status := statusFor(err)
	details := map[string]interface{}{"stack_id": workflowID, "status": status, "error": err}
	if status >= http.StatusInternalServerError {
		s.log.Error("api", "request failed", details)
		writeErrorResponse(w, status, "internal server error")
		return
	}
	s.log.Warn("api", "request rejected", details)
	writeErrorResponse(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, graph.ErrMissingWorkflowID), errors.Is(err, graph.ErrMalformedNode):
		return http.StatusBadRequest
	case errors.Is(err, graph.ErrExtractionFailed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// decodeFormJSON reads a required JSON-encoded form field.
func decodeFormJSON(r *http.Request, field string, v interface{}) error {
	raw := r.FormValue(field)
	if raw == "" {
		return fmt.Errorf("%s is required", field)
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("invalid %s: %w", field, err)
	}
	return nil
}

func writeJSONResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeErrorResponse(w http.ResponseWriter, status int, message string) {
	writeJSONResponse(w, status, map[string]string{"detail": message})
}
