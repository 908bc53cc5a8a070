package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/muzammilx07/AuraFlow/internal/graph"
	"github.com/muzammilx07/AuraFlow/internal/llm"
	"github.com/muzammilx07/AuraFlow/internal/logger"
)

const defaultMaxUpload = 50 << 20

type Options struct {
	Engine         *graph.Engine
	ChatDefaults   llm.Params // used by the chat endpoints when the body has no llm block
	CORS           CORSConfig
	MaxUploadBytes int64
	Logger         logger.Logger
}

type Server struct {
	engine       *graph.Engine
	chatDefaults llm.Params
	cors         corsPolicy
	maxUpload    int64
	log          logger.Logger
}

func NewServer(o Options) *Server {
	s := &Server{
		engine:       o.Engine,
		chatDefaults: o.ChatDefaults,
		cors:         newCORSPolicy(o.CORS),
		maxUpload:    o.MaxUploadBytes,
		log:          o.Logger,
	}
	if s.maxUpload <= 0 {
		s.maxUpload = defaultMaxUpload
	}
	if s.log == nil {
		s.log = logger.NewNop()
	}
	return s
}

// Handler returns the routed API wrapped in CORS handling. CORS sits outside
// the router so preflight requests never reach method matching.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.Use(s.metricsMiddleware)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/execute-workflow", s.handleExecuteWorkflow).Methods("POST")
	api.HandleFunc("/chat", s.handleChat).Methods("POST")
	api.HandleFunc("/chat-with-stack", s.handleChat).Methods("POST")
	api.HandleFunc("/workflows/{id}/chunks", s.handleChunks).Methods("GET")

	router.HandleFunc("/health", handleHealth).Methods("GET")
	router.Handle("/metrics", promhttp.Handler())

	return s.cors.wrap(router)
}
