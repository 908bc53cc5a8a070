package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/muzammilx07/AuraFlow/internal/config"
	"github.com/muzammilx07/AuraFlow/internal/gemini"
	"github.com/muzammilx07/AuraFlow/internal/graph"
	"github.com/muzammilx07/AuraFlow/internal/ingestion"
	"github.com/muzammilx07/AuraFlow/internal/ingestion/tesseract"
	"github.com/muzammilx07/AuraFlow/internal/llm"
	"github.com/muzammilx07/AuraFlow/internal/logger"
	"github.com/muzammilx07/AuraFlow/internal/processing"
	"github.com/muzammilx07/AuraFlow/internal/storage"
)

// deps is everything a command needs, built once from the environment.
type deps struct {
	cfg       *config.Config
	log       *logger.ZapLogger
	extractor *ingestion.Extractor
	engine    *graph.Engine
	closers   []func()
}

func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
	d.log.Sync()
}

// errEphemeralStore is returned by one-shot commands whose result would be
// gone when the process exits.
var errEphemeralStore = errors.New("VECTOR_STORE=memory does not outlive this command; use redis or postgres")

// requirePersistentStore is a loadDeps check for commands that store or read
// collections across processes.
func requirePersistentStore(cfg *config.Config) error {
	if cfg.Store.Kind == config.StoreMemory {
		return errEphemeralStore
	}
	return nil
}

func loadDeps(ctx context.Context, checks ...func(*config.Config) error) (*deps, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for _, check := range checks {
		if err := check(cfg); err != nil {
			return nil, err
		}
	}
	log := logger.New(cfg.App.LogFilePath, cfg.App.IsProduction())
	d := &deps{cfg: cfg, log: log}

	store, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		log.Sync()
		return nil, err
	}
	if closeStore != nil {
		d.closers = append(d.closers, closeStore)
	}
	log.Info("main", "vector store ready", map[string]interface{}{"kind": cfg.Store.Kind, "ttl": cfg.Store.TTL.String()})

	embedder, err := processing.NewEmbedder(ctx, embeddingOptions(cfg))
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("embedder: %w", err)
	}

	var extOpts []ingestion.Option
	if cfg.Ingestion.EnableOCR {
		extOpts = append(extOpts, ingestion.WithOCR(tesseract.New(cfg.Ingestion.OCRLanguages...)))
	}
	d.extractor = ingestion.New(extOpts...)

	dispatcher := llm.NewDispatcher(
		llm.NewOpenAIBackend(cfg.LLM.OpenAIAPIKey, cfg.LLM.OpenAIBaseURL, nil),
		llm.NewGeminiBackend(gemini.Options{
			APIKey:   cfg.LLM.GeminiAPIKey,
			Endpoint: cfg.LLM.GeminiEndpoint,
			UseADC:   cfg.LLM.GeminiUseADC,
		}),
		log,
	)

	d.engine = graph.NewEngine(graph.Runtime{
		Extractor:  d.extractor,
		Embedder:   embedder,
		Store:      store,
		Dispatcher: dispatcher,
		Logger:     log,
		TopK:       cfg.LLM.RetrievalTopK,
	})
	return d, nil
}

// openStore returns the configured vector store and, for networked stores,
// the function that releases its connections.
func openStore(ctx context.Context, cfg config.StoreConfig) (storage.Store, func(), error) {
	switch cfg.Kind {
	case config.StoreRedis:
		var opts []storage.RedisOption
		if cfg.TTL > 0 {
			opts = append(opts, storage.WithRedisTTL(cfg.TTL))
		}
		s, err := storage.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("redis store: %w", err)
		}
		return s, func() { s.Close() }, nil
	case config.StorePostgres:
		pool, err := storage.ConnectPG(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres store: %w", err)
		}
		s := storage.NewPGStore(pool)
		if err := s.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("postgres migrate: %w", err)
		}
		return s, pool.Close, nil
	default:
		var opts []storage.MemoryOption
		if cfg.TTL > 0 {
			opts = append(opts, storage.WithTTL(cfg.TTL))
		}
		return storage.NewMemoryStore(opts...), nil, nil
	}
}

func embeddingOptions(cfg *config.Config) processing.Options {
	o := processing.Options{
		Provider: cfg.Embedding.Provider,
		Model:    cfg.Embedding.Model,
		Dim:      cfg.Embedding.Dim,
	}
	switch cfg.Embedding.Provider {
	case processing.ProviderGemini:
		o.APIKey = cfg.LLM.GeminiAPIKey
		o.BaseURL = cfg.LLM.GeminiEndpoint
		o.UseADC = cfg.LLM.GeminiUseADC
	case processing.ProviderOllama:
		o.BaseURL = cfg.Embedding.OllamaBaseURL
	default:
		o.APIKey = cfg.LLM.OpenAIAPIKey
		o.BaseURL = cfg.LLM.OpenAIBaseURL
	}
	return o
}

func (d *deps) chatDefaults() llm.Params {
	return llm.Params{
		Prompt:      d.cfg.LLM.ChatPrompt,
		Model:       d.cfg.LLM.ChatModel,
		Temperature: d.cfg.LLM.ChatTemperature,
	}
}
