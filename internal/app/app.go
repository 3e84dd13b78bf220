// Package app wires the configured components into one application
// context: settings, embedder, vector store, retrieval engine, completion
// backend, orchestrator and chat session. Created once at process start,
// torn down at exit.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xhad/recall/internal/types"
	"github.com/xhad/recall/pkg/answer"
	"github.com/xhad/recall/pkg/chat"
	"github.com/xhad/recall/pkg/chunker"
	"github.com/xhad/recall/pkg/config"
	"github.com/xhad/recall/pkg/embedder"
	"github.com/xhad/recall/pkg/llm"
	"github.com/xhad/recall/pkg/rag"
	"github.com/xhad/recall/pkg/store"
)

type App struct {
	Config       *config.Config
	Settings     *config.SettingsStore
	Embedder     types.Embedder
	Store        types.VectorStore
	Engine       *rag.Engine
	Completer    types.Completer
	Orchestrator *answer.Orchestrator
	Session      *chat.Session
	Logger       *slog.Logger

	pgStore *store.PGVectorStore
}

func New(ctx context.Context, cfg *config.Config, settings *config.SettingsStore, logger *slog.Logger) (*App, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %v", errs[0])
	}
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{Config: cfg, Settings: settings, Logger: logger}

	switch cfg.Embedding.Provider {
	case "hash":
		a.Embedder = embedder.NewHashEmbedder()
	case "openai":
		a.Embedder = embedder.NewOpenAIEmbedder(embedder.OpenAIConfig{
			Settings:  settings,
			Model:     cfg.Embedding.Model,
			RateLimit: cfg.Embedding.RateLimit,
		})
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
	}

	switch cfg.Store.Type {
	case "memory":
		a.Store = store.NewMemoryStore()
	case "pgvector":
		pg, err := store.NewPGVectorStore(ctx, store.PGVectorConfig{
			ConnString: cfg.Store.URL,
			TableName:  cfg.Store.TableName,
			VectorDim:  cfg.Store.VectorDim,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize vector store: %w", err)
		}
		a.pgStore = pg
		a.Store = pg
	default:
		return nil, fmt.Errorf("unknown store type %q", cfg.Store.Type)
	}

	c, err := chunker.NewWithConfig(chunker.Config{
		ChunkSize:    cfg.Retrieval.ChunkSize,
		ChunkOverlap: cfg.Retrieval.ChunkOverlap,
	})
	if err != nil {
		return nil, err
	}

	a.Engine, err = rag.NewEngine(rag.Config{
		Chunker:  c,
		Embedder: a.Embedder,
		Store:    a.Store,
		MinScore: float32(cfg.Retrieval.MinScore),
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	switch cfg.LLM.Backend {
	case "demo":
		a.Completer = &llm.EchoCompleter{FragmentSize: 4}
	case "openai":
		a.Completer = llm.NewChatEngine(llm.ChatConfig{
			Settings:    settings,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
		})
	default:
		return nil, fmt.Errorf("unknown llm backend %q", cfg.LLM.Backend)
	}

	a.Orchestrator, err = answer.NewOrchestrator(answer.Config{
		Retriever: a.Engine,
		Completer: a.Completer,
		TopK:      cfg.Retrieval.TopK,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	a.Session = chat.NewSession(a.Orchestrator)
	return a, nil
}

// Close releases resources held by the app, such as the database pool.
func (a *App) Close() {
	if a.pgStore != nil {
		a.pgStore.Close()
	}
}
