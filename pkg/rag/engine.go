// Package rag composes the chunker, embedder and vector store into the
// ingest and retrieve operations of the knowledge base.
package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/xhad/recall/internal/models"
	"github.com/xhad/recall/internal/types"
	"github.com/xhad/recall/pkg/chunker"
)

// ErrEmptyKnowledgeBase is a recognized empty-result case, not a hard
// failure. Retrieve returns an empty slice for an empty store; this error
// exists for callers that want to distinguish "nothing relevant" upstream.
var ErrEmptyKnowledgeBase = errors.New("knowledge base has no matching content")

const (
	// DefaultMinScore drops unrelated content while admitting near
	// matches. Tunable via Config.
	DefaultMinScore = 0.1
	// DefaultTopK is the number of passages retrieved for grounding.
	DefaultTopK = 4
)

type Config struct {
	Chunker  *chunker.Chunker
	Embedder types.Embedder
	Store    types.VectorStore
	// MinScore is the relevance threshold applied to search results.
	// Zero means DefaultMinScore.
	MinScore float32
	Logger   *slog.Logger
}

type Engine struct {
	config Config
}

func NewEngine(config Config) (*Engine, error) {
	if config.Embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if config.Store == nil {
		return nil, fmt.Errorf("vector store is required")
	}
	if config.Chunker == nil {
		c, err := chunker.NewWithConfig(chunker.Config{})
		if err != nil {
			return nil, err
		}
		config.Chunker = c
	}
	if config.MinScore == 0 {
		config.MinScore = DefaultMinScore
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Engine{config: config}, nil
}

// Ingest splits text into chunks, embeds them in a single batch call and
// appends them to the store in chunk order. Ingestion is all-or-nothing:
// an embedding failure stores no partial chunk set. Returns the number of
// chunks stored; empty text stores nothing and is not an error.
func (e *Engine) Ingest(ctx context.Context, text string, metadata map[string]interface{}) (int, error) {
	chunks := e.config.Chunker.Split(text)
	if len(chunks) == 0 {
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}

	vectors, err := e.config.Embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embedding failed: %w", err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	docs := make([]models.StoredDocument, len(chunks))
	for i, ch := range chunks {
		docs[i] = models.StoredDocument{
			Content:  ch.Text,
			Metadata: cloneMetadata(metadata),
			Vector:   vectors[i],
		}
	}

	if _, err := e.config.Store.Add(ctx, docs); err != nil {
		return 0, fmt.Errorf("storing chunks failed: %w", err)
	}

	e.config.Logger.Debug("ingested text",
		slog.Int("chunks", len(chunks)),
		slog.Int("text_len", len(text)))
	return len(chunks), nil
}

// Retrieve embeds the query, searches the store and returns up to k
// documents scoring above the relevance threshold, best first. Callers
// needing scores must query the store directly. An empty store yields an
// empty result, never an error.
func (e *Engine) Retrieve(ctx context.Context, query string, k int) ([]models.StoredDocument, error) {
	if k <= 0 {
		k = DefaultTopK
	}

	vector, err := e.config.Embedder.EmbedOne(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query failed: %w", err)
	}

	results, err := e.config.Store.Search(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	var docs []models.StoredDocument
	for _, r := range results {
		if r.Score > e.config.MinScore {
			docs = append(docs, r.Document)
		}
	}

	e.config.Logger.Debug("retrieved context",
		slog.String("query", query),
		slog.Int("candidates", len(results)),
		slog.Int("kept", len(docs)))
	return docs, nil
}

// Clear empties the knowledge base.
func (e *Engine) Clear(ctx context.Context) error {
	return e.config.Store.Clear(ctx)
}

func cloneMetadata(metadata map[string]interface{}) map[string]interface{} {
	if metadata == nil {
		return map[string]interface{}{}
	}
	clone := make(map[string]interface{}, len(metadata))
	for k, v := range metadata {
		clone[k] = v
	}
	return clone
}
