package types

import (
	"context"

	"github.com/xhad/recall/internal/models"
)

// Embedder maps text to fixed-dimension vectors. EmbedBatch returns one
// vector per input in the same order; implementations must be
// self-consistent so that EmbedOne(t) and EmbedBatch([t]) are usable
// interchangeably for similarity comparison.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	EmbedOne(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// VectorStore is an append-only collection of embedded documents with
// similarity-ranked search. All vectors in one store share a single
// dimension; mixing dimensions is a contract violation.
type VectorStore interface {
	Add(ctx context.Context, docs []models.StoredDocument) ([]models.StoredDocument, error)
	Search(ctx context.Context, vector []float32, k int) ([]models.ScoredResult, error)
	Remove(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

// Completer generates an answer for a prompt, invoking onChunk for every
// text fragment in arrival order. It returns once the stream ends or ctx is
// cancelled; after cancellation is observed onChunk is not called again.
type Completer interface {
	Complete(ctx context.Context, prompt string, onChunk func(chunk string) error) error
}

// Settings is a process-wide key/value lookup for user-editable settings
// such as the API credential and base URL override.
type Settings interface {
	Get(key string) (string, bool)
	Set(key string, value string)
}

// Settings keys recognized by the network-backed providers. Read at call
// time, so edits apply to the next request without a restart.
const (
	SettingAPIKey  = "OPENAI_API_KEY"
	SettingBaseURL = "OPENAI_BASE_URL"
)
