// Package store provides vector stores: an in-memory reference
// implementation and a durable pgvector-backed one honoring the same
// contract.
package store

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xhad/recall/internal/models"
)

// MemoryStore is an append-only in-memory vector store using brute-force
// cosine similarity. The scan is O(n*d) per query, which is fine for a
// single user's pasted notes. The store's dimension is established by the
// first inserted document.
type MemoryStore struct {
	mu        sync.RWMutex
	docs      []models.StoredDocument
	dimension int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Add appends documents, assigning ids and timestamps where absent. The
// whole batch is validated before anything is committed; a dimension
// mismatch leaves the store unchanged.
func (s *MemoryStore) Add(_ context.Context, docs []models.StoredDocument) ([]models.StoredDocument, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dimension := s.dimension
	for i, doc := range docs {
		if len(doc.Vector) == 0 {
			return nil, fmt.Errorf("document %d has no vector", i)
		}
		if dimension == 0 {
			dimension = len(doc.Vector)
		}
		if len(doc.Vector) != dimension {
			return nil, fmt.Errorf("%w: document %d has dimension %d, store has %d",
				ErrDimensionMismatch, i, len(doc.Vector), dimension)
		}
	}

	added := make([]models.StoredDocument, len(docs))
	for i, doc := range docs {
		if doc.ID == "" {
			doc.ID = uuid.NewString()
		}
		if doc.CreatedAt.IsZero() {
			doc.CreatedAt = time.Now()
		}
		added[i] = doc
	}

	s.docs = append(s.docs, added...)
	s.dimension = dimension
	return added, nil
}

// Search returns up to k documents ordered by descending cosine similarity,
// ties broken by insertion order. Searching an empty store returns an empty
// result for any query vector.
func (s *MemoryStore) Search(_ context.Context, vector []float32, k int) ([]models.ScoredResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.docs) == 0 || k <= 0 {
		return nil, nil
	}
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("%w: query has dimension %d, store has %d",
			ErrDimensionMismatch, len(vector), s.dimension)
	}

	scored := make([]models.ScoredResult, len(s.docs))
	for i, doc := range s.docs {
		scored[i] = models.ScoredResult{
			Document: doc,
			Score:    CosineSimilarity(vector, doc.Vector),
		}
	}

	// Stable sort keeps earlier-inserted documents first on equal scores.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

// Remove deletes the document with the given id, if present.
func (s *MemoryStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, doc := range s.docs {
		if doc.ID == id {
			s.docs = append(s.docs[:i], s.docs[i+1:]...)
			break
		}
	}
	if len(s.docs) == 0 {
		s.dimension = 0
	}
	return nil
}

// Clear removes all documents. The next Add establishes a fresh dimension.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = nil
	s.dimension = 0
	return nil
}

// Len reports the number of stored documents.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// CosineSimilarity computes dot(a,b)/(|a|*|b|). A zero-norm vector on
// either side scores 0; the all-zero embedding of empty text means
// "unscored", not an error.
func CosineSimilarity(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
