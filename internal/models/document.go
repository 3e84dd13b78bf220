package models

import "time"

// Chunk is a contiguous window of a larger text produced by the chunker.
// Ordinal preserves original order; SourceOffset is the byte offset of the
// window start in the source text.
type Chunk struct {
	Text         string
	Ordinal      int
	SourceOffset int
}

// StoredDocument is an embedded chunk held by a vector store. Documents are
// created on ingest and never mutated afterwards.
type StoredDocument struct {
	ID        string
	Content   string
	Metadata  map[string]interface{}
	Vector    []float32
	CreatedAt time.Time
}

// ScoredResult pairs a stored document with its cosine similarity to a
// query vector. Produced only as search output, never persisted.
type ScoredResult struct {
	Document StoredDocument
	Score    float32
}
