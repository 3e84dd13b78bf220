// Package chunker splits free text into overlapping fixed-size windows for
// independent embedding.
package chunker

import (
	"fmt"

	"github.com/xhad/recall/internal/models"
)

const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50
)

type Config struct {
	ChunkSize    int
	ChunkOverlap int
}

type Chunker struct {
	config Config
}

// NewWithConfig creates a Chunker, filling zero fields with defaults.
// Overlap must be smaller than the chunk size; an overlap that would stall
// the window is a configuration error, not something to clamp silently.
func NewWithConfig(config Config) (*Chunker, error) {
	if config.ChunkSize == 0 {
		config.ChunkSize = DefaultChunkSize
	}
	if config.ChunkSize < 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", config.ChunkSize)
	}
	if config.ChunkOverlap < 0 {
		return nil, fmt.Errorf("chunk overlap cannot be negative, got %d", config.ChunkOverlap)
	}
	if config.ChunkOverlap >= config.ChunkSize {
		return nil, fmt.Errorf("chunk overlap %d must be smaller than chunk size %d",
			config.ChunkOverlap, config.ChunkSize)
	}
	return &Chunker{config: config}, nil
}

// Split walks text in a sliding window of ChunkSize bytes, advancing the
// window start by ChunkSize-ChunkOverlap each step. The final chunk may be
// shorter than ChunkSize. Empty text yields no chunks. Split is pure:
// the same input always produces the same chunk sequence.
func (c *Chunker) Split(text string) []models.Chunk {
	var chunks []models.Chunk

	step := c.config.ChunkSize - c.config.ChunkOverlap
	start := 0
	for start < len(text) {
		end := start + c.config.ChunkSize
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, models.Chunk{
			Text:         text[start:end],
			Ordinal:      len(chunks),
			SourceOffset: start,
		})
		if end == len(text) {
			break
		}
		start += step
	}

	return chunks
}

// ChunkSize reports the configured window size.
func (c *Chunker) ChunkSize() int { return c.config.ChunkSize }

// ChunkOverlap reports the configured window overlap.
func (c *Chunker) ChunkOverlap() int { return c.config.ChunkOverlap }
